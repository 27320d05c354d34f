// Command airdropctl is the operator tool for NFT airdrop pools.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/nft-airdrop/pkg/metrics"
	"github.com/code-payments/nft-airdrop/pkg/solana"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("airdropctl", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", "airdropctl.yaml", "configuration file path")
	env := global.String("e", "", "cluster name or RPC endpoint")
	logLevel := global.String("l", "", "log level")
	global.Usage = func() { printUsage(stderr) }

	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		printUsage(stderr)
		return 2
	}

	cmd, ok := findCommand(global.Arg(0))
	if !ok {
		fmt.Fprintf(stderr, "unknown command: %s\n\n", global.Arg(0))
		printUsage(stderr)
		return 2
	}

	config, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if len(*env) > 0 {
		config.Environment = *env
	}
	if len(*logLevel) > 0 {
		config.LogLevel = *logLevel
	}

	metricsProvider, err := newMetricsProvider(config)
	if err != nil {
		fmt.Fprintln(stderr, errors.Wrap(err, "error connecting to new relic"))
		return 1
	}
	configureLogger(config, metricsProvider)

	log := logrus.StandardLogger().WithFields(logrus.Fields{
		"type":    "airdropctl",
		"command": cmd.name,
	})

	endpoint, err := solana.EnvironmentFromName(config.Environment)
	if err != nil {
		log.WithError(err).Error("invalid environment")
		return 1
	}

	commitment, err := commitmentFromName(config.Commitment)
	if err != nil {
		log.WithError(err).Error("invalid commitment")
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx = metrics.NewContext(ctx, metricsProvider)

	sc := solana.New(string(endpoint))
	c := &cli{
		log:       log,
		config:    config,
		out:       stdout,
		sc:        sc,
		submitter: newSubmitter(sc, commitment),
	}

	ctx, end := metrics.StartTransaction(ctx, "airdropctl/"+cmd.name)
	err = cmd.run(ctx, c, global.Args()[1:])
	end()

	if err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "%s\n\nusage: airdropctl %s %s\n", err, cmd.name, cmd.usage)
			return 2
		}
		log.WithError(err).Error("command failed")
		return 1
	}
	return 0
}

func commitmentFromName(name string) (solana.Commitment, error) {
	switch name {
	case "processed":
		return solana.CommitmentProcessed, nil
	case "confirmed":
		return solana.CommitmentConfirmed, nil
	case "", "finalized":
		return solana.CommitmentFinalized, nil
	}
	return solana.Commitment{}, errors.Errorf("unknown commitment: %s", name)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: airdropctl [-config file] [-e env] [-l level] <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-14s %s\n", cmd.name, cmd.usage)
	}
}
