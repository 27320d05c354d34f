package main

import (
	"os"
	"strings"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/code-payments/nft-airdrop/pkg/metrics"
)

const envPrefix = "AIRDROPCTL"

// Config holds the settings shared by every sub command. Values come from the
// optional config file, then AIRDROPCTL_* environment variables, then flags.
type Config struct {
	LogLevel string `mapstructure:"log_level"`

	AppName string `mapstructure:"app_name"`

	// Environment is a cluster moniker (devnet, testnet, mainnet-beta, localnet)
	// or an RPC endpoint URL.
	Environment string `mapstructure:"env"`

	// Keypair is the default signer keypair file.
	Keypair string `mapstructure:"keypair"`

	// Commitment that submitted transactions wait for.
	Commitment string `mapstructure:"commitment"`

	NewRelicLicenseKey string `mapstructure:"new_relic_license_key"`
}

var defaultConfig = Config{
	LogLevel:    "info",
	AppName:     "airdropctl",
	Environment: "devnet",
	Commitment:  "finalized",
}

func init() {
	_ = viper.BindEnv("log_level", envPrefix+"_LOG_LEVEL")
	_ = viper.BindEnv("app_name", envPrefix+"_APP_NAME")
	_ = viper.BindEnv("env", envPrefix+"_ENV")
	_ = viper.BindEnv("keypair", envPrefix+"_KEYPAIR")
	_ = viper.BindEnv("commitment", envPrefix+"_COMMITMENT")
	_ = viper.BindEnv("new_relic_license_key", envPrefix+"_NEW_RELIC_LICENSE_KEY")
}

func loadConfig(configPath string) (Config, error) {
	// viper only reports ConfigFileNotFoundError when searching for a default
	// file, so a missing explicit file is checked here.
	if _, err := os.Stat(configPath); err == nil {
		viper.SetConfigFile(configPath)
	} else if !os.IsNotExist(err) {
		return Config{}, errors.Wrap(err, "failed to check if config exists")
	}

	err := viper.ReadInConfig()
	_, isConfigNotFound := err.(viper.ConfigFileNotFoundError)
	if err != nil && !isConfigNotFound {
		return Config{}, errors.Wrap(err, "failed to load config")
	}

	config := defaultConfig
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, errors.Wrap(err, "failed to unmarshal config")
	}

	return config, nil
}

func newMetricsProvider(config Config) (*newrelic.Application, error) {
	if len(config.NewRelicLicenseKey) == 0 {
		return nil, nil
	}

	return newrelic.NewApplication(
		newrelic.ConfigFromEnvironment(),
		newrelic.ConfigAppName(config.AppName),
		newrelic.ConfigLicense(config.NewRelicLicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
		newrelic.ConfigAppLogForwardingEnabled(true),
	)
}

func configureLogger(config Config, metricsProvider *newrelic.Application) {
	formatter := &logrus.TextFormatter{FullTimestamp: true}
	if metricsProvider != nil {
		logrus.SetFormatter(metrics.NewCustomNewRelicLogFormatter(metricsProvider, formatter))
	} else {
		logrus.SetFormatter(formatter)
	}

	level, err := logrus.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", config.LogLevel).Warn("unknown log level, ignoring")
	} else {
		logrus.SetLevel(level)
	}

	logrus.SetOutput(os.Stderr)
}
