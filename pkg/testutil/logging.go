package testutil

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// testLogLevelEnv overrides the level used when tests run verbosely.
const testLogLevelEnv = "TEST_LOG_LEVEL"

func init() {
	configureTestLogger(os.Args, os.Getenv(testLogLevelEnv))
}

// configureTestLogger discards log output unless the test binary runs with -v,
// in which case it logs at the requested level (trace by default).
func configureTestLogger(args []string, level string) {
	logger := logrus.StandardLogger()

	logger.SetLevel(logrus.TraceLevel)
	if parsed, err := logrus.ParseLevel(strings.ToLower(level)); err == nil {
		logger.SetLevel(parsed)
	}

	if !isVerbose(args) {
		logger.SetOutput(io.Discard)
	}
}

func isVerbose(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-test.v", "-test.v=true", "--test.v", "--test.v=true":
			return true
		}
	}
	return false
}

// DisableLogging silences the standard logger until the returned function is
// called.
func DisableLogging() (reset func()) {
	logger := logrus.StandardLogger()

	originalOut := logger.Out
	logger.SetOutput(io.Discard)
	return func() {
		logger.SetOutput(originalOut)
	}
}
