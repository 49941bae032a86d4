// Package logsetup configures the process-wide logrus logger the way
// DNShield's run command does: parse a level string (falling back to
// Info on garbage input), install a full-timestamp text formatter, and
// allow an environment variable to override whatever the config file
// said.
package logsetup

import (
	"os"

	"github.com/sirupsen/logrus"
)

// EnvLogLevel overrides the configured log level when set, mirroring
// DNSHIELD_LOG_LEVEL.
const EnvLogLevel = "BLOCKFOLD_LOG_LEVEL"

// Init parses level, applies the env override, and installs it as the
// global logrus level and formatter.
func Init(level string) {
	if envLevel := os.Getenv(EnvLogLevel); envLevel != "" {
		level = envLevel
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.WithField("requested", level).Warn("logsetup: unrecognized log level, defaulting to info")
		parsed = logrus.InfoLevel
	}

	logrus.SetLevel(parsed)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}
