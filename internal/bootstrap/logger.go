package bootstrap

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// NewLogger returns a JSON logger at the given level. Unknown levels fall back to info.
func NewLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		logger.WithField("level", level).Warn("unknown log level, using info")
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
	return logger
}
