// Package logging builds the logrus loggers used across the module.
package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/meenmo/mocurve/config"
)

// Format names accepted in config.LoggingConfig.Format.
const (
	FormatText = "text"
	FormatJSON = "json"
)

var std atomic.Pointer[logrus.Logger]

func init() {
	std.Store(New(config.DefaultConfig.Logging, os.Stderr))
}

// New returns a logger writing to w with the configured level and format.
// Unknown levels fall back to info.
func New(cfg config.LoggingConfig, w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)

	level, err := logrus.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if strings.EqualFold(cfg.Format, FormatJSON) {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}
	return l
}

// L returns the package default logger.
func L() *logrus.Logger {
	return std.Load()
}

// SetDefault replaces the package default logger.
func SetDefault(l *logrus.Logger) {
	if l != nil {
		std.Store(l)
	}
}

// Component returns an entry tagged with the emitting component.
func Component(name string) *logrus.Entry {
	return L().WithField("component", name)
}
