// Package config resolves the diagnostic logging options shared by the cmd/
// entry points from environment variables, rather than through a general
// config file — the driver surface here is pure positional argv, so there
// is no config file to parse. It reads no CLI flags.
package config

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	envLogLevel  = "DCIDX_LOG_LEVEL"
	envLogFormat = "DCIDX_LOG_FORMAT"
)

// LogOptions controls how a driver's diagnostic logger is constructed.
type LogOptions struct {
	Level logrus.Level
	JSON  bool
}

// ResolveLogOptions reads DCIDX_LOG_LEVEL and DCIDX_LOG_FORMAT, defaulting
// to info level and text format when unset or unrecognized.
func ResolveLogOptions() LogOptions {
	opts := LogOptions{Level: logrus.InfoLevel}
	if v := os.Getenv(envLogLevel); v != "" {
		if lvl, err := logrus.ParseLevel(v); err == nil {
			opts.Level = lvl
		}
	}
	if strings.EqualFold(os.Getenv(envLogFormat), "json") {
		opts.JSON = true
	}
	return opts
}

// NewLogger builds a *logrus.Logger per ResolveLogOptions, writing to
// stderr so it never interleaves with a driver's protocol output on
// stdout.
func NewLogger() *logrus.Logger {
	opts := ResolveLogOptions()
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(opts.Level)
	if opts.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
