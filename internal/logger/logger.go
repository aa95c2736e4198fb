// Package logger holds the process-wide logrus logger.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the shared logger. It is usable before Init is called and then logs
// at info level in text format to stderr.
var Log = logrus.New()

// Init configures Log from the environment.
//
//	LOG_LEVEL   logrus level name, defaults to "info"
//	LOG_FORMAT  "json" or "text", defaults to "text"
//
// Logs go to stderr so the terminal front end can own stdout.
func Init() {
	Configure(Log, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), os.Stderr)
}

// Configure applies a level, a format and an output to l.
// An unparseable level falls back to info.
func Configure(l *logrus.Logger, level, format string, out io.Writer) {
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if strings.ToLower(format) == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
	l.SetOutput(out)
}

// For returns an entry tagged with the component name.
func For(component string) *logrus.Entry {
	return Log.WithField("component", component)
}

// Discard returns a logger that drops everything. Tests and the headless
// runner use it when output is not wanted.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
