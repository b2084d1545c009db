// Package logging sets up the process-wide logrus logger the same way
// cmd/sysbox-fs/main.go's app.Before hook does: pick stderr or a file
// sink, pick a text or json formatter, and translate a level name into
// a logrus.Level.
package logging

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// Options configures the process logger. Zero value means stderr,
// text format, info level — the same defaults main.go falls back to
// when a flag is left unset.
type Options struct {
	File   string // path, or "" for stderr
	Format string // "text" or "json"
	Level  string // debug, info, warning, error, fatal
}

// Configure applies opts to logrus's package-level logger and returns
// the open log file (nil if logging to stderr) so the caller can close
// it on shutdown.
func Configure(opts Options) (*os.File, error) {
	var f *os.File
	if opts.File != "" {
		var err error
		f, err = os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND|os.O_SYNC, 0666)
		if err != nil {
			return nil, fmt.Errorf("logging: opening log file %s: %w", opts.File, err)
		}
		logrus.SetOutput(f)
	} else {
		logrus.SetOutput(os.Stderr)
	}

	if opts.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FullTimestamp:   true,
		})
	}

	level := opts.Level
	if level == "" {
		level = "info"
	}
	parsed, err := levelFromName(level)
	if err != nil {
		return f, err
	}
	logrus.SetLevel(parsed)

	return f, nil
}

func levelFromName(name string) (logrus.Level, error) {
	switch name {
	case "debug":
		return logrus.DebugLevel, nil
	case "info":
		return logrus.InfoLevel, nil
	case "warning":
		return logrus.WarnLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	case "fatal":
		return logrus.FatalLevel, nil
	default:
		return 0, fmt.Errorf("logging: unrecognized log-level %q", name)
	}
}
