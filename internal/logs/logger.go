// Package logs configures the application-wide structured logger.
package logs

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the shared application logger, initialised via Init. Components
// that log outside a request (scheduler, queue consumer) use it directly.
var Logger = logrus.New()

// Options controls logger initialisation.
type Options struct {
	Level  string // trace|debug|info|warning|error|fatal
	Format string // text|json
	File   string // log file path; empty means stdout only
}

// Init configures the shared logger from the given options.
func Init(opts Options) {
	switch opts.Level {
	case "trace":
		Logger.SetLevel(logrus.TraceLevel)
	case "debug":
		Logger.SetLevel(logrus.DebugLevel)
	case "warning", "warn":
		Logger.SetLevel(logrus.WarnLevel)
	case "error":
		Logger.SetLevel(logrus.ErrorLevel)
	case "fatal":
		Logger.SetLevel(logrus.FatalLevel)
	default:
		Logger.SetLevel(logrus.InfoLevel)
	}

	if opts.Format == "json" {
		Logger.SetFormatter(&logrus.JSONFormatter{})
	}

	if opts.File != "" {
		file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			Logger.Fatalf("failed to open log file %s: %v", opts.File, err)
		}
		Logger.SetOutput(io.MultiWriter(file, os.Stdout))
	} else {
		Logger.SetOutput(os.Stdout)
	}
}
