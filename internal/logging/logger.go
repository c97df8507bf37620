package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Fields is structured logging fields.
type Fields = logrus.Fields

// New returns a logger configured for the given level string. Unknown
// levels fall back to info. Output is human-readable text since briefs
// run from cron and the log usually ends up in a mailbox or a tty.
func New(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	return logger
}

// WithSource tags a logger with the collector or stage that owns the
// entries.
func WithSource(logger *logrus.Logger, source string) *logrus.Entry {
	return logger.WithField("source", source)
}
