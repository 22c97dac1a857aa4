// Package logging configures the structured logger used by the relay
// server binary (cmd/chatserver); the client binary does not use it. Grounded on github.com/jaydenbeard/messaging-app's use of
// sirupsen/logrus for a real Go messaging service's logging.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds a logrus.Logger writing JSON lines to stderr at the given
// level ("debug", "info", "warn", "error"; defaults to "info" on a bad
// value).
func New(level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
	return log
}
