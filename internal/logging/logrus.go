// Package logging builds the logrus entries used across the backend.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logrus creates loggers that share one level and output.
type Logrus struct {
	level  string
	output io.Writer
}

// NewLogrus creates a logger factory. An unknown level falls back to info
// and a nil output to stdout.
func NewLogrus(level string, output io.Writer) *Logrus {
	if output == nil {
		output = os.Stdout
	}
	return &Logrus{level: level, output: output}
}

// Get returns a logger tagged with the component it belongs to.
func (l *Logrus) Get(context string) *logrus.Entry {
	log := logrus.New()
	level, err := logrus.ParseLevel(l.level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(l.output)

	return log.WithFields(logrus.Fields{
		"Context": context,
	})
}
