// Package logging configures the shared logrus logger used across every
// pyano package, in place of the teacher gateway's bare log.Printf calls.
package logging

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ByteBell/pyano/internal/envcfg"
)

var (
	once sync.Once
	log  *logrus.Logger
)

// Log returns the process-wide logger, initializing it from PYANO_LOG_LEVEL
// on first use.
func Log() *logrus.Logger {
	once.Do(func() {
		log = logrus.New()
		log.Out = os.Stderr
		log.Formatter = &logrus.TextFormatter{FullTimestamp: true}
		level, err := logrus.ParseLevel(envcfg.LogLevel())
		if err != nil {
			level = logrus.InfoLevel
		}
		log.SetLevel(level)
	})
	return log
}

// WithField is a convenience wrapper mirroring the teacher's "[component] message"
// log-line texture, but structured.
func WithField(component string, key string, value any) *logrus.Entry {
	return Log().WithField("component", component).WithField(key, value)
}
