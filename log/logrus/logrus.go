// Package logrus adapts a logrus entry to omegacache.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/lcsk42/omegacache"
)

var _ omegacache.Logger = Logger{}

type Logger struct{ E *logrus.Entry }

// New tags every line with component=omegacache.
func New(l *logrus.Logger) Logger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return Logger{E: l.WithField("component", "omegacache")}
}

func (l Logger) with(f omegacache.Fields) *logrus.Entry {
	if len(f) == 0 {
		return l.E
	}
	return l.E.WithFields(logrus.Fields(f))
}

func (l Logger) Debug(msg string, f omegacache.Fields) { l.with(f).Debug(msg) }
func (l Logger) Info(msg string, f omegacache.Fields)  { l.with(f).Info(msg) }
func (l Logger) Warn(msg string, f omegacache.Fields)  { l.with(f).Warn(msg) }
func (l Logger) Error(msg string, f omegacache.Fields) { l.with(f).Error(msg) }
