// Package logx provides the structured logger shared by the link layer
// and the root gatt package. It is silent by default; embedding applications opt in
// with SetOutput or by installing their own *logrus.Logger via Set.
package logx

import (
	"io"

	"github.com/sirupsen/logrus"
)

var log = newDefault()

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Set replaces the package-wide logger, e.g. to route events to the
// embedding application's own logrus instance.
func Set(l *logrus.Logger) {
	if l != nil {
		log = l
	}
}

// SetOutput redirects the default logger's output without replacing its
// configuration, a shortcut for enabling log output during development.
func SetOutput(w io.Writer) { log.SetOutput(w) }

// Get returns the active logger.
func Get() *logrus.Logger { return log }
