// Package sink adapts loggers to the single string callback the sets print
// through.
package sink

import (
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"go.uber.org/zap"
)

type Sink func(msg string)

// Discard drops every message.
func Discard(string) {}

// Logr returns a sink logging each message at info level on l.
func Logr(l logr.Logger) Sink {
	return func(msg string) {
		l.Info(msg)
	}
}

// Zap returns a sink logging each message at info level on l.
func Zap(l *zap.Logger) Sink {
	return func(msg string) {
		l.Info(msg)
	}
}

// Collect returns a sink appending to out.
func Collect(out *[]string) Sink {
	return func(msg string) {
		*out = append(*out, msg)
	}
}

// Writer returns a sink writing each message as a line to w. Write errors
// are dropped.
func Writer(w io.Writer) Sink {
	return func(msg string) {
		_, _ = fmt.Fprintln(w, msg)
	}
}
