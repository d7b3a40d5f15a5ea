// Package trace provides a scoped entry/exit guard for library operations.
//
//	span := trace.Begin(logger, observer, "index.update", "bytes", len(text))
//	defer span.End(&err)
//
// Entry and exit are logged at debug level. When an Observer is supplied it
// receives the duration and outcome of every finished span.
package trace

import (
	"log/slog"
	"time"
)

// Observer receives the outcome of finished operations.
type Observer interface {
	ObserveOperation(op string, elapsed time.Duration, err error)
}

// Span tracks one running operation.
type Span struct {
	logger   *slog.Logger
	observer Observer
	op       string
	start    time.Time
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Begin logs entry into op and starts timing it. logger and observer may be
// nil.
func Begin(logger *slog.Logger, observer Observer, op string, attrs ...any) *Span {
	if logger == nil {
		logger = Discard()
	}
	logger = logger.With("op", op)
	logger.Debug("enter", attrs...)
	return &Span{logger: logger, observer: observer, op: op, start: time.Now()}
}

// End logs exit from the operation. errp points at the operation's named
// error result and may be nil.
func (s *Span) End(errp *error) {
	var err error
	if errp != nil {
		err = *errp
	}
	elapsed := time.Since(s.start)
	if err != nil {
		s.logger.Debug("exit", "elapsed", elapsed, "error", err)
	} else {
		s.logger.Debug("exit", "elapsed", elapsed)
	}
	if s.observer != nil {
		s.observer.ObserveOperation(s.op, elapsed, err)
	}
}

// Logger returns the span's logger, already tagged with the operation.
func (s *Span) Logger() *slog.Logger { return s.logger }
