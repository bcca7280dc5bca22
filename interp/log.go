package interp

import "go.uber.org/zap"

// NewLogger builds the default production zap.Logger used when Options
// doesn't supply one. Split out of runtime.go so cmd/rcore and tests can
// build the same default without constructing a full Runtime.
func NewLogger() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// logFatalInvariant records a runtime-invariant violation (§7) before it
// unwinds the current evaluation. These are never user-recoverable, so
// the log line is the only record of what went wrong once the error has
// propagated to the top level.
func (rt *Runtime) logFatalInvariant(msg string, err error) {
	rt.log.Errorw("runtime invariant violation", "msg", msg, "error", err)
}
