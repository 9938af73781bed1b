package pagetlai

// Logger is the leveled logging contract used across pagetlai. It mirrors
// the interface exposed by github.com/goliatone/go-logger so a glog logger
// can be plugged in through a thin adapter.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NoOpLogger returns a Logger that discards every entry.
func NoOpLogger() Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ Logger = noopLogger{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
