// Package logger declares the logging interface used across the module and
// the package-level, per-subsystem logger instances every component logs
// through.
package logger

// Logger is a small structured-logging interface, covering plain and
// keys-and-values variants of each level plus a With for derived loggers.
type Logger interface {
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)

	Debugw(msg string, keysAndValues ...any)
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)

	// With returns a derived logger carrying the given key/value pairs on
	// every subsequent call.
	With(keysAndValues ...any) Logger
}

// Per-subsystem loggers, set by Init (see logger/zap). Each defaults to a
// discard logger so packages can log unconditionally without a nil check
// even in tests that never call Init.
var (
	Identifier Logger = nop{}
	Catalog    Logger = nop{}
	Router     Logger = nop{}
	Store      Logger = nop{}
	Resolve    Logger = nop{}
	Query      Logger = nop{}
	DataSource Logger = nop{}
)

type nop struct{}

func (nop) Debug(args ...any)                        {}
func (nop) Info(args ...any)                         {}
func (nop) Warn(args ...any)                         {}
func (nop) Error(args ...any)                        {}
func (nop) Debugw(msg string, kv ...any)             {}
func (nop) Infow(msg string, kv ...any)              {}
func (nop) Warnw(msg string, kv ...any)              {}
func (nop) Errorw(msg string, kv ...any)             {}
func (n nop) With(kv ...any) Logger                  { return n }
