package lane

import "log"

// Logf is the package-level diagnostic logger. It defaults to a no-op; the
// CLI points it at log.Printf when debug logging is enabled.
var Logf func(format string, v ...interface{}) = func(string, ...interface{}) {}

// SetLogger replaces the package logger. Passing nil mutes it.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// EnableDebugLogging routes pipeline diagnostics to the standard logger.
func EnableDebugLogging() {
	SetLogger(log.Printf)
}
