package sim

import "sync/atomic"

// debugLoggingEnabled guards per-step debug logs. Checking an atomic flag is
// cheaper than asking the handler for its level on every step.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging switches per-step debug logs on or off.
// Call it from main after parsing the log level.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled reports whether per-step debug logs are on.
//
//	if sim.IsDebugEnabled() {
//	    slog.Debug("step", "entity", e.ID, "x", e.GridX, "y", e.GridY)
//	}
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
