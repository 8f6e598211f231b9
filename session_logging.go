package attach

import "time"

// Session log operations.
const (
	OpBegin = "begin"
	OpEnd   = "end"
)

// SessionLogEvent describes one begin or end transition for logging.
type SessionLogEvent struct {
	Op       string
	BackupID string
	Scope    string
	Keys     []string
	Duration time.Duration
	Err      error
}

// SessionLogger records session transitions.
type SessionLogger interface {
	LogSession(SessionLogEvent)
}

// SessionLoggerFunc adapts a function to SessionLogger.
type SessionLoggerFunc func(SessionLogEvent)

// LogSession implements SessionLogger.
func (f SessionLoggerFunc) LogSession(event SessionLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopSessionLogger struct{}

func (noopSessionLogger) LogSession(SessionLogEvent) {}
