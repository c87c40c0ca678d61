// Package notify carries toast-style user notifications out of the
// workflow engine without coupling it to any rendering surface.
package notify

import "log/slog"

// Notifier receives non-blocking user-facing messages. Implementations
// must not block the caller.
type Notifier interface {
	Success(message string)
	Warning(message string)
	Error(message string)
}

// Logger adapts a slog.Logger into a Notifier.
type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

func (l *Logger) Success(message string) { l.logger.Info(message, "toast", "success") }
func (l *Logger) Warning(message string) { l.logger.Warn(message, "toast", "warning") }
func (l *Logger) Error(message string)   { l.logger.Error(message, "toast", "error") }

// Discard drops every notification.
type Discard struct{}

func (Discard) Success(string) {}
func (Discard) Warning(string) {}
func (Discard) Error(string)   {}

// Recorder collects notifications for assertions in tests.
type Recorder struct {
	Successes []string
	Warnings  []string
	Errors    []string
}

func (r *Recorder) Success(message string) { r.Successes = append(r.Successes, message) }
func (r *Recorder) Warning(message string) { r.Warnings = append(r.Warnings, message) }
func (r *Recorder) Error(message string)   { r.Errors = append(r.Errors, message) }
