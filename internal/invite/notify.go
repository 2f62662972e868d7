package invite

import (
	"log/slog"
	"time"
)

// Level of a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelError
)

// Notification is a short-lived message for the person using the form.
type Notification struct {
	Level    Level
	Message  string
	Duration time.Duration
}

// Notifier presents notifications.
type Notifier interface {
	Notify(n Notification)
}

// LogNotifier presents notifications as log records.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify implements Notifier.
func (n LogNotifier) Notify(note Notification) {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if note.Level == LevelError {
		logger.Error(note.Message)
		return
	}
	logger.Info(note.Message)
}
