package client

import "github.com/rs/zerolog"

// Notifier surfaces a transient, non-blocking, user-visible message (the
// toast analog). Unauthenticated conditions never reach it.
type Notifier interface {
	Notify(message string)
}

// LogNotifier writes notifications to the structured log. Host applications
// with a real UI substitute their own Notifier.
type LogNotifier struct {
	Log zerolog.Logger
}

func (n LogNotifier) Notify(message string) {
	n.Log.Warn().Str("notification", message).Msg("user notification")
}
