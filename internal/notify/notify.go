package notify

import (
	"time"

	"go.uber.org/zap"
)

// Notifier is the external notification collaborator. The core only emits
// "notify me at T about X" requests; delivery is someone else's problem.
type Notifier interface {
	// HasPermission reports whether reminders may currently be scheduled.
	HasPermission() bool
	// RequestPermission asks for permission and calls done exactly once with
	// the outcome. The call is asynchronous and has no timeout.
	RequestPermission(done func(granted bool))
	// ScheduleReminder requests a reminder about subject at fireAt. It is
	// fire-and-forget and silently no-ops without permission.
	ScheduleReminder(subject string, fireAt time.Time)
}

// LogNotifier is the default collaborator: permission comes from
// configuration and scheduled reminders are written to the log.
type LogNotifier struct {
	granted bool
	log     *zap.Logger
}

// NewLogNotifier creates a notifier with a fixed permission grant.
func NewLogNotifier(log *zap.Logger, granted bool) *LogNotifier {
	return &LogNotifier{granted: granted, log: log.Named("notify")}
}

func (n *LogNotifier) HasPermission() bool { return n.granted }

func (n *LogNotifier) RequestPermission(done func(granted bool)) {
	go done(n.granted)
}

func (n *LogNotifier) ScheduleReminder(subject string, fireAt time.Time) {
	if !n.granted {
		return
	}
	n.log.Info("reminder scheduled",
		zap.String("subject", subject),
		zap.Time("fire_at", fireAt))
}
