package notify

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/tgienger/taskpilot/internal/models"
	"github.com/tgienger/taskpilot/internal/store"
)

// Sweep periodically scans tasks and projects and emits reminder requests
// through the notification collaborator: due-soon tasks remind at their due
// date, and project deadlines remind one day ahead.
type Sweep struct {
	cron     *cron.Cron
	spec     string
	tasks    *store.TaskStore
	projects *store.ProjectStore
	notifier Notifier
	log      *zap.Logger
}

// NewSweep creates a sweep on the given cron spec (e.g. "0 9 * * *").
func NewSweep(spec string, tasks *store.TaskStore, projects *store.ProjectStore, notifier Notifier, log *zap.Logger) *Sweep {
	return &Sweep{
		cron:     cron.New(),
		spec:     spec,
		tasks:    tasks,
		projects: projects,
		notifier: notifier,
		log:      log.Named("sweep"),
	}
}

// Start schedules the sweep.
func (s *Sweep) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.Run); err != nil {
		return fmt.Errorf("schedule reminder sweep: %w", err)
	}
	s.cron.Start()
	s.log.Info("reminder sweep started", zap.String("spec", s.spec))
	return nil
}

// Stop stops the scheduler.
func (s *Sweep) Stop() {
	s.cron.Stop()
}

// Run performs one scan. It is called by the cron schedule but is exported
// so a sweep can also be forced.
func (s *Sweep) Run() {
	now := time.Now()

	for _, t := range s.tasks.Tasks() {
		if t.DueDate == nil || t.Status == models.StatusDone {
			continue
		}
		// Remind about anything due within the next day; the reminder fires
		// at the due date itself (or immediately if already overdue).
		if t.DueDate.Before(now.Add(24 * time.Hour)) {
			fireAt := *t.DueDate
			if fireAt.Before(now) {
				fireAt = now
			}
			s.notifier.ScheduleReminder(t.Title+" is due.", fireAt)
		}
	}

	for _, p := range s.projects.Projects() {
		remindAt := p.EndDate.Add(-24 * time.Hour)
		if remindAt.After(now) && remindAt.Before(now.Add(24*time.Hour)) {
			s.notifier.ScheduleReminder(p.Name+" deadline is approaching.", remindAt)
		}
	}
}
