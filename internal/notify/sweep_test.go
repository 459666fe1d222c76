package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tgienger/taskpilot/internal/models"
	"github.com/tgienger/taskpilot/internal/store"
	"github.com/tgienger/taskpilot/internal/storage"
)

type reminder struct {
	subject string
	fireAt  time.Time
}

// capturingNotifier records every scheduled reminder.
type capturingNotifier struct {
	mu        sync.Mutex
	reminders []reminder
}

func (c *capturingNotifier) HasPermission() bool { return true }

func (c *capturingNotifier) RequestPermission(done func(granted bool)) { done(true) }

func (c *capturingNotifier) ScheduleReminder(subject string, fireAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reminders = append(c.reminders, reminder{subject: subject, fireAt: fireAt})
}

func (c *capturingNotifier) all() []reminder {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]reminder(nil), c.reminders...)
}

func newSweepFixture(t *testing.T) (*Sweep, *store.TaskStore, *store.ProjectStore, *capturingNotifier) {
	t.Helper()
	backend, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	gateway := storage.NewGateway(backend, zap.NewNop())
	tasks := store.NewTaskStore(gateway, zap.NewNop())
	projects := store.NewProjectStore(gateway, zap.NewNop())
	t.Cleanup(func() {
		tasks.Close()
		projects.Close()
	})
	notifier := &capturingNotifier{}
	return NewSweep("0 9 * * *", tasks, projects, notifier, zap.NewNop()), tasks, projects, notifier
}

func TestSweepRemindsAboutDueSoonTasks(t *testing.T) {
	sweep, tasks, _, notifier := newSweepFixture(t)

	soon := time.Now().Add(2 * time.Hour)
	farOff := time.Now().Add(72 * time.Hour)

	due := models.NewTask("File taxes")
	due.DueDate = &soon
	tasks.Create(due)

	later := models.NewTask("Renew domain")
	later.DueDate = &farOff
	tasks.Create(later)

	undated := models.NewTask("Someday")
	tasks.Create(undated)

	finished := models.NewTask("Already done")
	finished.DueDate = &soon
	finished.Status = models.StatusDone
	tasks.Create(finished)

	sweep.Run()

	got := notifier.all()
	require.Len(t, got, 1)
	assert.Equal(t, "File taxes is due.", got[0].subject)
	assert.True(t, soon.Equal(got[0].fireAt))
}

func TestSweepOverdueTaskFiresImmediately(t *testing.T) {
	sweep, tasks, _, notifier := newSweepFixture(t)

	past := time.Now().Add(-48 * time.Hour)
	late := models.NewTask("Send invoice")
	late.DueDate = &past
	tasks.Create(late)

	before := time.Now()
	sweep.Run()

	got := notifier.all()
	require.Len(t, got, 1)
	assert.Equal(t, "Send invoice is due.", got[0].subject)
	assert.False(t, got[0].fireAt.Before(before), "overdue reminder fires now, not in the past")
}

func TestSweepRemindsAboutProjectDeadlines(t *testing.T) {
	sweep, _, projects, notifier := newSweepFixture(t)

	now := time.Now()
	ending := models.NewProject("Website refresh", "", now.AddDate(0, 0, -10), now.Add(30*time.Hour))
	projects.Create(ending)

	distant := models.NewProject("Q4 planning", "", now, now.AddDate(0, 0, 20))
	projects.Create(distant)

	ended := models.NewProject("Old launch", "", now.AddDate(0, 0, -20), now.AddDate(0, 0, -5))
	projects.Create(ended)

	sweep.Run()

	got := notifier.all()
	require.Len(t, got, 1)
	assert.Equal(t, "Website refresh deadline is approaching.", got[0].subject)
	assert.True(t, ending.EndDate.Add(-24*time.Hour).Equal(got[0].fireAt),
		"reminder lands one day before the deadline")
}

func TestSweepStartRejectsBadSpec(t *testing.T) {
	_, tasks, projects, notifier := newSweepFixture(t)

	bad := NewSweep("not a cron spec", tasks, projects, notifier, zap.NewNop())
	assert.Error(t, bad.Start())
}

func TestLogNotifier(t *testing.T) {
	t.Run("permission tracks configuration", func(t *testing.T) {
		assert.True(t, NewLogNotifier(zap.NewNop(), true).HasPermission())
		assert.False(t, NewLogNotifier(zap.NewNop(), false).HasPermission())
	})

	t.Run("request resolves asynchronously with the configured grant", func(t *testing.T) {
		n := NewLogNotifier(zap.NewNop(), true)

		result := make(chan bool, 1)
		n.RequestPermission(func(granted bool) { result <- granted })

		select {
		case granted := <-result:
			assert.True(t, granted)
		case <-time.After(time.Second):
			t.Fatal("permission request never resolved")
		}
	})
}
