package viewmodel

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tgienger/taskpilot/internal/models"
	"github.com/tgienger/taskpilot/internal/store"
	"github.com/tgienger/taskpilot/internal/storage"
)

func newProjectFixture(t *testing.T) (*ProjectView, *store.ProjectStore, *store.TaskStore) {
	t.Helper()
	backend, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	gateway := storage.NewGateway(backend, zap.NewNop())
	projectStore := store.NewProjectStore(gateway, zap.NewNop())
	taskStore := store.NewTaskStore(gateway, zap.NewNop())
	t.Cleanup(func() {
		projectStore.Close()
		taskStore.Close()
	})
	return NewProjectView(projectStore, taskStore), projectStore, taskStore
}

func date(d int) time.Time {
	return time.Date(2026, time.September, d, 0, 0, 0, 0, time.UTC)
}

func TestProjectViewGanttProgress(t *testing.T) {
	v, projectStore, taskStore := newProjectFixture(t)

	p := models.NewProject("Rollout", "", date(1), date(15))
	projectStore.Create(p)

	for i := 0; i < 4; i++ {
		task := models.NewTask("step")
		task.ProjectID = &p.ID
		if i == 0 {
			task.Status = models.StatusDone
		}
		taskStore.Create(task)
	}
	stray := models.NewTask("unrelated")
	stray.Status = models.StatusDone
	taskStore.Create(stray)

	items := v.GanttItems()
	require.Len(t, items, 1)
	assert.Equal(t, "Rollout", items[0].Name)
	assert.InDelta(t, 0.25, items[0].Progress, 1e-9)
	assert.Contains(t, ganttPalette, items[0].ColorHex)
}

func TestProjectViewGanttProgressWithNoTasks(t *testing.T) {
	v, projectStore, _ := newProjectFixture(t)

	projectStore.Create(models.NewProject("Empty", "", date(1), date(5)))

	items := v.GanttItems()
	require.Len(t, items, 1)
	assert.Zero(t, items[0].Progress)
}

func TestProjectViewRecomputesOnTaskMutation(t *testing.T) {
	v, projectStore, taskStore := newProjectFixture(t)

	p := models.NewProject("Rollout", "", date(1), date(15))
	projectStore.Create(p)

	task := models.NewTask("only")
	task.ProjectID = &p.ID
	taskStore.Create(task)
	assert.Zero(t, v.GanttItems()[0].Progress)

	task.Status = models.StatusDone
	taskStore.Update(task)
	assert.InDelta(t, 1.0, v.GanttItems()[0].Progress, 1e-9,
		"task change flows into the project projection")
}

func TestColorForNameIsDeterministic(t *testing.T) {
	assert.Equal(t, colorForName("Apollo"), colorForName("Apollo"))
	assert.Contains(t, ganttPalette, colorForName("Apollo"))
	assert.Contains(t, ganttPalette, colorForName(""))
}

func TestProjectViewAddMessage(t *testing.T) {
	v, projectStore, _ := newProjectFixture(t)

	p := models.NewProject("Rollout", "", date(1), date(15))
	projectStore.Create(p)

	author := uuid.New()
	v.AddMessage(p.ID, author, "kickoff at noon")

	msgs := v.Projects()[0].Messages
	require.Len(t, msgs, 1)
	assert.Equal(t, "kickoff at noon", msgs[0].Body)
	assert.Equal(t, author, msgs[0].AuthorID)
	assert.Equal(t, p.ID, msgs[0].ProjectID)
}

func TestTimeline(t *testing.T) {
	item := func(name string, start, end int) models.GanttItem {
		return models.GanttItem{Name: name, StartDate: date(start), EndDate: date(end)}
	}

	t.Run("scales to the full width", func(t *testing.T) {
		bars := Timeline([]models.GanttItem{
			item("first", 1, 11),
			item("second", 11, 21),
		}, 40)
		require.Len(t, bars, 2)

		assert.Equal(t, 0, bars[0].Offset)
		assert.Equal(t, 20, bars[0].Width)
		assert.Equal(t, 20, bars[1].Offset)
		assert.Equal(t, 20, bars[1].Width)
	})

	t.Run("single day project still renders", func(t *testing.T) {
		bars := Timeline([]models.GanttItem{item("spike", 5, 5)}, 40)
		require.Len(t, bars, 1)
		assert.Equal(t, 0, bars[0].Offset)
		assert.GreaterOrEqual(t, bars[0].Width, 1)
		assert.LessOrEqual(t, bars[0].Width, 40)
	})

	t.Run("bar never overflows the width", func(t *testing.T) {
		bars := Timeline([]models.GanttItem{
			item("long", 1, 30),
			item("short", 28, 30),
		}, 10)
		for _, b := range bars {
			assert.LessOrEqual(t, b.Offset+b.Width, 10)
			assert.GreaterOrEqual(t, b.Width, 1)
		}
	})

	t.Run("inverted span stays on the track", func(t *testing.T) {
		bars := Timeline([]models.GanttItem{
			item("normal", 1, 10),
			item("inverted", 20, 5), // starts past every end date
		}, 30)
		require.Len(t, bars, 2)
		for _, b := range bars {
			assert.GreaterOrEqual(t, b.Offset, 0)
			assert.GreaterOrEqual(t, b.Width, 1)
			assert.LessOrEqual(t, b.Offset+b.Width, 30)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Nil(t, Timeline(nil, 40))
		assert.Nil(t, Timeline([]models.GanttItem{item("x", 1, 2)}, 0))
	})
}
