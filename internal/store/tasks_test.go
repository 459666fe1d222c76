package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tgienger/taskpilot/internal/models"
	"github.com/tgienger/taskpilot/internal/storage"
)

func newTaskStore(t *testing.T, opts ...Option) *TaskStore {
	t.Helper()
	gateway, _ := newTestGateway(t)
	s := NewTaskStore(gateway, zap.NewNop(), opts...)
	t.Cleanup(s.Close)
	return s
}

func taggedTask(title string, tags ...string) models.TaskItem {
	task := models.NewTask(title)
	task.Tags = tags
	return task
}

func TestTaskStoreUpdateStampsUpdatedAt(t *testing.T) {
	stamp := time.Date(2026, time.July, 4, 12, 0, 0, 0, time.UTC)
	s := newTaskStore(t, WithClock(func() time.Time { return stamp }))

	task := models.NewTask("Review")
	s.Create(task)

	task.Title = "Review PR"
	task.UpdatedAt = time.Time{} // stale caller value is ignored
	s.Update(task)

	got := s.Tasks()[0]
	assert.Equal(t, "Review PR", got.Title)
	assert.True(t, stamp.Equal(got.UpdatedAt))
}

func TestTaskStoreUpdateUnknownIDIsNoOp(t *testing.T) {
	s := newTaskStore(t)
	s.Create(models.NewTask("Keep"))

	s.Update(models.NewTask("Ghost"))

	got := s.Tasks()
	require.Len(t, got, 1)
	assert.Equal(t, "Keep", got[0].Title)
}

func TestTaskStoreDelete(t *testing.T) {
	s := newTaskStore(t)
	t1 := models.NewTask("a")
	t2 := models.NewTask("b")
	t3 := models.NewTask("c")
	s.Create(t1)
	s.Create(t2)
	s.Create(t3)

	s.Delete(t1.ID, t3.ID, uuid.New())

	got := s.Tasks()
	require.Len(t, got, 1)
	assert.Equal(t, t2.ID, got[0].ID)

	s.Delete(t1.ID) // already gone
	assert.Len(t, s.Tasks(), 1)
}

func TestTaskStoreForProject(t *testing.T) {
	s := newTaskStore(t)
	projectID := uuid.New()

	owned := models.NewTask("owned")
	owned.ProjectID = &projectID
	standalone := models.NewTask("standalone")
	s.Create(owned)
	s.Create(standalone)

	got := s.ForProject(&projectID)
	require.Len(t, got, 1)
	assert.Equal(t, owned.ID, got[0].ID)

	free := s.ForProject(nil)
	require.Len(t, free, 1)
	assert.Equal(t, standalone.ID, free[0].ID)
}

func TestTaskStoreMatchingTags(t *testing.T) {
	s := newTaskStore(t)
	s.Create(taggedTask("a", "design"))
	s.Create(taggedTask("b", "backend"))
	s.Create(taggedTask("ab", "design", "backend"))
	s.Create(taggedTask("none"))

	t.Run("empty selection returns everything", func(t *testing.T) {
		assert.Len(t, s.MatchingTags(nil), 4)
		assert.Len(t, s.MatchingTags(map[string]struct{}{}), 4)
	})

	t.Run("single tag", func(t *testing.T) {
		got := s.MatchingTags(map[string]struct{}{"design": {}})
		require.Len(t, got, 2)
		assert.Equal(t, "a", got[0].Title)
		assert.Equal(t, "ab", got[1].Title)
	})

	t.Run("union across tags", func(t *testing.T) {
		got := s.MatchingTags(map[string]struct{}{"design": {}, "backend": {}})
		assert.Len(t, got, 3, "untagged task stays excluded")
	})
}

func TestTaskStoreOverdue(t *testing.T) {
	s := newTaskStore(t)
	ref := time.Date(2026, time.July, 10, 0, 0, 0, 0, time.UTC)
	past := ref.AddDate(0, 0, -1)
	future := ref.AddDate(0, 0, 1)

	late := models.NewTask("late")
	late.DueDate = &past
	doneLate := models.NewTask("done late")
	doneLate.DueDate = &past
	doneLate.Status = models.StatusDone
	upcoming := models.NewTask("upcoming")
	upcoming.DueDate = &future
	undated := models.NewTask("undated")

	s.Create(late)
	s.Create(doneLate)
	s.Create(upcoming)
	s.Create(undated)

	got := s.Overdue(ref)
	require.Len(t, got, 1)
	assert.Equal(t, "late", got[0].Title)
}

func TestTaskStoreGroupedByStatus(t *testing.T) {
	s := newTaskStore(t)
	first := models.NewTask("first")
	second := models.NewTask("second")
	working := models.NewTask("working")
	working.Status = models.StatusInProgress

	s.Create(first)
	s.Create(second)
	s.Create(working)

	grouped := s.GroupedByStatus()
	require.Len(t, grouped[models.StatusBacklog], 2)
	assert.Equal(t, "first", grouped[models.StatusBacklog][0].Title)
	require.Len(t, grouped[models.StatusInProgress], 1)
	assert.Empty(t, grouped[models.StatusDone])
}

func TestTaskStoreSurvivesWriteFailure(t *testing.T) {
	backend := &failingStore{}
	gateway := storage.NewGateway(backend, zap.NewNop())
	s := NewTaskStore(gateway, zap.NewNop(), WithDebounce(10*time.Millisecond))

	var published int
	s.Subscribe(func([]models.TaskItem) { published++ })
	require.Equal(t, 1, published)

	s.Create(models.NewTask("doomed"))
	assert.Equal(t, 2, published, "mutation publishes before the save can fail")

	require.Eventually(t, func() bool { return backend.writeAttempts() == 1 },
		time.Second, 5*time.Millisecond, "debounced save fires against the broken disk")

	s.Create(models.NewTask("after the failure"))
	assert.Len(t, s.Tasks(), 2, "store state is intact after a failed write")
	assert.Equal(t, 3, published)

	s.Close()
	assert.Equal(t, 2, backend.writeAttempts(), "later mutations still attempt to persist")
}

func TestTaskStoreSubscribeOrder(t *testing.T) {
	s := newTaskStore(t)

	var titles []string
	s.Subscribe(func(tasks []models.TaskItem) {
		if len(tasks) > 0 {
			titles = append(titles, tasks[len(tasks)-1].Title)
		}
	})

	s.Create(models.NewTask("one"))
	s.Create(models.NewTask("two"))
	s.Create(models.NewTask("three"))

	assert.Equal(t, []string{"one", "two", "three"}, titles, "notifications arrive in mutation order")
}
