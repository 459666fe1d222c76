package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tgienger/taskpilot/internal/models"
	"github.com/tgienger/taskpilot/internal/storage"
)

// TaskStore owns the canonical task collection. It follows the same
// publish-then-debounced-save discipline as ProjectStore; additionally it
// stamps UpdatedAt on every update, regardless of the caller-supplied value.
type TaskStore struct {
	mu    sync.Mutex
	tasks []models.TaskItem
	subs  []func([]models.TaskItem)

	gateway *storage.Gateway
	saver   *saver
	log     *zap.Logger
	now     func() time.Time
}

// NewTaskStore loads the persisted collection, falling back to an empty one
// if the document is missing or corrupt.
func NewTaskStore(gateway *storage.Gateway, log *zap.Logger, opts ...Option) *TaskStore {
	o := buildOptions(opts)
	return &TaskStore{
		tasks:   storage.LoadOrDefault(gateway, storage.SlotTasks, []models.TaskItem{}),
		gateway: gateway,
		saver:   newSaver(o.debounce),
		log:     log.Named("tasks"),
		now:     o.now,
	}
}

// Subscribe registers fn to be called with the full collection on every
// mutation, in mutation order. fn receives the current collection
// immediately. The snapshot is shared; treat it as read-only, and do not
// call back into the store from fn.
func (s *TaskStore) Subscribe(fn func([]models.TaskItem)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
	fn(s.snapshotLocked())
}

// Tasks returns a snapshot of the collection in insertion order.
func (s *TaskStore) Tasks() []models.TaskItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Create appends a task to the collection.
func (s *TaskStore) Create(t models.TaskItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, t)
	s.changedLocked()
}

// Update replaces the task with the same id in place, stamping UpdatedAt
// with the current time even if the caller passed a stale value. An unknown
// id is a silent no-op.
func (s *TaskStore) Update(t models.TaskItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == t.ID {
			t.UpdatedAt = s.now()
			s.tasks[i] = t
			s.changedLocked()
			return
		}
	}
}

// Delete removes the tasks with the given ids. Unmatched ids are ignored.
func (s *TaskStore) Delete(ids ...uuid.UUID) {
	drop := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if _, ok := drop[t.ID]; !ok {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(s.tasks) {
		return
	}
	s.tasks = kept
	s.changedLocked()
}

// ForProject returns the tasks owned by the given project. A nil projectID
// selects standalone tasks.
func (s *TaskStore) ForProject(projectID *uuid.UUID) []models.TaskItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.TaskItem
	for _, t := range s.tasks {
		if sameProject(t.ProjectID, projectID) {
			out = append(out, t)
		}
	}
	return out
}

// MatchingTags returns the tasks whose tag set intersects the selection
// (union semantics). An empty selection returns every task.
func (s *TaskStore) MatchingTags(selected map[string]struct{}) []models.TaskItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(selected) == 0 {
		return s.snapshotLocked()
	}
	var out []models.TaskItem
	for _, t := range s.tasks {
		if t.HasAnyTag(selected) {
			out = append(out, t)
		}
	}
	return out
}

// Overdue returns tasks with a due date before ref that are not done.
func (s *TaskStore) Overdue(ref time.Time) []models.TaskItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.TaskItem
	for _, t := range s.tasks {
		if t.DueDate != nil && t.DueDate.Before(ref) && t.Status != models.StatusDone {
			out = append(out, t)
		}
	}
	return out
}

// GroupedByStatus buckets the collection by status, preserving insertion
// order within each bucket.
func (s *TaskStore) GroupedByStatus() map[models.TaskStatus][]models.TaskItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	grouped := make(map[models.TaskStatus][]models.TaskItem)
	for _, t := range s.tasks {
		grouped[t.Status] = append(grouped[t.Status], t)
	}
	return grouped
}

// Close flushes any pending write.
func (s *TaskStore) Close() {
	s.saver.flush()
}

func (s *TaskStore) changedLocked() {
	snapshot := s.snapshotLocked()
	s.saver.trigger(func() {
		if err := storage.Save(s.gateway, storage.SlotTasks, snapshot); err != nil {
			s.log.Warn("save failed", zap.Error(err))
		}
	})
	for _, fn := range s.subs {
		fn(snapshot)
	}
}

func (s *TaskStore) snapshotLocked() []models.TaskItem {
	snapshot := make([]models.TaskItem, len(s.tasks))
	copy(snapshot, s.tasks)
	return snapshot
}

func sameProject(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
