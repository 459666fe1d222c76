package viewmodel

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tgienger/taskpilot/internal/models"
	"github.com/tgienger/taskpilot/internal/store"
)

// TaskView projects the task collection through two filter facets: a tag
// selection (union semantics) and an optional single status. The projection
// recomputes synchronously whenever the collection or either facet changes;
// there is no manual refresh. The projection is derived state only; the
// TaskStore remains the single source of truth.
type TaskView struct {
	mu       sync.Mutex
	tasks    []models.TaskItem
	filtered []models.TaskItem
	tags     map[string]struct{}
	status   *models.TaskStatus

	store *store.TaskStore
}

// NewTaskView subscribes to the task store and computes the initial
// projection.
func NewTaskView(taskStore *store.TaskStore) *TaskView {
	v := &TaskView{
		tags:  make(map[string]struct{}),
		store: taskStore,
	}
	taskStore.Subscribe(func(tasks []models.TaskItem) {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.tasks = tasks
		v.recomputeLocked()
	})
	return v
}

// recomputeLocked applies the tag facet then the status facet. Both compose
// with logical AND; an empty facet leaves the list untouched.
func (v *TaskView) recomputeLocked() {
	filtered := v.tasks
	if len(v.tags) > 0 {
		kept := make([]models.TaskItem, 0, len(filtered))
		for _, t := range filtered {
			if t.HasAnyTag(v.tags) {
				kept = append(kept, t)
			}
		}
		filtered = kept
	}
	if v.status != nil {
		kept := make([]models.TaskItem, 0, len(filtered))
		for _, t := range filtered {
			if t.Status == *v.status {
				kept = append(kept, t)
			}
		}
		filtered = kept
	}
	v.filtered = filtered
}

// FilteredTasks returns the current projection.
func (v *TaskView) FilteredTasks() []models.TaskItem {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]models.TaskItem, len(v.filtered))
	copy(out, v.filtered)
	return out
}

// AllTasks returns the unfiltered collection.
func (v *TaskView) AllTasks() []models.TaskItem {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]models.TaskItem, len(v.tasks))
	copy(out, v.tasks)
	return out
}

// SelectedTags returns the active tag selection.
func (v *TaskView) SelectedTags() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, 0, len(v.tags))
	for tag := range v.tags {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// SetSelectedTags replaces the tag selection and recomputes.
func (v *TaskView) SetSelectedTags(tags ...string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tags = make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		v.tags[tag] = struct{}{}
	}
	v.recomputeLocked()
}

// ToggleTag adds or removes one tag from the selection and recomputes.
func (v *TaskView) ToggleTag(tag string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.tags[tag]; ok {
		delete(v.tags, tag)
	} else {
		v.tags[tag] = struct{}{}
	}
	v.recomputeLocked()
}

// SelectedStatus returns the active status facet, or nil.
func (v *TaskView) SelectedStatus() *models.TaskStatus {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

// SetSelectedStatus sets the status facet (nil clears it) and recomputes.
func (v *TaskView) SetSelectedStatus(status *models.TaskStatus) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.status = status
	v.recomputeLocked()
}

// AllTags returns the union of every task's tags, sorted.
func (v *TaskView) AllTags() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	set := make(map[string]struct{})
	for _, t := range v.tasks {
		for _, tag := range t.Tags {
			set[tag] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for tag := range set {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// OverdueTasks returns tasks past their due date that are not done.
func (v *TaskView) OverdueTasks() []models.TaskItem {
	return v.store.Overdue(time.Now())
}

// TasksGroupedByStatus passes through to the store's grouping helper.
func (v *TaskView) TasksGroupedByStatus() map[models.TaskStatus][]models.TaskItem {
	return v.store.GroupedByStatus()
}

// AddTask creates a task from the given fields.
func (v *TaskView) AddTask(title, details string, priority models.TaskPriority, dueDate *time.Time, tags []string, projectID *uuid.UUID) {
	t := models.NewTask(title)
	t.Details = details
	t.Priority = priority
	t.DueDate = dueDate
	t.Tags = tags
	t.ProjectID = projectID
	v.store.Create(t)
}

// Create adds a fully formed task.
func (v *TaskView) Create(t models.TaskItem) { v.store.Create(t) }

// Update replaces a task by id; the store stamps UpdatedAt.
func (v *TaskView) Update(t models.TaskItem) { v.store.Update(t) }

// Delete removes tasks by id.
func (v *TaskView) Delete(ids ...uuid.UUID) { v.store.Delete(ids...) }

// ToggleStatus advances the task along the fixed cycle
// backlog→inProgress→done→backlog, with blocked rejoining at inProgress.
func (v *TaskView) ToggleStatus(t models.TaskItem) {
	switch t.Status {
	case models.StatusBacklog:
		t.Status = models.StatusInProgress
	case models.StatusInProgress:
		t.Status = models.StatusDone
	case models.StatusBlocked:
		t.Status = models.StatusInProgress
	case models.StatusDone:
		t.Status = models.StatusBacklog
	}
	v.store.Update(t)
}
