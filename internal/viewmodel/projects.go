package viewmodel

import (
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tgienger/taskpilot/internal/models"
	"github.com/tgienger/taskpilot/internal/store"
)

// ganttPalette is the fixed set of bar colors. A project's color is picked
// by hashing its name, so equal names map to equal colors within a session;
// nothing relies on the assignment being stable across releases.
var ganttPalette = []string{"#bd0e1b", "#0a1a3b", "#ffbe00"}

// fallbackColor is used when no palette pick is possible.
const fallbackColor = "#0a1a3b"

// ProjectView exposes the live project collection and a Gantt projection
// derived from both the project and task collections. Each project's
// progress is the done fraction of its tasks, with no tasks defined as 0.
type ProjectView struct {
	mu       sync.Mutex
	projects []models.Project
	tasks    []models.TaskItem
	gantt    []models.GanttItem

	projectStore *store.ProjectStore
	taskStore    *store.TaskStore
}

// NewProjectView subscribes to both stores and computes the initial
// projection.
func NewProjectView(projectStore *store.ProjectStore, taskStore *store.TaskStore) *ProjectView {
	v := &ProjectView{
		projectStore: projectStore,
		taskStore:    taskStore,
	}
	projectStore.Subscribe(func(projects []models.Project) {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.projects = projects
		v.recomputeLocked()
	})
	taskStore.Subscribe(func(tasks []models.TaskItem) {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.tasks = tasks
		v.recomputeLocked()
	})
	return v
}

func (v *ProjectView) recomputeLocked() {
	gantt := make([]models.GanttItem, 0, len(v.projects))
	for _, p := range v.projects {
		var total, done int
		for _, t := range v.tasks {
			if t.ProjectID != nil && *t.ProjectID == p.ID {
				total++
				if t.Status == models.StatusDone {
					done++
				}
			}
		}
		progress := 0.0
		if total > 0 {
			progress = float64(done) / float64(total)
		}
		gantt = append(gantt, models.GanttItem{
			ID:        p.ID,
			Name:      p.Name,
			StartDate: p.StartDate,
			EndDate:   p.EndDate,
			ColorHex:  colorForName(p.Name),
			Progress:  progress,
		})
	}
	v.gantt = gantt
}

// Projects returns the live project collection in insertion order.
func (v *ProjectView) Projects() []models.Project {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]models.Project, len(v.projects))
	copy(out, v.projects)
	return out
}

// GanttItems returns the derived timeline bars, one per project.
func (v *ProjectView) GanttItems() []models.GanttItem {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]models.GanttItem, len(v.gantt))
	copy(out, v.gantt)
	return out
}

// AddProject creates a project; an end date before the start is accepted
// as-is (validation is the caller's concern).
func (v *ProjectView) AddProject(name, summary string, start, end time.Time) {
	v.projectStore.Create(models.NewProject(name, summary, start, end))
}

// Update replaces a project by id.
func (v *ProjectView) Update(p models.Project) { v.projectStore.Update(p) }

// Delete removes projects by id. Their tasks are left in place.
func (v *ProjectView) Delete(ids ...uuid.UUID) { v.projectStore.Delete(ids...) }

// AddMessage appends a chat message to the project's thread.
func (v *ProjectView) AddMessage(projectID, authorID uuid.UUID, body string) {
	v.projectStore.AddMessage(projectID, models.NewChatMessage(projectID, authorID, body))
}

// TasksForProject returns the tasks owned by the given project.
func (v *ProjectView) TasksForProject(projectID uuid.UUID) []models.TaskItem {
	return v.taskStore.ForProject(&projectID)
}

// ActiveProjects returns projects whose span contains the current time.
func (v *ProjectView) ActiveProjects() []models.Project {
	return v.projectStore.Active(time.Now())
}

// colorForName deterministically picks a palette color from a hash of the
// project name.
func colorForName(name string) string {
	if len(ganttPalette) == 0 {
		return fallbackColor
	}
	h := fnv.New32a()
	h.Write([]byte(name))
	return ganttPalette[h.Sum32()%uint32(len(ganttPalette))]
}

// GanttBar is one positioned timeline bar: a horizontal offset and width in
// display cells, scaled to the available width.
type GanttBar struct {
	Item   models.GanttItem
	Offset int
	Width  int
}

// Timeline normalizes the items against their global date range and scales
// them to the available width. Degenerate ranges never divide by zero: the
// total span and each item's length are floored at one day, and offsets
// before the range clamp to zero.
func Timeline(items []models.GanttItem, width int) []GanttBar {
	if len(items) == 0 || width <= 0 {
		return nil
	}

	globalStart := items[0].StartDate
	globalEnd := items[0].EndDate
	for _, it := range items[1:] {
		if it.StartDate.Before(globalStart) {
			globalStart = it.StartDate
		}
		if it.EndDate.After(globalEnd) {
			globalEnd = it.EndDate
		}
	}

	totalDays := max(models.DaysBetween(globalStart, globalEnd), 1)
	unit := float64(width) / float64(totalDays)

	bars := make([]GanttBar, 0, len(items))
	for _, it := range items {
		// An inverted span can start past the global max end; clamp so the
		// bar stays on the track.
		offsetDays := min(models.DaysBetween(globalStart, it.StartDate), totalDays)
		lengthDays := max(models.DaysBetween(it.StartDate, it.EndDate), 1)

		offset := min(int(float64(offsetDays)*unit), width-1)
		w := max(int(float64(lengthDays)*unit), 1)
		if offset+w > width {
			w = max(width-offset, 1)
		}
		bars = append(bars, GanttBar{Item: it, Offset: offset, Width: w})
	}
	return bars
}
