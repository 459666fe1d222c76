package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskPriority orders tasks from low to critical.
type TaskPriority string

const (
	PriorityLow      TaskPriority = "low"
	PriorityMedium   TaskPriority = "medium"
	PriorityHigh     TaskPriority = "high"
	PriorityCritical TaskPriority = "critical"
)

// Priorities lists all priorities in ascending order.
var Priorities = []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// Label returns the display name for a priority.
func (p TaskPriority) Label() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	case PriorityCritical:
		return "Critical"
	}
	return string(p)
}

// TaskStatus is the workflow state of a task. There is no enforced
// transition graph; any status may be written directly.
type TaskStatus string

const (
	StatusBacklog    TaskStatus = "backlog"
	StatusInProgress TaskStatus = "inProgress"
	StatusBlocked    TaskStatus = "blocked"
	StatusDone       TaskStatus = "done"
)

// Statuses lists all task statuses in display order.
var Statuses = []TaskStatus{StatusBacklog, StatusInProgress, StatusBlocked, StatusDone}

// Label returns the display name for a status.
func (s TaskStatus) Label() string {
	switch s {
	case StatusBacklog:
		return "Backlog"
	case StatusInProgress:
		return "In Progress"
	case StatusBlocked:
		return "Blocked"
	case StatusDone:
		return "Done"
	}
	return string(s)
}

// UserRole is the role of a profile.
type UserRole string

const (
	RoleOwner       UserRole = "owner"
	RoleAdmin       UserRole = "admin"
	RoleContributor UserRole = "contributor"
	RoleViewer      UserRole = "viewer"
)

// WorkflowStyle selects the preferred board workflow.
type WorkflowStyle string

const (
	WorkflowKanban WorkflowStyle = "kanban"
	WorkflowScrum  WorkflowStyle = "scrum"
	WorkflowSimple WorkflowStyle = "simple"
)

// WorkflowStyles lists all workflow styles in display order.
var WorkflowStyles = []WorkflowStyle{WorkflowKanban, WorkflowScrum, WorkflowSimple}

// ChatMessage is a message on a project's discussion thread. Messages are
// append-only; there is no edit or delete operation.
type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"projectId"`
	AuthorID  uuid.UUID `json:"authorId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewChatMessage creates a message stamped with the current time.
func NewChatMessage(projectID, authorID uuid.UUID, body string) ChatMessage {
	return ChatMessage{
		ID:        uuid.New(),
		ProjectID: projectID,
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: time.Now(),
	}
}

// Project is a dated span of work with member and task references.
// EndDate >= StartDate is expected but not enforced; callers validate.
type Project struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	Summary   string        `json:"summary"`
	StartDate time.Time     `json:"startDate"`
	EndDate   time.Time     `json:"endDate"`
	MemberIDs []uuid.UUID   `json:"memberIds"`
	TaskIDs   []uuid.UUID   `json:"taskIds"`
	Messages  []ChatMessage `json:"messages"`
}

// NewProject creates a project spanning the given dates.
func NewProject(name, summary string, start, end time.Time) Project {
	return Project{
		ID:        uuid.New(),
		Name:      name,
		Summary:   summary,
		StartDate: start,
		EndDate:   end,
	}
}

// DurationDays returns the whole-day span of the project, floored at 0.
func (p Project) DurationDays() int {
	return DaysBetween(p.StartDate, p.EndDate)
}

// Attachment references a file attached to a task.
type Attachment struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	FileURL string    `json:"fileUrl"`
}

// TaskItem is a single task. A nil ProjectID means a standalone task.
type TaskItem struct {
	ID          uuid.UUID    `json:"id"`
	ProjectID   *uuid.UUID   `json:"projectId,omitempty"`
	Title       string       `json:"title"`
	Details     string       `json:"details"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	Tags        []string     `json:"tags"`
	AssigneeIDs []uuid.UUID  `json:"assigneeUserIds"`
	Attachments []Attachment `json:"attachments"`
}

// NewTask creates a backlog task with medium priority.
func NewTask(title string) TaskItem {
	now := time.Now()
	return TaskItem{
		ID:        uuid.New(),
		Title:     title,
		Priority:  PriorityMedium,
		Status:    StatusBacklog,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasAnyTag reports whether the task carries at least one of the given tags.
// An empty selection matches nothing.
func (t TaskItem) HasAnyTag(selected map[string]struct{}) bool {
	for _, tag := range t.Tags {
		if _, ok := selected[tag]; ok {
			return true
		}
	}
	return false
}

// UserProfile is a person known to the tracker.
type UserProfile struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Role      UserRole  `json:"role"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
}

// NewUserProfile creates a profile with the owner role.
func NewUserProfile(fullName, email string) UserProfile {
	return UserProfile{
		ID:       uuid.New(),
		FullName: fullName,
		Email:    email,
		Role:     RoleOwner,
	}
}

// Initials returns the first letter of up to the first two
// whitespace-separated components of the full name.
func (u UserProfile) Initials() string {
	var b strings.Builder
	for i, part := range strings.Fields(u.FullName) {
		if i == 2 {
			break
		}
		b.WriteString(string([]rune(part)[:1]))
	}
	return b.String()
}

// AppSettings is the singleton settings document.
type AppSettings struct {
	NotificationsEnabled bool          `json:"notificationsEnabled"`
	PreferredWorkflow    WorkflowStyle `json:"preferredWorkflow"`
	OnboardingCompleted  bool          `json:"onboardingCompleted"`
}

// DefaultSettings returns the settings used before the user changes anything.
func DefaultSettings() AppSettings {
	return AppSettings{
		NotificationsEnabled: true,
		PreferredWorkflow:    WorkflowKanban,
		OnboardingCompleted:  false,
	}
}

// GanttItem is a derived timeline bar for one project. It is recomputed from
// project and task state and never persisted.
type GanttItem struct {
	ID        uuid.UUID
	Name      string
	StartDate time.Time
	EndDate   time.Time
	ColorHex  string
	Progress  float64
}

// DaysBetween returns the whole-day difference between two dates, measured
// on calendar-day boundaries and floored at 0.
func DaysBetween(start, end time.Time) int {
	s := startOfDay(start)
	e := startOfDay(end)
	days := int(e.Sub(s).Hours() / 24)
	return max(days, 0)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
