package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/tgienger/taskpilot/internal/models"
	"github.com/tgienger/taskpilot/internal/ui/keys"
	"github.com/tgienger/taskpilot/internal/ui/styles"
	"github.com/tgienger/taskpilot/internal/viewmodel"
)

func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// BackToProjects is emitted when a project-scoped task list is closed.
type BackToProjects struct{}

// TaskListView shows the filtered task projection, optionally scoped to one
// project.
type TaskListView struct {
	vm      *viewmodel.TaskView
	project *models.Project

	styles *styles.Styles
	keys   keys.KeyMap
	width  int
	height int
	cursor int

	creating         bool
	confirmingDelete bool
	deleteTarget     models.TaskItem
	tagDropdown      bool
	tagCursor        int

	newTitle   textinput.Model
	newDetails textinput.Model
	newTags    textinput.Model
	focusIdx   int // 0=title, 1=details, 2=tags, 3=confirm
}

// NewTaskListView creates a task list. A nil project shows every task.
func NewTaskListView(vm *viewmodel.TaskView, project *models.Project) *TaskListView {
	newTitle := textinput.New()
	newTitle.Placeholder = "Task title"
	newTitle.CharLimit = 100

	newDetails := textinput.New()
	newDetails.Placeholder = "Details (optional)"
	newDetails.CharLimit = 200

	newTags := textinput.New()
	newTags.Placeholder = "Tags, comma separated"
	newTags.CharLimit = 100

	return &TaskListView{
		vm:         vm,
		project:    project,
		styles:     styles.NewStyles(),
		keys:       keys.DefaultKeyMap(),
		newTitle:   newTitle,
		newDetails: newDetails,
		newTags:    newTags,
	}
}

// rows returns the projection, scoped to the view's project when set.
func (v *TaskListView) rows() []models.TaskItem {
	tasks := v.vm.FilteredTasks()
	if v.project == nil {
		return tasks
	}
	var out []models.TaskItem
	for _, t := range tasks {
		if t.ProjectID != nil && *t.ProjectID == v.project.ID {
			out = append(out, t)
		}
	}
	return out
}

// Editing reports whether a text input or modal owns the keyboard.
func (v *TaskListView) Editing() bool {
	return v.creating || v.confirmingDelete || v.tagDropdown
}

func (v *TaskListView) Init() tea.Cmd {
	return nil
}

func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case tea.KeyMsg:
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.creating {
			return v.updateCreating(msg)
		}
		if v.tagDropdown {
			return v.updateTagDropdown(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := v.rows()

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		if v.project != nil {
			return v, func() tea.Msg { return BackToProjects{} }
		}
		return v, nil

	case key.Matches(msg, v.keys.Up):
		v.cursor = clamp(v.cursor-1, 0, max(len(rows)-1, 0))
		return v, nil

	case key.Matches(msg, v.keys.Down):
		v.cursor = clamp(v.cursor+1, 0, max(len(rows)-1, 0))
		return v, nil

	case key.Matches(msg, v.keys.Toggle):
		if v.cursor < len(rows) {
			v.vm.ToggleStatus(rows[v.cursor])
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.creating = true
		v.focusIdx = 0
		v.newTitle.Reset()
		v.newDetails.Reset()
		v.newTags.Reset()
		v.newTitle.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Delete):
		if v.cursor < len(rows) {
			v.confirmingDelete = true
			v.deleteTarget = rows[v.cursor]
		}
		return v, nil

	case key.Matches(msg, v.keys.Filter):
		if len(v.vm.AllTags()) > 0 {
			v.tagDropdown = true
			v.tagCursor = 0
		}
		return v, nil

	case key.Matches(msg, v.keys.Status):
		v.cycleStatusFilter()
		return v, nil
	}

	return v, nil
}

// cycleStatusFilter steps the status facet through
// all → backlog → inProgress → blocked → done → all.
func (v *TaskListView) cycleStatusFilter() {
	current := v.vm.SelectedStatus()
	if current == nil {
		s := models.StatusBacklog
		v.vm.SetSelectedStatus(&s)
		return
	}
	for i, s := range models.Statuses {
		if s == *current {
			if i == len(models.Statuses)-1 {
				v.vm.SetSelectedStatus(nil)
			} else {
				next := models.Statuses[i+1]
				v.vm.SetSelectedStatus(&next)
			}
			return
		}
	}
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.vm.Delete(v.deleteTarget.ID)
		v.confirmingDelete = false
		v.cursor = clamp(v.cursor, 0, max(len(v.rows())-1, 0))
		return v, nil
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *TaskListView) updateTagDropdown(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tags := v.vm.AllTags()

	switch {
	case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Filter):
		v.tagDropdown = false
		return v, nil
	case key.Matches(msg, v.keys.Up):
		v.tagCursor = clamp(v.tagCursor-1, 0, max(len(tags)-1, 0))
		return v, nil
	case key.Matches(msg, v.keys.Down):
		v.tagCursor = clamp(v.tagCursor+1, 0, max(len(tags)-1, 0))
		return v, nil
	case key.Matches(msg, v.keys.Enter), key.Matches(msg, v.keys.Toggle):
		if v.tagCursor < len(tags) {
			v.vm.ToggleTag(tags[v.tagCursor])
		}
		return v, nil
	case msg.String() == "c":
		v.vm.SetSelectedTags()
		v.tagDropdown = false
		return v, nil
	}

	return v, nil
}

func (v *TaskListView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 4
		v.updateEditFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx < 3 {
			v.focusIdx++
			v.updateEditFocus()
			return v, nil
		}
		v.saveTask()
		return v, nil
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.newTitle, cmd = v.newTitle.Update(msg)
	case 1:
		v.newDetails, cmd = v.newDetails.Update(msg)
	case 2:
		v.newTags, cmd = v.newTags.Update(msg)
	}
	return v, cmd
}

func (v *TaskListView) updateEditFocus() {
	v.newTitle.Blur()
	v.newDetails.Blur()
	v.newTags.Blur()
	switch v.focusIdx {
	case 0:
		v.newTitle.Focus()
	case 1:
		v.newDetails.Focus()
	case 2:
		v.newTags.Focus()
	}
}

func (v *TaskListView) saveTask() {
	title := strings.TrimSpace(v.newTitle.Value())
	if title == "" {
		return
	}

	var tags []string
	for _, tag := range strings.Split(v.newTags.Value(), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	var projectID *uuid.UUID
	if v.project != nil {
		id := v.project.ID
		projectID = &id
	}

	v.vm.AddTask(title, strings.TrimSpace(v.newDetails.Value()), models.PriorityMedium, nil, tags, projectID)
	v.creating = false
	v.cursor = max(len(v.rows())-1, 0)
}

func (v *TaskListView) View() string {
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}
	if v.creating {
		return v.renderCreateForm()
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		v.renderHeader(),
		v.renderTaskList(),
		v.renderHelp(),
	)
	if v.tagDropdown {
		content = lipgloss.JoinVertical(lipgloss.Left, v.renderTagDropdown(), content)
	}
	return styles.CenterView(content, v.width, v.height)
}

func (v *TaskListView) renderHeader() string {
	s := v.styles

	title := "Tasks"
	if v.project != nil {
		title = v.project.Name
	}

	header := s.Title.Render(title)
	if status := v.vm.SelectedStatus(); status != nil {
		header += "  " + s.TitleMuted.Render("("+status.Label()+")")
	}
	for _, tag := range v.vm.SelectedTags() {
		header += " " + s.TagSelected.Render("#"+tag)
	}
	return header
}

func (v *TaskListView) renderTaskList() string {
	rows := v.rows()
	if len(rows) == 0 {
		return v.styles.TitleMuted.Padding(1, 2).Render("No tasks match")
	}

	lines := make([]string, len(rows))
	for i, t := range rows {
		lines[i] = v.renderTaskItem(t, i == v.cursor)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func statusIcon(s models.TaskStatus) string {
	switch s {
	case models.StatusBacklog:
		return "[ ]"
	case models.StatusInProgress:
		return "[~]"
	case models.StatusBlocked:
		return "[!]"
	case models.StatusDone:
		return "[x]"
	}
	return "[?]"
}

func (v *TaskListView) renderTaskItem(t models.TaskItem, selected bool) string {
	s := v.styles

	style := s.ListItem
	if selected {
		style = s.ListSelected
	}

	line := fmt.Sprintf("%s %s %s", statusIcon(t.Status), s.TaskPriority.Render(t.Priority.Label()), s.TaskTitle.Render(t.Title))

	for _, tag := range t.Tags {
		line += " " + s.Tag.Render("#"+tag)
	}
	if t.DueDate != nil {
		due := t.DueDate.Format("Jan 2")
		if t.DueDate.Before(time.Now()) && t.Status != models.StatusDone {
			line += "  " + s.TaskOverdue.Render("due "+due)
		} else {
			line += "  " + s.TitleMuted.Render("due "+due)
		}
	}

	width := max(styles.ContentWidth(v.width)-4, 20)
	return style.Width(width).Render(line)
}

func (v *TaskListView) renderTagDropdown() string {
	s := v.styles
	tags := v.vm.AllTags()
	selected := make(map[string]bool)
	for _, tag := range v.vm.SelectedTags() {
		selected[tag] = true
	}

	lines := make([]string, 0, len(tags)+1)
	for i, tag := range tags {
		mark := "  "
		if selected[tag] {
			mark = "✓ "
		}
		line := mark + tag
		if i == v.tagCursor {
			line = s.ListSelected.Render(line)
		} else {
			line = s.ListItem.Render(line)
		}
		lines = append(lines, line)
	}
	lines = append(lines, s.TitleMuted.Render("space: toggle • c: clear • esc: close"))

	return s.Panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (v *TaskListView) renderCreateForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	titleStyle, detailsStyle, tagsStyle, btnStyle := s.Input, s.Input, s.Input, s.Button
	switch v.focusIdx {
	case 0:
		titleStyle = s.InputFocused
	case 1:
		detailsStyle = s.InputFocused
	case 2:
		tagsStyle = s.InputFocused
	case 3:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("New Task"),
		"",
		"Title:",
		titleStyle.Width(inputWidth).Render(v.newTitle.View()),
		"",
		"Details:",
		detailsStyle.Width(inputWidth).Render(v.newDetails.View()),
		"",
		"Tags:",
		tagsStyle.Width(inputWidth).Render(v.newTags.View()),
		"",
		btnStyle.Render(" Create "),
		"",
		s.TitleMuted.Render("Tab: next • ↵: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Task?"),
		"",
		s.TitleMuted.Render("\""+v.deleteTarget.Title+"\""),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderHelp() string {
	return v.styles.Help.Render(
		fmt.Sprintf("%s toggle • %s new • %s del • %s tags • %s status • %s back",
			v.styles.HelpKey.Render("space"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("t"),
			v.styles.HelpKey.Render("s"),
			v.styles.HelpKey.Render("esc"),
		),
	)
}
