package views

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskpilot/internal/models"
	"github.com/tgienger/taskpilot/internal/ui/keys"
	"github.com/tgienger/taskpilot/internal/ui/styles"
	"github.com/tgienger/taskpilot/internal/viewmodel"
)

type projectItem struct {
	project models.Project
	tasks   int
}

func (i projectItem) Title() string       { return i.project.Name }
func (i projectItem) Description() string { return i.project.Summary }
func (i projectItem) FilterValue() string { return i.project.Name }

type projectDelegate struct {
	styles *styles.Styles
	width  int
}

func (d projectDelegate) Height() int                               { return 2 }
func (d projectDelegate) Spacing() int                              { return 1 }
func (d projectDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	p, ok := item.(projectItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)

	var titleStyle, descStyle lipgloss.Style
	if selected {
		titleStyle = d.styles.ListSelected.Width(width)
		descStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	} else {
		titleStyle = d.styles.ListItem.Width(width)
		descStyle = d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	span := fmt.Sprintf("%s – %s · %d tasks",
		p.project.StartDate.Format("Jan 2"),
		p.project.EndDate.Format("Jan 2"),
		p.tasks)

	title := titleStyle.Render(p.Title())
	desc := descStyle.Render(span)

	fmt.Fprintf(w, "%s\n%s", title, desc)
}

// SelectedProject is emitted when a project is opened.
type SelectedProject struct {
	Project models.Project
}

type ProjectListView struct {
	vm       *viewmodel.ProjectView
	authorID func() models.UserProfile
	list     list.Model
	delegate *projectDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int

	creating         bool
	messaging        bool
	confirmingDelete bool
	deleteTarget     models.Project
	messageTarget    models.Project

	newName    textinput.Model
	newSummary textinput.Model
	newMessage textinput.Model
	focusIdx   int // 0=name, 1=summary, 2=confirm
}

func NewProjectListView(vm *viewmodel.ProjectView, currentUser func() models.UserProfile) *ProjectListView {
	s := styles.NewStyles()

	newName := textinput.New()
	newName.Placeholder = "Project name"
	newName.CharLimit = 100

	newSummary := textinput.New()
	newSummary.Placeholder = "Summary (optional)"
	newSummary.CharLimit = 200

	newMessage := textinput.New()
	newMessage.Placeholder = "Message..."
	newMessage.CharLimit = 500

	delegate := &projectDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Projects"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &ProjectListView{
		vm:         vm,
		authorID:   currentUser,
		list:       l,
		delegate:   delegate,
		styles:     s,
		keys:       keys.DefaultKeyMap(),
		newName:    newName,
		newSummary: newSummary,
		newMessage: newMessage,
	}
}

func (v *ProjectListView) Init() tea.Cmd {
	v.Refresh()
	return nil
}

// Editing reports whether a text input or modal owns the keyboard.
func (v *ProjectListView) Editing() bool {
	return v.creating || v.messaging || v.confirmingDelete ||
		v.list.FilterState() == list.Filtering
}

// Refresh re-reads the projection into the list.
func (v *ProjectListView) Refresh() {
	projects := v.vm.Projects()
	items := make([]list.Item, len(projects))
	for i, p := range projects {
		items[i] = projectItem{project: p, tasks: len(v.vm.TasksForProject(p.ID))}
	}
	v.list.SetItems(items)
}

func (v *ProjectListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-6)
		return v, nil

	case tea.KeyMsg:
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.creating {
			return v.updateCreating(msg)
		}
		if v.messaging {
			return v.updateMessaging(msg)
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.New):
			v.creating = true
			v.focusIdx = 0
			v.newName.Reset()
			v.newSummary.Reset()
			v.newName.Focus()
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				return v, func() tea.Msg {
					return SelectedProject{Project: item.project}
				}
			}
		case key.Matches(msg, v.keys.Delete):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				v.confirmingDelete = true
				v.deleteTarget = item.project
				return v, nil
			}
		case msg.String() == "m":
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				v.messaging = true
				v.messageTarget = item.project
				v.newMessage.Reset()
				v.newMessage.Focus()
				return v, textinput.Blink
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *ProjectListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.vm.Delete(v.deleteTarget.ID)
		v.confirmingDelete = false
		v.Refresh()
		return v, nil
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *ProjectListView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 3
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx < 2 {
			v.focusIdx++
			v.updateFocus()
			return v, nil
		}
		name := strings.TrimSpace(v.newName.Value())
		if name != "" {
			start := time.Now()
			v.vm.AddProject(name, strings.TrimSpace(v.newSummary.Value()), start, start.AddDate(0, 0, 7))
			v.creating = false
			v.Refresh()
		}
		return v, nil
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.newName, cmd = v.newName.Update(msg)
	case 1:
		v.newSummary, cmd = v.newSummary.Update(msg)
	}
	return v, cmd
}

func (v *ProjectListView) updateMessaging(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.messaging = false
		return v, nil
	case key.Matches(msg, v.keys.Enter):
		body := strings.TrimSpace(v.newMessage.Value())
		if body != "" {
			v.vm.AddMessage(v.messageTarget.ID, v.authorID().ID, body)
			v.messaging = false
			v.Refresh()
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.newMessage, cmd = v.newMessage.Update(msg)
	return v, cmd
}

func (v *ProjectListView) updateFocus() {
	v.newName.Blur()
	v.newSummary.Blur()
	switch v.focusIdx {
	case 0:
		v.newName.Focus()
	case 1:
		v.newSummary.Focus()
	}
}

func (v *ProjectListView) View() string {
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}
	if v.creating {
		return v.renderCreateForm()
	}
	if v.messaging {
		return v.renderMessageForm()
	}
	if len(v.list.Items()) == 0 {
		return v.renderEmpty()
	}

	content := v.list.View() + "\n" + v.renderHelp()
	return styles.CenterView(content, v.width, v.height)
}

func (v *ProjectListView) renderEmpty() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render("No Projects"),
		"",
		s.TitleMuted.Render("Press 'n' to create your first project"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectListView) renderCreateForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	nameStyle := s.Input
	summaryStyle := s.Input
	btnStyle := s.Button

	switch v.focusIdx {
	case 0:
		nameStyle = s.InputFocused
	case 1:
		summaryStyle = s.InputFocused
	case 2:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("New Project"),
		"",
		"Name:",
		nameStyle.Width(inputWidth).Render(v.newName.View()),
		"",
		"Summary:",
		summaryStyle.Width(inputWidth).Render(v.newSummary.View()),
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

func (v *ProjectListView) renderMessageForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 60)

	var thread []string
	for _, m := range v.messageTarget.Messages {
		thread = append(thread, s.TitleMuted.Render(m.CreatedAt.Format("Jan 2 15:04"))+" "+m.Body)
	}
	if len(thread) == 0 {
		thread = append(thread, s.TitleMuted.Render("No messages yet"))
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(v.messageTarget.Name),
		"",
		lipgloss.JoinVertical(lipgloss.Left, thread...),
		"",
		s.InputFocused.Width(inputWidth).Render(v.newMessage.View()),
		"",
		s.TitleMuted.Render("↵: send • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectListView) renderHelp() string {
	return v.styles.Help.Render(
		fmt.Sprintf("%s select • %s new • %s del • %s message • %s quit",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("m"),
			v.styles.HelpKey.Render("q"),
		),
	)
}

func (v *ProjectListView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Project?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("%q (its tasks are kept)", v.deleteTarget.Name)),
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
