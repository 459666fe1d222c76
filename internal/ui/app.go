package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskpilot/internal/ui/styles"
	"github.com/tgienger/taskpilot/internal/ui/views"
	"github.com/tgienger/taskpilot/internal/viewmodel"
)

// Currently active view
type View int

const (
	ViewProjects View = iota
	ViewTasks
	ViewTimeline
	ViewProfile
)

var tabNames = []string{"1 Projects", "2 Tasks", "3 Timeline", "4 Profile"}

// App routes between the four screens. All state lives in the view models;
// the app only owns which screen is showing.
type App struct {
	currentView View
	projectList *views.ProjectListView
	taskList    *views.TaskListView
	timeline    *views.TimelineView
	profile     *views.ProfileView

	tasks  *viewmodel.TaskView
	styles *styles.Styles
	width  int
	height int
}

// NewApp creates the application over its view models.
func NewApp(projects *viewmodel.ProjectView, tasks *viewmodel.TaskView, profile *viewmodel.ProfileView) *App {
	profileView := views.NewProfileView(profile)
	return &App{
		currentView: ViewProjects,
		projectList: views.NewProjectListView(projects, profile.CurrentUser),
		taskList:    views.NewTaskListView(tasks, nil),
		timeline:    views.NewTimelineView(projects),
		profile:     profileView,
		tasks:       tasks,
		styles:      styles.NewStyles(),
	}
}

func (a *App) Init() tea.Cmd {
	return a.projectList.Init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		msg.Height -= 2 // tab bar
		a.projectList.Update(msg)
		a.taskList.Update(msg)
		a.timeline.Update(msg)
		a.profile.Update(msg)
		return a, nil

	case views.SelectedProject:
		a.currentView = ViewTasks
		project := msg.Project
		a.taskList = views.NewTaskListView(a.tasks, &project)
		return a, tea.Batch(
			a.taskList.Init(),
			func() tea.Msg {
				return tea.WindowSizeMsg{Width: a.width, Height: a.height - 2}
			},
		)

	case views.BackToProjects:
		a.currentView = ViewProjects
		a.taskList = views.NewTaskListView(a.tasks, nil)
		a.projectList.Refresh()
		return a, func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height - 2}
		}

	case tea.KeyMsg:
		if !a.editing() {
			switch msg.String() {
			case "1":
				a.currentView = ViewProjects
				a.projectList.Refresh()
				return a, nil
			case "2":
				a.currentView = ViewTasks
				a.taskList = views.NewTaskListView(a.tasks, nil)
				return a, func() tea.Msg {
					return tea.WindowSizeMsg{Width: a.width, Height: a.height - 2}
				}
			case "3":
				a.currentView = ViewTimeline
				return a, nil
			case "4":
				a.currentView = ViewProfile
				return a, nil
			}
		}
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewProjects:
		_, cmd = a.projectList.Update(msg)
	case ViewTasks:
		_, cmd = a.taskList.Update(msg)
	case ViewTimeline:
		_, cmd = a.timeline.Update(msg)
	case ViewProfile:
		_, cmd = a.profile.Update(msg)
	}

	return a, cmd
}

// editing reports whether the active view is capturing text input, in which
// case the tab-switch keys are forwarded instead of handled.
func (a *App) editing() bool {
	switch a.currentView {
	case ViewProjects:
		return a.projectList.Editing()
	case ViewTasks:
		return a.taskList.Editing()
	case ViewProfile:
		return a.profile.Editing()
	}
	return false
}

func (a *App) View() string {
	var body string
	switch a.currentView {
	case ViewTasks:
		body = a.taskList.View()
	case ViewTimeline:
		body = a.timeline.View()
	case ViewProfile:
		body = a.profile.View()
	default:
		body = a.projectList.View()
	}
	return a.renderTabs() + "\n" + body
}

func (a *App) renderTabs() string {
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		if View(i) == a.currentView {
			tabs[i] = a.styles.TabActive.Render(name)
		} else {
			tabs[i] = a.styles.Tab.Render(name)
		}
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Center, tabs...)
	return styles.CenterView(bar, a.width, 1)
}
