package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskpilot/internal/models"
	"github.com/tgienger/taskpilot/internal/ui/keys"
	"github.com/tgienger/taskpilot/internal/ui/styles"
	"github.com/tgienger/taskpilot/internal/viewmodel"
)

// ProfileView shows the current user and settings and drives the
// settings toggles.
type ProfileView struct {
	vm     *viewmodel.ProfileView
	styles *styles.Styles
	keys   keys.KeyMap
	width  int
	height int

	editing   bool
	editName  textinput.Model
	editEmail textinput.Model
	focusIdx  int // 0=name, 1=email, 2=confirm
}

func NewProfileView(vm *viewmodel.ProfileView) *ProfileView {
	editName := textinput.New()
	editName.Placeholder = "Full name"
	editName.CharLimit = 100

	editEmail := textinput.New()
	editEmail.Placeholder = "Email"
	editEmail.CharLimit = 100

	return &ProfileView{
		vm:        vm,
		styles:    styles.NewStyles(),
		keys:      keys.DefaultKeyMap(),
		editName:  editName,
		editEmail: editEmail,
	}
}

// Editing reports whether the edit form owns the keyboard.
func (v *ProfileView) Editing() bool {
	return v.editing
}

func (v *ProfileView) Init() tea.Cmd {
	return nil
}

func (v *ProfileView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case tea.KeyMsg:
		if v.editing {
			return v.updateEditing(msg)
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Edit):
			current := v.vm.CurrentUser()
			v.editing = true
			v.focusIdx = 0
			v.editName.SetValue(current.FullName)
			v.editEmail.SetValue(current.Email)
			v.editName.Focus()
			v.editEmail.Blur()
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Toggle):
			v.vm.ToggleNotifications(!v.vm.Settings().NotificationsEnabled)
			return v, nil
		case msg.String() == "w":
			v.cycleWorkflow()
			return v, nil
		case msg.String() == "o":
			if v.vm.Settings().OnboardingCompleted {
				v.vm.ResetOnboarding()
			} else {
				v.vm.CompleteOnboarding()
			}
			return v, nil
		}
	}

	return v, nil
}

func (v *ProfileView) cycleWorkflow() {
	current := v.vm.Settings().PreferredWorkflow
	for i, w := range models.WorkflowStyles {
		if w == current {
			v.vm.SetWorkflowStyle(models.WorkflowStyles[(i+1)%len(models.WorkflowStyles)])
			return
		}
	}
	v.vm.SetWorkflowStyle(models.WorkflowKanban)
}

func (v *ProfileView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
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
		profile := v.vm.CurrentUser()
		if name := strings.TrimSpace(v.editName.Value()); name != "" {
			profile.FullName = name
		}
		if email := strings.TrimSpace(v.editEmail.Value()); email != "" {
			profile.Email = email
		}
		v.vm.SaveProfile(profile)
		v.editing = false
		return v, nil
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.editName, cmd = v.editName.Update(msg)
	case 1:
		v.editEmail, cmd = v.editEmail.Update(msg)
	}
	return v, cmd
}

func (v *ProfileView) updateFocus() {
	v.editName.Blur()
	v.editEmail.Blur()
	switch v.focusIdx {
	case 0:
		v.editName.Focus()
	case 1:
		v.editEmail.Focus()
	}
}

func (v *ProfileView) View() string {
	if v.editing {
		return v.renderEditForm()
	}

	s := v.styles
	user := v.vm.CurrentUser()
	settings := v.vm.Settings()

	onOff := func(b bool) string {
		if b {
			return s.Title.Render("on")
		}
		return s.TitleMuted.Render("off")
	}

	avatar := s.ButtonPrimary.Render(" " + user.Initials() + " ")

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Center,
			avatar,
			"  ",
			lipgloss.JoinVertical(lipgloss.Left,
				s.Title.Render(user.FullName),
				s.TitleMuted.Render(user.Email+" · "+string(user.Role)),
			),
		),
		"",
		fmt.Sprintf("Notifications   %s", onOff(settings.NotificationsEnabled)),
		fmt.Sprintf("Permission      %s", onOff(v.vm.HasNotificationPermission())),
		fmt.Sprintf("Workflow        %s", s.Title.Render(string(settings.PreferredWorkflow))),
		fmt.Sprintf("Onboarding      %s", onOff(settings.OnboardingCompleted)),
		"",
		s.Help.Render(
			fmt.Sprintf("%s edit • %s notifications • %s workflow • %s onboarding • %s quit",
				s.HelpKey.Render("e"),
				s.HelpKey.Render("space"),
				s.HelpKey.Render("w"),
				s.HelpKey.Render("o"),
				s.HelpKey.Render("q"),
			),
		),
	)

	contentWidth := styles.ContentWidth(v.width)
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProfileView) renderEditForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	nameStyle, emailStyle, btnStyle := s.Input, s.Input, s.Button
	switch v.focusIdx {
	case 0:
		nameStyle = s.InputFocused
	case 1:
		emailStyle = s.InputFocused
	case 2:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Edit Profile"),
		"",
		"Name:",
		nameStyle.Width(inputWidth).Render(v.editName.View()),
		"",
		"Email:",
		emailStyle.Width(inputWidth).Render(v.editEmail.View()),
		"",
		btnStyle.Render(" Save "),
		"",
		s.TitleMuted.Render("Tab: next • ↵: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}
