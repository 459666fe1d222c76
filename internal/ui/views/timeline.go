package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskpilot/internal/ui/keys"
	"github.com/tgienger/taskpilot/internal/ui/styles"
	"github.com/tgienger/taskpilot/internal/viewmodel"
)

// TimelineView renders the Gantt projection: one bar per project, placed on
// a shared horizontal day scale, filled to its completion ratio.
type TimelineView struct {
	vm     *viewmodel.ProjectView
	styles *styles.Styles
	keys   keys.KeyMap
	width  int
	height int
}

func NewTimelineView(vm *viewmodel.ProjectView) *TimelineView {
	return &TimelineView{
		vm:     vm,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
	}
}

func (v *TimelineView) Init() tea.Cmd {
	return nil
}

func (v *TimelineView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
	case tea.KeyMsg:
		if key.Matches(msg, v.keys.Quit) {
			return v, tea.Quit
		}
	}
	return v, nil
}

func (v *TimelineView) View() string {
	s := v.styles
	items := v.vm.GanttItems()

	if len(items) == 0 {
		return s.TitleMuted.Padding(1, 2).Render("No projects to display")
	}

	contentWidth := styles.ContentWidth(v.width)
	trackWidth := max(contentWidth-4, 20)
	bars := viewmodel.Timeline(items, trackWidth)

	lines := []string{s.Title.Render("Timeline"), ""}
	for _, bar := range bars {
		label := fmt.Sprintf("%s  %s – %s  %d%%",
			bar.Item.Name,
			bar.Item.StartDate.Format("Jan 2"),
			bar.Item.EndDate.Format("Jan 2"),
			int(bar.Item.Progress*100),
		)
		lines = append(lines,
			s.GanttLabel.Render(label),
			v.renderBar(bar, trackWidth),
			"",
		)
	}
	lines = append(lines, s.Help.Render(s.HelpKey.Render("q")+" quit"))

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return styles.CenterView(content, v.width, v.height)
}

// renderBar draws one track line: dim rail, a colored span, and a brighter
// fill over the completed fraction of the span.
func (v *TimelineView) renderBar(bar viewmodel.GanttBar, trackWidth int) string {
	s := v.styles

	fill := int(float64(bar.Width) * bar.Item.Progress)
	fill = clamp(fill, 0, bar.Width)

	barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(bar.Item.ColorHex))

	var b strings.Builder
	b.WriteString(s.GanttTrack.Render(strings.Repeat("·", bar.Offset)))
	b.WriteString(barStyle.Bold(true).Render(strings.Repeat("█", fill)))
	b.WriteString(barStyle.Render(strings.Repeat("░", bar.Width-fill)))
	rest := trackWidth - bar.Offset - bar.Width
	if rest > 0 {
		b.WriteString(s.GanttTrack.Render(strings.Repeat("·", rest)))
	}
	return b.String()
}
