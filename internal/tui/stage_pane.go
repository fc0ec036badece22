package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/zappy/internal/agent"
	"github.com/aristath/zappy/internal/events"
)

// Stage statuses.
const (
	statusPending   = "pending"
	statusRunning   = "running"
	statusCompleted = "completed"
	statusSkipped   = "skipped"
	statusFailed    = "failed"
)

// StageState is the display state of one pipeline role.
type StageState struct {
	Role     agent.Role
	Status   string
	Content  string
	Provider string
	Model    string
	Tokens   int
}

// StagePaneModel lists the pipeline roles and shows the selected role's output.
type StagePaneModel struct {
	runID       string
	stages      map[agent.Role]*StageState
	selectedIdx int
	viewport    viewport.Model
	width       int
	height      int
	focused     bool
}

// NewStagePaneModel creates a stage pane with every role pending.
func NewStagePaneModel() StagePaneModel {
	stages := make(map[agent.Role]*StageState, len(agent.Roles))
	for _, r := range agent.Roles {
		stages[r] = &StageState{Role: r, Status: statusPending}
	}
	return StagePaneModel{
		stages:   stages,
		viewport: viewport.New(0, 0),
	}
}

// Update handles messages for the stage pane.
func (m StagePaneModel) Update(msg tea.Msg) (StagePaneModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !m.focused {
			break
		}
		switch msg.String() {
		case keyDown, keyArrowDown:
			if m.selectedIdx < len(agent.Roles)-1 {
				m.selectedIdx++
				m.updateViewportContent()
			}
		case keyUp, keyArrowUp:
			if m.selectedIdx > 0 {
				m.selectedIdx--
				m.updateViewportContent()
			}
		default:
			m.viewport, cmd = m.viewport.Update(msg)
		}

	case events.RunProgressEvent:
		if msg.ID != m.runID {
			m.reset(msg.ID)
		}
		for _, name := range msg.ActiveRoles {
			if s, ok := m.stages[agent.Role(name)]; ok && s.Status == statusPending {
				s.Status = statusRunning
			}
		}
		m.updateViewportContent()

	case events.StageCompletedEvent:
		if s, ok := m.stages[agent.Role(msg.Role)]; ok {
			s.Status = statusCompleted
			if msg.Skipped {
				s.Status = statusSkipped
			}
			s.Content = msg.Content
			s.Provider = msg.Provider
			s.Model = msg.Model
			s.Tokens = msg.TotalTokens
			m.updateViewportContent()
		}

	case events.RunFailedEvent:
		if s, ok := m.stages[agent.Role(msg.Role)]; ok {
			s.Status = statusFailed
			s.Content = "[Failed: " + msg.Err + "]"
		}
		// Reviewers still marked running were discarded with the failure.
		for _, s := range m.stages {
			if s.Status == statusRunning {
				s.Status = statusPending
			}
		}
		m.updateViewportContent()
	}

	return m, cmd
}

// View renders the stage pane.
func (m StagePaneModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	listWidth := 28
	viewportWidth := m.width - listWidth - 4

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderStageList(listWidth),
		lipgloss.NewStyle().
			Width(viewportWidth).
			Height(m.height-2).
			Render(m.viewport.View()),
	)

	style := StyleUnfocusedBorder
	if m.focused {
		style = StyleFocusedBorder
	}
	return style.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(content)
}

func (m StagePaneModel) renderStageList(width int) string {
	var b strings.Builder

	title := StyleTitle.Render("Stages")
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", min(width, lipgloss.Width(title))))
	b.WriteString("\n\n")

	for i, role := range agent.Roles {
		s := m.stages[role]
		name := role.DisplayName()
		if len(name) > width-2 {
			name = name[:width-5] + "..."
		}
		line := StatusIcon(s.Status) + " " + name
		if i == m.selectedIdx {
			line = StyleSelected.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(m.height - 2).
		Render(b.String())
}

// StatusIcon returns a styled status indicator.
func StatusIcon(status string) string {
	switch status {
	case statusRunning:
		return StyleStatusRunning.Render("●")
	case statusCompleted:
		return StyleStatusComplete.Render("✓")
	case statusFailed:
		return StyleStatusFailed.Render("✗")
	case statusSkipped:
		return StyleStatusSkipped.Render("-")
	default:
		return StyleStatusPending.Render("○")
	}
}

// reset marks every stage pending for a new run. The batch runner reuses
// the same pane for consecutive topics.
func (m *StagePaneModel) reset(runID string) {
	m.runID = runID
	for _, s := range m.stages {
		*s = StageState{Role: s.Role, Status: statusPending}
	}
}

// Selected returns the state of the highlighted role.
func (m StagePaneModel) Selected() StageState {
	return *m.stages[agent.Roles[m.selectedIdx]]
}

func (m *StagePaneModel) updateViewportContent() {
	s := m.stages[agent.Roles[m.selectedIdx]]

	var content string
	switch s.Status {
	case statusPending:
		content = "Waiting..."
	case statusRunning:
		content = "Generating..."
	case statusSkipped:
		content = "[Skipped: role disabled]"
	default:
		content = s.Content
		if s.Provider != "" {
			content += fmt.Sprintf("\n\n[%s/%s, %d tokens]", s.Provider, s.Model, s.Tokens)
		}
	}
	m.viewport.SetContent(content)
	m.viewport.GotoTop()
}

func (m *StagePaneModel) resizeViewport() {
	m.viewport.Width = max(m.width-28-4, 10)
	m.viewport.Height = max(m.height-4, 5)
}

// SetSize updates the pane dimensions.
func (m *StagePaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.resizeViewport()
}

// SetFocused updates the focus state.
func (m *StagePaneModel) SetFocused(focused bool) {
	m.focused = focused
}
