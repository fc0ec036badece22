package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aristath/zappy/internal/agent"
	"github.com/aristath/zappy/internal/events"
)

// ProgressPaneModel shows the run state, stage count and token total.
type ProgressPaneModel struct {
	runID       string
	keyword     string
	state       string
	activeRoles []string
	stages      int
	totalTokens int
	warnings    []string
	errMsg      string
	runs        int
	width       int
	height      int
	focused     bool
}

// NewProgressPaneModel creates an idle progress pane.
func NewProgressPaneModel() ProgressPaneModel {
	return ProgressPaneModel{state: "idle"}
}

// Update handles messages for the progress pane.
func (m ProgressPaneModel) Update(msg tea.Msg) (ProgressPaneModel, tea.Cmd) {
	switch msg := msg.(type) {
	case events.RunProgressEvent:
		if msg.ID != m.runID {
			m.runID = msg.ID
			m.warnings = nil
			m.errMsg = ""
			m.runs++
		}
		m.keyword = msg.Keyword
		m.state = msg.State
		m.activeRoles = msg.ActiveRoles
		m.stages = msg.Stages
		m.totalTokens = msg.TotalTokens

	case events.RunCompletedEvent:
		m.totalTokens = msg.TotalTokens
		m.warnings = msg.Warnings

	case events.RunFailedEvent:
		m.errMsg = msg.Err
		if msg.Role != "" {
			m.errMsg = msg.Role + ": " + msg.Err
		}
	}
	return m, nil
}

// View renders the progress pane.
func (m ProgressPaneModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder

	b.WriteString(StyleTitle.Render("Run Progress"))
	b.WriteString("\n\n")

	if m.keyword != "" {
		fmt.Fprintf(&b, "Topic:  %s", m.keyword)
		if m.runs > 1 {
			fmt.Fprintf(&b, " (run %d)", m.runs)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "State:  %s\n", m.renderState())
	if len(m.activeRoles) > 0 {
		fmt.Fprintf(&b, "Active: %s\n", strings.Join(m.activeRoles, ", "))
	}
	fmt.Fprintf(&b, "Tokens: %d\n\n", m.totalTokens)

	total := len(agent.Roles)
	barWidth := max(m.width-14, 10)
	fmt.Fprintf(&b, "%s %d/%d\n", renderProgressBar(m.stages, total, barWidth), m.stages, total)

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(StyleStatusFailed.Render("Error: " + m.errMsg))
		b.WriteString("\n")
	}
	for _, w := range m.warnings {
		b.WriteString(StyleWarning.Render("! " + w))
		b.WriteString("\n")
	}

	style := StyleUnfocusedBorder
	if m.focused {
		style = StyleFocusedBorder
	}
	return style.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(b.String())
}

func (m ProgressPaneModel) renderState() string {
	switch m.state {
	case "completed":
		return StyleStatusComplete.Render(m.state)
	case "failed":
		return StyleStatusFailed.Render(m.state)
	case "idle":
		return StyleStatusPending.Render(m.state)
	default:
		return StyleStatusRunning.Render(m.state)
	}
}

// renderProgressBar creates a text-based progress bar.
func renderProgressBar(done, total, width int) string {
	if total == 0 {
		return strings.Repeat("░", width)
	}
	filled := min(done*width/total, width)
	return StyleBarFill.Render(strings.Repeat("█", filled)) + strings.Repeat("░", width-filled)
}

// SetSize updates the pane dimensions.
func (m *ProgressPaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetFocused updates the focus state.
func (m *ProgressPaneModel) SetFocused(focused bool) {
	m.focused = focused
}
