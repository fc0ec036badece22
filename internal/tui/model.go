package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/zappy/internal/events"
)

// PaneID identifies which pane is focused.
type PaneID int

const (
	PaneStages PaneID = iota
	PaneProgress
)

const paneCount = 2

// Model is the root Bubble Tea model for the TUI.
type Model struct {
	stagePane    StagePaneModel
	progressPane ProgressPaneModel
	focusedPane  PaneID
	eventSub     <-chan events.Event
	width        int
	height       int
	quitting     bool
}

// New creates a new TUI model.
// It subscribes to all events from the event bus using SubscribeAll.
func New(eventBus *events.EventBus) Model {
	m := Model{
		stagePane:    NewStagePaneModel(),
		progressPane: NewProgressPaneModel(),
		focusedPane:  PaneStages,
		eventSub:     eventBus.SubscribeAll(256),
	}
	m.updateFocusStates()
	return m
}

// Init initializes the model and returns the initial command.
func (m Model) Init() tea.Cmd {
	return waitForEvent(m.eventSub)
}

// waitForEvent returns a command that waits for the next event from the event bus.
func waitForEvent(sub <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-sub
		if !ok {
			return nil // bus closed
		}
		return event
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case keyQuit, keyInterrupt:
			m.quitting = true
			return m, tea.Quit

		case keyNextPane:
			m.focusedPane = (m.focusedPane + 1) % paneCount
			m.updateFocusStates()

		case keyPrevPane:
			m.focusedPane = (m.focusedPane + paneCount - 1) % paneCount
			m.updateFocusStates()

		case keyStages:
			m.focusedPane = PaneStages
			m.updateFocusStates()

		case keyProgress:
			m.focusedPane = PaneProgress
			m.updateFocusStates()

		default:
			if m.focusedPane == PaneStages {
				var cmd tea.Cmd
				m.stagePane, cmd = m.stagePane.Update(msg)
				cmds = append(cmds, cmd)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.computeLayout()

	case events.RunProgressEvent, events.StageCompletedEvent, events.RunCompletedEvent, events.RunFailedEvent:
		// Both panes see every run event.
		var cmd tea.Cmd
		m.stagePane, cmd = m.stagePane.Update(msg)
		cmds = append(cmds, cmd)
		m.progressPane, cmd = m.progressPane.Update(msg)
		cmds = append(cmds, cmd)
		cmds = append(cmds, waitForEvent(m.eventSub))
	}

	return m, tea.Batch(cmds...)
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, m.stagePane.View(), m.progressPane.View())
	return lipgloss.JoinVertical(lipgloss.Left, mainContent, HelpView())
}

// computeLayout calculates pane dimensions and updates all child models.
func (m *Model) computeLayout() {
	leftWidth := (m.width * 65) / 100
	rightWidth := m.width - leftWidth
	availableHeight := m.height - 1 // help bar

	m.stagePane.SetSize(leftWidth, availableHeight)
	m.progressPane.SetSize(rightWidth, availableHeight)

	m.updateFocusStates()
}

// updateFocusStates updates the focus state of all panes.
func (m *Model) updateFocusStates() {
	m.stagePane.SetFocused(m.focusedPane == PaneStages)
	m.progressPane.SetFocused(m.focusedPane == PaneProgress)
}
