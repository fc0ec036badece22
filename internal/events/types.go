package events

import (
	"time"
)

// Event is the base interface for all events.
type Event interface {
	EventType() string
	Topic() string
	RunID() string
}

// Topic constants
const (
	TopicRun   = "run"
	TopicStage = "stage"
)

// Event type constants
const (
	EventTypeRunProgress    = "run.progress"
	EventTypeRunCompleted   = "run.completed"
	EventTypeRunFailed      = "run.failed"
	EventTypeStageCompleted = "stage.completed"
)

// RunProgressEvent is published on every state transition of a run.
type RunProgressEvent struct {
	ID          string
	Keyword     string
	State       string
	ActiveRoles []string
	Stages      int
	TotalTokens int
	Timestamp   time.Time
}

func (e RunProgressEvent) EventType() string { return EventTypeRunProgress }
func (e RunProgressEvent) Topic() string     { return TopicRun }
func (e RunProgressEvent) RunID() string     { return e.ID }

// StageCompletedEvent is published once per finished stage.
type StageCompletedEvent struct {
	ID          string
	Role        string
	Content     string
	Skipped     bool
	Provider    string
	Model       string
	TotalTokens int
	Timestamp   time.Time
}

func (e StageCompletedEvent) EventType() string { return EventTypeStageCompleted }
func (e StageCompletedEvent) Topic() string     { return TopicStage }
func (e StageCompletedEvent) RunID() string     { return e.ID }

// RunCompletedEvent is published when a run reaches Completed.
type RunCompletedEvent struct {
	ID          string
	Keyword     string
	TotalTokens int
	Warnings    []string
	Timestamp   time.Time
}

func (e RunCompletedEvent) EventType() string { return EventTypeRunCompleted }
func (e RunCompletedEvent) Topic() string     { return TopicRun }
func (e RunCompletedEvent) RunID() string     { return e.ID }

// RunFailedEvent is published when a run reaches Failed.
type RunFailedEvent struct {
	ID        string
	Keyword   string
	Role      string
	Err       string
	Timestamp time.Time
}

func (e RunFailedEvent) EventType() string { return EventTypeRunFailed }
func (e RunFailedEvent) Topic() string     { return TopicRun }
func (e RunFailedEvent) RunID() string     { return e.ID }
