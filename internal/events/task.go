package events

import "time"

// Sync event types.
const (
	EventSyncStarted   = "sync.started"
	EventSyncCompleted = "sync.completed"
)

// SyncStarted is emitted when a sync task run begins.
type SyncStarted struct {
	BaseEvent
	Task  string `json:"task"`
	RunID string `json:"run_id"`
}

// NewSyncStarted creates a SyncStarted event.
func NewSyncStarted(task, runID string) *SyncStarted {
	return &SyncStarted{BaseEvent: NewBaseEvent(EventSyncStarted, EntityTask, 0), Task: task, RunID: runID}
}

// SyncCompleted is emitted when a sync task run ends, successfully or not.
type SyncCompleted struct {
	BaseEvent
	Task     string        `json:"task"`
	RunID    string        `json:"run_id"`
	Titles   int           `json:"titles"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// NewSyncCompleted creates a SyncCompleted event.
func NewSyncCompleted(task, runID string, titles int, d time.Duration, err error) *SyncCompleted {
	e := &SyncCompleted{
		BaseEvent: NewBaseEvent(EventSyncCompleted, EntityTask, 0),
		Task:      task,
		RunID:     runID,
		Titles:    titles,
		Duration:  d,
	}
	if err != nil {
		e.Error = err.Error()
	}
	return e
}
