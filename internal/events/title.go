package events

// Title event types.
const (
	EventTitleChanged            = "title.changed"
	EventTitleRegenerated        = "title.regenerated"
	EventTitleRegenerationFailed = "title.regeneration.failed"
)

// Push-channel message kinds that produce TitleChanged.
const (
	SourceTitleUpdate    = "title_update"
	SourcePlaylistUpdate = "playlist_update"
)

// TitleChanged is emitted when the push channel reports a title update.
type TitleChanged struct {
	BaseEvent
	Source string `json:"source"` // SourceTitleUpdate or SourcePlaylistUpdate
}

// NewTitleChanged creates a TitleChanged event.
func NewTitleChanged(titleID int, source string) *TitleChanged {
	return &TitleChanged{BaseEvent: titleEvent(EventTitleChanged, titleID), Source: source}
}

// TitleID returns the changed title.
func (e *TitleChanged) TitleID() int { return int(e.ID) }

// TitleRegenerated is emitted after a changed title was regenerated.
type TitleRegenerated struct {
	BaseEvent
	Targets []string `json:"targets"`
	Written int      `json:"written"`
}

// NewTitleRegenerated creates a TitleRegenerated event.
func NewTitleRegenerated(titleID int, targets []string, written int) *TitleRegenerated {
	return &TitleRegenerated{BaseEvent: titleEvent(EventTitleRegenerated, titleID), Targets: targets, Written: written}
}

// TitleRegenerationFailed is emitted when a changed title could not be fetched.
type TitleRegenerationFailed struct {
	BaseEvent
	Error string `json:"error"`
}

// NewTitleRegenerationFailed creates a TitleRegenerationFailed event.
func NewTitleRegenerationFailed(titleID int, err error) *TitleRegenerationFailed {
	return &TitleRegenerationFailed{BaseEvent: titleEvent(EventTitleRegenerationFailed, titleID), Error: err.Error()}
}
