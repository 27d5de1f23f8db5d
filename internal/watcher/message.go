package watcher

import (
	"encoding/json"
	"fmt"

	"github.com/vmunix/anistrm/internal/catalog"
	"github.com/vmunix/anistrm/internal/events"
)

// Kind classifies an incoming push message.
type Kind int

const (
	KindUnknown Kind = iota
	KindPing
	KindControl
	KindTitleUpdate
	KindPlaylistUpdate
)

func (k Kind) String() string {
	switch k {
	case KindPing:
		return "ping"
	case KindControl:
		return "control"
	case KindTitleUpdate:
		return events.SourceTitleUpdate
	case KindPlaylistUpdate:
		return events.SourcePlaylistUpdate
	default:
		return "unknown"
	}
}

// Message is a parsed push message. TitleID is 0 when the message carries
// no usable id.
type Message struct {
	Kind    Kind
	Type    string
	TitleID int
}

var pongFrame = []byte(`{"type":"pong"}`)

type rawMessage struct {
	Type string `json:"type"`
	Data *struct {
		ID    any `json:"id"`
		Title *struct {
			ID any `json:"id"`
		} `json:"title"`
		Playlist *struct {
			ID any `json:"id"`
		} `json:"playlist"`
	} `json:"data"`
}

// ParseMessage classifies a push message and extracts the title id of
// update events: data.title.id for title updates, data.id (or
// data.playlist.id) for playlist updates.
func ParseMessage(data []byte) (Message, error) {
	var raw rawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Message{}, fmt.Errorf("parse message: %w", err)
	}

	msg := Message{Type: raw.Type}
	switch raw.Type {
	case "ping":
		msg.Kind = KindPing
		return msg, nil
	case "connection", "connected", "connection_ack":
		msg.Kind = KindControl
		return msg, nil
	case events.SourceTitleUpdate:
		msg.Kind = KindTitleUpdate
	case events.SourcePlaylistUpdate:
		msg.Kind = KindPlaylistUpdate
	default:
		return msg, nil
	}

	if raw.Data == nil {
		return msg, nil
	}

	var candidates []any
	if msg.Kind == KindTitleUpdate {
		if raw.Data.Title != nil {
			candidates = append(candidates, raw.Data.Title.ID)
		}
		candidates = append(candidates, raw.Data.ID)
	} else {
		candidates = append(candidates, raw.Data.ID)
		if raw.Data.Playlist != nil {
			candidates = append(candidates, raw.Data.Playlist.ID)
		}
	}
	for _, c := range candidates {
		if id, ok := catalog.ParseID(c); ok {
			msg.TitleID = id
			break
		}
	}
	return msg, nil
}
