// Package watcher listens to the catalog push channel and turns title
// updates into TitleChanged events.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"nhooyr.io/websocket"

	"github.com/vmunix/anistrm/internal/backoff"
	"github.com/vmunix/anistrm/internal/events"
)

// DefaultURL is the catalog push channel.
const DefaultURL = "wss://api.anilibria.tv/v3/ws/"

const readLimit = 1 << 20

// State is the connection state of a Watcher.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateStopped:
		return "stopped"
	default:
		return "disconnected"
	}
}

// Publisher receives TitleChanged events. It must not block.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) bool
}

// Observer is notified about connection and message activity, typically metrics.
type Observer interface {
	// ObserveReconnect is called before each backoff wait. attempt is the
	// backoff attempt the delay was computed for; it is 0 after a connection
	// was established.
	ObserveReconnect(attempt int, delay time.Duration)
	ObservePushMessage(kind string)
}

// Config configures a Watcher.
type Config struct {
	Enabled bool
	URL     string
	Backoff backoff.Policy
}

// Watcher keeps one push-channel connection open at a time and reconnects
// with exponential backoff.
type Watcher struct {
	cfg      Config
	pub      Publisher
	dialOpts *websocket.DialOptions
	observer Observer
	state    atomic.Int32
	log      *slog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDialOptions sets websocket dial options (headers, HTTP client).
func WithDialOptions(o *websocket.DialOptions) Option {
	return func(w *Watcher) {
		w.dialOpts = o
	}
}

// WithObserver registers an observer.
func WithObserver(o Observer) Option {
	return func(w *Watcher) {
		w.observer = o
	}
}

// New creates a watcher publishing to pub.
func New(cfg Config, pub Publisher, logger *slog.Logger, opts ...Option) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Backoff == (backoff.Policy{}) {
		cfg.Backoff = backoff.DefaultPolicy()
	}
	w := &Watcher{
		cfg: cfg,
		pub: pub,
		log: logger.With("component", "watcher"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Name returns the handler name.
func (w *Watcher) Name() string { return "watcher" }

// State returns the current connection state.
func (w *Watcher) State() State { return State(w.state.Load()) }

func (w *Watcher) setState(s State) {
	if prev := State(w.state.Swap(int32(s))); prev != s {
		w.log.Debug("state changed", "from", prev, "to", s)
	}
}

// Start runs the connect/receive/backoff loop until ctx is canceled. It
// returns nil on cancellation and immediately when disabled.
func (w *Watcher) Start(ctx context.Context) error {
	if !w.cfg.Enabled {
		w.log.Info("realtime updates disabled")
		w.setState(StateStopped)
		return nil
	}

	attempt := 0
	for {
		if ctx.Err() != nil {
			w.setState(StateStopped)
			return nil
		}

		w.setState(StateConnecting)
		conn, _, err := websocket.Dial(ctx, w.cfg.URL, w.dialOpts)
		if err != nil {
			w.setState(StateDisconnected)
			if ctx.Err() != nil {
				w.setState(StateStopped)
				return nil
			}
			w.log.Warn("connect failed", "url", w.cfg.URL, "attempt", attempt, "error", err)
		} else {
			attempt = 0
			w.setState(StateConnected)
			w.log.Info("connected", "url", w.cfg.URL)

			err = w.receive(ctx, conn)
			conn.CloseNow()
			w.setState(StateDisconnected)
			if ctx.Err() != nil {
				w.setState(StateStopped)
				return nil
			}
			if err != nil {
				w.log.Warn("connection lost", "error", err)
			} else {
				w.log.Info("connection closed by server")
			}
		}

		delay := w.cfg.Backoff.Delay(attempt)
		if w.observer != nil {
			w.observer.ObserveReconnect(attempt, delay)
		}
		attempt++
		w.log.Info("reconnecting", "in", delay, "attempt", attempt)
		if err := backoff.Sleep(ctx, delay); err != nil {
			w.setState(StateStopped)
			return nil
		}
	}
}

// receive reads messages until the connection ends. A normal close or an
// empty message is a graceful end and returns nil.
func (w *Watcher) receive(ctx context.Context, conn *websocket.Conn) error {
	conn.SetReadLimit(readLimit)
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		if len(data) == 0 {
			return nil
		}
		if err := w.handle(ctx, conn, data); err != nil {
			return err
		}
	}
}

// handle dispatches one message. Only a failed pong is fatal to the connection.
func (w *Watcher) handle(ctx context.Context, conn *websocket.Conn, data []byte) error {
	msg, err := ParseMessage(data)
	if err != nil {
		w.log.Debug("dropping unparsable message", "error", err, "size", len(data))
		return nil
	}
	if w.observer != nil {
		w.observer.ObservePushMessage(msg.Kind.String())
	}

	switch msg.Kind {
	case KindPing:
		if err := conn.Write(ctx, websocket.MessageText, pongFrame); err != nil {
			return fmt.Errorf("write pong: %w", err)
		}
	case KindControl:
		w.log.Debug("control message", "type", msg.Type)
	case KindTitleUpdate, KindPlaylistUpdate:
		if msg.TitleID == 0 {
			w.log.Debug("update without title id", "type", msg.Type)
			return nil
		}
		w.log.Info("title update received", "type", msg.Type, "title_id", msg.TitleID)
		w.pub.Publish(ctx, events.NewTitleChanged(msg.TitleID, msg.Kind.String()))
	default:
		w.log.Debug("ignoring message", "type", msg.Type)
	}
	return nil
}
