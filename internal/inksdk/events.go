package inksdk

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/goccy/go-json"
	"github.com/inkwell-cms/inkwell/internal/inkmsg"
)

const (
	eventsBufferSize       = 16
	eventsReconnectDelay   = 5 * time.Second
	eventsConnectTimeout   = 10 * time.Second
	wsClientMaxMessageSize = 4 * 1024 * 1024 // 4MB
	eventsPath             = "/api/v1/events"
)

// EventsAPI manages the long-lived push channel delivering remote change
// notifications.
type EventsAPI struct {
	baseURL   string
	apiKey    string
	messages  chan *inkmsg.Message
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	connected bool
	started   bool
}

func newEventsAPI(baseURL, apiKey string) *EventsAPI {
	ctx, cancel := context.WithCancel(context.Background())
	return &EventsAPI{
		baseURL:  baseURL,
		apiKey:   apiKey,
		ctx:      ctx,
		cancel:   cancel,
		messages: make(chan *inkmsg.Message, eventsBufferSize),
	}
}

// Connect establishes the websocket connection and keeps it alive in the
// background, reconnecting with a fixed delay on error.
func (e *EventsAPI) Connect(ctx context.Context) error {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return nil
	}
	e.started = true
	e.mu.Unlock()

	conn, err := e.dial(ctx)
	if err != nil {
		return fmt.Errorf("sdk: events: connect failed: %w", err)
	}
	e.setConnected(true)

	go e.readLoop(conn)
	return nil
}

// IsConnected returns the current connection status.
func (e *EventsAPI) IsConnected() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.connected
}

// Get returns the channel delivering push messages.
func (e *EventsAPI) Get() <-chan *inkmsg.Message {
	return e.messages
}

// Close terminates the connection and stops reconnection attempts.
func (e *EventsAPI) Close() {
	e.cancel()
	e.setConnected(false)
}

func (e *EventsAPI) setConnected(v bool) {
	e.mu.Lock()
	e.connected = v
	e.mu.Unlock()
}

func (e *EventsAPI) dial(ctx context.Context) (*websocket.Conn, error) {
	wsURL, err := e.fullURL()
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	if e.apiKey != "" {
		header.Set("Authorization", "Bearer "+e.apiKey)
	}

	dialCtx, cancel := context.WithTimeout(ctx, eventsConnectTimeout)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, wsURL, &websocket.DialOptions{
		HTTPHeader: header,
	})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", wsURL, err)
	}
	conn.SetReadLimit(wsClientMaxMessageSize)
	return conn, nil
}

// readLoop consumes messages until the connection drops, then reconnects
// with a fixed backoff until the API is closed.
func (e *EventsAPI) readLoop(conn *websocket.Conn) {
	for {
		for {
			_, data, err := conn.Read(e.ctx)
			if err != nil {
				slog.Info("events connection lost, will reconnect", "error", err)
				conn.Close(websocket.StatusNormalClosure, "")
				e.setConnected(false)
				break
			}

			var msg inkmsg.Message
			if err := json.Unmarshal(data, &msg); err != nil {
				slog.Warn("events message decode failed", "error", err)
				continue
			}

			select {
			case e.messages <- &msg:
			default:
				slog.Warn("events buffer full, dropped", "id", msg.Id, "type", msg.Type)
			}
		}

		// reconnect with fixed delay
		for {
			select {
			case <-e.ctx.Done():
				return
			case <-time.After(eventsReconnectDelay):
			}

			next, err := e.dial(e.ctx)
			if err != nil {
				slog.Warn("events reconnect failed", "error", err, "retry_in", eventsReconnectDelay)
				continue
			}
			conn = next
			e.setConnected(true)
			slog.Info("events reconnected")
			break
		}
	}
}

func (e *EventsAPI) fullURL() (string, error) {
	u, err := url.Parse(e.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + eventsPath
	return u.String(), nil
}
