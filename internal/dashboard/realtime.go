package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/R3E-Network/stockboard/internal/app/realtime"
	"github.com/R3E-Network/stockboard/internal/logging"
)

// Realtime subscribes to the server's change feed and applies every event to
// a Store. It does not reconnect.
type Realtime struct {
	mu     sync.Mutex
	url    string
	store  *Store
	logger *logging.Logger
	conn   *websocket.Conn
	done   chan struct{}
}

// NewRealtime creates a subscriber for the API at apiURL.
func NewRealtime(apiURL string, store *Store, logger *logging.Logger) *Realtime {
	if logger == nil {
		logger = logging.NewDiscard()
	}
	return &Realtime{url: WebsocketURL(apiURL), store: store, logger: logger}
}

// WebsocketURL maps an http(s) API base URL to its change feed endpoint.
func WebsocketURL(apiURL string) string {
	u := strings.TrimRight(apiURL, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/ws"
}

// Connect dials the change feed. Calling it while connected is a no-op.
func (r *Realtime) Connect(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn != nil {
		return nil
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, r.url, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	r.conn = conn
	r.done = make(chan struct{})
	go r.handleMessages(conn, r.done)

	r.logger.WithField("url", r.url).Info("Subscribed to change feed")
	return nil
}

// Done is closed when the current connection ends. It returns nil before the
// first Connect.
func (r *Realtime) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// Disconnect closes the connection.
func (r *Realtime) Disconnect() error {
	r.mu.Lock()
	conn := r.conn
	r.mu.Unlock()

	if conn == nil {
		return nil
	}

	err := conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	conn.Close()
	if err != nil && err != websocket.ErrCloseSent {
		return fmt.Errorf("close message: %w", err)
	}
	return nil
}

func (r *Realtime) handleMessages(conn *websocket.Conn, done chan struct{}) {
	defer func() {
		conn.Close()
		r.mu.Lock()
		if r.conn == conn {
			r.conn = nil
		}
		r.mu.Unlock()
		close(done)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				r.logger.WithError(err).Warn("Change feed closed unexpectedly")
			}
			return
		}

		event, err := realtime.Decode(data)
		if err != nil {
			r.logger.WithError(err).Debug("Ignoring malformed frame")
			continue
		}
		r.Apply(event)
	}
}

// Apply routes a change event to the store.
func (r *Realtime) Apply(e realtime.Event) {
	switch e.Kind {
	case realtime.KindCreated, realtime.KindUpdated:
		r.store.Dispatch(SocketUpsert{Item: e.Item})
	case realtime.KindDeleted:
		r.store.Dispatch(SocketDelete{ID: e.ID})
	}
}
