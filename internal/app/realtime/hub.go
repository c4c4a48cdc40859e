package realtime

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/R3E-Network/stockboard/internal/app/metrics"
	"github.com/R3E-Network/stockboard/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	defaultBufferSize = 64
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("realtime hub closed")

// Publisher accepts committed change events.
type Publisher interface {
	Publish(Event) error
}

// Subscriber is one connected viewer. Frames arrive on Frames in publish
// order; the channel is closed when the subscriber is removed.
type Subscriber struct {
	ID     string
	frames chan []byte
	once   sync.Once
}

// Frames returns the subscriber's frame stream.
func (s *Subscriber) Frames() <-chan []byte {
	return s.frames
}

func (s *Subscriber) close() {
	s.once.Do(func() { close(s.frames) })
}

// Hub broadcasts every published event to all current subscribers. Delivery
// is best effort: a subscriber whose buffer is full is dropped, and nobody
// receives events published before they subscribed.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*Subscriber]struct{}
	closed      bool
	bufferSize  int
	logger      *logging.Logger
	upgrader    websocket.Upgrader
}

var _ Publisher = (*Hub)(nil)

// Option configures a Hub.
type Option func(*Hub)

// WithBufferSize sets the per-subscriber frame buffer.
func WithBufferSize(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.bufferSize = n
		}
	}
}

// WithOriginCheck overrides the websocket origin check. The default accepts
// any origin, matching the API's CORS policy.
func WithOriginCheck(check func(r *http.Request) bool) Option {
	return func(h *Hub) {
		h.upgrader.CheckOrigin = check
	}
}

// NewHub creates an empty hub.
func NewHub(logger *logging.Logger, opts ...Option) *Hub {
	h := &Hub{
		subscribers: make(map[*Subscriber]struct{}),
		bufferSize:  defaultBufferSize,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe registers a new subscriber. It returns ErrClosed after Close.
func (h *Hub) Subscribe() (*Subscriber, error) {
	sub := &Subscriber{
		ID:     uuid.New().String(),
		frames: make(chan []byte, h.bufferSize),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}
	h.subscribers[sub] = struct{}{}
	metrics.SubscriberConnected()
	return sub, nil
}

// Unsubscribe removes sub and closes its frame stream. It is safe to call
// more than once.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(sub)
}

func (h *Hub) removeLocked(sub *Subscriber) {
	if _, ok := h.subscribers[sub]; !ok {
		return
	}
	delete(h.subscribers, sub)
	sub.close()
	metrics.SubscriberDisconnected()
}

// Publish encodes e once and queues it for every subscriber.
func (h *Hub) Publish(e Event) error {
	frame, err := e.Encode()
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}

	for sub := range h.subscribers {
		select {
		case sub.frames <- frame:
		default:
			h.removeLocked(sub)
			metrics.RecordDroppedSubscriber()
			if h.logger != nil {
				h.logger.WithFields(map[string]interface{}{
					"subscriber": sub.ID,
					"event":      string(e.Kind),
				}).Warn("Dropping slow realtime subscriber")
			}
		}
	}
	metrics.RecordEvent(string(e.Kind))
	return nil
}

// Count returns the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close disconnects every subscriber and rejects further use.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for sub := range h.subscribers {
		h.removeLocked(sub)
	}
}

// ServeHTTP upgrades the request to a websocket and streams events to it
// until either side closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		if h.logger != nil {
			h.logger.WithContext(r.Context()).WithError(err).Warn("Websocket upgrade failed")
		}
		return
	}

	sub, err := h.Subscribe()
	if err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}

	if h.logger != nil {
		h.logger.WithContext(r.Context()).WithFields(map[string]interface{}{
			"subscriber": sub.ID,
			"remote":     r.RemoteAddr,
		}).Info("Realtime client connected")
	}

	go h.writePump(conn, sub)
	h.readPump(conn, sub)

	if h.logger != nil {
		h.logger.WithContext(r.Context()).WithField("subscriber", sub.ID).Info("Realtime client disconnected")
	}
}

// readPump discards anything the client sends; it exists to process control
// frames and notice when the peer goes away.
func (h *Hub) readPump(conn *websocket.Conn, sub *Subscriber) {
	defer func() {
		h.Unsubscribe(sub)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(conn *websocket.Conn, sub *Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case frame, ok := <-sub.Frames():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				h.Unsubscribe(sub)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.Unsubscribe(sub)
				return
			}
		}
	}
}
