package httpapi

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/R3E-Network/stockboard/internal/app/domain/item"
	"github.com/R3E-Network/stockboard/internal/app/metrics"
	"github.com/R3E-Network/stockboard/internal/app/realtime"
	"github.com/R3E-Network/stockboard/internal/app/storage"
	svcerrors "github.com/R3E-Network/stockboard/internal/errors"
	"github.com/R3E-Network/stockboard/internal/httputil"
	"github.com/R3E-Network/stockboard/internal/logging"
	"github.com/R3E-Network/stockboard/internal/middleware"
)

// Options wires the handler's collaborators.
type Options struct {
	Store  storage.ItemStore
	Events realtime.Publisher
	// Realtime serves the websocket endpoint. Nil disables /ws.
	Realtime http.Handler
	Logger   *logging.Logger

	Token          string
	AllowedOrigins []string
	// Limiter throttles the item routes. When nil one is built from
	// RateLimitRPS and RateLimitBurst.
	Limiter        *middleware.RateLimiter
	RateLimitRPS   int
	RateLimitBurst int
}

// handler bundles the item endpoints.
type handler struct {
	// mu spans each mutation and its publish so events leave in commit order.
	mu     sync.Mutex
	store  storage.ItemStore
	events realtime.Publisher
	logger *logging.Logger
}

// NewHandler returns the full HTTP surface: health, metrics, the websocket
// endpoint and the bearer-protected item routes.
func NewHandler(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewDiscard()
	}
	h := &handler{store: opts.Store, events: opts.Events, logger: logger}

	auth := middleware.NewStaticTokenAuth(opts.Token, logger)
	limiter := opts.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst, logger)
	}
	protect := func(fn http.HandlerFunc) http.Handler {
		return limiter.Handler(auth.Handler(fn))
	}

	router := mux.NewRouter()
	router.Use(middleware.MetricsMiddleware())

	router.HandleFunc("/health", h.health).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	if opts.Realtime != nil {
		router.Handle("/ws", opts.Realtime).Methods(http.MethodGet)
	}

	router.Handle("/items", protect(h.listItems)).Methods(http.MethodGet)
	router.Handle("/items", protect(h.createItem)).Methods(http.MethodPost)
	router.Handle("/items/{id}", protect(h.updateItem)).Methods(http.MethodPut)
	router.Handle("/items/{id}", protect(h.deleteItem)).Methods(http.MethodDelete)

	cors := middleware.NewCORSMiddleware(opts.AllowedOrigins)
	tracing := middleware.NewTracingMiddleware(logger)
	return cors.Handler(tracing.Handler(router))
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListItems(r.Context(), item.Filter{Q: r.URL.Query().Get("q")})
	if err != nil {
		httputil.WriteError(w, r, svcerrors.Internal("failed to list items", err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, items)
}

func (h *handler) createItem(w http.ResponseWriter, r *http.Request) {
	var in item.Input
	if err := httputil.DecodeJSON(r, &in, true); err != nil || !in.Valid() {
		httputil.BadRequest(w, r, "name and category required")
		return
	}

	h.mu.Lock()
	created, err := h.store.CreateItem(r.Context(), in)
	if err == nil {
		h.publish(r, realtime.Created(created))
	}
	h.mu.Unlock()
	if err != nil {
		httputil.WriteError(w, r, svcerrors.Internal("failed to create item", err))
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *handler) updateItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var patch item.Patch
	if err := httputil.DecodeJSON(r, &patch, true); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	h.mu.Lock()
	updated, err := h.store.UpdateItem(r.Context(), id, patch)
	if err == nil {
		h.publish(r, realtime.Updated(updated))
	}
	h.mu.Unlock()
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	h.mu.Lock()
	err := h.store.DeleteItem(r.Context(), id)
	if err == nil {
		h.publish(r, realtime.Deleted(id))
	}
	h.mu.Unlock()
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, item.ErrNotFound) {
		httputil.NotFound(w, r)
		return
	}
	httputil.WriteError(w, r, svcerrors.Internal("", err))
}

// publish runs after the store has committed e, with h.mu held. Fan-out is
// best effort, so a failure is logged and the request still succeeds.
func (h *handler) publish(r *http.Request, e realtime.Event) {
	if n, err := h.store.CountItems(r.Context()); err == nil {
		metrics.SetItems(n)
	}

	if h.events == nil {
		return
	}
	if err := h.events.Publish(e); err != nil {
		h.logger.WithContext(r.Context()).WithError(err).WithField("event", string(e.Kind)).Warn("Failed to publish change event")
	}
}
