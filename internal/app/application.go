package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/R3E-Network/stockboard/internal/app/domain/item"
	"github.com/R3E-Network/stockboard/internal/app/httpapi"
	"github.com/R3E-Network/stockboard/internal/app/metrics"
	"github.com/R3E-Network/stockboard/internal/app/realtime"
	"github.com/R3E-Network/stockboard/internal/app/storage"
	"github.com/R3E-Network/stockboard/internal/app/storage/memory"
	"github.com/R3E-Network/stockboard/internal/logging"
	"github.com/R3E-Network/stockboard/internal/middleware"
)

const limiterCleanupInterval = time.Minute

// Options configures the composed application. A nil Store defaults to the
// in-memory implementation.
type Options struct {
	Store          storage.SeedableItemStore
	Token          string
	AllowedOrigins []string
	RateLimitRPS   int
	RateLimitBurst int
}

// Application owns the item store, the realtime hub and the HTTP surface
// built on top of them.
type Application struct {
	log     *logging.Logger
	store   storage.SeedableItemStore
	hub     *realtime.Hub
	limiter *middleware.RateLimiter
	handler http.Handler

	stop     chan struct{}
	stopOnce sync.Once
}

// New builds a fully wired application.
func New(opts Options, log *logging.Logger) *Application {
	if log == nil {
		log = logging.New("stockboard", "info", "text")
	}
	if opts.Store == nil {
		opts.Store = memory.New()
	}

	cors := middleware.NewCORSMiddleware(opts.AllowedOrigins)
	hub := realtime.NewHub(log, realtime.WithOriginCheck(cors.AllowsRequest))
	limiter := middleware.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst, log)

	handler := httpapi.NewHandler(httpapi.Options{
		Store:          opts.Store,
		Events:         hub,
		Realtime:       hub,
		Logger:         log,
		Token:          opts.Token,
		AllowedOrigins: opts.AllowedOrigins,
		Limiter:        limiter,
	})

	return &Application{
		log:     log,
		store:   opts.Store,
		hub:     hub,
		limiter: limiter,
		handler: handler,
		stop:    make(chan struct{}),
	}
}

// Handler returns the HTTP surface.
func (a *Application) Handler() http.Handler { return a.handler }

// Store returns the canonical item store.
func (a *Application) Store() storage.ItemStore { return a.store }

// Hub returns the realtime fan-out.
func (a *Application) Hub() *realtime.Hub { return a.hub }

// Seed loads inputs into an empty store.
func (a *Application) Seed(ctx context.Context, inputs []item.Input) error {
	if len(inputs) == 0 {
		return nil
	}
	seeded, err := a.store.Seed(ctx, inputs)
	if err != nil {
		return fmt.Errorf("seed store: %w", err)
	}
	if seeded {
		a.log.WithField("items", len(inputs)).Info("Seeded item store")
	} else {
		a.log.Debug("Item store not empty; skipping seed")
	}
	if n, err := a.store.CountItems(ctx); err == nil {
		metrics.SetItems(n)
	}
	return nil
}

// Start begins background maintenance.
func (a *Application) Start() {
	if a.limiter.Enabled() {
		a.limiter.StartCleanup(limiterCleanupInterval, a.stop)
	}
}

// Stop stops background work and disconnects every realtime subscriber.
// It is safe to call more than once.
func (a *Application) Stop() {
	a.stopOnce.Do(func() {
		close(a.stop)
		a.hub.Close()
	})
}
