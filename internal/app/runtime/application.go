package runtime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/R3E-Network/stockboard/internal/app"
	"github.com/R3E-Network/stockboard/internal/config"
	"github.com/R3E-Network/stockboard/internal/logging"
)

// Application wires the backend and manages the HTTP server lifecycle.
type Application struct {
	cfg        *config.ServerConfig
	log        *logging.Logger
	core       *app.Application
	httpServer *http.Server
}

// NewApplication constructs the backend from cfg and seeds the store.
func NewApplication(ctx context.Context, cfg *config.ServerConfig, log *logging.Logger) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("server config is required")
	}
	if log == nil {
		log = logging.New("stockboard", cfg.LogLevel, cfg.LogFormat)
	}

	core := app.New(app.Options{
		Token:          cfg.StaticToken,
		AllowedOrigins: cfg.AllowedOrigins(),
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}, log)

	seed, err := cfg.ResolveSeed()
	if err != nil {
		core.Stop()
		return nil, fmt.Errorf("resolve seed: %w", err)
	}
	if err := core.Seed(ctx, seed); err != nil {
		core.Stop()
		return nil, err
	}

	httpSrv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      core.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &Application{
		cfg:        cfg,
		log:        log,
		core:       core,
		httpServer: httpSrv,
	}, nil
}

// Core exposes the composed backend.
func (a *Application) Core() *app.Application { return a.core }

// Run listens on the configured address and serves until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.httpServer.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled or the server fails.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	a.core.Start()

	go func() {
		a.log.WithField("addr", ln.Addr().String()).Info("HTTP server listening")
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown stops the realtime hub and drains the HTTP server within the
// configured timeout.
func (a *Application) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.ShutdownTimeout)
	defer cancel()

	// Websocket connections are hijacked and invisible to http.Server, so
	// the hub has to close them itself.
	a.core.Stop()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	a.log.Info("HTTP server stopped")
	return nil
}
