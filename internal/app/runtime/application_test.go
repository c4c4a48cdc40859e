package runtime

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/stockboard/internal/app/domain/item"
	"github.com/R3E-Network/stockboard/internal/config"
	"github.com/R3E-Network/stockboard/internal/logging"
)

func testConfig() *config.ServerConfig {
	return &config.ServerConfig{
		Host:            "127.0.0.1",
		Port:            0,
		StaticToken:     "test-token",
		CORSOrigins:     "*",
		SeedDemo:        true,
		ShutdownTimeout: 2 * time.Second,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		IdleTimeout:     5 * time.Second,
	}
}

func TestNewApplicationSeedsDemoData(t *testing.T) {
	application, err := NewApplication(context.Background(), testConfig(), logging.NewDiscard())
	require.NoError(t, err)
	defer application.Core().Stop()

	n, err := application.Core().Store().CountItems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(config.DefaultSeed()), n)
}

func TestNewApplicationSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("items:\n  - {name: Bolt, quantity: 9, category: Hardware}\n"), 0o600))

	cfg := testConfig()
	cfg.SeedFile = path
	application, err := NewApplication(context.Background(), cfg, logging.NewDiscard())
	require.NoError(t, err)
	defer application.Core().Stop()

	items, err := application.Core().Store().ListItems(context.Background(), item.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []item.Item{{ID: "1", Name: "Bolt", Quantity: 9, Category: "Hardware"}}, items)
}

func TestNewApplicationSeedDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.SeedDemo = false
	application, err := NewApplication(context.Background(), cfg, logging.NewDiscard())
	require.NoError(t, err)
	defer application.Core().Stop()

	n, err := application.Core().Store().CountItems(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNewApplicationBadSeedFile(t *testing.T) {
	cfg := testConfig()
	cfg.SeedFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := NewApplication(context.Background(), cfg, logging.NewDiscard())
	assert.Error(t, err)
}

func TestServeAndShutdown(t *testing.T) {
	application, err := NewApplication(context.Background(), testConfig(), logging.NewDiscard())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Serve(ctx, ln) }()

	base := "http://" + ln.Addr().String()
	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get(base + "/health")
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, "ok", body["status"])

	cancel()
	require.NoError(t, <-done)
	require.NoError(t, application.Shutdown(context.Background()))

	_, err = http.Get(base + "/health")
	assert.Error(t, err)
}

func TestDefaultConfigStartsEmptyAndUnthrottled(t *testing.T) {
	cfg, err := config.LoadServer()
	require.NoError(t, err)
	application, err := NewApplication(context.Background(), cfg, logging.NewDiscard())
	require.NoError(t, err)
	defer application.Core().Stop()
	handler := application.Core().Handler()

	for i := 0; i < 200; i++ {
		req := httptest.NewRequest(http.MethodGet, "/items", nil)
		req.Header.Set("Authorization", "Bearer "+cfg.StaticToken)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		require.Equal(t, http.StatusOK, resp.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(`{"name":"Widget","quantity":3,"category":"A"}`))
	req.Header.Set("Authorization", "Bearer "+cfg.StaticToken)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)
	var created item.Item
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	assert.Equal(t, "1", created.ID)
}
