package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/stockboard/internal/app/domain/item"
	"github.com/R3E-Network/stockboard/internal/logging"
)

func demoInputs() []item.Input {
	return []item.Input{
		{Name: "Widget", Quantity: item.QuantityValue(5), Category: "Hardware"},
		{Name: "Cable", Quantity: item.QuantityValue(2), Category: "Electronics"},
	}
}

func TestNewDefaultsToMemoryStore(t *testing.T) {
	application := New(Options{Token: "test-token"}, logging.NewDiscard())
	defer application.Stop()

	require.NotNil(t, application.Store())
	n, err := application.Store().CountItems(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSeedOnlyWhenEmpty(t *testing.T) {
	ctx := context.Background()
	application := New(Options{Token: "test-token"}, logging.NewDiscard())
	defer application.Stop()

	require.NoError(t, application.Seed(ctx, demoInputs()))
	require.NoError(t, application.Seed(ctx, demoInputs()))

	items, err := application.Store().ListItems(ctx, item.Filter{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, "Widget", items[0].Name)
}

func TestSeedNothing(t *testing.T) {
	application := New(Options{}, logging.NewDiscard())
	defer application.Stop()

	require.NoError(t, application.Seed(context.Background(), nil))
}

func TestHandlerServesItems(t *testing.T) {
	application := New(Options{Token: "test-token"}, logging.NewDiscard())
	defer application.Stop()
	require.NoError(t, application.Seed(context.Background(), demoInputs()))

	req := httptest.NewRequest(http.MethodGet, "/items?q=cable", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	resp := httptest.NewRecorder()
	application.Handler().ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `[{"id":"2","name":"Cable","quantity":2,"category":"Electronics"}]`, resp.Body.String())
}

func TestStopIsIdempotent(t *testing.T) {
	application := New(Options{RateLimitRPS: 10, RateLimitBurst: 10}, logging.NewDiscard())
	application.Start()

	application.Stop()
	application.Stop()

	_, err := application.Hub().Subscribe()
	assert.Error(t, err)
}
