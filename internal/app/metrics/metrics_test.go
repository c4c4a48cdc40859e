package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalPath(t *testing.T) {
	tests := map[string]string{
		"":           "/",
		"/":          "/",
		"/items":     "/items",
		"/items/":    "/items",
		"/items/42":  "/items/:id",
		"/health":    "/health",
		"/ws":        "/ws",
		"/unknown/a": "/unknown",
	}
	for in, want := range tests {
		assert.Equal(t, want, CanonicalPath(in), "path %q", in)
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/items/:id", "404"))
	RecordHTTPRequest("get", "/items/7", http.StatusNotFound, time.Millisecond)
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/items/:id", "404"))
	assert.Equal(t, before+1, after)

	before = testutil.ToFloat64(httpRequests.WithLabelValues("PUT", "/items/{id}", "200"))
	RecordHTTPRequest(http.MethodPut, "/items/{id}", http.StatusOK, time.Millisecond)
	after = testutil.ToFloat64(httpRequests.WithLabelValues("PUT", "/items/{id}", "200"))
	assert.Equal(t, before+1, after)
}

func TestInFlight(t *testing.T) {
	base := testutil.ToFloat64(httpInFlight)
	IncrementInFlight()
	assert.Equal(t, base+1, testutil.ToFloat64(httpInFlight))
	DecrementInFlight()
	assert.Equal(t, base, testutil.ToFloat64(httpInFlight))
}

func TestDomainCollectors(t *testing.T) {
	SetItems(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(itemsStored))

	base := testutil.ToFloat64(realtimeSubscribers)
	SubscriberConnected()
	assert.Equal(t, base+1, testutil.ToFloat64(realtimeSubscribers))
	SubscriberDisconnected()
	assert.Equal(t, base, testutil.ToFloat64(realtimeSubscribers))

	created := testutil.ToFloat64(realtimeEvents.WithLabelValues("item:created"))
	RecordEvent("item:created")
	assert.Equal(t, created+1, testutil.ToFloat64(realtimeEvents.WithLabelValues("item:created")))

	dropped := testutil.ToFloat64(realtimeDropped)
	RecordDroppedSubscriber()
	assert.Equal(t, dropped+1, testutil.ToFloat64(realtimeDropped))
}

func TestHandlerExposesMetrics(t *testing.T) {
	SetItems(1)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "stockboard_store_items"))
}
