package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"mcp-toolbox-go/internal/dice"
	"mcp-toolbox-go/internal/tools"
	"mcp-toolbox-go/internal/tools/qrcode"
)

func TestNewMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics(prometheus.NewRegistry())
		NewMetrics(prometheus.NewRegistry())
	})
}

func TestMetrics_Observers(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	spec, err := dice.Parse("4d6dl1", 3)
	require.NoError(t, err)
	m.ObserveRoll(spec)
	m.ObserveNotationError(dice.UnknownModifier)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DiceRollsTotal.WithLabelValues("DROP_LOWEST")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.DiceRolledTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DiceNotationErrors.WithLabelValues("UnknownModifier")))

	m.SessionCreated()
	m.SessionCreated()
	m.SessionEnded("expired", time.Hour)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MCPSessionsActive))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.MCPSessionsTotal.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MCPSessionsTotal.WithLabelValues("expired")))
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(HTTPMetricsMiddleware(m))
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	for _, path := range []string{"/items/1", "/items/2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/items/{id}", "200")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.HTTPRequestsInFlight))
}

func TestInstrumentedRegistry(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	registry := tools.NewRegistry()
	registry.Register(qrcode.New(""))
	wrapped := NewInstrumentedRegistry(registry, m, tp.Tracer("test"))

	_, err := wrapped.Call(context.Background(), qrcode.Name, json.RawMessage(`{"text":"hi"}`))
	require.NoError(t, err)
	_, err = wrapped.Call(context.Background(), qrcode.Name, json.RawMessage(`{}`))
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.MCPToolExecutions.WithLabelValues(qrcode.Name, "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MCPToolExecutions.WithLabelValues(qrcode.Name, "error")))

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "tool.call", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("tool.name", qrcode.Name))
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Contains(t, spans[1].Attributes(), attribute.String("tool.error_code", tools.CodeInvalidArguments))
}

func TestSetupTracing_Disabled(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), "test", "")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSystemMetricsCollector(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	NewSystemMetricsCollector(m, zerolog.Nop(), time.Minute).Start(ctx)

	assert.Greater(t, testutil.ToFloat64(m.GoRoutines), 0.0)
	assert.Greater(t, testutil.ToFloat64(m.MemoryUsage), 0.0)
}
