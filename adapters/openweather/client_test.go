package openweather

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

// newTestClient serves body on every request and records the last URL.
func newTestClient(t *testing.T, status int, body string) (*Client, *http.Request) {
	t.Helper()
	last := &http.Request{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*last = *r.Clone(context.Background())
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return New("test-key", testLogger(), WithBaseURL(srv.URL)), last
}

// ---------------------------------------------------------------------------
// New
// ---------------------------------------------------------------------------

func TestNew_Defaults(t *testing.T) {
	c := New("k", testLogger())
	require.Equal(t, defaultBaseURL, c.baseURL)
	require.Equal(t, "metric", c.units)
	require.Equal(t, "pt_br", c.lang)
	require.Equal(t, httpTimeout, c.httpClient.Timeout)
}

func TestNew_Options(t *testing.T) {
	hc := &http.Client{Timeout: time.Second}
	c := New("k", testLogger(),
		WithBaseURL(" http://localhost:9999/data/2.5/ "),
		WithHTTPClient(hc),
		WithUnits("imperial"),
		WithLang("en"),
	)
	require.Equal(t, "http://localhost:9999/data/2.5", c.baseURL)
	require.Same(t, hc, c.httpClient)
	require.Equal(t, "imperial", c.units)
	require.Equal(t, "en", c.lang)
}

// ---------------------------------------------------------------------------
// Current
// ---------------------------------------------------------------------------

func TestCurrent_Success(t *testing.T) {
	c, last := newTestClient(t, http.StatusOK, recifePayload)

	got := c.Current(context.Background(), "recife")

	require.Contains(t, got, "🌤️ Clima em Recife:")
	require.Contains(t, got, "Céu limpo")
	require.Contains(t, got, "21.7°C")
	require.Contains(t, got, "19.2°C")
	require.Contains(t, got, "55%")

	require.Equal(t, "/weather", last.URL.Path)
	q := last.URL.Query()
	require.Equal(t, "recife", q.Get("q"))
	require.Equal(t, "test-key", q.Get("appid"))
	require.Equal(t, "metric", q.Get("units"))
	require.Equal(t, "pt_br", q.Get("lang"))
}

func TestCurrent_CityWithSpacesIsEscaped(t *testing.T) {
	c, last := newTestClient(t, http.StatusOK, recifePayload)

	c.Current(context.Background(), "são paulo")

	require.Equal(t, "são paulo", last.URL.Query().Get("q"))
	require.NotContains(t, last.URL.RawQuery, " ")
}

func TestCurrent_NotFound(t *testing.T) {
	// The provider answers 404 with a string cod on this endpoint.
	c, _ := newTestClient(t, http.StatusNotFound, `{"cod":"404","message":"city not found"}`)

	got := c.Current(context.Background(), "atlantida")
	require.Equal(t, currentNotFoundText, got)
}

func TestCurrent_DecodeFailure(t *testing.T) {
	c, _ := newTestClient(t, http.StatusBadGateway, `<html>bad gateway</html>`)

	got := c.Current(context.Background(), "recife")
	require.True(t, strings.HasPrefix(got, "⚠️ Erro ao obter clima: "), got)
}

func TestCurrent_TransportFailureHidesKey(t *testing.T) {
	c := New("super-secret", testLogger(), WithBaseURL("http://127.0.0.1:1"))

	got := c.Current(context.Background(), "recife")
	require.True(t, strings.HasPrefix(got, "⚠️ Erro ao obter clima: "), got)
	require.NotContains(t, got, "super-secret")
}

// ---------------------------------------------------------------------------
// Forecast
// ---------------------------------------------------------------------------

func TestForecast_Success(t *testing.T) {
	body := `{"cod":"200","city":{"name":"Recife"},"list":[
		{"dt_txt":"2025-03-01 12:00:00","main":{"temp":30,"feels_like":33.33},"weather":[{"description":"sol"}]}
	]}`
	c, last := newTestClient(t, http.StatusOK, body)

	got := c.Forecast(context.Background(), "recife")

	require.Equal(t, "/forecast", last.URL.Path)
	require.True(t, strings.HasPrefix(got, "📅 Previsão para Recife (próximos 3 dias):"), got)
	require.Contains(t, got, "🌡️ 30.0°C (Sensação 33.3°C)")
	require.True(t, strings.HasSuffix(got, "---------------------------------"), got)
}

func TestForecast_NotFound(t *testing.T) {
	c, _ := newTestClient(t, http.StatusNotFound, `{"cod":"404","message":"city not found"}`)

	got := c.Forecast(context.Background(), "atlantida")
	require.Equal(t, forecastNotFoundText, got)
}

func TestForecast_TransportFailure(t *testing.T) {
	c := New("k", testLogger(), WithBaseURL("http://127.0.0.1:1"))

	got := c.Forecast(context.Background(), "recife")
	require.True(t, strings.HasPrefix(got, "⚠️ Erro ao obter previsão: "), got)
}

func TestForecast_ContextCancelled(t *testing.T) {
	c, _ := newTestClient(t, http.StatusOK, `{"cod":"200","city":{"name":"x"},"list":[]}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := c.Forecast(ctx, "recife")
	require.True(t, strings.HasPrefix(got, "⚠️ Erro ao obter previsão: "), got)
}
