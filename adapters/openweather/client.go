package openweather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.openweathermap.org/data/2.5"
	defaultUnits   = "metric"
	defaultLang    = "pt_br"
	httpTimeout    = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

const (
	currentNotFoundText  = "❌ Cidade não encontrada. Tente algo como: clima São Paulo ou clima Lisboa,PT"
	forecastNotFoundText = "❌ Cidade não encontrada. Tente algo como: previsão São Paulo ou previsão Lisboa,PT"
	currentErrorFormat   = "⚠️ Erro ao obter clima: %v"
	forecastErrorFormat  = "⚠️ Erro ao obter previsão: %v"
)

// Client looks up current conditions and forecasts on the OpenWeather API
// and renders them as reply text.
type Client struct {
	apiKey     string
	baseURL    string
	units      string
	lang       string
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Client)

// WithBaseURL overrides the API base URL (for testing).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithUnits(units string) Option {
	return func(c *Client) {
		c.units = units
	}
}

func WithLang(lang string) Option {
	return func(c *Client) {
		c.lang = lang
	}
}

// New creates a Client authenticating with apiKey.
func New(apiKey string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		units:      defaultUnits,
		lang:       defaultLang,
		httpClient: &http.Client{Timeout: httpTimeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Current returns the rendered current conditions for city. Lookup
// failures come back as user-facing text, never as an error.
func (c *Client) Current(ctx context.Context, city string) string {
	body, err := c.get(ctx, "weather", city)
	if err == nil {
		var text string
		if text, err = renderCurrent(body); err == nil {
			return text
		}
	}

	if errors.Is(err, ErrCityNotFound) {
		c.logger.Info("city not found", "endpoint", "weather", "city", city)
		return currentNotFoundText
	}
	c.logger.Error("current weather lookup failed", "city", city, "error", err)
	return fmt.Sprintf(currentErrorFormat, err)
}

// Forecast returns the rendered three-day forecast for city.
func (c *Client) Forecast(ctx context.Context, city string) string {
	body, err := c.get(ctx, "forecast", city)
	if err == nil {
		var text string
		if text, err = renderForecast(body); err == nil {
			return text
		}
	}

	if errors.Is(err, ErrCityNotFound) {
		c.logger.Info("city not found", "endpoint", "forecast", "city", city)
		return forecastNotFoundText
	}
	c.logger.Error("forecast lookup failed", "city", city, "error", err)
	return fmt.Sprintf(forecastErrorFormat, err)
}

// get fetches an endpoint and returns the raw body. The HTTP status is not
// checked: the provider reports failures through the cod field in the body.
func (c *Client) get(ctx context.Context, endpoint, city string) ([]byte, error) {
	q := url.Values{
		"q":     {city},
		"appid": {c.apiKey},
		"units": {c.units},
		"lang":  {c.lang},
	}
	u := c.baseURL + "/" + endpoint + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get %s: %w", endpoint, redact(err, c.apiKey))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", endpoint, err)
	}
	return body, nil
}

// redact keeps the API key out of errors that end up in chat replies.
func redact(err error, secret string) error {
	if secret == "" || !strings.Contains(err.Error(), secret) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), secret, "***"))
}
