package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jdelaire/climabot/core"
)

const (
	defaultBaseURL     = "https://api.telegram.org"
	defaultPollTimeout = 30 * time.Second
	httpSlack          = 5 * time.Second
)

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

type update struct {
	UpdateID int64    `json:"update_id"`
	Message  *message `json:"message"`
}

type message struct {
	MessageID int64   `json:"message_id"`
	Chat      chat    `json:"chat"`
	Date      int64   `json:"date"`
	Text      *string `json:"text"`
}

type chat struct {
	ID int64 `json:"id"`
}

// Gateway talks to the Telegram Bot API: it long-polls getUpdates and
// posts replies through sendMessage.
type Gateway struct {
	botToken    string
	logger      *slog.Logger
	client      *http.Client
	baseURL     string
	pollTimeout time.Duration
}

// New creates a Telegram gateway.
func New(botToken string, logger *slog.Logger) *Gateway {
	return &Gateway{
		botToken:    botToken,
		logger:      logger,
		client:      &http.Client{Timeout: defaultPollTimeout + httpSlack},
		baseURL:     defaultBaseURL,
		pollTimeout: defaultPollTimeout,
	}
}

// WithBaseURL overrides the Telegram API base URL (for testing).
func (g *Gateway) WithBaseURL(url string) *Gateway {
	g.baseURL = strings.TrimRight(url, "/")
	return g
}

// WithHTTPClient replaces the underlying HTTP client.
func (g *Gateway) WithHTTPClient(c *http.Client) *Gateway {
	g.client = c
	return g
}

// WithPollTimeout sets the long-poll timeout sent to getUpdates. Zero turns
// long polling off. The HTTP client timeout is widened to match.
func (g *Gateway) WithPollTimeout(d time.Duration) *Gateway {
	g.pollTimeout = d
	g.client.Timeout = d + httpSlack
	return g
}

// FetchUpdates returns the updates after offset. A zero offset is not sent,
// so the backend decides where to start. A body that cannot be decoded is
// an error; a response without result is an empty batch.
func (g *Gateway) FetchUpdates(ctx context.Context, offset int64) ([]core.Update, error) {
	q := url.Values{}
	if offset != 0 {
		q.Set("offset", strconv.FormatInt(offset, 10))
	}
	if secs := int64(g.pollTimeout / time.Second); secs > 0 {
		q.Set("timeout", strconv.FormatInt(secs, 10))
	}

	endpoint := g.endpoint("getUpdates")
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", g.redact(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api status: %d", resp.StatusCode)
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if !apiResp.OK {
		return nil, fmt.Errorf("api returned ok=false: %s", apiResp.Description)
	}

	if len(apiResp.Result) == 0 || string(apiResp.Result) == "null" {
		return []core.Update{}, nil
	}

	var raw []update
	if err := json.Unmarshal(apiResp.Result, &raw); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}

	updates := make([]core.Update, 0, len(raw))
	for _, u := range raw {
		cu := core.Update{UpdateID: u.UpdateID}
		if u.Message != nil {
			cu.Message = &core.IncomingMessage{
				UpdateID:  u.UpdateID,
				MessageID: u.Message.MessageID,
				ChatID:    u.Message.Chat.ID,
				Text:      u.Message.Text,
				Timestamp: time.Unix(u.Message.Date, 0),
			}
		}
		updates = append(updates, cu)
	}

	g.logger.Debug("fetched updates", "offset", offset, "count", len(updates))
	return updates, nil
}

// SendReply posts r.Text to r.ChatID as a form-encoded sendMessage call.
func (g *Gateway) SendReply(ctx context.Context, r core.Reply) error {
	form := url.Values{
		"chat_id": {strconv.FormatInt(r.ChatID, 10)},
		"text":    {r.Text},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint("sendMessage"), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request: %w", g.redact(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body apiResponse
		json.NewDecoder(resp.Body).Decode(&body)
		return fmt.Errorf("telegram API error %d: %s", resp.StatusCode, body.Description)
	}

	return nil
}

func (g *Gateway) endpoint(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", g.baseURL, g.botToken, method)
}

// redact masks the bot token in transport errors, which embed the request
// URL. The original error stays reachable through Unwrap.
func (g *Gateway) redact(err error) error {
	if g.botToken == "" || !strings.Contains(err.Error(), g.botToken) {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), g.botToken, "***"), err: err}
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }
