package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jdelaire/climabot/core/policy"
	"github.com/jdelaire/climabot/core/ratelimit"
)

const sendTimeout = 10 * time.Second

// Dispatcher turns inbound messages into replies: authorize, route,
// render, respond.
type Dispatcher struct {
	policy  *policy.Policy
	limiter *ratelimit.Limiter
	weather WeatherService
	replier Replier
	logger  *slog.Logger
	now     func() time.Time
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(pol *policy.Policy, limiter *ratelimit.Limiter, weather WeatherService, replier Replier, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		policy:  pol,
		limiter: limiter,
		weather: weather,
		replier: replier,
		logger:  logger,
		now:     time.Now,
	}
}

// Handle processes one inbound message. It blocks until the reply has been
// sent or has failed; send failures are logged and swallowed so one bad
// round trip does not stop the poll loop.
func (d *Dispatcher) Handle(ctx context.Context, msg IncomingMessage) {
	if msg.Text == nil {
		return
	}

	if err := d.policy.Authorize(msg.ChatID, msg.UpdateID); err != nil {
		d.logger.Debug("message rejected by policy", "chat_id", msg.ChatID, "update_id", msg.UpdateID, "error", err)
		return
	}

	if !d.limiter.Allow(msg.ChatID) {
		d.logger.Warn("message dropped by rate limiter", "chat_id", msg.ChatID, "update_id", msg.UpdateID)
		return
	}

	r := Reply{
		ID:        uuid.NewString(),
		ChatID:    msg.ChatID,
		Text:      d.Render(ctx, *msg.Text),
		CreatedAt: d.now(),
	}
	d.respond(ctx, r)
}

// Render routes text and produces the reply string. Weather lookups only
// happen when a city was given.
func (d *Dispatcher) Render(ctx context.Context, text string) string {
	intent := Route(text)
	d.logger.Debug("routed message", "intent", intent.Kind.String(), "city", intent.City)

	switch intent.Kind {
	case IntentCurrentWeather:
		if intent.City == "" {
			return missingCityCurrentText
		}
		return d.weather.Current(ctx, intent.City)
	case IntentForecast:
		if intent.City == "" {
			return missingCityForecastText
		}
		return d.weather.Forecast(ctx, intent.City)
	case IntentGreeting:
		return greetingText
	default:
		return usageText
	}
}

func (d *Dispatcher) respond(ctx context.Context, r Reply) {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := d.replier.SendReply(ctx, r); err != nil {
		d.logger.Error("failed to send reply", "reply_id", r.ID, "chat_id", r.ChatID, "error", err)
		return
	}
	d.logger.Info("reply sent", "reply_id", r.ID, "chat_id", r.ChatID)
}
