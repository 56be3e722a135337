package core

import (
	"context"
	"log/slog"
	"time"
)

const defaultErrorBackoff = 5 * time.Second

// Poller drives the bot: it fetches updates, advances the offset cursor and
// hands every texted message to the handler, one at a time, in arrival order.
type Poller struct {
	source  UpdateSource
	handler MessageHandler
	logger  *slog.Logger
	backoff time.Duration
	offset  int64
}

// NewPoller creates a Poller reading from source.
func NewPoller(source UpdateSource, handler MessageHandler, logger *slog.Logger) *Poller {
	return &Poller{
		source:  source,
		handler: handler,
		logger:  logger,
		backoff: defaultErrorBackoff,
	}
}

// WithErrorBackoff overrides the pause after a failed fetch (for testing).
func (p *Poller) WithErrorBackoff(d time.Duration) *Poller {
	p.backoff = d
	return p
}

// Offset returns the current cursor: last consumed update_id + 1, or zero
// before the first update was seen.
func (p *Poller) Offset() int64 {
	return p.offset
}

// Run polls until ctx is cancelled. Fetch errors are logged and retried
// after a backoff with the cursor unchanged.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("poller started")
	for {
		if err := ctx.Err(); err != nil {
			p.logger.Info("poller stopped")
			return nil
		}

		updates, err := p.source.FetchUpdates(ctx, p.offset)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("poller stopped")
				return nil
			}
			p.logger.Error("fetch updates failed", "offset", p.offset, "error", err)
			select {
			case <-time.After(p.backoff):
			case <-ctx.Done():
				p.logger.Info("poller stopped")
				return nil
			}
			continue
		}

		p.process(ctx, updates)
	}
}

func (p *Poller) process(ctx context.Context, updates []Update) {
	for _, u := range updates {
		if next := u.UpdateID + 1; next > p.offset {
			p.offset = next
		}

		if u.Message == nil {
			p.logger.Debug("skipping update without message", "update_id", u.UpdateID)
			continue
		}
		if u.Message.Text == nil || *u.Message.Text == "" {
			p.logger.Debug("skipping message without text", "update_id", u.UpdateID, "chat_id", u.Message.ChatID)
			continue
		}

		msg := *u.Message
		msg.UpdateID = u.UpdateID
		p.handler(ctx, msg)
	}
}
