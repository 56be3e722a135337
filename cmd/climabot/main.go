package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jdelaire/climabot/adapters/openweather"
	"github.com/jdelaire/climabot/adapters/telegram"
	"github.com/jdelaire/climabot/core"
	"github.com/jdelaire/climabot/core/policy"
	"github.com/jdelaire/climabot/core/ratelimit"
	"github.com/jdelaire/climabot/internal/config"
)

const limiterPruneInterval = 5 * time.Minute

func main() {
	cfg, err := config.Load("")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	allowed, _ := cfg.AllowedChatIDs()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gateway := telegram.New(cfg.TelegramToken, logger.With("component", "telegram")).
		WithBaseURL(cfg.TelegramBaseURL).
		WithPollTimeout(cfg.PollTimeoutDuration())

	weather := openweather.New(cfg.OpenWeatherKey, logger.With("component", "openweather"),
		openweather.WithBaseURL(cfg.WeatherBaseURL),
		openweather.WithUnits(cfg.Units),
		openweather.WithLang(cfg.Lang),
	)

	limiter := ratelimit.New(cfg.RatePerSecond, cfg.RateBurst)
	if limiter.Enabled() {
		go limiter.Run(ctx, limiterPruneInterval)
	}

	dispatcher := core.NewDispatcher(policy.New(allowed), limiter, weather, gateway, logger.With("component", "dispatcher"))
	poller := core.NewPoller(gateway, dispatcher.Handle, logger.With("component", "poller"))

	fmt.Println("✅ Bot de clima rodando...")
	logger.Info("climabot starting",
		"allowed_chats", len(allowed),
		"rate_limited", limiter.Enabled(),
		"poll_timeout", cfg.PollTimeoutDuration(),
	)

	if err := poller.Run(ctx); err != nil {
		logger.Error("poller failed", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete", "offset", poller.Offset())
}
