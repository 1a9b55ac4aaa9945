// Package bot wires the Telegram transport: poller setup, middleware,
// routing, and the execution of dialog effects.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/bistrobot/internal/config"
	"github.com/m3rciful/bistrobot/internal/logger"
	"github.com/m3rciful/bistrobot/internal/session"
	"github.com/m3rciful/bistrobot/internal/storage"
)

// Options carries everything the bot needs at construction time.
type Options struct {
	Config  *config.Config
	Storage storage.Storage

	// OutboxOptions tunes the outbound queue; zero values pick defaults.
	OutboxOptions OutboxOptions
}

// Bot is the assembled Telegram frontend.
type Bot struct {
	tb  *tele.Bot
	out *Outbox
	h   *Handler
}

// New builds the bot: poller, HTTP client, middleware chain, and routes.
func New(opts Options) (*Bot, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("telegram: nil config provided")
	}
	if opts.Storage == nil {
		return nil, fmt.Errorf("telegram: nil storage provided")
	}

	poller := buildPoller(cfg)

	buildStart := time.Now()
	tb, err := tele.NewBot(tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: poller,
		Client: buildHTTPClient(apiClientOptions{}),
		OnError: func(err error, c tele.Context) {
			logger.TG.Error("handler error",
				slog.String("event", "tg.error"),
				slog.String("err", redactToken(err)),
			)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: bot initialization failed: %w", err)
	}

	logPollerMode(cfg, poller, time.Since(buildStart))

	out := NewOutbox(opts.OutboxOptions)
	h := NewHandler(opts.Storage, session.NewManager(), cfg.Loyalty, cfg.Telegram.AdminID, out)

	tb.Use(recoverMiddleware)
	if cfg.RateLimit.IntervalMS > 0 {
		tb.Use(rateLimitMiddleware(time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond))
	}
	tb.Use(loggerMiddleware)

	tb.Handle("/start", h.onStart)
	tb.Handle("/checkout", h.onCheckout)
	tb.Handle("/help", h.onHelp)
	tb.Handle("/admin_orders", h.onAdminOrders)
	tb.Handle(tele.OnText, h.onText)
	tb.Handle(tele.OnCallback, h.onCallback)

	if err := tb.SetCommands([]tele.Command{
		{Text: "start", Description: "Запустить бота"},
		{Text: "checkout", Description: "Оформить заказ"},
		{Text: "help", Description: "Справка"},
	}); err != nil {
		logger.TG.Warn("failed to set commands",
			slog.String("event", "tg.set_commands"),
			slog.String("err", redactToken(err)),
		)
	}

	return &Bot{tb: tb, out: out, h: h}, nil
}

// Run starts the poller and blocks until the context is cancelled or the
// poller exits on its own.
func (b *Bot) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	done := make(chan struct{})
	go func() {
		b.tb.Start()
		close(done)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		b.tb.Stop()
		<-done
		runErr = ctx.Err()
	case <-done:
	}

	b.out.Close()

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

// buildPoller selects webhook or long polling from the run mode.
func buildPoller(cfg *config.Config) tele.Poller {
	if cfg.Telegram.RunMode == config.RunModeWebhook {
		return &tele.Webhook{
			Listen:   fmt.Sprintf("%s:%d", cfg.Webhook.Listen, cfg.Webhook.Port),
			Endpoint: &tele.WebhookEndpoint{PublicURL: cfg.Webhook.URL},
		}
	}

	timeoutSec := cfg.Telegram.LongPollTimeoutSeconds
	if timeoutSec <= 0 {
		timeoutSec = 10
	}
	return &tele.LongPoller{Timeout: time.Duration(timeoutSec) * time.Second}
}

func logPollerMode(cfg *config.Config, poller tele.Poller, buildTook time.Duration) {
	switch p := poller.(type) {
	case *tele.Webhook:
		logger.TG.Info("webhook mode",
			slog.String("event", "mode"),
			slog.String("mode", "webhook"),
			slog.String("listen", p.Listen),
			slog.String("public_url", p.Endpoint.PublicURL),
			slog.Duration("duration", logger.RoundMS(buildTook)),
		)
	default:
		timeoutSec := cfg.Telegram.LongPollTimeoutSeconds
		if timeoutSec <= 0 {
			timeoutSec = 10
		}
		logger.TG.Info("polling mode",
			slog.String("event", "mode"),
			slog.String("mode", "polling"),
			slog.Int("timeout_seconds", timeoutSec),
			slog.Duration("duration", logger.RoundMS(buildTook)),
		)
	}
}
