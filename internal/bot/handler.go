package bot

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/bistrobot/internal/config"
	"github.com/m3rciful/bistrobot/internal/conversation"
	"github.com/m3rciful/bistrobot/internal/locales"
	"github.com/m3rciful/bistrobot/internal/logger"
	"github.com/m3rciful/bistrobot/internal/session"
	"github.com/m3rciful/bistrobot/internal/storage"
)

// replier abstracts the outbound side of one update so dialog logic can be
// tested without a live Telegram connection.
type replier interface {
	Reply(text string, opts ...interface{}) error
}

// teleReplier sends through the outbox; when the queue is saturated or closed
// it falls back to a direct synchronous send so the user still gets a reply.
type teleReplier struct {
	c   tele.Context
	out *Outbox
}

func (r teleReplier) Reply(text string, opts ...interface{}) error {
	if r.out == nil {
		return r.c.Send(text, opts...)
	}
	err := r.out.Enqueue(eventContext(r.c), "send.text", func() error {
		return r.c.Send(text, opts...)
	})
	if errors.Is(err, ErrQueueFull) || errors.Is(err, ErrQueueClosed) {
		return r.c.Send(text, opts...)
	}
	return err
}

// Handler owns the dialog pipeline: it maps updates to events, runs them
// through the state machine under the per-user lock, and executes the effects.
type Handler struct {
	store    storage.Storage
	sessions *session.Manager
	loyalty  config.LoyaltyConfig
	adminID  int64
	out      *Outbox
}

// NewHandler wires the dialog pipeline.
func NewHandler(store storage.Storage, sessions *session.Manager, loyalty config.LoyaltyConfig, adminID int64, out *Outbox) *Handler {
	return &Handler{
		store:    store,
		sessions: sessions,
		loyalty:  loyalty,
		adminID:  adminID,
		out:      out,
	}
}

// dispatch runs one event for one user. The session lock is held through the
// effect execution, so a user's update fully completes before their next one.
// The session advances only when every effect succeeded: a failed write keeps
// the cart or the collected reservation input, so the user can simply retry.
func (h *Handler) dispatch(ctx context.Context, r replier, tgID int64, username string, ev conversation.Event) error {
	var err error
	h.sessions.Do(tgID, func(sess *conversation.Session) {
		next, effects := conversation.Step(*sess, ev)
		if err = h.apply(ctx, r, tgID, username, effects); err != nil {
			return
		}
		*sess = next
	})
	return err
}

// handle adapts a tele update into a dispatch call and logs the outcome.
// Errors are logged, reported to the user where possible, and swallowed so
// one bad update never takes down the poller.
func (h *Handler) handle(c tele.Context, name string, ev conversation.Event) error {
	user := c.Sender()
	if user == nil {
		return nil
	}

	start := time.Now()
	ctx := logger.WithHandler(eventContext(c), name)

	err := h.dispatch(ctx, teleReplier{c: c, out: h.out}, user.ID, senderName(user), ev)

	attrs := []slog.Attr{
		slog.String("status", logger.Status(err)),
		slog.String("handler", name),
		slog.Duration("duration", logger.Took(start)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("err", err.Error()))
		logger.Error(ctx, "tg", "handler.handled", attrs...)
		return nil
	}
	logger.Info(ctx, "tg", "handler.handled", attrs...)
	return nil
}

func (h *Handler) onStart(c tele.Context) error {
	return h.handle(c, "start", conversation.Start{})
}

func (h *Handler) onCheckout(c tele.Context) error {
	return h.handle(c, "checkout", conversation.Checkout{})
}

func (h *Handler) onHelp(c tele.Context) error {
	r := teleReplier{c: c, out: h.out}
	return r.Reply(locales.Help)
}

// onText routes the reply keyboard buttons first; anything else is free text
// that only the reservation flow consumes.
func (h *Handler) onText(c tele.Context) error {
	switch c.Text() {
	case locales.BtnMenu:
		return h.handle(c, "menu", conversation.ShowMenu{})
	case locales.BtnReserve:
		return h.handle(c, "reserve", conversation.ReserveTable{})
	case locales.BtnPoints:
		return h.handle(c, "points", conversation.ShowPoints{})
	}
	return h.handle(c, "text", conversation.FreeText{Text: c.Text()})
}

func (h *Handler) onCallback(c tele.Context) error {
	// Ack early so the client stops the button spinner.
	_ = c.Respond()

	key, payload := splitCallbackData(c.Callback())
	switch key {
	case cbCategory:
		return h.handle(c, "category", conversation.CategoryChosen{Name: payload})
	case cbItem:
		name, price, ok := parseItemPayload(payload)
		if !ok {
			logger.Warn(eventContext(c), "tg", "callback.malformed",
				slog.String("payload", logger.SanitizeLimit(payload, 256)))
			return teleReplier{c: c, out: h.out}.Reply(locales.UnsupportedAction)
		}
		return h.handle(c, "item", conversation.ItemChosen{Name: name, Price: price})
	}

	logger.Warn(eventContext(c), "tg", "callback.unknown",
		slog.String("cb_key", logger.SanitizeLimit(key, 128)))
	return teleReplier{c: c, out: h.out}.Reply(locales.UnsupportedAction)
}

// parseItemPayload decodes "<name>|<price>" from an item button.
func parseItemPayload(payload string) (string, int, bool) {
	parts := strings.SplitN(payload, "|", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", 0, false
	}
	price, err := strconv.Atoi(parts[1])
	if err != nil || price < 0 {
		return "", 0, false
	}
	return parts[0], price, true
}
