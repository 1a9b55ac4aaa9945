package bot

import (
	"context"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/bistrobot/internal/logger"
)

const loggerCtxKey = "logger_ctx"

// storeContext attaches a reusable context to tele.Context for downstream use.
func storeContext(c tele.Context, ctx context.Context) {
	if c == nil || ctx == nil {
		return
	}
	c.Set(loggerCtxKey, ctx)
}

// eventContext returns the context built by the logging middleware, or
// constructs one with rid and update metadata when called outside of it.
func eventContext(c tele.Context) context.Context {
	if v := c.Get(loggerCtxKey); v != nil {
		if ctx, ok := v.(context.Context); ok {
			return ctx
		}
	}

	upd := c.Update()
	var chatID, userID int64
	if chat := c.Chat(); chat != nil {
		chatID = chat.ID
	}
	if user := c.Sender(); user != nil {
		userID = user.ID
	}

	ctx := logger.WithRID(context.Background(), logger.BuildRID(upd.ID, chatID, userID))
	ctx = logger.WithUpdateMeta(ctx, upd.ID, userID, chatID)
	storeContext(c, ctx)
	return ctx
}

// senderName picks a stable display name for storage: the public username when
// set, otherwise the profile name.
func senderName(u *tele.User) string {
	if u == nil {
		return ""
	}
	if u.Username != "" {
		return u.Username
	}
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return name
}
