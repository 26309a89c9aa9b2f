package helpers

import (
	"context"

	"github.com/m3rciful/partyfinder/core/logger"

	tele "gopkg.in/telebot.v4"
)

const (
	ctxStoreKey = "logger_ctx"
	ridStoreKey = "rid"
)

// StoreContext caches ctx on c for later handlers of the same update.
func StoreContext(c tele.Context, ctx context.Context) {
	if c == nil || ctx == nil {
		return
	}
	c.Set(ctxStoreKey, ctx)
}

// ContextFrom returns the context cached on c, if any.
func ContextFrom(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	ctx, ok := c.Get(ctxStoreKey).(context.Context)
	return ctx, ok && ctx != nil
}

// UpdateMeta collects the correlation fields of the update behind c. The rid
// set by the logging middleware wins over a freshly built one.
func UpdateMeta(c tele.Context) logger.Meta {
	var m logger.Meta
	m.UpdateID = c.Update().ID
	if u := c.Sender(); u != nil {
		m.UserID = u.ID
	}
	if ch := c.Chat(); ch != nil {
		m.ChatID = ch.ID
	}
	m.RID, _ = c.Get(ridStoreKey).(string)
	if m.RID == "" {
		m.RID = logger.BuildRID(m.UpdateID, m.ChatID, m.UserID)
	}
	return m
}

// BuildContext returns the context for service calls made while handling c:
// update correlation fields plus the tg component logger. The result is cached
// on c.
func BuildContext(c tele.Context) context.Context {
	if cached, ok := ContextFrom(c); ok {
		return cached
	}
	ctx := logger.WithMeta(context.Background(), UpdateMeta(c))
	ctx = logger.WithLogger(ctx, logger.TG)
	StoreContext(c, ctx)
	return ctx
}

// WithHandler tags the cached context with the handler name.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler == "" {
		return ctx
	}
	ctx = logger.WithHandler(ctx, handler)
	StoreContext(c, ctx)
	return ctx
}
