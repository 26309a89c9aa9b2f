package logger

import (
	"context"
	"log/slog"
)

type ctxKey uint8

const (
	keyMeta ctxKey = iota
	keyLogger
)

// Meta carries the correlation fields of one inbound update. Every log line
// written with a context holding Meta receives these fields unless the record
// sets them itself.
type Meta struct {
	RID      string
	UpdateID int
	UserID   int64
	ChatID   int64
	Handler  string
	SearchID string
}

// MetaFrom returns the Meta stored in ctx, or the zero value.
func MetaFrom(ctx context.Context) Meta {
	if ctx == nil {
		return Meta{}
	}
	m, _ := ctx.Value(keyMeta).(Meta)
	return m
}

// WithMeta replaces the Meta stored in ctx.
func WithMeta(ctx context.Context, m Meta) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, keyMeta, m)
}

// withMeta stores a modified copy of the current Meta.
func withMeta(ctx context.Context, edit func(*Meta)) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	m := MetaFrom(ctx)
	edit(&m)
	return context.WithValue(ctx, keyMeta, m)
}

// WithLogger stores log in ctx for propagation across layers.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if log == nil {
		return ctx
	}
	return context.WithValue(ctx, keyLogger, log)
}

// FromContext returns the logger stored in ctx or the global one.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(keyLogger).(*slog.Logger); ok {
			return l
		}
	}
	return L
}

// WithRID attaches the request correlation id.
func WithRID(ctx context.Context, rid string) context.Context {
	return withMeta(ctx, func(m *Meta) { m.RID = rid })
}

// RIDFrom returns the request correlation id.
func RIDFrom(ctx context.Context) string { return MetaFrom(ctx).RID }

// WithUpdateMeta attaches the update, user, and chat identifiers.
func WithUpdateMeta(ctx context.Context, updateID int, userID, chatID int64) context.Context {
	return withMeta(ctx, func(m *Meta) {
		m.UpdateID = updateID
		m.UserID = userID
		m.ChatID = chatID
	})
}

// WithHandler tags ctx with the handler serving the update.
func WithHandler(ctx context.Context, handler string) context.Context {
	if handler == "" {
		if ctx == nil {
			return context.Background()
		}
		return ctx
	}
	return withMeta(ctx, func(m *Meta) { m.Handler = handler })
}

// HandlerFrom returns the handler name.
func HandlerFrom(ctx context.Context) string { return MetaFrom(ctx).Handler }

// WithSearchID tags ctx with a matchmaking search correlation id.
func WithSearchID(ctx context.Context, id string) context.Context {
	if id == "" {
		if ctx == nil {
			return context.Background()
		}
		return ctx
	}
	return withMeta(ctx, func(m *Meta) { m.SearchID = id })
}

// SearchIDFrom returns the search correlation id.
func SearchIDFrom(ctx context.Context) string { return MetaFrom(ctx).SearchID }

// UserIDFrom returns the Telegram user id.
func UserIDFrom(ctx context.Context) int64 { return MetaFrom(ctx).UserID }

// ChatIDFrom returns the chat id.
func ChatIDFrom(ctx context.Context) int64 { return MetaFrom(ctx).ChatID }

// UpdateIDFrom returns the update id.
func UpdateIDFrom(ctx context.Context) int { return MetaFrom(ctx).UpdateID }

// fields lists the non-zero Meta values under their log keys.
func (m Meta) fields() []slog.Attr {
	out := make([]slog.Attr, 0, 6)
	if m.RID != "" {
		out = append(out, slog.String("rid", m.RID))
	}
	if m.SearchID != "" {
		out = append(out, slog.String("search_id", m.SearchID))
	}
	if m.UserID != 0 {
		out = append(out, slog.Int64("user_id", m.UserID))
	}
	if m.UpdateID != 0 {
		out = append(out, slog.Int("update_id", m.UpdateID))
	}
	if m.ChatID != 0 {
		out = append(out, slog.Int64("chat_id", m.ChatID))
	}
	if m.Handler != "" {
		out = append(out, slog.String("handler", m.Handler))
	}
	return out
}
