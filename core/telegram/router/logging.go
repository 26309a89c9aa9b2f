package router

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/partyfinder/core/logger"
	tghelpers "github.com/m3rciful/partyfinder/core/telegram/helpers"
	"github.com/m3rciful/partyfinder/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// summary names a routed handler and carries the fields of its
// handler.handled line.
type summary struct {
	handler string
	// status replaces the status derived from the handler error.
	status string
	extras []slog.Attr
}

func handled(name string, extras ...slog.Attr) summary {
	return summary{handler: name, extras: extras}
}

func (s summary) run(c tele.Context, h tele.HandlerFunc) error {
	start := time.Now()
	tghelpers.WithHandler(c, s.handler)
	var err error
	if h != nil {
		err = h(c)
	}
	s.log(c, time.Since(start), err)
	return err
}

func (s summary) log(c tele.Context, took time.Duration, err error) {
	outcome := logger.Status(err)
	status := s.status
	if status == "" {
		status = outcome
	}
	middleware.ObserveHandler(s.handler, status, took)

	msgs, kb := middleware.GetCounters(c)
	attrs := append([]slog.Attr{
		slog.String("status", status),
		slog.String("handler", s.handler),
		slog.String("outcome", outcome),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Duration("duration", took),
	}, s.extras...)

	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelWarn
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", deriveErrorCode(err)),
		)
	}
	logger.LogEvent(tghelpers.WithHandler(c, s.handler), logger.TG, level, "handler.handled", attrs...)
}

func normalizeHandlerName(name string) string {
	name = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "/"))
	if name == "" {
		return "unknown"
	}
	return strings.ReplaceAll(name, " ", "_")
}

// deriveErrorCode prefers an explicit Code() anywhere in the chain and falls
// back to the concrete type name.
func deriveErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var c interface{ Code() string }
	code := ""
	if errors.As(err, &c) {
		code = strings.TrimSpace(c.Code())
	}
	if code == "" {
		code = fmt.Sprintf("%T", err)
		code = code[strings.LastIndexByte(code, '.')+1:]
	}
	return strings.ToUpper(strings.ReplaceAll(code, " ", "_"))
}
