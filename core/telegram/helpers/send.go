package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/partyfinder/core/logger"
	"github.com/m3rciful/partyfinder/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func currentDispatcher() *sender.Dispatcher {
	return globalDispatcher.Load()
}

func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := currentDispatcher()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	if err := disp.Enqueue(ctx, action, endpoint, run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("action", action),
				slog.String("endpoint", endpoint),
				slog.String("err", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}

// SendText sends raw text (no parse mode) with an optional inline keyboard.
func SendText(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ReplyMarkup: markup, DisableWebPagePreview: true}
	return sendAsync(c, "send.text", "sendMessage", func() error {
		return c.Send(text, opts)
	})
}

// EditText replaces the text and keyboard of the message behind the current
// callback. Telegram's "message is not modified" reply is not an error.
func EditText(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ReplyMarkup: markup, DisableWebPagePreview: true}
	return sendAsync(c, "edit.text", "editMessageText", func() error {
		err := c.Edit(text, opts)
		if isNotModified(err) {
			return nil
		}
		return err
	})
}

func isNotModified(err error) bool {
	return errors.Is(err, tele.ErrMessageNotModified) || errors.Is(err, tele.ErrSameMessageContent)
}
