package router

import (
	"log/slog"

	tg "github.com/m3rciful/partyfinder/core/telegram"
	"github.com/m3rciful/partyfinder/core/telegram/callbacks"
	"github.com/m3rciful/partyfinder/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises fallback behaviour for callbacks.
type CallbackOptions struct {
	// NotFound is used when the registry has no fallback of its own.
	NotFound tele.HandlerFunc
}

// CallbackRoute dispatches every callback query by its unique key.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}
		key, _ := callbacks.ParseCallbackData(c.Callback())
		s := handled("callback."+normalizeHandlerName(key), slog.String("cb_key", key))

		if h, ok := reg.GetCallback(key); ok && h != nil {
			return s.run(c, h)
		}
		fallback := reg.CallbackNotFound()
		if fallback == nil {
			fallback = opts.NotFound
		}
		s.extras = append(s.extras, slog.String("reason", "not_found"))
		return s.run(c, fallback)
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}
