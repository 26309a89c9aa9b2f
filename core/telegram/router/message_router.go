package router

import (
	tg "github.com/m3rciful/partyfinder/core/telegram"
	"github.com/m3rciful/partyfinder/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// FSM is the dialog side of text routing: it owns text while a user sits in
// an input step.
type FSM interface {
	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}

// TextOptions controls fallback behaviour for text/document updates.
type TextOptions struct {
	UnknownText     tele.HandlerFunc
	UnknownDocument tele.HandlerFunc
}

// TextRoutes builds handlers for text and document routing. Text goes to the
// FSM while a text step is active, then to commands matched by name or alias,
// then to the registry fallback.
func TextRoutes(fsmMgr FSM, reg *tg.Registry, opts TextOptions) []tg.Route {
	inDialog := func(c tele.Context) bool {
		return fsmMgr != nil && c.Sender() != nil && fsmMgr.InProgress(c.Sender().ID)
	}

	text := func(c tele.Context) error {
		if inDialog(c) {
			return handled("fsm").run(c, fsmMgr.ManagerHandler)
		}
		if reg != nil {
			// admin-only commands are reachable only through their guarded endpoint
			if key, cmd, ok := reg.LookupCommand(c.Text()); ok && cmd.Handler != nil && !cmd.AdminOnly {
				return handled(normalizeHandlerName(key)).run(c, cmd.Handler)
			}
			if fb := reg.TextFallback(); fb != nil {
				return handled("fallback").run(c, fb)
			}
		}
		s := handled("unknown_text")
		if opts.UnknownText == nil {
			s.status = "skip"
		}
		return s.run(c, opts.UnknownText)
	}

	document := func(c tele.Context) error {
		if inDialog(c) {
			return handled("fsm_document").run(c, fsmMgr.ManagerHandler)
		}
		s := handled("unexpected_document")
		if opts.UnknownDocument == nil {
			s.status = "skip"
		}
		return s.run(c, opts.UnknownDocument)
	}

	wrap := func(h tele.HandlerFunc) tele.HandlerFunc {
		return middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
	}
	return []tg.Route{
		{Endpoint: tele.OnText, Handler: wrap(text)},
		{Endpoint: tele.OnDocument, Handler: wrap(document)},
	}
}
