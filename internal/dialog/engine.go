// Package dialog implements the guided conversation: profile editing, the
// search wizard, and back navigation between their steps.
package dialog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/m3rciful/partyfinder/core/logger"
	"github.com/m3rciful/partyfinder/core/telegram/state"
	"github.com/m3rciful/partyfinder/internal/profile"
	"github.com/m3rciful/partyfinder/internal/search"
)

// Engine routes events through the transition table and renders replies.
type Engine struct {
	store    profile.Store
	search   *search.Executor
	sessions state.Manager[Session]
}

// NewEngine wires an engine. A nil sessions manager selects an in-memory one.
func NewEngine(store profile.Store, exec *search.Executor, sessions state.Manager[Session]) *Engine {
	if sessions == nil {
		sessions = state.NewMemoryManager[Session]()
	}
	return &Engine{store: store, search: exec, sessions: sessions}
}

// InProgress reports whether the user's next text message belongs to the dialog.
func (e *Engine) InProgress(userID int64) bool {
	s, ok := e.sessions.Load(userID)
	return ok && s.Step.AcceptsText()
}

// Session returns a copy of the user's session, or an idle one.
func (e *Engine) Session(userID int64) Session {
	if s, ok := e.sessions.Load(userID); ok {
		return s
	}
	return NewSession()
}

// Start drops the user's session and shows the main menu.
func (e *Engine) Start(userID int64) Reply {
	e.sessions.Clear(userID)
	return Reply{Mode: Send, Text: textMainMenu, Rows: mainMenuRows()}
}

// Handle applies ev to the user's session. The reply is always renderable;
// a non-nil error reports the store failure that aborted the flow.
func (e *Engine) Handle(ctx context.Context, ev Event) (Reply, error) {
	mode := Replace
	if ev.Kind == EventText {
		mode = Send
	}

	sess := e.Session(ev.UserID)
	from := sess.Step
	tr, ok := lookup(from, ev)
	if !ok {
		if ev.Kind == EventText {
			if !from.Resting() {
				e.sessions.Clear(ev.UserID)
			}
			r := hintReply()
			r.Mode = mode
			return r, nil
		}
		logger.LogEvent(ctx, logger.Dialog, slog.LevelDebug, "fsm.unsupported",
			slog.String("step", from.String()),
			slog.String("token", ev.Token),
		)
		return Reply{Mode: mode, Alert: textUnsupported}, nil
	}

	t := &turn{ev: ev, sess: sess, kind: tr.kind}
	err := tr.run(e, ctx, t)
	var reply Reply
	if err == nil {
		reply, err = e.render(ctx, t)
	}
	if err != nil {
		e.sessions.Clear(ev.UserID)
		abortsTotal.Inc()
		e.record(ctx, ev.UserID, from, Idle, Reset, err)
		reply = failureReply()
		reply.Mode = mode
		return reply, err
	}

	if t.sess.Step == Idle && t.sess.Nav.Len() == 0 {
		e.sessions.Clear(ev.UserID)
	} else {
		e.sessions.Store(ev.UserID, t.sess)
	}
	e.record(ctx, ev.UserID, from, t.sess.Step, t.kind, nil)
	reply.Mode = mode
	return reply, nil
}

func (e *Engine) render(ctx context.Context, t *turn) (Reply, error) {
	if t.reply != nil {
		return *t.reply, nil
	}
	step := t.sess.Step
	var (
		text string
		rows [][]Button
	)
	switch step {
	case Idle:
		return Reply{Text: withNotice(t.notice, textMainMenu), Rows: mainMenuRows()}, nil
	case Profile:
		p, err := e.loadProfile(ctx, t)
		if err != nil {
			return Reply{}, err
		}
		text, rows = profileText(p), profileRows(p)
	case PositionOption:
		text, rows = textPositionOption, positionOptionRows(t.sess.Search)
	default:
		text, rows = promptTexts[step], promptRows(step)
	}
	if t.restore {
		if cached, ok := t.sess.Nav.FetchText(step); ok {
			text = cached
		}
	} else {
		t.sess.Nav.StoreText(step, text)
	}
	return Reply{Text: withNotice(t.notice, text), Rows: rows}, nil
}

// loadProfile returns the caller's profile, or an empty one when none is stored.
func (e *Engine) loadProfile(ctx context.Context, t *turn) (profile.Profile, error) {
	if !t.loaded {
		p, err := e.store.Get(ctx, t.ev.UserID)
		if err != nil {
			return profile.Profile{}, err
		}
		t.prof, t.loaded = p, true
	}
	if t.prof == nil {
		return profile.Profile{UserID: t.ev.UserID}, nil
	}
	return *t.prof, nil
}

// save writes patch together with the caller's current username.
func (e *Engine) save(ctx context.Context, t *turn, patch profile.Patch) error {
	username := t.ev.Username
	patch.Username = &username
	if err := e.store.Upsert(ctx, t.ev.UserID, patch); err != nil {
		return err
	}
	t.loaded = false
	return nil
}

func (e *Engine) runSearch(ctx context.Context, t *turn) error {
	res, err := e.search.Run(ctx, t.ev.UserID, t.sess.Search.Options())
	var r Reply
	switch {
	case errors.Is(err, profile.ErrMmrUnavailable):
		r = needMmrReply()
	case err != nil:
		return err
	case res.Empty():
		r = noMatchesReply()
	default:
		r = resultsReply(res)
	}
	t.sess.Reset()
	t.reply = &r
	return nil
}

func (e *Engine) record(ctx context.Context, userID int64, from, to Step, kind ActionKind, err error) {
	transitionsTotal.WithLabelValues(from.String(), to.String(), kind.String()).Inc()
	level := slog.LevelDebug
	attrs := []slog.Attr{
		slog.Int64("user_id", userID),
		slog.String("from", from.String()),
		slog.String("to", to.String()),
		slog.String("kind", kind.String()),
		slog.String("status", logger.Status(err)),
	}
	if err != nil {
		level = slog.LevelError
		attrs = append(attrs, slog.String("err", err.Error()))
		var se *profile.StoreError
		if errors.As(err, &se) {
			attrs = append(attrs, slog.String("code", se.Code()))
		}
	}
	logger.LogEvent(ctx, logger.Dialog, level, "fsm.transition", attrs...)
}
