package dialog

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/m3rciful/partyfinder/internal/profile"
	"github.com/m3rciful/partyfinder/internal/search"
)

// ActionKind classifies what a transition does to the navigation stack.
type ActionKind uint8

const (
	// Forward pushes the step being left.
	Forward ActionKind = iota + 1
	// InPlace re-renders the current step and never touches the stack.
	InPlace
	// Back pops the stack.
	Back
	// Reset clears the session and shows the main menu.
	Reset
	// Terminal ends a flow on a resting screen.
	Terminal
)

func (k ActionKind) String() string {
	switch k {
	case Forward:
		return "forward"
	case InPlace:
		return "in_place"
	case Back:
		return "back"
	case Reset:
		return "reset"
	case Terminal:
		return "terminal"
	}
	return "unknown"
}

type transition struct {
	kind ActionKind
	run  func(e *Engine, ctx context.Context, t *turn) error
}

// turn carries one event through a transition and into rendering.
type turn struct {
	ev   Event
	sess Session
	kind ActionKind

	prof   *profile.Profile
	loaded bool

	// restore renders the cached text of the step instead of a fresh one.
	restore bool
	notice  string
	reply   *Reply
}

func (t *turn) forward(to Step) {
	t.sess.Nav.Push(t.sess.Step)
	t.sess.Step = to
}

func (t *turn) reprompt(hint string) {
	t.kind = InPlace
	t.notice = hint
}

func (t *turn) unsupported() {
	t.kind = InPlace
	t.reply = &Reply{Alert: textUnsupported}
}

var globalTransitions = map[string]transition{
	TokenMenu: {Reset, goMenu},
	TokenBack: {Back, goBack},
}

var restingTransitions = map[string]transition{
	TokenProfile:      {Forward, openProfile},
	TokenSearch:       {Forward, startSearch},
	TokenEditPosition: {Forward, openEditor(EditPosition)},
	TokenEditMode:     {Forward, openEditor(EditMode)},
	TokenEditMmr:      {Forward, openEditor(EditMmr)},
}

var callbackTransitions = map[Step]map[string]transition{
	Idle: restingTransitions,
	Profile: merge(restingTransitions, map[string]transition{
		TokenToggleOnline: {InPlace, toggleOnline},
		TokenToggleFull:   {InPlace, toggleFullParty},
	}),
	EditMode: {
		TokenSetMode: {Terminal, setMode},
	},
	SearchMode: {
		TokenSearchMode: {Forward, chooseSearchMode},
	},
	PositionOption: {
		TokenToggleExclude: {InPlace, toggleExclude},
		TokenSpecPosition:  {Forward, openSpecificPosition},
		TokenStartSearch:   {Forward, confirmPositions},
	},
	SpecificPosition: {
		TokenPickPosition: {Forward, pickPosition},
	},
	FullPartyOption: {
		TokenFullParty: {Forward, chooseFullParty},
	},
	MmrOption: {
		TokenMmrNone:     {Terminal, searchWithoutMmr},
		TokenDelta:       {Terminal, searchWithDelta},
		TokenDeltaCustom: {Forward, openCustomDelta},
	},
}

var textTransitions = map[Step]transition{
	EditPosition: {Terminal, enterPosition},
	EditMmr:      {Terminal, enterMmr},
	CustomDelta:  {Terminal, enterDelta},
}

func merge(base, extra map[string]transition) map[string]transition {
	out := make(map[string]transition, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func isCancel(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "cancel", "отмена":
		return true
	}
	return false
}

func lookup(step Step, ev Event) (transition, bool) {
	if ev.Kind == EventText {
		if !step.AcceptsText() {
			return transition{}, false
		}
		if isCancel(ev.Text) {
			return globalTransitions[TokenBack], true
		}
		tr, ok := textTransitions[step]
		return tr, ok
	}
	if tr, ok := globalTransitions[ev.Token]; ok {
		return tr, true
	}
	tr, ok := callbackTransitions[step][ev.Token]
	return tr, ok
}

func goMenu(_ *Engine, _ context.Context, t *turn) error {
	t.sess.Reset()
	return nil
}

func goBack(_ *Engine, _ context.Context, t *turn) error {
	prev, ok := t.sess.Nav.Pop()
	if !ok || prev == Idle {
		t.kind = Reset
		t.sess.Reset()
		return nil
	}
	t.sess.Step = prev
	t.restore = true
	return nil
}

func openProfile(_ *Engine, _ context.Context, t *turn) error {
	if t.sess.Step == Profile {
		t.kind = InPlace
		return nil
	}
	t.forward(Profile)
	return nil
}

// openEditor enters an edit step so that back returns to the profile view.
func openEditor(to Step) func(*Engine, context.Context, *turn) error {
	return func(_ *Engine, _ context.Context, t *turn) error {
		t.sess.Nav.Push(Profile)
		t.sess.Step = to
		return nil
	}
}

func toggleOnline(e *Engine, ctx context.Context, t *turn) error {
	p, err := e.loadProfile(ctx, t)
	if err != nil {
		return err
	}
	v := !p.Online
	return e.save(ctx, t, profile.Patch{Online: &v})
}

func toggleFullParty(e *Engine, ctx context.Context, t *turn) error {
	p, err := e.loadProfile(ctx, t)
	if err != nil {
		return err
	}
	v := !p.FullParty
	return e.save(ctx, t, profile.Patch{FullParty: &v})
}

func setMode(e *Engine, ctx context.Context, t *turn) error {
	m, err := profile.ParseMode(t.ev.Payload)
	if err != nil {
		t.unsupported()
		return nil
	}
	if err := e.save(ctx, t, profile.Patch{Mode: &m}); err != nil {
		return err
	}
	t.sess.Reset()
	t.sess.Nav.Push(Idle)
	t.sess.Step = Profile
	t.notice = "✅ Mode saved: " + string(m)
	return nil
}

func enterPosition(e *Engine, ctx context.Context, t *turn) error {
	p, err := profile.ParsePosition(t.ev.Text)
	if err != nil {
		t.reprompt(hintPosition)
		return nil
	}
	if err := e.save(ctx, t, profile.Patch{Position: &p}); err != nil {
		return err
	}
	t.sess.Reset()
	t.notice = "✅ Position saved: " + p.Label()
	return nil
}

func enterMmr(e *Engine, ctx context.Context, t *turn) error {
	mmr, err := profile.ParseMmr(t.ev.Text)
	if err != nil {
		t.reprompt(hintMmr)
		return nil
	}
	if err := e.save(ctx, t, profile.Patch{Mmr: &mmr}); err != nil {
		return err
	}
	t.sess.Reset()
	t.notice = "✅ MMR saved: " + strconv.Itoa(mmr)
	return nil
}

func startSearch(e *Engine, ctx context.Context, t *turn) error {
	p, err := e.loadProfile(ctx, t)
	if err != nil {
		return err
	}
	if !p.Position.Valid() {
		t.kind = InPlace
		r := needPositionReply()
		t.reply = &r
		return nil
	}
	t.sess.Nav.Clear()
	t.sess.Nav.Push(Idle)
	t.sess.Search = NewSearchDraft()
	t.sess.Search.OwnPosition = p.Position
	t.sess.Step = SearchMode
	return nil
}

func chooseSearchMode(_ *Engine, _ context.Context, t *turn) error {
	m, err := profile.ParseMode(t.ev.Payload)
	if err != nil {
		t.unsupported()
		return nil
	}
	t.sess.Search.Mode = m
	t.notice = "🎮 Mode: " + string(m)
	t.forward(PositionOption)
	return nil
}

func toggleExclude(_ *Engine, _ context.Context, t *turn) error {
	t.sess.Search.Position = t.sess.Search.Position.ToggleExclude()
	return nil
}

func openSpecificPosition(_ *Engine, _ context.Context, t *turn) error {
	t.forward(SpecificPosition)
	return nil
}

func confirmPositions(_ *Engine, _ context.Context, t *turn) error {
	t.forward(FullPartyOption)
	return nil
}

func pickPosition(_ *Engine, _ context.Context, t *turn) error {
	p, err := profile.ParsePosition(t.ev.Payload)
	if err != nil {
		t.unsupported()
		return nil
	}
	t.sess.Search.Position = search.Specific(p)
	t.notice = "🎯 Position: " + p.Label()
	t.forward(FullPartyOption)
	return nil
}

func chooseFullParty(_ *Engine, _ context.Context, t *turn) error {
	switch t.ev.Payload {
	case "yes":
		t.sess.Search.OnlyFullParty = true
	case "no":
		t.sess.Search.OnlyFullParty = false
	default:
		t.unsupported()
		return nil
	}
	t.notice = "🤝 Full party only: " + yesNo(t.sess.Search.OnlyFullParty)
	t.forward(MmrOption)
	return nil
}

func searchWithoutMmr(e *Engine, ctx context.Context, t *turn) error {
	t.sess.Search.MmrDelta = 0
	return e.runSearch(ctx, t)
}

func searchWithDelta(e *Engine, ctx context.Context, t *turn) error {
	d, err := strconv.Atoi(t.ev.Payload)
	if err != nil || !slices.Contains(fixedDeltas, d) {
		t.unsupported()
		return nil
	}
	t.sess.Search.MmrDelta = d
	return e.runSearch(ctx, t)
}

func openCustomDelta(_ *Engine, _ context.Context, t *turn) error {
	t.forward(CustomDelta)
	return nil
}

func enterDelta(e *Engine, ctx context.Context, t *turn) error {
	d, err := strconv.ParseInt(strings.TrimSpace(t.ev.Text), 10, 32)
	if err != nil || d <= 0 {
		t.reprompt(hintDelta)
		return nil
	}
	t.sess.Search.MmrDelta = int(d)
	return e.runSearch(ctx, t)
}
