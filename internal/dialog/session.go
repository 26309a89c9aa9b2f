package dialog

import (
	"github.com/m3rciful/partyfinder/internal/profile"
	"github.com/m3rciful/partyfinder/internal/search"
)

// SearchDraft holds the search choices made so far.
type SearchDraft struct {
	// OwnPosition is the requester's position when the search started.
	OwnPosition   profile.Position
	Mode          profile.Mode
	Position      search.PositionFilter
	OnlyFullParty bool
	MmrDelta      int
}

// NewSearchDraft returns a draft with the own-position exclusion on.
func NewSearchDraft() SearchDraft {
	return SearchDraft{Position: search.ExcludeOwn()}
}

// Options converts the draft into search options.
func (d SearchDraft) Options() search.Options {
	return search.Options{
		Mode:          d.Mode,
		Position:      d.Position,
		OnlyFullParty: d.OnlyFullParty,
		MmrDelta:      d.MmrDelta,
	}
}

// Session is the conversation state of one user.
type Session struct {
	Step   Step
	Nav    NavStack
	Search SearchDraft
}

// NewSession returns an idle session.
func NewSession() Session {
	return Session{Step: Idle, Search: NewSearchDraft()}
}

// Clone returns a deep copy.
func (s Session) Clone() Session {
	s.Nav = s.Nav.clone()
	return s
}

// Reset returns the session to idle and drops history and search choices.
func (s *Session) Reset() {
	*s = NewSession()
}
