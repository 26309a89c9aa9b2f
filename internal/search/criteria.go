// Package search turns a requester's search choices into a candidate filter
// and runs it against the profile store.
package search

import (
	"github.com/m3rciful/partyfinder/internal/profile"
)

// MaxResults caps every candidate search.
const MaxResults = 30

type positionKind uint8

const (
	positionAny positionKind = iota
	positionExcludeOwn
	positionSpecific
)

// PositionFilter is the position choice of a search: any position, anything but
// the requester's own, or one specific slot. The zero value is AnyPosition.
type PositionFilter struct {
	kind positionKind
	pos  profile.Position
}

// AnyPosition applies no position constraint.
func AnyPosition() PositionFilter { return PositionFilter{kind: positionAny} }

// ExcludeOwn drops candidates playing the requester's own position.
func ExcludeOwn() PositionFilter { return PositionFilter{kind: positionExcludeOwn} }

// Specific keeps only candidates playing p.
func Specific(p profile.Position) PositionFilter {
	return PositionFilter{kind: positionSpecific, pos: p}
}

// ExcludesOwn reports whether the own-position exclusion is active.
func (f PositionFilter) ExcludesOwn() bool { return f.kind == positionExcludeOwn }

// Specific returns the chosen slot, if any.
func (f PositionFilter) Specific() (profile.Position, bool) {
	return f.pos, f.kind == positionSpecific
}

// ToggleExclude flips the own-position exclusion. A specific choice is
// replaced by the exclusion.
func (f PositionFilter) ToggleExclude() PositionFilter {
	if f.kind == positionExcludeOwn {
		return AnyPosition()
	}
	return ExcludeOwn()
}

func (f PositionFilter) String() string {
	switch f.kind {
	case positionExcludeOwn:
		return "exclude_own"
	case positionSpecific:
		return "specific:" + f.pos.String()
	default:
		return "any"
	}
}

// Options are the search choices collected from the requester.
type Options struct {
	Mode          profile.Mode
	Position      PositionFilter
	OnlyFullParty bool
	// MmrDelta is the half-width of the mmr window; zero disables it.
	MmrDelta int
}

// Builder produces candidate filters.
type Builder struct {
	limit int
}

// NewBuilder returns a Builder capping results at limit, clamped to [1, MaxResults].
func NewBuilder(limit int) Builder {
	if limit <= 0 || limit > MaxResults {
		limit = MaxResults
	}
	return Builder{limit: limit}
}

// Build derives the filter for requesterID. requester may be nil when the user
// has no profile yet. It fails with profile.ErrMmrUnavailable when an mmr
// window is asked for and the requester has no mmr.
func (b Builder) Build(requesterID int64, requester *profile.Profile, opts Options) (profile.Filter, error) {
	limit := b.limit
	if limit == 0 {
		limit = MaxResults
	}
	f := profile.Filter{
		ExcludeUserID: requesterID,
		OnlineOnly:    true,
		Mode:          opts.Mode,
		OnlyFullParty: opts.OnlyFullParty,
		Limit:         limit,
	}

	if pos, ok := opts.Position.Specific(); ok {
		f.Position = &profile.PositionPredicate{Op: profile.Equal, Value: pos}
	} else if opts.Position.ExcludesOwn() && requester != nil && requester.Position.Valid() {
		f.Position = &profile.PositionPredicate{Op: profile.NotEqual, Value: requester.Position}
	}

	if opts.MmrDelta > 0 {
		if requester == nil || requester.Mmr == nil {
			return profile.Filter{}, profile.ErrMmrUnavailable
		}
		mmr := *requester.Mmr
		f.Mmr = &profile.MmrRange{Min: max(0, mmr-opts.MmrDelta), Max: mmr + opts.MmrDelta}
	}
	return f, nil
}
