package profile

import (
	"context"
	"strings"
)

// Store persists profiles. Get returns (nil, nil) when the user has no record.
// Upsert creates the record on first write and otherwise updates only the
// fields set in the patch.
type Store interface {
	Get(ctx context.Context, userID int64) (*Profile, error)
	Upsert(ctx context.Context, userID int64, patch Patch) error
	List(ctx context.Context, f Filter) ([]Summary, error)
	All(ctx context.Context) ([]Profile, error)
	Ping(ctx context.Context) error
}

// Comparison selects how a position predicate matches.
type Comparison uint8

const (
	// Equal keeps rows whose position equals the value.
	Equal Comparison = iota + 1
	// NotEqual keeps rows whose position differs from the value or is unset.
	NotEqual
)

// PositionPredicate narrows candidates by role slot.
type PositionPredicate struct {
	Op    Comparison
	Value Position
}

// MmrRange is an inclusive skill rating window.
type MmrRange struct {
	Min int
	Max int
}

// Filter is the predicate set of a candidate search. Zero fields add no
// constraint, except Limit which must be positive.
type Filter struct {
	ExcludeUserID int64
	OnlineOnly    bool
	Position      *PositionPredicate
	// Mode matches case-insensitively.
	Mode          Mode
	OnlyFullParty bool
	Mmr           *MmrRange
	Limit         int
}

// Match evaluates f against a single profile. Stores that cannot push the
// predicates down may use it; it mirrors the SQL semantics.
func (f Filter) Match(p Profile) bool {
	if f.ExcludeUserID != 0 && p.UserID == f.ExcludeUserID {
		return false
	}
	if f.OnlineOnly && !p.Online {
		return false
	}
	if f.Position != nil {
		switch f.Position.Op {
		case Equal:
			if p.Position != f.Position.Value {
				return false
			}
		case NotEqual:
			if p.Position == f.Position.Value {
				return false
			}
		}
	}
	if f.Mode != "" && !strings.EqualFold(string(p.Mode), string(f.Mode)) {
		return false
	}
	if f.OnlyFullParty && !p.FullParty {
		return false
	}
	if f.Mmr != nil {
		if p.Mmr == nil || *p.Mmr < f.Mmr.Min || *p.Mmr > f.Mmr.Max {
			return false
		}
	}
	return true
}
