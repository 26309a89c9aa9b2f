// Package profile defines matchmaking profiles and the store contract used to
// persist and query them.
package profile

import (
	"fmt"
	"strconv"
	"strings"
)

// Position is a Dota role slot from 1 (Carry) to 5 (Hard Support). Zero means unset.
type Position int

const (
	Carry Position = iota + 1
	Mid
	Offlane
	SoftSupport
	HardSupport
)

// Positions lists every valid position in slot order.
var Positions = []Position{Carry, Mid, Offlane, SoftSupport, HardSupport}

var positionNames = map[Position]string{
	Carry:       "Carry",
	Mid:         "Mid",
	Offlane:     "Offlane",
	SoftSupport: "Soft Support",
	HardSupport: "Hard Support",
}

// Valid reports whether p is one of the five role slots.
func (p Position) Valid() bool {
	return p >= Carry && p <= HardSupport
}

func (p Position) String() string {
	if name, ok := positionNames[p]; ok {
		return name
	}
	return ""
}

// Label renders the position as "3 Offlane", or "—" when unset.
func (p Position) Label() string {
	if !p.Valid() {
		return "—"
	}
	return fmt.Sprintf("%d %s", int(p), p.String())
}

// ParsePosition accepts a single digit 1..5.
func ParsePosition(s string) (Position, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil || len(s) != 1 {
		return 0, fmt.Errorf("position %q: %w", s, ErrInvalidInput)
	}
	p := Position(n)
	if !p.Valid() {
		return 0, fmt.Errorf("position %q: %w", s, ErrInvalidInput)
	}
	return p, nil
}

// Mode is a game mode name as shown to users. Empty means unset.
type Mode string

const (
	Turbo       Mode = "Turbo"
	AllPick     Mode = "All Pick"
	SingleDraft Mode = "Single Draft"
	Ranked      Mode = "Ranked"
)

// Modes lists the selectable game modes in menu order.
var Modes = []Mode{Turbo, AllPick, SingleDraft, Ranked}

// ParseMode matches s against the known modes case-insensitively.
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(s)
	for _, m := range Modes {
		if strings.EqualFold(string(m), s) {
			return m, nil
		}
	}
	return "", fmt.Errorf("mode %q: %w", s, ErrInvalidInput)
}

const (
	// MinMmr and MaxMmr bound the accepted skill rating.
	MinMmr = 0
	MaxMmr = 15000
)

// ParseMmr accepts an integer within [MinMmr, MaxMmr].
func ParseMmr(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < MinMmr || n > MaxMmr {
		return 0, fmt.Errorf("mmr %q: %w", s, ErrInvalidInput)
	}
	return n, nil
}

// Profile is the persisted record of one user.
type Profile struct {
	UserID    int64
	Position  Position
	Mode      Mode
	Mmr       *int
	Username  string
	Online    bool
	FullParty bool
}

// HasMmr reports whether the profile carries a skill rating.
func (p Profile) HasMmr() bool {
	return p.Mmr != nil
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Position  *Position
	Mode      *Mode
	Mmr       *int
	Username  *string
	Online    *bool
	FullParty *bool
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Position == nil && p.Mode == nil && p.Mmr == nil &&
		p.Username == nil && p.Online == nil && p.FullParty == nil
}

// Apply copies the set fields of patch onto p.
func (p *Profile) Apply(patch Patch) {
	if patch.Position != nil {
		p.Position = *patch.Position
	}
	if patch.Mode != nil {
		p.Mode = *patch.Mode
	}
	if patch.Mmr != nil {
		v := *patch.Mmr
		p.Mmr = &v
	}
	if patch.Username != nil {
		p.Username = *patch.Username
	}
	if patch.Online != nil {
		p.Online = *patch.Online
	}
	if patch.FullParty != nil {
		p.FullParty = *patch.FullParty
	}
}

// Summary is the public part of a profile returned by candidate searches.
type Summary struct {
	UserID    int64
	Position  Position
	Mode      Mode
	Mmr       *int
	Username  string
	FullParty bool
}
