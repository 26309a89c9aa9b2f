package profile

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePosition(t *testing.T) {
	for i := 1; i <= 5; i++ {
		p, err := ParsePosition(fmt.Sprint(i))
		require.NoError(t, err)
		assert.Equal(t, Position(i), p)
	}
	for _, in := range []string{"0", "6", "x", "", "12", "+1", "-3"} {
		_, err := ParsePosition(in)
		assert.ErrorIs(t, err, ErrInvalidInput, in)
	}
}

func TestParseMmr(t *testing.T) {
	for _, in := range []string{"0", "15000", " 4200 "} {
		_, err := ParseMmr(in)
		assert.NoError(t, err, in)
	}
	for _, in := range []string{"-1", "15001", "abc", "", "1e3"} {
		_, err := ParseMmr(in)
		assert.ErrorIs(t, err, ErrInvalidInput, in)
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("all pick")
	require.NoError(t, err)
	assert.Equal(t, AllPick, m)

	_, err = ParseMode("Ability Draft")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPositionLabel(t *testing.T) {
	assert.Equal(t, "4 Soft Support", SoftSupport.Label())
	assert.Equal(t, "—", Position(0).Label())
}

func TestProfileApply(t *testing.T) {
	mmr := 3000
	pos := Mid
	p := Profile{UserID: 1, Mode: Turbo}
	p.Apply(Patch{Position: &pos, Mmr: &mmr})
	mmr = 1

	assert.Equal(t, Mid, p.Position)
	assert.Equal(t, Turbo, p.Mode)
	require.NotNil(t, p.Mmr)
	assert.Equal(t, 3000, *p.Mmr)
	assert.True(t, Patch{}.Empty())
}

func TestFilterMatch(t *testing.T) {
	mmr := func(v int) *int { return &v }
	base := Profile{UserID: 2, Position: Carry, Mode: Turbo, Mmr: mmr(3000), Online: true, FullParty: true}

	cases := []struct {
		name   string
		filter Filter
		p      Profile
		want   bool
	}{
		{"self excluded", Filter{ExcludeUserID: 2}, base, false},
		{"offline dropped", Filter{OnlineOnly: true}, Profile{UserID: 3}, false},
		{"not equal keeps unset", Filter{Position: &PositionPredicate{Op: NotEqual, Value: Carry}}, Profile{UserID: 3}, true},
		{"not equal drops same", Filter{Position: &PositionPredicate{Op: NotEqual, Value: Carry}}, base, false},
		{"equal", Filter{Position: &PositionPredicate{Op: Equal, Value: Carry}}, base, true},
		{"mode case-insensitive", Filter{Mode: "turbo"}, base, true},
		{"full party", Filter{OnlyFullParty: true}, Profile{UserID: 3}, false},
		{"mmr inclusive", Filter{Mmr: &MmrRange{Min: 2500, Max: 3000}}, base, true},
		{"mmr unset dropped", Filter{Mmr: &MmrRange{Min: 0, Max: 9000}}, Profile{UserID: 3}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.filter.Match(tc.p))
		})
	}
}

func TestStoreErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("save: %w", &StoreError{Op: "upsert", Err: cause})

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsStoreError(err))
	assert.Equal(t, "save: profile store: upsert: disk full", err.Error())
}
