package search

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/partyfinder/internal/profile"
)

func ptr[T any](v T) *T { return &v }

func TestBuildBaseFilter(t *testing.T) {
	f, err := NewBuilder(0).Build(7, nil, Options{})
	require.NoError(t, err)

	want := profile.Filter{ExcludeUserID: 7, OnlineOnly: true, Limit: MaxResults}
	if diff := cmp.Diff(want, f); diff != "" {
		t.Fatalf("filter mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildExcludesOwnPosition(t *testing.T) {
	req := &profile.Profile{UserID: 7, Position: profile.Mid}
	f, err := NewBuilder(30).Build(7, req, Options{Position: ExcludeOwn(), Mode: profile.Ranked})
	require.NoError(t, err)

	want := profile.Filter{
		ExcludeUserID: 7,
		OnlineOnly:    true,
		Position:      &profile.PositionPredicate{Op: profile.NotEqual, Value: profile.Mid},
		Mode:          profile.Ranked,
		Limit:         30,
	}
	if diff := cmp.Diff(want, f); diff != "" {
		t.Fatalf("filter mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildExclusionNeedsKnownPosition(t *testing.T) {
	f, err := NewBuilder(30).Build(7, &profile.Profile{UserID: 7}, Options{Position: ExcludeOwn()})
	require.NoError(t, err)
	assert.Nil(t, f.Position)
}

func TestSpecificPositionOverridesExclusion(t *testing.T) {
	req := &profile.Profile{UserID: 7, Position: profile.Mid}

	f, err := NewBuilder(30).Build(7, req, Options{Position: Specific(profile.Mid)})
	require.NoError(t, err)
	if diff := cmp.Diff(&profile.PositionPredicate{Op: profile.Equal, Value: profile.Mid}, f.Position); diff != "" {
		t.Fatalf("position predicate mismatch (-want +got):\n%s", diff)
	}
}

func TestToggleExclude(t *testing.T) {
	start := ExcludeOwn()
	once := start.ToggleExclude()
	assert.False(t, once.ExcludesOwn())
	assert.Equal(t, start, once.ToggleExclude())

	_, ok := Specific(profile.Offlane).ToggleExclude().Specific()
	assert.False(t, ok)
	assert.True(t, Specific(profile.Offlane).ToggleExclude().ExcludesOwn())
}

func TestMmrWindow(t *testing.T) {
	cases := []struct {
		mmr, delta int
		want       profile.MmrRange
	}{
		{3000, 250, profile.MmrRange{Min: 2750, Max: 3250}},
		{100, 250, profile.MmrRange{Min: 0, Max: 350}},
		{0, 100, profile.MmrRange{Min: 0, Max: 100}},
	}
	for _, tc := range cases {
		req := &profile.Profile{UserID: 1, Mmr: ptr(tc.mmr)}
		f, err := NewBuilder(30).Build(1, req, Options{MmrDelta: tc.delta})
		require.NoError(t, err)
		require.NotNil(t, f.Mmr)
		assert.Equal(t, tc.want, *f.Mmr)
	}
}

func TestMmrUnavailable(t *testing.T) {
	_, err := NewBuilder(30).Build(1, &profile.Profile{UserID: 1}, Options{MmrDelta: 100})
	assert.ErrorIs(t, err, profile.ErrMmrUnavailable)

	_, err = NewBuilder(30).Build(1, nil, Options{MmrDelta: 100})
	assert.ErrorIs(t, err, profile.ErrMmrUnavailable)
}

func TestFullPartyFilter(t *testing.T) {
	on, err := NewBuilder(30).Build(1, nil, Options{OnlyFullParty: true})
	require.NoError(t, err)
	assert.True(t, on.OnlyFullParty)

	off, err := NewBuilder(30).Build(1, nil, Options{})
	require.NoError(t, err)
	assert.False(t, off.OnlyFullParty)
}

func TestNewBuilderClampsLimit(t *testing.T) {
	assert.Equal(t, MaxResults, NewBuilder(500).limit)
	assert.Equal(t, 5, NewBuilder(5).limit)
	assert.Equal(t, MaxResults, NewBuilder(-1).limit)
}

func TestContactURL(t *testing.T) {
	assert.Equal(t, "https://t.me/anna", ContactURL(profile.Summary{UserID: 1, Username: "anna"}))
	assert.Equal(t, "https://t.me/anna", ContactURL(profile.Summary{UserID: 1, Username: "@anna"}))
	assert.Equal(t, "tg://user?id=42", ContactURL(profile.Summary{UserID: 42}))
	assert.Equal(t, "ID 42", DisplayName(profile.Summary{UserID: 42}))
}
