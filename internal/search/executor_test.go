package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coredatabase "github.com/m3rciful/partyfinder/core/database"
	"github.com/m3rciful/partyfinder/internal/profile"
	"github.com/m3rciful/partyfinder/internal/profile/sqlstore"
	"github.com/m3rciful/partyfinder/migrations"
)

const (
	requester = int64(100)
	u1        = int64(1)
	u2        = int64(2)
	u3        = int64(3)
)

func newPool(t *testing.T) profile.Store {
	t.Helper()
	cfg := coredatabase.Config{Driver: coredatabase.DriverSQLite, Path: ":memory:"}
	db, err := coredatabase.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, coredatabase.Migrate(db, cfg, migrations.FS))

	store := sqlstore.New(db)
	ctx := context.Background()
	put := func(id int64, p profile.Patch) {
		require.NoError(t, store.Upsert(ctx, id, p))
	}
	put(requester, profile.Patch{Position: ptr(profile.Mid), Mmr: ptr(3000), Online: ptr(true)})
	put(u1, profile.Patch{Position: ptr(profile.Carry), Mode: ptr(profile.Ranked), Mmr: ptr(3100), Online: ptr(true), FullParty: ptr(false)})
	put(u2, profile.Patch{Position: ptr(profile.Mid), Mode: ptr(profile.Ranked), Mmr: ptr(3050), Online: ptr(true)})
	put(u3, profile.Patch{Position: ptr(profile.Offlane), Mode: ptr(profile.Ranked), Online: ptr(false)})
	return store
}

func resultIDs(r Result) []int64 {
	out := []int64{}
	for _, c := range r.Candidates {
		out = append(out, c.UserID)
	}
	return out
}

func TestRunExcludesSamePositionAndOffline(t *testing.T) {
	ex := NewExecutor(newPool(t), MaxResults)

	res, err := ex.Run(context.Background(), requester, Options{Mode: profile.Ranked, Position: ExcludeOwn()})
	require.NoError(t, err)
	assert.Equal(t, []int64{u1}, resultIDs(res))
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "tg://user?id=1", res.Candidates[0].Contact)
}

func TestRunSpecificPositionOverridesExclusion(t *testing.T) {
	ex := NewExecutor(newPool(t), MaxResults)

	res, err := ex.Run(context.Background(), requester, Options{Mode: profile.Ranked, Position: Specific(profile.Mid)})
	require.NoError(t, err)
	assert.Equal(t, []int64{u2}, resultIDs(res))
}

func TestRunNeverReturnsRequesterOrOffline(t *testing.T) {
	ex := NewExecutor(newPool(t), MaxResults)

	for _, opts := range []Options{
		{},
		{Position: Specific(profile.Mid)},
		{Position: Specific(profile.Offlane)},
		{MmrDelta: 5000},
	} {
		res, err := ex.Run(context.Background(), requester, opts)
		require.NoError(t, err)
		for _, c := range res.Candidates {
			assert.NotEqual(t, requester, c.UserID)
			assert.NotEqual(t, u3, c.UserID)
		}
	}
}

func TestRunMmrWindow(t *testing.T) {
	ex := NewExecutor(newPool(t), MaxResults)

	res, err := ex.Run(context.Background(), requester, Options{MmrDelta: 75})
	require.NoError(t, err)
	assert.Equal(t, []int64{u2}, resultIDs(res))

	res, err = ex.Run(context.Background(), requester, Options{MmrDelta: 100})
	require.NoError(t, err)
	assert.Equal(t, []int64{u1, u2}, resultIDs(res))
}

func TestRunFullPartyOnly(t *testing.T) {
	ex := NewExecutor(newPool(t), MaxResults)

	res, err := ex.Run(context.Background(), requester, Options{OnlyFullParty: true})
	require.NoError(t, err)
	assert.True(t, res.Empty())
}

func TestRunMmrUnavailableIsNotEmpty(t *testing.T) {
	store := newPool(t)
	ex := NewExecutor(store, MaxResults)

	res, err := ex.Run(context.Background(), u3, Options{MmrDelta: 250})
	require.ErrorIs(t, err, profile.ErrMmrUnavailable)
	assert.True(t, res.Empty())

	res, err = ex.Run(context.Background(), u3, Options{Mode: profile.Turbo})
	require.NoError(t, err)
	assert.True(t, res.Empty())
}

type failingStore struct{ profile.Store }

func (failingStore) Get(context.Context, int64) (*profile.Profile, error) {
	return nil, &profile.StoreError{Op: "get", Err: errors.New("connection reset")}
}

func TestRunPropagatesStoreError(t *testing.T) {
	ex := NewExecutor(failingStore{}, MaxResults)

	_, err := ex.Run(context.Background(), requester, Options{})
	assert.True(t, profile.IsStoreError(err))
	assert.False(t, errors.Is(err, profile.ErrMmrUnavailable))
}
