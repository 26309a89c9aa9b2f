package export

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coredatabase "github.com/m3rciful/partyfinder/core/database"
	"github.com/m3rciful/partyfinder/internal/profile"
	"github.com/m3rciful/partyfinder/internal/profile/sqlstore"
	"github.com/m3rciful/partyfinder/migrations"
)

const admin = int64(42)

func ptr[T any](v T) *T { return &v }

func newStore(t *testing.T) profile.Store {
	t.Helper()
	cfg := coredatabase.Config{Driver: coredatabase.DriverSQLite, Path: ":memory:"}
	db, err := coredatabase.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, coredatabase.Migrate(db, cfg, migrations.FS))
	return sqlstore.New(db)
}

func TestLine(t *testing.T) {
	full := profile.Profile{
		UserID: 7, Position: profile.Mid, Mode: profile.AllPick, Mmr: ptr(4200),
		Username: "anna", Online: true,
	}
	assert.Equal(t, "7 | pos=2 | mode=All Pick | mmr=4200 | username=@anna | online=1 | full=0", Line(full))

	empty := profile.Profile{UserID: 8, FullParty: true}
	assert.Equal(t, "8 | pos=— | mode=— | mmr=— | username=— | online=0 | full=1", Line(empty))
}

func TestChunks(t *testing.T) {
	assert.Nil(t, Chunks("", 10))
	assert.Equal(t, []string{"abc"}, Chunks("abc", 10))
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, Chunks("abcdefghij", 4))

	text := strings.Repeat("я", 9000)
	chunks := Chunks(text, ChunkLimit)
	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), ChunkLimit)
	}
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestAuthorize(t *testing.T) {
	assert.NoError(t, New(nil, admin).Authorize(admin))
	assert.ErrorIs(t, New(nil, admin).Authorize(admin+1), profile.ErrUnauthorized)
	assert.ErrorIs(t, New(nil, 0).Authorize(0), profile.ErrUnauthorized)
	assert.ErrorIs(t, New(nil, 0).Authorize(admin), profile.ErrUnauthorized)
}

func TestDump(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	x := New(store, admin)

	chunks, err := x.Dump(ctx, admin)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	_, err = x.Dump(ctx, 1)
	assert.ErrorIs(t, err, profile.ErrUnauthorized)

	require.NoError(t, store.Upsert(ctx, 2, profile.Patch{Position: ptr(profile.Carry), Online: ptr(true)}))
	require.NoError(t, store.Upsert(ctx, 1, profile.Patch{Username: ptr("bob")}))

	chunks, err = x.Dump(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"1 | pos=— | mode=— | mmr=— | username=@bob | online=0 | full=0\n" +
			"2 | pos=1 | mode=— | mmr=— | username=— | online=1 | full=0",
	}, chunks)
}

func TestDumpSplitsLargeTables(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	for id := int64(1); id <= 120; id++ {
		require.NoError(t, store.Upsert(ctx, id, profile.Patch{Username: ptr(strings.Repeat("u", 32)), Mode: ptr(profile.SingleDraft)}))
	}

	chunks, err := New(store, admin).Dump(ctx, admin)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), ChunkLimit)
	}
	assert.True(t, strings.HasPrefix(chunks[0], "1 | pos=—"))
}

type brokenStore struct{ profile.Store }

func (brokenStore) All(context.Context) ([]profile.Profile, error) {
	return nil, &profile.StoreError{Op: "all", Err: errors.New("disk I/O error")}
}

func TestDumpStoreFailure(t *testing.T) {
	_, err := New(brokenStore{}, admin).Dump(context.Background(), admin)
	require.Error(t, err)
	assert.True(t, profile.IsStoreError(err))
}
