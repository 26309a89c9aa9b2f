// Package sqlstore implements profile.Store on top of sqlx for the postgres,
// sqlite3 and mysql drivers.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/partyfinder/core/logger"
	"github.com/m3rciful/partyfinder/internal/profile"
)

const summaryColumns = "user_id, position, mode, mmr, username, full_party"

// Store is a profile.Store backed by the profiles table.
type Store struct {
	db *sqlx.DB
}

var _ profile.Store = (*Store)(nil)

// New wraps an open database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type row struct {
	UserID    int64          `db:"user_id"`
	Position  sql.NullInt64  `db:"position"`
	Mode      sql.NullString `db:"mode"`
	Mmr       sql.NullInt64  `db:"mmr"`
	Username  sql.NullString `db:"username"`
	Online    bool           `db:"online"`
	FullParty bool           `db:"full_party"`
}

func (r row) profile() profile.Profile {
	p := profile.Profile{
		UserID:    r.UserID,
		Position:  profile.Position(r.Position.Int64),
		Mode:      profile.Mode(r.Mode.String),
		Username:  r.Username.String,
		Online:    r.Online,
		FullParty: r.FullParty,
	}
	if r.Mmr.Valid {
		v := int(r.Mmr.Int64)
		p.Mmr = &v
	}
	return p
}

func (r row) summary() profile.Summary {
	p := r.profile()
	return profile.Summary{
		UserID:    p.UserID,
		Position:  p.Position,
		Mode:      p.Mode,
		Mmr:       p.Mmr,
		Username:  p.Username,
		FullParty: p.FullParty,
	}
}

// Get returns the profile of userID or (nil, nil) when there is none.
func (s *Store) Get(ctx context.Context, userID int64) (*profile.Profile, error) {
	var r row
	q := s.db.Rebind(`SELECT user_id, position, mode, mmr, username, online, full_party FROM profiles WHERE user_id = ?`)
	if err := s.db.GetContext(ctx, &r, q, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, s.fail(ctx, "get", err)
	}
	p := r.profile()
	return &p, nil
}

// Upsert inserts the record on first write and otherwise updates the patched columns only.
func (s *Store) Upsert(ctx context.Context, userID int64, patch profile.Patch) error {
	cols, args := patchColumns(patch)
	q := s.db.Rebind(upsertQuery(s.db.DriverName(), cols))
	start := time.Now()
	if _, err := s.db.ExecContext(ctx, q, append([]any{userID}, args...)...); err != nil {
		return s.fail(ctx, "upsert", err)
	}
	if logger.ShouldSampleDebug() {
		logger.DB.LogAttrs(ctx, slog.LevelDebug, "profile upserted",
			slog.String("event", "store.upsert"),
			slog.Int64("user_id", userID),
			slog.String("fields", strings.Join(cols, ",")),
			slog.Duration("duration", logger.Took(start)),
		)
	}
	return nil
}

// List returns the summaries matching f ordered by user id.
func (s *Store) List(ctx context.Context, f profile.Filter) ([]profile.Summary, error) {
	where, args := whereClause(f)
	q := "SELECT " + summaryColumns + " FROM profiles"
	if where != "" {
		q += " WHERE " + where
	}
	q += " ORDER BY user_id"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	var rows []row
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(q), args...); err != nil {
		return nil, s.fail(ctx, "list", err)
	}
	out := make([]profile.Summary, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.summary())
	}
	return out, nil
}

// All returns every profile ordered by user id.
func (s *Store) All(ctx context.Context) ([]profile.Profile, error) {
	var rows []row
	q := `SELECT user_id, position, mode, mmr, username, online, full_party FROM profiles ORDER BY user_id`
	if err := s.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, s.fail(ctx, "all", err)
	}
	out := make([]profile.Profile, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.profile())
	}
	return out, nil
}

// Ping checks database reachability.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &profile.StoreError{Op: "ping", Err: err}
	}
	return nil
}

func (s *Store) fail(ctx context.Context, op string, err error) error {
	logger.DB.LogAttrs(ctx, slog.LevelError, "profile store failed",
		slog.String("event", "store."+op),
		slog.String("driver", s.db.DriverName()),
		slog.String("err", err.Error()),
	)
	return &profile.StoreError{Op: op, Err: err}
}

type column struct {
	name  string
	value any
}

func patchColumns(p profile.Patch) ([]string, []any) {
	var cs []column
	if p.Position != nil {
		cs = append(cs, column{"position", nullable(int(*p.Position), p.Position.Valid())})
	}
	if p.Mode != nil {
		cs = append(cs, column{"mode", nullable(string(*p.Mode), *p.Mode != "")})
	}
	if p.Mmr != nil {
		cs = append(cs, column{"mmr", *p.Mmr})
	}
	if p.Username != nil {
		cs = append(cs, column{"username", nullable(*p.Username, *p.Username != "")})
	}
	if p.Online != nil {
		cs = append(cs, column{"online", *p.Online})
	}
	if p.FullParty != nil {
		cs = append(cs, column{"full_party", *p.FullParty})
	}
	names := make([]string, 0, len(cs))
	args := make([]any, 0, len(cs))
	for _, c := range cs {
		names = append(names, c.name)
		args = append(args, c.value)
	}
	return names, args
}

func nullable(v any, ok bool) any {
	if !ok {
		return nil
	}
	return v
}

// upsertQuery renders an insert-or-update statement in "?" bindvars. The first
// bind is the user id, followed by one value per column.
func upsertQuery(driver string, cols []string) string {
	all := append([]string{"user_id"}, cols...)
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(all)), ", ")
	insert := fmt.Sprintf("INSERT INTO profiles (%s) VALUES (%s)", strings.Join(all, ", "), marks)

	sets := make([]string, 0, len(cols))
	switch driver {
	case "mysql":
		if len(cols) == 0 {
			return strings.Replace(insert, "INSERT", "INSERT IGNORE", 1)
		}
		for _, c := range cols {
			sets = append(sets, fmt.Sprintf("%s = VALUES(%s)", c, c))
		}
		return insert + " ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
	default:
		if len(cols) == 0 {
			return insert + " ON CONFLICT (user_id) DO NOTHING"
		}
		for _, c := range cols {
			sets = append(sets, fmt.Sprintf("%s = excluded.%s", c, c))
		}
		return insert + " ON CONFLICT (user_id) DO UPDATE SET " + strings.Join(sets, ", ")
	}
}

// whereClause renders f as a conjunction in "?" bindvars.
func whereClause(f profile.Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.ExcludeUserID != 0 {
		conds = append(conds, "user_id <> ?")
		args = append(args, f.ExcludeUserID)
	}
	if f.OnlineOnly {
		conds = append(conds, "online = ?")
		args = append(args, true)
	}
	if pp := f.Position; pp != nil {
		switch pp.Op {
		case profile.Equal:
			conds = append(conds, "position = ?")
			args = append(args, int(pp.Value))
		case profile.NotEqual:
			conds = append(conds, "(position IS NULL OR position <> ?)")
			args = append(args, int(pp.Value))
		}
	}
	if f.Mode != "" {
		conds = append(conds, "LOWER(mode) = LOWER(?)")
		args = append(args, string(f.Mode))
	}
	if f.OnlyFullParty {
		conds = append(conds, "full_party = ?")
		args = append(args, true)
	}
	if f.Mmr != nil {
		conds = append(conds, "mmr BETWEEN ? AND ?")
		args = append(args, f.Mmr.Min, f.Mmr.Max)
	}
	return strings.Join(conds, " AND "), args
}
