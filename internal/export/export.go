// Package export renders the profile table as plain text lines for operators.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/m3rciful/partyfinder/core/logger"
	"github.com/m3rciful/partyfinder/internal/profile"
)

// ChunkLimit is the maximum number of characters per outbound message.
const ChunkLimit = 4000

// EmptyText is sent when there is nothing to export.
const EmptyText = "Profile base is empty."

var dumpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "partyfinder",
	Subsystem: "export",
	Name:      "dumps_total",
	Help:      "Profile dump requests by outcome.",
}, []string{"outcome"})

// Exporter serves profile dumps to the configured admin.
type Exporter struct {
	store   profile.Store
	adminID int64
}

// New returns an Exporter. An adminID of zero refuses every caller.
func New(store profile.Store, adminID int64) *Exporter {
	return &Exporter{store: store, adminID: adminID}
}

// Authorize returns profile.ErrUnauthorized unless userID is the admin.
func (x *Exporter) Authorize(userID int64) error {
	if x.adminID == 0 || userID != x.adminID {
		return profile.ErrUnauthorized
	}
	return nil
}

// Dump returns every profile as text chunks of at most ChunkLimit characters.
// An empty table yields no chunks.
func (x *Exporter) Dump(ctx context.Context, userID int64) ([]string, error) {
	start := time.Now()
	if err := x.Authorize(userID); err != nil {
		x.finish(ctx, userID, "refused", 0, 0, start, err)
		return nil, err
	}
	lines, err := x.Lines(ctx)
	if err != nil {
		x.finish(ctx, userID, "fail", 0, 0, start, err)
		return nil, err
	}
	if len(lines) == 0 {
		x.finish(ctx, userID, "empty", 0, 0, start, nil)
		return nil, nil
	}
	chunks := Chunks(strings.Join(lines, "\n"), ChunkLimit)
	x.finish(ctx, userID, "ok", len(lines), len(chunks), start, nil)
	return chunks, nil
}

// Lines loads all profiles and formats one line each.
func (x *Exporter) Lines(ctx context.Context) ([]string, error) {
	all, err := x.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	lines := make([]string, 0, len(all))
	for _, p := range all {
		lines = append(lines, Line(p))
	}
	return lines, nil
}

func (x *Exporter) finish(ctx context.Context, userID int64, outcome string, profiles, chunks int, start time.Time, err error) {
	dumpsTotal.WithLabelValues(outcome).Inc()
	level := slog.LevelInfo
	attrs := []slog.Attr{
		slog.Int64("user_id", userID),
		slog.String("outcome", outcome),
		slog.Int("profiles", profiles),
		slog.Int("chunks", chunks),
		slog.Duration("duration", logger.Took(start)),
	}
	switch {
	case outcome == "refused":
		level = slog.LevelWarn
	case err != nil:
		level = slog.LevelError
		attrs = append(attrs, slog.String("err", err.Error()))
	}
	logger.LogEvent(ctx, logger.Export, level, "export.dump", attrs...)
}

// Line formats p as "uid | pos=.. | mode=.. | mmr=.. | username=.. | online=1 | full=0".
func Line(p profile.Profile) string {
	pos := "—"
	if p.Position.Valid() {
		pos = strconv.Itoa(int(p.Position))
	}
	mode := "—"
	if p.Mode != "" {
		mode = string(p.Mode)
	}
	mmr := "—"
	if p.Mmr != nil {
		mmr = strconv.Itoa(*p.Mmr)
	}
	username := "—"
	if p.Username != "" {
		username = "@" + p.Username
	}
	return fmt.Sprintf("%d | pos=%s | mode=%s | mmr=%s | username=%s | online=%s | full=%s",
		p.UserID, pos, mode, mmr, username, flag(p.Online), flag(p.FullParty))
}

func flag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// Chunks splits text into segments of at most limit characters.
func Chunks(text string, limit int) []string {
	if text == "" {
		return nil
	}
	if limit <= 0 {
		return []string{text}
	}
	runes := []rune(text)
	out := make([]string, 0, len(runes)/limit+1)
	for len(runes) > limit {
		out = append(out, string(runes[:limit]))
		runes = runes[limit:]
	}
	return append(out, string(runes))
}
