package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/partyfinder/core/logger"
	"github.com/m3rciful/partyfinder/internal/profile"
)

// Candidate is one search hit with a ready-to-use contact link.
type Candidate struct {
	profile.Summary
	Contact string
}

// Result of one search. An empty Candidates slice is a normal outcome.
type Result struct {
	ID         string
	Candidates []Candidate
}

// Empty reports whether nobody matched.
func (r Result) Empty() bool { return len(r.Candidates) == 0 }

// Executor runs searches against a profile store.
type Executor struct {
	store   profile.Store
	builder Builder
}

// NewExecutor builds an Executor returning at most limit candidates.
func NewExecutor(store profile.Store, limit int) *Executor {
	return &Executor{store: store, builder: NewBuilder(limit)}
}

// Run loads the requester's profile, builds the filter, and lists candidates.
// Errors are profile.ErrMmrUnavailable or a *profile.StoreError.
func (e *Executor) Run(ctx context.Context, requesterID int64, opts Options) (Result, error) {
	id := uuid.NewString()
	ctx = logger.WithSearchID(ctx, id)
	start := time.Now()

	requester, err := e.store.Get(ctx, requesterID)
	if err != nil {
		return e.finish(ctx, Result{ID: id}, opts, start, err)
	}

	f, err := e.builder.Build(requesterID, requester, opts)
	if err != nil {
		return e.finish(ctx, Result{ID: id}, opts, start, err)
	}

	queryStart := time.Now()
	rows, err := e.store.List(ctx, f)
	searchLatency.Observe(time.Since(queryStart).Seconds())
	if err != nil {
		return e.finish(ctx, Result{ID: id}, opts, start, fmt.Errorf("list candidates: %w", err))
	}

	res := Result{ID: id, Candidates: make([]Candidate, 0, len(rows))}
	for _, r := range rows {
		res.Candidates = append(res.Candidates, Candidate{Summary: r, Contact: ContactURL(r)})
	}
	return e.finish(ctx, res, opts, start, nil)
}

func (e *Executor) finish(ctx context.Context, res Result, opts Options, start time.Time, err error) (Result, error) {
	outcome := "ok"
	level := slog.LevelInfo
	switch {
	case errors.Is(err, profile.ErrMmrUnavailable):
		outcome = "no_mmr"
	case err != nil:
		outcome = "fail"
		level = slog.LevelError
	case res.Empty():
		outcome = "empty"
	}
	searchesTotal.WithLabelValues(outcome).Inc()
	if err == nil {
		searchResults.Observe(float64(len(res.Candidates)))
	}

	attrs := []slog.Attr{
		slog.String("event", "search.run"),
		slog.String("outcome", outcome),
		slog.String("search_mode", string(opts.Mode)),
		slog.String("position", opts.Position.String()),
		slog.Bool("only_full", opts.OnlyFullParty),
		slog.Int("delta", opts.MmrDelta),
		slog.Int("results", len(res.Candidates)),
		slog.Duration("duration", logger.Took(start)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("err", err.Error()))
	}
	logger.Search.LogAttrs(ctx, level, "search finished", attrs...)
	return res, err
}
