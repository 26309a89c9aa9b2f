package logger

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLine(t *testing.T, format logFormat, emit func(*slog.Logger)) string {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelDebug,
		writer:   aw,
		format:   format,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	emit(slog.New(handler))
	require.NoError(t, aw.Flush())
	require.NoError(t, aw.Close())
	line := strings.TrimSpace(buf.String())
	require.NotEmpty(t, line, "expected log line")
	return line
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	ctx := WithRID(context.Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	line := captureLine(t, formatKV, func(l *slog.Logger) {
		LogEvent(ctx, l.With("component", "dialog"), slog.LevelInfo, "fsm.transition",
			slog.String("status", "ok"),
			slog.String("cause", "unit"),
		)
	})

	tokens := strings.Split(line, " ")
	expected := []string{"ts=", "level=INFO", "component=dialog", "event=fsm.transition", "status=ok", "rid=rid-123"}
	require.GreaterOrEqual(t, len(tokens), len(expected), line)
	for i, prefix := range expected {
		assert.True(t, strings.HasPrefix(tokens[i], prefix), "token %d = %s, expected prefix %s", i, tokens[i], prefix)
	}
}

func TestStructuredHandlerJSONOrderWithSearchID(t *testing.T) {
	ctx := WithRID(context.Background(), "rid-json")
	ctx = WithUpdateMeta(ctx, 11, 22, 33)
	ctx = WithSearchID(ctx, "5f0c")

	line := captureLine(t, formatJSON, func(l *slog.Logger) {
		LogEvent(ctx, l.With("component", "search"), slog.LevelError, "search.run",
			slog.String("status", "fail"),
			slog.String("err", "boom"),
		)
	})

	require.True(t, strings.HasPrefix(line, "{"), line)
	prefixes := []string{`{"ts":`, `"level":"ERROR"`, `"component":"search"`, `"event":"search.run"`, `"status":"fail"`, `"rid":"rid-json"`, `"search_id":"5f0c"`}
	pos := -1
	for _, pref := range prefixes {
		idx := strings.Index(line, pref)
		require.True(t, idx > pos, "prefix %s not found in order within %s", pref, line)
		pos = idx
	}
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	rawRID := "123:456:789"
	ctx := WithRID(context.Background(), rawRID)

	kv := captureLine(t, formatKV, func(l *slog.Logger) {
		LogEvent(ctx, l, slog.LevelInfo, "rid.test")
	})
	assert.Contains(t, kv, "rid="+CompactRID(rawRID))
	assert.NotContains(t, kv, "rid_full=")

	js := captureLine(t, formatJSON, func(l *slog.Logger) {
		LogEvent(ctx, l, slog.LevelInfo, "rid.test")
	})
	assert.Contains(t, js, `"rid":"`+CompactRID(rawRID)+`"`)
	assert.Contains(t, js, `"rid_full":"`+rawRID+`"`)
	assert.Contains(t, js, `"ts_unix_nano"`)
}

func TestStructuredHandlerDurationKeys(t *testing.T) {
	line := captureLine(t, formatKV, func(l *slog.Logger) {
		l.Info("timed",
			slog.Duration("duration", 1500*time.Microsecond),
			slog.Duration("query_duration", 3*time.Millisecond),
			slog.Duration("backoff", time.Second),
		)
	})
	assert.Contains(t, line, "duration_ms=2")
	assert.Contains(t, line, "query_duration_ms=3")
	assert.Contains(t, line, "backoff_ms=1000")
	assert.Contains(t, line, "component=app")
}

func TestStructuredHandlerDropsUnknownOutcome(t *testing.T) {
	line := captureLine(t, formatKV, func(l *slog.Logger) {
		l.Info("search.run", slog.String("outcome", "EMPTY"), slog.String("handler", ""))
	})
	assert.Contains(t, line, "outcome=empty")
	assert.NotContains(t, line, "handler=")

	line = captureLine(t, formatKV, func(l *slog.Logger) {
		l.Info("search.run", slog.String("outcome", "weird"))
	})
	assert.NotContains(t, line, "outcome=")
}

func TestParseRatioSpec(t *testing.T) {
	cases := map[string][2]int{
		"1/10": {1, 10},
		"20":   {1, 20},
		"0":    {0, 0},
		"abc":  {0, 0},
		"":     {0, 0},
	}
	for in, want := range cases {
		num, den := parseRatioSpec(in)
		assert.Equal(t, want, [2]int{num, den}, in)
	}

	s := newRatioSampler(1, 3)
	got := []bool{s.Allow(), s.Allow(), s.Allow(), s.Allow()}
	assert.Equal(t, []bool{true, false, false, true}, got)
}

func TestStructuredHandlerRedactsSecrets(t *testing.T) {
	line := captureLine(t, formatKV, func(l *slog.Logger) {
		l.Error("tg.error",
			slog.String("err", `Post "https://api.telegram.org/bot123456:AAbb-cc_DD/sendMessage": timeout`),
			slog.String("password", "hunter2"),
			slog.Group("db", slog.String("dsn", "user=pf password=x")),
		)
	})
	assert.NotContains(t, line, "AAbb-cc_DD")
	assert.Contains(t, line, "bot<redacted>")
	assert.NotContains(t, line, "hunter2")
	assert.NotContains(t, line, "password=x")
	assert.Contains(t, line, "db.dsn=<redacted>")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestAsyncWriterIsolatesFailingSink(t *testing.T) {
	good := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{failingWriter{}, good}, 16)

	require.NoError(t, aw.Write([]byte("one\n")))
	err := aw.Flush()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	require.NoError(t, aw.Write([]byte("two\n")))
	require.Error(t, aw.Close())
	assert.Equal(t, "one\ntwo\n", good.String())
}

func TestAsyncWriterFailsWhenAllSinksDead(t *testing.T) {
	aw := newAsyncWriter([]io.Writer{failingWriter{}}, 16)
	require.NoError(t, aw.Write([]byte("one\n")))
	require.Error(t, aw.Flush())
	assert.Error(t, aw.Write([]byte("two\n")))
	require.Error(t, aw.Close())
}

func TestMetaCopyOnWrite(t *testing.T) {
	base := WithUpdateMeta(context.Background(), 5, 6, 7)
	tagged := WithSearchID(WithHandler(base, "callback.search"), "s-1")

	assert.Empty(t, HandlerFrom(base))
	assert.Equal(t, Meta{UpdateID: 5, UserID: 6, ChatID: 7, Handler: "callback.search", SearchID: "s-1"}, MetaFrom(tagged))
	assert.Equal(t, "5.7.6", CompactRID(BuildRID(5, 7, 6)))
	assert.Equal(t, "not-a-rid", CompactRID("not-a-rid"))
	assert.Equal(t, "ab", SanitizeLimit("a\x00bc", 2))
}
