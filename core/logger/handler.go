package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"

	timeFormatMillis = "2006-01-02T15:04:05.000Z07:00"
)

var errNoWriter = errors.New("logger: writer not initialized")

type handlerConfig struct {
	level    slog.Leveler
	writer   *asyncWriter
	format   logFormat
	keyOrder []string
}

// structuredHandler renders records as one flat line per record. Groups are
// folded into dotted keys and context metadata fills keys the record left unset.
type structuredHandler struct {
	cfg    handlerConfig
	encode encoder
	attrs  []slog.Attr
	prefix string
}

func newStructuredHandler(cfg handlerConfig) *structuredHandler {
	if cfg.level == nil {
		cfg.level = slog.LevelInfo
	}
	if cfg.keyOrder == nil {
		cfg.keyOrder = append([]string(nil), defaultKeyOrder...)
	}
	return &structuredHandler{cfg: cfg, encode: encoderFor(cfg.format)}
}

func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.cfg.level.Level()
}

func (h *structuredHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg.writer == nil {
		return errNoWriter
	}

	fs := make(fieldSet, 16)
	ts := r.Time.UTC()
	fs["ts"] = ts.Truncate(time.Millisecond).Format(timeFormatMillis)
	fs["level"] = normalizeLevel(r.Level.String())
	if h.cfg.format == formatJSON {
		fs["ts_unix_nano"] = ts.UnixNano()
	}

	for _, a := range h.attrs {
		addAttr(fs, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(fs, h.prefix, a)
		return true
	})
	for _, a := range MetaFrom(ctx).fields() {
		fs.setDefault(a.Key, a.Value.Any())
	}

	fs.compactRID(h.cfg.format == formatJSON)
	fs.setDefault("event", firstNonEmpty(r.Message, "unknown"))
	fs.setDefault("component", "app")
	fs.normalizeEnums()
	fs.prune()

	line, err := h.encode(fs, h.cfg.keyOrder)
	if err != nil {
		return err
	}
	recordsTotal.WithLabelValues(fs.str("level")).Inc()
	if n := len(line); n == 0 || line[n-1] != '\n' {
		line = append(line, '\n')
	}
	return h.cfg.writer.Write(line)
}

func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		// bind the group prefix active at With time
		if h.prefix != "" {
			a = slog.Group(h.prefix, a)
		}
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = joinKey(h.prefix, name)
	return &clone
}

func addAttr(fs fieldSet, prefix string, a slog.Attr) {
	walkAttr(prefix, a, func(key string, v slog.Value) {
		if key, val, ok := plainValue(key, v); ok {
			fs[key] = redactField(key, val)
		}
	})
}

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	}
	return prefix + "." + key
}

// walkAttr calls fn for every leaf of a, keyed by its dotted path.
func walkAttr(prefix string, a slog.Attr, fn func(string, slog.Value)) {
	key := joinKey(prefix, a.Key)
	v := a.Value.Resolve()
	if v.Kind() != slog.KindGroup {
		if key != "" {
			fn(key, v)
		}
		return
	}
	for _, child := range v.Group() {
		walkAttr(key, child, fn)
	}
}

// plainValue converts v to a JSON-friendly value. Durations are reported in
// milliseconds under a key carrying the unit.
func plainValue(key string, v slog.Value) (string, any, bool) {
	switch v.Kind() {
	case slog.KindString:
		return key, strings.TrimSpace(v.String()), true
	case slog.KindBool:
		return key, v.Bool(), true
	case slog.KindInt64:
		return key, v.Int64(), true
	case slog.KindUint64:
		if u := v.Uint64(); u <= math.MaxInt64 {
			return key, int64(u), true
		}
		return key, v.Uint64(), true
	case slog.KindFloat64:
		return key, v.Float64(), true
	case slog.KindDuration:
		return durationKey(key), RoundMS(v.Duration()).Milliseconds(), true
	case slog.KindTime:
		return key, v.Time().UTC().Format(time.RFC3339Nano), true
	}

	switch x := v.Any().(type) {
	case nil:
		return key, nil, false
	case error:
		return key, x.Error(), true
	case string:
		return key, strings.TrimSpace(x), true
	case time.Duration:
		return durationKey(key), RoundMS(x).Milliseconds(), true
	case fmt.Stringer:
		return key, x.String(), true
	default:
		return key, fmt.Sprint(x), true
	}
}

func durationKey(key string) string {
	switch {
	case key == "duration":
		return "duration_ms"
	case strings.HasSuffix(key, "_duration"):
		return key + "_ms"
	case strings.HasSuffix(key, "_ms"):
		return key
	}
	return key + "_ms"
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// sensitiveKeys never reach the output in clear text.
var sensitiveKeys = map[string]struct{}{
	"password": {},
	"token":    {},
	"dsn":      {},
	"secret":   {},
}

func redactField(key string, val any) any {
	s, ok := val.(string)
	if !ok {
		return val
	}
	leaf := key[strings.LastIndexByte(key, '.')+1:]
	if _, hide := sensitiveKeys[leaf]; hide && s != "" {
		return "<redacted>"
	}
	return RedactSecrets(s)
}
