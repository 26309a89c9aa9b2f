package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/partyfinder/core/buildinfo"
	coreconfig "github.com/m3rciful/partyfinder/core/config"
)

var (
	initOnce sync.Once

	shutdownMu   sync.Mutex
	shutdownDone bool

	logWriter  *asyncWriter
	logClosers []io.Closer

	levelVar slog.LevelVar

	debugSampler  = newRatioSampler(1, 50)
	traceOverride bool

	// L is the base logger; component loggers below derive from it.
	L *slog.Logger

	// DB logs connection and store events.
	DB *slog.Logger
	// MIG logs schema migrations.
	MIG *slog.Logger
	// TG logs Telegram transport events.
	TG *slog.Logger
	// TWire logs Telegram wiring steps.
	TWire *slog.Logger
	// Sender logs outbound delivery.
	Sender *slog.Logger
	// Dialog logs conversation transitions.
	Dialog *slog.Logger
	// Search logs matchmaking queries.
	Search *slog.Logger
	// Export logs profile dumps.
	Export *slog.Logger
	// Ops logs the health and metrics endpoint.
	Ops *slog.Logger
)

func init() {
	// usable before InitLogger (CLI subcommands, tests)
	L = slog.Default()
	wireComponents()
}

// options is the logging configuration after defaults are applied.
type options struct {
	format    logFormat
	keyOrder  []string
	level     slog.Level
	sampleNum int
	sampleDen int
	profile   string
	filePath  string
}

var levelNames = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

func resolveOptions(cfg *coreconfig.Config) options {
	o := options{
		format:    formatJSON,
		keyOrder:  append([]string(nil), defaultKeyOrder...),
		level:     slog.LevelInfo,
		sampleNum: 1,
		sampleDen: 50,
	}
	if cfg == nil {
		return o
	}
	lc := cfg.Logging

	o.profile = strings.ToLower(strings.TrimSpace(lc.Profile))
	if o.profile == "" {
		o.profile = "prod"
	}

	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "kv", "text", "pretty":
		o.format = formatKV
	case "json":
	default:
		if o.profile == "debug" || o.profile == "dev" {
			o.format = formatKV
		}
	}

	if lvl, ok := levelNames[strings.ToLower(strings.TrimSpace(lc.Level))]; ok {
		o.level = lvl
	}

	if raw := strings.TrimSpace(lc.KeysOrder); raw != "" && raw != "default" {
		var order []string
		for _, k := range strings.Split(raw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				order = append(order, k)
			}
		}
		if len(order) > 0 {
			o.keyOrder = order
		}
	}

	if spec := strings.TrimSpace(lc.DebugSample); spec != "" {
		switch num, den := parseRatioSpec(spec); {
		case num == 0 && den == 0:
			o.sampleNum, o.sampleDen = 0, 0
		case num > 0 && den > 0:
			o.sampleNum, o.sampleDen = num, den
		}
	}

	dir, file := strings.TrimSpace(lc.Dir), strings.TrimSpace(lc.BotFile)
	if dir != "" && file != "" {
		o.filePath = filepath.Join(dir, file)
	}
	return o
}

// InitLogger configures the global structured logger. Only the first call has effect.
func InitLogger(cfg *coreconfig.Config) error {
	initOnce.Do(func() {
		o := resolveOptions(cfg)
		levelVar.Set(o.level)
		debugSampler.Set(o.sampleNum, o.sampleDen)
		traceOverride = envFlag("TRACE") || envFlag("LOG_TRACE")

		sinks := []io.Writer{os.Stdout}
		if o.filePath != "" {
			if f, err := openLogFile(o.filePath); err != nil {
				// stdout keeps working without the file sink
				log.Printf("logger: %v", err)
			} else {
				sinks = append(sinks, f)
				logClosers = append(logClosers, f)
			}
		}
		logWriter = newAsyncWriter(sinks, 64*1024)

		L = slog.New(newStructuredHandler(handlerConfig{
			level:    &levelVar,
			writer:   logWriter,
			format:   o.format,
			keyOrder: o.keyOrder,
		}))
		slog.SetDefault(L)
		wireComponents()
		logStartup(cfg, o.profile)
	})
	return nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

func wireComponents() {
	DB = Component("db")
	MIG = Component("db.migrate")
	TG = Component("tg")
	TWire = Component("tg.wire")
	Sender = Component("tg.sender")
	Dialog = Component("dialog")
	Search = Component("search")
	Export = Component("export")
	Ops = Component("ops")
}

func logStartup(cfg *coreconfig.Config, profile string) {
	attrs := []slog.Attr{
		slog.String("component", "app"),
		slog.String("go_version", runtime.Version()),
		slog.String("version", buildinfo.Version),
		slog.String("build_commit", buildinfo.Commit),
		slog.String("build_time", buildinfo.Date),
		slog.String("cfg_profile", profile),
	}
	if cfg != nil {
		attrs = append(attrs, slog.String("run_mode", cfg.Telegram.RunMode))
	}
	LogEvent(context.Background(), L, slog.LevelInfo, "startup", attrs...)
}

// Shutdown flushes buffered output and closes file sinks. Later calls are no-ops.
func Shutdown() error {
	shutdownMu.Lock()
	defer shutdownMu.Unlock()
	if shutdownDone {
		return nil
	}
	shutdownDone = true

	var errs []error
	if logWriter != nil {
		errs = append(errs, logWriter.Flush(), logWriter.Close())
	}
	for _, c := range logClosers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// LogEvent logs attrs under an explicit event name. A nil logg falls back to
// the context logger, then to L.
func LogEvent(ctx context.Context, logg *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = FromContext(ctx)
	}
	if logg == nil {
		if logg = L; logg == nil {
			return
		}
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, level, "", attrs...)
}

// Component returns L scoped to the component name.
func Component(name string) *slog.Logger {
	if L == nil {
		return nil
	}
	if name = strings.TrimSpace(name); name == "" {
		return L
	}
	return L.With("component", name)
}

// Event logs under the given component.
func Event(ctx context.Context, component string, level slog.Level, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), level, event, attrs...)
}

// Debug logs a debug-level event for the given component.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelDebug, event, attrs...)
}

func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelInfo, event, attrs...)
}

func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelWarn, event, attrs...)
}

func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelError, event, attrs...)
}

func envFlag(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// ShouldSampleDebug reports whether a high-volume debug line should be logged.
func ShouldSampleDebug() bool {
	return traceOverride || debugSampler.Allow()
}
