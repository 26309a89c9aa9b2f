package sender

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	coreconfig "github.com/m3rciful/partyfinder/core/config"
	"github.com/m3rciful/partyfinder/core/logger"
	"github.com/m3rciful/partyfinder/core/telegram/netutil"
)

var (
	// ErrQueueClosed is returned when enqueue is attempted after dispatcher stop.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull indicates the queue is saturated and the job was not accepted.
	ErrQueueFull = errors.New("telegram sender: queue full")
)

var (
	sendsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "partyfinder",
		Subsystem: "sender",
		Name:      "jobs_total",
		Help:      "Outbound Telegram calls by action and result.",
	}, []string{"action", "result"})
	retriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "partyfinder",
		Subsystem: "sender",
		Name:      "retries_total",
		Help:      "Outbound Telegram call retries.",
	})
	queued = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "partyfinder",
		Subsystem: "sender",
		Name:      "queued_jobs",
		Help:      "Jobs waiting for a sender worker.",
	})
)

// Options controls the behaviour of the outbound dispatcher.
type Options struct {
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent retrying a single job.
	MaxDuration time.Duration
}

// OptionsFromConfig maps the sender config section onto dispatcher options.
func OptionsFromConfig(cfg coreconfig.SenderConfig) Options {
	return Options{
		QueueSize:    cfg.QueueSize,
		Workers:      cfg.Workers,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: time.Duration(cfg.RetryBackoffMS) * time.Millisecond,
	}
}

type job struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
}

// Dispatcher executes outbound Telegram calls asynchronously with retries.
type Dispatcher struct {
	opts Options
	jobs chan job

	mu     sync.RWMutex
	closed bool
	once   sync.Once
	wg     sync.WaitGroup
	errs   atomic.Uint64
}

// NewDispatcher starts a dispatcher with sane defaults if options are zeroed.
func NewDispatcher(opts Options) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 2 * time.Second
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = 12 * time.Second
	}

	d := &Dispatcher{
		opts: opts,
		jobs: make(chan job, opts.QueueSize),
	}

	d.wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go d.worker()
	}

	return d
}

// Enqueue schedules the provided function for asynchronous execution.
// The run closure must be idempotent if retries are desired.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}

	select {
	case d.jobs <- job{ctx: ctx, action: action, endpoint: endpoint, run: run}:
		queued.Inc()
		return nil
	default:
		return ErrQueueFull
	}
}

// ErrorCount returns the number of failed jobs.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.errs.Load()
}

// Close stops accepting jobs and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.jobs)
		d.mu.Unlock()
		d.wg.Wait()
	})
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.jobs {
		queued.Dec()
		d.handleJob(j)
	}
}

func (d *Dispatcher) handleJob(j job) {
	ctx := j.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	attempts, err := d.attempt(ctx, j)

	attrs := []slog.Attr{slog.String("action", j.action)}
	if j.endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", j.endpoint))
	}
	attrs = append(attrs,
		slog.Int("attempts", attempts),
		slog.Duration("elapsed", time.Since(start)),
	)

	if err == nil {
		sendsTotal.WithLabelValues(j.action, "ok").Inc()
		level := slog.LevelDebug
		if attempts > 1 {
			level = slog.LevelInfo
		}
		logger.LogEvent(ctx, logger.Sender, level, "send.success", attrs...)
		return
	}

	d.errs.Add(1)
	sendsTotal.WithLabelValues(j.action, "fail").Inc()
	attrs = append(attrs,
		slog.String("err", sanitizeErrorMessage(err)),
		slog.String("err_code", netutil.Kind(err)),
	)
	logger.LogEvent(ctx, logger.Sender, slog.LevelError, "send.fail", attrs...)
}

// attempt runs j until it succeeds, fails permanently, or runs out of retries
// or time. The job's own cancellation does not cut a send short; only
// MaxDuration does.
func (d *Dispatcher) attempt(ctx context.Context, j job) (int, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.opts.MaxDuration)
	defer cancel()

	limit := d.opts.MaxRetries + 1
	for n := 1; ; n++ {
		err := j.run()
		if err == nil || n == limit || !netutil.ShouldRetry(err) {
			return n, err
		}

		delay := netutil.RetryDelay(err, d.opts.RetryBackoff*time.Duration(n))
		retriesTotal.Inc()
		logger.LogEvent(ctx, logger.Sender, slog.LevelDebug, "send.retry",
			slog.String("action", j.action),
			slog.Int("attempt", n),
			slog.Duration("backoff", delay),
			slog.String("err_code", netutil.Kind(err)),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return n, errors.Join(err, ctx.Err())
		case <-timer.C:
		}
	}
}

func sanitizeErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	return logger.RedactSecrets(err.Error())
}
