package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	tele "gopkg.in/telebot.v4"
)

var (
	updatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "partyfinder",
		Subsystem: "tg",
		Name:      "updates_total",
		Help:      "Inbound updates by kind.",
	}, []string{"kind"})
	handlersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "partyfinder",
		Subsystem: "tg",
		Name:      "handled_total",
		Help:      "Handled updates by handler and status.",
	}, []string{"handler", "status"})
	handlerSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "partyfinder",
		Subsystem: "tg",
		Name:      "handler_seconds",
		Help:      "Handler latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"handler"})
	messagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "partyfinder",
		Subsystem: "tg",
		Name:      "messages_total",
		Help:      "Messages sent or edited by handlers.",
	})
	panicsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "partyfinder",
		Subsystem: "tg",
		Name:      "panics_total",
		Help:      "Recovered handler panics.",
	})
	adminRefusals = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "partyfinder",
		Subsystem: "tg",
		Name:      "admin_refusals_total",
		Help:      "Admin-only requests refused.",
	})
)

// ObserveHandler records the outcome of one handled update.
func ObserveHandler(handler, status string, took time.Duration) {
	handlersTotal.WithLabelValues(handler, status).Inc()
	handlerSeconds.WithLabelValues(handler).Observe(took.Seconds())
}

func updateKind(u tele.Update) string {
	switch {
	case u.Callback != nil:
		return "callback"
	case u.Message != nil && u.Message.Document != nil:
		return "document"
	case u.Message != nil:
		return "message"
	default:
		return "other"
	}
}

// metricsContext wraps tele.Context to count sent messages and detect keyboard usage.
type metricsContext struct{ tele.Context }

func (m metricsContext) incMessages(hasKB bool) {
	messagesTotal.Inc()
	n := 0
	if v := m.Get("messages"); v != nil {
		if nv, ok := v.(int); ok {
			n = nv
		}
	}
	m.Set("messages", n+1)
	if hasKB {
		m.Set("kb", true)
	}
}

func hasKeyboard(opts []any) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		}
	}
	return false
}

// Send proxies tele.Context.Send while updating message counters.
func (m metricsContext) Send(what any, opts ...any) error {
	err := m.Context.Send(what, opts...)
	if err == nil {
		m.incMessages(hasKeyboard(opts))
	}
	return err
}

// Reply proxies tele.Context.Reply while updating message counters.
func (m metricsContext) Reply(what any, opts ...any) error {
	err := m.Context.Reply(what, opts...)
	if err == nil {
		m.incMessages(hasKeyboard(opts))
	}
	return err
}

// Edit proxies tele.Context.Edit while updating message counters.
func (m metricsContext) Edit(what any, opts ...any) error {
	err := m.Context.Edit(what, opts...)
	if err == nil {
		m.incMessages(hasKeyboard(opts))
	}
	return err
}

// EditOrSend proxies tele.Context.EditOrSend while updating message counters.
func (m metricsContext) EditOrSend(what any, opts ...any) error {
	err := m.Context.EditOrSend(what, opts...)
	if err == nil {
		m.incMessages(hasKeyboard(opts))
	}
	return err
}

// EditOrReply proxies tele.Context.EditOrReply while updating message counters.
func (m metricsContext) EditOrReply(what any, opts ...any) error {
	err := m.Context.EditOrReply(what, opts...)
	if err == nil {
		m.incMessages(hasKeyboard(opts))
	}
	return err
}

// MessageMetricsMiddleware instruments context to track messages count and keyboard usage.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		updatesTotal.WithLabelValues(updateKind(c.Update())).Inc()
		c.Set("messages", 0)
		c.Set("kb", false)
		return next(metricsContext{Context: c})
	}
}

// GetCounters reads message count and keyboard presence flags from context.
func GetCounters(c tele.Context) (int, bool) {
	msgs := 0
	if v := c.Get("messages"); v != nil {
		if n, ok := v.(int); ok {
			msgs = n
		}
	}
	kb := false
	if v := c.Get("kb"); v != nil {
		if b, ok := v.(bool); ok {
			kb = b
		}
	}
	return msgs, kb
}
