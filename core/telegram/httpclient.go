package telegram

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/m3rciful/partyfinder/core/telegram/netutil"
)

const (
	defaultDialTimeout     = 5 * time.Second
	defaultTLSHandshake    = 5 * time.Second
	defaultIdleConnTimeout = 30 * time.Second
	defaultResponseGrace   = 5 * time.Second
	defaultClientTimeout   = 30 * time.Second
	defaultKeepAlive       = 30 * time.Second
	defaultRetryAttempts   = 3
	defaultRetryBackoff    = 2 * time.Second
)

var apiRetries = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "partyfinder",
	Subsystem: "tg",
	Name:      "api_retries_total",
	Help:      "Bot API round trips repeated after a transient failure, by failure kind.",
}, []string{"kind"})

var errBodyNotReplayable = errors.New("telegram: request body cannot be replayed")

// BuildHTTPClient returns the client used for Bot API calls. The response
// deadline covers a full long poll of pollTimeout plus a grace period.
func BuildHTTPClient(pollTimeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAlive}
	return &http.Client{
		Timeout: max(defaultClientTimeout, pollTimeout+defaultClientTimeout/2),
		Transport: &retryTransport{
			base: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           dialer.DialContext,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       defaultIdleConnTimeout,
				TLSHandshakeTimeout:   defaultTLSHandshake,
				ResponseHeaderTimeout: pollTimeout + defaultResponseGrace,
				ExpectContinueTimeout: time.Second,
			},
			maxRetries: defaultRetryAttempts,
			backoff:    defaultRetryBackoff,
		},
	}
}

// retryTransport repeats round trips that failed before a response arrived.
// The wait grows linearly with the attempt number.
type retryTransport struct {
	base       http.RoundTripper
	maxRetries int
	backoff    time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	resp, err := base.RoundTrip(req)
	for attempt := 1; err != nil && attempt <= t.maxRetries && netutil.ShouldRetry(err); attempt++ {
		apiRetries.WithLabelValues(netutil.Kind(err)).Inc()
		if werr := sleepCtx(req, t.backoff*time.Duration(attempt)); werr != nil {
			return nil, werr
		}
		next, rerr := rewind(req)
		if rerr != nil {
			return nil, errors.Join(err, rerr)
		}
		resp, err = base.RoundTrip(next)
	}
	return resp, err
}

// rewind returns a copy of req with a fresh body.
func rewind(req *http.Request) (*http.Request, error) {
	next := req.Clone(req.Context())
	switch {
	case req.Body == nil || req.Body == http.NoBody:
		return next, nil
	case req.GetBody == nil:
		return nil, errBodyNotReplayable
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	next.Body = body
	return next, nil
}

func sleepCtx(req *http.Request, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-req.Context().Done():
		return req.Context().Err()
	case <-timer.C:
		return nil
	}
}
