package telegram

import (
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tele "gopkg.in/telebot.v4"
)

type flakyTransport struct {
	fails int32
	calls atomic.Int32
}

func (f *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if f.calls.Add(1) <= f.fails {
		return nil, &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	}
	return http.DefaultTransport.RoundTrip(req)
}

func TestRetryTransportRetriesDialErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	base := &flakyTransport{fails: 2}
	client := &http.Client{Transport: &retryTransport{base: base, maxRetries: 3, backoff: time.Millisecond}}

	resp, err := client.Post(srv.URL, "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.EqualValues(t, 3, base.calls.Load())
}

func TestRetryTransportGivesUp(t *testing.T) {
	base := &flakyTransport{fails: 10}
	client := &http.Client{Transport: &retryTransport{base: base, maxRetries: 1, backoff: time.Millisecond}}

	_, err := client.Get("http://127.0.0.1:1/")
	require.Error(t, err)
	assert.EqualValues(t, 2, base.calls.Load())
}

func TestBuildHTTPClientOutlastsLongPoll(t *testing.T) {
	c := BuildHTTPClient(60 * time.Second)
	assert.Greater(t, c.Timeout, 60*time.Second)
	assert.Equal(t, defaultClientTimeout, BuildHTTPClient(10*time.Second).Timeout)
}

func TestBuildPoller(t *testing.T) {
	lp, ok := BuildPoller(PollerOptions{RunMode: "longpoll"}).(*tele.LongPoller)
	require.True(t, ok)
	assert.Equal(t, defaultLongPollTimeout, lp.Timeout)

	wh, ok := BuildPoller(PollerOptions{
		RunMode: "Webhook",
		Webhook: WebhookOptions{Listen: "0.0.0.0", Port: 8443, URL: "https://bot.example.com/hook"},
	}).(*tele.Webhook)
	require.True(t, ok)
	assert.Equal(t, "0.0.0.0:8443", wh.Listen)
	assert.Equal(t, "https://bot.example.com/hook", wh.Endpoint.PublicURL)
}

func TestRewindRefusesOneShotBody(t *testing.T) {
	req, err := http.NewRequest(http.MethodPost, "http://example.invalid", strings.NewReader("x"))
	require.NoError(t, err)

	next, err := rewind(req)
	require.NoError(t, err)
	assert.NotNil(t, next.Body)

	req.GetBody = nil
	_, err = rewind(req)
	assert.ErrorIs(t, err, errBodyNotReplayable)
}
