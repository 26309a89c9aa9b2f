package netutil

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Failure kinds reported by Kind.
const (
	KindNone    = ""
	KindFlood   = "flood"
	KindTimeout = "timeout"
	KindDNS     = "dns"
	KindDial    = "dial"
	KindTLS     = "tls"
	Kind4xx     = "http_4xx"
	Kind5xx     = "http_5xx"
	KindUnknown = "unknown"
)

// Kind classifies a failed Telegram call for logs and metrics.
func Kind(err error) string {
	if err == nil {
		return KindNone
	}

	var flood tele.FloodError
	if errors.As(err, &flood) {
		return KindFlood
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return KindTimeout
		}
		return KindDNS
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Op == "dial" {
			return KindDial
		}
		if k := Kind(opErr.Err); k != KindUnknown && k != KindNone {
			return k
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		if k := Kind(urlErr.Err); k != KindUnknown {
			return k
		}
	}

	var alert tls.AlertError
	if errors.As(err, &alert) {
		return KindTLS
	}

	switch code := StatusCode(err); {
	case code >= 500:
		return Kind5xx
	case code >= 400:
		return Kind4xx
	}
	return KindUnknown
}

// StatusCode returns the HTTP-like status carried by a Telegram error, or 0.
// Plain errors ending in "(NNN)" are parsed as well.
func StatusCode(err error) int {
	if err == nil {
		return 0
	}

	var apiErr *tele.Error
	var flood tele.FloodError
	var group tele.GroupError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Code
	case errors.As(err, &flood):
		return http.StatusTooManyRequests
	case errors.As(err, &group):
		return http.StatusBadRequest
	}

	msg := strings.TrimSpace(err.Error())
	open := strings.LastIndexByte(msg, '(')
	if open < 0 || !strings.HasSuffix(msg, ")") {
		return 0
	}
	code, convErr := strconv.Atoi(msg[open+1 : len(msg)-1])
	if convErr != nil {
		return 0
	}
	return code
}
