package netutil

import (
	"errors"
	"time"

	tele "gopkg.in/telebot.v4"
)

// ShouldRetry reports whether a failed Telegram call is worth repeating:
// flood control, timeouts, refused dials and 5xx replies.
func ShouldRetry(err error) bool {
	switch Kind(err) {
	case KindFlood, KindTimeout, KindDial, Kind5xx:
		return true
	}
	return false
}

// RetryDelay returns the wait requested by Telegram flood control, or
// fallback when the error carries none.
func RetryDelay(err error, fallback time.Duration) time.Duration {
	var flood tele.FloodError
	if errors.As(err, &flood) && flood.RetryAfter > 0 {
		return time.Duration(flood.RetryAfter) * time.Second
	}
	return fallback
}
