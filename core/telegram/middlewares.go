package telegram

import (
	"github.com/m3rciful/partyfinder/core/telegram/middleware"
)

// DefaultMiddlewares builds the global middleware chain: panic recovery,
// update logging, and message counters.
func DefaultMiddlewares() []Middleware {
	return []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
		{Name: "logger", Use: middleware.LoggerMiddleware},
		{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	}
}
