package middleware

import (
	"log/slog"

	"github.com/m3rciful/partyfinder/core/logger"
	tghelpers "github.com/m3rciful/partyfinder/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// AdminOptions defines how admin-only checks should behave.
type AdminOptions struct {
	// AdminID is the only permitted caller. Zero permits nobody.
	AdminID  int64
	OnReject tele.HandlerFunc
}

// IsAdmin reports whether userID may run admin-only handlers.
func (o AdminOptions) IsAdmin(userID int64) bool {
	return o.AdminID != 0 && userID == o.AdminID
}

// AdminOnlyMiddleware ensures that only the admin user can invoke downstream handlers.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			var userID int64
			if u := c.Sender(); u != nil {
				userID = u.ID
			}
			if opts.IsAdmin(userID) {
				return next(c)
			}
			logger.LogEvent(tghelpers.BuildContext(c), logger.TG, slog.LevelWarn, "access.refused",
				slog.Int64("user_id", userID),
				slog.Bool("admin_configured", opts.AdminID != 0),
				slog.String("outcome", "refused"),
			)
			adminRefusals.Inc()
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
	}
}
