package router

import (
	"context"
	"log/slog"
	"sort"

	"github.com/m3rciful/partyfinder/core/logger"
	tg "github.com/m3rciful/partyfinder/core/telegram"
	"github.com/m3rciful/partyfinder/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	// AdminID guards AdminOnly commands. Zero refuses every caller.
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes binds every registered command to its slash endpoint.
// Admin-only commands get the admin guard outside the shared middleware.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}
	guard := middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		AdminID:  opts.AdminID,
		OnReject: opts.OnAdminReject,
	})

	cmds := reg.Commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)

	routes := make([]tg.Route, 0, len(names))
	admin := 0
	for _, name := range names {
		cmd := cmds[name]
		h := middleware.LoggerMiddleware(middleware.RecoverMiddleware(cmd.Handler))
		if cmd.AdminOnly {
			h = guard(h)
			admin++
		}
		routes = append(routes, tg.Route{Endpoint: name, Handler: h})
	}

	logger.LogEvent(context.Background(), logger.TWire, slog.LevelInfo, "wire.complete",
		slog.Int("commands", len(routes)),
		slog.Int("admin_commands", admin),
		slog.Int("callbacks", len(reg.ListCallbacks())),
		slog.Bool("admin_configured", opts.AdminID != 0),
	)
	return routes
}
