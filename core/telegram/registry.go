package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/m3rciful/partyfinder/core/logger"

	tele "gopkg.in/telebot.v4"
)

// Command is a slash command with its handler and menu metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// AdminOnly commands are guarded by the admin middleware and listed only
	// in the admin's command menu.
	AdminOnly bool
	Hidden    bool
	Aliases   []string
}

// Registry holds bot commands, callback handlers, and fallbacks.
// Commands are registered during wiring; callbacks may be looked up concurrently.
type Registry struct {
	commands map[string]Command

	callbacksMu sync.RWMutex
	callbacks   map[string]tele.HandlerFunc

	callbackNotFound tele.HandlerFunc
	textFallback     tele.HandlerFunc
}

// NewRegistry returns an empty Registry whose unknown-callback fallback just
// answers the query.
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]Command),
		callbacks: make(map[string]tele.HandlerFunc),
		callbackNotFound: func(c tele.Context) error {
			return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
		},
	}
}

func wireWarn(event string, attrs ...slog.Attr) {
	logger.LogEvent(context.Background(), logger.TWire, slog.LevelWarn, event, attrs...)
}

// RegisterCommand adds cmd under name, which must start with a slash.
// Invalid and duplicate registrations are logged and ignored.
func (r *Registry) RegisterCommand(name string, cmd Command) {
	switch {
	case r == nil || cmd.Handler == nil || cmd.Description == "":
		wireWarn("register.command.skip", slog.String("name", name), slog.String("reason", "invalid"))
		return
	case !strings.HasPrefix(name, "/") || len(name) < 2:
		wireWarn("register.command.skip", slog.String("name", name), slog.String("reason", "no_slash_prefix"))
		return
	}
	if _, exists := r.commands[name]; exists {
		wireWarn("register.command.duplicate", slog.String("name", name))
		return
	}
	r.commands[name] = cmd
}

// ListCommands returns the menu entries sorted by name. With visibleOnly,
// hidden and admin-only commands are left out.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	return r.menu(func(c Command) bool {
		return !visibleOnly || (!c.Hidden && !c.AdminOnly)
	})
}

// AdminCommands returns the menu for the admin's chat: every command that is
// not hidden.
func (r *Registry) AdminCommands() []tele.Command {
	return r.menu(func(c Command) bool { return !c.Hidden })
}

func (r *Registry) menu(keep func(Command) bool) []tele.Command {
	var list []tele.Command
	for name, cmd := range r.commands {
		if keep(cmd) {
			list = append(list, tele.Command{Text: strings.TrimPrefix(name, "/"), Description: cmd.Description})
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// LookupCommand resolves name (with or without the slash) or one of the
// aliases to the registered command.
func (r *Registry) LookupCommand(name string) (string, Command, bool) {
	name = "/" + strings.TrimPrefix(strings.TrimSpace(name), "/")
	if cmd, ok := r.commands[name]; ok {
		return name, cmd, true
	}
	for key, cmd := range r.commands {
		for _, alias := range cmd.Aliases {
			if "/"+strings.TrimPrefix(alias, "/") == name {
				return key, cmd, true
			}
		}
	}
	return "", Command{}, false
}

// Commands returns all registered commands keyed by name.
func (r *Registry) Commands() map[string]Command {
	return r.commands
}

// RegisterCallback binds handler to the callback unique key.
func (r *Registry) RegisterCallback(key string, handler tele.HandlerFunc) error {
	if r == nil || key == "" || handler == nil {
		wireWarn("register.callback.skip", slog.String("key", key), slog.Bool("handler_nil", handler == nil))
		return errors.New("invalid callback registration")
	}
	r.callbacksMu.Lock()
	defer r.callbacksMu.Unlock()
	if _, exists := r.callbacks[key]; exists {
		wireWarn("register.callback.duplicate", slog.String("key", key))
		return fmt.Errorf("callback already registered: %s", key)
	}
	r.callbacks[key] = handler
	return nil
}

// RegisterCallbacks binds one handler to several keys.
func (r *Registry) RegisterCallbacks(keys []string, handler tele.HandlerFunc) error {
	var errs []error
	for _, k := range keys {
		if err := r.RegisterCallback(k, handler); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// GetCallback returns the handler for key.
func (r *Registry) GetCallback(key string) (tele.HandlerFunc, bool) {
	r.callbacksMu.RLock()
	defer r.callbacksMu.RUnlock()
	h, ok := r.callbacks[key]
	return h, ok
}

// ListCallbacks returns the registered keys, sorted.
func (r *Registry) ListCallbacks() []string {
	r.callbacksMu.RLock()
	defer r.callbacksMu.RUnlock()
	names := make([]string, 0, len(r.callbacks))
	for k := range r.callbacks {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// SetCallbackNotFound replaces the fallback for unknown callback keys.
func (r *Registry) SetCallbackNotFound(h tele.HandlerFunc) {
	if h != nil {
		r.callbackNotFound = h
	}
}

// CallbackNotFound returns the fallback for unknown callback keys.
func (r *Registry) CallbackNotFound() tele.HandlerFunc { return r.callbackNotFound }

// SetTextFallback sets the handler for text that matches nothing else.
func (r *Registry) SetTextFallback(h tele.HandlerFunc) { r.textFallback = h }

// TextFallback returns the text fallback handler.
func (r *Registry) TextFallback() tele.HandlerFunc { return r.textFallback }

// InitBotCommands publishes the command menu: public commands for everyone
// and, when adminID is set, the admin menu for the admin's private chat.
func InitBotCommands(bot *tele.Bot, reg *Registry, adminID int64) {
	ctx := context.Background()
	if err := bot.SetCommands(reg.ListCommands(true)); err != nil {
		logger.LogEvent(ctx, logger.TWire, slog.LevelError, "register.commands.set_failed",
			slog.String("scope", "default"),
			slog.String("err", err.Error()),
		)
	}
	if adminID == 0 {
		return
	}
	scope := tele.CommandScope{Type: tele.CommandScopeChat, ChatID: adminID}
	if err := bot.SetCommands(reg.AdminCommands(), scope); err != nil {
		logger.LogEvent(ctx, logger.TWire, slog.LevelError, "register.commands.set_failed",
			slog.String("scope", "admin"),
			slog.String("err", err.Error()),
		)
	}
}
