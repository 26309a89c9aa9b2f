package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	coreconfig "github.com/m3rciful/partyfinder/core/config"
	"github.com/m3rciful/partyfinder/core/logger"
	tghelpers "github.com/m3rciful/partyfinder/core/telegram/helpers"
	tgsender "github.com/m3rciful/partyfinder/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// Middleware describes a global bot middleware to be registered via bot.Use.
type Middleware struct {
	Name string
	Use  func(next tele.HandlerFunc) tele.HandlerFunc
}

// Route declares a single bot handler bound to an arbitrary endpoint.
// Endpoint values are passed directly to tele.Bot.Handle.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions controls the behaviour of RunTelegram.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry

	// Dispatcher overrides the outbound queue built from Config.Sender.
	Dispatcher *tgsender.Dispatcher

	Middlewares []Middleware
	Routes      []Route

	DisableWebhookCleanup   bool
	DisableHelperDispatcher bool

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime exposes runtime components to lifecycle hooks.
type Runtime struct {
	Dispatcher *tgsender.Dispatcher
	Registry   *Registry
}

// RunTelegram builds the bot from opts, wires routes and middleware, and
// serves updates until ctx is done. Cancellation is a clean stop.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Config == nil {
		return errors.New("telegram: nil config provided")
	}
	cfg := opts.Config
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}

	pollerOpts := PollerOptionsFromConfig(cfg)
	poller := BuildPoller(pollerOpts)

	built := time.Now()
	bot, err := tele.NewBot(tele.Settings{
		Token:   cfg.Telegram.Token,
		Poller:  poller,
		Client:  BuildHTTPClient(pollerOpts.LongPollTimeout()),
		OnError: onError,
	})
	if err != nil {
		return fmt.Errorf("telegram: bot initialization failed: %w", err)
	}
	logMode(ctx, poller, time.Since(built))

	if _, longpoll := poller.(*tele.LongPoller); longpoll && !opts.DisableWebhookCleanup {
		// a webhook left from an earlier deployment blocks getUpdates
		if err := bot.RemoveWebhook(false); err != nil {
			logger.LogEvent(ctx, logger.TG, slog.LevelWarn, "webhook.delete",
				slog.String("status", "fail"),
				slog.String("err", logger.RedactSecrets(err.Error())),
			)
		} else {
			logger.LogEvent(ctx, logger.TG, slog.LevelInfo, "webhook.delete", slog.String("status", "ok"))
		}
	}

	rt := Runtime{Dispatcher: opts.Dispatcher, Registry: opts.Registry}
	if rt.Dispatcher == nil {
		rt.Dispatcher = tgsender.NewDispatcher(tgsender.OptionsFromConfig(cfg.Sender))
	}
	if !opts.DisableHelperDispatcher {
		tghelpers.SetDispatcher(rt.Dispatcher)
	}
	release := func() {
		rt.Dispatcher.Close()
		if !opts.DisableHelperDispatcher {
			tghelpers.SetDispatcher(nil)
		}
	}

	for _, mw := range opts.Middlewares {
		if mw.Use != nil {
			bot.Use(mw.Use)
		}
	}
	for _, route := range opts.Routes {
		if route.Endpoint != nil && route.Handler != nil {
			bot.Handle(route.Endpoint, route.Handler)
		}
	}
	InitBotCommands(bot, rt.Registry, cfg.Telegram.AdminID)

	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			release()
			return err
		}
	}

	runErr := serve(ctx, bot)

	var stopErr error
	if opts.OnStop != nil {
		stopErr = opts.OnStop(context.WithoutCancel(ctx), rt)
	}
	release()

	if stopErr != nil {
		return stopErr
	}
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

// serve runs the poller until it ends on its own or ctx is done.
func serve(ctx context.Context, bot *tele.Bot) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		bot.Start()
	}()

	select {
	case <-ctx.Done():
		bot.Stop()
		<-done
		return ctx.Err()
	case <-done:
		return nil
	}
}

func logMode(ctx context.Context, poller tele.Poller, took time.Duration) {
	attrs := []slog.Attr{slog.Duration("duration", took)}
	switch p := poller.(type) {
	case *tele.Webhook:
		attrs = append(attrs,
			slog.String("mode", coreconfig.RunModeWebhook),
			slog.String("listen", p.Listen),
			slog.String("public_url", p.Endpoint.PublicURL),
		)
	case *tele.LongPoller:
		attrs = append(attrs,
			slog.String("mode", coreconfig.RunModeLongpoll),
			slog.Int("timeout_seconds", int(p.Timeout/time.Second)),
		)
	}
	logger.LogEvent(ctx, logger.TG, slog.LevelInfo, "mode", attrs...)
}

// onError receives errors returned by handlers and telebot internals.
func onError(err error, c tele.Context) {
	ctx := context.Background()
	if c != nil {
		ctx = tghelpers.BuildContext(c)
	}
	logger.LogEvent(ctx, logger.TG, slog.LevelError, "tg.error",
		slog.String("err", logger.SanitizeLimit(logger.RedactSecrets(err.Error()), 256)),
	)
}
