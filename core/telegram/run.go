package telegram

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/m3rciful/cotabot/core/config"
	"github.com/m3rciful/cotabot/core/logger"
	"github.com/m3rciful/cotabot/core/telegram/helpers"
	"github.com/m3rciful/cotabot/core/telegram/router"
	"github.com/m3rciful/cotabot/core/telegram/sender"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// Runtime exposes the live bot internals to application hooks.
type Runtime struct {
	Bot        *tele.Bot
	Registry   *Registry
	Dispatcher *sender.Dispatcher
}

// RunOptions wires application-level handlers into the bot run loop.
type RunOptions struct {
	// SetupCommands registers application commands on the registry.
	SetupCommands func(reg *Registry)
	// SetupCallbacks registers callback handlers; the runtime is available
	// so handlers can reach the bot and the dispatcher.
	SetupCallbacks func(rt *Runtime)
	// TextConsumer receives plain text messages before the command fallback.
	TextConsumer router.TextConsumer
	// OnStart runs after the bot is constructed but before polling starts.
	OnStart func(rt *Runtime) error
	// OnShutdown runs after polling stops, before the dispatcher drains.
	OnShutdown func(rt *Runtime)
	// Sender overrides outbound dispatcher options.
	Sender sender.Options
}

// RunTelegram builds the bot from config, wires routers and middlewares and
// blocks until a termination signal arrives.
func RunTelegram(cfg *config.Config, opts RunOptions) error {
	poller := BuildPoller(PollerOptions{
		RunMode:                cfg.Telegram.RunMode,
		LongPollTimeoutSeconds: cfg.Telegram.LongPollTimeoutSeconds,
		Webhook: WebhookOptions{
			Listen: cfg.Webhook.Listen,
			Port:   cfg.Webhook.Port,
			URL:    cfg.Webhook.URL,
		},
	})

	bot, err := tele.NewBot(tele.Settings{
		Token:   cfg.Telegram.Token,
		Poller:  poller,
		Client:  BuildHTTPClient(HTTPClientOptions{}),
		OnError: logTeleError,
	})
	if err != nil {
		return err
	}

	if cfg.Telegram.RunMode == RunModeLongpoll {
		deleteWebhook(bot)
	}

	dispatcher := sender.NewDispatcher(opts.Sender)
	helpers.SetDispatcher(dispatcher)

	reg := NewRegistry()
	rt := &Runtime{Bot: bot, Registry: reg, Dispatcher: dispatcher}

	if opts.SetupCommands != nil {
		opts.SetupCommands(reg)
	}
	if opts.SetupCallbacks != nil {
		opts.SetupCallbacks(rt)
	}

	for _, mw := range DefaultMiddlewares(cfg) {
		bot.Use(mw)
	}

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{AdminID: cfg.Telegram.AdminID})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoute(opts.TextConsumer, reg, router.TextOptions{}))
	for _, r := range routes {
		bot.Handle(r.Endpoint, r.Handler)
	}

	InitBotCommands(bot, reg)

	if opts.OnStart != nil {
		if err := opts.OnStart(rt); err != nil {
			dispatcher.Close()
			return err
		}
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-stop
		logger.TG.LogAttrs(context.Background(), slog.LevelInfo, "bot.stopping",
			slog.String("signal", sig.String()),
		)
		bot.Stop()
	}()

	logger.TG.LogAttrs(context.Background(), slog.LevelInfo, "bot.started",
		slog.String("mode", cfg.Telegram.RunMode),
		slog.String("username", bot.Me.Username),
	)
	bot.Start()

	if opts.OnShutdown != nil {
		opts.OnShutdown(rt)
	}
	dispatcher.Close()
	logger.TG.LogAttrs(context.Background(), slog.LevelInfo, "bot.stopped")
	return nil
}

// deleteWebhook clears a stale webhook so long polling can receive updates.
func deleteWebhook(bot *tele.Bot) {
	if err := bot.RemoveWebhook(true); err != nil {
		logger.TG.LogAttrs(context.Background(), slog.LevelWarn, "webhook.delete_failed",
			slog.String("err", err.Error()),
		)
		return
	}
	logger.TG.LogAttrs(context.Background(), slog.LevelDebug, "webhook.deleted")
}

func logTeleError(err error, c tele.Context) {
	attrs := []slog.Attr{slog.String("err", err.Error())}
	if c != nil && c.Sender() != nil {
		attrs = append(attrs, slog.Int64("user_id", c.Sender().ID))
	}
	logger.TG.LogAttrs(context.Background(), slog.LevelError, "telebot.error", attrs...)
}
