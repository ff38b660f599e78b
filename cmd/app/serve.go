package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"telegram-pinmsg-bot/internal/application"
	"telegram-pinmsg-bot/internal/config"
	"telegram-pinmsg-bot/internal/domain/ports/adapter"
	"telegram-pinmsg-bot/internal/domain/ports/repository"
	tele "telegram-pinmsg-bot/internal/infra/adapters/telegram"
	"telegram-pinmsg-bot/internal/infra/analytics"
	pg "telegram-pinmsg-bot/internal/infra/db/postgres"
	httpapi "telegram-pinmsg-bot/internal/infra/http"
	"telegram-pinmsg-bot/internal/infra/i18n"
	"telegram-pinmsg-bot/internal/infra/lifecycle"
	"telegram-pinmsg-bot/internal/infra/logging"
	"telegram-pinmsg-bot/internal/infra/memory"
	"telegram-pinmsg-bot/internal/infra/metrics"
	red "telegram-pinmsg-bot/internal/infra/redis"
	"telegram-pinmsg-bot/internal/infra/scheduler"
	"telegram-pinmsg-bot/internal/infra/transport"
	"telegram-pinmsg-bot/internal/infra/worker"
)

const shutdownTimeout = 10 * time.Second

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(cfgPath, devMode)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	life := lifecycle.New(logger)
	ctx, causeOf, stop := life.NotifyContext(context.Background())
	defer stop()

	metrics.MustRegister()

	// ---- Storage ----
	st, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	life.AddHook(func(string) {
		if err := st.store.Close(); err != nil {
			logger.Warn().Err(err).Msg("close storage")
		}
	})
	logger.Info().Str("driver", cfg.Storage.Driver).Msg("storage ready")

	// ---- Telegram ----
	client, err := tele.NewClient(&cfg.Bot, logger)
	if err != nil {
		life.Shutdown("telegram unavailable")
		return fmt.Errorf("telegram: %w", err)
	}
	var sender adapter.Sender = client
	if dryRun {
		sender = tele.NewDryRunSender(logger)
	}
	username := cfg.Bot.Username
	if username == "" {
		username = client.Username()
	}

	texts, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Bot.Language)
	if err != nil {
		life.Shutdown("missing locale")
		return fmt.Errorf("i18n: %w", err)
	}

	// ---- Analytics ----
	pool := worker.NewPool(cfg.Analytics.Workers, logger)
	pool.SetPanicHandler(life.OnPanic)
	pool.Start(ctx)
	life.AddHook(func(string) { pool.Stop() })
	tracker := analytics.NewTracker(&cfg.Analytics, pool, logger)

	// ---- Bot core ----
	bot := application.NewBot(application.BotDeps{
		Sender:      sender,
		Store:       st.store,
		Prompts:     st.prompts,
		Limiter:     st.limiter,
		Tracker:     tracker,
		Texts:       texts,
		PromptTTL:   cfg.Prompt.TTL,
		RatePerMin:  cfg.RateLimit.PerMinute,
		BotUsername: username,
	}, logger)

	// ---- Inbound ----
	stream := transport.NewStream(cfg.Bot.Workers, bot.Router.HandleUpdate, life.OnPanic, logger)
	stream.Start(ctx)
	life.AddHook(func(string) { stream.Stop() })

	selector := transport.New(cfg, client, stream, logger)
	selector.SetPanicHandler(life.OnPanic)
	metrics.SetBuildInfo(version, commit, string(selector.Mode()))

	tick := scheduler.NewScheduler(cfg.TickInterval(), func(ctx context.Context) error {
		if st.onTick != nil {
			st.onTick()
		}
		_, err := bot.Dispatcher.Dispatch(ctx, &application.Event{Type: application.EventTick})
		return err
	}, logger)
	tick.SetPanicHandler(life.OnPanic)

	server := httpapi.NewServer(&cfg.HTTP, logger, selector.Routes)

	// hooks run in reverse: server first, storage last
	life.AddHook(func(string) { selector.Stop() })
	life.AddHook(func(string) { tick.Stop() })
	life.AddHook(func(string) {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(sctx); err != nil {
			logger.Warn().Err(err).Msg("http shutdown")
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		life.Guard(func() { err = server.Start() })
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		cause := causeOf()
		if cause == "" {
			cause = "component stopped"
		}
		life.Shutdown(cause)
		return nil
	})

	if err := selector.Start(gctx); err != nil {
		logger.Error().Err(err).Msg("transport start failed")
		stop()
		_ = g.Wait()
		return fmt.Errorf("transport: %w", err)
	}
	tick.Start(gctx)
	logger.Info().
		Str("mode", string(selector.Mode())).
		Str("bot", username).
		Int("port", cfg.HTTP.Port).
		Msg("bot running")

	return g.Wait()
}

type storage struct {
	store   repository.KeyedStore
	prompts repository.PromptStateRepository
	limiter repository.RateLimiter
	onTick  func()
}

func openStorage(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverRedis:
		client, err := red.NewClient(ctx, &cfg.Storage)
		if err != nil {
			return nil, err
		}
		return &storage{
			store:   red.NewKeyedStore(client),
			prompts: red.NewPromptStateRepo(client, cfg.Prompt.TTL),
			limiter: red.NewRateLimiter(client),
		}, nil

	case config.DriverPostgres:
		pool, err := pg.NewPgxPool(ctx, cfg.Storage.URL, cfg.Storage.MaxConns)
		if err != nil {
			return nil, err
		}
		store := pg.NewKeyedStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		logger.Info().Msg("prompt state kept in memory with postgres storage")
		return &storage{
			store:   store,
			prompts: memory.NewPromptStateRepo(),
			onTick:  func() { pg.ReportPoolStats(pool) },
		}, nil

	default:
		logger.Warn().Msg("memory storage: pins are lost on restart")
		return &storage{
			store:   memory.NewKeyedStore(),
			prompts: memory.NewPromptStateRepo(),
		}, nil
	}
}
