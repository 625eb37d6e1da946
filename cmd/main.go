package main

import (
	"context"
	logg "log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/nevaan9/pho_bot/internal/api"
	"github.com/nevaan9/pho_bot/internal/config"
	"github.com/nevaan9/pho_bot/internal/render"
	"github.com/nevaan9/pho_bot/internal/repository"
	"github.com/nevaan9/pho_bot/internal/schedule"
	srv "github.com/nevaan9/pho_bot/internal/service"
	"github.com/nevaan9/pho_bot/pkg/cron"
	"github.com/nevaan9/pho_bot/pkg/logger"
	"github.com/nevaan9/pho_bot/pkg/tarantool"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	cfg, err := config.New()
	if err != nil {
		logg.Fatalf("failed to load config: %s", err)
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		logg.Fatalf("failed to initalize logger: %s", err)
	}
	defer log.Sync()

	store, err := newStore(cfg, log)
	if err != nil {
		log.Fatal("failed to open tally store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}

	client := model.NewAPIv4Client(cfg.MmURL)
	client.SetToken(cfg.BotToken)
	webSocketClient, err := model.NewWebSocketClient4(cfg.MmWsURL, cfg.BotToken)
	if err != nil {
		log.Fatal("failed to connect to webSocket", zap.Error(err))
	}

	botID, err := api.BotID(client, cfg.BotName)
	if err != nil {
		log.Fatal("failed to get bot user", zap.Error(err))
	}
	users, err := api.NewUserFinder(client, cfg.UserCacheSize, log)
	if err != nil {
		log.Fatal("failed to create user cache", zap.Error(err))
	}
	polls, err := api.NewPollFinder(client, botID, cfg.PostCacheSize, log)
	if err != nil {
		log.Fatal("failed to create post cache", zap.Error(err))
	}
	scheduler, err := schedule.NewWithTimezone(cfg.Timezone)
	if err != nil {
		log.Fatal("failed to load timezone", zap.String("timezone", cfg.Timezone), zap.Error(err))
	}
	renderer := render.New(cfg.CalendarURL)

	service := srv.New(store, log)
	reconciler := srv.NewReconciler(store, api.NewGateway(client, log), renderer, log, srv.Options{
		Emojis:      cfg.Emojis,
		GracePeriod: cfg.GracePeriod,
	})
	router, err := srv.NewRouter(cfg.EventPartitions, cfg.EventBuffer, reconciler.Handle, log)
	if err != nil {
		log.Fatal("failed to create event router", zap.Error(err))
	}
	router.Start(ctx)

	handler := api.New(api.Deps{
		Service:   service,
		Router:    router,
		Client:    client,
		Users:     users,
		Polls:     polls,
		Scheduler: scheduler,
		Renderer:  renderer,
		Emojis:    cfg.Emojis,
		BotID:     botID,
	}, log)

	purger := cron.New(scheduler.Location(), log)
	if err = purger.Daily(cfg.PurgeAt, service.PurgeExpired); err != nil {
		log.Fatal("failed to schedule purge", zap.String("at", cfg.PurgeAt), zap.Error(err))
	}
	purger.Start()

	webSocketClient.Listen()
	go func() {
		for event := range webSocketClient.EventChannel {
			handler.Dispatch(event)
		}
	}()
	log.Info("bot started", zap.String("bot_id", botID), zap.String("store", cfg.StoreDriver))

	<-ctx.Done()
	webSocketClient.Close()
	router.Stop()
	purger.Stop()
	if err = store.Close(); err != nil {
		log.Error("failed to close tally store", zap.Error(err))
	}
	log.Info("server graceful stopped")
}

func newStore(cfg *config.Config, log *zap.Logger) (repository.TallyStore, error) {
	if cfg.StoreDriver == config.StoreLevelDB {
		return repository.NewLevelDB(cfg.LevelDB.Name, cfg.LevelDB.Path, log)
	}

	conn, err := tarantool.New(cfg.Tarantool)
	if err != nil {
		return nil, err
	}
	repo := repository.NewTarantool(conn, cfg.Tarantool.Space, log)
	if err = repo.EnsureSchema(); err != nil {
		conn.CloseGraceful()
		return nil, err
	}
	log.Info("connected to Tarantool", zap.String("addr", cfg.Tarantool.Addr()), zap.Duration("timeout", cfg.Tarantool.Timeout))
	return repo, nil
}
