package main

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/errgroup"

	"github.com/chucky-1/teadiary/internal/config"
	"github.com/chucky-1/teadiary/internal/consumer"
	"github.com/chucky-1/teadiary/internal/entrypoint"
	"github.com/chucky-1/teadiary/internal/ops"
	"github.com/chucky-1/teadiary/internal/producer"
	"github.com/chucky-1/teadiary/internal/repository"
	"github.com/chucky-1/teadiary/internal/service"
)

const (
	connectTimeout = 10 * time.Second
	moreInterval   = time.Second
)

func migrationTarget(cfg *config.Config) entrypoint.Target {
	if cfg.Driver() == config.DriverSQLite {
		return entrypoint.Target{DB: cfg.SQLitePath, RedactedURL: cfg.RedactedDatabaseURL()}
	}
	return entrypoint.Target{
		User:        cfg.Postgres.User,
		Host:        cfg.Postgres.Host,
		DB:          cfg.Postgres.DBName,
		RedactedURL: cfg.RedactedDatabaseURL(),
	}
}

// migrate applies the postgres migrations. The sqlite schema is created when
// the file is opened.
func migrate(ctx context.Context, cfg *config.Config) error {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if cfg.Driver() == config.DriverSQLite {
		store, err := repository.OpenSQLite(connectCtx, cfg.SQLitePath, clockwork.NewRealClock())
		if err != nil {
			return err
		}
		store.Close()
		return nil
	}

	pool, err := repository.ConnectPostgres(connectCtx, cfg.DatabaseURL())
	if err != nil {
		return err
	}
	defer pool.Close()
	return repository.MigratePostgres(ctx, pool)
}

type app struct {
	cfg   *config.Config
	clock clockwork.Clock
}

func newApp(cfg *config.Config, clock clockwork.Clock) *app {
	return &app{
		cfg:   cfg,
		clock: clock,
	}
}

func (a *app) openStore(ctx context.Context) (repository.Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if a.cfg.Driver() == config.DriverSQLite {
		store, err := repository.OpenSQLite(connectCtx, a.cfg.SQLitePath, a.clock)
		if err != nil {
			return nil, err
		}
		logrus.Infof("using sqlite store %s", a.cfg.SQLitePath)
		return store, nil
	}
	pool, err := repository.ConnectPostgres(connectCtx, a.cfg.DatabaseURL())
	if err != nil {
		return nil, err
	}
	logrus.Infof("using postgres store %s", a.cfg.RedactedDatabaseURL())
	return repository.NewPostgres(pool), nil
}

// run serves telegram updates until ctx is done.
func (a *app) run(ctx context.Context) error {
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	checks := []ops.Check{{Name: "db", Fn: store.Ping}}

	var events repository.Events = store
	if a.cfg.Mongo.URI != "" {
		cli, err := connectMongo(ctx, a.cfg.Mongo.URI)
		if err != nil {
			return err
		}
		defer func() {
			if err := cli.Disconnect(context.Background()); err != nil {
				logrus.Errorf("mongo disconnect error: %v", err)
			}
		}()
		mongoEvents := repository.NewMongo(cli, a.cfg.Mongo.Database)
		if err = mongoEvents.EnsureIndexes(ctx); err != nil {
			return err
		}
		events = mongoEvents
		checks = append(checks, ops.Check{Name: "mongo", Fn: func(ctx context.Context) error {
			return cli.Ping(ctx, readpref.Primary())
		}})
		logrus.Info("analytics events go to mongo")
	}

	var states repository.States = repository.NewStatesLocalStorage()
	if a.cfg.Redis.URL != "" {
		rdb, err := repository.ConnectRedis(ctx, a.cfg.Redis.URL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		states = repository.NewStatesRedis(rdb, a.cfg.Redis.StateTTL)
		checks = append(checks, ops.Check{Name: "redis", Fn: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
		logrus.Info("conversation state is kept in redis")
	}

	api, err := tgbotapi.NewBotAPI(a.cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("telegram bot api error: %w", err)
	}
	api.Debug = a.cfg.Telegram.Debug
	logrus.Infof("authorized on account %s", api.Self.UserName)

	albums := producer.NewAlbums(a.clock, producer.AlbumDelay)
	bot := consumer.NewBot(api, a.clock, states,
		service.NewTastings(store),
		service.NewUsers(store, a.clock),
		service.NewAnalytics(events, a.clock, a.cfg.AnalyticsEnabled()),
		service.NewDiagnostics(store, service.NewDBInfo(a.cfg), a.cfg.AdminIDs(), a.cfg.IsProduction(), a.cfg.PublicDiagnostics()),
		service.NewThrottle(a.clock, moreInterval),
		albums,
	)
	if err = bot.RegisterCommands(); err != nil {
		logrus.Warnf("register commands error: %v", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = a.cfg.Telegram.Timeout
	hub := consumer.NewHub(api.GetUpdatesChan(u), albums.Albums(), bot)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return albums.Produce(gctx)
	})
	g.Go(func() error {
		return hub.Consume(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		api.StopReceivingUpdates()
		return nil
	})
	if a.cfg.OpsAddr != "" {
		srv := ops.NewServer(a.cfg.OpsAddr, checks...)
		g.Go(func() error {
			return srv.Serve(gctx)
		})
	}
	return g.Wait()
}

func connectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	cli, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect error: %w", err)
	}
	if err = cli.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping error: %w", err)
	}
	return cli, nil
}
