package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"github.com/avilov/marketpay/internal/config"
	"github.com/avilov/marketpay/internal/handler"
	"github.com/avilov/marketpay/internal/mercadopago"
	"github.com/avilov/marketpay/internal/reconciler"
	"github.com/avilov/marketpay/internal/server"
	"github.com/avilov/marketpay/internal/storage"
	"github.com/avilov/marketpay/internal/sweeper"
	"github.com/avilov/marketpay/internal/tokens"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	os.Exit(start())
}

func start() int {
	logger, err := zap.NewProduction()
	if err != nil {
		return 1
	}

	zap.ReplaceGlobals(logger)

	defer zap.L().Sync()

	config, err := config.NewConfig()
	if err != nil {
		zap.L().Info("error create config", zap.Error(err))
		return 1
	}

	db, err := sqlx.Connect("postgres", config.DatabaseURI)
	if err != nil {
		zap.L().Info("error failed to connect to db: %w", zap.Error(err))
		return 1
	}

	defer db.Close()

	postgresStorage, err := storage.NewPostgresStorage(db)
	if err != nil {
		zap.L().Info("error failed to create postgres storage: %w", zap.Error(err))
		return 1
	}

	var (
		client = mercadopago.NewClient(
			config.MPAPIAddress,
			config.MPAuthAddress,
			config.MPClientID,
			config.MPClientSecret,
			config.MPRedirectURI,
		)
		refresher = tokens.NewRefresher(client, postgresStorage)
		engine    = reconciler.NewEngine(postgresStorage, client)
		sweeper   = sweeper.NewSweeper(client, postgresStorage, engine)
	)

	server := server.NewServer(config, handler.NewHandler(config, postgresStorage, client, refresher, engine))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		if err := server.Start(); err != nil {
			zap.L().Info("error starting server", zap.Error(err))
			return err
		}

		return nil
	})

	eg.Go(func() error {
		if err := sweeper.Start(ctx); err != nil {
			zap.L().Info("error starting sweeper", zap.Error(err))
			return err
		}

		return nil
	})

	<-ctx.Done()

	eg.Go(func() error {
		if err := server.Stop(); err != nil {
			zap.L().Info("error stopping server", zap.Error(err))
			return err
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		return 1
	}

	return 0
}
