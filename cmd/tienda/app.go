package main

import (
	"context"
	"log/slog"

	"github.com/MikeMC777/tienda/internal/audit"
	"github.com/MikeMC777/tienda/internal/config"
	"github.com/MikeMC777/tienda/internal/db"
	"github.com/MikeMC777/tienda/internal/events"
	"github.com/MikeMC777/tienda/internal/health"
	"github.com/MikeMC777/tienda/internal/order"
	"github.com/MikeMC777/tienda/internal/product"
	"github.com/MikeMC777/tienda/internal/user"
)

// app is the wired object graph shared by the subcommands.
type app struct {
	cfg       config.Config
	log       *slog.Logger
	gw        *db.Gateway
	audit     *audit.Log
	cache     product.Cache
	publisher events.Publisher

	users    *user.Service
	products *product.Service
	orders   *order.Service
}

func dsn(cfg config.Config) string {
	if cfg.DBDriver == db.DriverPostgres {
		return cfg.PostgresDSN
	}
	return cfg.SQLitePath
}

func openGateway(ctx context.Context, cfg config.Config) (*db.Gateway, error) {
	return db.Open(ctx, cfg.DBDriver, dsn(cfg), cfg.DBTimeout)
}

func newApp(ctx context.Context, cfg config.Config, log *slog.Logger) (*app, error) {
	gw, err := openGateway(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := gw.Migrate(ctx); err != nil {
		_ = gw.Close()
		return nil, err
	}
	return assemble(cfg, log, gw), nil
}

// assemble builds the services on an open gateway.
func assemble(cfg config.Config, log *slog.Logger, gw *db.Gateway) *app {
	a := &app{cfg: cfg, log: log, gw: gw, audit: audit.New(log, 1024)}

	a.cache = product.NoCache{}
	if cfg.RedisAddr != "" {
		a.cache = product.NewRedisCache(cfg.RedisAddr, log)
		log.Info("product cache enabled", "redis", cfg.RedisAddr)
	}
	a.publisher = events.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		a.publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		log.Info("order events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	userRepo := user.NewRepo(gw)
	productRepo := product.NewRepo(gw)
	tokens := user.NewTokens(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)

	a.users = user.NewService(userRepo, tokens, a.audit)
	a.products = product.NewService(productRepo, a.cache, a.audit)
	a.orders = order.NewService(order.NewRepo(gw), productRepo, a.products, a.publisher, a.audit)
	return a
}

func (a *app) routes() routes {
	return routes{
		users:          a.users,
		products:       a.products,
		orders:         a.orders,
		health:         health.NewHandler(a.gw, "tienda", version),
		log:            a.log,
		requestTimeout: a.cfg.RequestTimeout,
	}
}

// close releases resources in reverse order of creation.
func (a *app) close() {
	if err := a.publisher.Close(); err != nil {
		a.log.Warn("close publisher", "err", err)
	}
	if rc, ok := a.cache.(*product.RedisCache); ok {
		_ = rc.Close()
	}
	a.audit.Close()
	if err := a.gw.Close(); err != nil {
		a.log.Warn("close database", "err", err)
	}
}
