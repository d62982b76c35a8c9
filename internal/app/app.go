package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"procurement/internal/config"
	"procurement/internal/controller"
	"procurement/internal/repository"
	"procurement/internal/repository/memory"
	"procurement/internal/router"
	"procurement/internal/service"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type App struct {
	store      repository.Store
	service    *service.Service
	controller *controller.Controller
	log        *zap.Logger
	stopSig    chan os.Signal
	cfg        *config.Config

	Done chan struct{}
}

type option func(*App)

func WithConfig(cfg *config.Config) option {
	return func(app *App) {
		app.cfg = cfg
	}
}

func WithLogger(log *zap.Logger) option {
	return func(app *App) {
		app.log = log
	}
}

func NewApp(opts ...option) (*App, error) {
	var err error

	app := &App{
		stopSig: make(chan os.Signal, 2),
		Done:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.cfg == nil {
		cfg, err := config.NewConfig()
		if err != nil {
			return nil, err
		}
		app.cfg = cfg
	}

	if app.log == nil {
		app.log, err = NewLogger(app.cfg.LogLevel, app.cfg.LogFormat)
		if err != nil {
			return nil, err
		}
	}

	switch app.cfg.StoreDriver {
	case "memory":
		app.store = memory.NewStore()
	default:
		app.store, err = repository.NewRepository(nil, &app.cfg.PostgresConfig, app.log.Named("repository"))
		if err != nil {
			return nil, err
		}
	}

	app.service = service.NewService(app.store,
		service.WithLogger(app.log.Named("service")),
		service.WithDeliveryLeadDays(app.cfg.DeliveryLeadDays),
	)
	app.controller = controller.NewController(app.service, app.log.Named("controller"))

	return app, nil
}

// NewLogger builds a development logger for console output and a production one for json.
func NewLogger(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("app.NewLogger: %w", err)
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("app.NewLogger: %w", err)
	}
	return log, nil
}

func (app *App) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		signal.Notify(app.stopSig, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		sig := <-app.stopSig
		app.log.Info("received signal", zap.Stringer("signal", sig))
		cancel()
	}()

	server := http.Server{
		Addr:         app.cfg.ServerAddress,
		Handler:      router.NewRouter(app.controller),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			app.log.Error("http server error", zap.Error(err))
		}
	}()

	app.log.Info("server started, listening for connections",
		zap.String("address", app.cfg.ServerAddress),
		zap.String("store", app.cfg.StoreDriver),
	)
	<-ctx.Done()

	timeout, tcancel := context.WithTimeout(context.Background(), time.Second*10)
	defer tcancel()
	app.log.Info("shutting down http server")
	server.Shutdown(timeout)

	app.log.Info("closing store")
	err := app.store.Close()
	if err != nil {
		app.log.Error("store closing error", zap.Error(err))
	}

	close(app.Done)
	app.log.Info("exiting app")
	_ = app.log.Sync()
}
