package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"brewlink/internal/handlers"
	"brewlink/internal/logger"
	"brewlink/internal/models"
	"brewlink/internal/replay"
	"brewlink/internal/repository"
	"brewlink/internal/server"
	"brewlink/internal/service"
	"brewlink/internal/session"
	"brewlink/internal/telemetry"

	"github.com/spf13/viper"
)

func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)

	// load config.yml
	if err := loadConfig(); err != nil {
		log.Fatalw("error reading config", "err", err)
	}

	// open DB
	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire the live-data pipeline
	repos := repository.NewRepository(db)
	acc := session.NewAccumulator(viper.GetInt("chart.max_points"), log)
	engine := replay.NewEngine(
		viper.GetDuration("replay.tick"),
		viper.GetDuration("replay.grace"),
		log,
	)
	client := telemetry.NewClient(telemetry.Config{
		URL:          viper.GetString("machine.ws_url"),
		StaleTimeout: viper.GetDuration("telemetry.stale_timeout"),
		BackoffBase:  viper.GetDuration("telemetry.backoff_base"),
		BackoffCap:   viper.GetDuration("telemetry.backoff_cap"),
	}, log)
	recorder := service.NewSessionRecorder(repos.Events, repos.Shots, log)

	// Both producers feed the accumulator; the recorder tracks which one a
	// completed session came from so replays are not re-archived.
	var fromReplay atomic.Bool
	client.Notify(func(models.MachineState) { fromReplay.Store(false) })
	client.Notify(acc.Observe)
	client.Notify(recorder.ObserveState)
	engine.Notify(func(models.MachineState) { fromReplay.Store(true) })
	engine.Notify(acc.Observe)
	acc.OnComplete(func(sum models.ShotSummary, points []models.ChartPoint) {
		if fromReplay.Load() {
			return
		}
		recorder.OnSessionComplete(sum, points)
	})

	services := service.NewService(service.Deps{
		Repos:       repos,
		Client:      client,
		Accumulator: acc,
		Engine:      engine,
		MachineURL:  viper.GetString("machine.api_url"),
		Log:         log,
	})
	apiHandler := handlers.NewHandler(services, log)

	// start the machine feed
	client.Connect(true)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(srv, log, func(ctx context.Context) {
		client.Disable()
		services.Replay.Stop(ctx)
		recorder.Close()
	})
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "brewlink.db")
		dbPath = "brewlink.db"
	}
	return repository.InitDB(dbPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(srv *server.Server, log *logger.Logger, stopPipeline func(context.Context)) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// stop producers before the persistence worker so no event is lost
	stopPipeline(ctx)

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
