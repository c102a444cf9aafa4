package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sterilizer_control/internal/controller"
	"sterilizer_control/internal/handlers"
	"sterilizer_control/internal/logger"
	"sterilizer_control/internal/metrics"
	"sterilizer_control/internal/models"
	"sterilizer_control/internal/port"
	"sterilizer_control/internal/repository"
	"sterilizer_control/internal/server"
	"sterilizer_control/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
)

const defaultSimTick = 1 * time.Second

func main() {
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(viper.GetString("log_level"))

	conn, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		log.Fatalw("failed to register metrics", "err", err)
	}

	// wire dependencies
	repos := repository.NewRepository(conn)
	backend := port.NewSimulation()
	ctrl := controller.New(backend, loadPrograms(log), service.NewAuditRecorder(repos), log)
	services := service.NewService(ctrl, backend, repos, service.AuthConfig{
		SigningKey: viper.GetString("auth.signing_key"),
		TokenTTL:   time.Duration(viper.GetInt("auth.token_ttl_minutes")) * time.Minute,
	}, log)
	apiHandler := handlers.NewHandler(services, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go services.Runner.Run(ctx, simTick())

	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// loadPrograms reads the cycle templates from configuration.
func loadPrograms(log *logger.Logger) []models.ProgramConfig {
	var programs []models.ProgramConfig
	if err := viper.UnmarshalKey("programs", &programs); err != nil {
		log.Fatalw("invalid programs config", "err", err)
	}
	if len(programs) == 0 {
		log.Warnw("no programs configured; cycles cannot be started")
	}
	return programs
}

func simTick() time.Duration {
	if s := viper.GetFloat64("sim_tick_seconds"); s > 0 {
		return time.Duration(s * float64(time.Second))
	}
	return defaultSimTick
}

// openDB initializes the SQLite audit database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "sterilizer.db")
		dbPath = "sterilizer.db"
	}
	return repository.InitDB(dbPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, httpPort string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if httpPort == "" {
			httpPort = "8080"
		}
		if err := srv.Run(httpPort, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and stops everything.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
