package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/reflection"

	grpcAdapter "github.com/quentinrf/plant-monitor/services/apds-service/internal/adapters/grpc"
	"github.com/quentinrf/plant-monitor/services/apds-service/internal/adapters/hardware"
	"github.com/quentinrf/plant-monitor/services/apds-service/internal/adapters/memory"
	"github.com/quentinrf/plant-monitor/services/apds-service/internal/adapters/mock"
	"github.com/quentinrf/plant-monitor/services/apds-service/internal/adapters/mysql"
	"github.com/quentinrf/plant-monitor/services/apds-service/internal/adapters/sqlite"
	"github.com/quentinrf/plant-monitor/services/apds-service/internal/config"
	"github.com/quentinrf/plant-monitor/services/apds-service/internal/domain"
	"github.com/quentinrf/plant-monitor/services/apds-service/internal/ports"
	"github.com/quentinrf/plant-monitor/services/apds-service/pkg/pb"
	"github.com/quentinrf/plant-monitor/services/apds-service/pkg/tlsconfig"
)

func main() {
	// Initialize logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Read configuration from environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	log.Info().
		Str("driver", cfg.DriverType).
		Str("schedule", cfg.Schedule.String()).
		Msg("starting apds service")

	// Initialize repository
	var repo domain.ReadingRepository
	switch cfg.RepoType {
	case "sqlite":
		r, err := sqlite.NewReadingRepository(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("db_path", cfg.DBPath).Msg("failed to open SQLite database")
		}
		defer r.Close()
		repo = r
		log.Info().Str("db_path", cfg.DBPath).Msg("initialized SQLite repository")
	case "mysql":
		r, err := mysql.NewReadingRepository(cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to MySQL")
		}
		defer r.Close()
		repo = r
		log.Info().Msg("initialized MySQL repository")
	default:
		repo = memory.NewReadingRepository()
		log.Info().Msg("initialized in-memory repository")
	}

	// Initialize sensor driver
	driver, err := openDriver(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DriverType).Msg("failed to open sensor driver")
	}
	defer driver.Close()

	// Readings go to the console and to storage
	recorder := ports.NewRecorder(repo, cfg.Retention)
	sink := ports.Sinks{ports.NewConsoleSink(os.Stdout), recorder}

	session := ports.NewSession(driver, sink, cfg.SessionOptions()...)
	if err := session.Start(cfg.Schedule); err != nil {
		log.Fatal().Err(err).Msg("failed to start sensor session")
	}

	// Configure TLS if certificates are provided
	var serverOpts []grpc.ServerOption
	if cfg.TLS.Enabled() {
		tlsCfg, err := tlsconfig.LoadServerTLS(cfg.TLS)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load TLS config")
		}
		serverOpts = append(serverOpts, grpc.Creds(credentials.NewTLS(tlsCfg)))
		log.Info().Msg("mTLS enabled")
	} else {
		log.Warn().Msg("TLS_CERT not set, starting without TLS (dev mode only)")
	}

	// Create gRPC server
	grpcServer := grpc.NewServer(serverOpts...)
	pb.RegisterSensorServiceServer(grpcServer, grpcAdapter.NewSensorServiceHandler(repo, session))

	// Enable gRPC reflection for grpcurl testing
	reflection.Register(grpcServer)

	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.Port))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to listen")
	}

	log.Info().Str("port", cfg.Port).Str("session", session.ID()).Msg("gRPC server listening")

	go func() {
		if err := grpcServer.Serve(listener); err != nil {
			log.Fatal().Err(err).Msg("failed to serve")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	recorderDone := make(chan struct{})
	go func() {
		recorder.Start(ctx)
		close(recorderDone)
	}()

	// Run the schedule until it completes or we are interrupted
	runDone := make(chan error, 1)
	go func() {
		runDone <- session.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info().Msg("shutting down server...")
		cancel()
		<-runDone
	case err := <-runDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("sensor session failed")
		}
		log.Info().Msg("sensor session finished, history stays available until interrupted")
		<-quit
		log.Info().Msg("shutting down server...")
		cancel()
	}

	// Graceful shutdown
	grpcServer.GracefulStop()
	<-recorderDone

	log.Info().Msg("server stopped")
}

// openDriver builds the configured sensor driver
func openDriver(cfg config.Config) (ports.SensorDriver, error) {
	switch cfg.DriverType {
	case "periph":
		bus, err := hardware.OpenPeriphBus(cfg.I2CBus)
		if err != nil {
			return nil, err
		}
		log.Info().Str("bus", cfg.I2CBus).Msg("initialized APDS-9960 on I2C bus")
		return hardware.NewDriver(bus), nil
	case "ch347":
		bus, err := hardware.OpenCH347Bus()
		if err != nil {
			return nil, err
		}
		log.Info().Msg("initialized APDS-9960 on CH347 bridge")
		return hardware.NewDriver(bus), nil
	default:
		log.Info().Msg("initialized mock sensor")
		return mock.NewFakeDriver(500, 100, 0.05), nil // 500±100 counts, a gesture every ~2s at 100ms polls
	}
}
