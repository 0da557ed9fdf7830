package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/treasurehunt/TreasureHuntAI/internal/config"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/rules"
	"github.com/treasurehunt/TreasureHuntAI/internal/grpc/gameserver"
	"github.com/treasurehunt/TreasureHuntAI/internal/monitoring"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to config file")
	port := flag.Int("port", -1, "The server port (-1 to use config default)")
	host := flag.String("host", "", "The server host (empty to use config default)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	maxGames := flag.Int("max-games", -1, "Games kept before the oldest is evicted (-1 to use config default)")
	seed := flag.Int64("seed", 0, "Seed for game ids and treasure placement (0 for time based)")
	enableReflection := flag.Bool("enable-reflection", false, "Enable gRPC reflection for debugging")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	if err := config.LoadEnvironmentConfig(os.Getenv("APP_ENV")); err != nil {
		log.Fatal().Err(err).Msg("Failed to load environment config")
	}
	cfg := config.Get()

	// Use config defaults if not overridden by flags
	if *port == -1 {
		*port = cfg.Server.GRPCServer.Port
	}
	if *host == "" {
		*host = cfg.Server.GRPCServer.Host
	}
	if *logLevel == "" {
		*logLevel = cfg.Server.GRPCServer.LogLevel
	}
	if *maxGames == -1 {
		*maxGames = cfg.Server.GRPCServer.MaxGames
	}
	if !*enableReflection {
		*enableReflection = cfg.Server.GRPCServer.EnableReflection
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	config.SetupLogging(*logLevel, cfg.Logging.Format)

	if config.ConfigFilePath() != "" {
		config.WatchConfig(func(err error) {
			if err != nil {
				log.Error().Err(err).Msg("Config reload rejected, keeping previous values")
				return
			}
			level, perr := zerolog.ParseLevel(config.Get().Server.GRPCServer.LogLevel)
			if perr == nil {
				zerolog.SetGlobalLevel(level)
			}
			log.Info().Str("file", config.ConfigFilePath()).Msg("Config reloaded")
		})
	}

	log.Info().
		Int("port", *port).
		Str("host", *host).
		Int("max_games", *maxGames).
		Int("max_turns", cfg.Game.Match.MaxTurns).
		Int64("seed", *seed).
		Msg("Starting gRPC game server")

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", *host, *port))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to listen")
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			gameserver.UnaryLoggingInterceptor(log.Logger),
			gameserver.UnaryRecoveryInterceptor(log.Logger),
		),
	)

	gameManager := gameserver.NewGameManager(*maxGames, log.Logger,
		gameserver.WithRand(rand.New(rand.NewSource(*seed))),
		gameserver.WithMaxTurns(cfg.Game.Match.MaxTurns),
		gameserver.WithValidator(rules.NewValidator(rules.LimitsFromConfig(cfg.Game.Map, cfg.Game.Rules), log.Logger)),
	)
	defer gameManager.Close()
	gameserver.RegisterGameServiceServer(grpcServer, gameserver.NewServer(gameManager, log.Logger))

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(gameserver.GameServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	if *enableReflection {
		reflection.Register(grpcServer)
		log.Info().Msg("gRPC reflection enabled")
	}

	monitor := monitoring.NewGoroutineMonitor(log.Logger, 0, 0)
	monitor.Watch("active_games", gameManager.ActiveGames)
	monitor.Start()
	defer monitor.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

		healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		healthServer.SetServingStatus(gameserver.GameServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

		// Give ongoing requests time to complete
		time.Sleep(time.Duration(config.Get().Server.GRPCServer.GracefulShutdownDelay) * time.Second)

		log.Info().Msg("Gracefully stopping gRPC server")
		grpcServer.GracefulStop()
		cancel()
	}()

	log.Info().Str("address", lis.Addr().String()).Msg("gRPC server listening")

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("Failed to serve")
		}
	}()

	<-ctx.Done()
	log.Info().
		Int("active_games", gameManager.ActiveGames()).
		Msg("Server shutdown complete")
}
