package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZiglerOllydbg/ra2-sub003/internal/engine"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/infrastructure/storage"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/server"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/version"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/logger"
)

func init() {
	logger.Init()
}

func main() {
	// 1. Парсинг конфигурации
	var seed int64
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to YAML config")
	// Читаем флаг -seed. По умолчанию 0 (значит хост выберет зерно сам).
	flag.Int64Var(&seed, "seed", 0, "Master seed for every match (0 for random)")
	flag.Parse()

	cfg := engine.NewConfig()
	if configPath != "" {
		loaded, err := engine.LoadConfig(configPath)
		if err != nil {
			logger.Log.Fatal("Failed to load config: ", err)
		}
		cfg = loaded
	}
	if seed != 0 {
		cfg.Match.Seed = seed
	}
	if port := os.Getenv("CD_PORT"); port != "" {
		cfg.Server.Port = port
	}
	logger.Configure(cfg.Log.Level, cfg.Log.Format)

	logger.Log.Info("Starting RA2 lockstep relay...")
	logger.Log.Info(version.String())
	if cfg.Match.Seed != 0 {
		logger.Log.Infof("Using explicit master seed: %d", cfg.Match.Seed)
	}

	// 2. Хранилище реплеев (пустой replay_dir — без записи)
	var sink server.ReplaySink
	if cfg.Storage.ReplayDir != "" {
		replays, err := storage.NewReplayService(cfg.Storage.ReplayDir)
		if err != nil {
			logger.Log.Fatal("Failed to prepare replay dir: ", err)
		}
		archive := &storage.Archive{Replays: replays}
		if cfg.Storage.IndexDB != "" {
			index, err := storage.OpenIndex(cfg.Storage.IndexDB)
			if err != nil {
				logger.Log.Fatal("Failed to open replay index: ", err)
			}
			defer index.Close()
			archive.Index = index
		}
		sink = archive
	}

	// 3. Лобби и сервер
	ctx, cancel := context.WithCancel(context.Background())
	lobby := server.NewLobby(ctx, cfg.Match, sink)
	srv := server.New(lobby, cfg.Server.Port)

	go func() {
		if err := srv.Run(); err != nil {
			logger.Log.Fatal("Server start error: ", err)
		}
	}()

	// Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Log.Info("Shutting down...")

	// Матчи останавливаются и сохраняют реплеи
	cancel()
	lobby.Wait()

	logger.Log.Info("Done.")
}
