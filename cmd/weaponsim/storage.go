package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/virtualrange/weaponsim/internal/api"
	"github.com/virtualrange/weaponsim/internal/config"
	"github.com/virtualrange/weaponsim/internal/influx"
	"github.com/virtualrange/weaponsim/internal/monitor"
	"github.com/virtualrange/weaponsim/internal/parser"
	"github.com/virtualrange/weaponsim/internal/session"
	"github.com/virtualrange/weaponsim/internal/sim"
	"github.com/virtualrange/weaponsim/internal/storage/factory"
	"github.com/virtualrange/weaponsim/internal/worker"
)

// initStorage builds the storage backend and everything downstream of it:
// session manager, engine, loop, worker handlers, and the status monitor.
// Safe to call more than once; only the first call does the work.
func initStorage() error {
	var initErr error
	storageInitOnce.Do(func() {
		initErr = doInitStorage()
	})
	return initErr
}

func doInitStorage() error {
	cfg := config.GetStorageConfig()
	Logger.Info("Initializing storage backend", "type", cfg.Type)

	backend, err := factory.NewBackend(cfg, WeaponCache, SlogManager)
	if err != nil {
		return fmt.Errorf("failed to create storage backend: %w", err)
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize storage backend: %w", err)
	}
	storageBackend = backend

	parserService = parser.NewParser(Logger, hostVersion, CurrentVersion)

	sessionManager = session.NewManager(session.Dependencies{
		WeaponCache:   WeaponCache,
		MagazineCache: MagazineCache,
		LogManager:    SlogManager,
		ParserService: parserService,
	}, storageBackend, Logger)
	sessionManager.SetCallback(bridge)
	if viper.GetString("api.serverUrl") != "" {
		sessionManager.SetUploader(api.New(viper.GetString("api.serverUrl"), viper.GetString("api.apiKey")))
	}

	engine = sim.NewEngine(nil, sessionManager, sessionManager, Logger)
	sessionManager.SetEngine(engine)

	simCfg := config.GetSimConfig()
	loop, err = sim.NewLoop(engine, sim.Config{
		TickRate:        simCfg.TickRate,
		CommandCapacity: simCfg.CommandBuffer,
	}, sim.Hooks{
		AfterTick: func(r sim.TickResult) {
			if monitorService != nil {
				monitorService.ObserveTick(r)
			}
		},
	}, Logger)
	if err != nil {
		return fmt.Errorf("failed to create tick loop: %w", err)
	}

	workerManager = worker.NewManager(worker.Dependencies{
		WeaponCache:   WeaponCache,
		MagazineCache: MagazineCache,
		LogManager:    SlogManager,
		ParserService: parserService,
	}, storageBackend, loop)

	if viper.GetBool("influx.enabled") {
		if err := initInflux(); err != nil {
			Logger.Error("Failed to connect to InfluxDB, metrics disabled", "error", err)
		}
	}

	workerManager.RegisterHandlers(eventDispatcher)
	sessionManager.RegisterHandlers(eventDispatcher)

	monitorService = monitor.NewService(monitor.Dependencies{
		LogManager:     SlogManager,
		SessionManager: sessionManager,
		WorkerManager:  workerManager,
		StatusDir:      viper.GetString("logsDir"),
	}, storageBackend)
	if influxManager != nil {
		monitorService.SetPerfWriter(influxManager)
	}
	if err := monitorService.Start(); err != nil {
		Logger.Error("Failed to start status monitor", "error", err)
	}

	bridge.Write(":STORAGE:OK:", cfg.Type)
	Logger.Info("Storage initialized", "type", cfg.Type)
	return nil
}

// initInflux connects the metric pipeline. Points that cannot reach the
// server are gzipped to the backup directory instead of being dropped.
func initInflux() error {
	backupDir := filepath.Join(viper.GetString("logsDir"), "influx_backup")
	if _, err := os.Stat(backupDir); os.IsNotExist(err) {
		os.Mkdir(backupDir, 0755)
	}

	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	m := influx.NewManager(zlog, backupDir)
	if err := m.Connect(); err != nil {
		return err
	}
	m.CreateWriters()
	influxManager = m

	workerManager.SetMetricWriter(influxManager)
	Logger.Info("InfluxDB metric pipeline connected")
	return nil
}
