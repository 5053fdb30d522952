package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/virtualrange/weaponsim/internal/api"
	"github.com/virtualrange/weaponsim/internal/cache"
	"github.com/virtualrange/weaponsim/internal/config"
	"github.com/virtualrange/weaponsim/internal/dispatcher"
	"github.com/virtualrange/weaponsim/internal/influx"
	"github.com/virtualrange/weaponsim/internal/logging"
	"github.com/virtualrange/weaponsim/internal/monitor"
	intOtel "github.com/virtualrange/weaponsim/internal/otel"
	"github.com/virtualrange/weaponsim/internal/parser"
	"github.com/virtualrange/weaponsim/internal/scenario"
	"github.com/virtualrange/weaponsim/internal/session"
	"github.com/virtualrange/weaponsim/internal/sim"
	"github.com/virtualrange/weaponsim/internal/storage"
	"github.com/virtualrange/weaponsim/internal/util"
	"github.com/virtualrange/weaponsim/internal/worker"
	"github.com/virtualrange/weaponsim/pkg/hostbridge"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.0.1"
	BuildDate      string = "unknown"
)

// file paths
var (
	// ConfigDir is where weaponsim.cfg.json is looked up.
	ConfigDir string

	LogFilePath string
	LogFile     *os.File
)

// global services
var (
	SlogManager *logging.SlogManager
	Logger      *slog.Logger

	OTelProvider *intOtel.Provider

	WeaponCache   *cache.WeaponCache   = cache.NewWeaponCache()
	MagazineCache *cache.MagazineCache = cache.NewMagazineCache()

	SessionStartTime time.Time = time.Now()

	// hostVersion is reported by the host via :HOST:VERSION:
	hostVersion string = "unknown"

	// Services
	eventDispatcher *dispatcher.Dispatcher
	parserService   parser.Service
	workerManager   *worker.Manager
	sessionManager  *session.Manager
	monitorService  *monitor.Service
	influxManager   *influx.Manager
	storageBackend  storage.Backend
	engine          *sim.Engine
	loop            *sim.Loop
	bridge          *hostbridge.Bridge

	storageInitOnce sync.Once
)

func setup() error {
	var err error

	exe, err := os.Executable()
	if err != nil {
		ConfigDir = "."
	} else {
		ConfigDir = filepath.Dir(exe)
	}

	// Initialize slog manager with initial config
	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(nil, viper.GetString("logLevel"), nil)
	Logger = SlogManager.Logger()

	if err = config.Load(ConfigDir); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config")
	}

	// create logs dir if it doesn't exist
	if _, err := os.Stat(viper.GetString("logsDir")); os.IsNotExist(err) {
		os.Mkdir(viper.GetString("logsDir"), 0755)
	}

	LogFilePath = filepath.Join(
		viper.GetString("logsDir"),
		fmt.Sprintf("weaponsim.%s.log", SessionStartTime.Format("20060102_150405")),
	)
	LogFile, err = os.OpenFile(LogFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		Logger.Error("Failed to create/open log file!", "error", err, "path", LogFilePath)
	}

	// Initialize OTel provider if enabled (after log file is created)
	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		OTelProvider, err = intOtel.New(intOtel.Config{
			Enabled:      otelCfg.Enabled,
			ServiceName:  otelCfg.ServiceName,
			BatchTimeout: otelCfg.BatchTimeout,
			LogWriter:    LogFile,
			Endpoint:     otelCfg.Endpoint,
			Insecure:     otelCfg.Insecure,
		})
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
		} else {
			Logger.Info("OTel provider initialized", "file", LogFilePath, "endpoint", otelCfg.Endpoint)
		}
	}

	// Re-setup logging with file output, optional OTel, optional GELF
	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}
	var extraHandlers []slog.Handler
	if viper.GetBool("graylog.enabled") {
		gelfHandler, err := logging.NewGelfHandler(viper.GetString("graylog.address"), viper.GetString("logLevel"))
		if err != nil {
			Logger.Error("Failed to initialize GELF handler", "error", err)
		} else {
			extraHandlers = append(extraHandlers, gelfHandler)
		}
	}
	SlogManager.Setup(LogFile, viper.GetString("logLevel"), otelLogProvider, extraHandlers...)
	Logger = SlogManager.Logger()
	Logger.Info("Logging to file", "path", LogFilePath)

	eventDispatcher, err = dispatcher.New(Logger)
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	registerLifecycleHandlers(eventDispatcher)

	bridge = hostbridge.New(CurrentVersion, eventDispatcher, 64)
	Logger.Info("Host bridge initialized", "version", CurrentVersion)

	return nil
}

// registerLifecycleHandlers registers system/lifecycle command handlers
// with the dispatcher. These work before storage is initialized.
func registerLifecycleHandlers(d *dispatcher.Dispatcher) {
	d.Register(":INIT:", func(e dispatcher.Event) (any, error) {
		go func() {
			bridge.Write(":EXT:READY:")
			bridge.Write(":VERSION:", CurrentVersion)
		}()
		return "ok", nil
	})

	d.Register(":INIT:STORAGE:", func(e dispatcher.Event) (any, error) {
		go func() {
			if err := initStorage(); err != nil {
				Logger.Error("Storage initialization failed", "error", err)
			}
		}()
		return "ok", nil
	})

	d.Register(":VERSION:", func(e dispatcher.Event) (any, error) {
		return []string{CurrentVersion, BuildDate}, nil
	})

	d.Register(":GETDIR:LOG:", func(e dispatcher.Event) (any, error) {
		return LogFilePath, nil
	})

	d.Register(":HOST:VERSION:", func(e dispatcher.Event) (any, error) {
		if len(e.Args) > 0 {
			hostVersion = util.FixEscapeQuotes(util.TrimQuotes(e.Args[0]))
			Logger.Info("Host version", "version", hostVersion)
		}
		return "ok", nil
	})

	d.Register(":LOG:", func(e dispatcher.Event) (any, error) {
		if len(e.Args) >= 3 {
			SlogManager.WriteLog(e.Args[0], e.Args[1], e.Args[2])
		}
		return "ok", nil
	})
}

func checkServerStatus() {
	client := api.New(viper.GetString("api.serverUrl"), viper.GetString("api.apiKey"))
	if err := client.Healthcheck(); err != nil {
		Logger.Info("Review frontend is offline")
	} else {
		Logger.Info("Review frontend is online")
	}
}

// drainCallbacks logs host callbacks when no embedding host is attached,
// standing in for the host's own drain loop.
func drainCallbacks(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cb := <-bridge.Callbacks():
			Logger.Info("Host callback", "command", cb.Command, "data", cb.Data)
		}
	}
}

func runScenario(path string) error {
	if err := initStorage(); err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	sc, err := scenario.Load(path)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go loop.Run(ctx)
	go drainCallbacks(ctx)

	runner := scenario.NewRunner(eventDispatcher, loop, Logger)
	if err := runner.Run(ctx, sc); err != nil {
		return err
	}

	return shutdown()
}

func serve() error {
	if err := initStorage(); err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go loop.Run(ctx)
	go drainCallbacks(ctx)

	checkServerStatus()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	Logger.Info("Shutting down", "signal", s.String())

	cancel()
	return shutdown()
}

func shutdown() error {
	if monitorService != nil {
		monitorService.Stop()
	}
	if OTelProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := OTelProvider.Shutdown(ctx); err != nil {
			Logger.Warn("Failed to shut down OTel provider", "error", err)
		}
	}
	if storageBackend != nil {
		if err := storageBackend.Close(); err != nil {
			return fmt.Errorf("failed to close storage backend: %w", err)
		}
	}
	return nil
}

func main() {
	if err := setup(); err != nil {
		fmt.Fprintf(os.Stderr, "setup failed: %v\n", err)
		os.Exit(1)
	}
	Logger.Info("Starting up...", "version", CurrentVersion, "build", BuildDate)

	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Println("usage: weaponsim <serve|scenario <file.json>|healthcheck|version>")
		return
	}

	var err error
	switch args[0] {
	case "serve":
		err = serve()
	case "scenario":
		if len(args) < 2 {
			err = fmt.Errorf("no scenario file provided")
			break
		}
		err = runScenario(args[1])
	case "healthcheck":
		client := api.New(viper.GetString("api.serverUrl"), viper.GetString("api.apiKey"))
		if err = client.Healthcheck(); err == nil {
			fmt.Println("Review frontend is online")
		}
	case "version":
		fmt.Printf("weaponsim %s (%s)\n", CurrentVersion, BuildDate)
	default:
		err = fmt.Errorf("unknown command %q", args[0])
	}

	if err != nil {
		Logger.Error("Command failed", "error", err)
		os.Exit(1)
	}
}
