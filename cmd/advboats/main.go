// Command advboats builds the shared library loaded by the fleet simulation
// host:
//
//	go build -buildmode=c-shared -o libsailnavsim_advancedboats.so ./cmd/advboats
package main

import "C" // required for -buildmode=c-shared

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/sailnavsim/advancedboats/internal/config"
	"github.com/sailnavsim/advancedboats/internal/dispatcher"
	"github.com/sailnavsim/advancedboats/internal/fleet"
	"github.com/sailnavsim/advancedboats/internal/handlers"
	"github.com/sailnavsim/advancedboats/internal/logging"
	intOtel "github.com/sailnavsim/advancedboats/internal/otel"
	"github.com/sailnavsim/advancedboats/internal/registry"
	"github.com/sailnavsim/advancedboats/internal/trace"
	"github.com/sailnavsim/advancedboats/pkg/hostinterface"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion = "0.1.0"
	BuildDate      = "unknown"

	LibraryName = "advboats"
)

// file paths
var (
	// ModulePath is the absolute path to this library file.
	ModulePath string

	// ModuleFolder holds the config file and is the base for relative paths.
	ModuleFolder string

	LogFilePath string
	LogFile     *os.File
)

// global variables
var (
	SlogManager  *logging.SlogManager
	Logger       *slog.Logger
	OTelProvider *intOtel.Provider

	Registry    *registry.Registry
	Stepper     *fleet.Stepper
	TraceWriter *trace.Writer

	SessionStartTime = time.Now()
)

// init is run automatically when the library is loaded
func init() {
	ModulePath = hostinterface.GetModulePath()
	if ModulePath != "" {
		ModuleFolder = filepath.Dir(ModulePath)
	} else {
		ModuleFolder, _ = os.Getwd()
	}

	Registry = registry.New()

	SlogManager = logging.NewSlogManager(LibraryName, logContext)
	SlogManager.Setup(nil, "info", nil)
	Logger = SlogManager.Logger()

	if err := config.Load(ModuleFolder); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config")
	}

	setupLogging()

	if err := setupHostInterface(); err != nil {
		Logger.Error("Failed to set up host interface!", "error", err)
		panic(err)
	}
	Logger.Info("Host interface ready", "version", CurrentVersion)
}

// logContext adds live fleet state to every log record.
func logContext(context.Context) []slog.Attr {
	attrs := []slog.Attr{slog.Int("boats", Registry.Len())}
	if Stepper != nil {
		attrs = append(attrs, slog.Uint64("tick", Stepper.Tick()))
	}
	return attrs
}

// resolve anchors relative config paths at the library folder.
func resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(ModuleFolder, p)
}

func setupLogging() {
	logsDir := resolve(viper.GetString("logsDir"))

	var err error
	LogFile, LogFilePath, err = logging.OpenLogFile(logsDir, LibraryName, SessionStartTime)
	if err != nil {
		Logger.Error("Failed to create/open log file!", "error", err, "dir", logsDir)
		return
	}
	Logger.Info("Begin logging in logs directory", "path", LogFilePath)

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		metricsFile, _, err := logging.OpenLogFile(logsDir, LibraryName+".metrics", SessionStartTime)
		if err != nil {
			Logger.Error("Failed to open metrics file", "error", err)
		}

		cfg := intOtel.Config{
			Enabled:        otelCfg.Enabled,
			ServiceName:    otelCfg.ServiceName,
			BatchTimeout:   otelCfg.BatchTimeout,
			MetricInterval: otelCfg.MetricInterval,
			LogWriter:      LogFile,
			Endpoint:       otelCfg.Endpoint,
			Insecure:       otelCfg.Insecure,
		}
		if metricsFile != nil {
			cfg.MetricWriter = metricsFile
		}

		OTelProvider, err = intOtel.New(cfg)
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
		} else {
			Logger.Info("OTel provider initialized", "file", LogFilePath, "endpoint", otelCfg.Endpoint)
		}
	}

	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}
	SlogManager.Setup(LogFile, viper.GetString("logLevel"), otelLogProvider)
	Logger = SlogManager.Logger()
	Logger.Info("Logging to file", "path", LogFilePath)
}

func setupHostInterface() error {
	hostinterface.SetVersion(CurrentVersion)

	d, err := dispatcher.New(Logger)
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}

	var opts []fleet.Option
	if tc := config.GetTraceConfig(); tc.Enabled {
		TraceWriter, err = trace.Create(resolve(tc.OutputDir))
		if err != nil {
			Logger.Error("Failed to create step trace, tracing disabled", "error", err)
		} else if TraceWriter != nil {
			opts = append(opts, fleet.WithSink(TraceWriter))
			Logger.Info("Tracing fleet steps", "dir", resolve(tc.OutputDir))
		}
	}

	fc := config.GetFleetConfig()
	Stepper, err = fleet.New(Registry, fleet.Config{
		Workers:           fc.Workers,
		ParallelThreshold: fc.ParallelThreshold,
	}, Logger, opts...)
	if err != nil {
		return fmt.Errorf("failed to create fleet stepper: %w", err)
	}

	handlers.NewService(handlers.Dependencies{
		Registry:         Registry,
		Fleet:            Stepper,
		Logger:           Logger,
		WriteLog:         SlogManager.WriteLog,
		ExtensionVersion: CurrentVersion,
		BuildDate:        BuildDate,
	}).Register(d)
	registerLifecycleHandlers(d)

	hostinterface.SetDispatcher(d)
	return nil
}

// registerLifecycleHandlers registers commands that touch process-wide state.
func registerLifecycleHandlers(d *dispatcher.Dispatcher) {
	d.Register(":GETDIR:MODULE:", func(e dispatcher.Event) (any, error) {
		return ModulePath, nil
	})

	d.Register(":GETDIR:LOG:", func(e dispatcher.Event) (any, error) {
		return LogFilePath, nil
	})

	// :FLUSH: is sent by the host before it exits or saves.
	d.Register(":FLUSH:", func(e dispatcher.Event) (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if OTelProvider != nil {
			if err := OTelProvider.Flush(ctx); err != nil {
				Logger.Warn("Failed to flush OTel data", "error", err)
				return nil, err
			}
		}
		if err := SlogManager.Flush(ctx); err != nil {
			return nil, err
		}
		return "ok", nil
	}, dispatcher.Logged())

	// :SHUTDOWN: releases files and exporters; the library stays loaded but
	// later commands only log to whatever handlers remain.
	d.Register(":SHUTDOWN:", func(e dispatcher.Event) (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		Logger.Info("Shutting down", "tick", Stepper.Tick())
		if err := TraceWriter.Close(); err != nil {
			Logger.Error("Failed to close step trace", "error", err)
		}
		if OTelProvider != nil {
			if err := OTelProvider.Shutdown(ctx); err != nil {
				return nil, err
			}
		}
		return "ok", nil
	})
}

func main() {}
