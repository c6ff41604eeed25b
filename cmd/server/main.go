package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/propbind/internal/application"
	"github.com/eugenenazirov/propbind/internal/catalog"
	"github.com/eugenenazirov/propbind/internal/logging"
	"github.com/eugenenazirov/propbind/internal/settings"
)

var signalNotify = signal.Notify

type cliFlags struct {
	configFiles    *[]string
	set            *map[string]string
	port           *string
	logLevel       *string
	rateLimitRPS   *float64
	rateLimitBurst *int
}

func newApp() (*kingpin.Application, *cliFlags) {
	app := kingpin.New("propbind-server", "Serves resolved configuration, message bundles and privileges to clients")
	flags := &cliFlags{
		configFiles:    app.Flag("config", "Path to a .properties or YAML file, or a directory of them (repeatable)").Strings(),
		set:            app.Flag("set", "Override a property, e.g. --set web.ui.theme=dark (repeatable)").StringMap(),
		port:           app.Flag("port", "HTTP port exposed by the service").String(),
		logLevel:       app.Flag("log-level", "Log level (debug, info, warn, error)").String(),
		rateLimitRPS:   app.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64(),
		rateLimitBurst: app.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int(),
	}
	return app, flags
}

func (f *cliFlags) overrides() *settings.CLIOverrides {
	overrides := &settings.CLIOverrides{
		ConfigFiles: *f.configFiles,
		Set:         *f.set,
	}
	if *f.port != "" {
		overrides.Port = f.port
	}
	if *f.rateLimitRPS >= 0 {
		overrides.RateLimitRPS = f.rateLimitRPS
	}
	if *f.rateLimitBurst >= 0 {
		overrides.RateLimitBurst = f.rateLimitBurst
	}
	return overrides
}

func main() {
	kingpinApp, flags := newApp()
	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	boot, err := settings.LoadBootstrap()
	if err != nil {
		panic(fmt.Sprintf("failed to read bootstrap environment: %v", err))
	}
	if *flags.logLevel != "" {
		boot.LogLevel = *flags.logLevel
	}

	logger, err := logging.New(boot.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	server, cfg, err := settings.Load(context.Background(), boot, flags.overrides(), logger)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	cat, err := catalog.New(cfg)
	if err != nil {
		logger.Fatal("failed to build catalog", zap.Error(err))
	}
	cat.Install(cfg)

	app, err := application.New(server, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	_ = shutdown(app.Server(), server, logger)
}

// shutdown waits for a termination signal and drains in-flight requests for
// the configured grace period before closing the remaining connections.
func shutdown(server *http.Server, cfg settings.Server, logger *zap.Logger) error {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	logger.Info("shutting down server",
		zap.Stringer("signal", sig),
		zap.Duration("grace_period", cfg.ShutdownGracePeriod),
	)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("grace period elapsed, closing open connections", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
		return err
	}
	return nil
}
