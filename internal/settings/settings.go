package settings

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"

	"github.com/eugenenazirov/propbind/internal/binding"
	"github.com/eugenenazirov/propbind/internal/configuration"
	"github.com/eugenenazirov/propbind/internal/loader"
	"github.com/eugenenazirov/propbind/internal/properties"
)

// ServerPrefix is the configuration section bound onto Server.
const ServerPrefix = "server"

// Bootstrap holds what must be known before the configuration engine exists.
type Bootstrap struct {
	ConfigPaths []string `env:"PROPBIND_CONFIG" envSeparator:","`
	LogLevel    string   `env:"PROPBIND_LOG_LEVEL" envDefault:"info"`
}

// LoadBootstrap reads the bootstrap environment variables.
func LoadBootstrap() (Bootstrap, error) {
	var b Bootstrap
	if err := env.Parse(&b); err != nil {
		return Bootstrap{}, fmt.Errorf("parse env: %w", err)
	}
	return b, nil
}

// Server aggregates the HTTP server settings.
type Server struct {
	Port                 string        `config:"port" default:"8080"`
	ShutdownGracePeriod  time.Duration `config:"shutdownGracePeriod" default:"10s"`
	ReadHeaderTimeout    time.Duration `config:"readHeaderTimeout" default:"5s"`
	WriteTimeout         time.Duration `config:"writeTimeout" default:"15s"`
	IdleTimeout          time.Duration `config:"idleTimeout" default:"60s"`
	EnableRequestLogging bool          `config:"requestLogging" default:"true"`
	RateLimitRPS         float64       `config:"rateLimit.rps" default:"25"`
	RateLimitBurst       int           `config:"rateLimit.burst" default:"50"`
}

// ConfigValidators checks the bound values.
func (s *Server) ConfigValidators() []binding.Validator {
	return []binding.Validator{
		binding.Check("portSet", "port must not be empty", func() bool { return s.Port != "" }),
		binding.Check("rateLimitRPS", "rate limit rps must be >= 0", func() bool { return s.RateLimitRPS >= 0 }),
		binding.Check("rateLimitBurst", "rate limit burst must be >= 0", func() bool { return s.RateLimitBurst >= 0 }),
	}
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFiles    []string
	Set            map[string]string
	Port           *string
	RateLimitRPS   *float64
	RateLimitBurst *int
}

// Open builds the configuration engine from the configured files, the
// propbind.* environment, --set overrides and typed flags, in that order of
// increasing precedence.
func Open(ctx context.Context, boot Bootstrap, overrides *CLIOverrides, logger *zap.Logger) (*configuration.Configuration, error) {
	if overrides == nil {
		overrides = &CLIOverrides{}
	}

	paths := boot.ConfigPaths
	if len(overrides.ConfigFiles) > 0 {
		paths = overrides.ConfigFiles
	}

	return configuration.New(ctx, loader.NewFileLoader(logger, paths...), logger,
		configuration.WithOverlay(properties.EnvironSource(properties.SystemPrefix, os.Environ())),
		configuration.WithOverlay(properties.StringMapSource("set", overrides.Set)),
		configuration.WithOverlay(properties.StringMapSource("flags", flagEntries(overrides))),
	)
}

// Load opens the configuration engine and binds the server section.
func Load(ctx context.Context, boot Bootstrap, overrides *CLIOverrides, logger *zap.Logger) (Server, *configuration.Configuration, error) {
	cfg, err := Open(ctx, boot, overrides, logger)
	if err != nil {
		return Server{}, nil, err
	}

	var server Server
	if err := cfg.Bind(&server, ServerPrefix); err != nil {
		return Server{}, nil, fmt.Errorf("bind server settings: %w", err)
	}
	return server, cfg, nil
}

// flagEntries maps typed CLI flags onto their configuration keys.
func flagEntries(o *CLIOverrides) map[string]string {
	out := make(map[string]string)
	if o == nil {
		return out
	}
	if o.Port != nil && *o.Port != "" {
		out[ServerPrefix+".port"] = *o.Port
	}
	if o.RateLimitRPS != nil && *o.RateLimitRPS >= 0 {
		out[ServerPrefix+".rateLimit.rps"] = strconv.FormatFloat(*o.RateLimitRPS, 'f', -1, 64)
	}
	if o.RateLimitBurst != nil && *o.RateLimitBurst >= 0 {
		out[ServerPrefix+".rateLimit.burst"] = strconv.Itoa(*o.RateLimitBurst)
	}
	return out
}
