package application

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/propbind/internal/api"
	"github.com/eugenenazirov/propbind/internal/settings"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	router http.Handler
	logger *zap.Logger
	server *http.Server
}

// New wires the configuration endpoints and the HTTP server around an
// already loaded configuration.
func New(server settings.Server, cfg api.ConfigurationProvider, logger *zap.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("configuration provider is required")
	}

	apiRouter := api.NewRouter(api.NewHandler(cfg), logger,
		api.WithLogging(server.EnableRequestLogging),
		api.WithRateLimit(server.RateLimitRPS, server.RateLimitBurst),
	)

	return &App{
		router: apiRouter,
		logger: logger,
		server: NewServer(server, BuildRootHandler(apiRouter)),
	}, nil
}

// BuildRootHandler mounts the API under /api/ and redirects the bare root to
// the client configuration endpoint.
func BuildRootHandler(apiHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/api/configuration", http.StatusFound)
	}))
	return mux
}

// NewServer creates and configures an HTTP server from the bound server settings.
func NewServer(cfg settings.Server, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}
