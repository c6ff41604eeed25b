package application

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/propbind/internal/configuration"
	"github.com/eugenenazirov/propbind/internal/properties"
	"github.com/eugenenazirov/propbind/internal/settings"
)

func TestNewInitializesDependencies(t *testing.T) {
	logger := zaptest.NewLogger(t)
	cfg := testConfiguration(t)

	app, err := New(baseTestSettings(":8085"), cfg, logger)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if app.server == nil || app.router == nil {
		t.Fatalf("expected server and router to be initialized")
	}
	if app.Server() != app.server {
		t.Fatalf("Server accessor did not return underlying instance")
	}
	if app.server.Addr != ":8085" {
		t.Fatalf("expected address :8085, got %s", app.server.Addr)
	}
}

func TestNewRequiresConfiguration(t *testing.T) {
	if _, err := New(baseTestSettings(":0"), nil, zaptest.NewLogger(t)); err == nil {
		t.Fatalf("expected error without configuration")
	}
}

func TestNewServerAppliesConfig(t *testing.T) {
	cfg := baseTestSettings("9090")
	handler := http.NewServeMux()

	server := NewServer(cfg, handler)
	if server.Addr != ":9090" {
		t.Fatalf("expected address :9090, got %s", server.Addr)
	}
	if server.Handler != handler {
		t.Fatalf("expected handler to be applied")
	}
	if server.ReadHeaderTimeout != cfg.ReadHeaderTimeout ||
		server.WriteTimeout != cfg.WriteTimeout ||
		server.IdleTimeout != cfg.IdleTimeout {
		t.Fatalf("server timeouts do not match configuration")
	}
}

func TestRootHandlerRoutes(t *testing.T) {
	app, err := New(baseTestSettings(":0"), testConfiguration(t), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	root := app.Server().Handler

	tests := []struct {
		name     string
		path     string
		status   int
		location string
	}{
		{name: "root redirects", path: "/", status: http.StatusFound, location: "/api/configuration"},
		{name: "api mounted", path: "/api/health", status: http.StatusOK},
		{name: "unknown path", path: "/nope", status: http.StatusNotFound},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			root.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
			if rec.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, rec.Code)
			}
			if tc.location != "" && rec.Header().Get("Location") != tc.location {
				t.Fatalf("expected redirect to %s, got %s", tc.location, rec.Header().Get("Location"))
			}
		})
	}
}

func testConfiguration(t *testing.T) *configuration.Configuration {
	t.Helper()
	cfg, err := configuration.New(context.Background(), nil, zaptest.NewLogger(t),
		configuration.WithOverlay(properties.StringMapSource("test", map[string]string{
			"web.ui.theme": "dark",
		})),
	)
	if err != nil {
		t.Fatalf("configuration: %v", err)
	}
	return cfg
}

func baseTestSettings(port string) settings.Server {
	return settings.Server{
		Port:                 port,
		ShutdownGracePeriod:  50 * time.Millisecond,
		ReadHeaderTimeout:    20 * time.Millisecond,
		WriteTimeout:         30 * time.Millisecond,
		IdleTimeout:          40 * time.Millisecond,
		EnableRequestLogging: false,
		RateLimitRPS:         0,
		RateLimitBurst:       0,
	}
}
