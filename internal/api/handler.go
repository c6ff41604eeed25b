package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/text/language"

	"github.com/eugenenazirov/propbind/internal/configuration"
)

// ConfigurationProvider is the read side of the configuration engine served over HTTP.
type ConfigurationProvider interface {
	ClientSnapshot(ctx context.Context, tag language.Tag, workspaceID string) (*configuration.Snapshot, error)
	Masked() map[string]string
	ConfigurationInfo() map[string]any
}

// Handler wires the configuration engine into HTTP handlers.
type Handler struct {
	config ConfigurationProvider

	clock     func() time.Time
	startedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(config ConfigurationProvider, opts ...HandlerOption) *Handler {
	h := &Handler{
		config: config,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.startedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
		StartedAt: h.startedAt,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetConfiguration(w http.ResponseWriter, r *http.Request) {
	tag, err := requestLocale(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid locale", err.Error())
		return
	}

	workspace := r.URL.Query().Get("workspaceId")
	if scope := scopeFrom(r.Context()); scope != nil {
		scope.workspace = workspace
		if !tag.IsRoot() {
			scope.locale = tag.String()
		}
	}

	snapshot, err := h.config.ClientSnapshot(r.Context(), tag, workspace)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) handleGetProperties(w http.ResponseWriter, r *http.Request) {
	_ = r
	writeJSON(w, http.StatusOK, propertiesResponse{Properties: h.config.Masked()})
}

func (h *Handler) handleGetInfo(w http.ResponseWriter, r *http.Request) {
	_ = r
	writeJSON(w, http.StatusOK, h.config.ConfigurationInfo())
}

// requestLocale prefers the locale query parameter over Accept-Language.
// No locale at all yields the root tag, which selects the configured default.
func requestLocale(r *http.Request) (language.Tag, error) {
	if raw := r.URL.Query().Get("locale"); raw != "" {
		return language.Parse(raw)
	}
	if header := r.Header.Get("Accept-Language"); header != "" {
		tags, _, err := language.ParseAcceptLanguage(header)
		if err == nil && len(tags) > 0 {
			return tags[0], nil
		}
	}
	return language.Und, nil
}

type propertiesResponse struct {
	Properties map[string]string `json:"properties"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	StartedAt time.Time `json:"startedAt"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
