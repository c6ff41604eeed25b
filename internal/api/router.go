package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	healthPath        = "/api/health"
	configurationPath = "/api/configuration"
)

// RouterOption configures the behaviour of NewRouter.
type RouterOption func(*routerConfig)

// WithLogging controls whether access logs are emitted.
func WithLogging(enabled bool) RouterOption {
	return func(cfg *routerConfig) {
		cfg.enableLogging = enabled
	}
}

type routerConfig struct {
	enableLogging bool
	logger        *zap.Logger
	rateLimiter   rateLimiter
}

type middleware func(http.Handler) http.Handler

// NewRouter creates the configuration API router. Health checks bypass the
// rate limiter; every other request is limited. The access log reports the
// locale and workspace a snapshot was served for.
func NewRouter(handler *Handler, logger *zap.Logger, opts ...RouterOption) http.Handler {
	cfg := routerConfig{
		enableLogging: true,
		logger:        logger,
		rateLimiter:   newTokenBucketLimiter(25, 50),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+healthPath, handler.handleHealth)
	mux.HandleFunc("GET "+configurationPath, handler.handleGetConfiguration)
	mux.HandleFunc("GET "+configurationPath+"/properties", handler.handleGetProperties)
	mux.HandleFunc("GET "+configurationPath+"/info", handler.handleGetInfo)

	stack := []middleware{
		scopeMiddleware,
		func(next http.Handler) http.Handler {
			return exemptHealth(rateLimitMiddleware(cfg.rateLimiter, next), next)
		},
	}
	if cfg.enableLogging {
		stack = append(stack, func(next http.Handler) http.Handler {
			return accessLogMiddleware(cfg.logger, next)
		})
	}
	stack = append(stack,
		func(next http.Handler) http.Handler { return recoveryMiddleware(cfg.logger, next) },
		corsMiddleware,
	)
	return chain(mux, stack...)
}

// chain wraps h so that the first middleware sees the request first.
func chain(h http.Handler, stack ...middleware) http.Handler {
	for i := len(stack) - 1; i >= 0; i-- {
		h = stack[i](h)
	}
	return h
}

func exemptHealth(limited, direct http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == healthPath {
			direct.ServeHTTP(w, r)
			return
		}
		limited.ServeHTTP(w, r)
	})
}

// requestScope is what the access log reports about a request. The handler
// fills in the locale and workspace once it has resolved them.
type requestScope struct {
	id        string
	locale    string
	workspace string
}

type scopeKey struct{}

func withScope(ctx context.Context, scope *requestScope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

func scopeFrom(ctx context.Context) *requestScope {
	scope, _ := ctx.Value(scopeKey{}).(*requestScope)
	return scope
}

// scopeMiddleware assigns the request ID, honouring a client supplied X-Request-ID.
func scopeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope := &requestScope{id: strings.TrimSpace(r.Header.Get("X-Request-ID"))}
		if scope.id == "" {
			scope.id = generateRequestID()
		}
		w.Header().Set("X-Request-ID", scope.id)
		next.ServeHTTP(w, r.WithContext(withScope(r.Context(), scope)))
	})
}

func generateRequestID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	return hex.EncodeToString(buf)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET,OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Accept-Language,X-Request-ID")
		h.Set("Access-Control-Expose-Headers", "X-Request-ID,Retry-After")
		h.Set("Access-Control-Max-Age", "86400")
		h.Add("Vary", "Accept-Language")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// accessLogMiddleware logs snapshot and property reads at info and health
// checks at debug.
func accessLogMiddleware(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Int("bytes", rec.bytes),
			zap.Duration("duration", time.Since(start)),
		}
		if scope := scopeFrom(r.Context()); scope != nil {
			fields = append(fields, zap.String("request_id", scope.id))
			if scope.locale != "" {
				fields = append(fields, zap.String("locale", scope.locale))
			}
			if scope.workspace != "" {
				fields = append(fields, zap.String("workspace", scope.workspace))
			}
		}

		if r.URL.Path == healthPath {
			logger.Debug("health checked", fields...)
			return
		}
		logger.Info("configuration request served", fields...)
	})
}

func recoveryMiddleware(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				var id string
				if scope := scopeFrom(r.Context()); scope != nil {
					id = scope.id
				}
				logger.Error("panic while serving configuration",
					zap.Any("error", rec),
					zap.String("path", r.URL.Path),
					zap.String("request_id", id),
				)
				writeError(w, http.StatusInternalServerError, "Internal error", "unexpected server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
