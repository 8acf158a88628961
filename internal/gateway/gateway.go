// Package gateway fronts the backend API: it validates request shapes,
// rate-limits clients and forwards everything else unchanged.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"shareit/internal/config"
)

const (
	userIDHeader    = "X-Sharer-User-Id"
	requestIDHeader = "X-Request-Id"
)

// Gateway is the pre-validating reverse proxy in front of the backend.
type Gateway struct {
	cfg     config.GatewayConfig
	proxy   *httputil.ReverseProxy
	limiter *rateLimiter
	server  *http.Server
	log     zerolog.Logger
}

func New(cfg config.GatewayConfig, logger *zerolog.Logger) (*Gateway, error) {
	backend, err := url.Parse(cfg.BackendURL)
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}

	g := &Gateway{
		cfg:     cfg,
		proxy:   httputil.NewSingleHostReverseProxy(backend),
		limiter: newRateLimiter(cfg.RateLimit),
		log:     logger.With().Str("component", "gateway").Logger(),
	}
	g.proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		g.log.Error().Err(err).Str("path", r.URL.Path).Msg("backend unreachable")
		writeError(w, http.StatusBadGateway, "backend unavailable")
	}

	r := mux.NewRouter()
	r.Use(g.accessMiddleware, g.limitMiddleware)

	r.HandleFunc("/users", g.withBody(validateNewUser, false)).Methods(http.MethodPost)
	r.HandleFunc("/users", g.forward).Methods(http.MethodGet)
	r.HandleFunc("/users/{id:[0-9]+}", g.withBody(validateUserPatch, false)).Methods(http.MethodPatch)
	r.HandleFunc("/users/{id:[0-9]+}", g.forward).Methods(http.MethodGet, http.MethodDelete)

	r.HandleFunc("/items", g.withBody(validateNewItem, true)).Methods(http.MethodPost)
	r.HandleFunc("/items", g.withUser(g.forward)).Methods(http.MethodGet)
	r.HandleFunc("/items/search", g.forward).Methods(http.MethodGet)
	r.HandleFunc("/items/{id:[0-9]+}", g.withUser(g.forward)).Methods(http.MethodPatch, http.MethodGet)
	r.HandleFunc("/items/{id:[0-9]+}/comment", g.withBody(validateNewComment, true)).Methods(http.MethodPost)

	r.HandleFunc("/bookings", g.withBody(validateNewBooking, true)).Methods(http.MethodPost)
	r.HandleFunc("/bookings", g.withUser(g.withListParams(g.forward))).Methods(http.MethodGet)
	r.HandleFunc("/bookings/owner", g.withUser(g.withListParams(g.forward))).Methods(http.MethodGet)
	r.HandleFunc("/bookings/owner/export", g.withUser(g.forward)).Methods(http.MethodGet)
	r.HandleFunc("/bookings/{id:[0-9]+}", g.withUser(g.forward)).Methods(http.MethodPatch, http.MethodGet)

	r.HandleFunc("/requests", g.withBody(validateNewRequest, true)).Methods(http.MethodPost)
	r.HandleFunc("/requests", g.withUser(g.forward)).Methods(http.MethodGet)
	r.HandleFunc("/requests/all", g.withUser(g.withPaging(g.forward))).Methods(http.MethodGet)
	r.HandleFunc("/requests/{id:[0-9]+}", g.withUser(g.forward)).Methods(http.MethodGet)

	g.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return g, nil
}

// Handler returns the root handler, for tests.
func (g *Gateway) Handler() http.Handler {
	return g.server.Handler
}

func (g *Gateway) Start() error {
	g.log.Info().Str("addr", g.server.Addr).Str("backend", g.cfg.BackendURL).Msg("gateway listening")
	if err := g.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	return g.server.Shutdown(ctx)
}

func (g *Gateway) forward(w http.ResponseWriter, r *http.Request) {
	g.proxy.ServeHTTP(w, r)
}

// withBody reads and validates the request body, then restores it so the
// proxy forwards the original bytes.
func (g *Gateway) withBody(validate func([]byte) error, needsUser bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if needsUser {
			if err := requireUserHeader(r); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "cannot read request body")
			return
		}
		r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))
		r.ContentLength = int64(len(body))

		if err := validate(body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		g.forward(w, r)
	}
}

func (g *Gateway) withUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := requireUserHeader(r); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		next(w, r)
	}
}

func (g *Gateway) withPaging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := validatePaging(r); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		next(w, r)
	}
}

// withListParams checks both the state token and the paging window used by
// the booking list endpoints.
func (g *Gateway) withListParams(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := validateState(r); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := validatePaging(r); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		next(w, r)
	}
}

func (g *Gateway) accessMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(requestIDHeader) == "" {
			r.Header.Set(requestIDHeader, uuid.NewString())
		}
		start := time.Now()
		next.ServeHTTP(w, r)
		g.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Str("request_id", r.Header.Get(requestIDHeader)).
			Msg("gateway request")
	})
}

func (g *Gateway) limitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.limiter.allow(clientKey(r)) {
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey prefers the caller's user id; unauthenticated routes fall back
// to the remote host.
func clientKey(r *http.Request) string {
	if id := r.Header.Get(userIDHeader); id != "" {
		return "user:" + id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
