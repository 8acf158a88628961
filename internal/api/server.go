package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"shareit/internal/config"
	"shareit/internal/service"
)

// Server exposes the backend HTTP API.
type Server struct {
	cfg      config.ServerConfig
	users    *service.UserService
	items    *service.ItemService
	bookings *service.BookingService
	requests *service.RequestService
	server   *http.Server
	log      zerolog.Logger
}

func NewServer(
	cfg config.ServerConfig,
	users *service.UserService,
	items *service.ItemService,
	bookings *service.BookingService,
	requests *service.RequestService,
	logger *zerolog.Logger,
) *Server {
	s := &Server{
		cfg:      cfg,
		users:    users,
		items:    items,
		bookings: bookings,
		requests: requests,
		log:      logger.With().Str("component", "api").Logger(),
	}

	r := mux.NewRouter()
	r.Use(requestIDMiddleware, loggingMiddleware(&s.log), metricsMiddleware)

	r.HandleFunc("/users", s.handleCreateUser).Methods(http.MethodPost)
	r.HandleFunc("/users", s.handleListUsers).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}", s.handleUpdateUser).Methods(http.MethodPatch)
	r.HandleFunc("/users/{id}", s.handleGetUser).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}", s.handleDeleteUser).Methods(http.MethodDelete)

	r.HandleFunc("/items", s.handleCreateItem).Methods(http.MethodPost)
	r.HandleFunc("/items", s.handleListItems).Methods(http.MethodGet)
	r.HandleFunc("/items/search", s.handleSearchItems).Methods(http.MethodGet)
	r.HandleFunc("/items/{id}", s.handleUpdateItem).Methods(http.MethodPatch)
	r.HandleFunc("/items/{id}", s.handleGetItem).Methods(http.MethodGet)
	r.HandleFunc("/items/{id}/comment", s.handlePostComment).Methods(http.MethodPost)

	r.HandleFunc("/bookings", s.handleCreateBooking).Methods(http.MethodPost)
	r.HandleFunc("/bookings", s.handleListBookings).Methods(http.MethodGet)
	r.HandleFunc("/bookings/owner", s.handleListOwnerBookings).Methods(http.MethodGet)
	r.HandleFunc("/bookings/owner/export", s.handleExportOwnerBookings).Methods(http.MethodGet)
	r.HandleFunc("/bookings/{id}", s.handleSetApproval).Methods(http.MethodPatch)
	r.HandleFunc("/bookings/{id}", s.handleGetBooking).Methods(http.MethodGet)

	r.HandleFunc("/requests", s.handleCreateRequest).Methods(http.MethodPost)
	r.HandleFunc("/requests", s.handleListSelfRequests).Methods(http.MethodGet)
	r.HandleFunc("/requests/all", s.handleListOtherRequests).Methods(http.MethodGet)
	r.HandleFunc("/requests/{id}", s.handleGetRequest).Methods(http.MethodGet)

	r.HandleFunc("/healthz", handleHealthz).Methods(http.MethodGet)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return s
}

// Handler returns the root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
