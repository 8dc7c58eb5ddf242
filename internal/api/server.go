package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ivyresort/internal/config"
	"ivyresort/internal/service"

	"github.com/rs/zerolog"
)

// HTTPServer exposes the reservation API.
type HTTPServer struct {
	cfg          config.APIConfig
	reservations *service.ReservationService
	users        *service.UserService
	server       *http.Server
	logger       zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, reservations *service.ReservationService, users *service.UserService, logger zerolog.Logger) *HTTPServer {
	s := &HTTPServer{
		cfg:          cfg,
		reservations: reservations,
		users:        users,
		logger:       logger.With().Str("component", "http").Logger(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/reservations", s.handleReservations)
	mux.HandleFunc("/api/reservations/", s.handleReservationSubroutes)
	mux.HandleFunc("/api/users", s.handleUsers)
	mux.HandleFunc("/api/users/", s.handleUserByID)
	mux.HandleFunc("/api/room-types", s.handleRoomTypes)
	mux.HandleFunc("/healthz", s.handleHealth)

	auth := NewHTTPAuth(cfg)
	handler := auth.Wrap(mux)
	handler = corsMiddleware(cfg.CORSOrigins, handler)
	handler = loggingMiddleware(s.logger, handler)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *HTTPServer) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("http server listening")
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the composed handler chain for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]any{"success": false, "error": message})
}
