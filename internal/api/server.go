package api

import (
	"context"
	"fmt"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"net/http"
	"time"
	"umbrella-relay/internal/services"
	"umbrella-relay/internal/ws"
)

// Server exposes the registration, login and forwarding surface over HTTP
// and upgrades observers to websocket connections.
type Server struct {
	otpService     *services.OtpService
	accountService *services.AccountService
	hub            *ws.Hub
	router         *mux.Router
	logger         zerolog.Logger
	httpServer     *http.Server
}

func NewServer(
	otpService *services.OtpService,
	accountService *services.AccountService,
	hub *ws.Hub,
	logger zerolog.Logger,
) *Server {
	server := &Server{
		otpService:     otpService,
		accountService: accountService,
		hub:            hub,
		logger:         logger,
	}

	router := mux.NewRouter()
	router.HandleFunc("/send-otp", server.handleSendOtp).Methods(http.MethodPost)
	router.HandleFunc("/register", server.handleRegister).Methods(http.MethodPost)
	router.HandleFunc("/login", server.handleLogin).Methods(http.MethodPost)
	router.HandleFunc("/update-emergency", server.handleUpdateEmergency).Methods(http.MethodPost)
	router.HandleFunc("/esp-data", server.handleEspData).Methods(http.MethodPost)
	router.HandleFunc("/ws", server.handleObserver).Methods(http.MethodGet)
	server.router = router

	return server
}

// Handler exposes the route table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(port int) error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	s.logger.Info().Int("port", port).Msg("HTTP server listening")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
