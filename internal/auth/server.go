package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// Server exposes the OAuth redirect endpoints. After the callback it hands
// the user back to the chat UI via a t.me deep link carrying a success or
// error marker; the bot turns that into a user-visible message.
type Server struct {
	service     *Service
	botUsername string
	logger      *slog.Logger
	httpServer  *http.Server
}

// NewServer creates a new auth callback server
func NewServer(service *Service, addr, botUsername string, logger *slog.Logger) *Server {
	s := &Server{
		service:     service,
		botUsername: botUsername,
		logger:      logger.With("component", "auth_server"),
	}

	r := chi.NewRouter()
	r.Get("/auth/threads/authorize", s.handleAuthorize)
	r.Get("/auth/threads/callback", s.handleCallback)

	s.httpServer = &http.Server{Addr: addr, Handler: r}
	return s
}

// Start runs the HTTP server until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("starting auth server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("telegramId")
	if raw == "" {
		http.Error(w, "telegramId is required", http.StatusBadRequest)
		return
	}

	telegramID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		http.Error(w, "telegramId must be numeric", http.StatusBadRequest)
		return
	}

	http.Redirect(w, r, s.service.AuthorizationURL(telegramID), http.StatusFound)
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	if code == "" {
		http.Redirect(w, r, s.botStartURL("auth_error"), http.StatusFound)
		return
	}

	if err := s.service.CompleteAuthorization(r.Context(), code, state); err != nil {
		s.logger.Error("authorization failed", "error", err, "state", state)
		http.Redirect(w, r, s.botStartURL("auth_error"), http.StatusFound)
		return
	}

	http.Redirect(w, r, s.botStartURL("auth_success"), http.StatusFound)
}

func (s *Server) botStartURL(param string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", s.botUsername, param)
}
