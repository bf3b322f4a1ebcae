package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"subforge/internal/config"
	"subforge/internal/logging"
	"subforge/internal/orchestrator"
	"subforge/internal/store"
)

// maxUploadBytes caps a single multipart upload at 1 GiB.
const maxUploadBytes = 1 << 30

// Submitter admits a validated job into the worker pool.
type Submitter interface {
	Submit(ctx context.Context, sub orchestrator.Submission) error
}

// Server hosts the task HTTP API.
type Server struct {
	cfg       *config.Config
	store     *store.Store
	submitter Submitter
	logger    *slog.Logger

	listener net.Listener
	server   *http.Server
}

// NewServer wires the HTTP routes. The store and submitter are required.
func NewServer(cfg *config.Config, st *store.Store, submitter Submitter, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if st == nil {
		return nil, errors.New("store is required")
	}
	if submitter == nil {
		return nil, errors.New("submitter is required")
	}

	srv := &Server{
		cfg:       cfg,
		store:     st,
		submitter: submitter,
		logger:    logging.NewComponentLogger(logger, "api"),
	}

	router := mux.NewRouter()
	router.HandleFunc("/upload", srv.handleUpload).Methods(http.MethodPost)
	router.HandleFunc("/status/all", srv.handleStatusAll).Methods(http.MethodGet)
	router.HandleFunc("/status/{id}", srv.handleStatus).Methods(http.MethodGet)
	router.HandleFunc("/download/{id}", srv.handleDownload).Methods(http.MethodGet)
	router.HandleFunc("/models", srv.handleModels).Methods(http.MethodGet)

	srv.server = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// Handler returns the route tree for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins serving on the configured bind address. The server shuts
// down when ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	bind := strings.TrimSpace(s.cfg.Paths.APIBind)
	if bind == "" {
		return errors.New("api bind address is empty")
	}
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
