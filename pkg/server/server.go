// Package server exposes the chat service over HTTP: session creation,
// message processing with SSE status streaming, health, and metrics.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kadirpekel/lector/pkg/config"
	"github.com/kadirpekel/lector/pkg/rag"
)

// maxUploadBytes bounds one multipart request body.
const maxUploadBytes = 64 << 20

type Server struct {
	config     config.ServerConfig
	store      *SessionStore
	logger     *slog.Logger
	httpServer *http.Server
}

// New creates a server over the given session factory.
func New(cfg config.ServerConfig, factory SessionFactory, logger *slog.Logger) *Server {
	cfg.SetDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config: cfg,
		store:  NewSessionStore(factory),
		logger: logger,
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Post("/v1/sessions", s.handleCreateSession)
	r.Post("/v1/sessions/{id}/messages", s.handleMessage)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.store.Create()
	if err != nil {
		s.logger.Error("session creation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create session"})
		return
	}

	s.logger.Info("session created", "session", session.ID())
	writeJSON(w, http.StatusCreated, map[string]string{"id": session.ID()})
}

// handleMessage accepts a message (multipart with optional file uploads,
// or plain JSON) and streams the turn back as SSE: status events while
// the agent works, then one answer event.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	session, ok := s.store.Get(sessionID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}

	message, files, err := parseMessageRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	writeSSE := func(event string, payload any) {
		data, err := json.Marshal(payload)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
		flusher.Flush()
	}

	answer, procErr := session.ProcessMessageWithStatus(r.Context(), message, files, func(status string) {
		writeSSE("status", map[string]string{"status": status})
	})

	if procErr != nil {
		writeSSE("answer", map[string]any{"answer": answer, "error": true})
		return
	}
	writeSSE("answer", map[string]string{"answer": answer})
}

// parseMessageRequest reads the message text and uploaded files from a
// multipart form, or the message alone from a JSON body.
func parseMessageRequest(r *http.Request) (string, []rag.UploadedFile, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "application/json") {
		var body struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", nil, fmt.Errorf("invalid JSON body: %w", err)
		}
		return body.Message, nil, nil
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", nil, fmt.Errorf("invalid multipart form: %w", err)
	}

	message := r.FormValue("message")

	var files []rag.UploadedFile
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["files"] {
			f, err := header.Open()
			if err != nil {
				return "", nil, fmt.Errorf("failed to open upload %s: %w", header.Filename, err)
			}
			content, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return "", nil, fmt.Errorf("failed to read upload %s: %w", header.Filename, err)
			}
			files = append(files, rag.UploadedFile{
				Name:    header.Filename,
				Content: content,
			})
		}
	}

	return message, files, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
