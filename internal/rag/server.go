package rag

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/clinicboard/medassist/internal/debug"
)

// Server exposes the pipeline over HTTP. The chat widget posts the user's
// message to /get as a form field named "msg" and receives the answer as
// plain text.
type Server struct {
	addr     string
	pipeline *Pipeline
	srv      *http.Server
}

// NewServer creates a server bound to addr.
func NewServer(addr string, pipeline *Pipeline) *Server {
	s := &Server{
		addr:     addr,
		pipeline: pipeline,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /get", s.handleGet)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the server's HTTP handler. Used in tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		debug.Info("rag", "assistant API listening on %s", s.addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("assistant API server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	msg := r.FormValue("msg")
	if msg == "" {
		http.Error(w, "missing msg", http.StatusBadRequest)
		return
	}

	answer, err := s.pipeline.Answer(r.Context(), msg)
	if err != nil {
		debug.Error("rag", "answer failed: %v", err)
		http.Error(w, "the assistant is unavailable right now", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, answer)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}
