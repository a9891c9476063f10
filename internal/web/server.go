// Package web serves the clinic web app: the appointment booking form,
// the appointment list, and the floating chat widget that talks to the
// assistant API server.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/clinicboard/medassist/internal/appointment"
	"github.com/clinicboard/medassist/internal/debug"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server is the clinic web app.
type Server struct {
	addr   string
	store  *appointment.Store
	ragURL string

	tmpl     *template.Template
	client   *http.Client
	upgrader websocket.Upgrader
	srv      *http.Server
}

// NewServer creates the web app bound to addr. ragURL is the base URL of
// the assistant API server the chat widget talks to.
func NewServer(addr string, store *appointment.Store, ragURL string) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		addr:   addr,
		store:  store,
		ragURL: strings.TrimRight(ragURL, "/"),
		tmpl:   tmpl,
		client: &http.Client{Timeout: 60 * time.Second},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /appointments", s.handleBook)
	mux.HandleFunc("GET /api/appointments", s.handleAPIList)
	mux.HandleFunc("GET /ws", s.handleChat)

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// Handler returns the app's HTTP handler. Used in tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		debug.Info("web", "clinic app listening on http://%s", s.addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("web server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}

// indexData feeds the index template.
type indexData struct {
	Appointments []appointment.Appointment
	Booked       bool
	Error        string
	APIURL       string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.List()
	if err != nil {
		debug.Error("web", "failed to load appointments: %v", err)
		http.Error(w, "failed to load appointments", http.StatusInternalServerError)
		return
	}

	data := indexData{
		Appointments: items,
		Booked:       r.URL.Query().Get("booked") == "1",
		Error:        r.URL.Query().Get("error"),
		APIURL:       s.ragURL + "/get",
	}

	if err := s.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		debug.Error("web", "template render failed: %v", err)
	}
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	appt := appointment.Appointment{
		Name:   r.PostFormValue("name"),
		Email:  r.PostFormValue("email"),
		Phone:  r.PostFormValue("phone"),
		Date:   r.PostFormValue("date"),
		Time:   r.PostFormValue("time"),
		Reason: r.PostFormValue("reason"),
	}

	if err := s.store.Add(appt); err != nil {
		debug.Warn("web", "booking rejected: %v", err)
		http.Redirect(w, r, "/?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/?booked=1", http.StatusSeeOther)
}

func (s *Server) handleAPIList(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.List()
	if err != nil {
		http.Error(w, "failed to load appointments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(items); err != nil {
		debug.Warn("web", "failed to encode appointments: %v", err)
	}
}

// handleChat relays chat messages between the widget's websocket and the
// assistant API server.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		debug.Warn("web", "websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		answer, err := s.ask(r.Context(), string(msg))
		if err != nil {
			debug.Warn("web", "chat relay failed: %v", err)
			answer = "The assistant is unavailable right now. Please try again later."
		}

		if err := conn.WriteMessage(websocket.TextMessage, []byte(answer)); err != nil {
			return
		}
	}
}

// ask forwards a message to the assistant API server.
func (s *Server) ask(ctx context.Context, msg string) (string, error) {
	form := url.Values{"msg": {msg}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.ragURL+"/get",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("assistant API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return string(body), nil
}
