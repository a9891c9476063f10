package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/clinicboard/medassist/internal/appointment"
)

// fakeAssistant stands in for the assistant API server.
func fakeAssistant(t *testing.T, answer string, status int) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get" {
			http.NotFound(w, r)
			return
		}
		if r.FormValue("msg") == "" {
			http.Error(w, "missing msg", http.StatusBadRequest)
			return
		}
		w.WriteHeader(status)
		fmt.Fprint(w, answer)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newTestServer(t *testing.T, ragURL string) (*Server, *httptest.Server) {
	t.Helper()

	store := appointment.NewStore(filepath.Join(t.TempDir(), "appointments.json"))
	s, err := NewServer("127.0.0.1:0", store, ragURL)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func bookingForm() url.Values {
	return url.Values{
		"name":   {"Ada Lovelace"},
		"email":  {"ada@example.com"},
		"phone":  {"555-0100"},
		"date":   {"2026-09-15"},
		"time":   {"10:30"},
		"reason": {"annual checkup"},
	}
}

// noRedirect returns a client that surfaces redirects instead of following
// them, so handlers' PRG behavior can be asserted.
func noRedirect() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func TestIndexRenders(t *testing.T) {
	_, ts := newTestServer(t, "http://127.0.0.1:8080")

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d; want 200", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	html := string(body)

	for _, want := range []string{"Book an Appointment", "No appointments yet", "Medical Chatbot", "http://127.0.0.1:8080/get"} {
		if !strings.Contains(html, want) {
			t.Errorf("index page missing %q", want)
		}
	}
}

func TestBookAndList(t *testing.T) {
	_, ts := newTestServer(t, "http://127.0.0.1:8080")

	resp, err := noRedirect().PostForm(ts.URL+"/appointments", bookingForm())
	if err != nil {
		t.Fatalf("PostForm failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d; want 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/?booked=1" {
		t.Errorf("redirect = %q; want /?booked=1", loc)
	}

	apiResp, err := http.Get(ts.URL + "/api/appointments")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	defer apiResp.Body.Close()

	var items []appointment.Appointment
	if err := json.NewDecoder(apiResp.Body).Decode(&items); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Ada Lovelace" {
		t.Errorf("items = %+v; want one booking for Ada Lovelace", items)
	}
}

func TestBookRejectsIncompleteForm(t *testing.T) {
	_, ts := newTestServer(t, "http://127.0.0.1:8080")

	form := bookingForm()
	form.Set("email", "")

	resp, err := noRedirect().PostForm(ts.URL+"/appointments", form)
	if err != nil {
		t.Fatalf("PostForm failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d; want 303", resp.StatusCode)
	}
	loc := resp.Header.Get("Location")
	if !strings.HasPrefix(loc, "/?error=") {
		t.Errorf("redirect = %q; want an error flash", loc)
	}

	apiResp, err := http.Get(ts.URL + "/api/appointments")
	if err != nil {
		t.Fatal(err)
	}
	defer apiResp.Body.Close()

	var items []appointment.Appointment
	if err := json.NewDecoder(apiResp.Body).Decode(&items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("rejected booking was stored: %+v", items)
	}
}

func TestChatRelay(t *testing.T) {
	assistant := fakeAssistant(t, "We are open 9 to 5.", http.StatusOK)
	_, ts := newTestServer(t, assistant.URL)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte("when are you open?")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(msg) != "We are open 9 to 5." {
		t.Errorf("answer = %q", string(msg))
	}
}

func TestChatRelayAssistantDown(t *testing.T) {
	assistant := fakeAssistant(t, "boom", http.StatusInternalServerError)
	_, ts := newTestServer(t, assistant.URL)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte("hello")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.Contains(string(msg), "unavailable") {
		t.Errorf("answer = %q; want an unavailable notice", string(msg))
	}
}
