package live

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type testMsg struct {
	Type string `json:"type"`
	N    int    `json:"n"`
}

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	h := New()
	up := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		game := r.URL.Query().Get("game")
		if err := h.Register(ws, game, testMsg{Type: "hello"}); err != nil {
			ws.Close()
		}
	}))
	t.Cleanup(func() {
		srv.Close()
		h.Close()
	})
	return h, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial(%q): %v", url, err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func read(t *testing.T, ws *websocket.Conn) testMsg {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	var m testMsg
	if err := ws.ReadJSON(&m); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return m
}

func TestHubBroadcastsPerGame(t *testing.T) {
	h, url := startHub(t)

	a := dial(t, url+"?game=g1")
	b := dial(t, url+"?game=g1")
	other := dial(t, url+"?game=g2")
	for _, ws := range []*websocket.Conn{a, b, other} {
		if m := read(t, ws); m.Type != "hello" {
			t.Fatalf("first message = %+v, want hello", m)
		}
	}
	if n := h.Watchers("g1"); n != 2 {
		t.Errorf("Watchers(g1) = %d, want 2", n)
	}

	if err := h.ToGame("g1", testMsg{Type: "guess", N: 1}); err != nil {
		t.Fatalf("ToGame: %v", err)
	}
	if err := h.ToGame("g2", testMsg{Type: "guess", N: 2}); err != nil {
		t.Fatalf("ToGame: %v", err)
	}

	for _, ws := range []*websocket.Conn{a, b} {
		if m := read(t, ws); m != (testMsg{Type: "guess", N: 1}) {
			t.Errorf("g1 watcher got %+v", m)
		}
	}
	if m := read(t, other); m != (testMsg{Type: "guess", N: 2}) {
		t.Errorf("g2 watcher got %+v", m)
	}
}

func TestHubUnregistersOnDisconnect(t *testing.T) {
	h, url := startHub(t)

	ws := dial(t, url+"?game=g1")
	read(t, ws)
	ws.Close()

	deadline := time.Now().Add(5 * time.Second)
	for h.Watchers("g1") != 0 {
		if time.Now().After(deadline) {
			t.Fatal("connection still registered after close")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHubClosed(t *testing.T) {
	h := New()
	h.Close()
	h.Close()
	if err := h.ToGame("g1", testMsg{}); err != ErrClosed {
		t.Errorf("ToGame after Close = %v, want ErrClosed", err)
	}
}
