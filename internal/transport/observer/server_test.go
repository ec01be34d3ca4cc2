package observer

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/scriptarena/internal/core"
	"github.com/vovakirdan/scriptarena/internal/spectate"
	"github.com/vovakirdan/scriptarena/internal/world"
)

func newTestServer(t *testing.T) (*spectate.Hub, *httptest.Server) {
	t.Helper()
	hub := spectate.NewHub(4)
	srv := NewServer(hub, "scripted", log.New(io.Discard))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		hub.Close()
		ts.Close()
	})
	return hub, ts
}

func testFrame(tick uint64) world.Frame {
	hp := &world.Health{Current: 50, Max: 100}
	return world.Frame{
		Tick:   tick,
		Camera: core.V(10, 20),
		Sprites: []world.SpriteView{
			{
				Entity:  world.Entity{ID: 3, Version: 1},
				X:       1,
				Y:       2,
				W:       50,
				H:       50,
				Color:   core.NewRGB(0, 0, 1),
				Markers: world.MarkPlayer | world.MarkCameraTarget,
				Health:  hp,
			},
		},
	}
}

func TestEncodeFrame(t *testing.T) {
	msg := EncodeFrame(testFrame(5))
	if msg.Type != "FRAME" || msg.Tick != 5 {
		t.Fatalf("EncodeFrame() header = %s/%d", msg.Type, msg.Tick)
	}
	if msg.Camera != [2]float64{10, 20} {
		t.Errorf("Camera = %v", msg.Camera)
	}
	if len(msg.Sprites) != 1 {
		t.Fatalf("len(Sprites) = %d, expected 1", len(msg.Sprites))
	}
	s := msg.Sprites[0]
	if s.ID != 3 || s.Gen != 1 {
		t.Errorf("sprite id = %d/%d, expected 3/1", s.ID, s.Gen)
	}
	if s.Color != core.NewRGB(0, 0, 1).Hex() {
		t.Errorf("Color = %s", s.Color)
	}
	if strings.Join(s.Markers, ",") != "player,camera_target" {
		t.Errorf("Markers = %v", s.Markers)
	}
	if s.Health == nil || s.Health[0] != 50 || s.Health[1] != 100 {
		t.Errorf("Health = %v", s.Health)
	}
}

func TestBootstrap(t *testing.T) {
	hub, ts := newTestServer(t)
	hub.Publish(testFrame(42))

	resp, err := http.Get(ts.URL + "/observe/bootstrap")
	if err != nil {
		t.Fatalf("GET bootstrap: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var b BootstrapResponse
	if err := json.NewDecoder(resp.Body).Decode(&b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b.GameID != "scripted" || b.Tick != 42 || b.ProtocolVersion != ProtocolVersion {
		t.Errorf("bootstrap = %+v", b)
	}
}

func TestBootstrapRejectsPost(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Post(ts.URL+"/observe/bootstrap", "application/json", nil)
	if err != nil {
		t.Fatalf("POST bootstrap: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, expected 405", resp.StatusCode)
	}
}

func TestWebSocketStreamsFrames(t *testing.T) {
	hub, ts := newTestServer(t)
	hub.Publish(testFrame(1))

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/observe/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	read := func() FrameMsg {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, b, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage: %v", err)
		}
		var msg FrameMsg
		if err := json.Unmarshal(b, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return msg
	}

	// The latest frame is delivered on connect.
	if got := read(); got.Tick != 1 {
		t.Errorf("first tick = %d, expected 1", got.Tick)
	}

	hub.Publish(testFrame(2))
	if got := read(); got.Tick != 2 {
		t.Errorf("second tick = %d, expected 2", got.Tick)
	}
	if hub.Count() != 1 {
		t.Errorf("Count() = %d, expected 1", hub.Count())
	}
}

func TestWebSocketUnsubscribesOnClose(t *testing.T) {
	hub, ts := newTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/observe/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.Count() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.Count() != 1 {
		t.Fatalf("Count() = %d after connect, expected 1", hub.Count())
	}

	conn.Close()
	deadline = time.Now().Add(2 * time.Second)
	for hub.Count() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.Count() != 0 {
		t.Errorf("Count() = %d after close, expected 0", hub.Count())
	}
}

func TestIsLoopbackRemote(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"127.0.0.1:5000", true},
		{"[::1]:5000", true},
		{"10.0.0.2:5000", false},
		{"garbage", false},
	}
	for _, tt := range tests {
		if got := isLoopbackRemote(tt.addr); got != tt.want {
			t.Errorf("isLoopbackRemote(%q) = %v, expected %v", tt.addr, got, tt.want)
		}
	}
}
