package http

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/example/timeclock-kiosk/internal/testfixtures"
)

func dialActivity(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http")+"/activity/stream", nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	var snapshot activityMessage
	readActivity(t, conn, &snapshot)
	if snapshot.Type != "snapshot" || len(snapshot.Feed) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snapshot)
	}
	return conn
}

func readActivity(t *testing.T, conn *websocket.Conn, target *activityMessage) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(target); err != nil {
		t.Fatalf("read failed: %v", err)
	}
}

func TestActivityHubStreamsScans(t *testing.T) {
	t.Parallel()

	server := newKioskServer(t)
	han := server.seed(t, testfixtures.WithEmployeeName("Han", "Solo"))

	httpServer := httptest.NewServer(server.handler)
	t.Cleanup(httpServer.Close)

	first := dialActivity(t, httpServer.URL)
	second := dialActivity(t, httpServer.URL)
	if got := server.hub.Clients(); got != 2 {
		t.Fatalf("expected two clients, got %d", got)
	}

	server.scan(t, han.Badge(), nil)

	for _, conn := range []*websocket.Conn{first, second} {
		var message activityMessage
		readActivity(t, conn, &message)
		if message.Type != "activity" || message.Entry == nil || message.Entry.Outcome == nil {
			t.Fatalf("unexpected message %+v", message)
		}
		if message.Entry.Outcome.Direction != "IN" || len(message.Feed) != 1 {
			t.Fatalf("expected one IN entry, got %+v", message)
		}
	}

	server.scan(t, "not-a-badge", nil)

	var message activityMessage
	readActivity(t, first, &message)
	if len(message.Feed) != 2 || !message.Feed[0].Unresolved || message.Feed[1].Outcome == nil {
		t.Fatalf("expected unresolved entry ahead of the scan, got %+v", message.Feed)
	}
}

func TestActivityHubBoundsEachFeed(t *testing.T) {
	t.Parallel()

	hub := NewActivityHub(2, quietLogger())
	t.Cleanup(hub.Close)
	httpServer := httptest.NewServer(hub)
	t.Cleanup(httpServer.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(httpServer.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	var message activityMessage
	readActivity(t, conn, &message)

	for _, raw := range []string{"a", "b", "c"} {
		hub.Publish(testfixtures.UnresolvedEntry(raw))
		readActivity(t, conn, &message)
	}
	if len(message.Feed) != 2 || message.Feed[0].RawID != "c" || message.Feed[1].RawID != "b" {
		t.Fatalf("expected bounded most-recent-first feed, got %+v", message.Feed)
	}
}

func TestActivityHubClose(t *testing.T) {
	t.Parallel()

	hub := NewActivityHub(0, quietLogger())
	httpServer := httptest.NewServer(hub)
	t.Cleanup(httpServer.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(httpServer.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	var message activityMessage
	readActivity(t, conn, &message)

	hub.Close()
	if got := hub.Clients(); got != 0 {
		t.Fatalf("expected no clients after close, got %d", got)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected the connection to be closed")
	}
}
