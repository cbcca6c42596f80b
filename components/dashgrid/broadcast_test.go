package dashgrid

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestBroadcastHookFansOutToSubscribers(t *testing.T) {
	hook := NewBroadcastHook()
	first, cancelFirst := hook.Subscribe()
	defer cancelFirst()
	second, cancelSecond := hook.Subscribe()
	defer cancelSecond()

	event := DataEvent{DashboardID: "dash-1", WidgetIDs: []string{"w1"}}
	if err := hook.WidgetDataUpdated(context.Background(), event); err != nil {
		t.Fatalf("WidgetDataUpdated returned error: %v", err)
	}

	for _, ch := range []<-chan DataEvent{first, second} {
		select {
		case got := <-ch:
			if got.DashboardID != "dash-1" || len(got.WidgetIDs) != 1 {
				t.Fatalf("event = %+v", got)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber never received event")
		}
	}
}

func TestBroadcastHookCancelClosesChannel(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel after cancel")
	}
	// Cancel is safe to call twice.
	cancel()
}

func TestBroadcastHookDoesNotBlockOnSlowSubscriber(t *testing.T) {
	hook := NewBroadcastHook()
	_, cancel := hook.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		// More events than the subscription buffer holds.
		for i := 0; i < 64; i++ {
			_ = hook.WidgetDataUpdated(context.Background(), DataEvent{DashboardID: "dash-1"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("broadcast blocked on a slow subscriber")
	}
}

func TestServeWebSocketStreamsEvents(t *testing.T) {
	hook := NewBroadcastHook()
	server := httptest.NewServer(http.HandlerFunc(hook.ServeWebSocket))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()
	if resp != nil {
		resp.Body.Close()
	}

	deadline := time.After(2 * time.Second)
	for {
		if err := hook.WidgetDataUpdated(context.Background(), DataEvent{
			DashboardID: "dash-1",
			WidgetIDs:   []string{"w1"},
		}); err != nil {
			t.Fatalf("WidgetDataUpdated returned error: %v", err)
		}
		conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		var event DataEvent
		if err := conn.ReadJSON(&event); err == nil {
			if event.DashboardID != "dash-1" {
				t.Fatalf("event = %+v", event)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatalf("never received websocket event")
		default:
		}
	}
}

func TestServeSSESetsHeadersAndStreams(t *testing.T) {
	hook := NewBroadcastHook()
	server := httptest.NewServer(http.HandlerFunc(hook.ServeSSE))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("content type = %q", got)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(10 * time.Millisecond):
				_ = hook.WidgetDataUpdated(context.Background(), DataEvent{DashboardID: "dash-1"})
			}
		}
	}()

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read event: %v", err)
	}
	if !strings.HasPrefix(line, "data: ") || !strings.Contains(line, "dash-1") {
		t.Fatalf("sse line = %q", line)
	}
}
