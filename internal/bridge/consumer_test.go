package bridge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Handlecache/internal/core/prefetch"
)

// recordingDispatcher captures dispatched events
type recordingDispatcher struct {
	mu     sync.Mutex
	events []prefetch.NavigationEvent
	got    chan struct{}
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{got: make(chan struct{}, 100)}
}

func (d *recordingDispatcher) Dispatch(ev prefetch.NavigationEvent) {
	d.mu.Lock()
	d.events = append(d.events, ev)
	d.mu.Unlock()
	d.got <- struct{}{}
}

func (d *recordingDispatcher) waitFor(t *testing.T, n int) []prefetch.NavigationEvent {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-d.got:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for event %d of %d", i+1, n)
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]prefetch.NavigationEvent(nil), d.events...)
}

// newBridgeServer serves each connection with the given messages and then closes it
func newBridgeServer(t *testing.T, messages []string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var connections atomic.Int32
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		connections.Add(1)

		for _, msg := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		}
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	}))
	t.Cleanup(srv.Close)
	return srv, &connections
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestNavigationConsumer_DispatchesEvents(t *testing.T) {
	srv, _ := newBridgeServer(t, []string{
		`{"tabId":1,"status":"loading","url":"https://bsky.app/profile/did:plc:abc"}`,
		`not json`,
		`{"tabId":1}`,
		`{"tabId":1,"status":"complete","url":"https://bsky.app/profile/did:plc:abc"}`,
	})

	dispatcher := newRecordingDispatcher()
	consumer := NewNavigationConsumer(dispatcher, wsURL(srv))
	consumer.backoff = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- consumer.Start(ctx) }()

	events := dispatcher.waitFor(t, 2)
	cancel()

	require.Len(t, events, 2)
	assert.Equal(t, prefetch.NavigationEvent{TabID: 1, Status: prefetch.StatusLoading, URL: "https://bsky.app/profile/did:plc:abc"}, events[0])
	assert.Equal(t, prefetch.StatusComplete, events[1].Status)

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop after cancellation")
	}
}

func TestNavigationConsumer_Reconnects(t *testing.T) {
	srv, connections := newBridgeServer(t, []string{
		`{"tabId":7,"status":"complete","url":"https://bsky.app/profile/did:plc:abc"}`,
	})

	dispatcher := newRecordingDispatcher()
	consumer := NewNavigationConsumer(dispatcher, wsURL(srv))
	consumer.backoff = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = consumer.Start(ctx) }()

	events := dispatcher.waitFor(t, 2)
	assert.Equal(t, 7, events[1].TabID)
	assert.GreaterOrEqual(t, connections.Load(), int32(2))
}

func TestNavigationConsumer_StopsWhileDisconnected(t *testing.T) {
	consumer := NewNavigationConsumer(newRecordingDispatcher(), "ws://127.0.0.1:1/unreachable")
	consumer.backoff = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := consumer.Start(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDecodeEvent(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"tabId":3,"status":"complete","url":""}`))
	require.NoError(t, err)
	assert.Equal(t, prefetch.NavigationEvent{TabID: 3, Status: prefetch.StatusComplete}, ev)

	_, err = DecodeEvent([]byte(`{"tabId":3}`))
	assert.Error(t, err)

	_, err = DecodeEvent([]byte(`[`))
	assert.Error(t, err)
}
