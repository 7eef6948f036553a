package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"Handlecache/internal/core/prefetch"
)

const (
	readTimeout    = 60 * time.Second
	pingInterval   = 30 * time.Second
	defaultBackoff = 5 * time.Second
)

// Dispatcher receives navigation events. *prefetch.Manager implements it.
type Dispatcher interface {
	Dispatch(ev prefetch.NavigationEvent)
}

// NavigationConsumer reads navigation events pushed by the browser extension
// host over a WebSocket and hands them to the dispatcher
type NavigationConsumer struct {
	dispatcher Dispatcher
	wsURL      string
	backoff    time.Duration
	dialer     *websocket.Dialer
}

// NewNavigationConsumer creates a consumer for the bridge at wsURL
func NewNavigationConsumer(dispatcher Dispatcher, wsURL string) *NavigationConsumer {
	return &NavigationConsumer{
		dispatcher: dispatcher,
		wsURL:      wsURL,
		backoff:    defaultBackoff,
		dialer:     websocket.DefaultDialer,
	}
}

// Start consumes events until ctx is cancelled, reconnecting after errors.
// The subscription is never torn down for any other reason.
func (c *NavigationConsumer) Start(ctx context.Context) error {
	log.Printf("[BRIDGE] Starting navigation consumer: %s", c.wsURL)

	for {
		err := c.connect(ctx)
		if ctx.Err() != nil {
			log.Println("[BRIDGE] Navigation consumer shutting down")
			return ctx.Err()
		}

		log.Printf("[BRIDGE] Connection error: %v. Retrying in %s...", err, c.backoff)
		select {
		case <-ctx.Done():
			log.Println("[BRIDGE] Navigation consumer shutting down")
			return ctx.Err()
		case <-time.After(c.backoff):
		}
	}
}

// connect establishes the WebSocket connection and processes events until it fails
func (c *NavigationConsumer) connect(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to bridge: %w", err)
	}
	defer conn.Close()

	log.Println("[BRIDGE] Connected")

	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	done := make(chan struct{})
	var closeOnce sync.Once
	stop := func() { closeOnce.Do(func() { close(done) }) }
	defer stop()

	// Unblock ReadMessage when the context ends
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
					log.Printf("[BRIDGE] Ping error: %v", err)
					stop()
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read error: %w", err)
		}

		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

		if err := c.handleMessage(message); err != nil {
			log.Printf("[BRIDGE] Error handling message: %v", err)
			// Continue processing other events
		}
	}
}

// handleMessage decodes one event and dispatches it
func (c *NavigationConsumer) handleMessage(data []byte) error {
	ev, err := DecodeEvent(data)
	if err != nil {
		return err
	}
	c.dispatcher.Dispatch(ev)
	return nil
}

// DecodeEvent parses and validates a navigation event message
func DecodeEvent(data []byte) (prefetch.NavigationEvent, error) {
	var ev prefetch.NavigationEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return ev, fmt.Errorf("failed to parse event: %w", err)
	}
	if ev.Status == "" {
		return ev, errors.New("event missing status")
	}
	return ev, nil
}
