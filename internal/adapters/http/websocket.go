package http

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/campusmap/internal/pkg/eventloop"
	"github.com/samirrijal/campusmap/internal/pkg/metrics"
)

const wsPingInterval = 30 * time.Second

// WebSocketHandler runs one interactive search session per connection.
// Reads happen on the handler goroutine; every session callback, including
// timers, runs on a per-connection event loop.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		log := deps.logger().With("remote", c.RemoteAddr().String())
		log.Info("ws session opened")
		metrics.ActiveSessions.Inc()
		defer metrics.ActiveSessions.Dec()

		var mu sync.Mutex
		write := func(msgType int, data []byte) error {
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(msgType, data)
		}
		send := func(m ServerMessage) error {
			data, err := json.Marshal(m)
			if err != nil {
				return err
			}
			return write(websocket.TextMessage, data)
		}

		ctx, cancel := context.WithCancel(context.Background())
		loop := eventloop.New(64)
		session := NewSession(deps, loop, send)

		loopDone := make(chan struct{})
		go func() {
			defer close(loopDone)
			loop.Run(ctx)
		}()

		go func() {
			ticker := time.NewTicker(wsPingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := write(websocket.PingMessage, nil); err != nil {
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}
			if !loop.Post(func() { session.Handle(ctx, msg) }) {
				break
			}
		}

		cancel()
		loop.Close()
		<-loopDone
		log.Info("ws session closed")
	}
}
