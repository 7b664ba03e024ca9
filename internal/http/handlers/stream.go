package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/steveyiyo/voicerelay/internal/core/relay"
	"github.com/steveyiyo/voicerelay/internal/observability"
	"github.com/steveyiyo/voicerelay/pkg/types"
	"github.com/steveyiyo/voicerelay/pkg/ws"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
	writeWait  = 5 * time.Second
)

type StreamHandler struct {
	Hub      *ws.Hub
	Relay    relay.Options
	Metrics  *observability.Metrics
	Upgrader websocket.Upgrader
}

func NewStreamHandler(h *ws.Hub, opts relay.Options, m *observability.Metrics) *StreamHandler {
	return &StreamHandler{
		Hub:     h,
		Relay:   opts,
		Metrics: m,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *StreamHandler) WS(c *gin.Context) {
	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	id := "conn_" + uuid.NewString()
	emitter := &connEmitter{conn: conn}
	p := relay.New(id, emitter, h.Relay)

	h.Hub.Add(id, p)
	h.Metrics.ConnectionOpened()
	defer func() {
		h.Hub.Remove(id)
		h.Metrics.ConnectionClosed()
		conn.Close()
	}()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	conn.SetReadLimit(8 << 20)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	frames := make(chan []byte)
	go func() {
		defer close(frames)
		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			conn.SetReadDeadline(time.Now().Add(pongWait))
			if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
				continue
			}
			select {
			case frames <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()
	go emitter.keepalive(ctx)

	_ = p.Run(ctx, frames)
}

// connEmitter serializes writes to the client socket.
type connEmitter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (e *connEmitter) Emit(env types.Envelope) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return e.conn.WriteJSON(env)
}

func (e *connEmitter) keepalive(ctx context.Context) {
	t := time.NewTicker(pingPeriod)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := e.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
