package ws

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/krobus00/order-service/internal/constant"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

const (
	streamPingInterval = 30 * time.Second
	streamWriteTimeout = 10 * time.Second
	streamChanBuffer   = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Handler streams order lifecycle events to websocket clients. It listens on
// the plain NATS subject rather than a jetstream consumer so it never
// competes with the audit worker for messages on the work-queue stream.
type Handler struct {
	nc *nats.Conn
}

func NewOrderStreamHandler(nc *nats.Conn) *Handler {
	return &Handler{nc: nc}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /orders/stream", h.StreamOrders)
}

func (h *Handler) StreamOrders(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.Errorf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events := make(chan *nats.Msg, streamChanBuffer)
	sub, err := h.nc.ChanSubscribe(constant.OrderStreamSubjectLifecycle, events)
	if err != nil {
		logrus.Errorf("subscribe order events: %v", err)
		return
	}
	defer func() {
		_ = sub.Unsubscribe()
	}()

	// Read loop only to observe the close handshake; clients do not send.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(streamPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-closed:
			return
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logrus.Error(err)
				return
			}
		case msg := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, msg.Data); err != nil {
				logrus.Error(err)
				return
			}
		}
	}
}
