package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"sniffscope/internal/models"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 512 // buffered channel size — drops when full
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub broadcasts kept packet summaries to connected WebSocket clients. It
// implements the controller's Observer interface; every delivery is a
// non-blocking channel send so the capture loop never waits on a client.
type Hub struct {
	mu      sync.Mutex
	clients map[*WSClient]bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*WSClient]bool)}
}

// PacketKept broadcasts one kept summary.
func (h *Hub) PacketKept(s models.PacketSummary) {
	payload, _ := json.Marshal(s)
	h.broadcast(models.WSMessage{Type: "packet", Payload: payload})
}

// CaptureStarted announces a new capture session.
func (h *Hub) CaptureStarted(device string) {
	payload, _ := json.Marshal(models.CaptureStatus{Device: device})
	h.broadcast(models.WSMessage{Type: "capture_started", Payload: payload})
}

// CaptureStopped announces the end of the capture session.
func (h *Hub) CaptureStopped() {
	h.broadcast(models.WSMessage{Type: "capture_stopped"})
}

func (h *Hub) register(c *WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
}

func (h *Hub) unregister(c *WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

func (h *Hub) broadcast(msg models.WSMessage) {
	h.mu.Lock()
	clients := make([]*WSClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.send(msg)
	}
}

// WSClient wraps one WebSocket connection.
type WSClient struct {
	conn   *websocket.Conn
	hub    *Hub
	sendCh chan models.WSMessage
	done   chan struct{}
}

func newWSClient(conn *websocket.Conn, hub *Hub) *WSClient {
	c := &WSClient{
		conn:   conn,
		hub:    hub,
		sendCh: make(chan models.WSMessage, sendBuffer),
		done:   make(chan struct{}),
	}
	hub.register(c)
	go c.writeLoop()
	return c
}

// send queues a message for async delivery. Non-blocking: packet messages
// are dropped when the buffer is full so a slow client cannot stall the
// capture loop; control messages evict one queued packet instead.
func (c *WSClient) send(msg models.WSMessage) {
	select {
	case c.sendCh <- msg:
	default:
		if msg.Type != "packet" {
			select {
			case <-c.sendCh:
			default:
			}
			select {
			case c.sendCh <- msg:
			default:
			}
		}
	}
}

// writeLoop drains the send channel and writes to the WebSocket.
func (c *WSClient) writeLoop() {
	defer c.conn.Close()
	for {
		select {
		case msg, ok := <-c.sendCh:
			if !ok {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// readLoop drains client messages until the connection drops. The feed is
// read-only; inbound payloads are ignored.
func (c *WSClient) readLoop() {
	defer func() {
		c.hub.unregister(c)
		close(c.done)
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// HandleWebSocket is the HTTP handler for WebSocket upgrades.
func HandleWebSocket(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.WithError(err).Warn("websocket upgrade failed")
			return
		}
		client := newWSClient(conn, hub)
		client.readLoop()
	}
}
