package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"clickhalo/internal/indicator"
	"clickhalo/internal/protocol"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The server binds loopback only, so any origin on this machine is fine
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSManager handles WebSocket connections and state broadcasting
type WSManager struct {
	server     *Server
	clients    map[*WSClient]bool
	clientsMu  sync.RWMutex
	broadcast  chan protocol.Message
	register   chan *WSClient
	unregister chan *WSClient
	shutdown   chan struct{}
}

// WSClient represents one connected state-stream subscriber
type WSClient struct {
	manager *WSManager
	conn    *websocket.Conn
	send    chan []byte
	ip      string
}

func newWSManager(s *Server) *WSManager {
	return &WSManager{
		server:     s,
		clients:    make(map[*WSClient]bool),
		broadcast:  make(chan protocol.Message, 64),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
		shutdown:   make(chan struct{}),
	}
}

func (m *WSManager) start() {
	for {
		select {
		case client := <-m.register:
			m.clientsMu.Lock()
			m.clients[client] = true
			m.clientsMu.Unlock()
			log.Printf("WS: client connected from %s. Total clients: %d", client.ip, m.clientCount())

		case client := <-m.unregister:
			m.clientsMu.Lock()
			if _, ok := m.clients[client]; ok {
				delete(m.clients, client)
				close(client.send)
			}
			m.clientsMu.Unlock()
			log.Printf("WS: client disconnected from %s. Total clients: %d", client.ip, m.clientCount())

		case message := <-m.broadcast:
			m.broadcastMessage(message)

		case <-m.shutdown:
			return
		}
	}
}

func (m *WSManager) clientCount() int {
	m.clientsMu.RLock()
	defer m.clientsMu.RUnlock()
	return len(m.clients)
}

func (m *WSManager) broadcastMessage(message protocol.Message) {
	jsonMsg, err := json.Marshal(message)
	if err != nil {
		log.Printf("WS: failed to marshal broadcast message: %v", err)
		return
	}

	m.clientsMu.Lock()
	defer m.clientsMu.Unlock()

	for client := range m.clients {
		select {
		case client.send <- jsonMsg:
		default:
			// Slow subscriber: drop it rather than stall the broadcast
			close(client.send)
			delete(m.clients, client)
		}
	}
}

func (m *WSManager) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WS: failed to upgrade connection: %v", err)
		return
	}

	client := &WSClient{
		manager: m,
		conn:    conn,
		send:    make(chan []byte, 256),
		ip:      r.RemoteAddr,
	}

	m.register <- client

	go client.writePump()
	go client.readPump()

	// Greet, then immediately send the current state so subscribers do
	// not wait for the next press to learn where things stand.
	hello := protocol.Message{
		Type: protocol.TypeHello,
		Payload: protocol.HelloPayload{
			App:     "clickhalo",
			Version: m.server.version,
		},
	}
	if data, err := json.Marshal(hello); err == nil {
		client.send <- data
	}
	m.BroadcastState(m.server.snapshot())
}

// readPump discards everything the client sends; the stream is one-way.
// It exists to notice disconnects and answer pings.
func (c *WSClient) readPump() {
	defer func() {
		c.manager.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WS: read error: %v", err)
			}
			break
		}
	}
}

// writePump pumps broadcast messages to the websocket connection
func (c *WSClient) writePump() {
	ticker := time.NewTicker(50 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// BroadcastState queues a state snapshot for every connected client. Called
// from the indicator loop; must not block, so the broadcast channel is
// buffered and overflow drops the update (the next tick resends anyway).
func (m *WSManager) BroadcastState(snap indicator.Snapshot) {
	msg := protocol.Message{
		Type: protocol.TypeState,
		Payload: protocol.StatePayload{
			Primary:   snap.Primary,
			Secondary: snap.Secondary,
			X:         snap.X,
			Y:         snap.Y,
		},
	}

	select {
	case m.broadcast <- msg:
	default:
		log.Printf("WS: broadcast queue full, dropping state update")
	}
}
