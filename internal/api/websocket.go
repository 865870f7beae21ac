package api

import (
	"fmt"
	"log"
	"net/http"
	"sync/atomic"

	"bombgrid/internal/game"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	// Intent budget per connection. A human player peaks well under this;
	// anything above is a misbehaving client.
	intentRatePerSec = 60
	intentBurst      = 30
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		// Non-browser clients send no Origin header.
		if origin == "" || IsAllowedOrigin(origin) {
			return true
		}

		log.Printf("websocket rejected from origin: %s", origin)
		RecordConnectionRejected("origin")
		return false
	},
}

// client is one WebSocket connection. Writes go through the buffered send
// channel and a dedicated write pump, so the hub never blocks on a slow
// consumer and the connection is never written from two goroutines.
type client struct {
	conn    *websocket.Conn
	ip      string
	id      string
	codec   Codec
	send    chan []byte
	intents *rate.Limiter
}

// trySend queues a frame without blocking. Returns false when the buffer
// is full, which marks the client as too slow to keep.
func (c *client) trySend(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *client) writePump() {
	for data := range c.send {
		if err := c.conn.WriteMessage(c.codec.MessageType(), data); err != nil {
			break
		}
	}
	c.conn.Close()
}

// HubOptions caps the hub's connection load.
type HubOptions struct {
	MaxConnections  int // Total concurrent connections
	MaxConnsPerIP   int // Concurrent connections per source IP
	BroadcastBuffer int // Pending batches in the broadcast channel
}

// DefaultHubOptions returns production defaults.
func DefaultHubOptions() HubOptions {
	return HubOptions{
		MaxConnections:  500,
		MaxConnsPerIP:   10,
		BroadcastBuffer: 256,
	}
}

// Hub fans drained diff batches out to every connection and feeds client
// intents into the engine. The connection ID doubles as the player ID, so
// a dropped connection removes its player through Leave.
type Hub struct {
	engine EngineIntents
	opts   HubOptions

	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan []game.Diff
	direct     chan directFrame

	connLimiter *ConnLimiter
	clientCount int32  // atomic
	nextConn    uint64 // atomic
}

// EngineIntents is the engine surface the hub needs. game.Engine satisfies
// it; tests substitute recording fakes.
type EngineIntents interface {
	Join(connID, nickname string) (*game.Player, error)
	Leave(connID string)
	Move(connID string, dir game.Direction)
	PlaceBomb(connID string)
	Snapshot() game.Snapshot
}

// NewHub creates a hub. Run must be started before connections arrive.
func NewHub(engine EngineIntents, opts HubOptions) *Hub {
	return &Hub{
		engine:      engine,
		opts:        opts,
		clients:     make(map[*client]bool),
		register:    make(chan *client),
		unregister:  make(chan *client),
		broadcast:   make(chan []game.Diff, opts.BroadcastBuffer),
		direct:      make(chan directFrame, 32),
		connLimiter: NewConnLimiter(opts.MaxConnsPerIP),
	}
}

// directFrame is a single-client frame routed through the Run goroutine.
// Only Run touches a registered client's send channel, so a frame and a
// concurrent drop can never race on a closed channel.
type directFrame struct {
	c    *client
	data []byte
}

// Run owns the client set. Register, unregister and broadcast all funnel
// through this single goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			atomic.StoreInt32(&h.clientCount, int32(len(h.clients)))
			log.Printf("client connected from %s as %s (%d total)", c.ip, c.id, len(h.clients))
			UpdateWSConnections(len(h.clients))

		case c := <-h.unregister:
			h.dropClient(c)
			log.Printf("client disconnected: %s (%d remaining)", c.id, len(h.clients))
			UpdateWSConnections(len(h.clients))

		case batch := <-h.broadcast:
			// Encode once per codec, not once per client.
			encoded := make(map[string][]byte, 2)
			for c := range h.clients {
				data, ok := encoded[c.codec.Name()]
				if !ok {
					var err error
					data, err = c.codec.Marshal(batch)
					if err != nil {
						continue
					}
					encoded[c.codec.Name()] = data
				}
				if !c.trySend(data) {
					IncrementBroadcastDropped()
					h.dropClient(c)
				}
			}
			IncrementWSMessages()
			UpdateWSConnections(len(h.clients))

		case m := <-h.direct:
			// Discard frames for clients already dropped.
			if _, ok := h.clients[m.c]; !ok {
				continue
			}
			if !m.c.trySend(m.data) {
				IncrementBroadcastDropped()
				h.dropClient(m.c)
			}
		}
	}
}

// sendDirect queues a frame for one client via the Run goroutine. Never
// blocks; frames are dropped when the direct channel is full.
func (h *Hub) sendDirect(c *client, data []byte) {
	select {
	case h.direct <- directFrame{c: c, data: data}:
	default:
		IncrementBroadcastDropped()
	}
}

// dropClient removes a client from the set. Run-goroutine only.
func (h *Hub) dropClient(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	h.connLimiter.Release(c.ip)
	delete(h.clients, c)
	close(c.send)
	atomic.StoreInt32(&h.clientCount, int32(len(h.clients)))
}

// BroadcastDiffs queues one tick's drained batch for every client. Never
// blocks the tick loop; under sustained backpressure batches are dropped
// and clients resync from the next fullState.
func (h *Hub) BroadcastDiffs(batch []game.Diff) {
	if len(batch) == 0 || h.ClientCount() == 0 {
		return
	}
	select {
	case h.broadcast <- batch:
	default:
		IncrementBroadcastDropped()
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(atomic.LoadInt32(&h.clientCount))
}

// HandleWebSocket upgrades a connection, sends the initial fullState batch
// and starts the intent read loop.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	if h.ClientCount() >= h.opts.MaxConnections {
		log.Printf("websocket rejected: total limit reached (%d)", h.opts.MaxConnections)
		RecordConnectionRejected("ws_total_limit")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}
	if !h.connLimiter.Allow(ip) {
		log.Printf("websocket rejected from %s: per-IP limit reached", ip)
		RecordConnectionRejected("ws_ip_limit")
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		h.connLimiter.Release(ip)
		return
	}

	c := &client{
		conn:    conn,
		ip:      ip,
		id:      fmt.Sprintf("conn_%06d", atomic.AddUint64(&h.nextConn, 1)),
		codec:   CodecFor(r.URL.Query().Get("codec")),
		send:    make(chan []byte, 32),
		intents: rate.NewLimiter(intentRatePerSec, intentBurst),
	}
	go c.writePump()

	// New connections get the whole arena before any incremental batch.
	// Direct send is safe here: the client is not registered yet, so the
	// hub cannot close its channel.
	if data, err := c.codec.Marshal([]game.Diff{{Type: game.DiffFullState, Payload: h.engine.Snapshot()}}); err == nil {
		c.trySend(data)
	}

	h.register <- c
	go h.readLoop(c)
}

// readLoop parses intents until the connection dies, then removes both the
// connection and its player.
func (h *Hub) readLoop(c *client) {
	defer func() {
		h.unregister <- c
		h.engine.Leave(c.id)
	}()

	c.conn.SetReadLimit(1024)

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		if !c.intents.Allow() {
			continue
		}

		var in Intent
		if err := c.codec.Unmarshal(msg, &in); err != nil {
			continue
		}

		switch in.Action {
		case ActionJoin:
			if _, err := h.engine.Join(c.id, in.Nickname); err != nil {
				// Arena is full; tell only this connection.
				if data, merr := c.codec.Marshal([]game.Diff{{Type: game.DiffGameFull}}); merr == nil {
					h.sendDirect(c, data)
				}
			}
		case ActionMove:
			h.engine.Move(c.id, game.Direction(in.Direction))
		case ActionPlaceBomb:
			h.engine.PlaceBomb(c.id)
		}
	}
}
