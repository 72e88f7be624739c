// Package live fans game events out to websocket spectators.
package live

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 64
)

// ErrClosed is returned after the hub has shut down.
var ErrClosed = errors.New("live: hub closed")

// Hub maintains the set of active connections and broadcasts messages to
// the connections watching a game. All map access happens in run.
type Hub struct {
	// Registered connections, per game.
	connections map[string]map[*connection]struct{}

	// Messages to send to everyone watching a game.
	broadcast chan *broadcastMsg

	// Register requests from the connections.
	register chan *connection

	// Unregister requests from connections.
	unregister chan *connection

	// Connection count queries.
	count chan countReq

	done      chan struct{}
	closeOnce sync.Once
}

type broadcastMsg struct {
	gameID string
	msg    []byte
}

type countReq struct {
	gameID string
	resp   chan int
}

// New creates a new Hub and starts it in a background goroutine.
func New() *Hub {
	h := &Hub{
		connections: make(map[string]map[*connection]struct{}),
		broadcast:   make(chan *broadcastMsg),
		register:    make(chan *connection),
		unregister:  make(chan *connection),
		count:       make(chan countReq),
		done:        make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			conns := h.connections[c.gameID]
			if conns == nil {
				conns = make(map[*connection]struct{})
				h.connections[c.gameID] = conns
			}
			conns[c] = struct{}{}
		case c := <-h.unregister:
			h.deleteConn(c)
		case m := <-h.broadcast:
			for c := range h.connections[m.gameID] {
				select {
				case c.send <- m.msg:
				default:
					// Too slow; drop it.
					h.deleteConn(c)
				}
			}
		case q := <-h.count:
			q.resp <- len(h.connections[q.gameID])
		case <-h.done:
			for _, conns := range h.connections {
				for c := range conns {
					close(c.send)
				}
			}
			h.connections = nil
			return
		}
	}
}

func (h *Hub) deleteConn(c *connection) {
	conns := h.connections[c.gameID]
	if _, ok := conns[c]; !ok {
		return
	}
	delete(conns, c)
	close(c.send)
	if len(conns) == 0 {
		delete(h.connections, c.gameID)
	}
}

// Close stops the hub and closes every connection's send queue.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

func (h *Hub) closed() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// ToGame sends msg, JSON-encoded, to everyone watching gameID.
func (h *Hub) ToGame(gameID string, msg any) error {
	if h.closed() {
		return ErrClosed
	}
	b, err := encode(msg)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- &broadcastMsg{gameID: gameID, msg: b}:
		return nil
	case <-h.done:
		return ErrClosed
	}
}

// Watchers reports how many connections are registered for gameID.
func (h *Hub) Watchers(gameID string) int {
	if h.closed() {
		return 0
	}
	q := countReq{gameID: gameID, resp: make(chan int, 1)}
	select {
	case h.count <- q:
		return <-q.resp
	case <-h.done:
		return 0
	}
}

// Register associates ws with gameID. hello, when non-nil, is queued
// before any broadcast so the client starts from a known snapshot.
func (h *Hub) Register(ws *websocket.Conn, gameID string, hello any) error {
	if h.closed() {
		return ErrClosed
	}
	c := &connection{
		h:      h,
		gameID: gameID,
		send:   make(chan []byte, sendBuffer),
		ws:     ws,
	}
	if hello != nil {
		b, err := encode(hello)
		if err != nil {
			return err
		}
		c.send <- b
	}
	select {
	case h.register <- c:
	case <-h.done:
		return ErrClosed
	}
	go c.writePump()
	go c.readPump()
	return nil
}

func encode(msg any) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(msg); err != nil {
		return nil, fmt.Errorf("live: encode message: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// connection is a middleman between the websocket and the hub.
type connection struct {
	h      *Hub
	gameID string
	send   chan []byte
	ws     *websocket.Conn
}

// readPump discards client frames and unregisters on disconnect.
func (c *connection) readPump() {
	defer func() {
		select {
		case c.h.unregister <- c:
		case <-c.h.done:
		}
		c.ws.Close()
	}()
	c.ws.SetReadLimit(512)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("gameId", c.gameID).Msg("live: read")
			}
			return
		}
	}
}

// writePump forwards queued messages and keeps the connection alive.
func (c *connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
