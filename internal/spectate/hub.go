// Package spectate broadcasts live game snapshots to WebSocket viewers.
//
// A Hub is fed by Publish from the game loops and fans every frame out to
// connected clients. Viewers connect to /ws, optionally with ?source=<id>
// to follow one player. A new viewer first receives the latest frame of
// each source it follows.
package spectate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 32
	readLimit  = 512
)

// Publisher accepts snapshots from a game loop.
type Publisher interface {
	Publish(source string, v any) error
}

// Frame is the JSON envelope sent to viewers.
type Frame struct {
	Source string          `json:"source"`
	Seq    uint64          `json:"seq"`
	Data   json.RawMessage `json:"data"`
}

type message struct {
	source string
	data   []byte
}

type client struct {
	conn   *websocket.Conn
	source string // Empty follows every source
	send   chan []byte
}

func (c *client) follows(source string) bool {
	return c.source == "" || c.source == source
}

// Hub fans published frames out to viewers.
type Hub struct {
	log      *log.Logger
	upgrader websocket.Upgrader

	register   chan *client
	unregister chan *client
	broadcast  chan message
	done       chan struct{}
	seq        atomic.Uint64

	mu      sync.RWMutex
	clients map[*client]struct{}
	last    map[string][]byte
}

// NewHub creates a hub. Call Run before serving connections.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan message, 64),
		done:       make(chan struct{}),
		clients:    make(map[*client]struct{}),
		last:       make(map[string][]byte),
	}
}

// Run owns the client set until ctx is done, then disconnects everyone.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.replay(c)
			h.mu.Unlock()
			h.log.Debug("viewer joined", "source", c.source, "viewers", h.Clients())

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

		case m := <-h.broadcast:
			h.mu.Lock()
			h.last[m.source] = m.data
			for c := range h.clients {
				if !c.follows(m.source) {
					continue
				}
				select {
				case c.send <- m.data:
				default:
					// Too slow to keep up; drop it rather than stall the rest.
					delete(h.clients, c)
					close(c.send)
					h.log.Warn("dropping slow viewer", "remote", c.conn.RemoteAddr())
				}
			}
			h.mu.Unlock()
		}
	}
}

// replay queues the latest frame of every followed source. Caller holds mu.
func (h *Hub) replay(c *client) {
	sources := make([]string, 0, len(h.last))
	for s := range h.last {
		if c.follows(s) {
			sources = append(sources, s)
		}
	}
	sort.Strings(sources)
	for _, s := range sources {
		select {
		case c.send <- h.last[s]:
		default:
		}
	}
}

// Publish encodes v and queues it for every viewer following source. It
// never blocks the game loop: when the queue is full the frame is dropped.
func (h *Hub) Publish(source string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("spectate: cannot encode frame: %w", err)
	}
	frame, err := json.Marshal(Frame{Source: source, Seq: h.seq.Add(1), Data: data})
	if err != nil {
		return fmt.Errorf("spectate: cannot encode frame: %w", err)
	}

	select {
	case h.broadcast <- message{source: source, data: frame}:
	case <-h.done:
	default:
		h.log.Debug("broadcast queue full, frame dropped", "source", source)
	}
	return nil
}

// Clients returns the number of connected viewers.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request to a WebSocket viewer connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "err", err)
		return
	}

	c := &client{
		conn:   conn,
		source: r.URL.Query().Get("source"),
		send:   make(chan []byte, sendBuffer),
	}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writePump(c)
	h.readPump(c)
}

// readPump discards viewer input and notices disconnects.
func (h *Hub) readPump(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Handler mounts the hub at /ws next to a small plain-text index.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, "tetris spectator hub\nconnect a websocket to /ws (optional ?source=<id>)\nviewers: %d\n", h.Clients())
	})
	return mux
}

// ListenAndServe runs the hub and its HTTP server until ctx is done. The
// hub only starts once the address is bound, so a listen error leaves
// nothing running.
func ListenAndServe(ctx context.Context, addr string, h *Hub) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("spectate: %w", err)
	}
	srv := &http.Server{
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	go h.Run(runCtx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	h.log.Info("spectator hub listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("spectate: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
