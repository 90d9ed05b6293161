package spectate

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type board struct {
	Score int      `json:"score"`
	Rows  []string `json:"rows"`
}

func startHub(t *testing.T) (*Hub, *httptest.Server, context.CancelFunc) {
	t.Helper()
	h := NewHub(log.New(io.Discard))
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	srv := httptest.NewServer(h.Handler())
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return h, srv, cancel
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f Frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func waitClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.Clients() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestPublishReachesViewer(t *testing.T) {
	h, srv, _ := startHub(t)
	conn := dial(t, srv, "")
	waitClients(t, h, 1)

	require.NoError(t, h.Publish("alice", board{Score: 120, Rows: []string{"..", "11"}}))

	f := readFrame(t, conn)
	assert.Equal(t, "alice", f.Source)
	assert.Equal(t, uint64(1), f.Seq)

	var b board
	require.NoError(t, json.Unmarshal(f.Data, &b))
	assert.Equal(t, 120, b.Score)
	assert.Equal(t, []string{"..", "11"}, b.Rows)
}

func TestLateViewerGetsLastFrame(t *testing.T) {
	h, srv, _ := startHub(t)
	first := dial(t, srv, "")
	waitClients(t, h, 1)

	require.NoError(t, h.Publish("alice", board{Score: 1}))
	require.NoError(t, h.Publish("alice", board{Score: 2}))
	readFrame(t, first)
	last := readFrame(t, first)
	require.Equal(t, uint64(2), last.Seq)

	late := dial(t, srv, "")
	waitClients(t, h, 2)
	f := readFrame(t, late)
	assert.Equal(t, uint64(2), f.Seq)

	var b board
	require.NoError(t, json.Unmarshal(f.Data, &b))
	assert.Equal(t, 2, b.Score)
}

func TestSourceFilter(t *testing.T) {
	h, srv, _ := startHub(t)
	bob := dial(t, srv, "?source=bob")
	all := dial(t, srv, "")
	waitClients(t, h, 2)

	require.NoError(t, h.Publish("alice", board{Score: 10}))
	require.NoError(t, h.Publish("bob", board{Score: 20}))

	f := readFrame(t, bob)
	assert.Equal(t, "bob", f.Source, "filtered viewer should skip other sources")

	assert.Equal(t, "alice", readFrame(t, all).Source)
	assert.Equal(t, "bob", readFrame(t, all).Source)
}

func TestCancelClosesViewers(t *testing.T) {
	h, srv, cancel := startHub(t)
	conn := dial(t, srv, "")
	waitClients(t, h, 1)

	cancel()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "unexpected error %v", err)
	assert.Equal(t, 0, h.Clients())

	// Publishing after shutdown must not block.
	assert.NoError(t, h.Publish("alice", board{}))
}

func TestPublishEncodeError(t *testing.T) {
	h := NewHub(log.New(io.Discard))
	err := h.Publish("alice", make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spectate: cannot encode frame")
}

func TestIndexPage(t *testing.T) {
	_, srv, _ := startHub(t)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "viewers: 0")

	missing, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestListenAndServeBusyPort(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	h := NewHub(log.New(io.Discard))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = ListenAndServe(ctx, busy.Addr().String(), h)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spectate:")

	// Nothing should be left consuming registrations.
	select {
	case h.register <- &client{send: make(chan []byte, 1)}:
		t.Fatal("hub is still running after a listen error")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	h := NewHub(log.New(io.Discard))
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- ListenAndServe(ctx, "127.0.0.1:0", h) }()

	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("ListenAndServe did not return after cancel")
	}
	select {
	case <-h.done:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop after cancel")
	}
}
