package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// sync waits for the hub to process everything sent so far: messages of
// one connection are handled in order, so a pong proves the preceding
// subscribe/unsubscribe landed.
func syncConn(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "ping"}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var pong map[string]string
	require.NoError(t, conn.ReadJSON(&pong))
	require.Equal(t, "pong", pong["type"])
}

func TestSubscribeAndBroadcast(t *testing.T) {
	hub := NewHub(func(*http.Request) bool { return true })
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	twoD := dialHub(t, srv)
	threeD := dialHub(t, srv)
	require.NoError(t, twoD.WriteJSON(ClientMsg{Type: "subscribe", GameType: "2D"}))
	require.NoError(t, threeD.WriteJSON(ClientMsg{Type: "subscribe", GameType: "3D"}))
	syncConn(t, twoD)
	syncConn(t, threeD)

	hub.Broadcast(ResultUpdate{GameType: "2D", Payload: map[string]string{"winning_number": "47"}})

	require.NoError(t, twoD.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got ResultUpdate
	require.NoError(t, twoD.ReadJSON(&got))
	assert.Equal(t, "2D", got.GameType)

	// the 3D subscriber saw nothing; the next frame it reads is its own pong
	syncConn(t, threeD)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub(func(*http.Request) bool { return true })
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	conn := dialHub(t, srv)
	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "subscribe", GameType: "LAO"}))
	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "unsubscribe", GameType: "LAO"}))
	syncConn(t, conn)

	hub.Broadcast(ResultUpdate{GameType: "LAO", Payload: "x"})

	// only the pong arrives
	syncConn(t, conn)
}

// Broadcast runs while clients churn their subscriptions; the hub must
// never iterate a map another goroutine is mutating.
func TestBroadcastDuringSubscriptionChurn(t *testing.T) {
	hub := NewHub(func(*http.Request) bool { return true })
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	// bounded so slow readers can never back-pressure the test into a hang
	var writers sync.WaitGroup
	writers.Add(1)
	go func() {
		defer writers.Done()
		for i := 0; i < 500; i++ {
			hub.Broadcast(ResultUpdate{GameType: "2D", Payload: "tick"})
		}
	}()

	var churn sync.WaitGroup
	for i := 0; i < 8; i++ {
		churn.Add(1)
		go func() {
			defer churn.Done()
			conn := dialHub(t, srv)
			for j := 0; j < 50; j++ {
				if err := conn.WriteJSON(ClientMsg{Type: "subscribe", GameType: "2D"}); err != nil {
					return
				}
				if err := conn.WriteJSON(ClientMsg{Type: "unsubscribe", GameType: "2D"}); err != nil {
					return
				}
			}
		}()
	}

	churn.Wait()
	writers.Wait()
}
