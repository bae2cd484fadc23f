package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/club-ladder/brackets"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWebSocketServer(t *testing.T, allowed []string) (*brackets.Hub, *httptest.Server, context.CancelFunc) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := brackets.NewHub(logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	router := chi.NewRouter()
	router.Get("/ws/tournaments/{tournamentID}", NewWebSocketHandler(hub, allowed, logger).ServeWs)
	server := httptest.NewServer(router)
	t.Cleanup(func() {
		cancel()
		server.Close()
	})
	return hub, server, cancel
}

func wsURL(server *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + path
}

func TestWebSocketHandler_BroadcastReachesRoom(t *testing.T) {
	hub, server, _ := newWebSocketServer(t, nil)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, "/ws/tournaments/7"), nil)
	require.NoError(t, err)
	defer conn.Close()

	room := brackets.TournamentRoom(7)
	require.Eventually(t, func() bool { return hub.RoomSize(room) == 1 }, time.Second, 10*time.Millisecond)

	hub.BroadcastToRoom(room, brackets.WebSocketMessage{Type: brackets.MessageResultRecorded, RoomID: room})
	hub.BroadcastToRoom(brackets.TournamentRoom(8), brackets.WebSocketMessage{Type: brackets.MessageStageAdvanced})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg brackets.WebSocketMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, brackets.MessageResultRecorded, msg.Type)
	assert.Equal(t, "tournament_7", msg.RoomID)
}

func TestWebSocketHandler_ClientLeavesRoom(t *testing.T) {
	hub, server, _ := newWebSocketServer(t, nil)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, "/ws/tournaments/3"), nil)
	require.NoError(t, err)

	room := brackets.TournamentRoom(3)
	require.Eventually(t, func() bool { return hub.RoomSize(room) == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.RoomSize(room) == 0 }, time.Second, 10*time.Millisecond)
}

func TestWebSocketHandler_HubShutdownClosesClients(t *testing.T) {
	hub, server, cancel := newWebSocketServer(t, nil)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, "/ws/tournaments/5"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.RoomSize(brackets.TournamentRoom(5)) == 1 }, time.Second, 10*time.Millisecond)

	cancel()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}

func TestWebSocketHandler_Rejects(t *testing.T) {
	_, server, _ := newWebSocketServer(t, []string{"https://club.example"})

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(server, "/ws/tournaments/abc"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err = websocket.DefaultDialer.Dial(wsURL(server, "/ws/tournaments/1"), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header = http.Header{"Origin": []string{"https://club.example"}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, "/ws/tournaments/1"), header)
	require.NoError(t, err)
	conn.Close()
}
