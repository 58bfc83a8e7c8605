package main

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var event map[string]any
	require.NoError(t, conn.ReadJSON(&event))

	return event
}

func sendIntent(t *testing.T, conn *websocket.Conn, msg ClientMessage) {
	t.Helper()

	require.NoError(t, conn.WriteJSON(msg))
}

// makeStartable wires two ready teams into the active game so startGame
// succeeds.
func makeStartable(t *testing.T, dir *GameDirectory) {
	t.Helper()

	_, err := dir.Mutate(func(g *Game) error {
		red, err := g.CreateTeam("red", "Red", "")
		if err != nil {
			return err
		}
		blue, err := g.CreateTeam("blue", "Blue", "")
		if err != nil {
			return err
		}

		for _, seat := range []struct{ id, name, team string }{
			{"a", "Alice", red.ID()},
			{"b", "Bob", blue.ID()},
		} {
			p, err := g.AddPlayer(seat.id, seat.name, seat.team)
			if err != nil {
				return err
			}
			p.SetReady(true)
		}

		return nil
	})
	require.NoError(t, err)
}

func TestWSCreateAndJoin(t *testing.T) {
	_, srv := newTestServer(t)

	c1 := dialWS(t, srv)

	sendIntent(t, c1, ClientMessage{Type: "createGame", Name: "Pictionary Night"})

	event := readEvent(t, c1)
	assert.Equal(t, "gameCreated", event["type"])
	assert.Equal(t, true, event["success"])

	game, ok := event["game"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Pictionary Night", game["name"])
	assert.Equal(t, "waiting", game["state"])

	// A client connecting while a game is active gets the state up front.
	c2 := dialWS(t, srv)
	event = readEvent(t, c2)
	assert.Equal(t, "gameUpdated", event["type"])

	sendIntent(t, c2, ClientMessage{Type: "joinGame", PlayerName: "Alice"})

	event = readEvent(t, c2)
	assert.Equal(t, "playerJoined", event["type"])
	assert.Equal(t, true, event["success"])

	player, ok := event["player"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Alice", player["name"])

	// The other client sees the join as a plain state update.
	event = readEvent(t, c1)
	assert.Equal(t, "gameUpdated", event["type"])

	game, ok = event["game"].(map[string]any)
	require.True(t, ok)
	players, ok := game["players"].([]any)
	require.True(t, ok)
	assert.Len(t, players, 1)
}

func TestWSJoinDuplicateName(t *testing.T) {
	dir, srv := newTestServer(t)

	_, err := dir.CreateGame("Pictionary Night", GameOptions{})
	require.NoError(t, err)

	c1 := dialWS(t, srv)
	readEvent(t, c1) // initial gameUpdated

	sendIntent(t, c1, ClientMessage{Type: "joinGame", PlayerName: "Alice"})
	event := readEvent(t, c1)
	assert.Equal(t, "playerJoined", event["type"])

	c2 := dialWS(t, srv)
	readEvent(t, c2) // initial gameUpdated

	sendIntent(t, c2, ClientMessage{Type: "joinGame", PlayerName: "alice"})
	event = readEvent(t, c2)
	assert.Equal(t, "gameError", event["type"])
	assert.Contains(t, event["error"], "already")

	assert.False(t, dir.IsNameUnique("Alice"), "the original reservation stands")
}

func TestWSErrorsReachOriginatorOnly(t *testing.T) {
	dir, srv := newTestServer(t)

	_, err := dir.CreateGame("Pictionary Night", GameOptions{})
	require.NoError(t, err)

	c1 := dialWS(t, srv)
	readEvent(t, c1)
	c2 := dialWS(t, srv)
	readEvent(t, c2)

	// Creating a second game fails; only c1 hears about it.
	sendIntent(t, c1, ClientMessage{Type: "createGame", Name: "Another"})
	event := readEvent(t, c1)
	assert.Equal(t, "gameError", event["type"])
	assert.Contains(t, event["error"], "already active")

	// The next broadcast proves c2 never saw the error.
	sendIntent(t, c1, ClientMessage{Type: "chat", Message: "ping"})

	event = readEvent(t, c1)
	assert.Equal(t, "chatMessage", event["type"])
	assert.Equal(t, "ping", event["message"])

	event = readEvent(t, c2)
	assert.Equal(t, "chatMessage", event["type"])
}

func TestWSDrawingRelayExcludesSender(t *testing.T) {
	dir, srv := newTestServer(t)

	_, err := dir.CreateGame("Pictionary Night", GameOptions{})
	require.NoError(t, err)

	c1 := dialWS(t, srv)
	readEvent(t, c1)
	c2 := dialWS(t, srv)
	readEvent(t, c2)

	sendIntent(t, c2, ClientMessage{Type: "joinGame", PlayerName: "Alice"})
	joined := readEvent(t, c2)
	require.Equal(t, "playerJoined", joined["type"])
	player := joined["player"].(map[string]any)

	readEvent(t, c1) // gameUpdated from the join

	sendIntent(t, c2, ClientMessage{
		Type:    "drawingData",
		Drawing: &DrawingData{X: 12, Y: 34, Color: "#000000", Action: "draw"},
	})
	sendIntent(t, c2, ClientMessage{Type: "chat", Message: "done"})

	// c1 sees the stroke, then the chat.
	event := readEvent(t, c1)
	assert.Equal(t, "drawingUpdate", event["type"])
	assert.Equal(t, player["id"], event["playerId"])

	stroke, ok := event["drawingData"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(12), stroke["x"])
	assert.Equal(t, float64(34), stroke["y"])
	assert.Equal(t, "draw", stroke["action"])

	event = readEvent(t, c1)
	assert.Equal(t, "chatMessage", event["type"])

	// The sender skips straight to the chat: its own stroke is not echoed.
	event = readEvent(t, c2)
	assert.Equal(t, "chatMessage", event["type"])
}

func TestWSGameControl(t *testing.T) {
	dir, srv := newTestServer(t)

	_, err := dir.CreateGame("Pictionary Night", GameOptions{MaxRounds: 2})
	require.NoError(t, err)
	makeStartable(t, dir)

	c1 := dialWS(t, srv)
	readEvent(t, c1)

	steps := []struct {
		intent string
		state  string
		round  float64
	}{
		{"startGame", "playing", 1},
		{"pauseGame", "paused", 1},
		{"resumeGame", "playing", 1},
		{"nextRound", "playing", 2},
	}

	for _, step := range steps {
		sendIntent(t, c1, ClientMessage{Type: step.intent})

		event := readEvent(t, c1)
		require.Equal(t, "gameUpdated", event["type"], step.intent)

		game := event["game"].(map[string]any)
		assert.Equal(t, step.state, game["state"], step.intent)
		assert.Equal(t, step.round, game["currentRound"], step.intent)
	}

	// Crossing the round limit finishes the game.
	sendIntent(t, c1, ClientMessage{Type: "nextRound"})
	event := readEvent(t, c1)
	require.Equal(t, "gameUpdated", event["type"])
	game := event["game"].(map[string]any)
	assert.Equal(t, "finished", game["state"])
}

func TestWSStartWithoutTeams(t *testing.T) {
	dir, srv := newTestServer(t)

	_, err := dir.CreateGame("Pictionary Night", GameOptions{})
	require.NoError(t, err)

	c1 := dialWS(t, srv)
	readEvent(t, c1)

	sendIntent(t, c1, ClientMessage{Type: "startGame"})
	event := readEvent(t, c1)
	assert.Equal(t, "gameError", event["type"])
	assert.Contains(t, event["error"], "at least 2 teams")
}

func TestWSEndGame(t *testing.T) {
	dir, srv := newTestServer(t)

	_, err := dir.CreateGame("Pictionary Night", GameOptions{})
	require.NoError(t, err)

	c1 := dialWS(t, srv)
	readEvent(t, c1)
	c2 := dialWS(t, srv)
	readEvent(t, c2)

	sendIntent(t, c1, ClientMessage{Type: "endGame"})

	for _, conn := range []*websocket.Conn{c1, c2} {
		event := readEvent(t, conn)
		assert.Equal(t, "gameEnded", event["type"])

		game := event["game"].(map[string]any)
		assert.Equal(t, "finished", game["state"])
	}

	assert.False(t, dir.HasActiveGame())

	// Ending with nothing active is an error over the socket.
	sendIntent(t, c1, ClientMessage{Type: "endGame"})
	event := readEvent(t, c1)
	assert.Equal(t, "gameError", event["type"])
}

func TestWSChatDisabled(t *testing.T) {
	dir, srv := newTestServer(t)

	_, err := dir.CreateGame("Pictionary Night", GameOptions{EnableChat: boolPtr(false)})
	require.NoError(t, err)

	c1 := dialWS(t, srv)
	readEvent(t, c1)

	sendIntent(t, c1, ClientMessage{Type: "chat", Message: "hello"})
	event := readEvent(t, c1)
	assert.Equal(t, "gameError", event["type"])
	assert.Contains(t, event["error"], "chat is disabled")
}

func TestWSUnknownIntentIgnored(t *testing.T) {
	dir, srv := newTestServer(t)

	_, err := dir.CreateGame("Pictionary Night", GameOptions{})
	require.NoError(t, err)

	c1 := dialWS(t, srv)
	readEvent(t, c1)

	sendIntent(t, c1, ClientMessage{Type: "teleport"})
	sendIntent(t, c1, ClientMessage{Type: "chat", Message: "still here"})

	event := readEvent(t, c1)
	assert.Equal(t, "chatMessage", event["type"])
	assert.Equal(t, "still here", event["message"])
}
