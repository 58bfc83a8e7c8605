// Sketchwars real-time layer.
//
// A single hub serializes every client intent through one dispatch
// goroutine: create game, join game, game control (start/pause/resume/
// next round/end), chat, and raw drawing strokes. On every successful
// mutation the updated game snapshot is pushed to connected clients;
// stroke payloads are relayed verbatim to everyone except the sender,
// with no server-side interpretation or persistence.
//
// Broadcast policy:
//   - createGame / joinGame confirm to the originator (gameCreated /
//     playerJoined) and send gameUpdated to everyone else
//   - game-control intents send gameUpdated (or gameEnded) to everyone,
//     originator included
//   - errors become gameError events to the originating connection only
//
// Disconnects discard the session record and mutate no game state; a
// disconnected player stays in the game until explicitly removed.

package main

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
)

// ClientMessage is the envelope for every client-issued intent.
type ClientMessage struct {
	Type       string       `json:"type"`                  // "createGame", "joinGame", "drawingData", "startGame", "pauseGame", "resumeGame", "nextRound", "endGame", "chat"
	Name       string       `json:"name,omitempty"`        // createGame
	Options    GameOptions  `json:"options,omitempty"`     // createGame
	PlayerID   string       `json:"playerId,omitempty"`    // joinGame
	PlayerName string       `json:"playerName,omitempty"`  // joinGame
	TeamID     string       `json:"teamId,omitempty"`      // joinGame
	Drawing    *DrawingData `json:"drawingData,omitempty"` // drawingData
	Message    string       `json:"message,omitempty"`     // chat
}

// DrawingData is a raw stroke payload. The server never interprets it.
type DrawingData struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Color     string  `json:"color,omitempty"`
	BrushSize float64 `json:"brushSize,omitempty"`
	Action    string  `json:"action,omitempty"`
}

type GameCreatedEvent struct {
	Type    string        `json:"type"` // "gameCreated"
	Success bool          `json:"success"`
	Game    *GameSnapshot `json:"game"`
}

type GameUpdatedEvent struct {
	Type string        `json:"type"` // "gameUpdated"
	Game *GameSnapshot `json:"game"`
}

type PlayerJoinedEvent struct {
	Type    string          `json:"type"` // "playerJoined"
	Success bool            `json:"success"`
	Player  *PlayerSnapshot `json:"player"`
}

type DrawingUpdateEvent struct {
	Type        string       `json:"type"`     // "drawingUpdate"
	PlayerID    string       `json:"playerId"` // originating player, if joined
	DrawingData *DrawingData `json:"drawingData"`
}

type ChatMessageEvent struct {
	Type     string `json:"type"` // "chatMessage"
	PlayerID string `json:"playerId,omitempty"`
	Message  string `json:"message"`
	TS       int64  `json:"ts"`
}

type GameEndedEvent struct {
	Type string        `json:"type"` // "gameEnded"
	Game *GameSnapshot `json:"game"`
}

type GameErrorEvent struct {
	Type  string `json:"type"` // "gameError"
	Error string `json:"error"`
}

// Session is the per-connection record kept by the hub.
type Session struct {
	GameID      string
	PlayerID    string
	ConnectedAt time.Time
}

type Client struct {
	conn    *websocket.Conn
	send    chan any
	session Session
}

type intentRequest struct {
	client *Client
	msg    ClientMessage
}

// Hub relays intents between connected clients and the game directory.
type Hub struct {
	dir *GameDirectory
	log *logrus.Logger

	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client
	intents  chan intentRequest

	mu sync.RWMutex
}

func newHub(dir *GameDirectory, log *logrus.Logger) *Hub {
	return &Hub{
		dir:      dir,
		log:      log,
		clients:  make(map[*Client]bool),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		intents:  make(chan intentRequest),
	}
}

// run is the single dispatch loop. Each intent is handled to completion
// before the next is read, so no two intents interleave.
func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()

			h.log.WithField("clients", h.clientCount()).Debug("client connected")

			// New connections get the current state right away.
			if snapshot := h.dir.CurrentSnapshot(); snapshot != nil {
				c.send <- GameUpdatedEvent{
					Type: "gameUpdated",
					Game: snapshot,
				}
			}

		case c := <-h.unreg:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

			// The session is discarded as-is: no game-state cleanup
			// happens on disconnect.
			h.log.WithFields(logrus.Fields{
				"player":  c.session.PlayerID,
				"clients": h.clientCount(),
			}).Debug("client disconnected")

		case ir := <-h.intents:
			h.handleIntent(ir.client, ir.msg)
		}
	}
}

func (h *Hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

func (h *Hub) handleIntent(c *Client, msg ClientMessage) {
	switch msg.Type {
	case "createGame":
		h.handleCreateGame(c, msg)
	case "joinGame":
		h.handleJoinGame(c, msg)
	case "drawingData":
		h.handleDrawing(c, msg)
	case "startGame":
		h.handleControl(c, (*Game).Start)
	case "pauseGame":
		h.handleControl(c, (*Game).Pause)
	case "resumeGame":
		h.handleControl(c, (*Game).Resume)
	case "nextRound":
		h.handleControl(c, (*Game).NextRound)
	case "endGame":
		h.handleEndGame(c)
	case "chat":
		h.handleChat(c, msg)
	default:
		// ignore unknown types
	}
}

func (h *Hub) handleCreateGame(c *Client, msg ClientMessage) {
	snapshot, err := h.dir.CreateGame(msg.Name, msg.Options)
	if err != nil {
		h.sendError(c, err)
		return
	}

	c.session.GameID = snapshot.ID

	h.sendTo(c, GameCreatedEvent{
		Type:    "gameCreated",
		Success: true,
		Game:    snapshot,
	})
	h.broadcastExcept(c, GameUpdatedEvent{
		Type: "gameUpdated",
		Game: snapshot,
	})
}

func (h *Hub) handleJoinGame(c *Client, msg ClientMessage) {
	v := validateName(msg.PlayerName, "player")
	if !v.Valid {
		h.sendError(c, validationErr(v.Message))
		return
	}

	if err := h.dir.RegisterUniqueName(msg.PlayerName); err != nil {
		h.sendError(c, err)
		return
	}

	var player *PlayerSnapshot
	snapshot, err := h.dir.Mutate(func(g *Game) error {
		p, err := g.AddPlayer(msg.PlayerID, msg.PlayerName, msg.TeamID)
		if err != nil {
			return err
		}
		player = p.Snapshot()

		return nil
	})
	if err != nil {
		// The name reservation rolls back so the join leaves no trace.
		h.dir.UnregisterUniqueName(msg.PlayerName)
		h.sendError(c, err)

		return
	}

	c.session.GameID = snapshot.ID
	c.session.PlayerID = player.ID

	h.log.WithFields(logrus.Fields{
		"game":   snapshot.ID,
		"player": player.ID,
		"name":   player.Name,
	}).Info("player joined")

	h.sendTo(c, PlayerJoinedEvent{
		Type:    "playerJoined",
		Success: true,
		Player:  player,
	})
	h.broadcastExcept(c, GameUpdatedEvent{
		Type: "gameUpdated",
		Game: snapshot,
	})
}

// handleDrawing relays the stroke to every other connection, unchanged.
func (h *Hub) handleDrawing(c *Client, msg ClientMessage) {
	if msg.Drawing == nil {
		return
	}

	h.broadcastExcept(c, DrawingUpdateEvent{
		Type:        "drawingUpdate",
		PlayerID:    c.session.PlayerID,
		DrawingData: msg.Drawing,
	})
}

func (h *Hub) handleControl(c *Client, op func(*Game) error) {
	snapshot, err := h.dir.Mutate(op)
	if err != nil {
		h.sendError(c, err)
		return
	}

	h.broadcastAll(GameUpdatedEvent{
		Type: "gameUpdated",
		Game: snapshot,
	})
}

func (h *Hub) handleEndGame(c *Client) {
	snapshot := h.dir.EndCurrentGame()
	if snapshot == nil {
		h.sendError(c, notFoundErr("No active game"))
		return
	}

	h.broadcastAll(GameEndedEvent{
		Type: "gameEnded",
		Game: snapshot,
	})
}

func (h *Hub) handleChat(c *Client, msg ClientMessage) {
	snapshot := h.dir.CurrentSnapshot()
	if snapshot == nil {
		h.sendError(c, notFoundErr("No active game"))
		return
	}
	if !snapshot.Settings.EnableChat {
		h.sendError(c, stateErr("chat is disabled for this game"))
		return
	}

	h.broadcastAll(ChatMessageEvent{
		Type:     "chatMessage",
		PlayerID: c.session.PlayerID,
		Message:  msg.Message,
		TS:       time.Now().Unix(),
	})
}

func (h *Hub) sendError(c *Client, err error) {
	h.sendTo(c, GameErrorEvent{
		Type:  "gameError",
		Error: err.Error(),
	})
}

// sendTo delivers to a single client, dropping it if its send buffer is
// full.
func (h *Hub) sendTo(c *Client, msg any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}

	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) broadcastAll(msg any) {
	h.broadcast(nil, msg)
}

func (h *Hub) broadcastExcept(origin *Client, msg any) {
	h.broadcast(origin, msg)
}

func (h *Hub) broadcast(skip *Client, msg any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if client == skip {
			continue
		}

		select {
		case client.send <- msg:
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
}

// BroadcastState pushes the given snapshot to every connection. The HTTP
// handlers use it so REST mutations reach real-time clients too.
func (h *Hub) BroadcastState(snapshot *GameSnapshot) {
	if snapshot == nil {
		return
	}

	h.broadcastAll(GameUpdatedEvent{
		Type: "gameUpdated",
		Game: snapshot,
	})
}

// BroadcastEnded announces an archived game to every connection.
func (h *Hub) BroadcastEnded(snapshot *GameSnapshot) {
	if snapshot == nil {
		return
	}

	h.broadcastAll(GameEndedEvent{
		Type: "gameEnded",
		Game: snapshot,
	})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// serveWS upgrades the connection and attaches it to the hub.
func serveWS(h *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.WithError(err).Warn("websocket upgrade failed")
			return
		}

		client := &Client{
			conn: conn,
			send: make(chan any, 8),
			session: Session{
				ConnectedAt: time.Now(),
			},
		}

		h.register <- client

		go client.writePump()
		client.readPump(h)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		h.unreg <- c
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		h.intents <- intentRequest{
			client: c,
			msg:    msg,
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
