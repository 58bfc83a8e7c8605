package main

import (
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

type gameState string

const (
	gameWaiting  gameState = "waiting"
	gamePlaying  gameState = "playing"
	gamePaused   gameState = "paused"
	gameFinished gameState = "finished"
)

const (
	defaultMaxRounds         = 10
	defaultMaxTeams          = 4
	defaultMaxPlayersPerTeam = 6
)

// teamPalette supplies default team colors when none is given.
var teamPalette = []string{
	"#e6194b", // red
	"#3cb44b", // green
	"#4363d8", // blue
	"#ffe119", // yellow
	"#f58231", // orange
	"#911eb4", // purple
	"#42d4f4", // cyan
	"#f032e6", // magenta
}

// GameSettings is the per-game settings bag.
type GameSettings struct {
	AllowSpectators bool `json:"allowSpectators"`
	EnableChat      bool `json:"enableChat"`
	ShowScores      bool `json:"showScores"`
}

// GameOptions carries caller-supplied overrides at game creation. Zero
// values (or nil pointers) fall back to the defaults.
type GameOptions struct {
	MaxRounds         int   `json:"maxRounds,omitempty"`
	MaxTeams          int   `json:"maxTeams,omitempty"`
	MaxPlayersPerTeam int   `json:"maxPlayersPerTeam,omitempty"`
	AllowSpectators   *bool `json:"allowSpectators,omitempty"`
	EnableChat        *bool `json:"enableChat,omitempty"`
	ShowScores        *bool `json:"showScores,omitempty"`
}

// Game is the root of the entity graph: it owns both the team and the
// player collections. State transitions are monotonic except the
// playing/paused pair; finished is terminal.
type Game struct {
	entity
	state             gameState
	teams             []*Team
	players           []*Player
	currentRound      int
	maxRounds         int
	maxTeams          int
	maxPlayersPerTeam int
	currentWord       string
	currentDrawerID   string
	settings          GameSettings
	lastActivity      time.Time
}

type GameSnapshot struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Type              string            `json:"type"`
	CreatedAt         time.Time         `json:"createdAt"`
	State             string            `json:"state"`
	Teams             []*TeamSnapshot   `json:"teams"`
	Players           []*PlayerSnapshot `json:"players"`
	CurrentRound      int               `json:"currentRound"`
	MaxRounds         int               `json:"maxRounds"`
	MaxTeams          int               `json:"maxTeams"`
	MaxPlayersPerTeam int               `json:"maxPlayersPerTeam"`
	CurrentWord       string            `json:"currentWord,omitempty"`
	CurrentDrawer     string            `json:"currentDrawer,omitempty"`
	Settings          GameSettings      `json:"settings"`
	LastActivity      time.Time         `json:"lastActivity"`
}

func newGame(id, name string, opts GameOptions) *Game {
	g := &Game{
		entity:            newEntity(id, name),
		state:             gameWaiting,
		maxRounds:         defaultMaxRounds,
		maxTeams:          defaultMaxTeams,
		maxPlayersPerTeam: defaultMaxPlayersPerTeam,
		settings: GameSettings{
			AllowSpectators: true,
			EnableChat:      true,
			ShowScores:      true,
		},
		lastActivity: time.Now(),
	}

	if opts.MaxRounds > 0 {
		g.maxRounds = opts.MaxRounds
	}
	if opts.MaxTeams > 0 {
		g.maxTeams = opts.MaxTeams
	}
	if opts.MaxPlayersPerTeam > 0 {
		g.maxPlayersPerTeam = opts.MaxPlayersPerTeam
	}
	if opts.AllowSpectators != nil {
		g.settings.AllowSpectators = *opts.AllowSpectators
	}
	if opts.EnableChat != nil {
		g.settings.EnableChat = *opts.EnableChat
	}
	if opts.ShowScores != nil {
		g.settings.ShowScores = *opts.ShowScores
	}

	return g
}

func (g *Game) State() gameState {
	return g.state
}

func (g *Game) Round() int {
	return g.currentRound
}

func (g *Game) MaxRounds() int {
	return g.maxRounds
}

func (g *Game) CurrentWord() string {
	return g.currentWord
}

func (g *Game) CurrentDrawerID() string {
	return g.currentDrawerID
}

func (g *Game) Settings() GameSettings {
	return g.settings
}

func (g *Game) LastActivity() time.Time {
	return g.lastActivity
}

// Teams returns the teams in insertion order.
func (g *Game) Teams() []*Team {
	out := make([]*Team, len(g.teams))
	copy(out, g.teams)
	return out
}

// Players returns the players in insertion order.
func (g *Game) Players() []*Player {
	out := make([]*Player, len(g.players))
	copy(out, g.players)
	return out
}

func (g *Game) TeamByID(id string) *Team {
	for _, t := range g.teams {
		if t.id == id {
			return t
		}
	}
	return nil
}

func (g *Game) PlayerByID(id string) *Player {
	for _, p := range g.players {
		if p.id == id {
			return p
		}
	}
	return nil
}

func (g *Game) touch() {
	g.lastActivity = time.Now()
}

// Start moves the game from waiting to playing. It requires at least two
// teams, all of them ready, then sets round 1 and picks the first drawer.
func (g *Game) Start() error {
	if g.state != gameWaiting {
		return stateErr("game cannot be started from state \"" + string(g.state) + "\"")
	}
	if len(g.teams) < 2 {
		return stateErr("starting a game requires at least 2 teams")
	}
	for _, t := range g.teams {
		if !t.IsReady() {
			return stateErr("team \"" + t.name + "\" is not ready")
		}
	}

	g.state = gamePlaying
	g.currentRound = 1
	g.selectNextDrawer()
	g.touch()

	return nil
}

func (g *Game) Pause() error {
	if g.state != gamePlaying {
		return stateErr("only a playing game can be paused")
	}
	g.state = gamePaused
	g.touch()

	return nil
}

func (g *Game) Resume() error {
	if g.state != gamePaused {
		return stateErr("only a paused game can be resumed")
	}
	g.state = gamePlaying
	g.touch()

	return nil
}

// NextRound advances the round counter. Crossing maxRounds finishes the
// game and leaves the drawer unset; otherwise the next drawer is picked.
func (g *Game) NextRound() error {
	if g.state != gamePlaying {
		return stateErr("rounds can only advance while the game is playing")
	}

	g.currentRound++
	if g.currentRound > g.maxRounds {
		g.currentRound = g.maxRounds
		g.finish()
		g.touch()

		return nil
	}

	g.selectNextDrawer()
	g.touch()

	return nil
}

// End moves the game to finished from any state. Ending an already
// finished game is a no-op.
func (g *Game) End() {
	if g.state == gameFinished {
		return
	}
	g.finish()
	g.touch()
}

func (g *Game) finish() {
	g.state = gameFinished
	g.clearDrawer()
}

func (g *Game) clearDrawer() {
	for _, p := range g.players {
		p.drawing = false
	}
	g.currentDrawerID = ""
}

// selectNextDrawer round-robins over players that belong to an existing
// team, starting after the previous drawer. When no player was drawing,
// or the previous drawer is no longer eligible, it wraps to index 0.
func (g *Game) selectNextDrawer() {
	eligible := make([]*Player, 0, len(g.players))
	for _, p := range g.players {
		if p.teamID != "" && g.TeamByID(p.teamID) != nil {
			eligible = append(eligible, p)
		}
	}

	if len(eligible) == 0 {
		g.clearDrawer()
		return
	}

	next := 0
	for i, p := range eligible {
		if p.id == g.currentDrawerID {
			next = (i + 1) % len(eligible)
			break
		}
	}

	g.clearDrawer()
	eligible[next].drawing = true
	g.currentDrawerID = eligible[next].id
}

// CreateTeam adds a team, bounded by maxTeams. An empty id gets a fresh
// one; an empty color gets a pseudo-random pick from the palette.
func (g *Game) CreateTeam(id, name, color string) (*Team, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if g.TeamByID(id) != nil {
		return nil, conflictErr("team id \"" + id + "\" is already in use")
	}
	if len(g.teams) >= g.maxTeams {
		return nil, stateErr("the game already has the maximum number of teams")
	}
	if color == "" {
		color = teamPalette[rand.Intn(len(teamPalette))]
	}

	t := newTeam(id, name, color)
	g.teams = append(g.teams, t)
	g.touch()

	return t, nil
}

// RemoveTeam drops a team and evicts its players from the game's player
// collection. Reserved player names are NOT released here; that remains
// the caller's responsibility.
func (g *Game) RemoveTeam(id string) error {
	idx := -1
	for i, t := range g.teams {
		if t.id == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return notFoundErr("team \"" + id + "\" not found")
	}

	evicted := make(map[string]struct{})
	for _, p := range g.teams[idx].members {
		evicted[p.id] = struct{}{}
		p.LeaveTeam()
	}

	g.teams = append(g.teams[:idx], g.teams[idx+1:]...)

	dst := g.players[:0]
	for _, p := range g.players {
		if _, gone := evicted[p.id]; gone {
			if p.id == g.currentDrawerID {
				g.currentDrawerID = ""
			}
			continue
		}
		dst = append(dst, p)
	}
	g.players = dst

	g.touch()

	return nil
}

// AddPlayer adds a player to the game, optionally attaching it to an
// existing team. A teamID that resolves to no team is ignored.
func (g *Game) AddPlayer(id, name, teamID string) (*Player, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if g.PlayerByID(id) != nil {
		return nil, conflictErr("player id \"" + id + "\" is already in use")
	}

	var team *Team
	if teamID != "" {
		if team = g.TeamByID(teamID); team != nil && team.PlayerCount() >= g.maxPlayersPerTeam {
			return nil, stateErr("team \"" + team.name + "\" is full")
		}
	}

	p := newPlayer(id, name)
	g.players = append(g.players, p)

	if team != nil {
		if err := team.AddPlayer(p); err != nil {
			return nil, err
		}
	}

	g.touch()

	return p, nil
}

// RemovePlayer drops a player, detaching it from its team first.
func (g *Game) RemovePlayer(id string) error {
	p := g.PlayerByID(id)
	if p == nil {
		return notFoundErr("player \"" + id + "\" not found")
	}

	if p.teamID != "" {
		if t := g.TeamByID(p.teamID); t != nil {
			_ = t.RemovePlayer(id)
		}
	}

	dst := g.players[:0]
	for _, q := range g.players {
		if q.id == id {
			continue
		}
		dst = append(dst, q)
	}
	g.players = dst

	if g.currentDrawerID == id {
		g.currentDrawerID = ""
	}

	g.touch()

	return nil
}

// SetCurrentWord stores the normalized (trimmed, lower-cased) word.
func (g *Game) SetCurrentWord(word string) error {
	if strings.TrimSpace(word) == "" {
		return validationErr("word must not be empty")
	}

	g.currentWord = normalizeName(word)
	g.touch()

	return nil
}

func (g *Game) Snapshot() *GameSnapshot {
	teams := make([]*TeamSnapshot, 0, len(g.teams))
	for _, t := range g.teams {
		teams = append(teams, t.Snapshot())
	}

	players := make([]*PlayerSnapshot, 0, len(g.players))
	for _, p := range g.players {
		players = append(players, p.Snapshot())
	}

	return &GameSnapshot{
		ID:                g.id,
		Name:              g.name,
		Type:              "game",
		CreatedAt:         g.createdAt,
		State:             string(g.state),
		Teams:             teams,
		Players:           players,
		CurrentRound:      g.currentRound,
		MaxRounds:         g.maxRounds,
		MaxTeams:          g.maxTeams,
		MaxPlayersPerTeam: g.maxPlayersPerTeam,
		CurrentWord:       g.currentWord,
		CurrentDrawer:     g.currentDrawerID,
		Settings:          g.settings,
		LastActivity:      g.lastActivity,
	}
}
