package main

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// GameDirectory enforces the "at most one active game" rule, owns the
// append-only history of ended games, and delegates name bookkeeping to
// the NameRegistry. It is an injectable service object, not package
// state; its lock guards the active slot and the entity graph under it,
// since both the websocket hub and the HTTP handlers reach the same game.
type GameDirectory struct {
	mu       sync.RWMutex
	registry *NameRegistry
	active   *Game
	history  []GameRecord
	log      *logrus.Logger
}

// GameRecord is one entry in the directory's history log.
type GameRecord struct {
	Game    *GameSnapshot `json:"game"`
	EndedAt time.Time     `json:"endedAt"`
}

// GameSummary is the condensed view of the active game used in statistics.
type GameSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	State        string `json:"state"`
	Teams        int    `json:"teams"`
	Players      int    `json:"players"`
	CurrentRound int    `json:"currentRound"`
}

// DirectoryStats is the payload behind GET /api/stats.
type DirectoryStats struct {
	Initialized        bool         `json:"initialized"`
	HasActiveGame      bool         `json:"hasActiveGame"`
	TotalGamesPlayed   int          `json:"totalGamesPlayed"`
	UniqueNamesCount   int          `json:"uniqueNamesCount"`
	CurrentGameSummary *GameSummary `json:"currentGameSummary,omitempty"`
}

func newGameDirectory(log *logrus.Logger) *GameDirectory {
	if log == nil {
		log = logrus.New()
	}

	return &GameDirectory{
		registry: newNameRegistry(),
		log:      log,
	}
}

// CreateGame reserves the name and installs a new game as the sole active
// one. It fails if a game is already active, the name is empty, or the
// normalized name is already reserved.
func (d *GameDirectory) CreateGame(name string, opts GameOptions) (*GameSnapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.active != nil {
		return nil, conflictErr("a game is already active")
	}
	if normalizeName(name) == "" {
		return nil, validationErr("game name must not be empty")
	}
	if err := d.registry.Register(name); err != nil {
		return nil, err
	}

	d.active = newGame(uuid.NewString(), name, opts)

	d.log.WithFields(logrus.Fields{
		"game": d.active.id,
		"name": name,
	}).Info("game created")

	return d.active.Snapshot(), nil
}

// HasActiveGame reports whether a game currently occupies the active slot.
func (d *GameDirectory) HasActiveGame() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.active != nil
}

// CurrentSnapshot returns a point-in-time view of the active game, or nil
// when the directory is idle.
func (d *GameDirectory) CurrentSnapshot() *GameSnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.active == nil {
		return nil
	}

	return d.active.Snapshot()
}

// Mutate runs fn against the active game under the directory lock and
// returns a fresh snapshot on success. It fails with a NotFoundError when
// no game is active.
func (d *GameDirectory) Mutate(fn func(*Game) error) (*GameSnapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.active == nil {
		return nil, notFoundErr("No active game")
	}
	if err := fn(d.active); err != nil {
		return nil, err
	}

	return d.active.Snapshot(), nil
}

// EndCurrentGame finishes the active game, archives it, releases its
// reserved name, and clears the slot. With no active game it returns nil
// rather than an error.
func (d *GameDirectory) EndCurrentGame() *GameSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.active == nil {
		return nil
	}

	g := d.active
	g.End()

	snapshot := g.Snapshot()
	d.history = append(d.history, GameRecord{
		Game:    snapshot,
		EndedAt: time.Now(),
	})

	d.registry.Unregister(g.name)
	d.active = nil

	d.log.WithFields(logrus.Fields{
		"game":   g.id,
		"name":   g.name,
		"rounds": g.currentRound,
	}).Info("game ended")

	return snapshot
}

// IsNameUnique normalizes and checks the name against the registry.
// Empty input is conservatively treated as not unique.
func (d *GameDirectory) IsNameUnique(name string) bool {
	if normalizeName(name) == "" {
		return false
	}

	return !d.registry.IsRegistered(name)
}

// RegisterUniqueName reserves a team or player name independent of the
// game lifecycle.
func (d *GameDirectory) RegisterUniqueName(name string) error {
	return d.registry.Register(name)
}

// UnregisterUniqueName releases a reserved name; absent names are a no-op.
func (d *GameDirectory) UnregisterUniqueName(name string) {
	d.registry.Unregister(name)
}

// History returns the ended games, oldest first.
func (d *GameDirectory) History() []GameRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]GameRecord, len(d.history))
	copy(out, d.history)

	return out
}

// Stats summarizes the directory for the stats endpoint.
func (d *GameDirectory) Stats() DirectoryStats {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stats := DirectoryStats{
		Initialized:      true,
		HasActiveGame:    d.active != nil,
		TotalGamesPlayed: len(d.history),
		UniqueNamesCount: d.registry.Len(),
	}

	if d.active != nil {
		stats.CurrentGameSummary = &GameSummary{
			ID:           d.active.id,
			Name:         d.active.name,
			State:        string(d.active.state),
			Teams:        len(d.active.teams),
			Players:      len(d.active.players),
			CurrentRound: d.active.currentRound,
		}
	}

	return stats
}

// Reset clears the active slot, the history, and every reserved name.
// Only tests use this.
func (d *GameDirectory) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.active = nil
	d.history = nil
	d.registry = newNameRegistry()
}
