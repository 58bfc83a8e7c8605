package main

import "time"

// activityWindow is the recency window within which a player counts as
// active. "Active" is computed from lastActive, never stored.
const activityWindow = 5 * time.Minute

// Player is one participant in a game. The team reference is a weak,
// id-based lookup into the owning game's team collection.
type Player struct {
	entity
	teamID     string
	score      int
	drawing    bool
	ready      bool
	lastActive time.Time
}

type PlayerSnapshot struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	CreatedAt  time.Time `json:"createdAt"`
	TeamID     string    `json:"teamId,omitempty"`
	Score      int       `json:"score"`
	IsDrawing  bool      `json:"isDrawing"`
	IsReady    bool      `json:"isReady"`
	LastActive time.Time `json:"lastActive"`
	IsActive   bool      `json:"isActive"`
}

func newPlayer(id, name string) *Player {
	return &Player{
		entity:     newEntity(id, name),
		lastActive: time.Now(),
	}
}

func (p *Player) TeamID() string {
	return p.teamID
}

func (p *Player) Score() int {
	return p.score
}

func (p *Player) IsDrawing() bool {
	return p.drawing
}

func (p *Player) IsReady() bool {
	return p.ready
}

func (p *Player) JoinTeam(teamID string) {
	p.teamID = teamID
	p.touch()
}

// LeaveTeam clears the team reference along with the drawing flag.
func (p *Player) LeaveTeam() {
	p.teamID = ""
	p.drawing = false
	p.touch()
}

func (p *Player) SetDrawing(drawing bool) {
	p.drawing = drawing
	p.touch()
}

func (p *Player) SetReady(ready bool) {
	p.ready = ready
	p.touch()
}

func (p *Player) AddScore(points int) error {
	if points < 0 {
		return validationErr("points must not be negative")
	}
	p.score += points
	p.touch()

	return nil
}

func (p *Player) ResetScore() {
	p.score = 0
	p.touch()
}

// IsActive reports whether the player showed activity within the last
// five minutes.
func (p *Player) IsActive() bool {
	return time.Since(p.lastActive) <= activityWindow
}

func (p *Player) touch() {
	p.lastActive = time.Now()
}

func (p *Player) Snapshot() *PlayerSnapshot {
	return &PlayerSnapshot{
		ID:         p.id,
		Name:       p.name,
		Type:       "player",
		CreatedAt:  p.createdAt,
		TeamID:     p.teamID,
		Score:      p.score,
		IsDrawing:  p.drawing,
		IsReady:    p.ready,
		LastActive: p.lastActive,
		IsActive:   p.IsActive(),
	}
}
