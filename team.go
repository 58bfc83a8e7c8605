package main

import "time"

// Team groups a subset of the owning game's players. Members are held in
// insertion order; the game remains the sole owner of the player records.
type Team struct {
	entity
	members []*Player
	score   int
	color   string
	active  bool
}

type TeamSnapshot struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	Players   []string  `json:"players"`
	Score     int       `json:"score"`
	Color     string    `json:"color"`
	IsActive  bool      `json:"isActive"`
	IsReady   bool      `json:"isReady"`
}

func newTeam(id, name, color string) *Team {
	return &Team{
		entity: newEntity(id, name),
		color:  color,
		active: true,
	}
}

func (t *Team) Score() int {
	return t.score
}

func (t *Team) Color() string {
	return t.color
}

func (t *Team) PlayerCount() int {
	return len(t.members)
}

func (t *Team) hasPlayer(id string) bool {
	for _, p := range t.members {
		if p.id == id {
			return true
		}
	}
	return false
}

// AddPlayer inserts the player and points its team reference at this team.
func (t *Team) AddPlayer(p *Player) error {
	if t.hasPlayer(p.id) {
		return conflictErr("player \"" + p.name + "\" is already on team \"" + t.name + "\"")
	}

	t.members = append(t.members, p)
	p.JoinTeam(t.id)

	return nil
}

// RemovePlayer clears the player's team reference and drawing flag, then
// drops it from the member list.
func (t *Team) RemovePlayer(id string) error {
	dst := t.members[:0]
	found := false

	for _, p := range t.members {
		if p.id == id {
			found = true
			p.LeaveTeam()
			continue
		}
		dst = append(dst, p)
	}
	t.members = dst

	if !found {
		return notFoundErr("player not found on team \"" + t.name + "\"")
	}

	return nil
}

func (t *Team) AddScore(points int) error {
	if points < 0 {
		return validationErr("points must not be negative")
	}
	t.score += points

	return nil
}

// IsReady reports whether the team can start a game: at least one player,
// and every player's ready flag set. An empty team is never ready.
func (t *Team) IsReady() bool {
	if len(t.members) == 0 {
		return false
	}
	for _, p := range t.members {
		if !p.ready {
			return false
		}
	}
	return true
}

func (t *Team) Snapshot() *TeamSnapshot {
	players := make([]string, 0, len(t.members))
	for _, p := range t.members {
		players = append(players, p.id)
	}

	return &TeamSnapshot{
		ID:        t.id,
		Name:      t.name,
		Type:      "team",
		CreatedAt: t.createdAt,
		Players:   players,
		Score:     t.score,
		Color:     t.color,
		IsActive:  t.active,
		IsReady:   t.IsReady(),
	}
}
