package main

import (
	"strings"
	"time"
)

// entity holds the fields shared by games, teams, and players. The id is
// assigned once at construction and never reassigned.
type entity struct {
	id        string
	name      string
	createdAt time.Time
}

func newEntity(id, name string) entity {
	return entity{
		id:        id,
		name:      name,
		createdAt: time.Now(),
	}
}

func (e *entity) ID() string {
	return e.id
}

func (e *entity) Name() string {
	return e.name
}

func (e *entity) CreatedAt() time.Time {
	return e.createdAt
}

// normalizeName produces the uniqueness key for a display name:
// surrounding whitespace trimmed, letters lower-cased.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
