package main

import "sync"

// NameRegistry tracks the set of normalized names currently reserved
// across all games, teams, and players. A name may be held at most once.
type NameRegistry struct {
	mu    sync.Mutex
	names map[string]struct{}
}

func newNameRegistry() *NameRegistry {
	return &NameRegistry{
		names: make(map[string]struct{}),
	}
}

// Register reserves the normalized form of name. Registering a name that
// is already reserved fails with a ConflictError.
func (nr *NameRegistry) Register(name string) error {
	key := normalizeName(name)
	if key == "" {
		return validationErr("name must not be empty")
	}

	nr.mu.Lock()
	defer nr.mu.Unlock()

	if _, taken := nr.names[key]; taken {
		return conflictErr("name \"" + name + "\" is already taken")
	}
	nr.names[key] = struct{}{}

	return nil
}

// Unregister releases a reserved name. Releasing an absent name is a no-op.
func (nr *NameRegistry) Unregister(name string) {
	key := normalizeName(name)

	nr.mu.Lock()
	defer nr.mu.Unlock()

	delete(nr.names, key)
}

// IsRegistered reports whether the normalized form of name is reserved.
func (nr *NameRegistry) IsRegistered(name string) bool {
	key := normalizeName(name)

	nr.mu.Lock()
	defer nr.mu.Unlock()

	_, taken := nr.names[key]

	return taken
}

// Len returns the number of currently reserved names.
func (nr *NameRegistry) Len() int {
	nr.mu.Lock()
	defer nr.mu.Unlock()

	return len(nr.names)
}
