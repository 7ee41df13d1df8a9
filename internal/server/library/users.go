package library

import "sync"

// UserTable is the registered-users table. Readers share the lock; a
// registration holds it exclusively for the whole check-then-insert.
type UserTable struct {
	mu     sync.RWMutex
	users  []User
	byName map[string]int
	nextID int
	max    int
}

// NewUserTable returns an empty table that accepts at most max users.
func NewUserTable(max int) *UserTable {
	return &UserTable{
		byName: make(map[string]int),
		nextID: 1,
		max:    max,
	}
}

// findLocked returns the index of name or -1. Callers hold mu.
func (t *UserTable) findLocked(name string) int {
	idx, ok := t.byName[name]
	if !ok {
		return -1
	}
	return idx
}

// Exists reports whether name is registered.
func (t *UserTable) Exists(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.findLocked(name) != -1
}

// Register adds name to the table and returns its id.
func (t *UserTable) Register(name string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.findLocked(name) != -1 {
		return 0, ErrUserExists
	}
	if len(t.users) >= t.max {
		return 0, ErrMaxUsers
	}

	u := User{Name: name, ID: t.nextID}
	t.nextID++
	t.byName[name] = len(t.users)
	t.users = append(t.users, u)

	return u.ID, nil
}

// Len returns the number of registered users.
func (t *UserTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.users)
}

// List returns a copy of the table in registration order.
func (t *UserTable) List() []User {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]User, len(t.users))
	copy(out, t.users)
	return out
}
