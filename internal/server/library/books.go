package library

import "sync"

// BookTable is the catalog. Titles may repeat; lookups resolve to the first
// entry with that title in insertion order.
type BookTable struct {
	mu      sync.RWMutex
	books   []Book
	byTitle map[string]int
	max     int
}

// NewBookTable returns an empty catalog that holds at most max books.
func NewBookTable(max int) *BookTable {
	return &BookTable{
		byTitle: make(map[string]int),
		max:     max,
	}
}

// findLocked returns the index of the first book titled title or -1.
// Callers hold mu.
func (t *BookTable) findLocked(title string) int {
	idx, ok := t.byTitle[title]
	if !ok {
		return -1
	}
	return idx
}

func (t *BookTable) addLocked(title string) error {
	if len(t.books) >= t.max {
		return ErrLibraryFull
	}
	if _, ok := t.byTitle[title]; !ok {
		t.byTitle[title] = len(t.books)
	}
	t.books = append(t.books, Book{Title: title, Available: true})
	return nil
}

// Find returns the first book titled title and its index.
func (t *BookTable) Find(title string) (Book, int, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	idx := t.findLocked(title)
	if idx == -1 {
		return Book{}, -1, false
	}
	return t.books[idx], idx, true
}

// Add appends an available book. Duplicate titles get their own entry.
func (t *BookTable) Add(title string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.addLocked(title)
}

// Lend marks the first book titled title as lent. A missing title and an
// already lent one both report ErrBookNotAvailable.
func (t *BookTable) Lend(title string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := t.findLocked(title)
	if idx == -1 || !t.books[idx].Available {
		return ErrBookNotAvailable
	}
	t.books[idx].Available = false
	return nil
}

// Return marks the first book titled title as available again. Returning a
// book that was never lent is not an error.
func (t *BookTable) Return(title string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := t.findLocked(title)
	if idx == -1 {
		return ErrBookNotFound
	}
	t.books[idx].Available = true
	return nil
}

// SetAvailability overwrites the availability of the book at index.
func (t *BookTable) SetAvailability(index int, available bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if index < 0 || index >= len(t.books) {
		return ErrBookNotFound
	}
	t.books[index].Available = available
	return nil
}

// Len returns the number of catalog entries.
func (t *BookTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.books)
}

// List returns a copy of the catalog in insertion order.
func (t *BookTable) List() []Book {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Book, len(t.books))
	copy(out, t.books)
	return out
}
