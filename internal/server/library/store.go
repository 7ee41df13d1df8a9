// Package library holds the in-memory state of the library service: the
// users table and the book catalog.
//
// Each table has its own reader/writer lock and no operation ever holds
// both. Operations that span the two tables (lending) are sequences of
// independent critical sections, not transactions.
//
// The locks are sync.RWMutex: once a writer is blocked in Lock, new readers
// wait behind it, so a long reader delays a writer but a queue of readers
// cannot starve one.
package library

// Store bundles the two tables of one running service.
type Store struct {
	Users *UserTable
	Books *BookTable
}

// Stats is a point-in-time view of table sizes. The two tables are read
// one after another, so the numbers may come from different instants.
type Stats struct {
	Users          int
	Books          int
	AvailableBooks int
}

// NewStore creates both tables and seeds the catalog with titles in order.
// Titles beyond maxBooks are dropped and reported through ErrLibraryFull.
func NewStore(maxUsers, maxBooks int, titles []string) (*Store, error) {
	s := &Store{
		Users: NewUserTable(maxUsers),
		Books: NewBookTable(maxBooks),
	}

	s.Books.mu.Lock()
	defer s.Books.mu.Unlock()
	for _, title := range titles {
		if err := s.Books.addLocked(title); err != nil {
			return s, err
		}
	}

	return s, nil
}

// Stats reports current table sizes.
func (s *Store) Stats() Stats {
	st := Stats{Users: s.Users.Len()}

	for _, b := range s.Books.List() {
		st.Books++
		if b.Available {
			st.AvailableBooks++
		}
	}
	return st
}
