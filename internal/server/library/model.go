package library

// User is a registered library member. Users are created by a successful
// registration and never change afterwards.
type User struct {
	Name string
	ID   int
}

// Book is a catalog entry. Titles are not unique; Available flips on lend
// and return.
type Book struct {
	Title     string
	Available bool
}
