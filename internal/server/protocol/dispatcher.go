package protocol

import (
	"context"

	"github.com/dmitrijs2005/librarian/internal/server/library"
)

// Dispatcher routes parsed requests to the library tables. Every table error
// is turned into a failure response here; nothing escapes to the caller.
type Dispatcher struct {
	store *library.Store
}

// NewDispatcher returns a dispatcher operating on store.
func NewDispatcher(store *library.Store) *Dispatcher {
	return &Dispatcher{store: store}
}

// Dispatch executes req and returns the response to send.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Response {
	switch req.Command {
	case CmdRegister:
		return d.register(req.Arg1)
	case CmdLend:
		return d.lend(req.Arg1, req.Arg2)
	case CmdReturn:
		return d.giveBack(req.Arg1)
	case CmdAddBook:
		return d.addBook(req.Arg1)
	default:
		return Failure(ErrUnknownCommand)
	}
}

func (d *Dispatcher) register(name string) Response {
	if name == "" {
		return Failure(ErrMissingArgument)
	}

	id, err := d.store.Users.Register(name)
	if err != nil {
		return Failure(err)
	}
	return SuccessID(id)
}

// lend checks the user under the users read lock, releases it, and only
// then takes the catalog write lock. The two checks are not atomic together.
func (d *Dispatcher) lend(title, name string) Response {
	if title == "" || name == "" {
		return Failure(ErrMissingArgument)
	}

	if !d.store.Users.Exists(name) {
		return Failure(library.ErrUserNotFound)
	}

	if err := d.store.Books.Lend(title); err != nil {
		return Failure(err)
	}
	return Success()
}

func (d *Dispatcher) giveBack(title string) Response {
	if title == "" {
		return Failure(ErrMissingArgument)
	}

	if err := d.store.Books.Return(title); err != nil {
		return Failure(err)
	}
	return Success()
}

func (d *Dispatcher) addBook(title string) Response {
	if title == "" {
		return Failure(ErrMissingArgument)
	}

	if err := d.store.Books.Add(title); err != nil {
		return Failure(err)
	}
	return Success()
}
