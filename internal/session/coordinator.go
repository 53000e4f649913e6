package session

import (
	"context"
	"time"

	"github.com/kayratasci4/Notes/internal/errors"
	"github.com/kayratasci4/Notes/internal/note"
	"github.com/kayratasci4/Notes/internal/repo"
)

// Coordinator owns the active selection: the id of the note the editor
// session is currently bound to, or none. A selection may dangle
// transiently after a delete; Active resolves it against the collection
// and reports "none" in that case, which is how consumers must treat it.
type Coordinator struct {
	repo    *repo.Repository
	session *Session

	activeID string
}

// NewCoordinator wires a repository and a generation client into a
// coordinator with a single reusable editor session.
func NewCoordinator(r *repo.Repository, gen Generator, quiet time.Duration) *Coordinator {
	return &Coordinator{
		repo:    r,
		session: New(r, gen, quiet),
	}
}

// Session returns the editor session.
func (c *Coordinator) Session() *Session {
	return c.session
}

// Create makes a new note, selects it, and binds the session to it.
func (c *Coordinator) Create(ctx context.Context) (note.Note, error) {
	n, err := c.repo.Create(ctx)
	if err != nil {
		return note.Note{}, err
	}
	c.activeID = n.ID
	c.session.Bind(n)
	return n, nil
}

// Select binds the session to the note with the given id. The previous
// buffer is discarded (a switch is an implicit discard, not a flush).
func (c *Coordinator) Select(id string) (note.Note, error) {
	n, ok := c.repo.Get(id)
	if !ok {
		return note.Note{}, errors.NewNotFound(id)
	}
	c.activeID = id
	c.session.Bind(n)
	return n, nil
}

// ClearSelection unbinds the session and clears the active selection.
func (c *Coordinator) ClearSelection() {
	c.activeID = ""
	c.session.Unbind()
}

// Active resolves the active selection against the collection. A
// dangling id (note deleted since selection) reports as no selection.
func (c *Coordinator) Active() (note.Note, bool) {
	if c.activeID == "" {
		return note.Note{}, false
	}
	return c.repo.Get(c.activeID)
}

// Delete removes the note and clears the selection if it pointed at the
// deleted id. Confirmation gating happens at the presentation boundary,
// before this is invoked.
func (c *Coordinator) Delete(ctx context.Context, id string) bool {
	removed := c.repo.Delete(ctx, id)
	if c.activeID == id {
		c.ClearSelection()
	}
	return removed
}
