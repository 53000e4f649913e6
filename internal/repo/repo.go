// Package repo owns the in-memory note collection and keeps it
// synchronized with the durable store. The collection is authoritative for
// the running session; storage is a snapshot, not a source of concurrent
// truth.
package repo

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/kayratasci4/Notes/internal/errors"
	"github.com/kayratasci4/Notes/internal/note"
)

// Adapter is the durable store consumed by the repository.
type Adapter interface {
	Load(ctx context.Context) ([]byte, bool, error)
	Save(ctx context.Context, blob []byte) error
}

// Repository is the exclusive owner and mutator of the note collection.
// All methods are safe for concurrent use; mutations are serialized
// relative to persistence so a stale in-flight save cannot lose a write.
type Repository struct {
	mu    sync.Mutex
	store Adapter
	log   zerolog.Logger
	notes []note.Note

	// initialized guards persistence: until the initial load finishes, no
	// save may run, or an empty collection would clobber the stored data.
	initialized bool
}

// New creates a Repository backed by the given store adapter.
func New(store Adapter, log zerolog.Logger) *Repository {
	return &Repository{
		store: store,
		log:   log,
	}
}

// Initialize reads the durable store and parses the note collection.
// An absent blob or a parse failure both yield an empty collection; parse
// failures are logged and never propagated, so corrupt storage cannot
// block startup. Must complete before any mutation is persisted.
func (r *Repository) Initialize(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	blob, ok, err := r.store.Load(ctx)
	switch {
	case err != nil:
		r.log.Warn().Err(err).Msg("failed to load notes, starting empty")
	case ok:
		var notes []note.Note
		if err := json.Unmarshal(blob, &notes); err != nil {
			perr := errors.NewStorageParse(err)
			r.log.Warn().Str("code", string(perr.Code)).Err(err).
				Msg("stored notes are corrupt, starting empty")
		} else {
			r.notes = notes
		}
	}

	r.initialized = true
}

// Create synthesizes a new note with a fresh ULID, empty title and
// content, and CreatedAt = UpdatedAt = now, prepends it to the collection
// (newest-created first), and persists. The returned note's ID is the
// candidate for the new active selection.
func (r *Repository) Create(ctx context.Context) (note.Note, error) {
	id, err := generateULID()
	if err != nil {
		return note.Note{}, errors.NewInternal(err)
	}

	now := note.NowMillis()
	n := note.Note{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.notes = append([]note.Note{n}, r.notes...)
	r.persist(ctx)

	return n, nil
}

// Update replaces the entry whose id matches n.ID and persists. The
// caller is responsible for setting UpdatedAt. A missing id is a silent
// no-op: it can race harmlessly with a delete. Returns whether an entry
// was replaced.
func (r *Repository) Update(ctx context.Context, n note.Note) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.notes {
		if r.notes[i].ID == n.ID {
			r.notes[i] = n
			r.persist(ctx)
			return true
		}
	}
	return false
}

// Delete removes the matching entry if present and persists. Idempotent:
// deleting a nonexistent id is a no-op. The caller is responsible for
// clearing the active selection if it equaled this id. Returns whether an
// entry was removed.
func (r *Repository) Delete(ctx context.Context, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.notes {
		if r.notes[i].ID == id {
			r.notes = append(r.notes[:i], r.notes[i+1:]...)
			r.persist(ctx)
			return true
		}
	}
	return false
}

// List returns a copy of the current note collection in storage order
// (newest-created first).
func (r *Repository) List() []note.Note {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]note.Note, len(r.notes))
	copy(out, r.notes)
	return out
}

// Get returns the note with the given id, if present.
func (r *Repository) Get(id string) (note.Note, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range r.notes {
		if n.ID == id {
			return n, true
		}
	}
	return note.Note{}, false
}

// persist serializes the full collection to the durable store. Callers
// must hold r.mu. Write failures are logged; in-memory state remains
// authoritative and no error surfaces to the user.
func (r *Repository) persist(ctx context.Context) {
	if !r.initialized {
		r.log.Debug().Msg("skipping persist before initialization")
		return
	}

	blob, err := json.Marshal(r.notes)
	if err != nil {
		r.log.Error().Err(err).Msg("failed to serialize notes")
		return
	}

	if err := r.store.Save(ctx, blob); err != nil {
		werr := errors.NewStorageWrite(err)
		r.log.Warn().Str("code", string(werr.Code)).Err(err).
			Msg("failed to persist notes, in-memory state retained")
	}
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
