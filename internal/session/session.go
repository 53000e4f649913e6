// Package session holds the transient per-note edit context: it buffers
// keystrokes, debounces commits into the repository, and mediates AI
// generation requests against the buffer.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/kayratasci4/Notes/internal/ai"
	"github.com/kayratasci4/Notes/internal/errors"
	"github.com/kayratasci4/Notes/internal/note"
)

// Committer is the repository surface the session commits through.
type Committer interface {
	Update(ctx context.Context, n note.Note) bool
}

// Generator is the generation client surface the session calls.
type Generator interface {
	Generate(ctx context.Context, text string, action ai.Action) (string, error)
}

// State is the observable session state consumed by views.
type State struct {
	Title   string
	Content string
	Loading bool
	Err     string
}

// Session mediates between one bound note and live edits. The buffer is
// exclusively owned by the session; nothing else mutates it. Edits
// restart a debounce timer; when the quiet period elapses without a new
// edit and the buffer differs from the bound note, the session commits
// through the Committer with a fresh UpdatedAt.
//
// Rebinding discards the buffer and any pending commit: a note switch
// within the quiet period loses those edits, matching the original
// editor. Call Flush to force a commit first.
type Session struct {
	mu    sync.Mutex
	repo  Committer
	gen   Generator
	quiet time.Duration

	bound   note.Note // repository copy the buffer diffs against
	boundID string    // empty when unbound

	title   string
	content string
	loading bool
	errMsg  string

	timer *time.Timer
}

// New creates an unbound session. quiet is the debounce period.
func New(repo Committer, gen Generator, quiet time.Duration) *Session {
	return &Session{
		repo:  repo,
		gen:   gen,
		quiet: quiet,
	}
}

// Bind attaches the session to a note. The buffer is reconstructed from
// the note's current record and any AI error state is cleared. A pending
// commit for the previous binding is cancelled, not flushed.
func (s *Session) Bind(n note.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTimerLocked()
	s.bound = n
	s.boundID = n.ID
	s.title = n.Title
	s.content = n.Content
	s.errMsg = ""
}

// Unbind detaches the session, cancelling any pending commit.
func (s *Session) Unbind() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTimerLocked()
	s.bound = note.Note{}
	s.boundID = ""
	s.title = ""
	s.content = ""
	s.errMsg = ""
}

// SetTitle applies a keystroke-level title change and restarts the
// debounce timer.
func (s *Session) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.boundID == "" {
		return
	}
	s.title = title
	s.restartTimerLocked()
}

// SetContent applies a keystroke-level content change and restarts the
// debounce timer.
func (s *Session) SetContent(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.boundID == "" {
		return
	}
	s.content = content
	s.restartTimerLocked()
}

// Snapshot returns the observable state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		Title:   s.title,
		Content: s.content,
		Loading: s.loading,
		Err:     s.errMsg,
	}
}

// BoundID returns the id of the bound note, or empty when unbound.
func (s *Session) BoundID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boundID
}

// ClearError dismisses the inline error message.
func (s *Session) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = ""
}

// Flush commits the buffer immediately if it differs from the bound
// note, cancelling any pending debounce. Used when the caller needs the
// repository up to date before proceeding (one-shot CLI invocations).
func (s *Session) Flush(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTimerLocked()
	s.commitLocked(ctx, s.boundID)
}

// RequestAIAction validates, invokes the generation client with the
// buffer's current content, and merges the result back into the buffer.
// The merged result flows through the same debounce path as manual
// edits; it is not committed immediately. Failures set a user-facing
// error message on the session and leave the buffer untouched.
//
// The request is tagged with the bound note's id at issue time; if the
// binding changes before the call resolves, the result is discarded.
func (s *Session) RequestAIAction(ctx context.Context, action ai.Action) error {
	s.mu.Lock()

	if s.boundID == "" {
		s.mu.Unlock()
		return errors.NewInvalidRequest("no note is bound")
	}
	if s.loading {
		s.mu.Unlock()
		return errors.NewInvalidRequest("bir AI işlemi zaten devam ediyor")
	}

	content := s.content
	if strings.TrimSpace(content) == "" {
		var err *errors.NoteError
		if action == ai.ActionGenerateTitle {
			err = errors.NewInvalidRequest("Başlık oluşturmak için önce biraz içerik yazmalısın.")
		} else {
			err = errors.NewInvalidRequest("AI işlemi için içerik boş olamaz.")
		}
		s.errMsg = err.Message
		s.mu.Unlock()
		return err
	}

	s.loading = true
	s.errMsg = ""
	issuedFor := s.boundID
	s.mu.Unlock()

	result, genErr := s.gen.Generate(ctx, content, action)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	// Stale result: the binding changed while the call was in flight.
	if s.boundID != issuedFor {
		return nil
	}

	if genErr != nil {
		s.errMsg = errors.UserMessage(genErr)
		return genErr
	}

	switch action.MergeStrategy() {
	case ai.MergeReplaceTitle:
		s.title = result
	case ai.MergeAppendContent:
		s.content = s.content + "\n\n" + result
	default:
		s.content = result
	}
	s.restartTimerLocked()

	return nil
}

// restartTimerLocked cancels the pending commit and schedules a new one
// after the quiet period. Callers must hold s.mu.
func (s *Session) restartTimerLocked() {
	s.stopTimerLocked()
	id := s.boundID
	s.timer = time.AfterFunc(s.quiet, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.commitLocked(context.Background(), id)
	})
}

// stopTimerLocked cancels any pending commit. Callers must hold s.mu.
func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// commitLocked writes the buffer through the repository if it is still
// bound to issuedFor and dirty. Callers must hold s.mu.
func (s *Session) commitLocked(ctx context.Context, issuedFor string) {
	if s.boundID == "" || s.boundID != issuedFor {
		return
	}
	if s.title == s.bound.Title && s.content == s.bound.Content {
		return
	}

	updated := s.bound
	updated.Title = s.title
	updated.Content = s.content
	updated.UpdatedAt = note.NowMillis()

	s.repo.Update(ctx, updated)
	s.bound = updated
}
