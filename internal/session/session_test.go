package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kayratasci4/Notes/internal/ai"
	"github.com/kayratasci4/Notes/internal/errors"
	"github.com/kayratasci4/Notes/internal/note"
	"github.com/kayratasci4/Notes/internal/repo"
)

const testQuiet = 80 * time.Millisecond

// waitForCommit sleeps comfortably past the debounce quiet period.
func waitForCommit() {
	time.Sleep(3 * testQuiet)
}

// countingCommitter records every Update call.
type countingCommitter struct {
	mu      sync.Mutex
	updates []note.Note
}

func (c *countingCommitter) Update(ctx context.Context, n note.Note) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updates = append(c.updates, n)
	return true
}

func (c *countingCommitter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.updates)
}

func (c *countingCommitter) last() note.Note {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updates[len(c.updates)-1]
}

// fakeGenerator returns a scripted result, optionally blocking until
// released, and counts calls.
type fakeGenerator struct {
	mu      sync.Mutex
	result  string
	err     error
	calls   int
	blockCh chan struct{} // when non-nil, Generate waits on it
}

func (g *fakeGenerator) Generate(ctx context.Context, text string, action ai.Action) (string, error) {
	g.mu.Lock()
	g.calls++
	block := g.blockCh
	result, err := g.result, g.err
	g.mu.Unlock()

	if block != nil {
		<-block
	}
	return result, err
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func testNote(id string) note.Note {
	now := note.NowMillis()
	return note.Note{ID: id, Title: "başlık", Content: "içerik", CreatedAt: now, UpdatedAt: now}
}

func TestDebounce_CollapsesRapidEdits(t *testing.T) {
	committer := &countingCommitter{}
	s := New(committer, &fakeGenerator{}, testQuiet)
	s.Bind(testNote("n1"))

	// N rapid mutations within the quiet period.
	for _, content := range []string{"m", "me", "mer", "merh", "merhaba"} {
		s.SetContent(content)
		time.Sleep(testQuiet / 8)
	}
	waitForCommit()

	if got := committer.count(); got != 1 {
		t.Fatalf("updates = %d, want exactly 1", got)
	}
	if got := committer.last(); got.Content != "merhaba" {
		t.Errorf("committed content = %q, want final buffer state", got.Content)
	}
}

func TestDebounce_NoCommitWhenUnchanged(t *testing.T) {
	committer := &countingCommitter{}
	s := New(committer, &fakeGenerator{}, testQuiet)
	n := testNote("n1")
	s.Bind(n)

	// Setting identical values restarts the timer but must not commit.
	s.SetTitle(n.Title)
	s.SetContent(n.Content)
	waitForCommit()

	if got := committer.count(); got != 0 {
		t.Errorf("updates = %d, want 0 for unchanged buffer", got)
	}
}

func TestDebounce_CommitSetsUpdatedAt(t *testing.T) {
	committer := &countingCommitter{}
	s := New(committer, &fakeGenerator{}, testQuiet)
	n := testNote("n1")
	s.Bind(n)

	time.Sleep(5 * time.Millisecond) // let the millisecond clock advance
	s.SetContent("yeni içerik")
	waitForCommit()

	if committer.count() != 1 {
		t.Fatalf("updates = %d, want 1", committer.count())
	}
	got := committer.last()
	if got.UpdatedAt <= n.UpdatedAt {
		t.Errorf("UpdatedAt = %d, want > %d", got.UpdatedAt, n.UpdatedAt)
	}
	if got.CreatedAt != n.CreatedAt {
		t.Errorf("CreatedAt changed: %d != %d", got.CreatedAt, n.CreatedAt)
	}
}

func TestRebind_DiscardsPendingCommit(t *testing.T) {
	committer := &countingCommitter{}
	s := New(committer, &fakeGenerator{}, testQuiet)
	s.Bind(testNote("n1"))

	s.SetContent("kaybolacak düzenleme")
	// Switch notes within the quiet period: the pending commit is
	// cancelled, not flushed.
	s.Bind(testNote("n2"))
	waitForCommit()

	if got := committer.count(); got != 0 {
		t.Errorf("updates = %d, want 0 (edit within quiet period is dropped on switch)", got)
	}
	if got := s.Snapshot(); got.Content != "içerik" {
		t.Errorf("buffer = %q, want fresh copy of newly bound note", got.Content)
	}
}

func TestBind_ResetsBufferAndError(t *testing.T) {
	gen := &fakeGenerator{err: errors.NewEmptyResponse()}
	s := New(&countingCommitter{}, gen, testQuiet)
	s.Bind(testNote("n1"))

	_ = s.RequestAIAction(context.Background(), ai.ActionSummarize)
	if s.Snapshot().Err == "" {
		t.Fatal("expected error state before rebind")
	}

	s.Bind(testNote("n2"))
	got := s.Snapshot()
	if got.Err != "" {
		t.Errorf("error state survived rebind: %q", got.Err)
	}
	if got.Title != "başlık" || got.Content != "içerik" {
		t.Errorf("buffer not reconstructed: %+v", got)
	}
}

func TestFlush_CommitsImmediately(t *testing.T) {
	committer := &countingCommitter{}
	s := New(committer, &fakeGenerator{}, time.Hour) // debounce would never fire
	s.Bind(testNote("n1"))

	s.SetContent("hemen kaydet")
	s.Flush(context.Background())

	if committer.count() != 1 {
		t.Fatalf("updates = %d, want 1 after Flush", committer.count())
	}
	if got := committer.last(); got.Content != "hemen kaydet" {
		t.Errorf("committed content = %q", got.Content)
	}
}

func TestRequestAIAction_EmptyContent_NoClientCall(t *testing.T) {
	gen := &fakeGenerator{result: "sonuç"}
	s := New(&countingCommitter{}, gen, testQuiet)
	n := testNote("n1")
	n.Content = "   \n\t"
	s.Bind(n)

	err := s.RequestAIAction(context.Background(), ai.ActionSummarize)
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Fatalf("err = %v, want INVALID_REQUEST", err)
	}
	if gen.callCount() != 0 {
		t.Errorf("generator calls = %d, want 0", gen.callCount())
	}
	if s.Snapshot().Err == "" {
		t.Error("validation failure should set the inline error message")
	}
}

func TestRequestAIAction_GenerateTitle_UsesContentAsSource(t *testing.T) {
	gen := &fakeGenerator{result: "Önerilen Başlık"}
	s := New(&countingCommitter{}, gen, testQuiet)
	s.Bind(testNote("n1"))

	if err := s.RequestAIAction(context.Background(), ai.ActionGenerateTitle); err != nil {
		t.Fatalf("RequestAIAction failed: %v", err)
	}

	got := s.Snapshot()
	if got.Title != "Önerilen Başlık" {
		t.Errorf("title = %q, want generated title", got.Title)
	}
	if got.Content != "içerik" {
		t.Errorf("content = %q, must be untouched by title generation", got.Content)
	}
}

func TestRequestAIAction_ContinueWriting_AppendsWithBlankLine(t *testing.T) {
	gen := &fakeGenerator{result: "devamı"}
	s := New(&countingCommitter{}, gen, testQuiet)
	s.Bind(testNote("n1"))

	if err := s.RequestAIAction(context.Background(), ai.ActionContinueWriting); err != nil {
		t.Fatalf("RequestAIAction failed: %v", err)
	}

	if got := s.Snapshot().Content; got != "içerik\n\ndevamı" {
		t.Errorf("content = %q, want appended with blank line", got)
	}
}

func TestRequestAIAction_Summarize_ReplacesContent(t *testing.T) {
	gen := &fakeGenerator{result: "özet"}
	s := New(&countingCommitter{}, gen, testQuiet)
	s.Bind(testNote("n1"))

	if err := s.RequestAIAction(context.Background(), ai.ActionSummarize); err != nil {
		t.Fatalf("RequestAIAction failed: %v", err)
	}

	if got := s.Snapshot().Content; got != "özet" {
		t.Errorf("content = %q, want replaced", got)
	}
}

func TestRequestAIAction_ResultFlowsThroughDebounce(t *testing.T) {
	committer := &countingCommitter{}
	gen := &fakeGenerator{result: "özet"}
	s := New(committer, gen, testQuiet)
	s.Bind(testNote("n1"))

	if err := s.RequestAIAction(context.Background(), ai.ActionSummarize); err != nil {
		t.Fatalf("RequestAIAction failed: %v", err)
	}
	// Not committed immediately.
	if committer.count() != 0 {
		t.Fatalf("updates = %d right after merge, want 0 (debounce path)", committer.count())
	}
	waitForCommit()
	if committer.count() != 1 {
		t.Errorf("updates = %d after quiet period, want 1", committer.count())
	}
}

func TestRequestAIAction_FailureKeepsBuffer(t *testing.T) {
	gen := &fakeGenerator{err: errors.NewTransport(nil)}
	s := New(&countingCommitter{}, gen, testQuiet)
	s.Bind(testNote("n1"))

	err := s.RequestAIAction(context.Background(), ai.ActionMakeLonger)
	if !errors.Is(err, errors.ErrTransport) {
		t.Fatalf("err = %v, want TRANSPORT", err)
	}

	got := s.Snapshot()
	if got.Content != "içerik" || got.Title != "başlık" {
		t.Errorf("buffer mutated on failure: %+v", got)
	}
	if got.Err != "İşlem sırasında bir hata oluştu. Lütfen tekrar deneyin." {
		t.Errorf("error message = %q", got.Err)
	}
	if got.Loading {
		t.Error("loading flag not cleared after failure")
	}
}

func TestRequestAIAction_RejectsConcurrentRequests(t *testing.T) {
	release := make(chan struct{})
	gen := &fakeGenerator{result: "sonuç", blockCh: release}
	s := New(&countingCommitter{}, gen, testQuiet)
	s.Bind(testNote("n1"))

	done := make(chan error, 1)
	go func() {
		done <- s.RequestAIAction(context.Background(), ai.ActionSummarize)
	}()

	// Wait until the first request holds the loading flag.
	for s.Snapshot().Loading == false {
		time.Sleep(time.Millisecond)
	}

	err := s.RequestAIAction(context.Background(), ai.ActionSummarize)
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("re-entrant request err = %v, want INVALID_REQUEST", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	if gen.callCount() != 1 {
		t.Errorf("generator calls = %d, want 1", gen.callCount())
	}
}

func TestRequestAIAction_StaleResultDiscardedAfterSwitch(t *testing.T) {
	committer := &countingCommitter{}
	release := make(chan struct{})
	gen := &fakeGenerator{result: "eski notun özeti", blockCh: release}
	s := New(committer, gen, testQuiet)
	s.Bind(testNote("n1"))

	done := make(chan error, 1)
	go func() {
		done <- s.RequestAIAction(context.Background(), ai.ActionSummarize)
	}()
	for s.Snapshot().Loading == false {
		time.Sleep(time.Millisecond)
	}

	// Switch notes while the generation call is outstanding.
	s.Bind(testNote("n2"))
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("RequestAIAction returned error for discarded result: %v", err)
	}

	waitForCommit()
	if got := s.Snapshot().Content; got != "içerik" {
		t.Errorf("buffer = %q, stale result applied to wrong binding", got)
	}
	if committer.count() != 0 {
		t.Errorf("updates = %d, want 0", committer.count())
	}
}

// fakeAdapter is a minimal in-memory store for end-to-end scenarios.
type fakeAdapter struct {
	mu   sync.Mutex
	blob []byte
}

func (f *fakeAdapter) Load(ctx context.Context) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.blob, f.blob != nil, nil
}

func (f *fakeAdapter) Save(ctx context.Context, blob []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blob = append([]byte(nil), blob...)
	return nil
}

func TestScenario_CreateEditDebounceCommit(t *testing.T) {
	r := repo.New(&fakeAdapter{}, zerolog.Nop())
	r.Initialize(context.Background())

	coord := NewCoordinator(r, &fakeGenerator{}, testQuiet)
	created, err := coord.Create(context.Background())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	coord.Session().SetContent("merhaba dunya")
	waitForCommit()

	list := r.List()
	if len(list) != 1 {
		t.Fatalf("len(List()) = %d, want 1", len(list))
	}
	got := list[0]
	if got.ID != created.ID {
		t.Errorf("id = %q, want %q", got.ID, created.ID)
	}
	if got.Content != "merhaba dunya" {
		t.Errorf("content = %q, want %q", got.Content, "merhaba dunya")
	}
	if got.UpdatedAt <= got.CreatedAt {
		t.Errorf("UpdatedAt = %d, want > CreatedAt %d", got.UpdatedAt, got.CreatedAt)
	}
}

func TestCoordinator_DanglingSelectionIsNoSelection(t *testing.T) {
	r := repo.New(&fakeAdapter{}, zerolog.Nop())
	r.Initialize(context.Background())

	coord := NewCoordinator(r, &fakeGenerator{}, testQuiet)
	n, _ := coord.Create(context.Background())

	if _, ok := coord.Active(); !ok {
		t.Fatal("Active() = none right after Create")
	}

	// Delete out from under the selection via the repository directly:
	// the selection dangles and must read as no selection.
	r.Delete(context.Background(), n.ID)
	if _, ok := coord.Active(); ok {
		t.Error("Active() = some for dangling selection, want none")
	}
}

func TestCoordinator_DeleteClearsMatchingSelection(t *testing.T) {
	r := repo.New(&fakeAdapter{}, zerolog.Nop())
	r.Initialize(context.Background())

	coord := NewCoordinator(r, &fakeGenerator{}, testQuiet)
	n, _ := coord.Create(context.Background())

	if !coord.Delete(context.Background(), n.ID) {
		t.Fatal("Delete returned false")
	}
	if _, ok := coord.Active(); ok {
		t.Error("selection not cleared after deleting the selected note")
	}
	if coord.Session().BoundID() != "" {
		t.Error("session still bound after deleting the selected note")
	}
}

func TestCoordinator_SelectUnknownID(t *testing.T) {
	r := repo.New(&fakeAdapter{}, zerolog.Nop())
	r.Initialize(context.Background())

	coord := NewCoordinator(r, &fakeGenerator{}, testQuiet)
	if _, err := coord.Select("ghost"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}
