package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/valpere/transflow/internal"
	"github.com/valpere/transflow/internal/progress"
	"github.com/valpere/transflow/internal/retriever"
	"github.com/valpere/transflow/internal/store"
	"github.com/valpere/transflow/internal/translator"
)

type mockService struct {
	mu    sync.Mutex
	calls []time.Time
	fn    func(req translator.Request) (*translator.Result, error)
	block chan struct{}
}

func (m *mockService) Name() string { return "mock" }

func (m *mockService) Translate(ctx context.Context, req translator.Request) (*translator.Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, time.Now())
	m.mu.Unlock()
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.fn != nil {
		return m.fn(req)
	}
	return &translator.Result{Text: "tr: " + req.Text}, nil
}

func (m *mockService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockService) callTimes() []time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Time(nil), m.calls...)
}

type fixture struct {
	store *store.Store
	svc   *mockService
	orch  *Orchestrator
}

func newFixture(t *testing.T, pub progress.Publisher, cfg Config) *fixture {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	svc := &mockService{}
	if cfg.Interval == 0 {
		cfg.Interval = time.Millisecond
	}
	retr := retriever.New(s, 0.7)
	return &fixture{
		store: s,
		svc:   svc,
		orch:  New(s, svc, retr, pub, cfg, nil),
	}
}

func (fx *fixture) addFile(t *testing.T, id, content string, status internal.ProcessingStatus) {
	t.Helper()
	err := fx.store.CreateFile(context.Background(), &internal.File{
		ID:               id,
		ProjectID:        "proj-1",
		Name:             "doc.txt",
		Content:          content,
		Type:             internal.FileWork,
		SourceLang:       "en",
		TargetLang:       "uk",
		ProcessingStatus: status,
	})
	if err != nil {
		t.Fatalf("CreateFile failed: %v", err)
	}
}

func (fx *fixture) fileStatus(t *testing.T, id string) internal.ProcessingStatus {
	t.Helper()
	f, err := fx.store.GetFile(context.Background(), id)
	if err != nil {
		t.Fatalf("GetFile failed: %v", err)
	}
	return f.ProcessingStatus
}

func TestParse_CreatesUnitsInOrder(t *testing.T) {
	fx := newFixture(t, nil, Config{})
	fx.addFile(t, "f-1", "First sentence. Second sentence.", internal.StatusUploaded)

	if err := fx.orch.Parse(context.Background(), "f-1"); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	units, err := fx.store.ListUnits(context.Background(), "f-1")
	if err != nil {
		t.Fatalf("ListUnits failed: %v", err)
	}
	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(units))
	}
	if units[0].Source != "First sentence." || units[1].Source != "Second sentence." {
		t.Errorf("unexpected unit sources: %q, %q", units[0].Source, units[1].Source)
	}
	if units[0].Status != internal.UnitDraft {
		t.Errorf("expected draft status, got %s", units[0].Status)
	}
	if got := fx.fileStatus(t, "f-1"); got != internal.StatusParsed {
		t.Errorf("expected parsed, got %s", got)
	}
}

func TestParse_Batching(t *testing.T) {
	fx := newFixture(t, nil, Config{BatchSize: 10})

	var sb strings.Builder
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&sb, "Sentence number %d. ", i)
	}
	fx.addFile(t, "f-1", sb.String(), internal.StatusUploaded)

	if err := fx.orch.Parse(context.Background(), "f-1"); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	n, err := fx.store.CountUnits(context.Background(), "f-1")
	if err != nil {
		t.Fatalf("CountUnits failed: %v", err)
	}
	if n != 25 {
		t.Errorf("expected 25 units, got %d", n)
	}
}

func TestParse_ReparseReplacesUnits(t *testing.T) {
	fx := newFixture(t, nil, Config{})
	fx.addFile(t, "f-1", "One. Two. Three.", internal.StatusUploaded)

	ctx := context.Background()
	if err := fx.orch.Parse(ctx, "f-1"); err != nil {
		t.Fatalf("first Parse failed: %v", err)
	}
	if err := fx.orch.Parse(ctx, "f-1"); err != nil {
		t.Fatalf("second Parse failed: %v", err)
	}

	n, _ := fx.store.CountUnits(ctx, "f-1")
	if n != 3 {
		t.Errorf("expected 3 units after re-parse, got %d", n)
	}
}

func TestParse_RejectedWhileInFlight(t *testing.T) {
	fx := newFixture(t, nil, Config{})
	fx.addFile(t, "f-1", "One.", internal.StatusUploaded)

	// Simulate another orchestrator instance owning the file.
	ctx := context.Background()
	if err := fx.store.TransitionFile(ctx, "f-1",
		[]internal.ProcessingStatus{internal.StatusUploaded}, internal.StatusParsing, ""); err != nil {
		t.Fatalf("setup transition failed: %v", err)
	}

	err := fx.orch.Parse(ctx, "f-1")
	if !errors.Is(err, ErrFileBusy) {
		t.Errorf("expected ErrFileBusy, got %v", err)
	}

	n, _ := fx.store.CountUnits(ctx, "f-1")
	if n != 0 {
		t.Errorf("rejected parse must not create units, got %d", n)
	}
}

func TestParse_ReferenceFileRejected(t *testing.T) {
	fx := newFixture(t, nil, Config{})
	err := fx.store.CreateFile(context.Background(), &internal.File{
		ID: "f-ref", ProjectID: "proj-1", Name: "glossary.txt", Content: "Reference.",
		Type: internal.FileReference, SourceLang: "en", TargetLang: "uk",
		ProcessingStatus: internal.StatusUploaded,
	})
	if err != nil {
		t.Fatalf("CreateFile failed: %v", err)
	}

	if err := fx.orch.Parse(context.Background(), "f-ref"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState for reference file, got %v", err)
	}
}

func TestTranslate_RequiresParsedFile(t *testing.T) {
	fx := newFixture(t, nil, Config{})
	fx.addFile(t, "f-1", "One.", internal.StatusUploaded)

	err := fx.orch.Translate(context.Background(), "f-1")
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
	if got := fx.fileStatus(t, "f-1"); got != internal.StatusUploaded {
		t.Errorf("rejected translate must not change status, got %s", got)
	}
	if fx.svc.callCount() != 0 {
		t.Errorf("backend must not be called, got %d calls", fx.svc.callCount())
	}
}

func TestTranslate_FillsTargets(t *testing.T) {
	fx := newFixture(t, nil, Config{})
	fx.addFile(t, "f-1", "First sentence. Second sentence.", internal.StatusUploaded)

	ctx := context.Background()
	if err := fx.orch.Parse(ctx, "f-1"); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := fx.orch.Translate(ctx, "f-1"); err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	units, _ := fx.store.ListUnits(ctx, "f-1")
	for _, u := range units {
		if u.Target == "" {
			t.Errorf("unit %s has empty target", u.ID)
		}
		if u.Origin != internal.OriginMT {
			t.Errorf("unit %s: expected origin mt, got %s", u.ID, u.Origin)
		}
		if u.Status != internal.UnitMT {
			t.Errorf("unit %s: expected status mt, got %s", u.ID, u.Status)
		}
	}
	if got := fx.fileStatus(t, "f-1"); got != internal.StatusReady {
		t.Errorf("expected ready, got %s", got)
	}
}

func TestTranslate_TMFallbackOnBackendFailure(t *testing.T) {
	fx := newFixture(t, nil, Config{})
	fx.svc.fn = func(translator.Request) (*translator.Result, error) {
		return nil, fmt.Errorf("quota exceeded")
	}

	ctx := context.Background()
	if err := fx.store.UpsertMemory(ctx, &internal.TMEntry{
		ID: "tm-1", Source: "The first sentence.", Target: "Перше речення.",
		Status: internal.UnitReviewed, Origin: internal.OriginHT,
		SourceLang: "en", TargetLang: "uk", ResourceID: "proj-1",
	}); err != nil {
		t.Fatalf("UpsertMemory failed: %v", err)
	}

	fx.addFile(t, "f-1", "First sentence.", internal.StatusUploaded)
	if err := fx.orch.Parse(ctx, "f-1"); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := fx.orch.Translate(ctx, "f-1"); err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	units, _ := fx.store.ListUnits(ctx, "f-1")
	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(units))
	}
	if units[0].Target != "Перше речення." {
		t.Errorf("expected TM fallback target, got %q", units[0].Target)
	}
	if units[0].Origin != internal.OriginFuzzy {
		t.Errorf("expected origin fuzzy, got %s", units[0].Origin)
	}
	if got := fx.fileStatus(t, "f-1"); got != internal.StatusReady {
		t.Errorf("file must still reach ready, got %s", got)
	}
}

func TestTranslate_PlaceholderWhenNoFallback(t *testing.T) {
	fx := newFixture(t, nil, Config{})
	fx.svc.fn = func(translator.Request) (*translator.Result, error) {
		return nil, fmt.Errorf("service down")
	}

	ctx := context.Background()
	fx.addFile(t, "f-1", "Completely novel sentence.", internal.StatusUploaded)
	if err := fx.orch.Parse(ctx, "f-1"); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := fx.orch.Translate(ctx, "f-1"); err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	units, _ := fx.store.ListUnits(ctx, "f-1")
	if units[0].Target != FailurePlaceholder {
		t.Errorf("expected failure placeholder, got %q", units[0].Target)
	}
	if got := fx.fileStatus(t, "f-1"); got != internal.StatusReady {
		t.Errorf("per-unit failure must not fail the file, got %s", got)
	}
}

func TestTranslate_ExactMatchSkipsBackend(t *testing.T) {
	fx := newFixture(t, nil, Config{})

	ctx := context.Background()
	if err := fx.store.UpsertMemory(ctx, &internal.TMEntry{
		ID: "tm-1", Source: "First sentence.", Target: "Перше речення.",
		Status: internal.UnitReviewed, Origin: internal.OriginHT,
		SourceLang: "en", TargetLang: "uk", ResourceID: "proj-1",
	}); err != nil {
		t.Fatalf("UpsertMemory failed: %v", err)
	}

	fx.addFile(t, "f-1", "First sentence.", internal.StatusUploaded)
	if err := fx.orch.Parse(ctx, "f-1"); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := fx.orch.Translate(ctx, "f-1"); err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	if fx.svc.callCount() != 0 {
		t.Errorf("backend must not be called for an exact match, got %d calls", fx.svc.callCount())
	}
	units, _ := fx.store.ListUnits(ctx, "f-1")
	if units[0].Origin != internal.OriginExact {
		t.Errorf("expected origin 100, got %s", units[0].Origin)
	}
	if units[0].Target != "Перше речення." {
		t.Errorf("expected TM target, got %q", units[0].Target)
	}
}

func TestTranslate_ConcurrentRunRejected(t *testing.T) {
	fx := newFixture(t, nil, Config{})
	fx.svc.block = make(chan struct{})

	ctx := context.Background()
	fx.addFile(t, "f-1", "One. Two.", internal.StatusUploaded)
	if err := fx.orch.Parse(ctx, "f-1"); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if err := fx.orch.StartTranslate(ctx, "f-1"); err != nil {
		t.Fatalf("StartTranslate failed: %v", err)
	}

	// The background run is blocked inside the backend; a second
	// invocation must observe the lock.
	err := fx.orch.Translate(ctx, "f-1")
	if !errors.Is(err, ErrFileBusy) {
		t.Errorf("expected ErrFileBusy, got %v", err)
	}

	close(fx.svc.block)
	waitForStatus(t, fx, "f-1", internal.StatusReady)
}

func TestTranslate_RateLimiterSpacesCalls(t *testing.T) {
	const interval = 50 * time.Millisecond
	fx := newFixture(t, nil, Config{Interval: interval})

	ctx := context.Background()
	fx.addFile(t, "f-1", "One. Two. Three.", internal.StatusUploaded)
	if err := fx.orch.Parse(ctx, "f-1"); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := fx.orch.Translate(ctx, "f-1"); err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	calls := fx.svc.callTimes()
	if len(calls) != 3 {
		t.Fatalf("expected 3 backend calls, got %d", len(calls))
	}
	for i := 1; i < len(calls); i++ {
		if gap := calls[i].Sub(calls[i-1]); gap < interval-10*time.Millisecond {
			t.Errorf("calls %d and %d only %v apart, expected ≥ %v", i-1, i, gap, interval)
		}
	}
}

func TestPipeline_ProgressEventOrdering(t *testing.T) {
	hub := progress.NewHub()
	fx := newFixture(t, hub, Config{})
	fx.addFile(t, "f-1", "One. Two.", internal.StatusUploaded)

	ch, cancel := hub.SubscribeFile("f-1", 32)
	defer cancel()

	ctx := context.Background()
	if err := fx.orch.Parse(ctx, "f-1"); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := fx.orch.Translate(ctx, "f-1"); err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	var stages []internal.ProcessingStatus
drain:
	for {
		select {
		case ev := <-ch:
			stages = append(stages, ev.Stage)
			if ev.Stage == internal.StatusReady {
				break drain
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for ready event, got %v", stages)
		}
	}

	sawParsed := false
	for _, st := range stages {
		if st == internal.StatusParsed {
			sawParsed = true
		}
		if st == internal.StatusTranslating && !sawParsed {
			t.Fatalf("translate event before parse completion: %v", stages)
		}
	}
	if !sawParsed {
		t.Errorf("no parsed event observed: %v", stages)
	}
}

func TestConfirmUnit_WritesMemory(t *testing.T) {
	fx := newFixture(t, nil, Config{})
	ctx := context.Background()
	fx.addFile(t, "f-1", "First sentence.", internal.StatusUploaded)
	if err := fx.orch.Parse(ctx, "f-1"); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	units, _ := fx.store.ListUnits(ctx, "f-1")
	if err := fx.orch.ConfirmUnit(ctx, units[0].ID, "Перше речення."); err != nil {
		t.Fatalf("ConfirmUnit failed: %v", err)
	}

	u, _ := fx.store.GetUnit(ctx, units[0].ID)
	if u.Status != internal.UnitReviewed || u.Origin != internal.OriginHT {
		t.Errorf("expected reviewed/ht, got %s/%s", u.Status, u.Origin)
	}

	entries, _ := fx.store.ListMemory(ctx)
	if len(entries) != 1 {
		t.Fatalf("expected 1 TM entry, got %d", len(entries))
	}
	if entries[0].Target != "Перше речення." || entries[0].Status != internal.UnitReviewed {
		t.Errorf("unexpected TM entry: %+v", entries[0])
	}
}

func TestConfirmUnit_EmptyTargetRejected(t *testing.T) {
	fx := newFixture(t, nil, Config{})
	if err := fx.orch.ConfirmUnit(context.Background(), "u-any", ""); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState for empty target, got %v", err)
	}
}

func TestTranslate_ReviewedUnitNotOverwritten(t *testing.T) {
	fx := newFixture(t, nil, Config{})
	ctx := context.Background()
	fx.addFile(t, "f-1", "First sentence.", internal.StatusUploaded)
	if err := fx.orch.Parse(ctx, "f-1"); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	units, _ := fx.store.ListUnits(ctx, "f-1")
	if err := fx.orch.ConfirmUnit(ctx, units[0].ID, "людський переклад"); err != nil {
		t.Fatalf("ConfirmUnit failed: %v", err)
	}

	if err := fx.orch.Translate(ctx, "f-1"); err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	u, _ := fx.store.GetUnit(ctx, units[0].ID)
	if u.Target != "людський переклад" {
		t.Errorf("reviewed target was overwritten: %q", u.Target)
	}
	if fx.svc.callCount() != 0 {
		t.Errorf("backend must not be called for a reviewed unit, got %d", fx.svc.callCount())
	}
}

func TestTranslate_ConfirmDuringRunWins(t *testing.T) {
	fx := newFixture(t, nil, Config{})
	fx.svc.block = make(chan struct{})

	ctx := context.Background()
	fx.addFile(t, "f-1", "One. Two.", internal.StatusUploaded)
	if err := fx.orch.Parse(ctx, "f-1"); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	units, _ := fx.store.ListUnits(ctx, "f-1")

	if err := fx.orch.StartTranslate(ctx, "f-1"); err != nil {
		t.Fatalf("StartTranslate failed: %v", err)
	}

	// Wait until the run is suspended inside the backend on the first unit,
	// then confirm the second one mid-flight.
	deadline := time.Now().Add(5 * time.Second)
	for fx.svc.callCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("backend never called")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if err := fx.orch.ConfirmUnit(ctx, units[1].ID, "людський переклад"); err != nil {
		t.Fatalf("ConfirmUnit failed: %v", err)
	}

	close(fx.svc.block)
	waitForStatus(t, fx, "f-1", internal.StatusReady)

	u, _ := fx.store.GetUnit(ctx, units[1].ID)
	if u.Target != "людський переклад" {
		t.Errorf("mid-run confirmation was overwritten: %q", u.Target)
	}
	if u.Status != internal.UnitReviewed || u.Origin != internal.OriginHT {
		t.Errorf("expected reviewed/ht, got %s/%s", u.Status, u.Origin)
	}
	if got := fx.svc.callCount(); got != 1 {
		t.Errorf("confirmed unit must not reach the backend, got %d calls", got)
	}
}

type failingStore struct {
	*store.Store
	mu          sync.Mutex
	insertCalls int
}

func (f *failingStore) InsertUnits(context.Context, []internal.TranslationUnit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertCalls++
	return fmt.Errorf("disk full")
}

func (f *failingStore) inserts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insertCalls
}

func TestParse_PersistFailureCleansUp(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	hub := progress.NewHub()
	fs := &failingStore{Store: s}
	orch := New(fs, &mockService{}, retriever.New(s, 0.7), hub, Config{Interval: time.Millisecond}, nil)

	ctx := context.Background()
	if err := s.CreateFile(ctx, &internal.File{
		ID: "f-1", ProjectID: "proj-1", Name: "doc.txt", Content: "One. Two.",
		Type: internal.FileWork, SourceLang: "en", TargetLang: "uk",
		ProcessingStatus: internal.StatusUploaded,
	}); err != nil {
		t.Fatalf("CreateFile failed: %v", err)
	}

	ch, cancel := hub.SubscribeFile("f-1", 8)
	defer cancel()

	err = orch.Parse(ctx, "f-1")
	if err == nil {
		t.Fatal("expected Parse to fail")
	}
	if !strings.Contains(err.Error(), "failed to persist unit batch") {
		t.Errorf("unexpected error: %v", err)
	}

	if got := fs.inserts(); got != 2 {
		t.Errorf("expected the failed batch to be retried once (2 attempts), got %d", got)
	}

	n, _ := s.CountUnits(ctx, "f-1")
	if n != 0 {
		t.Errorf("expected zero units after cleanup, got %d", n)
	}

	f, gerr := s.GetFile(ctx, "f-1")
	if gerr != nil {
		t.Fatalf("GetFile failed: %v", gerr)
	}
	if f.ProcessingStatus != internal.StatusError {
		t.Errorf("expected status error, got %s", f.ProcessingStatus)
	}
	if !strings.Contains(f.ErrorMessage, "failed to persist unit batch") {
		t.Errorf("error message not recorded: %q", f.ErrorMessage)
	}

	select {
	case ev := <-ch:
		if ev.Stage != internal.StatusError {
			t.Errorf("expected error event, got stage %s", ev.Stage)
		}
		if ev.Message == "" {
			t.Error("error event carries no message")
		}
	case <-time.After(time.Second):
		t.Fatal("no error event delivered")
	}
}

func TestTranslate_ExactMatchBehindFresherFuzzy(t *testing.T) {
	fx := newFixture(t, nil, Config{})

	ctx := context.Background()
	// The ht-origin fuzzy sibling outranks the exact entry, so the exact
	// match is not at the head of the list.
	if err := fx.store.UpsertMemory(ctx, &internal.TMEntry{
		ID: "tm-exact", Source: "First sentence.", Target: "точний переклад",
		Status: internal.UnitReviewed, Origin: internal.OriginExact,
		SourceLang: "en", TargetLang: "uk", ResourceID: "proj-1",
	}); err != nil {
		t.Fatalf("UpsertMemory failed: %v", err)
	}
	if err := fx.store.UpsertMemory(ctx, &internal.TMEntry{
		ID: "tm-fuzzy", Source: "The first sentence.", Target: "нечіткий переклад",
		Status: internal.UnitReviewed, Origin: internal.OriginHT,
		SourceLang: "en", TargetLang: "uk", ResourceID: "proj-1",
	}); err != nil {
		t.Fatalf("UpsertMemory failed: %v", err)
	}

	fx.addFile(t, "f-1", "First sentence.", internal.StatusUploaded)
	if err := fx.orch.Parse(ctx, "f-1"); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := fx.orch.Translate(ctx, "f-1"); err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	if fx.svc.callCount() != 0 {
		t.Errorf("backend must not be called when an exact match exists, got %d calls", fx.svc.callCount())
	}
	units, _ := fx.store.ListUnits(ctx, "f-1")
	if units[0].Target != "точний переклад" {
		t.Errorf("expected the exact entry's target, got %q", units[0].Target)
	}
	if units[0].Origin != internal.OriginExact {
		t.Errorf("expected origin 100, got %s", units[0].Origin)
	}
}

func waitForStatus(t *testing.T, fx *fixture, fileID string, want internal.ProcessingStatus) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if fx.fileStatus(t, fileID) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("file %s never reached %s (now %s)", fileID, want, fx.fileStatus(t, fileID))
}
