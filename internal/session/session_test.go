package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"closenote/internal/clipboard"
	"closenote/internal/model"
	"closenote/internal/report"
	"closenote/internal/store"
	"closenote/internal/validate"

	"github.com/google/go-cmp/cmp"
)

type recorder struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (r *recorder) WriteText(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.texts = append(r.texts, text)
	return nil
}

func (r *recorder) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.texts)
}

func openTest(t *testing.T, kv store.KV, clip *clipboard.Clipboard) *Session {
	t.Helper()
	if kv == nil {
		kv = store.NewMemKV()
	}
	if clip == nil {
		clip = &clipboard.Clipboard{Primary: &recorder{}}
	}
	s := Open(context.Background(), Options{
		Persistence:  store.NewPersistence(kv, nil),
		Clipboard:    clip,
		SaveDebounce: time.Hour,
		Now:          func() time.Time { return time.Date(2026, 10, 19, 18, 30, 0, 0, time.Local) },
	})
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestOpen_EmptyStorageGivesDefaults(t *testing.T) {
	t.Parallel()

	s := openTest(t, nil, nil)
	if s.Loaded() {
		t.Fatalf("expected Loaded=false on empty storage")
	}
	if diff := cmp.Diff(model.NewDraft(), s.Draft()); diff != "" {
		t.Fatalf("draft mismatch (-want +got):\n%s", diff)
	}
	if s.SaveStatus() != "" {
		t.Fatalf("expected empty save status, got %q", s.SaveStatus())
	}
}

func TestEdit_SchedulesSaveAndFlushWrites(t *testing.T) {
	t.Parallel()

	kv := store.NewMemKV()
	s := openTest(t, kv, nil)
	if err := s.SetLead("Sam"); err != nil {
		t.Fatalf("SetLead: %v", err)
	}
	if !s.Dirty() {
		t.Fatalf("expected pending save after edit")
	}
	if _, ok, _ := kv.Get(context.Background(), store.DraftKey); ok {
		t.Fatalf("save ran before the debounce elapsed")
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if s.Dirty() {
		t.Fatalf("expected no pending save after flush")
	}
	if !strings.HasPrefix(s.SaveStatus(), "Last saved: ") {
		t.Fatalf("unexpected save status %q", s.SaveStatus())
	}

	reopened := openTest(t, kv, nil)
	if !reopened.Loaded() {
		t.Fatalf("expected stored draft to load")
	}
	if got := reopened.Draft().Lead; got != "Sam" {
		t.Fatalf("lead after reopen = %q", got)
	}
	if !strings.HasPrefix(reopened.SaveStatus(), "Last saved: ") {
		t.Fatalf("reopened save status %q", reopened.SaveStatus())
	}
}

func TestEdit_DebouncedSaveFiresOnItsOwn(t *testing.T) {
	t.Parallel()

	kv := store.NewMemKV()
	changed := make(chan struct{}, 4)
	s := Open(context.Background(), Options{
		Persistence:  store.NewPersistence(kv, nil),
		Clipboard:    &clipboard.Clipboard{Primary: &recorder{}},
		SaveDebounce: 10 * time.Millisecond,
		OnChange: func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		},
	})
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	_ = s.SetRevenue("1200")
	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for debounced save")
	}
	raw, ok, _ := kv.Get(context.Background(), store.DraftKey)
	if !ok || !strings.Contains(raw, `"revenue":"1200"`) {
		t.Fatalf("stored blob = %q", raw)
	}
}

func TestSaveFailure_KeepsDraftAndReportsStatus(t *testing.T) {
	t.Parallel()

	kv := store.NewMemKV()
	kv.SetFail(errors.New("quota exceeded"))
	s := openTest(t, kv, nil)

	_ = s.SetLead("Sam")
	err := s.Flush()
	var pe *store.PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if s.SaveStatus() != MsgSaveFailed {
		t.Fatalf("save status = %q", s.SaveStatus())
	}
	if s.Draft().Lead != "Sam" {
		t.Fatalf("in-memory draft lost after save failure")
	}

	kv.SetFail(nil)
	_ = s.SetLead("Sam K")
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush after recovery: %v", err)
	}
}

func TestUnitMutators(t *testing.T) {
	t.Parallel()

	s := openTest(t, nil, nil)
	if err := s.SetUnitName("Alpha", "Front Bench"); err != nil {
		t.Fatalf("SetUnitName: %v", err)
	}
	_ = s.SetUnitPriority("Alpha", model.PriorityHigh)
	_ = s.SetUnitItems("Alpha", model.CategoryCompleted, "RAM, SSD")
	_ = s.ToggleCollapsed("Alpha")

	u, _ := s.Draft().Unit("Alpha")
	want := model.Unit{
		Key: "Alpha", DisplayName: "Front Bench", Priority: model.PriorityHigh,
		Completed: "RAM, SSD", Collapsed: true,
	}
	if diff := cmp.Diff(want, *u); diff != "" {
		t.Fatalf("unit mismatch (-want +got):\n%s", diff)
	}

	err := s.SetUnitItems("Zulu", model.CategoryCompleted, "x")
	if !errors.Is(err, ErrUnknownUnit) {
		t.Fatalf("expected ErrUnknownUnit, got %v", err)
	}
}

func TestToggleAllCollapsed(t *testing.T) {
	t.Parallel()

	s := openTest(t, nil, nil)
	if got := s.ToggleAllCollapsed(); !got {
		t.Fatalf("first toggle should collapse all")
	}
	if !s.Draft().AllCollapsed() {
		t.Fatalf("expected every unit collapsed")
	}
	if got := s.ToggleAllCollapsed(); got {
		t.Fatalf("second toggle should expand all")
	}
	for _, u := range s.Draft().Units {
		if u.Collapsed {
			t.Fatalf("unit %s still collapsed", u.Key)
		}
	}
}

func TestSetClosingDate(t *testing.T) {
	t.Parallel()

	s := openTest(t, nil, nil)
	if err := s.SetClosingDate("today"); err != nil {
		t.Fatalf("SetClosingDate: %v", err)
	}
	if got := s.Draft().ClosingDate; got != "2026-10-19" {
		t.Fatalf("closing date = %q", got)
	}
	if err := s.SetClosingDate("19/10/2026"); err == nil {
		t.Fatalf("expected error for malformed date")
	}
	if got := s.Draft().ClosingDate; got != "2026-10-19" {
		t.Fatalf("malformed input changed the date to %q", got)
	}
	if err := s.SetClosingDate(""); err != nil || s.Draft().ClosingDate != "" {
		t.Fatalf("blank should unset the date: err=%v date=%q", err, s.Draft().ClosingDate)
	}
}

func TestClearAndUndo(t *testing.T) {
	t.Parallel()

	s := openTest(t, nil, nil)
	_ = s.SetUnitPriority("Bravo", model.PriorityLow)
	_ = s.SetUnitItems("Bravo", model.CategoryRemaining, "Backup")
	before, _ := s.Draft().Unit("Bravo")

	if err := s.ClearUnit("Bravo"); err != nil {
		t.Fatalf("ClearUnit: %v", err)
	}
	cleared, _ := s.Draft().Unit("Bravo")
	if cleared.HasContent() || cleared.Priority != model.PriorityMedium {
		t.Fatalf("unit not cleared: %+v", cleared)
	}
	if !s.UndoPending("Bravo") {
		t.Fatalf("expected undo pending")
	}
	if !s.UndoClear("Bravo") {
		t.Fatalf("expected undo to restore")
	}
	after, _ := s.Draft().Unit("Bravo")
	if diff := cmp.Diff(*before, *after); diff != "" {
		t.Fatalf("undo mismatch (-want +got):\n%s", diff)
	}
	if s.UndoClear("Bravo") {
		t.Fatalf("second undo should be a no-op")
	}
}

func TestCopy_RefusedWhenRequiredFieldsMissing(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	s := openTest(t, nil, &clipboard.Clipboard{Primary: rec})

	out, err := s.Copy(context.Background(), VariantFull)
	var ve *validate.Error
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if out.OK() || out.Validation.DateError == "" || out.Validation.LeadError == "" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if rec.calls() != 0 {
		t.Fatalf("clipboard written despite failed validation")
	}
	if s.CopyStatus() != validate.MsgFixRequired {
		t.Fatalf("copy status = %q", s.CopyStatus())
	}
}

func TestCopy_StatusTexts(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	cases := []struct {
		name        string
		variant     Variant
		primaryErr  error
		fallbackErr error
		want        string
		wantStatus  clipboard.Status
	}{
		{name: "full", variant: VariantFull, want: "Copied ✅ Paste into Teams.", wantStatus: clipboard.Copied},
		{name: "workstations", variant: VariantWorkstations, want: "Copied workstations ✅", wantStatus: clipboard.Copied},
		{name: "full fallback", variant: VariantFull, primaryErr: boom, want: "Copied with fallback ✅ Paste into Teams.", wantStatus: clipboard.CopiedFallback},
		{name: "workstations fallback", variant: VariantWorkstations, primaryErr: boom, want: "Copied workstations with fallback ✅", wantStatus: clipboard.CopiedFallback},
		{name: "failed", variant: VariantFull, primaryErr: boom, fallbackErr: boom, want: MsgCopyFailed, wantStatus: clipboard.Failed},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			primary := &recorder{err: tc.primaryErr}
			fallback := &recorder{err: tc.fallbackErr}
			s := openTest(t, nil, &clipboard.Clipboard{Primary: primary, Fallback: fallback})
			_ = s.SetClosingDate("2026-10-19")
			_ = s.SetLead("Sam")
			_ = s.SetUnitItems("Charlie", model.CategoryCompleted, "RAM")

			out, err := s.Copy(context.Background(), tc.variant)
			if out.Message != tc.want || s.CopyStatus() != tc.want {
				t.Fatalf("message = %q status = %q, want %q", out.Message, s.CopyStatus(), tc.want)
			}
			if out.Status != tc.wantStatus {
				t.Fatalf("status = %v, want %v", out.Status, tc.wantStatus)
			}
			if tc.wantStatus == clipboard.Failed {
				var ce *clipboard.Error
				if !errors.As(err, &ce) {
					t.Fatalf("expected clipboard error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Copy: %v", err)
			}
			want := report.FormatFull(s.Draft())
			if tc.variant == VariantWorkstations {
				want = report.FormatWorkstationsOnly(s.Draft())
			}
			if out.Text != want {
				t.Fatalf("copied text mismatch:\n%s\nwant:\n%s", out.Text, want)
			}
		})
	}
}

func TestReset_DeletesStorageAndCancelsPendingSave(t *testing.T) {
	t.Parallel()

	kv := store.NewMemKV()
	s := openTest(t, kv, nil)
	_ = s.SetLead("Sam")
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	_ = s.SetBudget("500")
	_ = s.ClearUnit("Alpha")

	if err := s.Reset(context.Background()); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if s.Dirty() {
		t.Fatalf("reset left a save pending")
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if _, ok, _ := kv.Get(context.Background(), store.DraftKey); ok {
		t.Fatalf("stored draft survived reset")
	}
	if diff := cmp.Diff(model.NewDraft(), s.Draft()); diff != "" {
		t.Fatalf("draft after reset (-want +got):\n%s", diff)
	}
	if s.UndoPending("Alpha") {
		t.Fatalf("undo slot survived reset")
	}
	if s.SaveStatus() != "" || s.CopyStatus() != "" {
		t.Fatalf("statuses not cleared: %q %q", s.SaveStatus(), s.CopyStatus())
	}
}

func TestReload_SkipsWhileSavePending(t *testing.T) {
	t.Parallel()

	kv := store.NewMemKV()
	writer := openTest(t, kv, nil)
	reader := openTest(t, kv, nil)

	_ = writer.SetLead("Sam")
	if err := writer.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if !reader.Reload(context.Background()) {
		t.Fatalf("reload refused without local edits")
	}
	if reader.Draft().Lead != "Sam" {
		t.Fatalf("reader did not pick up the stored draft")
	}

	_ = reader.SetNotes("local edit")
	if reader.Reload(context.Background()) {
		t.Fatalf("reload should not clobber a pending edit")
	}
	if reader.Draft().ImportantNotes != "local edit" {
		t.Fatalf("pending edit lost")
	}
}

// gateKV blocks Set while armed, so a test can act during an in-flight save.
type gateKV struct {
	*store.MemKV

	mu      sync.Mutex
	armed   bool
	entered chan struct{}
	release chan struct{}
}

func newGateKV() *gateKV {
	return &gateKV{MemKV: store.NewMemKV()}
}

func (g *gateKV) arm() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.armed = true
	g.entered = make(chan struct{})
	g.release = make(chan struct{})
}

func (g *gateKV) Set(ctx context.Context, key, val string) error {
	g.mu.Lock()
	armed, entered, release := g.armed, g.entered, g.release
	g.armed = false
	g.mu.Unlock()
	if armed {
		close(entered)
		<-release
	}
	return g.MemKV.Set(ctx, key, val)
}

func TestReload_SkipsWhileSaveInFlight(t *testing.T) {
	t.Parallel()

	kv := newGateKV()
	s := openTest(t, kv, nil)
	ctx := context.Background()

	_ = s.SetLead("A")
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	kv.arm()
	_ = s.SetLead("B")
	flushed := make(chan error, 1)
	go func() { flushed <- s.Flush() }()
	<-kv.entered

	if s.Reload(ctx) {
		t.Fatalf("reload replaced the draft while its save was running")
	}
	if got := s.Draft().Lead; got != "B" {
		t.Fatalf("in-memory lead = %q; want B", got)
	}

	close(kv.release)
	if err := <-flushed; err != nil {
		t.Fatalf("Flush: %v", err)
	}

	_ = s.SetRevenue("x")
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	stored, ok := store.NewPersistence(kv, nil).Load(ctx)
	if !ok || stored.Lead != "B" || stored.Revenue != "x" {
		t.Fatalf("stored lead=%q revenue=%q; want B and x", stored.Lead, stored.Revenue)
	}
}

func TestReload_IgnoresOwnLastSave(t *testing.T) {
	t.Parallel()

	s := openTest(t, nil, nil)
	_ = s.SetLead("Sam")
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if s.Reload(context.Background()) {
		t.Fatalf("reload of the blob this session just wrote should be skipped")
	}
	if s.Draft().Lead != "Sam" {
		t.Fatalf("lead lost")
	}
}

func TestReload_DropsUndoSlots(t *testing.T) {
	t.Parallel()

	kv := store.NewMemKV()
	writer := openTest(t, kv, nil)
	reader := openTest(t, kv, nil)

	_ = reader.SetUnitItems("Alpha", model.CategoryCompleted, "RAM")
	_ = reader.ClearUnit("Alpha")
	if err := reader.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if !reader.UndoPending("Alpha") {
		t.Fatalf("expected a pending undo before reload")
	}

	_ = writer.SetUnitItems("Alpha", model.CategoryRemaining, "Label printer")
	if err := writer.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if !reader.Reload(context.Background()) {
		t.Fatalf("expected reload of the other session's save")
	}
	if reader.UndoPending("Alpha") || reader.UndoClear("Alpha") {
		t.Fatalf("undo snapshot survived a reload")
	}
	u, _ := reader.Draft().Unit("Alpha")
	if u.Remaining != "Label printer" || u.Completed != "" {
		t.Fatalf("reloaded unit overwritten: %#v", u)
	}
}

func TestUndoClear_NothingToRestoreDoesNotSave(t *testing.T) {
	t.Parallel()

	s := openTest(t, nil, nil)
	if s.UndoClear("Alpha") || s.UndoClear("Zulu") {
		t.Fatalf("expected nothing to undo")
	}
	if s.Dirty() {
		t.Fatalf("a no-op undo scheduled a save")
	}

	_ = s.SetUnitItems("Alpha", model.CategoryCompleted, "RAM")
	_ = s.ClearUnit("Alpha")
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if !s.UndoClear("Alpha") {
		t.Fatalf("expected undo to restore Alpha")
	}
	if !s.Dirty() {
		t.Fatalf("a restoring undo must schedule a save")
	}
}
