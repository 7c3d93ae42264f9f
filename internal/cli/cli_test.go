package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"closenote/internal/clipboard"
	"closenote/internal/session"
	"closenote/internal/store"
)

type fakeClipboard struct {
	mu   sync.Mutex
	last string
	err  error
}

func (f *fakeClipboard) WriteText(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.last = text
	return nil
}

type harness struct {
	t    *testing.T
	dir  string
	clip *fakeClipboard
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("CLOSENOTE_CONFIG_DIR", t.TempDir())
	t.Setenv("CLOSENOTE_DIR", "")
	t.Setenv("CLOSENOTE_BACKEND", "")
	t.Setenv("CLOSENOTE_FORMAT", "")
	t.Setenv("CLOSENOTE_LOG", "")
	return &harness{t: t, dir: t.TempDir(), clip: &fakeClipboard{}}
}

func (h *harness) run(args ...string) (stdout []byte, stderr []byte, err error) {
	h.t.Helper()
	app := &App{
		clip: &clipboard.Clipboard{Primary: h.clip},
		now:  func() time.Time { return time.Date(2026, 10, 19, 17, 0, 0, 0, time.Local) },
	}
	cmd := newRootCmd(app)

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(append([]string{"--dir", h.dir}, args...))

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

func (h *harness) mustEnv(args ...string) map[string]any {
	h.t.Helper()
	stdout, stderr, err := h.run(args...)
	if err != nil {
		h.t.Fatalf("command failed: closenote %v\nerr: %v\nstderr:\n%s\nstdout:\n%s", args, err, stderr, stdout)
	}
	var env map[string]any
	if err := json.Unmarshal(stdout, &env); err != nil {
		h.t.Fatalf("unmarshal stdout as json envelope: %v\nstdout:\n%s\nargs: %v", err, stdout, args)
	}
	if _, ok := env["data"]; !ok {
		h.t.Fatalf("expected JSON envelope to contain data key; got: %v", env)
	}
	return env
}

func TestSetAndShow_PersistAcrossInvocations(t *testing.T) {
	h := newHarness(t)

	h.mustEnv("set", "--date", "today", "--lead", "Sam K", "--revenue", "1200")
	h.mustEnv("unit", "set", "charlie", "--priority", "high", "--completed", "RAM, ram\nSSD")
	h.mustEnv("unit", "set", "Golf", "--remaining", "Backup")

	stdout, stderr, err := h.run("show")
	if err != nil {
		t.Fatalf("show: %v\n%s", err, stderr)
	}
	want := strings.Join([]string{
		"**Geek Squad Closing Note**",
		"Date of closing: Mon, Oct 19, 2026 | Closing agent: Sam K",
		"Revenue: 1200",
		"Budget: (not provided)",
		"",
		"**Important notes**",
		"- (none)",
		"",
		"**Workstations**",
		"1. Charlie | Priority: High",
		"   - C: RAM, SSD",
		"2. Golf | Priority: Medium",
		"   - R: Backup",
	}, "\n") + "\n"
	if string(stdout) != want {
		t.Fatalf("show output mismatch:\n%s\nwant:\n%s", stdout, want)
	}

	ws, _, err := h.run("show", "--workstations")
	if err != nil {
		t.Fatalf("show --workstations: %v", err)
	}
	if !strings.HasPrefix(string(ws), "**Workstations**\n1. Charlie") {
		t.Fatalf("unexpected workstations output:\n%s", ws)
	}
}

func TestSet_RequiresAFlag(t *testing.T) {
	h := newHarness(t)
	if _, _, err := h.run("set"); err == nil {
		t.Fatalf("expected error when no field is given")
	}
}

func TestSet_RejectsMalformedDate(t *testing.T) {
	h := newHarness(t)
	_, stderr, err := h.run("set", "--date", "10/19/2026")
	if err == nil {
		t.Fatalf("expected date error")
	}
	if !strings.Contains(string(stderr), "YYYY-MM-DD") {
		t.Fatalf("stderr should explain the date format, got %q", stderr)
	}
}

func TestUnit_UnknownKey(t *testing.T) {
	h := newHarness(t)
	_, stderr, err := h.run("unit", "set", "Zulu", "--priority", "low")
	if err == nil || !strings.Contains(string(stderr), "unknown unit") {
		t.Fatalf("expected unknown unit error, got err=%v stderr=%q", err, stderr)
	}
}

func TestUnit_ListClearCollapse(t *testing.T) {
	h := newHarness(t)

	h.mustEnv("unit", "set", "Alpha", "--name", "Front Bench", "--priority", "low", "--in-progress", "Reimage")
	env := h.mustEnv("unit", "list", "--active")
	units := env["data"].([]any)
	if len(units) != 1 {
		t.Fatalf("expected 1 active unit, got %d", len(units))
	}
	alpha := units[0].(map[string]any)
	if alpha["displayName"] != "Front Bench" || alpha["priority"] != "Low" {
		t.Fatalf("unexpected unit: %#v", alpha)
	}

	env = h.mustEnv("unit", "clear", "alpha")
	cleared := env["data"].(map[string]any)
	if cleared["priority"] != "Medium" || cleared["active"] != false || cleared["displayName"] != "Front Bench" {
		t.Fatalf("unexpected cleared unit: %#v", cleared)
	}

	env = h.mustEnv("unit", "collapse", "--all")
	for _, u := range env["data"].([]any) {
		if u.(map[string]any)["collapsed"] != true {
			t.Fatalf("expected every unit collapsed: %#v", u)
		}
	}
	env = h.mustEnv("unit", "collapse", "Bravo", "--expand")
	got := env["data"].([]any)
	if len(got) != 1 || got[0].(map[string]any)["collapsed"] != false {
		t.Fatalf("expected Bravo expanded: %#v", got)
	}

	if _, _, err := h.run("unit", "collapse"); err == nil {
		t.Fatalf("collapse without unit or --all should fail")
	}
}

func TestValidateAndCopy(t *testing.T) {
	h := newHarness(t)

	stdout, _, err := h.run("validate")
	if err == nil {
		t.Fatalf("validate should fail on an empty draft")
	}
	var env map[string]any
	if jerr := json.Unmarshal(stdout, &env); jerr != nil {
		t.Fatalf("validate output: %v\n%s", jerr, stdout)
	}
	data := env["data"].(map[string]any)
	if data["ok"] != false || data["dateError"] == nil || data["leadError"] == nil {
		t.Fatalf("unexpected validation payload: %#v", data)
	}

	if _, _, err := h.run("copy"); err == nil {
		t.Fatalf("copy should refuse an invalid draft")
	}
	if h.clip.last != "" {
		t.Fatalf("clipboard written despite validation failure")
	}

	h.mustEnv("set", "--date", "2026-10-19", "--lead", "Sam")
	h.mustEnv("validate")
	env = h.mustEnv("copy", "--workstations")
	data = env["data"].(map[string]any)
	if data["message"] != "Copied workstations ✅" || data["status"] != "copied" {
		t.Fatalf("unexpected copy payload: %#v", data)
	}
	if h.clip.last != "**Workstations**\n(none)" {
		t.Fatalf("clipboard text = %q", h.clip.last)
	}
}

func TestCopy_ClipboardFailure(t *testing.T) {
	h := newHarness(t)
	h.mustEnv("set", "--date", "2026-10-19", "--lead", "Sam")
	h.clip.err = errors.New("no display")

	stdout, _, err := h.run("copy")
	var ce *clipboard.Error
	if !errors.As(err, &ce) {
		t.Fatalf("expected clipboard error, got %v", err)
	}
	if !strings.Contains(string(stdout), session.MsgCopyFailed) {
		t.Fatalf("expected failure message in output, got %s", stdout)
	}
}

func TestReset_NeedsConfirmation(t *testing.T) {
	h := newHarness(t)
	h.mustEnv("set", "--lead", "Sam")

	if _, _, err := h.run("reset"); !errors.Is(err, errResetNotConfirmed) {
		t.Fatalf("expected unconfirmed reset error, got %v", err)
	}
	env := h.mustEnv("status")
	if env["data"].(map[string]any)["hasDraft"] != true {
		t.Fatalf("draft should survive an unconfirmed reset")
	}

	h.mustEnv("reset", "--yes")
	env = h.mustEnv("status")
	if env["data"].(map[string]any)["hasDraft"] != false {
		t.Fatalf("draft should be gone after reset")
	}
	env = h.mustEnv("export")
	if env["data"].(map[string]any)["lead"] != "" {
		t.Fatalf("lead survived reset: %#v", env["data"])
	}
}

func TestBackendsAndFormats(t *testing.T) {
	for _, backend := range []string{"sqlite", "file"} {
		t.Run(backend, func(t *testing.T) {
			h := newHarness(t)
			h.mustEnv("--backend", backend, "set", "--budget", "300")
			env := h.mustEnv("--backend", backend, "status")
			data := env["data"].(map[string]any)
			if data["backend"] != backend || data["hasDraft"] != true || data["restored"] != true {
				t.Fatalf("unexpected status: %#v", data)
			}
		})
	}

	h := newHarness(t)
	h.mustEnv("--ephemeral", "set", "--lead", "Sam")
	env := h.mustEnv("status")
	if data := env["data"].(map[string]any); data["hasDraft"] != false || data["restored"] != false {
		t.Fatalf("--ephemeral must not write to disk")
	}

	stdout, _, err := h.run("--format", "edn", "validate")
	if err == nil || !strings.HasPrefix(string(stdout), "{:data {") {
		t.Fatalf("expected edn output, got err=%v out=%s", err, stdout)
	}
	stdout, _, err = h.run("--format", "yaml", "status")
	if err != nil || !strings.HasPrefix(string(stdout), "data:\n") {
		t.Fatalf("expected yaml output, got err=%v out=%s", err, stdout)
	}
	if _, _, err := h.run("--format", "xml", "status"); err == nil {
		t.Fatalf("unknown format should fail")
	}
	if _, _, err := h.run("--backend", "redis", "status"); err == nil {
		t.Fatalf("unknown backend should fail")
	}
}

func TestInit_WritesConfig(t *testing.T) {
	h := newHarness(t)
	env := h.mustEnv("init")
	data := env["data"].(map[string]any)
	if data["configCreated"] != true {
		t.Fatalf("expected config to be created: %#v", data)
	}
	env = h.mustEnv("init")
	if env["data"].(map[string]any)["configCreated"] != false {
		t.Fatalf("second init should keep the existing config")
	}
	cfg, err := store.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Backend != "sqlite" {
		t.Fatalf("default config backend = %q", cfg.Backend)
	}
}

func TestConfigTitleAppliesToReport(t *testing.T) {
	h := newHarness(t)
	if err := store.SaveConfig(&store.Config{Title: "**Store 42 Closing**"}); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	stdout, _, err := h.run("show")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.HasPrefix(string(stdout), "**Store 42 Closing**\n") {
		t.Fatalf("title not applied:\n%s", stdout)
	}
}

func TestWizardAnswers_ApplyOnlyChanges(t *testing.T) {
	s := session.Open(context.Background(), session.Options{
		Persistence:  store.NewPersistence(store.NewMemKV(), nil),
		SaveDebounce: time.Hour,
		Now:          func() time.Time { return time.Date(2026, 10, 19, 9, 0, 0, 0, time.Local) },
	})
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	a := answersFrom(s.Draft())
	if err := a.apply(s); err != nil {
		t.Fatalf("apply unchanged: %v", err)
	}
	if s.Dirty() {
		t.Fatalf("unchanged answers should not schedule a save")
	}

	a.Date = "yesterday"
	a.Lead = "Sam"
	a.Notes = "Door sticks"
	if err := a.apply(s); err != nil {
		t.Fatalf("apply: %v", err)
	}
	d := s.Draft()
	if d.ClosingDate != "2026-10-18" || d.Lead != "Sam" || d.ImportantNotes != "Door sticks" {
		t.Fatalf("answers not applied: %+v", d)
	}

	now := func() time.Time { return time.Now() }
	if err := validateDateAnswer(now)(""); err == nil {
		t.Fatalf("blank date should be rejected")
	}
	if err := validateDateAnswer(now)("2026-02-30"); err == nil {
		t.Fatalf("impossible date should be rejected")
	}
}
