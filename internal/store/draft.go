package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"closenote/internal/model"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// DraftKey is the single key the whole draft is stored under.
const DraftKey = "gs_closing_note_draft_v3"

const draftWireVersion = 3

type draftWire struct {
	Version        int                 `json:"version"`
	Meta           metaWire            `json:"meta"`
	Settings       settingsWire        `json:"settings"`
	ClosingDate    string              `json:"closingDate"`
	Lead           string              `json:"lead"`
	Revenue        string              `json:"revenue"`
	Budget         string              `json:"budget"`
	ImportantNotes string              `json:"importantNotes"`
	Units          map[string]unitWire `json:"units"`
}

type metaWire struct {
	SavedAt string `json:"savedAt,omitempty"`
}

type settingsWire struct {
	ShowOnlyActive bool `json:"showOnlyActive"`
}

type unitWire struct {
	DisplayName string `json:"displayName"`
	Priority    string `json:"priority"`
	C           string `json:"c"`
	IP          string `json:"ip"`
	R           string `json:"r"`
	Collapsed   bool   `json:"collapsed"`
}

// Persistence saves and restores the draft through a KV.
type Persistence struct {
	KV  KV
	Key string
	// Now stamps saves. Nil means time.Now.
	Now func() time.Time
	Log *zap.Logger
}

func NewPersistence(kv KV, log *zap.Logger) *Persistence {
	return &Persistence{KV: kv, Key: DraftKey, Log: log}
}

func (p *Persistence) key() string {
	if strings.TrimSpace(p.Key) == "" {
		return DraftKey
	}
	return p.Key
}

func (p *Persistence) logger() *zap.Logger {
	if p.Log == nil {
		return zap.NewNop()
	}
	return p.Log
}

func (p *Persistence) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Save writes d under the draft key, replacing the previous blob, and returns
// the timestamp recorded in the blob. d itself is not modified.
func (p *Persistence) Save(ctx context.Context, d *model.Draft) (time.Time, error) {
	if d == nil {
		return time.Time{}, &PersistenceError{Op: "save", Key: p.key(), Err: errors.New("nil draft")}
	}
	ts := p.now()
	raw, err := EncodeDraft(d, ts)
	if err != nil {
		return time.Time{}, &PersistenceError{Op: "encode", Key: p.key(), Err: err}
	}
	if err := p.KV.Set(ctx, p.key(), raw); err != nil {
		return time.Time{}, &PersistenceError{Op: "save", Key: p.key(), Err: err}
	}
	return ts, nil
}

// Load returns the stored draft. It never fails: a missing, unreadable or
// malformed blob yields the default draft and ok=false.
func (p *Persistence) Load(ctx context.Context) (*model.Draft, bool) {
	raw, ok, err := p.KV.Get(ctx, p.key())
	if err != nil {
		p.logger().Warn("draft load failed; using defaults", zap.String("key", p.key()), zap.Error(err))
		return model.NewDraft(), false
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return model.NewDraft(), false
	}
	d, err := DecodeDraft(raw)
	if err != nil {
		p.logger().Debug("stored draft ignored", zap.String("key", p.key()), zap.Error(err))
		return model.NewDraft(), false
	}
	return d, true
}

// HasDraft reports whether a blob is stored. Storage errors count as "no draft".
func (p *Persistence) HasDraft(ctx context.Context) bool {
	raw, ok, err := p.KV.Get(ctx, p.key())
	return err == nil && ok && strings.TrimSpace(raw) != ""
}

// Reset deletes the stored blob.
func (p *Persistence) Reset(ctx context.Context) error {
	if err := p.KV.Remove(ctx, p.key()); err != nil {
		return &PersistenceError{Op: "remove", Key: p.key(), Err: err}
	}
	return nil
}

// WatchTarget returns the directory and file-name prefix that change when the
// draft is written. ok is false for in-memory storage.
func (p *Persistence) WatchTarget() (dir string, prefix string, ok bool) {
	switch kv := p.KV.(type) {
	case SQLiteKV:
		return filepath.Dir(kv.Path), filepath.Base(kv.Path), true
	case *SQLiteKV:
		return filepath.Dir(kv.Path), filepath.Base(kv.Path), true
	case FileKV:
		return kv.Dir, filepath.Base(kv.path(p.key())), true
	case *FileKV:
		return kv.Dir, filepath.Base(kv.path(p.key())), true
	}
	return "", "", false
}

// EncodeDraft renders the storage blob for d stamped with savedAt.
func EncodeDraft(d *model.Draft, savedAt time.Time) (string, error) {
	w := draftWire{
		Version:        draftWireVersion,
		Settings:       settingsWire{ShowOnlyActive: d.ShowOnlyActive},
		ClosingDate:    d.ClosingDate,
		Lead:           d.Lead,
		Revenue:        d.Revenue,
		Budget:         d.Budget,
		ImportantNotes: d.ImportantNotes,
		Units:          make(map[string]unitWire, len(d.Units)),
	}
	if !savedAt.IsZero() {
		w.Meta.SavedAt = savedAt.Format(time.RFC3339Nano)
	}
	for _, u := range d.Units {
		name := u.DisplayName
		if strings.TrimSpace(name) == "" {
			name = u.Key
		}
		prio := u.Priority
		if prio == "" {
			prio = model.PriorityMedium
		}
		w.Units[u.Key] = unitWire{
			DisplayName: name,
			Priority:    string(prio),
			C:           u.Completed,
			IP:          u.InProgress,
			R:           u.Remaining,
			Collapsed:   u.Collapsed,
		}
	}
	b, err := json.Marshal(w)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeDraft parses a storage blob. Fields are decoded one by one so a
// missing or mistyped field falls back to its default instead of failing the
// whole draft; only a blob that is not a JSON object is rejected.
func DecodeDraft(raw string) (*model.Draft, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDraft, err)
	}
	if top == nil {
		return nil, fmt.Errorf("%w: not an object", ErrMalformedDraft)
	}

	d := model.NewDraft()
	d.ClosingDate = field(top, "closingDate", "")
	if _, err := model.ParseDate(d.ClosingDate); err != nil {
		d.ClosingDate = ""
	}
	d.Lead = field(top, "lead", "")
	d.Revenue = field(top, "revenue", "")
	d.Budget = field(top, "budget", "")
	d.ImportantNotes = field(top, "importantNotes", "")

	settings := field(top, "settings", map[string]json.RawMessage{})
	d.ShowOnlyActive = field(settings, "showOnlyActive", false)

	meta := field(top, "meta", map[string]json.RawMessage{})
	if s := field(meta, "savedAt", ""); s != "" {
		if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
			d.SavedAt = ts
		}
	}

	units := field(top, "units", map[string]json.RawMessage{})
	for i := range d.Units {
		key := d.Units[i].Key
		rawUnit, ok := units[key]
		if !ok {
			continue
		}
		var uf map[string]json.RawMessage
		if err := json.Unmarshal(rawUnit, &uf); err != nil || uf == nil {
			continue
		}
		d.Units[i] = decodeUnit(key, uf)
	}
	return d, nil
}

func decodeUnit(key string, uf map[string]json.RawMessage) model.Unit {
	u := model.NewUnit(key)
	if name := field(uf, "displayName", ""); strings.TrimSpace(name) != "" {
		u.DisplayName = name
	}
	u.Priority, _ = model.ParsePriority(field(uf, "priority", string(model.PriorityMedium)))
	u.Completed = field(uf, "c", "")
	u.InProgress = field(uf, "ip", "")
	u.Remaining = field(uf, "r", "")
	u.Collapsed = field(uf, "collapsed", false)
	return u
}

func field[T any](m map[string]json.RawMessage, key string, def T) T {
	raw, ok := m[key]
	if !ok {
		return def
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return def
	}
	return v
}
