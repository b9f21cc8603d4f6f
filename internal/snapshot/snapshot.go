// Package snapshot stores the final state of an evaluated script in a
// msgpack file so it can be inspected later without re-running it.
package snapshot

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"ownsim/internal/driver"
	"ownsim/internal/observ"
	"ownsim/internal/ownership"
)

// SchemaVersion changes whenever the payload layout does.
const SchemaVersion uint16 = 1

// ErrSchema is returned when a file was written with another schema.
var ErrSchema = errors.New("snapshot schema mismatch")

// Snapshot is the serialized picture of one run.
type Snapshot struct {
	Schema     uint16
	Path       string
	ScriptHash [32]byte
	CreatedAt  time.Time
	Shadowing  string

	Steps    []Step
	Bindings []Binding
	Buffers  []Buffer
	Events   []Event
	Timing   observ.Report
	Failed   bool
}

// Step is one evaluated statement.
type Step struct {
	Text   string
	Op     string
	Status string
	Expect string `msgpack:",omitempty"`
	Kind   string `msgpack:",omitempty"`
	Detail string `msgpack:",omitempty"`
	Events int
}

// Binding mirrors ownership.BindingView.
type Binding struct {
	ID      uint32
	Name    string
	Kind    string
	Mutable bool
	State   string
	Scope   uint32
	Value   string
	Len     int
	MovedTo string `msgpack:",omitempty"`
}

// Buffer mirrors ownership.BufferView.
type Buffer struct {
	ID       uint32
	Owner    string
	Content  string
	Len      int
	Released bool
}

// Event mirrors ownership.Event without spans; spans only make sense
// next to the script they came from.
type Event struct {
	Seq        int
	Kind       string
	Name       string
	TargetName string `msgpack:",omitempty"`
	BorrowKind string `msgpack:",omitempty"`
	Scope      uint32
	Note       string `msgpack:",omitempty"`
}

// FromResult captures res. It returns nil for a script that never ran.
func FromResult(res *driver.Result, shadowing ownership.ShadowPolicy) *Snapshot {
	if res == nil || !res.Parsed {
		return nil
	}
	s := &Snapshot{
		Schema:    SchemaVersion,
		Path:      res.Path,
		CreatedAt: time.Now().UTC(),
		Shadowing: shadowing.String(),
		Timing:    res.Timing,
		Failed:    res.Failed(),
	}
	if res.File != nil {
		s.ScriptHash = res.File.Hash
	}
	for _, o := range res.Outcomes {
		st := Step{Text: o.Text, Op: o.Op, Status: o.Status.String(), Detail: o.Detail, Events: len(o.Events)}
		if o.Expect != ownership.NoError {
			st.Expect = o.Expect.String()
		}
		if o.Err != nil {
			st.Kind = o.Err.Kind.String()
		}
		s.Steps = append(s.Steps, st)
	}
	for _, b := range res.Bindings {
		s.Bindings = append(s.Bindings, Binding{
			ID:      uint32(b.ID),
			Name:    b.Name,
			Kind:    b.Kind.String(),
			Mutable: b.Mutable,
			State:   b.State.String(),
			Scope:   uint32(b.Scope),
			Value:   b.Value,
			Len:     b.Len,
			MovedTo: b.MovedTo,
		})
	}
	for _, b := range res.Buffers {
		s.Buffers = append(s.Buffers, Buffer{
			ID:       uint32(b.ID),
			Owner:    b.Owner,
			Content:  b.Content,
			Len:      b.Len,
			Released: b.Released,
		})
	}
	for _, ev := range res.Events {
		e := Event{
			Seq:        ev.Seq,
			Kind:       ev.Kind.String(),
			Name:       ev.Name,
			TargetName: ev.TargetName,
			Scope:      uint32(ev.Scope),
			Note:       ev.Note,
		}
		if ev.Kind == ownership.EvBorrowStart || ev.Kind == ownership.EvBorrowEnd {
			e.BorrowKind = ev.BorrowKind.String()
		}
		s.Events = append(s.Events, e)
	}
	return s
}

// Encode writes s as msgpack.
func Encode(w io.Writer, s *Snapshot) error {
	return msgpack.NewEncoder(w).Encode(s)
}

// Decode reads a snapshot and checks its schema.
func Decode(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: file has %d, want %d", ErrSchema, s.Schema, SchemaVersion)
	}
	return &s, nil
}

// Save writes s to path through a temporary file and a rename, so readers
// never observe a partial snapshot.
func Save(path string, s *Snapshot) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()
	if err = Encode(f, s); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// Load reads a snapshot written by Save.
func Load(path string) (*Snapshot, error) {
	// #nosec G304 -- path is provided by the caller
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}
