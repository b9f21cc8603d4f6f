package ownership

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"

	"ownsim/internal/source"
	"ownsim/internal/trace"
)

// BindingID indexes the binding arena. Zero is the sentinel.
type BindingID uint32

const NoBindingID BindingID = 0

// ScopeID indexes the scope arena. Zero is the sentinel; the root scope is 1.
type ScopeID uint32

const NoScopeID ScopeID = 0

// BufferID indexes the buffer arena. Zero is the sentinel.
type BufferID uint32

const NoBufferID BufferID = 0

// BindingState is the per-binding lifecycle.
type BindingState uint8

const (
	StateUninitialized BindingState = iota
	StateOwned
	StateMovedFrom
	StateDropped
)

func (s BindingState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateOwned:
		return "owned"
	case StateMovedFrom:
		return "moved"
	case StateDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// ShadowPolicy controls redeclaration of a name within the same scope.
type ShadowPolicy uint8

const (
	ShadowAllow ShadowPolicy = iota
	ShadowWarn
	ShadowDeny
)

func (p ShadowPolicy) String() string {
	switch p {
	case ShadowWarn:
		return "warn"
	case ShadowDeny:
		return "deny"
	default:
		return "allow"
	}
}

// ParseShadowPolicy converts "allow", "warn" or "deny".
func ParseShadowPolicy(s string) (ShadowPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "allow":
		return ShadowAllow, nil
	case "warn":
		return ShadowWarn, nil
	case "deny":
		return ShadowDeny, nil
	default:
		return ShadowAllow, fmt.Errorf("invalid shadowing policy %q (expected: allow|warn|deny)", s)
	}
}

// Config tunes a Store.
type Config struct {
	Shadowing ShadowPolicy
	// Tracer receives one node-level point per committed or rejected operation.
	Tracer trace.Tracer
}

type binding struct {
	id      BindingID
	name    string
	kind    ValueKind
	mutable bool
	scope   ScopeID
	state   BindingState

	scalar Scalar
	buffer BufferID
	borrow BorrowID

	declared source.Span
	movedAt  source.Span
	movedTo  BindingID
}

type buffer struct {
	id       BufferID
	content  string
	owner    BindingID
	released bool
}

type scope struct {
	id       ScopeID
	parent   ScopeID
	bindings []BindingID
	names    map[string]BindingID
}

// Store evaluates binding, move and borrow operations one at a time.
// Every operation validates completely before committing, so a rejected
// operation leaves the store exactly as it was. A Store is not safe for
// concurrent use.
type Store struct {
	cfg      Config
	tracer   trace.Tracer
	bindings []binding
	buffers  []buffer
	scopes   []scope
	stack    []ScopeID
	borrows  *BorrowTable
	events   []Event
	span     source.Span
	closed   bool
}

// New creates a store with the root scope already open.
func New(cfg Config) *Store {
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	s := &Store{
		cfg:      cfg,
		tracer:   tracer,
		bindings: []binding{{}},
		buffers:  []buffer{{}},
		scopes:   []scope{{}},
		borrows:  NewBorrowTable(),
	}
	s.pushScope()
	return s
}

// At sets the source span attached to the next operations' events and errors.
func (s *Store) At(span source.Span) *Store {
	s.span = span
	return s
}

// Scope returns the innermost open scope, or NoScopeID once closed.
func (s *Store) Scope() ScopeID {
	if len(s.stack) == 0 {
		return NoScopeID
	}
	return s.stack[len(s.stack)-1]
}

// Depth returns the number of open scopes.
func (s *Store) Depth() int { return len(s.stack) }

// Closed reports whether the root scope has ended.
func (s *Store) Closed() bool { return s.closed }

// Events returns a copy of the event log.
func (s *Store) Events() []Event {
	return append([]Event(nil), s.events...)
}

// EventsSince returns the events recorded after the first n.
func (s *Store) EventsSince(n int) []Event {
	if n < 0 || n >= len(s.events) {
		return nil
	}
	return append([]Event(nil), s.events[n:]...)
}

// EventCount returns the length of the event log.
func (s *Store) EventCount() int { return len(s.events) }

// Borrows exposes the borrow table for inspection.
func (s *Store) Borrows() *BorrowTable { return s.borrows }

func (s *Store) pushScope() ScopeID {
	value, err := safecast.Conv[uint32](len(s.scopes))
	if err != nil {
		panic(fmt.Errorf("scope arena overflow: %w", err))
	}
	id := ScopeID(value)
	s.scopes = append(s.scopes, scope{
		id:     id,
		parent: s.Scope(),
		names:  make(map[string]BindingID),
	})
	s.stack = append(s.stack, id)
	return id
}

func (s *Store) binding(id BindingID) *binding {
	if id == NoBindingID || int(id) >= len(s.bindings) {
		return nil
	}
	return &s.bindings[id]
}

func (s *Store) scope(id ScopeID) *scope {
	if id == NoScopeID || int(id) >= len(s.scopes) {
		return nil
	}
	return &s.scopes[id]
}

// lookup resolves name through the open scopes, innermost first.
func (s *Store) lookup(name string) *binding {
	for i := len(s.stack) - 1; i >= 0; i-- {
		if id, ok := s.scopes[s.stack[i]].names[name]; ok {
			return s.binding(id)
		}
	}
	return nil
}

func (s *Store) newBinding(name string, kind ValueKind, mutable bool) *binding {
	value, err := safecast.Conv[uint32](len(s.bindings))
	if err != nil {
		panic(fmt.Errorf("binding arena overflow: %w", err))
	}
	id := BindingID(value)
	sc := s.scope(s.Scope())
	s.bindings = append(s.bindings, binding{
		id:       id,
		name:     name,
		kind:     kind,
		mutable:  mutable,
		scope:    sc.id,
		state:    StateOwned,
		declared: s.span,
	})
	sc.bindings = append(sc.bindings, id)
	sc.names[name] = id
	return &s.bindings[id]
}

func (s *Store) newBuffer(content string, owner BindingID) BufferID {
	value, err := safecast.Conv[uint32](len(s.buffers))
	if err != nil {
		panic(fmt.Errorf("buffer arena overflow: %w", err))
	}
	id := BufferID(value)
	s.buffers = append(s.buffers, buffer{
		id:      id,
		content: norm.NFC.String(content),
		owner:   owner,
	})
	return id
}

func (s *Store) record(ev Event) {
	ev.Seq = len(s.events) + 1
	if ev.Span == (source.Span{}) {
		ev.Span = s.span
	}
	if ev.Scope == NoScopeID {
		ev.Scope = s.Scope()
	}
	s.events = append(s.events, ev)
	if s.tracer.Enabled() {
		extra := map[string]string{"binding": ev.Name}
		if ev.TargetName != "" {
			extra["target"] = ev.TargetName
		}
		trace.Point(s.tracer, trace.ScopeNode, "own."+ev.Kind.String(), ev.Note, extra)
	}
}

func (s *Store) reject(err *Error) error {
	if err.Span == (source.Span{}) {
		err.Span = s.span
	}
	if s.tracer.Enabled() {
		trace.Point(s.tracer, trace.ScopeNode, "own.reject", err.Message, map[string]string{
			"kind": err.Kind.String(),
			"op":   err.Op,
		})
	}
	return err
}

func (s *Store) open(op string) error {
	if s.closed {
		return s.reject(&Error{Kind: StoreClosed, Op: op, Message: "the root scope has already ended"})
	}
	return nil
}

func (s *Store) resolve(op, name string) (*binding, error) {
	b := s.lookup(name)
	if b == nil {
		return nil, s.reject(&Error{
			Kind:    UnknownBinding,
			Op:      op,
			Name:    name,
			Message: fmt.Sprintf("cannot find binding '%s' in this scope", name),
		})
	}
	return b, nil
}

// usable rejects reads of a moved-from binding.
func (s *Store) usable(op string, b *binding) error {
	if b.state != StateMovedFrom {
		return nil
	}
	err := &Error{
		Kind:        UseAfterMove,
		Op:          op,
		Name:        b.name,
		Message:     fmt.Sprintf("use of moved value '%s'", b.name),
		Related:     b.movedAt,
		RelatedNote: "value moved here",
	}
	if to := s.binding(b.movedTo); to != nil {
		err.RelatedNote = fmt.Sprintf("value moved into '%s' here", to.name)
	}
	if b.kind == ValueBuffer {
		err.Help = fmt.Sprintf("clone '%s' before moving it to keep both usable", b.name)
	}
	return s.reject(err)
}

func (s *Store) conflict(op string, owner *binding, blocker BorrowID, action string) error {
	info := s.borrows.Record(blocker)
	err := &Error{
		Kind: AliasConflict,
		Op:   op,
		Name: owner.name,
	}
	how := "borrowed"
	if info != nil {
		if info.Kind == BorrowMut {
			how = "mutably borrowed"
		} else {
			how = "borrowed as shared"
		}
		err.Related = info.Span
		if h := s.binding(info.Handle); h != nil {
			err.RelatedNote = fmt.Sprintf("'%s' is %s by '%s' here", owner.name, how, h.name)
		}
	}
	err.Message = fmt.Sprintf("cannot %s '%s' while it is %s", action, owner.name, how)
	err.Help = "end the scope holding the borrow first"
	return s.reject(err)
}

// checkShadow validates a new binding name against the shadow policy and
// returns the binding it would hide in the current scope.
func (s *Store) checkShadow(op, name string) (BindingID, error) {
	prev, ok := s.scope(s.Scope()).names[name]
	if !ok {
		return NoBindingID, nil
	}
	old := s.binding(prev)
	if s.cfg.Shadowing == ShadowDeny {
		return NoBindingID, s.reject(&Error{
			Kind:        RedeclarationShadow,
			Op:          op,
			Name:        name,
			Message:     fmt.Sprintf("'%s' is already declared in this scope", name),
			Related:     old.declared,
			RelatedNote: "previous declaration here",
			Help:        "pick a different name or open a nested scope",
		})
	}
	return prev, nil
}

// recordShadow must run after the new binding exists; it takes ids because
// the binding arena may have grown.
func (s *Store) recordShadow(oldID, freshID BindingID) {
	if oldID == NoBindingID {
		return
	}
	old, fresh := s.binding(oldID), s.binding(freshID)
	s.record(Event{
		Kind:       EvShadow,
		Binding:    fresh.id,
		Name:       fresh.name,
		Target:     old.id,
		TargetName: old.name,
		Note:       s.cfg.Shadowing.String(),
	})
}

// Declare introduces a binding for a scalar or an owned buffer.
func (s *Store) Declare(name string, v Value, mutable bool) (BindingID, error) {
	const op = "declare"
	if err := s.open(op); err != nil {
		return NoBindingID, err
	}
	if v.Kind != ValueScalar && v.Kind != ValueBuffer {
		return NoBindingID, s.reject(&Error{
			Kind:    KindMismatch,
			Op:      op,
			Name:    name,
			Message: fmt.Sprintf("cannot declare '%s' from a %s value", name, v.Kind),
		})
	}
	old, err := s.checkShadow(op, name)
	if err != nil {
		return NoBindingID, err
	}

	b := s.newBinding(name, v.Kind, mutable)
	if v.Kind == ValueScalar {
		b.scalar = v.Scalar.duplicate()
	} else {
		b.buffer = s.newBuffer(v.Text, b.id)
	}
	s.record(Event{Kind: EvDeclare, Binding: b.id, Name: name, Buffer: b.buffer, Note: describeDecl(b)})
	s.recordShadow(old, b.id)
	return b.id, nil
}

func describeDecl(b *binding) string {
	if b.mutable {
		return "mut " + b.kind.String()
	}
	return b.kind.String()
}

// Move transfers ownership of an owned buffer from src to a new binding dst.
// src is invalid afterwards.
func (s *Store) Move(src, dst string, dstMutable bool) (BindingID, error) {
	const op = "move"
	if err := s.open(op); err != nil {
		return NoBindingID, err
	}
	from, err := s.resolve(op, src)
	if err != nil {
		return NoBindingID, err
	}
	switch from.kind {
	case ValueScalar:
		return NoBindingID, s.reject(&Error{
			Kind:    KindMismatch,
			Op:      op,
			Name:    src,
			Message: fmt.Sprintf("'%s' is a scalar; scalars are copied, not moved", src),
			Help:    fmt.Sprintf("use 'copy %s -> %s'", src, dst),
		})
	case ValueBorrow:
		return NoBindingID, s.reject(&Error{
			Kind:    KindMismatch,
			Op:      op,
			Name:    src,
			Message: fmt.Sprintf("'%s' is a borrow handle and cannot be moved", src),
		})
	}
	if err := s.usable(op, from); err != nil {
		return NoBindingID, err
	}
	if blocker := s.borrows.WriteBlocker(from.id); blocker != NoBorrowID {
		return NoBindingID, s.conflict(op, from, blocker, "move out of")
	}
	old, err := s.checkShadow(op, dst)
	if err != nil {
		return NoBindingID, err
	}

	// newBinding may grow the arena; keep ids, not pointers, across it.
	fromID, bufID := from.id, from.buffer
	to := s.newBinding(dst, ValueBuffer, dstMutable)
	to.buffer = bufID
	toID := to.id
	s.buffers[bufID].owner = toID
	from = s.binding(fromID)
	from.state = StateMovedFrom
	from.movedAt = s.span
	from.movedTo = toID
	from.buffer = NoBufferID

	s.record(Event{Kind: EvMove, Binding: fromID, Name: src, Target: toID, TargetName: dst, Buffer: bufID})
	s.recordShadow(old, toID)
	return toID, nil
}

// Copy duplicates a scalar into a new binding dst; both stay usable.
func (s *Store) Copy(src, dst string, dstMutable bool) (BindingID, error) {
	const op = "copy"
	if err := s.open(op); err != nil {
		return NoBindingID, err
	}
	from, err := s.resolve(op, src)
	if err != nil {
		return NoBindingID, err
	}
	switch from.kind {
	case ValueBuffer:
		return NoBindingID, s.reject(&Error{
			Kind:    KindMismatch,
			Op:      op,
			Name:    src,
			Message: fmt.Sprintf("'%s' owns a buffer, which cannot be implicitly copied", src),
			Help:    fmt.Sprintf("use 'clone %s -> %s' for a deep copy", src, dst),
		})
	case ValueBorrow:
		return NoBindingID, s.reject(&Error{
			Kind:    KindMismatch,
			Op:      op,
			Name:    src,
			Message: fmt.Sprintf("'%s' is a borrow handle and cannot be copied", src),
		})
	}
	if blocker := s.borrows.ReadBlocker(from.id); blocker != NoBorrowID {
		return NoBindingID, s.conflict(op, from, blocker, "copy")
	}
	old, err := s.checkShadow(op, dst)
	if err != nil {
		return NoBindingID, err
	}

	value := from.scalar.duplicate()
	fromID := from.id
	to := s.newBinding(dst, ValueScalar, dstMutable)
	to.scalar = value
	s.record(Event{Kind: EvCopy, Binding: fromID, Name: src, Target: to.id, TargetName: dst})
	s.recordShadow(old, to.id)
	return to.id, nil
}

// Clone deep-copies src into a new binding dst. Both own distinct data.
// Cloning a scalar is the same as copying it.
func (s *Store) Clone(src, dst string, dstMutable bool) (BindingID, error) {
	const op = "clone"
	if err := s.open(op); err != nil {
		return NoBindingID, err
	}
	from, err := s.resolve(op, src)
	if err != nil {
		return NoBindingID, err
	}
	if from.kind == ValueBorrow {
		return NoBindingID, s.reject(&Error{
			Kind:    KindMismatch,
			Op:      op,
			Name:    src,
			Message: fmt.Sprintf("'%s' is a borrow handle; clone its owner instead", src),
		})
	}
	if err := s.usable(op, from); err != nil {
		return NoBindingID, err
	}
	if blocker := s.borrows.ReadBlocker(from.id); blocker != NoBorrowID {
		return NoBindingID, s.conflict(op, from, blocker, "clone")
	}
	old, err := s.checkShadow(op, dst)
	if err != nil {
		return NoBindingID, err
	}

	fromID, kind, scalar := from.id, from.kind, from.scalar.duplicate()
	var content string
	if kind == ValueBuffer {
		content = s.buffers[from.buffer].content
	}
	to := s.newBinding(dst, kind, dstMutable)
	if kind == ValueBuffer {
		to.buffer = s.newBuffer(content, to.id)
	} else {
		to.scalar = scalar
	}
	s.record(Event{Kind: EvClone, Binding: fromID, Name: src, Target: to.id, TargetName: dst, Buffer: to.buffer})
	s.recordShadow(old, to.id)
	return to.id, nil
}

// BorrowShared introduces handle as a shared borrow of owner.
func (s *Store) BorrowShared(owner, handle string) (BorrowID, error) {
	return s.borrow("borrow", owner, handle, BorrowShared)
}

// BorrowMut introduces handle as the exclusive borrow of owner.
func (s *Store) BorrowMut(owner, handle string) (BorrowID, error) {
	return s.borrow("borrow_mut", owner, handle, BorrowMut)
}

func (s *Store) borrow(op, owner, handle string, kind BorrowKind) (BorrowID, error) {
	if err := s.open(op); err != nil {
		return NoBorrowID, err
	}
	o, err := s.resolve(op, owner)
	if err != nil {
		return NoBorrowID, err
	}
	if o.kind == ValueBorrow {
		return NoBorrowID, s.reject(&Error{
			Kind:    KindMismatch,
			Op:      op,
			Name:    owner,
			Message: fmt.Sprintf("'%s' is already a borrow handle; borrow its owner instead", owner),
		})
	}
	if err := s.usable(op, o); err != nil {
		return NoBorrowID, err
	}
	if kind == BorrowMut && !o.mutable {
		return NoBorrowID, s.reject(&Error{
			Kind:        NotMutable,
			Op:          op,
			Name:        owner,
			Message:     fmt.Sprintf("cannot borrow '%s' as mutable, as it is not declared as mutable", owner),
			Related:     o.declared,
			RelatedNote: "declared here",
			Help:        fmt.Sprintf("declare it with 'let mut %s'", owner),
		})
	}
	if blocker := s.borrows.Check(kind, o.id); blocker != NoBorrowID {
		action := "borrow"
		if kind == BorrowMut {
			action = "borrow as mutable"
		}
		return NoBorrowID, s.conflict(op, o, blocker, action)
	}
	old, err := s.checkShadow(op, handle)
	if err != nil {
		return NoBorrowID, err
	}

	ownerID := o.id
	h := s.newBinding(handle, ValueBorrow, false)
	id := s.borrows.Begin(kind, ownerID, h.id, s.span, s.Scope())
	h.borrow = id
	s.record(Event{
		Kind:       EvBorrowStart,
		Binding:    ownerID,
		Name:       owner,
		Target:     h.id,
		TargetName: handle,
		Borrow:     id,
		BorrowKind: kind,
	})
	s.recordShadow(old, h.id)
	return id, nil
}

// MutationKind enumerates in-place writes.
type MutationKind uint8

const (
	MutPush MutationKind = iota + 1
	MutSet
	MutClear
)

func (k MutationKind) String() string {
	switch k {
	case MutPush:
		return "push"
	case MutSet:
		return "set"
	case MutClear:
		return "clear"
	default:
		return "unknown"
	}
}

// Mutation is one in-place write.
type Mutation struct {
	Kind  MutationKind
	Text  string // push
	Value Value  // set
}

func Push(text string) Mutation { return Mutation{Kind: MutPush, Text: text} }
func Set(v Value) Mutation      { return Mutation{Kind: MutSet, Value: v} }
func Clear() Mutation           { return Mutation{Kind: MutClear} }

// Mutate writes to target in place. target is either a mutable owner with no
// live borrows, or a mutable borrow handle.
func (s *Store) Mutate(target string, m Mutation) error {
	const op = "mutate"
	if err := s.open(op); err != nil {
		return err
	}
	t, err := s.resolve(op, target)
	if err != nil {
		return err
	}

	owner := t
	if t.kind == ValueBorrow {
		info := s.borrows.Record(t.borrow)
		if info.Kind != BorrowMut {
			return s.reject(&Error{
				Kind:        NotMutable,
				Op:          op,
				Name:        target,
				Message:     fmt.Sprintf("cannot write through '%s', which is a shared borrow", target),
				Related:     info.Span,
				RelatedNote: "borrowed as shared here",
				Help:        "take the borrow with '&mut'",
			})
		}
		owner = s.binding(info.Owner)
	} else {
		if err := s.usable(op, t); err != nil {
			return err
		}
		if !t.mutable {
			return s.reject(&Error{
				Kind:        NotMutable,
				Op:          op,
				Name:        target,
				Message:     fmt.Sprintf("cannot assign twice to immutable binding '%s'", target),
				Related:     t.declared,
				RelatedNote: "declared here",
				Help:        fmt.Sprintf("declare it with 'let mut %s'", target),
			})
		}
		if blocker := s.borrows.WriteBlocker(t.id); blocker != NoBorrowID {
			return s.conflict(op, t, blocker, "mutate")
		}
	}
	if err := s.checkMutation(op, target, owner, m); err != nil {
		return err
	}

	switch m.Kind {
	case MutPush:
		buf := &s.buffers[owner.buffer]
		buf.content = norm.NFC.String(buf.content + m.Text)
	case MutClear:
		s.buffers[owner.buffer].content = ""
	case MutSet:
		if owner.kind == ValueBuffer {
			s.buffers[owner.buffer].content = norm.NFC.String(m.Value.Text)
		} else {
			owner.scalar = m.Value.Scalar.duplicate()
		}
	}
	note := m.Kind.String()
	if t != owner {
		note += " via " + t.name
	}
	s.record(Event{Kind: EvWrite, Binding: owner.id, Name: owner.name, Target: t.id, TargetName: t.name, Buffer: owner.buffer, Note: note})
	return nil
}

func (s *Store) checkMutation(op, target string, owner *binding, m Mutation) error {
	mismatch := func(msg string) error {
		return s.reject(&Error{Kind: KindMismatch, Op: op, Name: target, Message: msg})
	}
	switch m.Kind {
	case MutPush, MutClear:
		if owner.kind != ValueBuffer {
			return mismatch(fmt.Sprintf("cannot %s on '%s': %s is only defined for buffers", m.Kind, target, m.Kind))
		}
	case MutSet:
		switch {
		case m.Value.Kind != owner.kind:
			return mismatch(fmt.Sprintf("cannot set '%s' (a %s) to a %s value", target, owner.kind, m.Value.Kind))
		case owner.kind == ValueScalar && !owner.scalar.SameShape(m.Value.Scalar):
			return mismatch(fmt.Sprintf("cannot set '%s' of type %s to a value of type %s",
				target, owner.scalar.ShapeString(), m.Value.Scalar.ShapeString()))
		}
	default:
		return mismatch(fmt.Sprintf("unknown mutation on '%s'", target))
	}
	return nil
}

// readable resolves name for a read and returns the binding holding the data.
func (s *Store) readable(op, name string) (*binding, error) {
	b, err := s.resolve(op, name)
	if err != nil {
		return nil, err
	}
	if b.kind == ValueBorrow {
		return s.binding(s.borrows.Record(b.borrow).Owner), nil
	}
	if err := s.usable(op, b); err != nil {
		return nil, err
	}
	if blocker := s.borrows.ReadBlocker(b.id); blocker != NoBorrowID {
		return nil, s.conflict(op, b, blocker, "use")
	}
	return b, nil
}

func (s *Store) valueOf(b *binding) Value {
	if b.kind == ValueBuffer {
		return BufferValue(s.buffers[b.buffer].content)
	}
	return ScalarValue(b.scalar)
}

// Read references name and returns a copy of its value. Reading through a
// borrow handle yields the owner's value.
func (s *Store) Read(name string) (Value, error) {
	const op = "use"
	if err := s.open(op); err != nil {
		return Value{}, err
	}
	b, err := s.readable(op, name)
	if err != nil {
		return Value{}, err
	}
	s.record(Event{Kind: EvUse, Binding: b.id, Name: name})
	return s.valueOf(b), nil
}

// Len returns the character count of a buffer read through name.
func (s *Store) Len(name string) (int, error) {
	const op = "len"
	if err := s.open(op); err != nil {
		return 0, err
	}
	b, err := s.readable(op, name)
	if err != nil {
		return 0, err
	}
	if b.kind != ValueBuffer {
		return 0, s.reject(&Error{
			Kind:    KindMismatch,
			Op:      op,
			Name:    name,
			Message: fmt.Sprintf("'%s' is a scalar and has no length", name),
		})
	}
	n := len([]rune(s.buffers[b.buffer].content))
	s.record(Event{Kind: EvUse, Binding: b.id, Name: name, Note: "len"})
	return n, nil
}

// Assert reads name and compares it with want.
func (s *Store) Assert(name string, want Value) error {
	const op = "assert"
	if err := s.open(op); err != nil {
		return err
	}
	b, err := s.readable(op, name)
	if err != nil {
		return err
	}
	got := s.valueOf(b)
	if !got.Equal(want) {
		return s.reject(&Error{
			Kind:    AssertionFailed,
			Op:      op,
			Name:    name,
			Message: fmt.Sprintf("'%s' is %s, expected %s", name, got, want),
		})
	}
	s.record(Event{Kind: EvUse, Binding: b.id, Name: name, Note: "assert"})
	return nil
}

// Consume passes name by value to a callee that returns nothing. A buffer is
// moved into the callee and dropped when it returns; a scalar is copied; a
// borrow handle is only read.
func (s *Store) Consume(name string) error {
	const op = "consume"
	if err := s.open(op); err != nil {
		return err
	}
	b, err := s.resolve(op, name)
	if err != nil {
		return err
	}
	if b.kind != ValueBuffer {
		if _, err := s.readable(op, name); err != nil {
			return err
		}
		note := "copied into callee"
		if b.kind == ValueBorrow {
			note = "reference passed to callee"
		}
		s.record(Event{Kind: EvUse, Binding: b.id, Name: name, Note: note})
		return nil
	}
	if err := s.usable(op, b); err != nil {
		return err
	}
	if blocker := s.borrows.WriteBlocker(b.id); blocker != NoBorrowID {
		return s.conflict(op, b, blocker, "move out of")
	}

	bufID := b.buffer
	b.state = StateMovedFrom
	b.movedAt = s.span
	b.buffer = NoBufferID
	s.buffers[bufID].owner = NoBindingID
	s.buffers[bufID].released = true
	s.record(Event{Kind: EvMove, Binding: b.id, Name: name, Buffer: bufID, Note: "into callee"})
	s.record(Event{Kind: EvDrop, Binding: b.id, Name: name, Buffer: bufID, Note: "callee returned"})
	return nil
}
