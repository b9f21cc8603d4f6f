package ownership

import (
	"fmt"
	"strconv"

	"ownsim/internal/source"
)

// BindingView is a read-only picture of one binding.
type BindingView struct {
	ID      BindingID
	Name    string
	Kind    ValueKind
	Mutable bool
	State   BindingState
	Scope   ScopeID
	// Live is true while the binding's scope is open.
	Live bool
	// Visible is true when name lookup resolves to this binding.
	Visible bool
	// Value renders the content: a scalar, a quoted buffer, or "&owner"/"&mut owner".
	Value string
	Len   int
	// Shared counts live shared borrows of this binding; MutBorrowed reports an exclusive one.
	Shared      int
	MutBorrowed bool
	MovedTo     string
	Declared    source.Span
}

// BufferView is a read-only picture of one arena buffer.
type BufferView struct {
	ID       BufferID
	Owner    string
	Content  string
	Len      int
	Released bool
}

// Snapshot lists every binding ever declared, in declaration order.
func (s *Store) Snapshot() []BindingView {
	open := make(map[ScopeID]bool, len(s.stack))
	for _, id := range s.stack {
		open[id] = true
	}
	out := make([]BindingView, 0, len(s.bindings)-1)
	for i := 1; i < len(s.bindings); i++ {
		b := &s.bindings[i]
		v := BindingView{
			ID:       b.id,
			Name:     b.name,
			Kind:     b.kind,
			Mutable:  b.mutable,
			State:    b.state,
			Scope:    b.scope,
			Live:     open[b.scope],
			Declared: b.declared,
		}
		v.Visible = v.Live && s.lookup(b.name) == b
		shared, mut := s.borrows.Active(b.id)
		v.Shared = len(shared)
		v.MutBorrowed = mut != NoBorrowID
		if to := s.binding(b.movedTo); to != nil {
			v.MovedTo = to.name
		}
		switch b.kind {
		case ValueScalar:
			v.Value = b.scalar.String()
		case ValueBuffer:
			if b.buffer != NoBufferID {
				content := s.buffers[b.buffer].content
				v.Value = strconv.Quote(content)
				v.Len = len([]rune(content))
			}
		case ValueBorrow:
			if info := s.borrows.Record(b.borrow); info != nil {
				prefix := "&"
				if info.Kind == BorrowMut {
					prefix = "&mut "
				}
				v.Value = prefix + s.binding(info.Owner).name
			}
		}
		out = append(out, v)
	}
	return out
}

// Binding returns the view of one binding.
func (s *Store) Binding(id BindingID) (BindingView, bool) {
	if s.binding(id) == nil {
		return BindingView{}, false
	}
	for _, v := range s.Snapshot() {
		if v.ID == id {
			return v, true
		}
	}
	return BindingView{}, false
}

// Buffers lists every buffer ever allocated.
func (s *Store) Buffers() []BufferView {
	out := make([]BufferView, 0, len(s.buffers)-1)
	for i := 1; i < len(s.buffers); i++ {
		buf := &s.buffers[i]
		v := BufferView{
			ID:       buf.id,
			Content:  buf.content,
			Len:      len([]rune(buf.content)),
			Released: buf.released,
		}
		if owner := s.binding(buf.owner); owner != nil {
			v.Owner = owner.name
		}
		out = append(out, v)
	}
	return out
}

// CheckInvariants verifies the single-owner and aliasing invariants across
// the whole store. It is meant for tests and debug builds.
func (s *Store) CheckInvariants() error {
	owners := make(map[BufferID]int)
	for i := 1; i < len(s.bindings); i++ {
		b := &s.bindings[i]
		if b.kind != ValueBuffer {
			continue
		}
		switch b.state {
		case StateOwned:
			if b.buffer == NoBufferID {
				return fmt.Errorf("binding %q is owned but holds no buffer", b.name)
			}
			buf := &s.buffers[b.buffer]
			if buf.released {
				return fmt.Errorf("binding %q owns released buffer %d", b.name, buf.id)
			}
			if buf.owner != b.id {
				return fmt.Errorf("buffer %d names owner %d, but %q (%d) holds it", buf.id, buf.owner, b.name, b.id)
			}
			owners[b.buffer]++
		case StateMovedFrom, StateDropped:
			if b.state == StateMovedFrom && b.buffer != NoBufferID {
				return fmt.Errorf("moved-from binding %q still references buffer %d", b.name, b.buffer)
			}
		}
	}
	for i := 1; i < len(s.buffers); i++ {
		buf := &s.buffers[i]
		n := owners[buf.id]
		if !buf.released && n != 1 {
			return fmt.Errorf("buffer %d has %d owners, want exactly 1", buf.id, n)
		}
		if buf.released && n != 0 {
			return fmt.Errorf("released buffer %d still has %d owners", buf.id, n)
		}
	}
	for owner, l := range s.borrows.byOwner {
		if len(l.readers) > 0 && l.writer != NoBorrowID {
			return fmt.Errorf("binding %d has shared and mutable borrows at once", owner)
		}
		if b := s.binding(owner); b == nil || b.state != StateOwned {
			return fmt.Errorf("binding %d is borrowed but not owned", owner)
		}
	}
	return nil
}
