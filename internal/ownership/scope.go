package ownership

import "fmt"

// EnterScope opens a nested lexical scope and returns its id.
func (s *Store) EnterScope() (ScopeID, error) {
	if err := s.open("scope_enter"); err != nil {
		return NoScopeID, err
	}
	id := s.pushScope()
	s.record(Event{Kind: EvScopeEnter, Scope: id})
	return id, nil
}

// EndScope closes id, which must be the innermost open scope. Borrows
// introduced in the scope are released first; then the scope's bindings are
// dropped in reverse declaration order. Each buffer still owned by one of
// those bindings is released exactly once; moved-from bindings release nothing.
// Ending the root scope closes the store.
func (s *Store) EndScope(id ScopeID) error {
	const op = "scope_exit"
	if err := s.open(op); err != nil {
		return err
	}
	if cur := s.Scope(); id != cur {
		return s.reject(&Error{
			Kind:    ScopeMismatch,
			Op:      op,
			Message: fmt.Sprintf("scope %d is not the innermost open scope (%d)", id, cur),
		})
	}

	for _, bid := range s.borrows.EndScope(id) {
		info := s.borrows.Record(bid)
		owner, handle := s.binding(info.Owner), s.binding(info.Handle)
		s.record(Event{
			Kind:       EvBorrowEnd,
			Binding:    owner.id,
			Name:       owner.name,
			Target:     handle.id,
			TargetName: handle.name,
			Borrow:     bid,
			BorrowKind: info.Kind,
			Span:       info.Span,
			Scope:      id,
		})
	}

	sc := s.scope(id)
	for i := len(sc.bindings) - 1; i >= 0; i-- {
		b := s.binding(sc.bindings[i])
		switch b.state {
		case StateOwned:
			b.state = StateDropped
			if b.kind != ValueBuffer {
				continue
			}
			buf := &s.buffers[b.buffer]
			buf.released = true
			buf.owner = NoBindingID
			s.record(Event{Kind: EvDrop, Binding: b.id, Name: b.name, Buffer: buf.id, Span: b.declared, Scope: id})
		case StateMovedFrom, StateDropped, StateUninitialized:
			// nothing to release
		}
	}

	s.stack = s.stack[:len(s.stack)-1]
	s.record(Event{Kind: EvScopeExit, Scope: id})
	if len(s.stack) == 0 {
		s.closed = true
	}
	return nil
}

// Close ends every open scope, innermost first.
func (s *Store) Close() error {
	for !s.closed {
		if err := s.EndScope(s.Scope()); err != nil {
			return err
		}
	}
	return nil
}
