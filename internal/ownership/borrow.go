package ownership

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"ownsim/internal/source"
)

// BorrowID identifies a borrow; zero is never issued.
type BorrowID uint32

// NoBorrowID marks the absence of a borrow.
const NoBorrowID BorrowID = 0

// BorrowKind is either shared or mutable.
type BorrowKind uint8

const (
	BorrowShared BorrowKind = iota
	BorrowMut
)

func (k BorrowKind) String() string {
	if k == BorrowMut {
		return "mut"
	}
	return "shared"
}

// BorrowRecord is what the table remembers about one borrow after it began.
type BorrowRecord struct {
	ID       BorrowID
	Kind     BorrowKind
	Owner    BindingID
	Handle   BindingID
	Span     source.Span
	Scope    ScopeID
	Released bool
}

// loans are the live borrows of a single owner. Readers and a writer
// never coexist.
type loans struct {
	readers []BorrowID
	writer  BorrowID
}

func (l loans) empty() bool { return len(l.readers) == 0 && l.writer == NoBorrowID }

// BorrowTable tracks live borrows by owner and by the scope that bounds them.
type BorrowTable struct {
	records []BorrowRecord
	byOwner map[BindingID]loans
	byScope map[ScopeID][]BorrowID
}

// NewBorrowTable returns an empty table. Slot zero of the record list is
// reserved so that NoBorrowID never resolves.
func NewBorrowTable() *BorrowTable {
	return &BorrowTable{
		records: make([]BorrowRecord, 1, 16),
		byOwner: map[BindingID]loans{},
		byScope: map[ScopeID][]BorrowID{},
	}
}

// Check returns the borrow that prevents a new borrow of kind on owner, or
// NoBorrowID when the borrow may start.
func (bt *BorrowTable) Check(kind BorrowKind, owner BindingID) BorrowID {
	l := bt.byOwner[owner]
	if l.writer != NoBorrowID {
		return l.writer
	}
	if kind == BorrowMut && len(l.readers) > 0 {
		return l.readers[0]
	}
	return NoBorrowID
}

// Begin records a borrow that already passed Check.
func (bt *BorrowTable) Begin(kind BorrowKind, owner, handle BindingID, span source.Span, scope ScopeID) BorrowID {
	n, err := safecast.Conv[uint32](len(bt.records))
	if err != nil {
		panic(fmt.Errorf("too many borrows: %w", err))
	}
	id := BorrowID(n)
	bt.records = append(bt.records, BorrowRecord{
		ID: id, Kind: kind, Owner: owner, Handle: handle, Span: span, Scope: scope,
	})
	l := bt.byOwner[owner]
	if kind == BorrowMut {
		l.writer = id
	} else {
		l.readers = append(l.readers, id)
	}
	bt.byOwner[owner] = l
	bt.byScope[scope] = append(bt.byScope[scope], id)
	return id
}

// WriteBlocker returns the borrow that keeps owner from being written or
// moved through its own name. Any live borrow does.
func (bt *BorrowTable) WriteBlocker(owner BindingID) BorrowID {
	l := bt.byOwner[owner]
	if len(l.readers) > 0 {
		return l.readers[0]
	}
	return l.writer
}

// ReadBlocker returns the mutable borrow of owner, if any. Shared borrows
// leave the owner readable.
func (bt *BorrowTable) ReadBlocker(owner BindingID) BorrowID {
	return bt.byOwner[owner].writer
}

// EndScope releases the borrows bounded by scope and returns their IDs in
// the order they began.
func (bt *BorrowTable) EndScope(scope ScopeID) []BorrowID {
	ids, ok := bt.byScope[scope]
	if !ok {
		return nil
	}
	delete(bt.byScope, scope)
	for _, id := range ids {
		rec := bt.Record(id)
		if rec == nil || rec.Released {
			continue
		}
		rec.Released = true
		l := bt.byOwner[rec.Owner]
		if rec.Kind == BorrowMut {
			if l.writer == id {
				l.writer = NoBorrowID
			}
		} else if i := slices.Index(l.readers, id); i >= 0 {
			// Keep order so conflicts keep naming the oldest reader.
			l.readers = slices.Delete(l.readers, i, i+1)
		}
		if l.empty() {
			delete(bt.byOwner, rec.Owner)
		} else {
			bt.byOwner[rec.Owner] = l
		}
	}
	return ids
}

// Record looks up a borrow by ID. It returns nil for NoBorrowID and
// unknown IDs.
func (bt *BorrowTable) Record(id BorrowID) *BorrowRecord {
	if bt == nil || id == NoBorrowID || int(id) >= len(bt.records) {
		return nil
	}
	return &bt.records[id]
}

// Active returns copies of the live shared borrows of owner and its
// mutable borrow.
func (bt *BorrowTable) Active(owner BindingID) (shared []BorrowID, mut BorrowID) {
	l := bt.byOwner[owner]
	return slices.Clone(l.readers), l.writer
}
