package diag

import (
	"cmp"
	"slices"

	"ownsim/internal/source"
)

// DefaultLimit caps a Bag created with a non-positive limit.
const DefaultLimit = 100

// Bag collects diagnostics up to a limit. Anything past the limit is
// counted but not kept.
type Bag struct {
	items   []Diagnostic
	limit   int
	dropped int
}

// NewBag returns a bag holding at most limit diagnostics.
func NewBag(limit int) *Bag {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Bag{limit: limit}
}

// Add keeps d if there is room and reports whether it did.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) == b.limit {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Cap is the most diagnostics the bag will hold.
func (b *Bag) Cap() int { return b.limit }

// Dropped counts diagnostics rejected by Add because the bag was full.
func (b *Bag) Dropped() int { return b.dropped }

func (b *Bag) Len() int { return len(b.items) }

// Items returns the stored diagnostics. Callers must not modify the slice.
func (b *Bag) Items() []Diagnostic { return b.items }

func (b *Bag) atLeast(sev Severity) bool {
	return slices.ContainsFunc(b.items, func(d Diagnostic) bool { return d.Severity >= sev })
}

// HasErrors reports whether any diagnostic is an error.
func (b *Bag) HasErrors() bool { return b.atLeast(SevError) }

// HasWarnings reports whether any diagnostic is a warning or worse.
func (b *Bag) HasWarnings() bool { return b.atLeast(SevWarning) }

// Count returns how many diagnostics carry code.
func (b *Bag) Count(code Code) int {
	n := 0
	for _, d := range b.items {
		if d.Code == code {
			n++
		}
	}
	return n
}

// Merge appends everything in other. The limit grows to fit, so nothing
// other already accepted is lost.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
	b.limit = max(b.limit, len(b.items))
	b.dropped += other.dropped
}

// Sort orders diagnostics by position, then by descending severity and
// ascending code. Equal entries keep their insertion order.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		return cmp.Or(
			cmp.Compare(x.Primary.File, y.Primary.File),
			cmp.Compare(x.Primary.Start, y.Primary.Start),
			cmp.Compare(x.Primary.End, y.Primary.End),
			cmp.Compare(y.Severity, x.Severity),
			cmp.Compare(x.Code, y.Code),
		)
	})
}

// Dedup keeps the first diagnostic for each code and primary span.
func (b *Bag) Dedup() {
	type key struct {
		code Code
		span source.Span
	}
	seen := make(map[key]struct{}, len(b.items))
	b.items = slices.DeleteFunc(b.items, func(d Diagnostic) bool {
		k := key{d.Code, d.Primary}
		if _, dup := seen[k]; dup {
			return true
		}
		seen[k] = struct{}{}
		return false
	})
}
