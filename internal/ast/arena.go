package ast

import (
	"fmt"

	"fortio.org/safecast"
)

// Arena stores nodes contiguously; index 0 is reserved for "no node".
type Arena[T any] struct {
	data []T
}

// NewArena creates an arena with room for capHint nodes.
func NewArena[T any](capHint uint) *Arena[T] {
	return &Arena[T]{data: make([]T, 0, capHint)}
}

// Allocate appends value and returns its 1-based index.
func (a *Arena[T]) Allocate(value T) uint32 {
	a.data = append(a.data, value)
	return a.Len()
}

func (a *Arena[T]) Get(index uint32) *T {
	if index == 0 || int(index) > len(a.data) {
		return nil
	}
	return &a.data[index-1]
}

func (a *Arena[T]) Len() uint32 {
	n, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("arena length overflow: %w", err))
	}
	return n
}
