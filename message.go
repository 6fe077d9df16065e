package ans

import (
	"fmt"

	"github.com/fumin/ans/rans"
)

// A Shape describes the layout of a message head over its flat lane arena.
// It is either a leaf, an array of lanes with the given dimensions, or a
// composite, an ordered tuple of shapes laid out consecutively. Composite
// shapes let a coder whose state is itself structured address its parts by
// offset without runtime type inspection.
type Shape struct {
	Dims  []int
	Elems []Shape
}

// Leaf returns the shape of an array with the given dimensions.
// Leaf() is the shape of a scalar, which occupies one lane.
func Leaf(dims ...int) Shape {
	return Shape{Dims: dims}
}

// Composite returns the shape of a tuple of consecutively laid out heads.
func Composite(elems ...Shape) Shape {
	return Shape{Elems: elems}
}

// IsLeaf reports whether s is an array shape rather than a tuple.
func (s Shape) IsLeaf() bool {
	return s.Elems == nil
}

// Size returns the number of lanes occupied by a head of shape s.
func (s Shape) Size() int {
	if !s.IsLeaf() {
		size := 0
		for _, e := range s.Elems {
			size += e.Size()
		}
		return size
	}
	size := 1
	for _, d := range s.Dims {
		size *= d
	}
	return size
}

// Equal reports whether s and t describe the same layout.
func (s Shape) Equal(t Shape) bool {
	if s.IsLeaf() != t.IsLeaf() {
		return false
	}
	if s.IsLeaf() {
		if len(s.Dims) != len(t.Dims) {
			return false
		}
		for i, d := range s.Dims {
			if t.Dims[i] != d {
				return false
			}
		}
		return true
	}
	if len(s.Elems) != len(t.Elems) {
		return false
	}
	for i, e := range s.Elems {
		if !e.Equal(t.Elems[i]) {
			return false
		}
	}
	return true
}

func (s Shape) String() string {
	if s.IsLeaf() {
		return fmt.Sprintf("%v", s.Dims)
	}
	return fmt.Sprintf("%v", s.Elems)
}

// A Message is the state of the coder: a shaped head of uint64 lanes backed
// by one contiguous arena, and a tail holding words renormalized out of the
// head. Messages are values; every codec operation returns a new one and
// leaves its argument intact.
type Message struct {
	rans.Message
	Shape Shape
}

// Base returns the shallowest possible message with the given head shape.
func Base(shape Shape) Message {
	return Message{Message: rans.Base(shape.Size()), Shape: shape}
}

// A View selects a sub-range of a message head for Substack: the lanes
// [Off, Off+Shape.Size()), reinterpreted with the given shape.
type View struct {
	Off   int
	Shape Shape
}
