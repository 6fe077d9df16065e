// Package rans implements a vectorized range variant of the asymmetric
// numeral system (rANS).
//
// The coder state is a Message, a stack onto which symbols are pushed and
// from which they are popped in last-in-first-out order. The head of the
// stack is a batch of independent 64-bit lanes which are coded in lock-step,
// one symbol interval per lane per call. Words renormalized out of the head
// are kept on the tail, an immutable chunked stack of 32-bit words, so
// Messages behave as values and may be retained cheaply across operations.
//
// A symbol at precision p is described by an interval (start, freq) with
// 0 < freq and start+freq <= 1<<p. Callers are responsible for supplying
// intervals which partition [0, 1<<p); this package performs only the state
// update
//
//	head' = (head/freq)<<p + head%freq + start
//
// and its inverse, renormalizing the head into [1<<31, 1<<63) by moving
// 32-bit words to and from the tail.
//
// Reference:
// J. Duda, Asymmetric numeral systems: entropy coding combining speed of
// Huffman coding with compression rate of arithmetic coding, arXiv:1311.2540.
package rans

import (
	"fmt"

	"github.com/pkg/errors"
)

const (
	// ransL is the lower bound of the renormalization interval.
	// Every head lane h of a well-formed message satisfies
	// ransL <= h < ransL << tailPrec.
	ransL = 1 << 31

	// tailPrec is the width in bits of the words kept on the tail.
	tailPrec = 32
)

// A Stack is an immutable LIFO of 32-bit words. Pushing returns a new Stack
// sharing structure with the old one, so Messages referring to earlier
// states remain valid.
type Stack struct {
	arr  []uint32
	rest *Stack
}

// extend pushes a chunk of words on top of t. The chunk must not be
// modified afterwards.
func extend(t *Stack, arr []uint32) *Stack {
	if len(arr) == 0 {
		return t
	}
	return &Stack{arr: arr, rest: t}
}

// slice pops the top n words off t.
func slice(t *Stack, n int) ([]uint32, *Stack) {
	words := make([]uint32, 0, n)
	for n > 0 {
		if t == nil || len(t.arr) == 0 {
			panic("rans: tail exhausted, insufficient entropy in message")
		}
		if n >= len(t.arr) {
			words = append(words, t.arr...)
			n -= len(t.arr)
			t = t.rest
		} else {
			words = append(words, t.arr[:n]...)
			t = &Stack{arr: t.arr[n:], rest: t.rest}
			n = 0
		}
	}
	return words, t
}

// A Message is the coder state, a vectorized ANS stack.
type Message struct {
	Head []uint64
	Tail *Stack
}

// Base returns the shallowest possible message with n head lanes.
// Popping from it without first pushing exhausts the tail.
func Base(n int) Message {
	head := make([]uint64, n)
	for i := range head {
		head[i] = ransL
	}
	return Message{Head: head}
}

// Push encodes one symbol interval per lane onto m. starts, freqs and precs
// must all have one entry per head lane, with freqs[i] > 0 and
// precs[i] <= 31.
func Push(m Message, starts, freqs, precs []uint64) Message {
	n := len(m.Head)
	if len(starts) != n || len(freqs) != n || len(precs) != n {
		panic(fmt.Sprintf("rans: %d head lanes, got %d starts, %d freqs, %d precisions",
			n, len(starts), len(freqs), len(precs)))
	}
	head := make([]uint64, n)
	var flushed []uint32
	for i, h := range m.Head {
		f := freqs[i]
		if f == 0 {
			panic(fmt.Sprintf("rans: zero frequency at lane %d", i))
		}
		if h >= f<<(63-precs[i]) {
			flushed = append(flushed, uint32(h))
			h >>= tailPrec
		}
		head[i] = (h/f)<<precs[i] + h%f + starts[i]
	}
	return Message{Head: head, Tail: extend(m.Tail, flushed)}
}

// A Finish consumes the symbol intervals chosen by the caller after a Pop
// and returns the next message.
type Finish func(starts, freqs []uint64) Message

// Pop begins decoding one symbol per lane from m. It returns the cumulative
// frequency of each lane, from which the caller determines the symbols and
// their intervals, and a Finish which consumes those intervals. The
// cumulative frequency of lane i must lie inside the interval later passed
// to Finish, otherwise the resulting state is corrupt.
func Pop(m Message, precs []uint64) ([]uint64, Finish) {
	n := len(m.Head)
	if len(precs) != n {
		panic(fmt.Sprintf("rans: %d head lanes, got %d precisions", n, len(precs)))
	}
	cfs := make([]uint64, n)
	for i, h := range m.Head {
		cfs[i] = h & (1<<precs[i] - 1)
	}
	finish := func(starts, freqs []uint64) Message {
		if len(starts) != n || len(freqs) != n {
			panic(fmt.Sprintf("rans: %d head lanes, got %d starts, %d freqs", n, len(starts), len(freqs)))
		}
		head := make([]uint64, n)
		pulls := 0
		for i, h := range m.Head {
			head[i] = freqs[i]*(h>>precs[i]) + cfs[i] - starts[i]
			if head[i] < ransL {
				pulls++
			}
		}
		tail := m.Tail
		if pulls > 0 {
			var words []uint32
			words, tail = slice(tail, pulls)
			j := 0
			for i := range head {
				if head[i] < ransL {
					head[i] = head[i]<<tailPrec | uint64(words[j])
					j++
				}
			}
		}
		return Message{Head: head, Tail: tail}
	}
	return cfs, finish
}

// Flatten serializes m into a linear buffer of 32-bit words: the high then
// low halves of the head lanes, followed by the tail from its top down.
func Flatten(m Message) []uint32 {
	n := len(m.Head)
	out := make([]uint32, 0, 2*n)
	for _, h := range m.Head {
		out = append(out, uint32(h>>tailPrec))
	}
	for _, h := range m.Head {
		out = append(out, uint32(h))
	}
	for t := m.Tail; t != nil; t = t.rest {
		out = append(out, t.arr...)
	}
	return out
}

// Unflatten reconstructs a message with n head lanes from a buffer produced
// by Flatten.
func Unflatten(arr []uint32, n int) (Message, error) {
	if len(arr) < 2*n {
		return Message{}, errors.Errorf("rans: buffer has %d words, need at least %d for %d lanes", len(arr), 2*n, n)
	}
	head := make([]uint64, n)
	for i := range head {
		head[i] = uint64(arr[i])<<tailPrec | uint64(arr[n+i])
	}
	var tail *Stack
	if len(arr) > 2*n {
		tail = extend(nil, append([]uint32(nil), arr[2*n:]...))
	}
	return Message{Head: head, Tail: tail}, nil
}
