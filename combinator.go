package ans

import (
	"fmt"

	"github.com/fumin/ans/rans"
)

// Repeat returns a codec for fixed-length sequences of n symbols, each
// coded by codec. The stack is last-in-first-out, so Push processes the
// sequence in reverse for Pop to recover it in order. codec must not change
// the shape of the head.
func Repeat[S any](codec Codec[S], n int) Codec[[]S] {
	push := func(m Message, symbols []S) Message {
		if len(symbols) != n {
			panic(fmt.Sprintf("ans: Repeat: got %d symbols, want %d", len(symbols), n))
		}
		for i := n - 1; i >= 0; i-- {
			m = codec.Push(m, symbols[i])
		}
		return m
	}
	pop := func(m Message) (Message, []S) {
		symbols := make([]S, n)
		for i := 0; i < n; i++ {
			m, symbols[i] = codec.Pop(m)
		}
		return m, symbols
	}
	return Codec[[]S]{Push: push, Pop: pop}
}

// Serial applies the given codecs in series to a matching sequence of
// symbols. The codecs may differ and may change the shape of the head.
// Push processes the sequence in reverse, as in Repeat.
func Serial[S any](codecs []Codec[S]) Codec[[]S] {
	push := func(m Message, symbols []S) Message {
		if len(symbols) != len(codecs) {
			panic(fmt.Sprintf("ans: Serial: got %d symbols for %d codecs", len(symbols), len(codecs)))
		}
		for i := len(codecs) - 1; i >= 0; i-- {
			m = codecs[i].Push(m, symbols[i])
		}
		return m
	}
	pop := func(m Message) (Message, []S) {
		symbols := make([]S, len(codecs))
		for i := range codecs {
			m, symbols[i] = codecs[i].Pop(m)
		}
		return m, symbols
	}
	return Codec[[]S]{Push: push, Pop: pop}
}

// Substack restricts codec to the sub-range of the head selected by view,
// leaving the other lanes untouched. The sub-message shares the tail with
// its parent, so information still flows between the selected lanes and
// the message as a whole. codec must preserve the size of the subhead.
func Substack[S any](codec Codec[S], view View) Codec[S] {
	n := view.Shape.Size()
	sub := func(m Message) Message {
		if view.Off < 0 || view.Off+n > len(m.Head) {
			panic(fmt.Sprintf("ans: Substack: view [%d, %d) outside head of %d lanes", view.Off, view.Off+n, len(m.Head)))
		}
		return Message{Message: rans.Message{Head: m.Head[view.Off : view.Off+n], Tail: m.Tail}, Shape: view.Shape}
	}
	merge := func(m, s Message) Message {
		if len(s.Head) != n {
			panic(fmt.Sprintf("ans: Substack: codec resized the subhead from %d to %d lanes", n, len(s.Head)))
		}
		head := make([]uint64, len(m.Head))
		copy(head, m.Head)
		copy(head[view.Off:], s.Head)
		return Message{Message: rans.Message{Head: head, Tail: s.Tail}, Shape: m.Shape}
	}
	push := func(m Message, symbol S) Message {
		return merge(m, codec.Push(sub(m), symbol))
	}
	pop := func(m Message) (Message, S) {
		s, symbol := codec.Pop(sub(m))
		return merge(m, s), symbol
	}
	return Codec[S]{Push: push, Pop: pop}
}

// Parallel runs independent codecs on disjoint sub-ranges of the head,
// one per view, sharing a single tail. The symbol sequence is arranged the
// same way as the codecs. The sub-ranges being disjoint, an implementation
// is free to process them concurrently as long as tail traffic keeps the
// serial order; this one runs them in series.
func Parallel[S any](codecs []Codec[S], views []View) Codec[[]S] {
	if len(views) != len(codecs) {
		panic(fmt.Sprintf("ans: Parallel: %d codecs, %d views", len(codecs), len(views)))
	}
	subs := make([]Codec[S], len(codecs))
	for i := range codecs {
		subs[i] = Substack(codecs[i], views[i])
	}
	return Serial(subs)
}
