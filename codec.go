// Package ans implements entropy coding with a vectorized asymmetric
// numeral system, together with an algebra for composing codecs.
//
// A codec is a pair of pure functions. Push encodes a symbol onto a
// Message, Pop decodes the most recently pushed symbol back off it.
// Primitive codecs are built from a probability distribution by NonUniform
// and the distribution constructors (Bernoulli, Categorical, the discretized
// logistic and Gaussian families); composite codecs are built from other
// codecs by Repeat, Serial, Substack, Parallel and AutoRegressive. Pushing
// then popping the same symbol on the same message reproduces both exactly,
// bit for bit, provided the encode and decode statistic functions agree.
//
// The coder state is vectorized: a message head holds many independent
// lanes and a primitive codec codes one symbol per lane per call. Lanes
// share nothing but the common tail, which only the coder itself touches,
// so coding n lanes is equivalent to n sequential single-lane coders.
//
// Reference:
// J. Duda, Asymmetric numeral systems: entropy coding combining speed of
// Huffman coding with compression rate of arithmetic coding, arXiv:1311.2540.
// J. Townsend, T. Bird and D. Barber, Practical lossless compression with
// latent variables using bits back coding, ICLR 2019.
package ans

import (
	"fmt"
	"math/bits"

	"github.com/fumin/ans/rans"
)

// A Codec is a pair of pure, mutually inverse coding functions over symbols
// of type S. Distribution parameters are captured when the codec is
// constructed; a Codec itself holds no mutable state.
type Codec[S any] struct {
	Push func(m Message, symbol S) Message
	Pop  func(m Message) (Message, S)
}

// An EncStatFun maps one symbol per lane to the start and width of its
// interval. At precision p the intervals of all reachable symbols must
// partition [0, 1<<p): each has freq > 0 and start+freq <= 1<<p, and every
// cumulative frequency belongs to exactly one symbol.
type EncStatFun func(symbols []uint64) (starts, freqs []uint64)

// A DecStatFun inverts an EncStatFun, mapping one cumulative frequency per
// lane to the symbol whose interval contains it.
type DecStatFun func(cfs []uint64) []uint64

// NonUniform returns the codec defined by a pair of statistic functions at
// the given precision. It is the atomic unit of the algebra: every
// distribution constructor delegates here.
//
// Pop rechecks that the decoded cumulative frequency lies inside the
// interval of the symbol chosen by dec. A violation means enc and dec
// disagree about the partition and panics rather than silently corrupting
// the stream.
func NonUniform(enc EncStatFun, dec DecStatFun, precision uint) Codec[[]uint64] {
	if precision > 31 {
		panic(fmt.Sprintf("ans: precision %d > 31", precision))
	}
	push := func(m Message, symbols []uint64) Message {
		starts, freqs := enc(symbols)
		return Message{Message: rans.Push(m.Message, starts, freqs, fill(len(m.Head), uint64(precision))), Shape: m.Shape}
	}
	pop := func(m Message) (Message, []uint64) {
		cfs, finish := rans.Pop(m.Message, fill(len(m.Head), uint64(precision)))
		symbols := dec(cfs)
		starts, freqs := enc(symbols)
		for i, cf := range cfs {
			if cf < starts[i] || cf >= starts[i]+freqs[i] {
				panic(fmt.Sprintf("ans: inconsistent statfuns at lane %d: symbol %d, cumulative frequency %d outside [%d, %d) at precision %d",
					i, symbols[i], cf, starts[i], starts[i]+freqs[i], precision))
			}
		}
		return Message{Message: finish(starts, freqs), Shape: m.Shape}, symbols
	}
	return Codec[[]uint64]{Push: push, Pop: pop}
}

// Uniform returns a codec for symbols uniformly distributed over
// [0, 1<<precision), one symbol per lane.
func Uniform(precision uint) Codec[[]uint64] {
	enc := func(symbols []uint64) ([]uint64, []uint64) {
		return symbols, fill(len(symbols), 1)
	}
	dec := func(cfs []uint64) []uint64 {
		return cfs
	}
	return NonUniform(enc, dec, precision)
}

// Benford64 returns a self-delimiting codec for integers x with
//
//	1<<31 <= x < 1<<63
//
// whose logarithm is roughly uniformly distributed, the magnitude
// distribution of raw coder state words. The low 31 bits are coded
// uniformly, then the remaining width as a 5-bit length, then the bits
// above the implicit leading one uniformly at that width. It is used to
// move whole head words to and from the tail when resizing a head.
func Benford64() Codec[[]uint64] {
	push := func(m Message, xs []uint64) Message {
		n := len(m.Head)
		if len(xs) != n {
			panic(fmt.Sprintf("ans: Benford64: %d values for %d lanes", len(xs), n))
		}
		lows := make([]uint64, n)
		highs := make([]uint64, n)
		lens := make([]uint64, n)
		for i, x := range xs {
			if x < 1<<31 || x >= 1<<63 {
				panic(fmt.Sprintf("ans: Benford64: value %d at lane %d outside [1<<31, 1<<63)", x, i))
			}
			bl := uint64(bits.Len64(x)) - 1
			lows[i] = x & (1<<31 - 1)
			highs[i] = (x & (1<<bl - 1)) >> 31
			lens[i] = bl - 31
		}
		ones := fill(n, 1)
		rm := rans.Push(m.Message, lows, ones, fill(n, 31))
		rm = rans.Push(rm, highs, ones, lens)
		rm = rans.Push(rm, lens, ones, fill(n, 5))
		return Message{Message: rm, Shape: m.Shape}
	}
	pop := func(m Message) (Message, []uint64) {
		n := len(m.Head)
		ones := fill(n, 1)
		lens, finish := rans.Pop(m.Message, fill(n, 5))
		rm := finish(lens, ones)
		highs, finish := rans.Pop(rm, lens)
		rm = finish(highs, ones)
		lows, finish := rans.Pop(rm, fill(n, 31))
		rm = finish(lows, ones)
		xs := make([]uint64, n)
		for i := range xs {
			xs[i] = 1<<(lens[i]+31) | highs[i]<<31 | lows[i]
		}
		return Message{Message: rm, Shape: m.Shape}, xs
	}
	return Codec[[]uint64]{Push: push, Pop: pop}
}

func fill(n int, v uint64) []uint64 {
	s := make([]uint64, n)
	for i := range s {
		s[i] = v
	}
	return s
}
