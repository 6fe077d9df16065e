package ans

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/fumin/ans/rans"
)

// foldSizes returns the doubling schedule from small up to big:
// small, 2*small, 4*small, ..., big.
func foldSizes(small, big int) []int {
	sizes := []int{small}
	for small != big {
		if 2*small <= big {
			small *= 2
		} else {
			small = big
		}
		sizes = append(sizes, small)
	}
	return sizes
}

// foldCodec codes the diff head words added or removed by one fold step,
// through the first diff lanes of the remaining head.
func foldCodec(diff int) Codec[[]uint64] {
	return Substack(Benford64(), View{Off: 0, Shape: Leaf(diff)})
}

// resizeHead1d resizes a flat head to the given number of lanes, one fold
// step at a time. Shrinking codes the removed words onto the remaining
// lanes; growing decodes new words back out, consuming information from
// the message.
func resizeHead1d(m rans.Message, size int) rans.Message {
	cur := len(m.Head)
	small, big := size, cur
	if small > big {
		small, big = big, small
	}
	sizes := foldSizes(small, big)
	switch {
	case size < cur:
		for i := len(sizes) - 2; i >= 0; i-- {
			keep := sizes[i]
			mm := foldCodec(sizes[i+1]-keep).Push(
				Message{Message: rans.Message{Head: m.Head[:keep], Tail: m.Tail}, Shape: Leaf(keep)},
				m.Head[keep:sizes[i+1]])
			m = mm.Message
		}
	case size > cur:
		for i := 0; i+1 < len(sizes); i++ {
			mm, ex := foldCodec(sizes[i+1] - sizes[i]).Pop(
				Message{Message: m, Shape: Leaf(sizes[i])})
			head := make([]uint64, 0, sizes[i+1])
			head = append(append(head, mm.Head...), ex...)
			m = rans.Message{Head: head, Tail: mm.Tail}
		}
	}
	return m
}

// ReshapeHead changes the shape of the head of m. Growing consumes
// information from the message and panics if the message is too shallow;
// shrinking pushes the removed head words back into it. A reshape followed
// by the inverse reshape restores the message exactly.
func ReshapeHead(m Message, shape Shape) Message {
	return Message{Message: resizeHead1d(m.Message, shape.Size()), Shape: shape}
}

// Flatten canonicalizes the head of m to a single lane and serializes the
// message into a linear buffer suitable for storage. Two implementations
// coding the same symbols with the same statfuns and precisions produce
// identical buffers.
func Flatten(m Message) []uint32 {
	return rans.Flatten(resizeHead1d(m.Message, 1))
}

// Unflatten reconstructs a message with the given head shape from a buffer
// produced by Flatten.
func Unflatten(arr []uint32, shape Shape) (Message, error) {
	rm, err := rans.Unflatten(arr, 1)
	if err != nil {
		return Message{}, errors.Wrap(err, "unflatten")
	}
	return Message{Message: resizeHead1d(rm, shape.Size()), Shape: shape}, nil
}

// RandomStack returns a message of the given head shape built from flatLen
// uniformly random words. Such a message is indistinguishable from a
// genuinely coded stream and seeds bits-back style schemes, where initial
// pops recover "free" bits from the random state.
func RandomStack(flatLen int, shape Shape, rng *rand.Rand) (Message, error) {
	if flatLen < 2 {
		return Message{}, errors.Errorf("flatLen %d < 2, need at least one full head word", flatLen)
	}
	arr := make([]uint32, flatLen)
	for i := range arr {
		arr[i] = rng.Uint32()
	}
	m, err := Unflatten(arr, shape)
	if err != nil {
		return Message{}, errors.Wrap(err, "random stack")
	}
	return m, nil
}
