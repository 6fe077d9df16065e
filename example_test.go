package ans_test

import (
	"fmt"

	"github.com/fumin/ans"
)

func Example() {
	// Two lanes, each with its own categorical distribution, coded in
	// lock-step over a sequence of four symbols per lane.
	probs := [][]float64{
		{0.2, 0.5, 0.3},
		{0.7, 0.2, 0.1},
	}
	codec := ans.Repeat(ans.Categorical(probs, 12), 4)

	data := [][]uint64{{0, 1}, {1, 0}, {2, 0}, {1, 2}}
	m := codec.Push(ans.Base(ans.Leaf(2)), data)
	_, decoded := codec.Pop(m)
	fmt.Println(decoded)
	// Output: [[0 1] [1 0] [2 0] [1 2]]
}

func ExampleReshapeHead() {
	// Shrinking the head codes the removed lanes back into the message,
	// so no information is lost.
	m := ans.Base(ans.Leaf(4))
	m = ans.ReshapeHead(m, ans.Leaf(2))
	fmt.Println(m.Shape, len(m.Head))
	// Output: [2] 2
}
