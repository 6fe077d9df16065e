package ans

import (
	"fmt"
)

// A ParamFn computes the distribution parameters of element idx from the
// data decoded so far. During decoding, only elements visited before idx
// are present in data; the rest are nil, and the function must not inspect
// them. It returns params with the entry for idx filled in.
type ParamFn func(data [][]uint64, params [][]float64, idx int) [][]float64

// An ElemCodecFn builds the codec for element idx given its parameters.
type ElemCodecFn func(params []float64, idx int) Codec[[]uint64]

// AutoRegressive returns a codec for data whose elements follow
// distributions computed autoregressively: the codec for an element is only
// known once all elements before it in elemIdxs have been decoded. Encoding
// is unaffected, since the data is fully known up front and elements are
// simply pushed in reverse visitation order. Decoding must walk elemIdxs
// strictly in order, re-invoking paramFn after each element, and is
// therefore sequential in the number of elements. That asymmetry is a
// property of causal models, not of the coder.
//
// data holds n elements, each a lane vector coded in one call to its
// element codec; elemIdxs is a visitation order over [0, n).
func AutoRegressive(paramFn ParamFn, n int, elemIdxs []int, elemCodec ElemCodecFn) Codec[[][]uint64] {
	push := func(m Message, data [][]uint64) Message {
		if len(data) != n {
			panic(fmt.Sprintf("ans: AutoRegressive: got %d elements, want %d", len(data), n))
		}
		params := make([][]float64, n)
		for _, idx := range elemIdxs {
			params = paramFn(data, params, idx)
		}
		for i := len(elemIdxs) - 1; i >= 0; i-- {
			idx := elemIdxs[i]
			m = elemCodec(params[idx], idx).Push(m, data[idx])
		}
		return m
	}
	pop := func(m Message) (Message, [][]uint64) {
		data := make([][]uint64, n)
		params := make([][]float64, n)
		for _, idx := range elemIdxs {
			params = paramFn(data, params, idx)
			m, data[idx] = elemCodec(params[idx], idx).Pop(m)
		}
		return m, data
	}
	return Codec[[][]uint64]{Push: push, Pop: pop}
}
