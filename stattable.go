package ans

import (
	"fmt"
	"math"
	"sort"
)

// A StatTable holds cumulative frequency buckets for a finite alphabet at a
// fixed precision, one row per lane. Row i is a non-decreasing array of
// length alphabetSize+1 starting at 0 and ending at 1<<precision, with
// every adjacent gap at least 1, so that every symbol of every lane is
// encodable. Tables are built once and never modified.
type StatTable struct {
	buckets   [][]uint64
	precision uint
}

// NewStatTable quantizes one probability vector per lane into cumulative
// buckets at the given precision. Probabilities that round to zero are
// forced to width 1 and the excess is deducted from the widest bucket, so
// the bucket widths still sum to exactly 1<<precision. It panics when the
// widest bucket cannot absorb the excess, which means the precision is too
// low for the alphabet.
func NewStatTable(probs [][]float64, precision uint) StatTable {
	if precision > 31 {
		panic(fmt.Sprintf("ans: precision %d > 31", precision))
	}
	total := int64(1) << precision
	buckets := make([][]uint64, len(probs))
	for lane, p := range probs {
		freqs := make([]int64, len(p))
		sum := int64(0)
		maxIdx := 0
		for j, pj := range p {
			f := int64(math.RoundToEven(pj * float64(total)))
			if f == 0 {
				f = 1
			}
			freqs[j] = f
			sum += f
			if f > freqs[maxIdx] {
				maxIdx = j
			}
		}
		diff := total - sum
		if freqs[maxIdx]+diff <= 0 {
			panic(fmt.Sprintf("ans: cannot rebalance buckets at lane %d, consider increasing precision %d", lane, precision))
		}
		freqs[maxIdx] += diff
		row := make([]uint64, len(p)+1)
		for j, f := range freqs {
			row[j+1] = row[j] + uint64(f)
		}
		buckets[lane] = row
	}
	return StatTable{buckets: buckets, precision: precision}
}

// EncStatFun returns the encode statistic function of t: symbol s of lane i
// maps to the interval (row[s], row[s+1]-row[s]).
func (t StatTable) EncStatFun() EncStatFun {
	return func(symbols []uint64) ([]uint64, []uint64) {
		if len(symbols) != len(t.buckets) {
			panic(fmt.Sprintf("ans: StatTable: %d symbols for %d lanes", len(symbols), len(t.buckets)))
		}
		starts := make([]uint64, len(symbols))
		freqs := make([]uint64, len(symbols))
		for i, s := range symbols {
			row := t.buckets[i]
			if s >= uint64(len(row)-1) {
				panic(fmt.Sprintf("ans: StatTable: symbol %d at lane %d outside alphabet of size %d", s, i, len(row)-1))
			}
			starts[i] = row[s]
			freqs[i] = row[s+1] - row[s]
		}
		return starts, freqs
	}
}

// DecStatFun returns the decode statistic function of t, a per-lane binary
// search for the bucket containing a cumulative frequency.
func (t StatTable) DecStatFun() DecStatFun {
	return func(cfs []uint64) []uint64 {
		symbols := make([]uint64, len(cfs))
		for i, cf := range cfs {
			row := t.buckets[i]
			symbols[i] = uint64(sort.Search(len(row), func(k int) bool { return row[k] > cf }) - 1)
		}
		return symbols
	}
}

// Codec returns the codec defined by t.
func (t StatTable) Codec() Codec[[]uint64] {
	return NonUniform(t.EncStatFun(), t.DecStatFun(), t.precision)
}

// Buckets returns the cumulative bucket row of the given lane.
func (t StatTable) Buckets(lane int) []uint64 {
	return t.buckets[lane]
}

// Lanes returns the number of lanes t codes.
func (t StatTable) Lanes() int {
	return len(t.buckets)
}
