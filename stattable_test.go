package ans

import (
	"reflect"
	"testing"
)

func TestStatTablePartition(t *testing.T) {
	tests := []struct {
		probs     []float64
		precision uint
	}{
		{[]float64{0.2, 0.5, 0.3}, 12},
		{[]float64{0.999999, 0.000001}, 8},
		{[]float64{1e-9, 1e-9, 1 - 2e-9}, 16},
		{[]float64{0.25, 0.25, 0.25, 0.25}, 4},
		{[]float64{0.999, 0.0005, 0.0003, 0.0002}, 10},
	}
	for _, test := range tests {
		table := NewStatTable([][]float64{test.probs}, test.precision)
		row := table.Buckets(0)
		if len(row) != len(test.probs)+1 {
			t.Fatalf("%v", row)
		}
		if row[0] != 0 {
			t.Errorf("%v", row)
		}
		if row[len(row)-1] != 1<<test.precision {
			t.Errorf("%v %d", row, test.precision)
		}
		for j := 1; j < len(row); j++ {
			if row[j] <= row[j-1] {
				t.Errorf("bucket %d has zero width: %v", j-1, row)
			}
		}
	}
}

// TestStatTableMass checks that rebalancing zero-width buckets preserves the
// total mass exactly.
func TestStatTableMass(t *testing.T) {
	const precision = 8
	probs := []float64{0.999999, 0.000001}
	row := NewStatTable([][]float64{probs}, precision).Buckets(0)
	var sum uint64
	for j := 1; j < len(row); j++ {
		sum += row[j] - row[j-1]
	}
	if sum != 1<<precision {
		t.Errorf("%d", sum)
	}
}

func TestStatTableCannotRebalance(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic")
		}
	}()
	probs := make([]float64, 300)
	for i := range probs {
		probs[i] = 1.0 / 300
	}
	NewStatTable([][]float64{probs}, 8)
}

func TestCategoricalSkewed(t *testing.T) {
	codec := Categorical([][]float64{{0.999999, 0.000001}}, 8)
	for _, symbol := range []uint64{0, 1} {
		m := codec.Push(Base(Leaf(1)), []uint64{symbol})
		m, decoded := codec.Pop(m)
		if !reflect.DeepEqual(decoded, []uint64{symbol}) {
			t.Errorf("%v %d", decoded, symbol)
		}
		if !reflect.DeepEqual(m, Base(Leaf(1))) {
			t.Errorf("%+v", m)
		}
	}
}

func TestCategoricalRoundTrip(t *testing.T) {
	probs := [][]float64{
		{0.1, 0.2, 0.3, 0.4},
		{0.7, 0.1, 0.1, 0.1},
	}
	codec := Repeat(Categorical(probs, 12), 6)
	data := [][]uint64{{0, 0}, {3, 1}, {2, 3}, {1, 2}, {3, 3}, {0, 1}}
	m := codec.Push(Base(Leaf(2)), data)
	_, decoded := codec.Pop(m)
	if !reflect.DeepEqual(decoded, data) {
		t.Errorf("%v %v", decoded, data)
	}
}
