package ans

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestBernoulliRoundTrip(t *testing.T) {
	p := []float64{0.5, 0.999999, 0.000001}
	codec := Repeat(Bernoulli(p, 16), 4)
	data := [][]uint64{{0, 1, 0}, {1, 1, 1}, {0, 0, 1}, {1, 0, 0}}
	m := codec.Push(Base(Leaf(3)), data)
	m, decoded := codec.Pop(m)
	if !reflect.DeepEqual(decoded, data) {
		t.Errorf("%v %v", decoded, data)
	}
	if !reflect.DeepEqual(m, Base(Leaf(3))) {
		t.Errorf("%+v", m)
	}
}

// TestBernoulliEntropy codes 10000 fair coin flips and checks that the
// flattened message stays within a small constant of the 10000-bit entropy
// bound.
func TestBernoulliEntropy(t *testing.T) {
	const n = 10000
	codec := Repeat(Bernoulli([]float64{0.5}, 16), n)
	rng := rand.New(rand.NewSource(1))
	data := make([][]uint64, n)
	for i := range data {
		data[i] = []uint64{uint64(rng.Intn(2))}
	}

	m := codec.Push(Base(Leaf(1)), data)
	bits := 32 * len(Flatten(m))
	if bits < n || bits > n+200 {
		t.Errorf("%d bits for %d fair coin flips", bits, n)
	}

	_, decoded := codec.Pop(m)
	if !reflect.DeepEqual(decoded, data) {
		t.Errorf("decoded flips differ")
	}
}

func TestLogisticUnifBins(t *testing.T) {
	means := []float64{-0.2, 0.3}
	logScales := []float64{-1, -2}
	data := [][]uint64{{0, 31}, {16, 15}, {31, 0}, {7, 24}}
	for _, noZeroFreqs := range []bool{true, false} {
		codec := Repeat(LogisticUnifBins(means, logScales, 16, 5, -1, 1, noZeroFreqs, -6), len(data))
		m := codec.Push(Base(Leaf(2)), data)
		_, decoded := codec.Pop(m)
		if !reflect.DeepEqual(decoded, data) {
			t.Errorf("noZeroFreqs=%v: %v %v", noZeroFreqs, decoded, data)
		}
	}
}

func TestLogisticMixtureUnifBins(t *testing.T) {
	means := [][]float64{{-0.5, 0.4}, {0, 0.1}}
	logScales := [][]float64{{-1, -2}, {-1.5, -1}}
	logitProbs := [][]float64{{0.3, -0.3}, {2, -2}}
	codec := Repeat(LogisticMixtureUnifBins(means, logScales, logitProbs, 16, 5, -1, 1), 3)
	data := [][]uint64{{0, 20}, {31, 31}, {11, 5}}
	m := codec.Push(Base(Leaf(2)), data)
	_, decoded := codec.Pop(m)
	if !reflect.DeepEqual(decoded, data) {
		t.Errorf("%v %v", decoded, data)
	}
}
