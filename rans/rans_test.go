package rans

import (
	"math/rand"
	"reflect"
	"testing"
)

// cum is a cumulative frequency table over a 3-symbol alphabet at
// precision 8, shared by every lane in the tests below.
var cum = []uint64{0, 60, 160, 256}

func intervals(symbols []uint64) ([]uint64, []uint64) {
	starts := make([]uint64, len(symbols))
	freqs := make([]uint64, len(symbols))
	for i, s := range symbols {
		starts[i] = cum[s]
		freqs[i] = cum[s+1] - cum[s]
	}
	return starts, freqs
}

func lookup(cf uint64) uint64 {
	var s uint64
	for cum[s+1] <= cf {
		s++
	}
	return s
}

func TestPushPop(t *testing.T) {
	const lanes = 3
	const steps = 1000
	precs := []uint64{8, 8, 8}

	rng := rand.New(rand.NewSource(42))
	symbols := make([][]uint64, steps)
	for i := range symbols {
		row := make([]uint64, lanes)
		for j := range row {
			row[j] = uint64(rng.Intn(3))
		}
		symbols[i] = row
	}

	m := Base(lanes)
	for _, row := range symbols {
		starts, freqs := intervals(row)
		m = Push(m, starts, freqs, precs)
	}
	for i := steps - 1; i >= 0; i-- {
		cfs, finish := Pop(m, precs)
		row := make([]uint64, lanes)
		for j, cf := range cfs {
			row[j] = lookup(cf)
		}
		if !reflect.DeepEqual(row, symbols[i]) {
			t.Fatalf("step %d: %v %v", i, row, symbols[i])
		}
		starts, freqs := intervals(row)
		m = finish(starts, freqs)
	}

	// Popping everything that was pushed restores the base state exactly.
	if !reflect.DeepEqual(m, Base(lanes)) {
		t.Errorf("%+v", m)
	}
}

func TestFlattenUnflatten(t *testing.T) {
	const lanes = 4
	precs := []uint64{8, 8, 8, 8}

	rng := rand.New(rand.NewSource(0))
	symbols := make([][]uint64, 300)
	for i := range symbols {
		row := make([]uint64, lanes)
		for j := range row {
			row[j] = uint64(rng.Intn(3))
		}
		symbols[i] = row
	}
	m := Base(lanes)
	for _, row := range symbols {
		starts, freqs := intervals(row)
		m = Push(m, starts, freqs, precs)
	}

	buf := Flatten(m)
	m2, err := Unflatten(buf, lanes)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if !reflect.DeepEqual(Flatten(m2), buf) {
		t.Fatalf("flatten not idempotent")
	}

	for i := len(symbols) - 1; i >= 0; i-- {
		cfs, finish := Pop(m2, precs)
		row := make([]uint64, lanes)
		for j, cf := range cfs {
			row[j] = lookup(cf)
		}
		if !reflect.DeepEqual(row, symbols[i]) {
			t.Fatalf("step %d: %v %v", i, row, symbols[i])
		}
		starts, freqs := intervals(row)
		m2 = finish(starts, freqs)
	}
}

func TestUnflattenShort(t *testing.T) {
	if _, err := Unflatten([]uint32{7}, 1); err == nil {
		t.Errorf("expected error")
	}
}

func TestPopExhaustsTail(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic")
		}
	}()
	m := Base(1)
	for i := 0; i < 10; i++ {
		cfs, finish := Pop(m, []uint64{8})
		m = finish(cfs, []uint64{1})
	}
}
