package ans

import (
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"
)

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// Quantile tables of the standard Gaussian, lazily built per precision.
// Read-mostly: every codec built at the same precision shares one table.
var stdGaussianCache = struct {
	sync.RWMutex
	buckets map[uint][]float64
	centres map[uint][]float64
}{
	buckets: map[uint][]float64{},
	centres: map[uint][]float64{},
}

// StdGaussianBuckets returns the endpoints of 1<<precision buckets
// partitioning the real line, each with mass 1/(1<<precision) under the
// standard Gaussian. The first endpoint is -Inf and the last +Inf.
func StdGaussianBuckets(precision uint) []float64 {
	stdGaussianCache.RLock()
	b, ok := stdGaussianCache.buckets[precision]
	stdGaussianCache.RUnlock()
	if ok {
		return b
	}
	n := 1 << precision
	b = make([]float64, n+1)
	for i := range b {
		b[i] = stdNormal.Quantile(float64(i) / float64(n))
	}
	stdGaussianCache.Lock()
	stdGaussianCache.buckets[precision] = b
	stdGaussianCache.Unlock()
	return b
}

// StdGaussianCentres returns the centres of mass of the buckets of
// StdGaussianBuckets.
func StdGaussianCentres(precision uint) []float64 {
	stdGaussianCache.RLock()
	c, ok := stdGaussianCache.centres[precision]
	stdGaussianCache.RUnlock()
	if ok {
		return c
	}
	n := 1 << precision
	c = make([]float64, n)
	for i := range c {
		c[i] = stdNormal.Quantile((float64(i) + 0.5) / float64(n))
	}
	stdGaussianCache.Lock()
	stdGaussianCache.centres[precision] = c
	stdGaussianCache.Unlock()
	return c
}

// DiagGaussianStdBins returns a codec for data from a diagonal Gaussian
// with one mean and standard deviation per lane, discretized against bins
// of equal mass under the standard Gaussian. No bucket table is stored;
// encode evaluates the Gaussian cdf at the shared quantile endpoints and
// decode inverts it with a binary search, trading memory for computation.
func DiagGaussianStdBins(mean, stdd []float64, codingPrec, binPrec uint) Codec[[]uint64] {
	buckets := StdGaussianBuckets(binPrec)
	total := float64(uint64(1) << codingPrec)
	enc := func(symbols []uint64) ([]uint64, []uint64) {
		starts := make([]uint64, len(symbols))
		freqs := make([]uint64, len(symbols))
		for i, s := range symbols {
			d := distuv.Normal{Mu: mean[i], Sigma: stdd[i]}
			lo := nearestInt(d.CDF(buckets[s]) * total)
			starts[i] = lo
			freqs[i] = nearestInt(d.CDF(buckets[s+1])*total) - lo
		}
		return starts, freqs
	}
	dec := func(cfs []uint64) []uint64 {
		symbols := make([]uint64, len(cfs))
		for i, cf := range cfs {
			d := distuv.Normal{Mu: mean[i], Sigma: stdd[i]}
			x := d.Quantile((float64(cf) + 0.5) / total)
			symbols[i] = uint64(sort.Search(len(buckets), func(k int) bool { return buckets[k] > x }) - 1)
		}
		return symbols
	}
	return NonUniform(enc, dec, codingPrec)
}

// DiagGaussianGaussianBins returns a codec for data from a diagonal
// Gaussian discretized against bins of equal mass under a different
// diagonal Gaussian, given per lane by binMean and binStdd.
func DiagGaussianGaussianBins(mean, stdd, binMean, binStdd []float64, codingPrec, binPrec uint) Codec[[]uint64] {
	total := float64(uint64(1) << codingPrec)
	nBins := float64(uint64(1) << binPrec)
	enc := func(symbols []uint64) ([]uint64, []uint64) {
		starts := make([]uint64, len(symbols))
		freqs := make([]uint64, len(symbols))
		for i, s := range symbols {
			d := distuv.Normal{Mu: mean[i], Sigma: stdd[i]}
			bin := distuv.Normal{Mu: binMean[i], Sigma: binStdd[i]}
			lo := nearestInt(d.CDF(bin.Quantile(float64(s)/nBins)) * total)
			starts[i] = lo
			freqs[i] = nearestInt(d.CDF(bin.Quantile(float64(s+1)/nBins))*total) - lo
		}
		return starts, freqs
	}
	dec := func(cfs []uint64) []uint64 {
		symbols := make([]uint64, len(cfs))
		for i, cf := range cfs {
			d := distuv.Normal{Mu: mean[i], Sigma: stdd[i]}
			bin := distuv.Normal{Mu: binMean[i], Sigma: binStdd[i]}
			xMax := d.Quantile((float64(cf) + 0.5) / total)
			// With little overlap between the two Gaussians the cdf can
			// reach exactly 1; cut off at the last valid bin.
			symbols[i] = uint64(math.Min(nBins-1, bin.CDF(xMax)*nBins))
		}
		return symbols
	}
	return NonUniform(enc, dec, codingPrec)
}

// DiagGaussianUnifBins returns a codec for data from a diagonal Gaussian
// discretized over nBins uniform bins spanning [binMin, binMax], with the
// outermost bins absorbing the tails. With rebalanced the bin masses are
// quantized into a rebalanced table, guaranteeing no zero frequencies at
// the cost of building the table; without it the cdf and its inverse are
// evaluated directly on each call.
func DiagGaussianUnifBins(mean, stdd []float64, binMin, binMax float64, codingPrec uint, nBins int, rebalanced bool) Codec[[]uint64] {
	if rebalanced {
		edges := linspace(binMin, binMax, nBins+1)
		probs := make([][]float64, len(mean))
		for i := range mean {
			d := distuv.Normal{Mu: mean[i], Sigma: stdd[i]}
			row := make([]float64, nBins)
			prev := 0.0
			for j := 1; j <= nBins; j++ {
				c := 1.0
				if j < nBins {
					c = d.CDF(edges[j])
				}
				row[j-1] = c - prev
				prev = c
			}
			probs[i] = row
		}
		return NewStatTable(probs, codingPrec).Codec()
	}

	total := float64(uint64(1) << codingPrec)
	binWidth := (binMax - binMin) / float64(nBins)
	cdfAt := func(lane int, idx uint64) uint64 {
		switch idx {
		case 0:
			return 0
		case uint64(nBins):
			return uint64(total)
		}
		d := distuv.Normal{Mu: mean[lane], Sigma: stdd[lane]}
		return nearestInt(d.CDF(binMin+float64(idx)*binWidth) * total)
	}
	enc := func(symbols []uint64) ([]uint64, []uint64) {
		starts := make([]uint64, len(symbols))
		freqs := make([]uint64, len(symbols))
		for i, s := range symbols {
			lo := cdfAt(i, s)
			starts[i] = lo
			freqs[i] = cdfAt(i, s+1) - lo
		}
		return starts, freqs
	}
	dec := func(cfs []uint64) []uint64 {
		symbols := make([]uint64, len(cfs))
		for i, cf := range cfs {
			d := distuv.Normal{Mu: mean[i], Sigma: stdd[i]}
			xMax := d.Quantile((float64(cf) + 0.5) / total)
			idx := math.Floor((xMax - binMin) / binWidth)
			symbols[i] = uint64(math.Min(float64(nBins-1), math.Max(0, idx)))
		}
		return symbols
	}
	return NonUniform(enc, dec, codingPrec)
}
