package ans

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// nearestInt rounds with halves going down, matching the quantization used
// on both sides of every direct cdf/ppf pair. Encode and decode must round
// identically or the partition invariant breaks.
func nearestInt(x float64) uint64 {
	return uint64(math.Ceil(x - 0.5))
}

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

func logit(x float64) float64 {
	return math.Log(x) - math.Log(1-x)
}

func linspace(lb, ub float64, n int) []float64 {
	return floats.Span(make([]float64, n), lb, ub)
}

func softmax(logits []float64) []float64 {
	lse := floats.LogSumExp(logits)
	w := make([]float64, len(logits))
	for i, l := range logits {
		w[i] = math.Exp(l - lse)
	}
	return w
}

// Bernoulli returns a codec for {0, 1} symbols, one per lane, where lane i
// takes value 1 with probability p[i]. Probabilities that quantize to 0 or
// 1 are nudged one step inward so both symbols stay encodable.
func Bernoulli(p []float64, precision uint) Codec[[]uint64] {
	total := uint64(1) << precision
	onemp := make([]uint64, len(p))
	for i, pi := range p {
		v := nearestInt((1 - pi) * float64(total))
		if v == 0 {
			v = 1
		}
		if v == total {
			v = total - 1
		}
		onemp[i] = v
	}
	enc := func(symbols []uint64) ([]uint64, []uint64) {
		starts := make([]uint64, len(symbols))
		freqs := make([]uint64, len(symbols))
		for i, s := range symbols {
			switch s {
			case 0:
				freqs[i] = onemp[i]
			case 1:
				starts[i] = onemp[i]
				freqs[i] = total - onemp[i]
			default:
				panic(fmt.Sprintf("ans: Bernoulli: symbol %d at lane %d", s, i))
			}
		}
		return starts, freqs
	}
	dec := func(cfs []uint64) []uint64 {
		symbols := make([]uint64, len(cfs))
		for i, cf := range cfs {
			if cf >= onemp[i] {
				symbols[i] = 1
			}
		}
		return symbols
	}
	return NonUniform(enc, dec, precision)
}

// Categorical returns a codec for symbols with one explicit probability
// vector per lane. p[i] must sum to 1; quantization error and zero
// probabilities are absorbed by bucket rebalancing.
func Categorical(p [][]float64, precision uint) Codec[[]uint64] {
	return NewStatTable(p, precision).Codec()
}

// logisticProbs discretizes one logistic distribution per lane against nBins
// uniform bins spanning [binLB, binUB], with the outermost bins absorbing
// the distribution tails.
func logisticProbs(means, logScales []float64, nBins int, binLB, binUB float64) [][]float64 {
	edges := linspace(binLB, binUB, nBins+1)
	probs := make([][]float64, len(means))
	for i := range means {
		invStd := math.Exp(-logScales[i])
		row := make([]float64, nBins)
		prev := 0.0
		for j := 1; j <= nBins; j++ {
			c := 1.0
			if j < nBins {
				c = sigmoid(invStd * (edges[j] - means[i]))
			}
			row[j-1] = c - prev
			prev = c
		}
		probs[i] = row
	}
	return probs
}

// LogisticUnifBins returns a codec for logistic distributed data
// discretized over 1<<binPrec uniform bins spanning [binLB, binUB], one
// mean and log scale per lane. With noZeroFreqs the bin masses are
// quantized into a rebalanced table up front; without it the cdf and its
// inverse are evaluated directly on each call, which is cheaper for large
// bin counts but leaves narrow bins at risk of zero frequency. In the
// direct form logScales is clamped below at logScaleMin to bound how
// concentrated the quantized distribution can get.
func LogisticUnifBins(means, logScales []float64, codingPrec, binPrec uint, binLB, binUB float64, noZeroFreqs bool, logScaleMin float64) Codec[[]uint64] {
	nBins := 1 << binPrec
	if noZeroFreqs {
		return NewStatTable(logisticProbs(means, logScales, nBins, binLB, binUB), codingPrec).Codec()
	}

	total := float64(uint64(1) << codingPrec)
	edges := linspace(binLB, binUB, nBins+1)
	scales := make([]float64, len(logScales))
	for i, ls := range logScales {
		scales[i] = math.Exp(math.Max(ls, logScaleMin))
	}
	// Cumulative mass strictly below bin idx. The bottom bin extends to
	// -inf and the top bin to +inf.
	cdfAt := func(lane int, idx uint64) uint64 {
		switch idx {
		case 0:
			return 0
		case uint64(nBins):
			return uint64(total)
		}
		return nearestInt(sigmoid((edges[idx]-means[lane])/scales[lane]) * total)
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
			x := means[i] + scales[i]*logit((float64(cf)+0.5)/total)
			// Count interior edges at or below x.
			symbols[i] = uint64(sort.Search(nBins-1, func(k int) bool { return edges[k+1] > x }))
		}
		return symbols
	}
	return NonUniform(enc, dec, codingPrec)
}

// LogisticMixtureUnifBins returns a codec for data from a per-lane mixture
// of logistic distributions, discretized over 1<<binPrec uniform bins
// spanning [binLB, binUB]. logitProbs holds the mixture weights as logits;
// means, logScales and logitProbs are indexed [lane][component].
func LogisticMixtureUnifBins(means, logScales, logitProbs [][]float64, codingPrec, binPrec uint, binLB, binUB float64) Codec[[]uint64] {
	nBins := 1 << binPrec
	edges := linspace(binLB, binUB, nBins+1)
	probs := make([][]float64, len(means))
	for i := range means {
		w := softmax(logitProbs[i])
		row := make([]float64, nBins)
		for k := range means[i] {
			invStd := math.Exp(-logScales[i][k])
			prev := 0.0
			for j := 1; j <= nBins; j++ {
				c := 1.0
				if j < nBins {
					c = sigmoid(invStd * (edges[j] - means[i][k]))
				}
				row[j-1] += w[k] * (c - prev)
				prev = c
			}
		}
		probs[i] = row
	}
	return NewStatTable(probs, codingPrec).Codec()
}
