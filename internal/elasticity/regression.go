package elasticity

import "math"

// fitResult holds the outcome of a log-log OLS fit.
type fitResult struct {
	Slope       float64 // elasticity coefficient
	Intercept   float64
	RSquared    float64
	SampleSize  int
	LogPriceVar float64 // variance of log(price), conditioning signal
}

// fitLogLog fits log(quantity) = intercept + slope*log(price) by
// ordinary least squares. Pairs with non-positive price or quantity are
// skipped: the log transform is undefined for them.
func fitLogLog(prices, quantities []float64) fitResult {
	n := len(prices)
	if n != len(quantities) {
		return fitResult{}
	}

	var lx, ly []float64
	for i := 0; i < n; i++ {
		if prices[i] <= 0 || quantities[i] <= 0 {
			continue
		}
		lx = append(lx, math.Log(prices[i]))
		ly = append(ly, math.Log(quantities[i]))
	}

	m := len(lx)
	if m < 2 {
		return fitResult{SampleSize: m}
	}

	meanX := mean(lx)
	meanY := mean(ly)

	var sxx, sxy, syy float64
	for i := 0; i < m; i++ {
		dx := lx[i] - meanX
		dy := ly[i] - meanY
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}

	if sxx == 0 {
		// All price points identical: slope is undefined.
		return fitResult{SampleSize: m}
	}

	slope := sxy / sxx
	intercept := meanY - slope*meanX

	rSquared := 0.0
	if syy > 0 {
		rSquared = (sxy * sxy) / (sxx * syy)
	}

	return fitResult{
		Slope:       slope,
		Intercept:   intercept,
		RSquared:    rSquared,
		SampleSize:  m,
		LogPriceVar: sxx / float64(m-1),
	}
}

// mean calculates the arithmetic mean.
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// distinctCount counts distinct values up to a small tolerance, used to
// require genuinely different price points before trusting a fit.
func distinctCount(xs []float64) int {
	const tolerance = 1e-9
	var distinct []float64
outer:
	for _, x := range xs {
		for _, d := range distinct {
			if math.Abs(x-d) <= tolerance {
				continue outer
			}
		}
		distinct = append(distinct, x)
	}
	return len(distinct)
}
