package stats

import "math"

// Regress fits an ordinary least-squares line through the sampled market
// values, using elapsed seconds since the first sample as the independent
// variable. It returns the slope in value units per second and R² as the
// fit strength.
//
// When the clock resolution collapses every elapsed time to the same value,
// the most recent sample is perturbed forward by one second so the variance
// never degenerates to zero. The resulting slope is an approximation, but a
// stable one, and downstream rules depend on this exact behavior.
func Regress(elapsed []float64, values []float64) (slope, r2 float64) {
	n := len(elapsed)
	if n < 2 || len(values) != n {
		return 0, 0
	}

	x := elapsed
	allEqual := true
	for i := 1; i < n; i++ {
		if x[i] != x[0] {
			allEqual = false
			break
		}
	}
	if allEqual {
		x = append([]float64(nil), elapsed...)
		x[n-1] = x[n-2] + 1
	}

	var sumX, sumY float64
	for i := 0; i < n; i++ {
		sumX += x[i]
		sumY += values[i]
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var ssX, ssY, ssXY float64
	for i := 0; i < n; i++ {
		dx := x[i] - meanX
		dy := values[i] - meanY
		ssX += dx * dx
		ssY += dy * dy
		ssXY += dx * dy
	}

	if ssX == 0 {
		return 0, 0
	}
	slope = ssXY / ssX

	if ssY == 0 {
		return slope, 0
	}
	r := ssXY / math.Sqrt(ssX*ssY)
	return slope, r * r
}
