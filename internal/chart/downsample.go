// Package chart holds the pure data-shaping functions behind the live brew
// chart: downsampling, stage segmentation and target-curve interpolation.
// Nothing here touches the clock or any external state; identical input
// always yields identical output.
package chart

import "brewlink/internal/models"

// Downsample returns a representative subsequence of at most max points,
// sampled at a fixed stride. The final input point is always part of the
// output: continuity at the current frontier matters more than a hard cap,
// so when the stride does not land on it the result has max+1 elements.
// Inputs of max points or fewer are returned as-is.
func Downsample(points []models.ChartPoint, max int) []models.ChartPoint {
	if max <= 0 || len(points) <= max {
		return points
	}

	stride := float64(len(points)) / float64(max)
	out := make([]models.ChartPoint, 0, max+1)
	for i := 0; i < max; i++ {
		out = append(out, points[int(float64(i)*stride)])
	}

	last := points[len(points)-1]
	if out[len(out)-1] != last {
		out = append(out, last)
	}
	return out
}
