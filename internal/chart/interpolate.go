package chart

import (
	"sort"

	"brewlink/internal/models"
)

// CurveKey selects which target value of a curve point to interpolate.
type CurveKey int

const (
	KeyPressure CurveKey = iota
	KeyFlow
)

func (k CurveKey) value(p models.TargetCurvePoint) *float64 {
	if k == KeyFlow {
		return p.TargetFlow
	}
	return p.TargetPressure
}

// Interpolate evaluates a profile's target curve at time t for the given key
// and returns the linearly interpolated value, clamped at both ends. Curves
// may arrive unordered; points where the key is undefined are skipped. When
// no point defines the key the result is nil, meaning "no goal to display",
// not an error. Both the live goal overlay and the synthetic replay go
// through this function so the two always agree.
func Interpolate(curve []models.TargetCurvePoint, t float64, key CurveKey) *float64 {
	type anchor struct {
		t, v float64
	}
	anchors := make([]anchor, 0, len(curve))
	for _, p := range curve {
		if v := key.value(p); v != nil {
			anchors = append(anchors, anchor{t: p.T, v: *v})
		}
	}
	if len(anchors) == 0 {
		return nil
	}
	sort.SliceStable(anchors, func(i, j int) bool { return anchors[i].t < anchors[j].t })

	// Exact hits before anything else: at coincident anchors the later point
	// wins, so scan from the back rather than divide by a zero-width bracket.
	for i := len(anchors) - 1; i >= 0; i-- {
		if anchors[i].t == t {
			v := anchors[i].v
			return &v
		}
	}

	if t < anchors[0].t {
		v := anchors[0].v
		return &v
	}
	if last := anchors[len(anchors)-1]; t > last.t {
		v := last.v
		return &v
	}

	for i := 0; i < len(anchors)-1; i++ {
		lo, hi := anchors[i], anchors[i+1]
		if t <= lo.t || t >= hi.t {
			continue
		}
		v := lo.v + (t-lo.t)/(hi.t-lo.t)*(hi.v-lo.v)
		return &v
	}
	return nil
}

// MaxTime returns the largest time of any curve point carrying a pressure or
// flow target, or 0 for an empty curve. The replay engine uses it as the
// synthetic session's end.
func MaxTime(curve []models.TargetCurvePoint) float64 {
	max := 0.0
	for _, p := range curve {
		if (p.TargetPressure != nil || p.TargetFlow != nil) && p.T > max {
			max = p.T
		}
	}
	return max
}
