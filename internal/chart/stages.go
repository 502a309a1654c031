package chart

import "brewlink/internal/models"

// PaletteSize is the number of distinct stage colors the UI cycles through.
// ColorIndex counts label transitions modulo this, so two occurrences of the
// same label separated by another stage get different colors.
const PaletteSize = 8

// ExtractStageRanges walks the point sequence in append order and returns
// contiguous, non-overlapping labeled time ranges. A point with no stage, or
// with the currently open label, extends the open range's end time; a new
// label closes the open range where it last extended and opens a new one at
// the point's time. The trailing range stays open-ended at the last point
// seen for its label.
func ExtractStageRanges(points []models.ChartPoint) []models.StageRange {
	var ranges []models.StageRange
	transitions := 0

	for _, p := range points {
		if len(ranges) == 0 {
			if p.Stage == "" {
				continue
			}
			ranges = append(ranges, models.StageRange{
				Label:      p.Stage,
				StartT:     p.T,
				EndT:       p.T,
				ColorIndex: transitions % PaletteSize,
			})
			transitions++
			continue
		}

		cur := &ranges[len(ranges)-1]
		if p.Stage == "" || p.Stage == cur.Label {
			cur.EndT = p.T
			continue
		}
		ranges = append(ranges, models.StageRange{
			Label:      p.Stage,
			StartT:     p.T,
			EndT:       p.T,
			ColorIndex: transitions % PaletteSize,
		})
		transitions++
	}
	return ranges
}
