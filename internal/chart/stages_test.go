package chart

import (
	"testing"

	"brewlink/internal/models"
)

func pt(t float64, stage string) models.ChartPoint {
	return models.ChartPoint{T: t, Stage: stage}
}

func TestExtractStageRanges(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		points []models.ChartPoint
		want   []models.StageRange
	}{
		{
			name:   "empty",
			points: nil,
			want:   nil,
		},
		{
			name:   "unlabeled_only",
			points: []models.ChartPoint{pt(0, ""), pt(1, "")},
			want:   nil,
		},
		{
			name:   "single_stage",
			points: []models.ChartPoint{pt(0, "preinfusion"), pt(1, "preinfusion"), pt(2.5, "preinfusion")},
			want: []models.StageRange{
				{Label: "preinfusion", StartT: 0, EndT: 2.5, ColorIndex: 0},
			},
		},
		{
			name: "repeated_label_gets_new_color",
			points: []models.ChartPoint{
				pt(0, "A"), pt(1, "A"), pt(2, "B"), pt(3, "B"), pt(4, "A"),
			},
			want: []models.StageRange{
				{Label: "A", StartT: 0, EndT: 1, ColorIndex: 0},
				{Label: "B", StartT: 2, EndT: 3, ColorIndex: 1},
				{Label: "A", StartT: 4, EndT: 4, ColorIndex: 2},
			},
		},
		{
			name: "unlabeled_points_extend_open_range",
			points: []models.ChartPoint{
				pt(0, "soak"), pt(1, ""), pt(2, ""), pt(3, "ramp"),
			},
			want: []models.StageRange{
				{Label: "soak", StartT: 0, EndT: 2, ColorIndex: 0},
				{Label: "ramp", StartT: 3, EndT: 3, ColorIndex: 1},
			},
		},
		{
			name: "leading_unlabeled_points_skipped",
			points: []models.ChartPoint{
				pt(0, ""), pt(1, ""), pt(2, "extraction"),
			},
			want: []models.StageRange{
				{Label: "extraction", StartT: 2, EndT: 2, ColorIndex: 0},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractStageRanges(tc.points)
			if len(got) != len(tc.want) {
				t.Fatalf("got %d ranges %+v, want %d", len(got), got, len(tc.want))
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("range %d: got %+v, want %+v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestExtractStageRanges_ColorWrapsPalette(t *testing.T) {
	t.Parallel()

	var points []models.ChartPoint
	labels := []string{"a", "b"}
	for i := 0; i < PaletteSize+2; i++ {
		points = append(points, pt(float64(i), labels[i%2]))
	}
	got := ExtractStageRanges(points)
	if len(got) != PaletteSize+2 {
		t.Fatalf("got %d ranges, want %d", len(got), PaletteSize+2)
	}
	if got[PaletteSize].ColorIndex != 0 {
		t.Errorf("color index should wrap to 0 after %d transitions, got %d",
			PaletteSize, got[PaletteSize].ColorIndex)
	}
}
