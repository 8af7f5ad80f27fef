package radar

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/brandscope/internal/model"
	"github.com/sells-group/brandscope/internal/rubric"
)

func TestPolygon_ClosedWithOnePointPerAttribute(t *testing.T) {
	agg := model.AggregateResult{PerAttribute: map[string]model.AttributeScore{}}

	points := Polygon(agg, 400)
	require.Len(t, points, rubric.AttributeCount()+1)
	assert.Equal(t, points[0], points[len(points)-1])
}

func TestPolygon_FirstAxisPointsUp(t *testing.T) {
	first := rubric.Attributes()[0]
	agg := model.AggregateResult{
		PerAttribute: map[string]model.AttributeScore{
			first.ID: {Weighted: 100},
		},
	}

	points := Polygon(agg, 400)

	// Full score on the first axis lands at the top edge of the chart.
	assert.InDelta(t, 200, points[0].X, 1e-9)
	assert.InDelta(t, 0, points[0].Y, 1e-9)
}

func TestPolygon_ZeroScoresCollapseToCenter(t *testing.T) {
	agg := model.AggregateResult{PerAttribute: map[string]model.AttributeScore{}}

	for _, p := range Polygon(agg, 400) {
		assert.InDelta(t, 200, p.X, 1e-9)
		assert.InDelta(t, 200, p.Y, 1e-9)
	}
}

func TestPolygon_ClampsWeightedForDisplay(t *testing.T) {
	// Weighted values can exceed 100 (weights are unclamped); the chart
	// pins them to the outer ring.
	first := rubric.Attributes()[0]
	agg := model.AggregateResult{
		PerAttribute: map[string]model.AttributeScore{
			first.ID: {Weighted: 115},
		},
	}

	points := Polygon(agg, 400)
	assert.InDelta(t, 0, points[0].Y, 1e-9)

	agg.PerAttribute[first.ID] = model.AttributeScore{Weighted: -5}
	points = Polygon(agg, 400)
	assert.InDelta(t, 200, points[0].Y, 1e-9)
}

func TestPolygon_PointsStayInFrame(t *testing.T) {
	per := map[string]model.AttributeScore{}
	for _, attr := range rubric.Attributes() {
		per[attr.ID] = model.AttributeScore{Weighted: 100}
	}
	agg := model.AggregateResult{PerAttribute: per}

	for _, p := range Polygon(agg, 400) {
		assert.GreaterOrEqual(t, p.X, -1e-9)
		assert.LessOrEqual(t, p.X, 400+1e-9)
		assert.GreaterOrEqual(t, p.Y, -1e-9)
		assert.LessOrEqual(t, p.Y, 400+1e-9)
	}
}

func TestAxes_MatchAttributeOrderAndRadius(t *testing.T) {
	axes := Axes(400)
	attrs := rubric.Attributes()
	require.Len(t, axes, len(attrs))

	for i, ax := range axes {
		assert.Equal(t, attrs[i].ID, ax.AttributeID)
		assert.Equal(t, attrs[i].Name, ax.Label)

		dx := ax.End.X - 200
		dy := ax.End.Y - 200
		assert.InDelta(t, 200, math.Hypot(dx, dy), 1e-9)
	}
}

func TestAxes_SecondAxisClockwise(t *testing.T) {
	axes := Axes(400)
	require.Greater(t, len(axes), 1)

	// Clockwise from up in a y-down space means the second axis leans
	// right of center.
	assert.Greater(t, axes[1].End.X, 200.0)
}

func TestGridRing(t *testing.T) {
	ring := GridRing(50, 400)
	require.Len(t, ring, rubric.AttributeCount()+1)
	assert.Equal(t, ring[0], ring[len(ring)-1])

	for _, p := range ring[:len(ring)-1] {
		dx := p.X - 200
		dy := p.Y - 200
		assert.InDelta(t, 100, math.Hypot(dx, dy), 1e-9)
	}
}

func TestContinuumMarker(t *testing.T) {
	tests := []struct {
		name    string
		overall int
		width   float64
		want    float64
	}{
		{"zero", 0, 600, 0},
		{"mid", 50, 600, 300},
		{"full", 100, 600, 600},
		{"overweight pins right", 120, 600, 600},
		{"negative pins left", -10, 600, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ContinuumMarker(tt.overall, tt.width), 1e-9)
		})
	}
}
