// Package radar maps an aggregate result onto radar-chart geometry and the
// maturity-continuum axis. Pure math, no I/O: callers own all rendering.
package radar

import (
	"math"

	"github.com/sells-group/brandscope/internal/model"
	"github.com/sells-group/brandscope/internal/rubric"
)

// Point is a 2D coordinate in a y-down screen space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Axis is one radar spoke: the attribute it represents and its outer
// endpoint (score 100).
type Axis struct {
	AttributeID string `json:"attribute_id"`
	Label       string `json:"label"`
	End         Point  `json:"end"`
}

// Polygon returns the closed score polygon for agg on n equally spaced
// axes (n = attribute count), first axis pointing up (-90 deg) and
// proceeding clockwise. size is the chart diameter; score 100 reaches the
// configured radius. Weighted scores are clamped to [0,100] for display.
// The first point is repeated at the end to close the shape.
func Polygon(agg model.AggregateResult, size float64) []Point {
	attrs := rubric.Attributes()
	center, radius := frame(size)

	points := make([]Point, 0, len(attrs)+1)
	for i, attr := range attrs {
		score := 0.0
		if as, ok := agg.PerAttribute[attr.ID]; ok {
			score = clamp(as.Weighted, 0, 100)
		}
		points = append(points, pointAt(center, radius*score/100, angleFor(i, len(attrs))))
	}
	if len(points) > 0 {
		points = append(points, points[0])
	}
	return points
}

// Axes returns the spoke endpoints with attribute labels, in the same
// order and orientation as Polygon.
func Axes(size float64) []Axis {
	attrs := rubric.Attributes()
	center, radius := frame(size)

	out := make([]Axis, len(attrs))
	for i, attr := range attrs {
		out[i] = Axis{
			AttributeID: attr.ID,
			Label:       attr.Name,
			End:         pointAt(center, radius, angleFor(i, len(attrs))),
		}
	}
	return out
}

// GridRing returns the closed ring polygon at a given score level
// (0-100), for background grid lines.
func GridRing(level, size float64) []Point {
	attrs := rubric.Attributes()
	center, radius := frame(size)
	level = clamp(level, 0, 100)

	points := make([]Point, 0, len(attrs)+1)
	for i := range attrs {
		points = append(points, pointAt(center, radius*level/100, angleFor(i, len(attrs))))
	}
	if len(points) > 0 {
		points = append(points, points[0])
	}
	return points
}

// ContinuumMarker returns the marker x position for the overall score on a
// horizontal 0-100 scale of the given width. Out-of-range scores pin to
// the scale ends.
func ContinuumMarker(overall int, width float64) float64 {
	return clamp(float64(overall), 0, 100) / 100 * width
}

func frame(size float64) (Point, float64) {
	return Point{X: size / 2, Y: size / 2}, size / 2
}

// angleFor returns the axis angle in radians: -90 deg for the first axis,
// then clockwise in equal steps.
func angleFor(i, n int) float64 {
	return -math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
}

func pointAt(center Point, r, angle float64) Point {
	return Point{
		X: center.X + r*math.Cos(angle),
		Y: center.Y + r*math.Sin(angle),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
