package scenario

import (
	"github.com/paulmach/orb"

	"github.com/elektrokombinacija/gridmapf/internal/core"
)

// Footprint returns the map's extent as a closed orb.Polygon, grid cell
// coordinates used directly as the polygon's plane. It exists so the same
// geometry types used elsewhere for spatial reporting can describe a
// planner's working area too, rather than inventing a bespoke rectangle
// type just for this one caller.
func Footprint(m *core.Map) orb.Polygon {
	w, h := float64(m.Width()), float64(m.Height())
	ring := orb.Ring{
		{0, 0},
		{w, 0},
		{w, h},
		{0, h},
		{0, 0},
	}
	return orb.Polygon{ring}
}

// Bound returns the map's extent as an orb.Bound, for callers that want a
// min/max pair rather than a ring.
func Bound(m *core.Map) orb.Bound {
	return Footprint(m).Bound()
}
