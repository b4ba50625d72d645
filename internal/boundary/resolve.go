package boundary

import (
	"strings"

	"github.com/rotisserie/eris"
)

// ErrNoMatch marks an affected-area set with no counterpart in the dataset.
var ErrNoMatch = eris.New("boundary: no affected area matched the dataset")

// ErrEmptyMatch marks a matched set whose geometry is entirely unusable.
var ErrEmptyMatch = eris.New("boundary: matched areas have no usable geometry")

// Resolve scans the dataset once and returns the features whose name is in
// areas, plus the canonical legend order: names in first-seen scan order,
// repeats skipped. Caller names absent from the dataset are dropped
// silently; only a total mismatch is an error.
func (d *Dataset) Resolve(areas []string) (matched []Feature, canonical []string, err error) {
	want := make(map[string]bool, len(areas))
	for _, a := range areas {
		want[a] = true
	}

	seen := make(map[string]bool)
	usable := 0
	for _, f := range d.Features {
		if !want[f.Name] {
			continue
		}
		matched = append(matched, f)
		if f.Geometry != nil {
			usable++
		}
		if !seen[f.Name] {
			seen[f.Name] = true
			canonical = append(canonical, f.Name)
		}
	}

	if len(matched) == 0 {
		return nil, nil, eris.Wrapf(ErrNoMatch, "%d area name(s) supplied", len(areas))
	}
	if usable == 0 {
		return nil, nil, eris.Wrapf(ErrEmptyMatch, "%d matched record(s)", len(matched))
	}
	return matched, canonical, nil
}

// Names returns every distinct feature name in dataset scan order.
func (d *Dataset) Names() []string {
	seen := make(map[string]bool, len(d.Features))
	out := make([]string, 0, len(d.Features))
	for _, f := range d.Features {
		if seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		out = append(out, f.Name)
	}
	return out
}

// Centroid is the area-weighted planar centroid of the feature's exterior
// rings, falling back to the bounding-box center for degenerate geometry.
// The second result is false when the feature has no geometry at all.
func (f Feature) Centroid() (lon, lat float64, ok bool) {
	if f.Geometry == nil {
		return 0, 0, false
	}

	var areaSum, lonSum, latSum float64
	for i := 0; i < f.Geometry.NumPolygons(); i++ {
		poly := f.Geometry.Polygon(i)
		if poly.NumLinearRings() == 0 {
			continue
		}
		ring := poly.LinearRing(0)
		fc := ring.FlatCoords()
		st := ring.Stride()
		n := len(fc) / st
		if n < 3 {
			continue
		}

		// Shoelace accumulation over the exterior ring.
		var twiceArea, cx, cy float64
		for j := 0; j < n; j++ {
			k := (j + 1) % n
			x1, y1 := fc[j*st], fc[j*st+1]
			x2, y2 := fc[k*st], fc[k*st+1]
			cross := x1*y2 - x2*y1
			twiceArea += cross
			cx += (x1 + x2) * cross
			cy += (y1 + y2) * cross
		}
		if twiceArea == 0 {
			continue
		}
		area := abs(twiceArea / 2)
		lonSum += cx / (3 * twiceArea) * area
		latSum += cy / (3 * twiceArea) * area
		areaSum += area
	}

	if areaSum == 0 {
		b := geometryBox(f)
		return (b.MinLon + b.MaxLon) / 2, (b.MinLat + b.MaxLat) / 2, true
	}
	return lonSum / areaSum, latSum / areaSum, true
}

func geometryBox(f Feature) Box {
	tmp := Dataset{Features: []Feature{f}}
	b, _ := tmp.Bounds()
	return b
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// DisplayName renders a dataset name for presentation: Indonesian title
// case over the raw attribute value, which upstream datasets commonly
// store in upper case.
func DisplayName(name string) string {
	return titleCaser().String(strings.ToLower(name))
}
