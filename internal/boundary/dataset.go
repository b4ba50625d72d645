package boundary

import (
	"strings"
	"sync"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// ErrSpatialLoad marks a boundary dataset that is missing or unreadable.
var ErrSpatialLoad = eris.New("boundary: spatial dataset unreadable")

// Feature is one named polygon record from the boundary dataset.
// Geometry is nil when the source record carried no usable shape.
type Feature struct {
	Name     string
	Geometry *geom.MultiPolygon
}

// Dataset is a boundary feature collection in source scan order.
// A loaded Dataset is read-only; cached copies are shared across calls.
type Dataset struct {
	Path     string
	Features []Feature
}

// Box is a geographic bounding box in lon/lat degrees.
type Box struct {
	MinLon, MinLat float64
	MaxLon, MaxLat float64
}

// LoadShapefile reads the boundary shapefile and keeps every record whose
// name attribute is non-empty. Records without a usable polygon are kept
// with nil geometry so name resolution still sees them.
func LoadShapefile(path, nameField string) (*Dataset, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(ErrSpatialLoad, "open %s: %v", path, err)
	}
	defer func() { _ = reader.Close() }()

	idx := fieldIndex(reader, nameField)
	if idx < 0 {
		return nil, eris.Wrapf(ErrSpatialLoad, "field %q not found in %s", nameField, path)
	}

	ds := &Dataset{Path: path}
	var unnamed, shapeless int

	for reader.Next() {
		_, shape := reader.Shape()

		name := strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
		if name == "" {
			unnamed++
			continue
		}

		f := Feature{Name: name}
		if mp := toMultiPolygon(shape); mp != nil {
			f.Geometry = mp
		} else {
			shapeless++
		}
		ds.Features = append(ds.Features, f)
	}

	if unnamed > 0 || shapeless > 0 {
		zap.L().Debug("boundary: skipped degenerate records",
			zap.String("path", path),
			zap.Int("unnamed", unnamed),
			zap.Int("shapeless", shapeless),
		)
	}

	if len(ds.Features) == 0 {
		return nil, eris.Wrapf(ErrSpatialLoad, "no named features in %s", path)
	}
	return ds, nil
}

var (
	cacheMu sync.Mutex
	cache   = map[string]*Dataset{}
)

// LoadShapefileCached loads via a process-wide read-only cache keyed by
// path. The dataset is static at runtime, so first load wins; nothing
// derived from per-request input is ever cached here.
func LoadShapefileCached(path, nameField string) (*Dataset, error) {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	if ds, ok := cache[path]; ok {
		return ds, nil
	}
	ds, err := LoadShapefile(path, nameField)
	if err != nil {
		return nil, err
	}
	cache[path] = ds
	return ds, nil
}

// Bounds returns the bounding box over every feature with geometry.
// The second result is false when no feature has geometry.
func (d *Dataset) Bounds() (Box, bool) {
	var b Box
	found := false
	for _, f := range d.Features {
		if f.Geometry == nil {
			continue
		}
		fc := f.Geometry.FlatCoords()
		st := f.Geometry.Stride()
		for i := 0; i+1 < len(fc); i += st {
			lon, lat := fc[i], fc[i+1]
			if !found {
				b = Box{MinLon: lon, MinLat: lat, MaxLon: lon, MaxLat: lat}
				found = true
				continue
			}
			if lon < b.MinLon {
				b.MinLon = lon
			}
			if lon > b.MaxLon {
				b.MaxLon = lon
			}
			if lat < b.MinLat {
				b.MinLat = lat
			}
			if lat > b.MaxLat {
				b.MaxLat = lat
			}
		}
	}
	return b, found
}

// fieldIndex returns the index of a named field in the shapefile, or -1 if not found.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}

// toMultiPolygon converts a shapefile shape to a geom.MultiPolygon.
// Returns nil for unsupported, nil, or degenerate shapes.
func toMultiPolygon(s shp.Shape) *geom.MultiPolygon {
	p, ok := s.(*shp.Polygon)
	if !ok || p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("boundary: skipping malformed ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("boundary: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
