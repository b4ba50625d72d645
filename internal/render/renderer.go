package render

import (
	"image"

	"github.com/fogleman/gg"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/pesisirlab/rob-infografis/internal/boundary"
)

// Mode selects the infographic variant.
type Mode int

const (
	// Daily is the per-day variant: side legend, point annotations.
	Daily Mode = iota
	// MonthlyRecap aggregates a month: bottom legend, plain fill.
	MonthlyRecap
)

func (m Mode) String() string {
	if m == MonthlyRecap {
		return "monthly_recap"
	}
	return "daily"
}

// Canvas is the raster size of the rendered map.
type Canvas struct {
	Width, Height int
}

// DefaultCanvas returns the mode's map raster size.
func DefaultCanvas(mode Mode) Canvas {
	if mode == MonthlyRecap {
		return Canvas{Width: 3600, Height: 1800}
	}
	return Canvas{Width: 2700, Height: 1800}
}

// Options configures a single map render.
type Options struct {
	Mode      Mode
	Canvas    Canvas
	Projector Projector
	// LabelFace draws the daily annotation bubbles. Nil falls back to the
	// basic bitmap face.
	LabelFace font.Face
}

// Label offsets cycle through four corner directions, indexed by the
// feature's position in the matched set, to keep adjacent labels apart.
// Values are lon/lat degrees.
var labelOffsets = [4][2]float64{
	{1.6, 0.9},
	{-1.6, 0.9},
	{1.6, -0.9},
	{-1.6, -0.9},
}

// Render draws the full collection in a neutral fill, highlights the
// matched features, and (daily only) annotates each matched feature with
// a centroid marker, leader line, and name bubble. The result is a
// transparent RGBA raster; all drawing state is local to the call.
func Render(ds *boundary.Dataset, matched []boundary.Feature, opts Options) (image.Image, error) {
	cv := opts.Canvas
	if cv.Width <= 0 || cv.Height <= 0 {
		cv = DefaultCanvas(opts.Mode)
	}
	if opts.Projector == nil {
		return nil, eris.New("render: projector is required")
	}

	frame := opts.Projector.Frame(ds)
	if frame.MaxLon <= frame.MinLon || frame.MaxLat <= frame.MinLat {
		return nil, eris.Errorf("render: degenerate frame %+v", frame)
	}

	pxPerLon := float64(cv.Width) / (frame.MaxLon - frame.MinLon)
	pxPerLat := float64(cv.Height) / (frame.MaxLat - frame.MinLat)
	project := func(lon, lat float64) (float64, float64) {
		return (lon - frame.MinLon) * pxPerLon, (frame.MaxLat - lat) * pxPerLat
	}

	dc := gg.NewContext(cv.Width, cv.Height)
	dc.SetFillRule(gg.FillRuleEvenOdd)

	// Base layer: every feature, neutral fill, light stroke.
	for _, f := range ds.Features {
		if f.Geometry == nil {
			continue
		}
		tracePolygons(dc, f.Geometry, project)
		if opts.Mode == MonthlyRecap {
			dc.SetHexColor("#E6E6E6")
		} else {
			dc.SetHexColor("#E5E5E5")
		}
		dc.FillPreserve()
		dc.SetRGB(1, 1, 1)
		dc.SetLineWidth(1)
		dc.Stroke()
	}

	// Highlight layer.
	drawn := 0
	for _, f := range matched {
		if f.Geometry == nil {
			continue
		}
		tracePolygons(dc, f.Geometry, project)
		if opts.Mode == MonthlyRecap {
			dc.SetRGBA255(255, 0, 0, 242)
			dc.FillPreserve()
			dc.SetHexColor("#8B0000")
			dc.SetLineWidth(2)
			dc.Stroke()
		} else {
			dc.SetRGBA255(255, 183, 3, 217)
			dc.FillPreserve()
			dc.SetRGB255(198, 40, 40)
			dc.SetLineWidth(4)
			dc.SetDash(14, 9)
			dc.Stroke()
			dc.SetDash()
		}
		drawn++
	}
	if drawn == 0 {
		return nil, eris.Wrap(boundary.ErrEmptyMatch, "render")
	}

	if opts.Mode == Daily {
		annotate(dc, matched, project, pxPerLon, pxPerLat, opts.LabelFace)
	}

	return dc.Image(), nil
}

// annotate draws a centroid marker, a curved leader line, and a rounded
// name bubble for each matched feature.
func annotate(dc *gg.Context, matched []boundary.Feature, project func(float64, float64) (float64, float64), pxPerLon, pxPerLat float64, face font.Face) {
	if face == nil {
		face = basicfont.Face7x13
	}
	dc.SetFontFace(face)

	for i, f := range matched {
		lon, lat, ok := f.Centroid()
		if !ok {
			continue
		}
		off := labelOffsets[i%len(labelOffsets)]
		x, y := project(lon, lat)
		lx, ly := project(lon+off[0], lat+off[1])

		// Leader line stops just short of the bubble center.
		ex := lx - 0.12*pxPerLon*sign(off[0])
		ey := ly + 0.12*pxPerLat*sign(off[1])
		mx, my := (x+ex)/2, (y+ey)/2
		dc.MoveTo(x, y)
		dc.QuadraticTo(mx+0.15*(ey-y), my+0.15*(x-ex), ex, ey)
		dc.SetRGB255(198, 40, 40)
		dc.SetLineWidth(3)
		dc.Stroke()

		// Marker.
		dc.DrawCircle(x, y, 9)
		dc.SetRGB255(198, 40, 40)
		dc.FillPreserve()
		dc.SetRGB(1, 1, 1)
		dc.SetLineWidth(2)
		dc.Stroke()

		// Label bubble.
		label := boundary.DisplayName(f.Name)
		tw, th := dc.MeasureString(label)
		pad := 12.0
		dc.DrawRoundedRectangle(lx-tw/2-pad, ly-th/2-pad, tw+2*pad, th+2*pad, 10)
		dc.SetRGB255(183, 28, 28)
		dc.Fill()
		dc.SetRGB(1, 1, 1)
		dc.DrawStringAnchored(label, lx, ly, 0.5, 0.5)
	}
}

// tracePolygons adds every ring of the multipolygon to the current path.
// Rings become subpaths, so interior rings cut holes under the even-odd
// fill rule.
func tracePolygons(dc *gg.Context, mp *geom.MultiPolygon, project func(float64, float64) (float64, float64)) {
	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)
		for r := 0; r < poly.NumLinearRings(); r++ {
			ring := poly.LinearRing(r)
			fc := ring.FlatCoords()
			st := ring.Stride()
			if len(fc) < 3*st {
				continue
			}
			dc.NewSubPath()
			for j := 0; j+1 < len(fc); j += st {
				x, y := project(fc[j], fc[j+1])
				if j == 0 {
					dc.MoveTo(x, y)
				} else {
					dc.LineTo(x, y)
				}
			}
			dc.ClosePath()
		}
	}
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
