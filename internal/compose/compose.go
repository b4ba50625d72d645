// Package compose assembles the final infographic raster: background
// template, scaled map, period label, and legend panel.
package compose

import (
	"image"
	"image/draw"
	"image/png"
	"os"

	"github.com/fogleman/gg"
	"github.com/rotisserie/eris"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
)

// ErrAssetMissing marks a background template or font that could not be
// loaded.
var ErrAssetMissing = eris.New("compose: required asset missing")

// LoadBackground reads a background template PNG.
func LoadBackground(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(ErrAssetMissing, "background %s: %v", path, err)
	}
	defer func() { _ = f.Close() }()

	img, err := png.Decode(f)
	if err != nil {
		return nil, eris.Wrapf(ErrAssetMissing, "decode background %s: %v", path, err)
	}
	return img, nil
}

// Layout is the mode-specific compositing geometry. Final canvas size is
// fully determined by the background size, the legend size, and these
// constants; nothing depends on rendered content.
type Layout struct {
	// MapWidthFrac scales the map to this fraction of the background width.
	MapWidthFrac float64
	// MapOffsetY is the vertical paste position of the scaled map.
	MapOffsetY int
	// LegendSide appends the legend to the right when true, below when false.
	LegendSide bool
	// LegendSize is the panel width (side) or height (bottom).
	LegendSize int
	// Period-label anchor: LabelInsetX back from the right edge, LabelY down
	// from the top.
	LabelInsetX int
	LabelY      int
	LabelSize   float64
}

// DailyLayout is the side-legend variant.
func DailyLayout(legendWidth int) Layout {
	return Layout{
		MapWidthFrac: 1.0,
		MapOffsetY:   360,
		LegendSide:   true,
		LegendSize:   legendWidth,
		LabelInsetX:  720,
		LabelY:       350,
		LabelSize:    72,
	}
}

// MonthlyLayout is the bottom-legend variant.
func MonthlyLayout(legendHeight int) Layout {
	return Layout{
		MapWidthFrac: 0.92,
		MapOffsetY:   280,
		LegendSide:   false,
		LegendSize:   legendHeight,
		LabelInsetX:  900,
		LabelY:       300,
		LabelSize:    72,
	}
}

// Inputs carries the rasters and text for one composition.
type Inputs struct {
	Background  image.Image
	Map         image.Image
	Legend      image.Image
	PeriodLabel string
	LabelFace   font.Face
}

// Compose scales the map to the layout's fraction of the background
// width, pastes it centered at the fixed offset using the map's alpha as
// mask, draws the optional period label, and appends the legend panel.
func Compose(in Inputs, layout Layout) image.Image {
	bgBounds := in.Background.Bounds()
	bgW, bgH := bgBounds.Dx(), bgBounds.Dy()

	targetW := int(float64(bgW) * layout.MapWidthFrac)
	scaled := scaleToWidth(in.Map, targetW)
	sw, sh := scaled.Bounds().Dx(), scaled.Bounds().Dy()

	totalW, totalH := bgW, bgH
	if layout.LegendSide {
		totalW += layout.LegendSize
	} else {
		totalH += layout.LegendSize
	}

	canvas := image.NewRGBA(image.Rect(0, 0, totalW, totalH))
	draw.Draw(canvas, image.Rect(0, 0, bgW, bgH), in.Background, bgBounds.Min, draw.Src)

	// Alpha-masked paste: transparent map regions reveal the background.
	mapPos := image.Rect((bgW-sw)/2, layout.MapOffsetY, (bgW-sw)/2+sw, layout.MapOffsetY+sh)
	draw.Draw(canvas, mapPos, scaled, image.Point{}, draw.Over)

	if in.Legend != nil {
		lgBounds := in.Legend.Bounds()
		var lgPos image.Rectangle
		if layout.LegendSide {
			lgPos = image.Rect(bgW, 0, bgW+lgBounds.Dx(), lgBounds.Dy())
		} else {
			lgPos = image.Rect(0, bgH, lgBounds.Dx(), bgH+lgBounds.Dy())
		}
		draw.Draw(canvas, lgPos, in.Legend, lgBounds.Min, draw.Src)
	}

	dc := gg.NewContextForRGBA(canvas)

	// Dashed seam between map and side legend.
	if layout.LegendSide {
		dc.SetDash(14, 14)
		dc.SetLineWidth(4)
		dc.SetRGB(1, 1, 1)
		dc.DrawLine(float64(bgW), 0, float64(bgW), float64(bgH))
		dc.Stroke()
		dc.SetDash()
	}

	if in.PeriodLabel != "" && in.LabelFace != nil {
		dc.SetFontFace(in.LabelFace)
		dc.SetRGB(1, 1, 1)
		dc.DrawStringAnchored(in.PeriodLabel, float64(bgW-layout.LabelInsetX), float64(layout.LabelY), 0, 0.5)
	}

	return canvas
}

// scaleToWidth resizes src to the given width preserving aspect ratio,
// using Catmull-Rom resampling.
func scaleToWidth(src image.Image, width int) *image.RGBA {
	sb := src.Bounds()
	if sb.Dx() == 0 || width <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	height := sb.Dy() * width / sb.Dx()
	if height <= 0 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, xdraw.Over, nil)
	return dst
}

// Placeholder is the degraded-mode output: a fixed small canvas with
// explanatory text, returned when the projection capability is absent.
func Placeholder(reason string, face font.Face) image.Image {
	const w, h = 960, 540

	dc := gg.NewContext(w, h)
	dc.SetRGBA255(0, 40, 112, 255)
	dc.Clear()

	if face != nil {
		dc.SetFontFace(face)
	}
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored("Infografis Rekap Bulanan", w/2, 180, 0.5, 0.5)
	dc.DrawStringWrapped(reason, w/2, 300, 0.5, 0.5, w-160, 1.5, gg.AlignCenter)

	return dc.Image()
}

// SavePNG writes the composed image. Persistence is best-effort: callers
// record the returned error as a warning and keep the in-memory image.
func SavePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "compose: create %s", path)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return eris.Wrapf(err, "compose: encode %s", path)
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "compose: close %s", path)
	}
	return nil
}
