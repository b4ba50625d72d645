// Package legend lays out the affected-area list into a multi-column
// panel. Items fill row-major (index i goes to column i % n, row i / n)
// and the column count steps with the item count; the adopted threshold
// table is >60 items = 4 columns, >30 = 3, otherwise 2.
package legend

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/pesisirlab/rob-infografis/internal/boundary"
)

// Panel layout constants, shared by both modes.
const (
	marginX   = 40
	titleY    = 80
	ruleY     = 130
	itemTop   = 160
	rowHeight = 50
	itemInset = 20
)

// Options styles one legend panel.
type Options struct {
	Title      string
	ItemPrefix string
	// TopRule draws a dashed rule across the panel's top edge; used when
	// the panel sits below the map instead of beside it.
	TopRule   bool
	TitleFace font.Face
	ItemFace  font.Face
}

// Columns returns the column count for n items.
func Columns(n int) int {
	switch {
	case n > 60:
		return 4
	case n > 30:
		return 3
	default:
		return 2
	}
}

// Rows returns the row count for n items across Columns(n) columns.
func Rows(n int) int {
	cols := Columns(n)
	return (n + cols - 1) / cols
}

// Compose renders the panel. Every name is drawn; the caller supplies a
// height sized for Rows(len(names))*rowHeight plus the header.
func Compose(names []string, width, height int, opts Options) image.Image {
	titleFace := opts.TitleFace
	if titleFace == nil {
		titleFace = basicfont.Face7x13
	}
	itemFace := opts.ItemFace
	if itemFace == nil {
		itemFace = basicfont.Face7x13
	}

	dc := gg.NewContext(width, height)
	dc.SetRGBA255(0, 40, 112, 255)
	dc.Clear()

	if opts.TopRule {
		dc.SetDash(20, 15)
		dc.SetLineWidth(3)
		dc.SetRGB(1, 1, 1)
		dc.DrawLine(0, 5, float64(width), 5)
		dc.Stroke()
		dc.SetDash()
	}

	dc.SetRGB(1, 1, 1)
	dc.SetFontFace(titleFace)
	dc.DrawStringAnchored(opts.Title, marginX, titleY, 0, 0.5)

	dc.SetLineWidth(3)
	dc.DrawLine(marginX, ruleY, float64(width-marginX), ruleY)
	dc.Stroke()

	cols := Columns(len(names))
	colWidth := float64(width-2*marginX) / float64(cols)

	dc.SetFontFace(itemFace)
	for i, name := range names {
		col := i % cols
		row := i / cols
		x := float64(marginX+itemInset) + float64(col)*colWidth
		y := float64(itemTop) + float64(row)*rowHeight
		item := fmt.Sprintf("%s%s", opts.ItemPrefix, boundary.DisplayName(name))
		dc.DrawStringAnchored(item, x, y, 0, 0.5)
	}

	return dc.Image()
}

// DailyOptions is the side-panel style used by the daily infographic.
func DailyOptions(titleFace, itemFace font.Face) Options {
	return Options{
		Title:      "Wilayah Terdampak Rob:",
		ItemPrefix: "Pesisir Kec. ",
		TitleFace:  titleFace,
		ItemFace:   itemFace,
	}
}

// MonthlyOptions is the bottom-panel style used by the monthly recap.
func MonthlyOptions(titleFace, itemFace font.Face) Options {
	return Options{
		Title:      "Wilayah Terdampak Rob (Warna Merah):",
		ItemPrefix: "Kec. ",
		TopRule:    true,
		TitleFace:  titleFace,
		ItemFace:   itemFace,
	}
}
