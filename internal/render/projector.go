package render

import (
	"github.com/pesisirlab/rob-infografis/internal/boundary"
)

// Projector is the map-projection capability provider. The deployment
// target decides at startup which implementation the service gets; no
// stage checks the environment on its own.
type Projector interface {
	// Available reports whether real projection support exists. When it
	// does not, monthly recaps must not render and receive a placeholder
	// instead; daily renders degrade to a dataset-derived frame.
	Available() bool
	// Frame returns the visible lon/lat window for a render of ds.
	Frame(ds *boundary.Dataset) boundary.Box
}

// FullProjector projects onto a fixed national extent. Every matched
// feature of an archipelago-wide dataset stays inside this frame.
type FullProjector struct {
	Extent boundary.Box
}

// Available implements Projector.
func (p FullProjector) Available() bool { return true }

// Frame implements Projector.
func (p FullProjector) Frame(*boundary.Dataset) boundary.Box { return p.Extent }

// NullProjector reports projection support as unavailable. Daily renders
// fall back to the dataset bounds padded by Pad degrees on each side.
type NullProjector struct {
	Pad float64
}

// Available implements Projector.
func (p NullProjector) Available() bool { return false }

// Frame implements Projector.
func (p NullProjector) Frame(ds *boundary.Dataset) boundary.Box {
	b, ok := ds.Bounds()
	if !ok {
		// Degenerate dataset; any non-empty frame keeps the math finite.
		return boundary.Box{MinLon: 0, MinLat: -1, MaxLon: 1, MaxLat: 0}
	}
	pad := p.Pad
	if pad <= 0 {
		pad = 0.5
	}
	b.MinLon -= pad
	b.MaxLon += pad
	b.MinLat -= pad
	b.MaxLat += pad
	return b
}
