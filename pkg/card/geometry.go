// Package card renders plant care cards onto a fixed 6x4 inch landscape
// canvas and assembles them into printable PDF documents.
//
// Layout is deterministic: positions are computed in points at 72dpi, line
// wrapping uses real glyph widths from the active font, and a reserved
// bottom-center logo region is never drawn over. When content would cross
// into the reserved region, rendering stops cleanly rather than clipping
// or overlapping.
package card

// Canvas geometry in points (72dpi). The card is 6x4 inches landscape.
const (
	Width  = 432.0 // 6in
	Height = 288.0 // 4in
	Margin = 18.0  // 0.25in uniform margin

	// LogoSize is the side of the reserved square at the bottom center.
	LogoSize = 72.0 // 1in

	// logoPadding separates body text from the reserved region.
	logoPadding = 6.0
)

// MaxContentY is the lowest baseline body text may occupy. Coordinates are
// top-down, so larger y is lower on the page; anything past this would
// intrude on the reserved logo region.
const MaxContentY = Height - Margin - LogoSize - logoPadding

// Region is an axis-aligned rectangle in page coordinates (top-down y).
type Region struct {
	X, Y, W, H float64
}

// Intersects reports whether two regions overlap with positive area.
func (r Region) Intersects(o Region) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W &&
		r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// LogoRegion returns the reserved square at the bottom center of the card.
func LogoRegion() Region {
	return Region{
		X: (Width - LogoSize) / 2,
		Y: Height - Margin - LogoSize,
		W: LogoSize,
		H: LogoSize,
	}
}
