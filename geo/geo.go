package geo

import "github.com/everlog/bookpress/typeset"

// Geometry describes one page profile: page box, margins, type metrics and
// image caps. All values are in PostScript points (1/72 inch).
type Geometry struct {
	Width  float64
	Height float64

	// Margins. Inner is the binding-side margin on recto pages; symmetric
	// profiles set Inner == Outer.
	Top    float64
	Bottom float64
	Inner  float64
	Outer  float64

	BodySize       float64
	BodyLeading    float64
	HeadingSize    float64
	HeadingLeading float64

	// FooterReserve is kept free above the bottom margin for the running
	// footer; FooterBaseline is the footer text baseline measured from the
	// page bottom.
	FooterReserve  float64
	FooterBaseline float64

	MaxImageHeight float64

	TitlePage  bool // prepend a synthesized title page
	HardWrap   bool // force-split long words at the column boundary
	BareFooter bool // footer is the bare page number, no display name
}

// Export is the on-screen rendition profile: US Letter, symmetric margins,
// title page, footer with the owner's display name.
func Export() Geometry {
	return Geometry{
		Width:          612,
		Height:         792,
		Top:            72,
		Bottom:         54,
		Inner:          54,
		Outer:          54,
		BodySize:       11,
		BodyLeading:    16,
		HeadingSize:    12,
		HeadingLeading: 20,
		FooterReserve:  28,
		FooterBaseline: 32,
		MaxImageHeight: 300,
		TitlePage:      true,
	}
}

// Plain is the legacy text-dump profile: export page box, no title page,
// words force-split at the column boundary.
func Plain() Geometry {
	g := Export()
	g.TitlePage = false
	g.HardWrap = true
	return g
}

// PrintMonthly is the 5.5x8.5 inch trim used for monthly books.
func PrintMonthly() Geometry {
	return Geometry{
		Width:          396,
		Height:         612,
		Top:            58,
		Bottom:         58,
		Inner:          63,
		Outer:          45,
		BodySize:       10.5,
		BodyLeading:    15,
		HeadingSize:    11.5,
		HeadingLeading: 18,
		FooterReserve:  26,
		FooterBaseline: 30,
		MaxImageHeight: 260,
		TitlePage:      true,
		BareFooter:     true,
	}
}

// PrintAnnual is the 6x9 inch trim used for annual books.
func PrintAnnual() Geometry {
	g := PrintMonthly()
	g.Width = 432
	g.Height = 648
	return g
}

// UsableWidth is the horizontal space available to content on any page.
// Mirrored margins swap sides per page but their sum is constant.
func (g Geometry) UsableWidth() float64 {
	return g.Width - g.Inner - g.Outer
}

// ColumnBudget is the wrap column count derived from the usable width and
// the approximate glyph width of the body face.
func (g Geometry) ColumnBudget() int {
	return int(g.UsableWidth() / (g.BodySize * typeset.GlyphWidthFactor))
}

// LeftMargin resolves the effective left margin for a 1-based page number.
// Recto pages (odd) bind on the left, so the inner margin sits there; verso
// pages mirror it.
func (g Geometry) LeftMargin(pageNum int) float64 {
	if pageNum%2 == 1 {
		return g.Inner
	}
	return g.Outer
}

// ContentTop is the cursor position at the top of a fresh page.
func (g Geometry) ContentTop() float64 {
	return g.Height - g.Top
}

// ContentFloor is the lowest y a placed element may reach before the page
// must flush.
func (g Geometry) ContentFloor() float64 {
	return g.Bottom + g.FooterReserve
}
