package geo

// Cover sheet constants for perfect-bound books. The spine grows linearly
// with the interior page count and never drops below the vendor minimum.
const (
	Bleed        = 9.0   // 0.125 inch on every outer edge
	SpinePerPage = 0.162 // 0.00225 inch of spine per interior page
	MinSpine     = 18.0  // 0.25 inch

	CoverTitleSize  = 28.0
	CoverAttribSize = 12.0
	SpineTextSize   = 13.0
)

// Cover describes the single wraparound sheet for a perfect-bound book:
// back panel, spine band and front panel side by side, plus bleed on all
// four edges. The front panel sits right of the spine.
type Cover struct {
	TrimWidth  float64
	TrimHeight float64
	Spine      float64
}

// CoverFor computes the cover sheet for an interior rendered with g at the
// given authoritative page count.
func CoverFor(g Geometry, pageCount int) Cover {
	spine := float64(pageCount) * SpinePerPage
	if spine < MinSpine {
		spine = MinSpine
	}
	return Cover{TrimWidth: g.Width, TrimHeight: g.Height, Spine: spine}
}

// Width is the full sheet width: both panels, the spine, and bleed on the
// two vertical edges.
func (c Cover) Width() float64 {
	return 2*c.TrimWidth + c.Spine + 2*Bleed
}

// Height is the full sheet height including bleed.
func (c Cover) Height() float64 {
	return c.TrimHeight + 2*Bleed
}

// SpineCenterX is the horizontal center of the spine band.
func (c Cover) SpineCenterX() float64 {
	return Bleed + c.TrimWidth + c.Spine/2
}

// FrontCenterX is the horizontal center of the front panel.
func (c Cover) FrontCenterX() float64 {
	return Bleed + c.TrimWidth + c.Spine + c.TrimWidth/2
}

// CenterY is the vertical center of the trimmed page.
func (c Cover) CenterY() float64 {
	return Bleed + c.TrimHeight/2
}
