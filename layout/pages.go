package layout

import (
	"github.com/everlog/bookpress/geo"
	"github.com/everlog/bookpress/typeset"
)

// Title page type sizes.
const (
	titleSize    = 24.0
	subtitleSize = 13.0
	attribSize   = 12.0
)

// TitlePage synthesizes the leading page: centered lines at fixed offsets
// from the page center, no footer. Empty lines are skipped. Inputs are
// sanitized here; callers pass them raw.
func TitlePage(g geo.Geometry, title, subtitle, attribution string) Page {
	p := Page{Width: g.Width, Height: g.Height}
	center := g.Height / 2

	place := func(text string, size, y float64, bold bool) {
		text = typeset.Sanitize(text)
		if text == "" {
			return
		}
		p.Texts = append(p.Texts, TextCmd{
			X:    (g.Width - typeset.EstimateWidth(text, size)) / 2,
			Y:    y,
			Size: size,
			Bold: bold,
			Text: text,
		})
	}

	place(title, titleSize, center+60, true)
	place(subtitle, subtitleSize, center+20, false)
	place(attribution, attribSize, center-10, false)
	return p
}

// NoContentPage is the single page emitted when nothing qualified for
// rendering. The document is never zero-page.
func NoContentPage(g geo.Geometry) Page {
	text := "No entries found for this period."
	return Page{
		Width:  g.Width,
		Height: g.Height,
		Texts: []TextCmd{{
			X:    (g.Width - typeset.EstimateWidth(text, subtitleSize)) / 2,
			Y:    g.Height / 2,
			Size: subtitleSize,
			Text: text,
		}},
	}
}

// CoverPage lays out the wraparound cover sheet: title and attribution
// centered on the front panel, spine text rotated onto the spine band. The
// front panel sits right of the spine, so the sheet wraps correctly around
// the bound book.
func CoverPage(c geo.Cover, title, attribution, spineText string) Page {
	p := Page{Width: c.Width(), Height: c.Height()}

	title = typeset.Sanitize(title)
	if title != "" {
		p.Texts = append(p.Texts, TextCmd{
			X:    c.FrontCenterX() - typeset.EstimateWidth(title, geo.CoverTitleSize)/2,
			Y:    c.CenterY() + 40,
			Size: geo.CoverTitleSize,
			Bold: true,
			Text: title,
		})
	}

	attribution = typeset.Sanitize(attribution)
	if attribution != "" {
		p.Texts = append(p.Texts, TextCmd{
			X:    c.FrontCenterX() - typeset.EstimateWidth(attribution, geo.CoverAttribSize)/2,
			Y:    c.CenterY() - 10,
			Size: geo.CoverAttribSize,
			Text: attribution,
		})
	}

	spineText = typeset.Sanitize(spineText)
	if spineText != "" {
		// Rotated 90 degrees clockwise: the line reads top to bottom when
		// the book stands upright. X centers the glyph band on the spine,
		// Y starts the line so its length straddles the vertical center.
		p.Texts = append(p.Texts, TextCmd{
			X:       c.SpineCenterX() - geo.SpineTextSize*0.35,
			Y:       c.CenterY() + typeset.EstimateWidth(spineText, geo.SpineTextSize)/2,
			Size:    geo.SpineTextSize,
			Bold:    true,
			Rotated: true,
			Text:    spineText,
		})
	}

	return p
}
