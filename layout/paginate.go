package layout

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/everlog/bookpress/geo"
	"github.com/everlog/bookpress/record"
	"github.com/everlog/bookpress/typeset"
)

// FooterSize is the point size of the running footer.
const FooterSize = 9.0

// TextCmd places one line of text at an absolute baseline position.
// Rotated lines run top to bottom (spine text); everything else is
// horizontal.
type TextCmd struct {
	X, Y    float64
	Size    float64
	Bold    bool
	Rotated bool
	Text    string
}

// ImageCmd places an attachment's bytes at an absolute position with
// pre-scaled dimensions. X, Y anchor the lower-left corner.
type ImageCmd struct {
	AttachmentID uuid.UUID
	Data         []byte
	X, Y, W, H   float64
}

// Page is one laid-out page: its box, ordered draw commands and an
// optional footer.
type Page struct {
	Width, Height float64
	Texts         []TextCmd
	Images        []ImageCmd
	Footer        *TextCmd
}

type paginator struct {
	g      geo.Geometry
	opts   record.RenderOptions
	pages  []Page
	cur    *Page
	cursor float64
	left   float64
	// offset shifts content page numbers to document page numbers when a
	// title page will be prepended; margin mirroring follows the document
	// number.
	offset int
}

// Paginate flows blocks onto pages with a greedy vertical fill. The cursor
// starts at the content top of each page; any element that would cross the
// content floor flushes the page first. The result is never empty: with no
// content at all it is exactly the no-content page.
func Paginate(blocks []Block, g geo.Geometry, opts record.RenderOptions) []Page {
	p := &paginator{g: g, opts: opts}
	if g.TitlePage {
		p.offset = 1
	}

	for _, b := range blocks {
		switch blk := b.(type) {
		case Heading:
			p.placeLine(blk.Line, g.HeadingSize, g.HeadingLeading, true)
		case Paragraph:
			for _, line := range blk.Lines {
				p.placeLine(line, g.BodySize, g.BodyLeading, false)
			}
		case Image:
			p.placeImage(blk)
		}
	}
	p.flush()

	if len(p.pages) == 0 {
		return []Page{NoContentPage(g)}
	}
	return p.pages
}

func (p *paginator) ensurePage() {
	if p.cur != nil {
		return
	}
	num := len(p.pages) + 1 + p.offset
	p.left = p.g.LeftMargin(num)
	p.cur = &Page{Width: p.g.Width, Height: p.g.Height}
	p.cursor = p.g.ContentTop()
}

func (p *paginator) placeLine(line string, size, leading float64, bold bool) {
	p.ensurePage()
	if p.cursor-leading < p.g.ContentFloor() {
		p.flush()
		p.ensurePage()
	}
	if line != "" {
		p.cur.Texts = append(p.cur.Texts, TextCmd{
			X:    p.left,
			Y:    p.cursor - size,
			Size: size,
			Bold: bold,
			Text: line,
		})
	}
	p.cursor -= leading
}

func (p *paginator) placeImage(img Image) {
	p.ensurePage()
	if p.cursor-img.Height < p.g.ContentFloor() {
		p.flush()
		p.ensurePage()
	}
	// An image taller than a whole page still lands here; it is placed on
	// the fresh page and may overrun the floor. Single placement, no
	// splitting.
	p.cur.Images = append(p.cur.Images, ImageCmd{
		AttachmentID: img.AttachmentID,
		Data:         img.Data,
		X:            p.left,
		Y:            p.cursor - img.Height,
		W:            img.Width,
		H:            img.Height,
	})
	p.cursor -= img.Height + p.g.BodyLeading
}

// flush closes the current page if it carries content, assigning its
// footer. Pages that stayed empty are discarded.
func (p *paginator) flush() {
	if p.cur == nil {
		return
	}
	if len(p.cur.Texts) == 0 && len(p.cur.Images) == 0 {
		p.cur = nil
		return
	}
	p.cur.Footer = footerCmd(p.g, p.opts, len(p.pages)+1)
	p.pages = append(p.pages, *p.cur)
	p.cur = nil
}

// footerCmd builds the centered running footer for content page n. Print
// profiles show the bare number; the export profile adds the display name.
func footerCmd(g geo.Geometry, opts record.RenderOptions, n int) *TextCmd {
	text := strconv.Itoa(n)
	if !g.BareFooter {
		text = "page " + text
		if name := typeset.Sanitize(opts.DisplayName); name != "" {
			text = name + " - " + text
		}
	}
	return &TextCmd{
		X:    (g.Width - typeset.EstimateWidth(text, FooterSize)) / 2,
		Y:    g.FooterBaseline,
		Size: FooterSize,
		Text: text,
	}
}
