// Package layout turns journal records into content blocks and flows the
// blocks onto pages. It owns all placement arithmetic; the writer package
// only transcribes the draw commands produced here.
package layout

import (
	"strings"

	"github.com/google/uuid"

	"github.com/everlog/bookpress/geo"
	"github.com/everlog/bookpress/imageinfo"
	"github.com/everlog/bookpress/observability"
	"github.com/everlog/bookpress/record"
	"github.com/everlog/bookpress/typeset"
)

// Block is one unit of flowed content: a heading line, a wrapped paragraph,
// or a placed image.
type Block interface {
	block()
}

// Heading is a record header line, set in the bold face.
type Heading struct {
	Line string
}

func (Heading) block() {}

// Paragraph is body text already wrapped to the column budget. A single
// empty line acts as vertical spacing.
type Paragraph struct {
	Lines []string
}

func (Paragraph) block() {}

// Image is an attachment placed at its scaled-down dimensions. Data holds
// the verbatim compressed bytes that will be embedded.
type Image struct {
	AttachmentID uuid.UUID
	Data         []byte
	Width        float64
	Height       float64
}

func (Image) block() {}

// BuildStats counts what the block builder kept and dropped.
type BuildStats struct {
	EmbeddedImages int
	DroppedImages  int
	SkippedRecords int
}

// BuildBlocks converts records into a flat block sequence sized against g.
// Records keep their caller-supplied order. A record with neither usable
// text nor a measurable image contributes nothing, heading included.
// Attachment failures are dropped and counted, never fatal.
func BuildBlocks(records []record.ExportRecord, g geo.Geometry, opts record.RenderOptions, log observability.Logger) ([]Block, BuildStats) {
	var blocks []Block
	var stats BuildStats
	budget := g.ColumnBudget()

	for _, r := range records {
		var body []Block

		text := r.BodyText()
		if opts.StripHTML {
			text = typeset.StripHTML(text)
		}
		if opts.FlattenMarkdown {
			text = typeset.FlattenMarkdown(text)
		}
		text = typeset.Sanitize(text)
		if strings.TrimSpace(text) != "" {
			var lines []string
			if g.HardWrap {
				lines = typeset.WrapHard(text, budget)
			} else {
				lines = typeset.Wrap(text, budget)
			}
			body = append(body, Paragraph{Lines: lines})
		}

		for _, att := range r.Attachments {
			img, ok := placeAttachment(att, g, log, &stats)
			if ok {
				body = append(body, img)
			}
		}

		if len(body) == 0 {
			stats.SkippedRecords++
			log.Debug("record skipped, no renderable content",
				observability.String("record_id", r.ID.String()))
			continue
		}

		blocks = append(blocks, Heading{Line: typeset.Sanitize(headingFor(r))})
		blocks = append(blocks, body...)
		blocks = append(blocks, Paragraph{Lines: []string{""}})
	}

	return blocks, stats
}

// headingFor formats the record header: date, clock time and origin for
// ordinary entries, a digest marker for combined entries.
func headingFor(r record.ExportRecord) string {
	if r.Kind == record.KindDigest {
		return r.Date + " - Daily digest"
	}
	h := r.Date
	if r.Time != "" {
		h += " " + r.Time
	}
	if r.Origin != "" {
		h += " via " + string(r.Origin)
	}
	return h
}

// placeAttachment measures one attachment and computes its placed
// dimensions: fit to the usable width first, then cap to the per-image
// height limit, aspect preserved both times.
func placeAttachment(att record.AttachmentRef, g geo.Geometry, log observability.Logger, stats *BuildStats) (Image, bool) {
	if !imageinfo.IsEmbeddable(att.ContentType) {
		if strings.HasPrefix(strings.ToLower(att.ContentType), "image/") {
			stats.DroppedImages++
			log.Warn("attachment dropped, unsupported image format",
				observability.String("attachment_id", att.ID.String()),
				observability.String("content_type", att.ContentType))
		}
		return Image{}, false
	}
	if len(att.Data) == 0 {
		stats.DroppedImages++
		log.Warn("attachment dropped, bytes not resolved",
			observability.String("attachment_id", att.ID.String()))
		return Image{}, false
	}

	dims, ok := imageinfo.JPEGDimensions(att.Data)
	if !ok {
		stats.DroppedImages++
		log.Warn("attachment dropped, unreadable image header",
			observability.String("attachment_id", att.ID.String()),
			observability.Int("bytes", len(att.Data)))
		return Image{}, false
	}

	w := float64(dims.Width)
	h := float64(dims.Height)
	if usable := g.UsableWidth(); w > usable {
		h = h * usable / w
		w = usable
	}
	if h > g.MaxImageHeight {
		w = w * g.MaxImageHeight / h
		h = g.MaxImageHeight
	}

	stats.EmbeddedImages++
	return Image{AttachmentID: att.ID, Data: att.Data, Width: w, Height: h}, true
}
