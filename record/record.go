// Package record defines the input model of the assembly engine: journal
// records with their resolved attachments, and the per-call options for the
// export and print renditions. Callers fetch, filter and order records;
// the engine renders them as given.
package record

import "github.com/google/uuid"

// Kind distinguishes ordinary entries from combined daily digests.
type Kind string

const (
	KindOrdinary Kind = "ordinary"
	KindDigest   Kind = "digest"
)

// Origin tags where an entry was captured. Free-form; the common sources
// have constants.
type Origin string

const (
	OriginApp   Origin = "app"
	OriginEmail Origin = "email"
	OriginSMS   Origin = "sms"
	OriginWeb   Origin = "web"
)

// Frequency selects the trim-size profile of a printed book.
type Frequency string

const (
	FrequencyMonthly Frequency = "monthly"
	FrequencyAnnual  Frequency = "annual"
)

// ColorMode is a pass-through tag for the print vendor; the engine's
// arithmetic ignores it.
type ColorMode string

const (
	ColorModeColor     ColorMode = "color"
	ColorModeGrayscale ColorMode = "grayscale"
)

// AttachmentRef is one media attachment with its bytes already resolved by
// the caller. Data is nil when the blob could not be fetched.
type AttachmentRef struct {
	ID          uuid.UUID `json:"id"`
	ContentType string    `json:"content_type"`
	Data        []byte    `json:"data,omitempty"`
}

// ExportRecord is one journal entry as handed to the engine. Date and Time
// arrive pre-formatted in the caller's time zone; the engine does no time
// arithmetic.
type ExportRecord struct {
	ID          uuid.UUID       `json:"id"`
	Date        string          `json:"date"`
	Time        string          `json:"time,omitempty"`
	Kind        Kind            `json:"kind"`
	Origin      Origin          `json:"origin,omitempty"`
	RawText     string          `json:"raw_text,omitempty"`
	RefinedText string          `json:"refined_text,omitempty"`
	Attachments []AttachmentRef `json:"attachments,omitempty"`
}

// BodyText returns the text to render: the refined field wins whenever the
// polishing service produced one.
func (r ExportRecord) BodyText() string {
	if r.RefinedText != "" {
		return r.RefinedText
	}
	return r.RawText
}

// RenderOptions carries the per-call knobs of the export rendition.
type RenderOptions struct {
	DisplayName string
	RangeStart  string
	RangeEnd    string
	TimeZone    string

	// Plain selects the legacy text-dump profile: no title page, long
	// words force-split at the column boundary.
	Plain bool

	// FlattenMarkdown treats entry text as Markdown from the polishing
	// service and flattens it before wrapping.
	FlattenMarkdown bool

	// StripHTML treats entry text as markup from email capture and
	// reduces it to plain text before wrapping.
	StripHTML bool
}

// PrintOptions extends RenderOptions for the print rendition.
type PrintOptions struct {
	RenderOptions

	Frequency Frequency
	ColorMode ColorMode
	Title     string
}

// BookTitle is the title used on the title page and cover.
func (p PrintOptions) BookTitle() string {
	if p.Title != "" {
		return p.Title
	}
	if p.DisplayName != "" {
		return p.DisplayName + "'s Journal"
	}
	return "Journal"
}
