// Package export is the facade of the assembly pipeline: records in,
// finished document bytes out. Export produces the screen rendition,
// PrintInterior and PrintCover the pair a print vendor consumes.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/everlog/bookpress/geo"
	"github.com/everlog/bookpress/layout"
	"github.com/everlog/bookpress/observability"
	"github.com/everlog/bookpress/record"
	"github.com/everlog/bookpress/writer"
)

// Engine assembles journal documents. It is stateless between calls and
// safe for concurrent use; each call runs its own pipeline.
type Engine struct {
	log    observability.Logger
	tracer observability.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger routes the engine's structured logs to l.
func WithLogger(l observability.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithTracer wraps each document build in a span from t.
func WithTracer(t observability.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// New returns an Engine with no-op observability unless overridden.
func New(opts ...Option) *Engine {
	e := &Engine{
		log:    observability.NopLogger{},
		tracer: observability.NopTracer(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is one finished document.
type Result struct {
	PDF []byte

	// PageCount is authoritative: it equals the page tree's declared
	// count, title page included.
	PageCount int

	// DroppedImages counts attachments skipped as unrenderable.
	DroppedImages int
}

// Export renders records as the screen rendition: letter geometry with
// a title page, or the bare legacy profile when opts.Plain is set.
func (e *Engine) Export(ctx context.Context, records []record.ExportRecord, opts record.RenderOptions) (*Result, error) {
	g := geo.Export()
	if opts.Plain {
		g = geo.Plain()
	}
	return e.assemble(ctx, "export", records, opts, g, exportTitle(opts), rangeLabel(opts), "")
}

// PrintInterior renders records as the book interior: frequency-selected
// trim, mirrored binding margins, bare page number footers and a leading
// title page. The result's page count feeds PrintCover.
func (e *Engine) PrintInterior(ctx context.Context, records []record.ExportRecord, opts record.PrintOptions) (*Result, error) {
	g := printGeometry(opts.Frequency)
	return e.assemble(ctx, "print.interior", records, opts.RenderOptions, g, opts.BookTitle(), rangeLabel(opts.RenderOptions), "")
}

// PrintCover builds the single-page wraparound cover sheet, its spine
// sized from the interior's authoritative page count.
func (e *Engine) PrintCover(ctx context.Context, opts record.PrintOptions, interiorPages int) ([]byte, error) {
	_, span := e.tracer.StartSpan(ctx, "bookpress.print.cover")
	defer span.Finish()

	c := geo.CoverFor(printGeometry(opts.Frequency), interiorPages)
	page := layout.CoverPage(c, opts.BookTitle(), rangeLabel(opts.RenderOptions), opts.BookTitle())

	graph, err := writer.BuildGraph([]layout.Page{page})
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("build cover graph: %w", err)
	}
	pdf, err := writer.Serialize(graph)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("serialize cover: %w", err)
	}

	e.log.Info("cover assembled",
		observability.Int("interior_pages", interiorPages),
		observability.Float64("spine_points", c.Spine),
		observability.Int(observability.MetricBytesWritten, len(pdf)),
	)
	return pdf, nil
}

// assemble runs the shared pipeline: blocks, pages, optional title page,
// object graph, bytes.
func (e *Engine) assemble(ctx context.Context, kind string, records []record.ExportRecord, opts record.RenderOptions, g geo.Geometry, title, subtitle, attribution string) (*Result, error) {
	_, span := e.tracer.StartSpan(ctx, "bookpress."+kind)
	defer span.Finish()
	start := time.Now()

	blocks, stats := layout.BuildBlocks(records, g, opts, e.log)
	pages := layout.Paginate(blocks, g, opts)
	if g.TitlePage {
		front := layout.TitlePage(g, title, subtitle, attribution)
		pages = append([]layout.Page{front}, pages...)
	}

	graph, err := writer.BuildGraph(pages)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("build object graph: %w", err)
	}
	pdf, err := writer.Serialize(graph)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("serialize document: %w", err)
	}

	span.SetTag(observability.MetricPageCount, graph.PageCount)
	e.log.Info("document assembled",
		observability.String("rendition", kind),
		observability.Int("records", len(records)),
		observability.Int(observability.MetricBlockCount, len(blocks)),
		observability.Int(observability.MetricPageCount, graph.PageCount),
		observability.Int(observability.MetricImagesEmbedded, stats.EmbeddedImages),
		observability.Int(observability.MetricImagesDropped, stats.DroppedImages),
		observability.Int(observability.MetricRecordsSkipped, stats.SkippedRecords),
		observability.Int(observability.MetricBytesWritten, len(pdf)),
		observability.Float64(observability.MetricAssembleTime, time.Since(start).Seconds()),
	)

	return &Result{PDF: pdf, PageCount: graph.PageCount, DroppedImages: stats.DroppedImages}, nil
}

func exportTitle(opts record.RenderOptions) string {
	if opts.DisplayName != "" {
		return opts.DisplayName
	}
	return "Journal"
}

// rangeLabel joins the caller-formatted range endpoints for subtitle and
// cover use.
func rangeLabel(opts record.RenderOptions) string {
	switch {
	case opts.RangeStart != "" && opts.RangeEnd != "":
		return opts.RangeStart + " - " + opts.RangeEnd
	case opts.RangeStart != "":
		return opts.RangeStart
	default:
		return opts.RangeEnd
	}
}

func printGeometry(f record.Frequency) geo.Geometry {
	if f == record.FrequencyAnnual {
		return geo.PrintAnnual()
	}
	return geo.PrintMonthly()
}
