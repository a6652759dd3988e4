package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/everlog/bookpress/export"
	"github.com/everlog/bookpress/observability"
	"github.com/everlog/bookpress/record"
)

type options struct {
	recordsPath string
	imagesDir   string
	outDir      string
	mode        string
	verbose     bool

	render record.RenderOptions
	print  record.PrintOptions
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "bookpress: %v\n", err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "bookpress: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var opts options
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: bookpress -records journal.json [flags]\n")
		flag.PrintDefaults()
	}
	records := flag.String("records", "", "JSON file with the ordered records to assemble")
	images := flag.String("images", "", "Directory with attachment files named <attachment-id>.jpg")
	out := flag.String("out", ".", "Directory for the generated PDFs")
	mode := flag.String("mode", "export", "Rendition to produce: export or print")
	name := flag.String("name", "", "Journal owner's display name")
	from := flag.String("from", "", "First date of the covered range, pre-formatted")
	to := flag.String("to", "", "Last date of the covered range, pre-formatted")
	title := flag.String("title", "", "Book title override (print mode)")
	frequency := flag.String("frequency", "monthly", "Print trim profile: monthly or annual")
	plain := flag.Bool("plain", false, "Export without a title page, hard-wrapping long words")
	markdown := flag.Bool("markdown", false, "Flatten Markdown in entry text before wrapping")
	html := flag.Bool("html", false, "Strip HTML markup from entry text before wrapping")
	verbose := flag.Bool("v", false, "Log assembly details to stderr")
	flag.Parse()

	if *records == "" {
		flag.Usage()
		return options{}, fmt.Errorf("missing -records file")
	}
	switch *mode {
	case "export", "print":
	default:
		return options{}, fmt.Errorf("unknown mode %q (want export or print)", *mode)
	}
	var freq record.Frequency
	switch *frequency {
	case "monthly":
		freq = record.FrequencyMonthly
	case "annual":
		freq = record.FrequencyAnnual
	default:
		return options{}, fmt.Errorf("unknown frequency %q (want monthly or annual)", *frequency)
	}

	opts.recordsPath = *records
	opts.imagesDir = *images
	opts.outDir = *out
	opts.mode = *mode
	opts.verbose = *verbose
	opts.render = record.RenderOptions{
		DisplayName:     *name,
		RangeStart:      *from,
		RangeEnd:        *to,
		Plain:           *plain,
		FlattenMarkdown: *markdown,
		StripHTML:       *html,
	}
	opts.print = record.PrintOptions{
		RenderOptions: opts.render,
		Frequency:     freq,
		Title:         *title,
	}
	return opts, nil
}

func run(opts options) error {
	records, err := loadRecords(opts.recordsPath)
	if err != nil {
		return err
	}
	if opts.imagesDir != "" {
		resolveAttachments(records, opts.imagesDir)
	}
	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	var engineOpts []export.Option
	if opts.verbose {
		engineOpts = append(engineOpts, export.WithLogger(stderrLogger{}))
	}
	eng := export.New(engineOpts...)
	ctx := context.Background()

	switch opts.mode {
	case "export":
		res, err := eng.Export(ctx, records, opts.render)
		if err != nil {
			return fmt.Errorf("assemble export: %w", err)
		}
		if err := emit(filepath.Join(opts.outDir, "export.pdf"), res.PDF, res.PageCount); err != nil {
			return err
		}
		reportDrops(res.DroppedImages)
	case "print":
		res, err := eng.PrintInterior(ctx, records, opts.print)
		if err != nil {
			return fmt.Errorf("assemble interior: %w", err)
		}
		if err := emit(filepath.Join(opts.outDir, "interior.pdf"), res.PDF, res.PageCount); err != nil {
			return err
		}
		cover, err := eng.PrintCover(ctx, opts.print, res.PageCount)
		if err != nil {
			return fmt.Errorf("assemble cover: %w", err)
		}
		if err := emit(filepath.Join(opts.outDir, "cover.pdf"), cover, 1); err != nil {
			return err
		}
		reportDrops(res.DroppedImages)
	}
	return nil
}

func loadRecords(path string) ([]record.ExportRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open records: %w", err)
	}
	defer f.Close()

	var records []record.ExportRecord
	if err := json.NewDecoder(f).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}

// resolveAttachments fills attachment bytes from dir for every attachment the
// records file left unresolved. Files are looked up by attachment ID; a
// missing file leaves Data nil and the engine drops the attachment.
func resolveAttachments(records []record.ExportRecord, dir string) {
	for i := range records {
		for j := range records[i].Attachments {
			att := &records[i].Attachments[j]
			if att.Data != nil {
				continue
			}
			data, ok := readAttachment(dir, att.ID.String())
			if !ok {
				continue
			}
			att.Data = data
			if att.ContentType == "" {
				att.ContentType = "image/jpeg"
			}
		}
	}
}

func readAttachment(dir, id string) ([]byte, bool) {
	for _, name := range []string{id + ".jpg", id + ".jpeg", id} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return data, true
		}
	}
	return nil, false
}

func emit(path string, data []byte, pages int) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	fmt.Printf("Wrote %s (%d bytes, %d pages)\n", path, len(data), pages)
	return nil
}

func reportDrops(n int) {
	if n > 0 {
		fmt.Printf("Dropped %d unrenderable attachments\n", n)
	}
}

// stderrLogger prints engine logs line-per-event for the -v flag.
type stderrLogger struct {
	base []observability.Field
}

func (l stderrLogger) Debug(msg string, fields ...observability.Field) { l.emit("DEBUG", msg, fields) }
func (l stderrLogger) Info(msg string, fields ...observability.Field)  { l.emit("INFO", msg, fields) }
func (l stderrLogger) Warn(msg string, fields ...observability.Field)  { l.emit("WARN", msg, fields) }
func (l stderrLogger) Error(msg string, fields ...observability.Field) { l.emit("ERROR", msg, fields) }

func (l stderrLogger) With(fields ...observability.Field) observability.Logger {
	merged := make([]observability.Field, 0, len(l.base)+len(fields))
	merged = append(merged, l.base...)
	merged = append(merged, fields...)
	return stderrLogger{base: merged}
}

func (l stderrLogger) emit(level, msg string, fields []observability.Field) {
	var b strings.Builder
	b.WriteString(level)
	b.WriteByte(' ')
	b.WriteString(msg)
	for _, f := range l.base {
		fmt.Fprintf(&b, " %s=%v", f.Key(), f.Value())
	}
	for _, f := range fields {
		fmt.Fprintf(&b, " %s=%v", f.Key(), f.Value())
	}
	fmt.Fprintln(os.Stderr, b.String())
}
