package record

import "testing"

func TestBodyTextPrefersRefined(t *testing.T) {
	r := ExportRecord{RawText: "raw words", RefinedText: "polished words"}
	if got := r.BodyText(); got != "polished words" {
		t.Errorf("Expected refined text, got %q", got)
	}

	r.RefinedText = ""
	if got := r.BodyText(); got != "raw words" {
		t.Errorf("Expected raw fallback, got %q", got)
	}
}

func TestBookTitleFallbacks(t *testing.T) {
	p := PrintOptions{Title: "Summer 2026"}
	if got := p.BookTitle(); got != "Summer 2026" {
		t.Errorf("Expected explicit title, got %q", got)
	}

	p = PrintOptions{RenderOptions: RenderOptions{DisplayName: "Ada"}}
	if got := p.BookTitle(); got != "Ada's Journal" {
		t.Errorf("Expected display-name title, got %q", got)
	}

	p = PrintOptions{}
	if got := p.BookTitle(); got != "Journal" {
		t.Errorf("Expected default title, got %q", got)
	}
}
