package geo

import "testing"

func TestExportColumnBudget(t *testing.T) {
	g := Export()
	if w := g.UsableWidth(); w != 504 {
		t.Errorf("Expected usable width 504, got %f", w)
	}
	// 504 / (11 * 0.52) = 88.1..., truncated.
	if b := g.ColumnBudget(); b != 88 {
		t.Errorf("Expected column budget 88, got %d", b)
	}
}

func TestMirroredMargins(t *testing.T) {
	g := PrintMonthly()
	if m := g.LeftMargin(1); m != g.Inner {
		t.Errorf("Recto page should bind left, got %f", m)
	}
	if m := g.LeftMargin(2); m != g.Outer {
		t.Errorf("Verso page should mirror, got %f", m)
	}

	e := Export()
	if e.LeftMargin(1) != e.LeftMargin(2) {
		t.Error("Export margins should be symmetric")
	}
}

func TestPlainProfile(t *testing.T) {
	g := Plain()
	if g.TitlePage {
		t.Error("Plain profile must not carry a title page")
	}
	if !g.HardWrap {
		t.Error("Plain profile must force-split long words")
	}
	if g.Width != Export().Width || g.Height != Export().Height {
		t.Error("Plain profile shares the export page box")
	}
}

func TestCoverSpineFormula(t *testing.T) {
	g := PrintMonthly()

	// Few pages clamp to the minimum spine.
	thin := CoverFor(g, 10)
	if thin.Spine != MinSpine {
		t.Errorf("Expected clamped spine %f, got %f", MinSpine, thin.Spine)
	}

	thick := CoverFor(g, 400)
	if want := 400 * SpinePerPage; thick.Spine != want {
		t.Errorf("Expected spine %f, got %f", want, thick.Spine)
	}

	if want := 2*g.Width + thick.Spine + 2*Bleed; thick.Width() != want {
		t.Errorf("Expected cover width %f, got %f", want, thick.Width())
	}
	if want := g.Height + 2*Bleed; thick.Height() != want {
		t.Errorf("Expected cover height %f, got %f", want, thick.Height())
	}

	if thick.FrontCenterX() <= thick.SpineCenterX() {
		t.Error("Front panel must sit right of the spine")
	}
}

func TestContentBounds(t *testing.T) {
	g := Export()
	if top := g.ContentTop(); top != 792-72 {
		t.Errorf("Expected content top 720, got %f", top)
	}
	if floor := g.ContentFloor(); floor != 54+28 {
		t.Errorf("Expected content floor 82, got %f", floor)
	}
}
