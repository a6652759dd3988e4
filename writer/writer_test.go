package writer

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/everlog/bookpress/layout"
	"github.com/everlog/bookpress/xref"
)

// jpegFixture is a minimal stream the dimension sniffer accepts: a
// start-of-image marker directly followed by a baseline frame header.
func jpegFixture(width, height int) []byte {
	return []byte{
		0xff, 0xd8,
		0xff, 0xc0, 0x00, 0x11, 0x08,
		byte(height >> 8), byte(height), byte(width >> 8), byte(width),
		0x03, 0x01, 0x22, 0x00, 0x02, 0x11, 0x01, 0x03, 0x11, 0x01,
		0xff, 0xd9,
	}
}

func onePage(imgID uuid.UUID) []layout.Page {
	return []layout.Page{
		{
			Width:  612,
			Height: 792,
			Texts: []layout.TextCmd{
				{X: 54, Y: 720, Size: 12, Bold: true, Text: "January 1, 2023"},
				{X: 54, Y: 700, Size: 11, Text: "Hello (world)"},
			},
			Images: []layout.ImageCmd{
				{AttachmentID: imgID, Data: jpegFixture(40, 30), X: 54, Y: 400, W: 40, H: 30},
			},
			Footer: &layout.TextCmd{X: 300, Y: 32, Size: 9, Text: "1"},
		},
	}
}

func TestBuildGraphFixedOrder(t *testing.T) {
	g, err := BuildGraph(onePage(uuid.New()))
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	if g.Root.Num != 1 {
		t.Fatalf("expected catalog at 1, got %d", g.Root.Num)
	}
	if g.PageCount != 1 {
		t.Fatalf("expected page count 1, got %d", g.PageCount)
	}
	// Catalog, tree, page, content, two fonts, one image.
	if len(g.Objects) != 7 {
		t.Fatalf("expected 7 objects, got %d", len(g.Objects))
	}

	catalog, ok := g.Objects[ObjectRef{Num: 1}].(*DictObj)
	if !ok {
		t.Fatal("object 1 is not a dictionary")
	}
	if pages, _ := catalog.Get("Pages"); pages.(RefObj).Ref().Num != 2 {
		t.Errorf("catalog does not point at object 2")
	}

	tree, ok := g.Objects[ObjectRef{Num: 2}].(*DictObj)
	if !ok {
		t.Fatal("object 2 is not a dictionary")
	}
	if count, _ := tree.Get("Count"); count.(NumberObj).Int() != 1 {
		t.Errorf("expected tree count 1")
	}
	kids, _ := tree.Get("Kids")
	if kids.(*ArrayObj).Items[0].(RefObj).Ref().Num != 3 {
		t.Errorf("expected first page at object 3")
	}

	page, ok := g.Objects[ObjectRef{Num: 3}].(*DictObj)
	if !ok {
		t.Fatal("object 3 is not a dictionary")
	}
	if contents, _ := page.Get("Contents"); contents.(RefObj).Ref().Num != 4 {
		t.Errorf("expected content stream at object 4")
	}
	if parent, _ := page.Get("Parent"); parent.(RefObj).Ref().Num != 2 {
		t.Errorf("expected page parent 2")
	}

	regular, ok := g.Objects[ObjectRef{Num: 5}].(*DictObj)
	if !ok {
		t.Fatal("object 5 is not a dictionary")
	}
	if base, _ := regular.Get("BaseFont"); base.(NameObj).Value() != "Helvetica" {
		t.Errorf("expected regular font at object 5")
	}
	bold, ok := g.Objects[ObjectRef{Num: 6}].(*DictObj)
	if !ok {
		t.Fatal("object 6 is not a dictionary")
	}
	if base, _ := bold.Get("BaseFont"); base.(NameObj).Value() != "Helvetica-Bold" {
		t.Errorf("expected bold font at object 6")
	}

	img, ok := g.Objects[ObjectRef{Num: 7}].(*StreamObj)
	if !ok {
		t.Fatal("object 7 is not a stream")
	}
	if w, _ := img.Dict.Get("Width"); w.(NumberObj).Int() != 40 {
		t.Errorf("expected image width 40")
	}
	if h, _ := img.Dict.Get("Height"); h.(NumberObj).Int() != 30 {
		t.Errorf("expected image height 30")
	}
	if f, _ := img.Dict.Get("Filter"); f.(NameObj).Value() != "DCTDecode" {
		t.Errorf("expected DCTDecode filter")
	}
}

func TestBuildGraphPagePairs(t *testing.T) {
	pages := []layout.Page{
		{Width: 612, Height: 792, Texts: []layout.TextCmd{{X: 54, Y: 720, Size: 11, Text: "one"}}},
		{Width: 612, Height: 792, Texts: []layout.TextCmd{{X: 54, Y: 720, Size: 11, Text: "two"}}},
		{Width: 612, Height: 792, Texts: []layout.TextCmd{{X: 54, Y: 720, Size: 11, Text: "three"}}},
	}
	g, err := BuildGraph(pages)
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	if len(g.Objects) != 2+2*3+2 {
		t.Fatalf("expected 10 objects, got %d", len(g.Objects))
	}
	tree := g.Objects[ObjectRef{Num: 2}].(*DictObj)
	kids, _ := tree.Get("Kids")
	items := kids.(*ArrayObj).Items
	wantKids := []int{3, 5, 7}
	for i, want := range wantKids {
		if got := items[i].(RefObj).Ref().Num; got != want {
			t.Errorf("kid %d: expected object %d, got %d", i, want, got)
		}
	}
	for _, num := range wantKids {
		page := g.Objects[ObjectRef{Num: num}].(*DictObj)
		if contents, _ := page.Get("Contents"); contents.(RefObj).Ref().Num != num+1 {
			t.Errorf("page %d: content stream not at %d", num, num+1)
		}
	}
}

func TestBuildGraphImageDedup(t *testing.T) {
	shared := uuid.New()
	other := uuid.New()
	data := jpegFixture(40, 30)
	pages := []layout.Page{
		{
			Width: 612, Height: 792,
			Images: []layout.ImageCmd{{AttachmentID: shared, Data: data, X: 54, Y: 400, W: 40, H: 30}},
			Texts:  []layout.TextCmd{{X: 54, Y: 720, Size: 11, Text: "a"}},
		},
		{
			Width: 612, Height: 792,
			Images: []layout.ImageCmd{
				{AttachmentID: shared, Data: data, X: 54, Y: 400, W: 40, H: 30},
				{AttachmentID: other, Data: jpegFixture(20, 10), X: 54, Y: 300, W: 20, H: 10},
			},
			Texts: []layout.TextCmd{{X: 54, Y: 720, Size: 11, Text: "b"}},
		},
	}
	g, err := BuildGraph(pages)
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	// 2 + 2 pairs + 2 fonts + 2 unique images.
	if len(g.Objects) != 10 {
		t.Fatalf("expected 10 objects, got %d", len(g.Objects))
	}
	streams := 0
	for _, obj := range g.Objects {
		if s, ok := obj.(*StreamObj); ok {
			if f, found := s.Dict.Get("Filter"); found && f.(NameObj).Value() == "DCTDecode" {
				streams++
			}
		}
	}
	if streams != 2 {
		t.Fatalf("expected 2 embedded images, got %d", streams)
	}

	secondPage := g.Objects[ObjectRef{Num: 5}].(*DictObj)
	res, _ := secondPage.Get("Resources")
	xo, ok := res.(*DictObj).Get("XObject")
	if !ok {
		t.Fatal("second page has no XObject resources")
	}
	im1, ok := xo.(*DictObj).Get("Im1")
	if !ok {
		t.Fatal("shared image not registered as Im1")
	}
	if im1.(RefObj).Ref().Num != 9 {
		t.Errorf("expected shared image at object 9, got %d", im1.(RefObj).Ref().Num)
	}
	if _, ok := xo.(*DictObj).Get("Im2"); !ok {
		t.Error("second image not registered as Im2")
	}

	firstPage := g.Objects[ObjectRef{Num: 3}].(*DictObj)
	res, _ = firstPage.Get("Resources")
	xo, _ = res.(*DictObj).Get("XObject")
	first, _ := xo.(*DictObj).Get("Im1")
	if first.(RefObj).Ref().Num != 9 {
		t.Error("pages do not share the deduplicated image object")
	}
}

func TestBuildGraphEmptyPages(t *testing.T) {
	if _, err := BuildGraph(nil); !errors.Is(err, ErrNoPages) {
		t.Fatalf("expected ErrNoPages, got %v", err)
	}
}

func TestBuildGraphRejectsUnreadableImage(t *testing.T) {
	pages := []layout.Page{
		{
			Width: 612, Height: 792,
			Images: []layout.ImageCmd{{AttachmentID: uuid.New(), Data: []byte{1, 2, 3}, X: 54, Y: 400, W: 40, H: 30}},
		},
	}
	if _, err := BuildGraph(pages); !errors.Is(err, ErrBadImage) {
		t.Fatalf("expected ErrBadImage, got %v", err)
	}
}

func TestBuildGraphFontScoping(t *testing.T) {
	pages := []layout.Page{
		{Width: 396, Height: 612, Texts: []layout.TextCmd{{X: 100, Y: 400, Size: 24, Bold: true, Text: "Title"}}},
	}
	g, err := BuildGraph(pages)
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	page := g.Objects[ObjectRef{Num: 3}].(*DictObj)
	res, _ := page.Get("Resources")
	fonts, ok := res.(*DictObj).Get("Font")
	if !ok {
		t.Fatal("expected font resources")
	}
	if _, ok := fonts.(*DictObj).Get("F2"); !ok {
		t.Error("bold-only page missing F2")
	}
	if _, ok := fonts.(*DictObj).Get("F1"); ok {
		t.Error("bold-only page should not list F1")
	}
	if _, ok := res.(*DictObj).Get("XObject"); ok {
		t.Error("page without images should not list XObject resources")
	}
}

func TestContentStreamTextOps(t *testing.T) {
	page := layout.Page{
		Width: 612, Height: 792,
		Texts: []layout.TextCmd{
			{X: 54, Y: 720, Size: 12, Bold: true, Text: "January 1, 2023"},
			{X: 54, Y: 700, Size: 11, Text: "Hello (world)"},
		},
	}
	content := string(contentStream(page, nil))

	order := []string{
		"BT\n",
		"/F2 12 Tf\n",
		"1 0 0 1 54 720 Tm\n",
		"(January 1, 2023) Tj\n",
		"/F1 11 Tf\n",
		"1 0 0 1 54 700 Tm\n",
		`(Hello \(world\)) Tj` + "\n",
		"ET\n",
	}
	at := 0
	for _, want := range order {
		idx := strings.Index(content[at:], want)
		if idx < 0 {
			t.Fatalf("missing %q after offset %d in:\n%s", want, at, content)
		}
		at += idx + len(want)
	}
}

func TestContentStreamSharedFontSelection(t *testing.T) {
	page := layout.Page{
		Width: 612, Height: 792,
		Texts: []layout.TextCmd{
			{X: 54, Y: 720, Size: 11, Text: "first"},
			{X: 54, Y: 704, Size: 11, Text: "second"},
		},
	}
	content := string(contentStream(page, nil))
	if got := strings.Count(content, " Tf\n"); got != 1 {
		t.Fatalf("expected a single font selection, got %d in:\n%s", got, content)
	}
}

func TestContentStreamRotatedMatrix(t *testing.T) {
	page := layout.Page{
		Width: 874.8, Height: 630,
		Texts: []layout.TextCmd{
			{X: 432.85, Y: 380, Size: 13, Bold: true, Rotated: true, Text: "My Journal"},
		},
	}
	content := string(contentStream(page, nil))
	if !strings.Contains(content, "0 -1 1 0 432.85 380 Tm\n") {
		t.Fatalf("expected rotated text matrix in:\n%s", content)
	}
	if strings.Contains(content, "1 0 0 1 432.85") {
		t.Fatal("rotated line must not use the horizontal matrix")
	}
}

func TestContentStreamImageAndFooterOrder(t *testing.T) {
	imgID := uuid.New()
	content := string(contentStream(onePage(imgID)[0], map[uuid.UUID]string{imgID: "Im1"}))

	order := []string{
		"ET\n",
		"q\n",
		"40 0 0 30 54 400 cm\n",
		"/Im1 Do\n",
		"Q\n",
		"BT\n",
		"/F1 9 Tf\n",
		"1 0 0 1 300 32 Tm\n",
		"(1) Tj\n",
		"ET\n",
	}
	at := 0
	for _, want := range order {
		idx := strings.Index(content[at:], want)
		if idx < 0 {
			t.Fatalf("missing %q after offset %d in:\n%s", want, at, content)
		}
		at += idx + len(want)
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	g, err := BuildGraph(onePage(uuid.New()))
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	out, err := Serialize(g)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-1.4\n")) {
		t.Fatalf("expected document header, got %q", out[:9])
	}
	if !bytes.HasSuffix(out, []byte("%%EOF\n")) {
		t.Fatalf("expected %s terminator", "%%EOF")
	}

	table, err := xref.Parse(out)
	if err != nil {
		t.Fatalf("parse emitted table: %v", err)
	}
	if table.Root != 1 {
		t.Errorf("expected trailer root 1, got %d", table.Root)
	}
	if table.Size != len(g.Objects)+1 {
		t.Errorf("expected trailer size %d, got %d", len(g.Objects)+1, table.Size)
	}
	if table.Len() != len(g.Objects) {
		t.Fatalf("expected %d table entries, got %d", len(g.Objects), table.Len())
	}
	for _, num := range table.Objects() {
		off, _, _ := table.Lookup(num)
		want := []byte(strconv.Itoa(num) + " 0 obj\n")
		if !bytes.HasPrefix(out[off:], want) {
			t.Errorf("object %d: offset %d does not land on its header", num, off)
		}
	}
}

func TestSerializeDeterministic(t *testing.T) {
	imgID := uuid.New()
	first, err := BuildGraph(onePage(imgID))
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	second, err := BuildGraph(onePage(imgID))
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	a, err := Serialize(first)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	b, err := Serialize(second)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("identical pages must serialize to identical bytes")
	}
}

func TestSerializeImageVerbatim(t *testing.T) {
	imgID := uuid.New()
	pages := onePage(imgID)
	data := pages[0].Images[0].Data

	g, err := BuildGraph(pages)
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	out, err := Serialize(g)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	framed := append([]byte("stream\n"), data...)
	framed = append(framed, []byte("\nendstream")...)
	if !bytes.Contains(out, framed) {
		t.Fatal("image bytes not embedded verbatim")
	}
	if !bytes.Contains(out, []byte("/Filter /DCTDecode")) {
		t.Fatal("image dictionary missing filter")
	}
	if !bytes.Contains(out, []byte("/Length "+strconv.Itoa(len(data)))) {
		t.Fatal("image dictionary missing exact length")
	}
}

func TestSerializeDanglingRef(t *testing.T) {
	dict := NewDict()
	dict.Set("Pages", Ref(2, 0))
	g := &Graph{
		Objects: map[ObjectRef]Object{{Num: 1}: dict},
		Root:    ObjectRef{Num: 1},
	}
	if _, err := Serialize(g); !errors.Is(err, ErrDanglingRef) {
		t.Fatalf("expected ErrDanglingRef, got %v", err)
	}
}

func TestSerializeSparseIDs(t *testing.T) {
	g := &Graph{
		Objects: map[ObjectRef]Object{
			{Num: 1}: NewDict(),
			{Num: 3}: NewDict(),
		},
		Root: ObjectRef{Num: 1},
	}
	if _, err := Serialize(g); !errors.Is(err, ErrSparseIDs) {
		t.Fatalf("expected ErrSparseIDs, got %v", err)
	}
}

func TestSerializePrimitiveForms(t *testing.T) {
	cases := []struct {
		name string
		obj  Object
		want string
	}{
		{"name", NameLiteral("Catalog"), "/Catalog"},
		{"integer", NumberInt(42), "42"},
		{"real", NumberReal(10.5), "10.5"},
		{"negative real", NumberReal(-0.25), "-0.25"},
		{"whole real stays trimmed", NumberReal(612), "612"},
		{"bool true", Bool(true), "true"},
		{"bool false", Bool(false), "false"},
		{"null", NullObj{}, "null"},
		{"string escapes delimiters", Str([]byte("a(b)")), `(a\(b\))`},
		{"array", NewArray(NumberInt(0), NumberInt(0), NumberInt(612), NumberInt(792)), "[0 0 612 792]"},
		{"ref", Ref(3, 0), "3 0 R"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := string(serializePrimitive(tc.obj)); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestSerializeDictSortedKeys(t *testing.T) {
	dict := NewDict()
	dict.Set("Zebra", NumberInt(2))
	dict.Set("Alpha", NumberInt(1))
	dict.Set("Mid", NumberInt(3))
	want := "<</Alpha 1/Mid 3/Zebra 2>>"
	if got := string(serializePrimitive(dict)); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestEscapeLiteralString(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want string
	}{
		{"plain", []byte("hello"), "(hello)"},
		{"backslash", []byte(`a\b`), `(a\\b)`},
		{"newline", []byte("a\nb"), `(a\nb)`},
		{"control octal", []byte{0x07}, `(\007)`},
		{"high byte octal", []byte{0xe9}, `(\351)`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := string(escapeLiteralString(tc.in)); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestCoordFormatting(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{54, "54"},
		{0, "0"},
		{10.5, "10.5"},
		{64.8, "64.8"},
		{270.4, "270.4"},
		{874.8, "874.8"},
	}
	for _, tc := range cases {
		if got := coord(tc.in); got != tc.want {
			t.Errorf("coord(%v): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}
