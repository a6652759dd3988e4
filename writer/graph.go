package writer

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/everlog/bookpress/imageinfo"
	"github.com/everlog/bookpress/layout"
	"github.com/everlog/bookpress/typeset"
)

var (
	// ErrNoPages means BuildGraph was handed an empty page list. The
	// layout package never produces one, so this is a caller bug.
	ErrNoPages = errors.New("writer: no pages to assemble")

	// ErrBadImage means an image command carried bytes the inspector
	// cannot read. Layout drops unreadable images before they get here.
	ErrBadImage = errors.New("writer: unreadable image bytes")
)

// Resource names under which the two document fonts are registered on
// every page that uses them.
const (
	fontRegular = "F1"
	fontBold    = "F2"
)

// Graph is the complete, immutable object set for one document. Object
// numbers are dense from 1 to len(Objects) with no gaps.
type Graph struct {
	Objects   map[ObjectRef]Object
	Root      ObjectRef
	PageCount int
}

type graphBuilder struct {
	objects map[ObjectRef]Object
	objNum  int
}

func (b *graphBuilder) nextRef() ObjectRef {
	ref := ObjectRef{Num: b.objNum, Gen: 0}
	b.objNum++
	return ref
}

// BuildGraph assigns identifiers in a fixed order: catalog, page tree,
// then a page dictionary and content stream pair per page, the regular
// and bold fonts, and finally one image object per unique attachment in
// first appearance order. An attachment placed on several pages is
// embedded exactly once; its object is shared through page scoped
// resource entries under a document wide /ImN name.
func BuildGraph(pages []layout.Page) (*Graph, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}
	b := &graphBuilder{objects: make(map[ObjectRef]Object), objNum: 1}
	catalogRef := b.nextRef()
	pagesRef := b.nextRef()

	pageRefs := make([]ObjectRef, len(pages))
	contentRefs := make([]ObjectRef, len(pages))
	for i := range pages {
		pageRefs[i] = b.nextRef()
		contentRefs[i] = b.nextRef()
	}
	regularRef := b.nextRef()
	boldRef := b.nextRef()

	imageRefs := make(map[uuid.UUID]ObjectRef)
	imageNames := make(map[uuid.UUID]string)
	for _, p := range pages {
		for _, img := range p.Images {
			if _, ok := imageRefs[img.AttachmentID]; ok {
				continue
			}
			dims, ok := imageinfo.JPEGDimensions(img.Data)
			if !ok {
				return nil, fmt.Errorf("%w: attachment %s", ErrBadImage, img.AttachmentID)
			}
			ref := b.nextRef()
			imageRefs[img.AttachmentID] = ref
			imageNames[img.AttachmentID] = "Im" + strconv.Itoa(len(imageNames)+1)

			dict := NewDict()
			dict.Set("Type", NameLiteral("XObject"))
			dict.Set("Subtype", NameLiteral("Image"))
			dict.Set("Width", NumberInt(int64(dims.Width)))
			dict.Set("Height", NumberInt(int64(dims.Height)))
			dict.Set("ColorSpace", NameLiteral("DeviceRGB"))
			dict.Set("BitsPerComponent", NumberInt(8))
			dict.Set("Filter", NameLiteral("DCTDecode"))
			dict.Set("Length", NumberInt(int64(len(img.Data))))
			b.objects[ref] = NewStream(dict, img.Data)
		}
	}

	for i, p := range pages {
		content := contentStream(p, imageNames)
		streamDict := NewDict()
		streamDict.Set("Length", NumberInt(int64(len(content))))
		b.objects[contentRefs[i]] = NewStream(streamDict, content)

		pageDict := NewDict()
		pageDict.Set("Type", NameLiteral("Page"))
		pageDict.Set("Parent", Ref(pagesRef.Num, pagesRef.Gen))
		pageDict.Set("MediaBox", NewArray(NumberInt(0), NumberInt(0), number(p.Width), number(p.Height)))
		pageDict.Set("Contents", Ref(contentRefs[i].Num, contentRefs[i].Gen))
		pageDict.Set("Resources", pageResources(p, regularRef, boldRef, imageRefs, imageNames))
		b.objects[pageRefs[i]] = pageDict
	}

	kids := NewArray()
	for _, r := range pageRefs {
		kids.Append(Ref(r.Num, r.Gen))
	}
	pagesDict := NewDict()
	pagesDict.Set("Type", NameLiteral("Pages"))
	pagesDict.Set("Kids", kids)
	pagesDict.Set("Count", NumberInt(int64(len(pages))))
	b.objects[pagesRef] = pagesDict

	catalog := NewDict()
	catalog.Set("Type", NameLiteral("Catalog"))
	catalog.Set("Pages", Ref(pagesRef.Num, pagesRef.Gen))
	b.objects[catalogRef] = catalog

	b.objects[regularRef] = fontDict("Helvetica")
	b.objects[boldRef] = fontDict("Helvetica-Bold")

	return &Graph{Objects: b.objects, Root: catalogRef, PageCount: len(pages)}, nil
}

func fontDict(baseFont string) *DictObj {
	dict := NewDict()
	dict.Set("Type", NameLiteral("Font"))
	dict.Set("Subtype", NameLiteral("Type1"))
	dict.Set("BaseFont", NameLiteral(baseFont))
	dict.Set("Encoding", NameLiteral("WinAnsiEncoding"))
	return dict
}

// pageResources lists exactly the fonts and images the page draws.
func pageResources(p layout.Page, regular, bold ObjectRef, imageRefs map[uuid.UUID]ObjectRef, imageNames map[uuid.UUID]string) *DictObj {
	usedRegular, usedBold := false, false
	for _, t := range p.Texts {
		if t.Bold {
			usedBold = true
		} else {
			usedRegular = true
		}
	}
	if p.Footer != nil {
		if p.Footer.Bold {
			usedBold = true
		} else {
			usedRegular = true
		}
	}

	res := NewDict()
	if usedRegular || usedBold {
		fonts := NewDict()
		if usedRegular {
			fonts.Set(fontRegular, Ref(regular.Num, regular.Gen))
		}
		if usedBold {
			fonts.Set(fontBold, Ref(bold.Num, bold.Gen))
		}
		res.Set("Font", fonts)
	}
	if len(p.Images) > 0 {
		xobjects := NewDict()
		for _, img := range p.Images {
			ref := imageRefs[img.AttachmentID]
			xobjects.Set(imageNames[img.AttachmentID], Ref(ref.Num, ref.Gen))
		}
		res.Set("XObject", xobjects)
	}
	return res
}

// contentStream renders one page's draw commands: a single BT..ET block
// holding every body text placement, one save/transform/draw/restore
// sequence per image, then a trailing text block for the footer.
func contentStream(p layout.Page, imageNames map[uuid.UUID]string) []byte {
	var b bytes.Buffer
	if len(p.Texts) > 0 {
		b.WriteString("BT\n")
		sel := ""
		for _, t := range p.Texts {
			writeTextCmd(&b, t, &sel)
		}
		b.WriteString("ET\n")
	}
	for _, img := range p.Images {
		b.WriteString("q\n")
		b.WriteString(coord(img.W) + " 0 0 " + coord(img.H) + " " + coord(img.X) + " " + coord(img.Y) + " cm\n")
		b.WriteString("/" + imageNames[img.AttachmentID] + " Do\n")
		b.WriteString("Q\n")
	}
	if p.Footer != nil {
		b.WriteString("BT\n")
		sel := ""
		writeTextCmd(&b, *p.Footer, &sel)
		b.WriteString("ET\n")
	}
	return b.Bytes()
}

// writeTextCmd emits a font selection when it changes, an absolute text
// matrix and the escaped show operator. Rotated commands run the line
// top to bottom for spine text.
func writeTextCmd(b *bytes.Buffer, t layout.TextCmd, sel *string) {
	font := fontRegular
	if t.Bold {
		font = fontBold
	}
	pick := "/" + font + " " + coord(t.Size) + " Tf"
	if pick != *sel {
		b.WriteString(pick + "\n")
		*sel = pick
	}
	if t.Rotated {
		b.WriteString("0 -1 1 0 " + coord(t.X) + " " + coord(t.Y) + " Tm\n")
	} else {
		b.WriteString("1 0 0 1 " + coord(t.X) + " " + coord(t.Y) + " Tm\n")
	}
	b.WriteString("(" + typeset.EscapeText(t.Text) + ") Tj\n")
}

// coord formats a coordinate or size with at most two decimals and no
// trailing zeros, so whole numbers stay whole.
func coord(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
