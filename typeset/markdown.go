package typeset

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// FlattenMarkdown reduces a Markdown document to plain paragraphs. The
// polishing service returns entry text as Markdown; headings become single
// lines, list items keep a "- " prefix, code blocks keep their lines, and
// inline emphasis collapses to its text. Blocks are separated by one blank
// line so wrapping preserves the paragraph structure.
func FlattenMarkdown(source string) string {
	md := goldmark.New()
	src := []byte(source)
	doc := md.Parser().Parse(text.NewReader(src))

	var blocks []string
	var walk func(node ast.Node)
	walk = func(node ast.Node) {
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			switch n := child.(type) {
			case *ast.Heading:
				blocks = append(blocks, string(n.Text(src)))
			case *ast.Paragraph:
				blocks = append(blocks, inlineText(n, src))
			case *ast.List:
				var items []string
				for it := n.FirstChild(); it != nil; it = it.NextSibling() {
					if li, ok := it.(*ast.ListItem); ok {
						items = append(items, "- "+listItemText(li, src))
					}
				}
				if len(items) > 0 {
					blocks = append(blocks, strings.Join(items, "\n"))
				}
			case *ast.FencedCodeBlock:
				blocks = append(blocks, rawLines(n, src))
			case *ast.CodeBlock:
				blocks = append(blocks, rawLines(n, src))
			case *ast.Blockquote:
				walk(n)
			}
		}
	}
	walk(doc)

	return strings.Join(blocks, "\n\n")
}

// inlineText concatenates the inline content of a block node, folding soft
// and hard line breaks to spaces.
func inlineText(n ast.Node, src []byte) string {
	var sb strings.Builder
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if t, ok := child.(*ast.Text); ok {
			sb.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
		} else {
			sb.WriteString(string(child.Text(src)))
		}
	}
	return sb.String()
}

func listItemText(li ast.Node, src []byte) string {
	child := li.FirstChild()
	if child == nil {
		return ""
	}
	if p, ok := child.(*ast.Paragraph); ok {
		return inlineText(p, src)
	}
	if t, ok := child.(*ast.Text); ok {
		return string(t.Segment.Value(src))
	}
	return string(child.Text(src))
}

func rawLines(n ast.Node, src []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(src))
	}
	return strings.TrimRight(sb.String(), "\n")
}
