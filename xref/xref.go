// Package xref reads classic cross-reference tables back out of
// serialized documents. The writer parses its own output through it as
// a final offset check; Rebuild recovers a table from files whose
// trailer is unusable.
package xref

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Entry is one in-use cross-reference row.
type Entry struct {
	Offset int64
	Gen    int
}

// Table maps object numbers to offsets, together with the trailer
// facts needed to walk the document.
type Table struct {
	entries map[int]Entry

	// Root is the catalog's object number, zero when the trailer
	// carried none.
	Root int
	// Size is the trailer's declared object count including the free
	// head, zero when the trailer carried none.
	Size int
	// Start is the byte offset of the xref keyword. Rebuild leaves it
	// zero.
	Start int64
}

// Lookup returns the offset and generation recorded for an object.
func (t *Table) Lookup(objNum int) (int64, int, bool) {
	e, ok := t.entries[objNum]
	if !ok {
		return 0, 0, false
	}
	return e.Offset, e.Gen, true
}

// Objects lists the in-use object numbers in increasing order.
func (t *Table) Objects() []int {
	out := make([]int, 0, len(t.entries))
	for k := range t.entries {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

func (t *Table) Len() int { return len(t.entries) }

// Parse locates the final startxref pointer and reads the classic
// table it names. Free entries are skipped.
func Parse(data []byte) (*Table, error) {
	startxref := bytes.LastIndex(data, []byte("startxref"))
	if startxref < 0 {
		return nil, errors.New("xref: startxref not found")
	}
	rest := data[startxref+len("startxref"):]
	lines := bufio.NewScanner(bytes.NewReader(rest))
	offset := int64(-1)
	for lines.Scan() {
		text := strings.TrimSpace(lines.Text())
		if text == "" {
			continue
		}
		val, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("xref: parse startxref: %w", err)
		}
		offset = val
		break
	}
	if offset < 0 || offset >= int64(len(data)) {
		return nil, fmt.Errorf("xref: offset out of range: %d", offset)
	}

	sc := bufio.NewScanner(bytes.NewReader(data[offset:]))
	if !sc.Scan() || strings.TrimSpace(sc.Text()) != "xref" {
		return nil, errors.New("xref: keyword not found at offset")
	}

	entries := make(map[int]Entry)
	trailer := ""
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "trailer") {
			trailer = collectTrailer(sc, strings.TrimPrefix(line, "trailer"))
			break
		}
		parts := strings.Fields(line)
		if len(parts) != 2 {
			return nil, fmt.Errorf("xref: invalid subsection header: %q", line)
		}
		startObj, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("xref: parse subsection start: %w", err)
		}
		count, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("xref: parse subsection count: %w", err)
		}
		for i := 0; i < count; i++ {
			if !sc.Scan() {
				return nil, errors.New("xref: unexpected end of section")
			}
			fields := strings.Fields(strings.TrimSpace(sc.Text()))
			if len(fields) < 3 {
				return nil, fmt.Errorf("xref: invalid entry: %q", sc.Text())
			}
			off, err := strconv.ParseInt(fields[0], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("xref: parse entry offset: %w", err)
			}
			gen, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("xref: parse entry generation: %w", err)
			}
			if fields[2][0] != 'n' {
				continue
			}
			entries[startObj+i] = Entry{Offset: off, Gen: gen}
		}
	}

	t := &Table{entries: entries, Start: offset}
	t.Root, t.Size = parseTrailer(trailer)
	return t, nil
}

// collectTrailer gathers the trailer dictionary text up to startxref.
func collectTrailer(sc *bufio.Scanner, first string) string {
	var sb strings.Builder
	sb.WriteString(first)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "startxref" {
			break
		}
		sb.WriteByte(' ')
		sb.WriteString(line)
	}
	return sb.String()
}

var (
	rootRe      = regexp.MustCompile(`/Root\s+(\d+)\s+(\d+)\s+R`)
	sizeRe      = regexp.MustCompile(`/Size\s+(\d+)`)
	objHeaderRe = regexp.MustCompile(`(?m)^(\d+)\s+(\d+)\s+obj\b`)
)

func parseTrailer(s string) (root, size int) {
	if m := rootRe.FindStringSubmatch(s); m != nil {
		root, _ = strconv.Atoi(m[1])
	}
	if m := sizeRe.FindStringSubmatch(s); m != nil {
		size, _ = strconv.Atoi(m[1])
	}
	return root, size
}

// Rebuild reconstructs a table by scanning the whole file for object
// headers, for documents whose startxref or table is damaged. The
// first header wins when a number appears twice. The last trailer
// dictionary in the file supplies Root and Size when present.
func Rebuild(data []byte) (*Table, error) {
	matches := objHeaderRe.FindAllSubmatchIndex(data, -1)
	entries := make(map[int]Entry, len(matches))
	for _, m := range matches {
		num, err := strconv.Atoi(string(data[m[2]:m[3]]))
		if err != nil {
			continue
		}
		gen, err := strconv.Atoi(string(data[m[4]:m[5]]))
		if err != nil {
			continue
		}
		if _, exists := entries[num]; exists {
			continue
		}
		entries[num] = Entry{Offset: int64(m[0]), Gen: gen}
	}
	if len(entries) == 0 {
		return nil, errors.New("xref: rebuild found no objects")
	}
	t := &Table{entries: entries}
	if i := bytes.LastIndex(data, []byte("trailer")); i >= 0 {
		t.Root, t.Size = parseTrailer(string(data[i:]))
	}
	return t, nil
}
