package writer

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/everlog/bookpress/xref"
)

const header = "%PDF-1.4\n"

var (
	// ErrDanglingRef means an object references an identifier that is
	// absent from the graph.
	ErrDanglingRef = errors.New("writer: dangling object reference")

	// ErrSparseIDs means object numbers are not dense from 1.
	ErrSparseIDs = errors.New("writer: sparse object identifier space")

	// ErrBadOffset means a recorded cross-reference offset does not
	// land on its own object header in the emitted bytes.
	ErrBadOffset = errors.New("writer: cross-reference offset mismatch")
)

// Serialize writes the graph as a complete document: header, object
// bodies in strictly increasing identifier order, the cross-reference
// table and the trailer. The graph is verified before writing and the
// emitted table is parsed back afterwards, so corrupt bytes are never
// returned.
func Serialize(g *Graph) ([]byte, error) {
	if err := verifyGraph(g); err != nil {
		return nil, err
	}

	ordered := make([]ObjectRef, 0, len(g.Objects))
	for ref := range g.Objects {
		ordered = append(ordered, ref)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Num < ordered[j].Num })

	var buf bytes.Buffer
	buf.WriteString(header)
	offsets := make(map[int]int64, len(ordered))
	for _, ref := range ordered {
		offsets[ref.Num] = int64(buf.Len())
		buf.Write(serializeObject(ref, g.Objects[ref]))
	}

	xrefOffset := buf.Len()
	size := len(ordered) + 1
	buf.WriteString("xref\n0 " + strconv.Itoa(size) + "\n")
	buf.WriteString("0000000000 65535 f \n")
	for _, ref := range ordered {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[ref.Num])
	}
	buf.WriteString("trailer\n<< /Root " + strconv.Itoa(g.Root.Num) + " 0 R /Size " + strconv.Itoa(size) + " >>\nstartxref\n")
	buf.WriteString(strconv.Itoa(xrefOffset) + "\n%%EOF\n")

	out := buf.Bytes()
	if err := verifyOffsets(out, len(ordered)); err != nil {
		return nil, err
	}
	return out, nil
}

// serializeObject wraps one object body in its numbered frame.
func serializeObject(ref ObjectRef, obj Object) []byte {
	var buf bytes.Buffer
	buf.WriteString(strconv.Itoa(ref.Num) + " " + strconv.Itoa(ref.Gen) + " obj\n")
	buf.Write(serializePrimitive(obj))
	buf.WriteString("\nendobj\n")
	return buf.Bytes()
}

func serializePrimitive(o Object) []byte {
	switch v := o.(type) {
	case NameObj:
		return []byte("/" + v.Value())
	case NumberObj:
		if v.IsInteger() {
			return []byte(strconv.FormatInt(v.Int(), 10))
		}
		return []byte(coord(v.Float()))
	case BoolObj:
		if v.Value() {
			return []byte("true")
		}
		return []byte("false")
	case NullObj:
		return []byte("null")
	case StringObj:
		return escapeLiteralString(v.Value())
	case *ArrayObj:
		var b bytes.Buffer
		b.WriteByte('[')
		for i, it := range v.Items {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.Write(serializePrimitive(it))
		}
		b.WriteByte(']')
		return b.Bytes()
	case *DictObj:
		var b bytes.Buffer
		b.WriteString("<<")
		keys := make([]string, 0, len(v.KV))
		for k := range v.KV {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString("/" + k + " ")
			b.Write(serializePrimitive(v.KV[k]))
		}
		b.WriteString(">>")
		return b.Bytes()
	case *StreamObj:
		var b bytes.Buffer
		b.Write(serializePrimitive(v.Dict))
		b.WriteString("stream\n")
		b.Write(v.Data)
		b.WriteString("\nendstream")
		return b.Bytes()
	case RefObj:
		return []byte(strconv.Itoa(v.Ref().Num) + " " + strconv.Itoa(v.Ref().Gen) + " R")
	default:
		return []byte("null")
	}
}

func escapeLiteralString(rawBytes []byte) []byte {
	var b bytes.Buffer
	b.WriteByte('(')
	for _, ch := range rawBytes {
		switch ch {
		case '\\', '(', ')':
			b.WriteByte('\\')
			b.WriteByte(ch)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if ch < 0x20 || ch >= 0x80 {
				fmt.Fprintf(&b, "\\%03o", ch)
			} else {
				b.WriteByte(ch)
			}
		}
	}
	b.WriteByte(')')
	return b.Bytes()
}

func verifyGraph(g *Graph) error {
	if g == nil || len(g.Objects) == 0 {
		return fmt.Errorf("%w: empty graph", ErrSparseIDs)
	}
	for i := 1; i <= len(g.Objects); i++ {
		if _, ok := g.Objects[ObjectRef{Num: i}]; !ok {
			return fmt.Errorf("%w: missing object %d of %d", ErrSparseIDs, i, len(g.Objects))
		}
	}
	if _, ok := g.Objects[g.Root]; !ok {
		return fmt.Errorf("%w: root %d", ErrDanglingRef, g.Root.Num)
	}
	for ref, obj := range g.Objects {
		if err := checkRefs(obj, g.Objects); err != nil {
			return fmt.Errorf("object %d: %w", ref.Num, err)
		}
	}
	return nil
}

func checkRefs(o Object, objects map[ObjectRef]Object) error {
	switch v := o.(type) {
	case RefObj:
		if _, ok := objects[v.Ref()]; !ok {
			return fmt.Errorf("%w: %d %d R", ErrDanglingRef, v.Ref().Num, v.Ref().Gen)
		}
	case *ArrayObj:
		for _, it := range v.Items {
			if err := checkRefs(it, objects); err != nil {
				return err
			}
		}
	case *DictObj:
		for _, val := range v.KV {
			if err := checkRefs(val, objects); err != nil {
				return err
			}
		}
	case *StreamObj:
		return checkRefs(v.Dict, objects)
	}
	return nil
}

// verifyOffsets parses the just-written cross-reference table back and
// checks that every entry points at its own object header.
func verifyOffsets(data []byte, count int) error {
	tbl, err := xref.Parse(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadOffset, err)
	}
	nums := tbl.Objects()
	if len(nums) != count {
		return fmt.Errorf("%w: table lists %d objects, wrote %d", ErrBadOffset, len(nums), count)
	}
	for _, num := range nums {
		off, _, _ := tbl.Lookup(num)
		want := []byte(strconv.Itoa(num) + " 0 obj\n")
		if off < 0 || off >= int64(len(data)) || !bytes.HasPrefix(data[off:], want) {
			return fmt.Errorf("%w: object %d at offset %d", ErrBadOffset, num, off)
		}
	}
	return nil
}
