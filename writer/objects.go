// Package writer lowers laid-out pages into an object graph and
// serializes the graph as a PDF 1.4 byte stream with a classic
// cross-reference table. Object identifiers are assigned in a fixed
// deterministic order so the same pages always produce the same bytes.
package writer

// Object is any value that can appear in a document body.
type Object interface {
	isObject()
}

// ObjectRef identifies an indirect object by number. Generation is
// always zero in freshly built documents.
type ObjectRef struct {
	Num int
	Gen int
}

// NameObj is a slash-prefixed name.
type NameObj struct{ Val string }

func (n NameObj) isObject()     {}
func (n NameObj) Value() string { return n.Val }

// NumberObj carries either an integer or a real. Integers serialize
// without a decimal point.
type NumberObj struct {
	I     int64
	F     float64
	IsInt bool
}

func (n NumberObj) isObject()  {}
func (n NumberObj) Int() int64 { return n.I }
func (n NumberObj) Float() float64 {
	if n.IsInt {
		return float64(n.I)
	}
	return n.F
}
func (n NumberObj) IsInteger() bool { return n.IsInt }

// StringObj is a literal string. Escaping happens at serialization.
type StringObj struct{ Bytes []byte }

func (s StringObj) isObject()     {}
func (s StringObj) Value() []byte { return s.Bytes }

// BoolObj is a boolean.
type BoolObj struct{ V bool }

func (b BoolObj) isObject()   {}
func (b BoolObj) Value() bool { return b.V }

// NullObj is the null object.
type NullObj struct{}

func (n NullObj) isObject() {}

// ArrayObj is an ordered list of objects.
type ArrayObj struct{ Items []Object }

func (a *ArrayObj) isObject()       {}
func (a *ArrayObj) Len() int        { return len(a.Items) }
func (a *ArrayObj) Append(o Object) { a.Items = append(a.Items, o) }

// DictObj is a dictionary. Keys serialize in sorted order.
type DictObj struct{ KV map[string]Object }

func (d *DictObj) isObject() {}
func (d *DictObj) Set(key string, value Object) {
	if d.KV == nil {
		d.KV = make(map[string]Object)
	}
	d.KV[key] = value
}
func (d *DictObj) Get(key string) (Object, bool) {
	o, ok := d.KV[key]
	return o, ok
}
func (d *DictObj) Len() int { return len(d.KV) }

// StreamObj is a dictionary followed by raw data. The dictionary must
// carry a Length entry matching len(Data); the graph builder sets it.
type StreamObj struct {
	Dict *DictObj
	Data []byte
}

func (s *StreamObj) isObject() {}

// RefObj is an indirect reference to another object.
type RefObj struct{ R ObjectRef }

func (r RefObj) isObject()      {}
func (r RefObj) Ref() ObjectRef { return r.R }

// Constructors.

func NameLiteral(v string) NameObj   { return NameObj{Val: v} }
func NumberInt(i int64) NumberObj    { return NumberObj{I: i, IsInt: true} }
func NumberReal(f float64) NumberObj { return NumberObj{F: f, IsInt: false} }
func Bool(v bool) BoolObj            { return BoolObj{V: v} }
func Str(b []byte) StringObj         { return StringObj{Bytes: b} }

func NewArray(items ...Object) *ArrayObj { return &ArrayObj{Items: items} }
func NewStream(dict *DictObj, data []byte) *StreamObj {
	return &StreamObj{Dict: dict, Data: data}
}

func NewDict() *DictObj       { return &DictObj{KV: make(map[string]Object)} }
func Ref(num, gen int) RefObj { return RefObj{R: ObjectRef{Num: num, Gen: gen}} }

// number picks the integer form when the value is whole, so page boxes
// and coordinates stay free of spurious decimals.
func number(v float64) NumberObj {
	if v == float64(int64(v)) {
		return NumberInt(int64(v))
	}
	return NumberReal(v)
}
