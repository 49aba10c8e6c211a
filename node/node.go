// Package node defines the read-only document tree consumed by docbind.
//
// A Node is produced by a parser (see source/yaml and source/json) or built by
// hand with the constructors below. Nodes are never mutated after
// construction, so one tree can be shared by concurrent mapping calls.
package node

import (
	"encoding/base64"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind tags the shape of a Node.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindBinary
	KindTimestamp
	KindSequence
	KindMapping
)

var kindNames = [...]string{
	KindNull:      "null",
	KindBool:      "bool",
	KindInt:       "int",
	KindFloat:     "float",
	KindString:    "string",
	KindBinary:    "binary",
	KindTimestamp: "timestamp",
	KindSequence:  "sequence",
	KindMapping:   "mapping",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// IsScalar reports whether k is neither a sequence nor a mapping.
func (k Kind) IsScalar() bool { return k != KindSequence && k != KindMapping }

// Node is one element of a document tree. The zero value and a nil *Node both
// read as null.
type Node struct {
	kind     Kind
	b        bool
	i        int64
	u        uint64
	unsigned bool
	f        float64
	s        string
	bin      []byte
	t        time.Time
	items    []*Node
	pairs    []Pair
	raw      string // source text of a plain scalar, if recorded
	line     int
	col      int
}

// Pair is one key/value entry of a mapping. Keys are nodes, not strings: a
// document may use any scalar (or even a container) as a key.
type Pair struct {
	Key   *Node
	Value *Node
}

func Null() *Node           { return &Node{kind: KindNull} }
func Bool(v bool) *Node     { return &Node{kind: KindBool, b: v} }
func Int(v int64) *Node     { return &Node{kind: KindInt, i: v} }
func Float(v float64) *Node { return &Node{kind: KindFloat, f: v} }
func String(v string) *Node { return &Node{kind: KindString, s: v} }

// Timestamp returns a timestamp node.
func Timestamp(t time.Time) *Node { return &Node{kind: KindTimestamp, t: t} }

// Uint returns an integer node. Values that fit in int64 are stored signed.
func Uint(v uint64) *Node {
	if v <= math.MaxInt64 {
		return Int(int64(v))
	}
	return &Node{kind: KindInt, u: v, unsigned: true}
}

// Binary returns a binary node holding a copy of b.
func Binary(b []byte) *Node {
	return &Node{kind: KindBinary, bin: append([]byte(nil), b...)}
}

// Sequence returns a sequence of the given items. Nil items read as null.
func Sequence(items ...*Node) *Node {
	return &Node{kind: KindSequence, items: append([]*Node(nil), items...)}
}

// Mapping returns a mapping with pairs kept in the given order, duplicates
// included.
func Mapping(pairs ...Pair) *Node {
	return &Node{kind: KindMapping, pairs: append([]Pair(nil), pairs...)}
}

// P builds a pair with a string key.
func P(key string, value *Node) Pair { return Pair{Key: String(key), Value: value} }

// KV builds a pair with an arbitrary key node.
func KV(key, value *Node) Pair { return Pair{Key: key, Value: value} }

// At returns a copy of n carrying a source position (1-based).
func (n *Node) At(line, col int) *Node {
	c := Null()
	if n != nil {
		*c = *n
	}
	c.line, c.col = line, col
	return c
}

// WithRaw returns a copy of n remembering the scalar text as written in the
// source, e.g. "01234" for an integer parsed as 668. Containers ignore it.
func (n *Node) WithRaw(text string) *Node {
	c := Null()
	if n != nil {
		*c = *n
	}
	if c.Kind().IsScalar() {
		c.raw = text
	}
	return c
}

func (n *Node) Kind() Kind {
	if n == nil {
		return KindNull
	}
	return n.kind
}

// Line returns the 1-based source line, or 0 when unknown.
func (n *Node) Line() int {
	if n == nil {
		return 0
	}
	return n.line
}

// Column returns the 1-based source column, or 0 when unknown.
func (n *Node) Column() int {
	if n == nil {
		return 0
	}
	return n.col
}

func (n *Node) IsNull() bool   { return n.Kind() == KindNull }
func (n *Node) IsScalar() bool { return n.Kind().IsScalar() }

// Len returns the number of items of a sequence or pairs of a mapping.
func (n *Node) Len() int {
	switch n.Kind() {
	case KindSequence:
		return len(n.items)
	case KindMapping:
		return len(n.pairs)
	}
	return 0
}

// Item returns the i-th sequence element. It panics when out of range.
func (n *Node) Item(i int) *Node { return n.items[i] }

// Items returns a copy of the sequence elements.
func (n *Node) Items() []*Node {
	if n.Kind() != KindSequence {
		return nil
	}
	return append([]*Node(nil), n.items...)
}

// Pair returns the i-th mapping entry. It panics when out of range.
func (n *Node) Pair(i int) Pair { return n.pairs[i] }

// Pairs returns a copy of the mapping entries in document order.
func (n *Node) Pairs() []Pair {
	if n.Kind() != KindMapping {
		return nil
	}
	return append([]Pair(nil), n.pairs...)
}

// Get returns the value of the last pair whose key text equals key.
func (n *Node) Get(key string) (*Node, bool) {
	if n.Kind() != KindMapping {
		return nil, false
	}
	for i := len(n.pairs) - 1; i >= 0; i-- {
		k := n.pairs[i].Key
		if k.IsNull() {
			continue
		}
		if s, ok := k.Raw(); ok && s == key {
			return n.pairs[i].Value, true
		}
	}
	return nil, false
}

func (n *Node) AsBool() (bool, bool) {
	if n.Kind() != KindBool {
		return false, false
	}
	return n.b, true
}

// AsInt returns the integer value when it fits in int64.
func (n *Node) AsInt() (int64, bool) {
	if n.Kind() != KindInt || n.unsigned {
		return 0, false
	}
	return n.i, true
}

// AsUint returns the integer value when it is non-negative.
func (n *Node) AsUint() (uint64, bool) {
	if n.Kind() != KindInt {
		return 0, false
	}
	if n.unsigned {
		return n.u, true
	}
	if n.i < 0 {
		return 0, false
	}
	return uint64(n.i), true
}

// AsFloat returns float and integer nodes as float64.
func (n *Node) AsFloat() (float64, bool) {
	switch n.Kind() {
	case KindFloat:
		return n.f, true
	case KindInt:
		if n.unsigned {
			return float64(n.u), true
		}
		return float64(n.i), true
	}
	return 0, false
}

func (n *Node) AsString() (string, bool) {
	if n.Kind() != KindString {
		return "", false
	}
	return n.s, true
}

// AsBinary returns a copy of the binary payload.
func (n *Node) AsBinary() ([]byte, bool) {
	if n.Kind() != KindBinary {
		return nil, false
	}
	return append([]byte(nil), n.bin...), true
}

func (n *Node) AsTime() (time.Time, bool) {
	if n.Kind() != KindTimestamp {
		return time.Time{}, false
	}
	return n.t, true
}

// Text renders a scalar in its canonical textual form. Containers report
// false; null renders as the empty string.
func (n *Node) Text() (string, bool) {
	switch n.Kind() {
	case KindNull:
		return "", true
	case KindBool:
		return strconv.FormatBool(n.b), true
	case KindInt:
		if n.unsigned {
			return strconv.FormatUint(n.u, 10), true
		}
		return strconv.FormatInt(n.i, 10), true
	case KindFloat:
		return formatFloat(n.f), true
	case KindString:
		return n.s, true
	case KindBinary:
		return base64.StdEncoding.EncodeToString(n.bin), true
	case KindTimestamp:
		return n.t.Format(time.RFC3339Nano), true
	}
	return "", false
}

// Raw returns the scalar text as written in the source document when the
// parser recorded it, and Text otherwise.
func (n *Node) Raw() (string, bool) {
	if n != nil && n.raw != "" {
		return n.raw, true
	}
	return n.Text()
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	case math.IsNaN(f):
		return ".nan"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// String renders the tree in a compact flow style for debugging.
func (n *Node) String() string {
	b := &strings.Builder{}
	n.render(b)
	return b.String()
}

func (n *Node) render(b *strings.Builder) {
	switch n.Kind() {
	case KindNull:
		b.WriteString("null")
	case KindString:
		b.WriteString(strconv.Quote(n.s))
	case KindBinary:
		b.WriteString("!!binary ")
		b.WriteString(base64.StdEncoding.EncodeToString(n.bin))
	case KindSequence:
		b.WriteByte('[')
		for i, it := range n.items {
			if i > 0 {
				b.WriteString(", ")
			}
			it.render(b)
		}
		b.WriteByte(']')
	case KindMapping:
		b.WriteByte('{')
		for i, p := range n.pairs {
			if i > 0 {
				b.WriteString(", ")
			}
			p.Key.render(b)
			b.WriteString(": ")
			p.Value.render(b)
		}
		b.WriteByte('}')
	default:
		s, _ := n.Text()
		b.WriteString(s)
	}
}
