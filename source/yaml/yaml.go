// Package yaml builds node trees from YAML text using gopkg.in/yaml.v3.
//
// Scalars are typed by their resolved tag, so `port: 80` becomes an int
// node and `port: "80"` a string node. Anchors and aliases are expanded,
// `<<` merge keys are applied and every node carries its source line and
// column. Duplicate keys are kept in document order unless
// Options.RejectDuplicateKeys is set.
package yaml

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	y "gopkg.in/yaml.v3"

	"github.com/reoring/docbind/node"
)

// Options configures conversion. When several are passed, the last wins.
type Options struct {
	// RejectDuplicateKeys turns a repeated mapping key into a
	// *DuplicateKeyError instead of keeping both pairs.
	RejectDuplicateKeys bool
}

// DuplicateKeyError reports a duplicate key found in a YAML mapping with both
// the first occurrence position and the duplicate occurrence position.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate YAML key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

// Parse converts the first document in data. Empty input yields a null node.
func Parse(data []byte, opts ...Options) (*node.Node, error) {
	r := NewReader(bytes.NewReader(data), opts...)
	n, err := r.Next()
	if errors.Is(err, io.EOF) {
		return node.Null(), nil
	}
	return n, err
}

// ParseAll converts every document of a multi-document stream.
func ParseAll(data []byte, opts ...Options) ([]*node.Node, error) {
	return NewReader(bytes.NewReader(data), opts...).ReadAll()
}

// Reader decodes a multi-document YAML stream one document at a time.
type Reader struct {
	dec *y.Decoder
	opt Options
}

// NewReader constructs a Reader over r.
func NewReader(r io.Reader, opts ...Options) *Reader {
	var opt Options
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	return &Reader{dec: y.NewDecoder(r), opt: opt}
}

// Next returns the next document. It returns (nil, io.EOF) when the stream
// is exhausted.
func (r *Reader) Next() (*node.Node, error) {
	var root y.Node
	if err := r.dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("yaml: %w", err)
	}
	return convert(&root, r.opt)
}

// ReadAll reads all remaining documents.
func (r *Reader) ReadAll() ([]*node.Node, error) {
	var out []*node.Node
	for {
		n, err := r.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, err
		}
		out = append(out, n)
	}
}

// FromNode converts an already decoded yaml.v3 node.
func FromNode(n *y.Node, opts ...Options) (*node.Node, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if n == nil {
		return node.Null(), nil
	}
	return convert(n, opt)
}

func convert(n *y.Node, opt Options) (*node.Node, error) {
	c := &converter{
		opt:     opt,
		anchors: map[*y.Node]*node.Node{},
		active:  map[*y.Node]bool{},
	}
	return c.node(n)
}

type converter struct {
	opt     Options
	anchors map[*y.Node]*node.Node
	active  map[*y.Node]bool
}

func (c *converter) node(n *y.Node) (*node.Node, error) {
	switch n.Kind {
	case y.DocumentNode:
		if len(n.Content) == 0 {
			return node.Null().At(n.Line, n.Column), nil
		}
		return c.node(n.Content[0])
	case y.AliasNode:
		return c.alias(n)
	case y.MappingNode:
		return c.anchored(n, c.mapping)
	case y.SequenceNode:
		return c.anchored(n, c.sequence)
	case y.ScalarNode:
		return c.anchored(n, c.scalar)
	case 0:
		return node.Null(), nil
	}
	return nil, fmt.Errorf("yaml: line %d: unsupported node kind %d", n.Line, n.Kind)
}

// anchored memoizes nodes that carry an anchor so that every alias to them
// shares one converted tree.
func (c *converter) anchored(n *y.Node, conv func(*y.Node) (*node.Node, error)) (*node.Node, error) {
	if n.Anchor == "" {
		return conv(n)
	}
	if out, ok := c.anchors[n]; ok {
		return out, nil
	}
	if c.active[n] {
		return nil, fmt.Errorf("yaml: line %d: anchor %q refers to itself", n.Line, n.Anchor)
	}
	c.active[n] = true
	out, err := conv(n)
	delete(c.active, n)
	if err != nil {
		return nil, err
	}
	c.anchors[n] = out
	return out, nil
}

func (c *converter) alias(n *y.Node) (*node.Node, error) {
	if n.Alias == nil {
		return nil, fmt.Errorf("yaml: line %d: unknown alias %q", n.Line, n.Value)
	}
	if c.active[n.Alias] {
		return nil, fmt.Errorf("yaml: line %d: alias %q refers to an enclosing node", n.Line, n.Value)
	}
	return c.node(n.Alias)
}

func (c *converter) sequence(n *y.Node) (*node.Node, error) {
	items := make([]*node.Node, 0, len(n.Content))
	for _, it := range n.Content {
		v, err := c.node(it)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return node.Sequence(items...).At(n.Line, n.Column), nil
}

func (c *converter) mapping(n *y.Node) (*node.Node, error) {
	var (
		pairs  []node.Pair
		merged []node.Pair
	)
	first := make(map[string][2]int, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind == y.ScalarNode && k.ShortTag() == "!!merge" {
			mp, err := c.merge(v)
			if err != nil {
				return nil, err
			}
			merged = append(merged, mp...)
			continue
		}
		if c.opt.RejectDuplicateKeys && k.Kind == y.ScalarNode {
			if pos, dup := first[k.Value]; dup {
				return nil, &DuplicateKeyError{Key: k.Value, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column}
			}
			first[k.Value] = [2]int{k.Line, k.Column}
		}
		kn, err := c.node(k)
		if err != nil {
			return nil, err
		}
		vn, err := c.node(v)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, node.KV(kn, vn))
	}
	if len(merged) > 0 {
		pairs = mergePairs(merged, pairs)
	}
	return node.Mapping(pairs...).At(n.Line, n.Column), nil
}

// merge resolves the value of a `<<` key: a mapping, an alias of one, or a
// sequence of those. Earlier mappings in a sequence take precedence.
func (c *converter) merge(v *y.Node) ([]node.Pair, error) {
	src := v
	if src.Kind == y.AliasNode {
		src = src.Alias
	}
	if src != nil && src.Kind == y.SequenceNode {
		var out []node.Pair
		for _, it := range src.Content {
			mp, err := c.merge(it)
			if err != nil {
				return nil, err
			}
			out = mergePairs(mp, out)
		}
		return out, nil
	}
	mn, err := c.node(v)
	if err != nil {
		return nil, err
	}
	if mn.Kind() != node.KindMapping {
		return nil, fmt.Errorf("yaml: line %d: merge value must be a mapping, got %s", v.Line, mn.Kind())
	}
	return mn.Pairs(), nil
}

// mergePairs returns base followed by the pairs of over, dropping any base
// pair whose key over also defines.
func mergePairs(base, over []node.Pair) []node.Pair {
	if len(base) == 0 {
		return over
	}
	defined := make(map[string]bool, len(over))
	for _, p := range over {
		if s, ok := p.Key.Raw(); ok {
			defined[p.Key.Kind().String()+":"+s] = true
		}
	}
	out := make([]node.Pair, 0, len(base)+len(over))
	for _, p := range base {
		if s, ok := p.Key.Raw(); ok && defined[p.Key.Kind().String()+":"+s] {
			continue
		}
		out = append(out, p)
	}
	return append(out, over...)
}

func (c *converter) scalar(n *y.Node) (*node.Node, error) {
	out, err := scalarValue(n)
	if err != nil {
		return nil, fmt.Errorf("yaml: line %d: %w", n.Line, err)
	}
	switch out.Kind() {
	case node.KindBool, node.KindInt, node.KindFloat, node.KindTimestamp:
		out = out.WithRaw(n.Value)
	}
	return out.At(n.Line, n.Column), nil
}

func scalarValue(n *y.Node) (*node.Node, error) {
	switch n.ShortTag() {
	case "!!null":
		return node.Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return node.Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return node.Int(i), nil
		}
		var u uint64
		if err := n.Decode(&u); err != nil {
			return nil, err
		}
		return node.Uint(u), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return node.Float(f), nil
	case "!!timestamp":
		var t time.Time
		if err := n.Decode(&t); err != nil {
			return nil, err
		}
		return node.Timestamp(t), nil
	case "!!binary":
		raw := strings.Map(func(r rune) rune {
			switch r {
			case ' ', '\t', '\n', '\r':
				return -1
			}
			return r
		}, n.Value)
		b, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid !!binary value: %w", err)
		}
		return node.Binary(b), nil
	}
	return node.String(n.Value), nil
}
