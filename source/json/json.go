// Package json builds node trees from JSON text using goccy/go-json's
// streaming token decoder. Object keys keep their document order and
// duplicate keys are preserved, which a decode into map[string]any would
// lose.
package json

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	j "github.com/goccy/go-json"

	"github.com/reoring/docbind/node"
)

// DefaultMaxDepth bounds container nesting when Options.MaxDepth is zero.
const DefaultMaxDepth = 10000

// Options configures parsing. When several are passed, the last wins.
type Options struct {
	MaxDepth int
}

// ParseReader reads r to the end and parses it like Parse.
func ParseReader(r io.Reader, opts ...Options) (*node.Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	return Parse(data, opts...)
}

// Parse decodes exactly one JSON value from data; trailing data is an
// error. Nodes carry the 1-based line and column where their value starts.
func Parse(data []byte, opts ...Options) (*node.Node, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if opt.MaxDepth <= 0 {
		opt.MaxDepth = DefaultMaxDepth
	}
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	p := &parser{dec: dec, data: data, lines: lineStarts(data), maxDepth: opt.MaxDepth}
	n, err := p.value(0)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return nil, fmt.Errorf("json: %w", err)
	}
	return n, nil
}

type parser struct {
	dec      *j.Decoder
	data     []byte
	lines    []int // offsets of line starts
	maxDepth int
	line     int // position of the last token read
	col      int
}

func (p *parser) next() (j.Token, error) {
	p.mark()
	tok, err := p.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("json: %w", err)
	}
	return tok, nil
}

// mark records where the next token starts. InputOffset points just past
// the previous token; separators and whitespace are skipped here.
func (p *parser) mark() {
	off := int(p.dec.InputOffset())
	for off < len(p.data) && isSkippable(p.data[off]) {
		off++
	}
	i := sort.SearchInts(p.lines, off+1) - 1
	p.line, p.col = i+1, off-p.lines[i]+1
}

func isSkippable(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', ',', ':':
		return true
	}
	return false
}

func lineStarts(data []byte) []int {
	out := []int{0}
	for i, c := range data {
		if c == '\n' {
			out = append(out, i+1)
		}
	}
	return out
}

func (p *parser) value(depth int) (*node.Node, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	return p.fromToken(tok, depth)
}

func (p *parser) fromToken(tok j.Token, depth int) (*node.Node, error) {
	line, col := p.line, p.col
	n, err := p.convert(tok, depth)
	if err != nil {
		return nil, err
	}
	return n.At(line, col), nil
}

func (p *parser) convert(tok j.Token, depth int) (*node.Node, error) {
	switch v := tok.(type) {
	case j.Delim:
		if depth >= p.maxDepth {
			return nil, fmt.Errorf("json: nesting deeper than %d levels", p.maxDepth)
		}
		switch v {
		case '{':
			return p.object(depth + 1)
		case '[':
			return p.array(depth + 1)
		}
		return nil, fmt.Errorf("json: unexpected delimiter %q", rune(v))
	case string:
		return node.String(v), nil
	case bool:
		return node.Bool(v), nil
	case j.Number:
		return number(string(v))
	case float64:
		return node.Float(v), nil
	case nil:
		return node.Null(), nil
	}
	return nil, fmt.Errorf("json: unexpected token %T", tok)
}

func (p *parser) object(depth int) (*node.Node, error) {
	var pairs []node.Pair
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		if d, ok := tok.(j.Delim); ok && d == '}' {
			return node.Mapping(pairs...), nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("json: object key must be a string, got %T", tok)
		}
		val, err := p.value(depth)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, node.P(key, val))
	}
}

func (p *parser) array(depth int) (*node.Node, error) {
	var items []*node.Node
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		if d, ok := tok.(j.Delim); ok && d == ']' {
			return node.Sequence(items...), nil
		}
		it, err := p.fromToken(tok, depth)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
}

// number keeps integers exact: int64 first, then uint64, else float64. The
// literal is kept as the node's raw text.
func number(s string) (*node.Node, error) {
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return node.Int(i).WithRaw(s), nil
		}
		if u, err := strconv.ParseUint(s, 10, 64); err == nil {
			return node.Uint(u).WithRaw(s), nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("json: invalid number %q: %w", s, err)
	}
	return node.Float(f).WithRaw(s), nil
}
