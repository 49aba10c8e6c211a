package json

import (
	"strings"
	"testing"

	"github.com/reoring/docbind/node"
)

func TestParse_KeepsOrderAndDuplicates(t *testing.T) {
	root, err := Parse([]byte(`{"b": 1, "a": 2, "b": 3}`))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if root.Len() != 3 {
		t.Fatalf("expected 3 pairs, got %d", root.Len())
	}
	var keys []string
	for _, p := range root.Pairs() {
		s, _ := p.Key.AsString()
		keys = append(keys, s)
	}
	if strings.Join(keys, ",") != "b,a,b" {
		t.Fatalf("unexpected key order %v", keys)
	}
	v, _ := root.Get("b")
	if i, _ := v.AsInt(); i != 3 {
		t.Fatalf("expected last b to win on Get, got %d", i)
	}
}

func TestParse_Numbers(t *testing.T) {
	root, err := Parse([]byte(`[1, -2, 18446744073709551615, 1.5, 1e3, 99999999999999999999]`))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := []node.Kind{node.KindInt, node.KindInt, node.KindInt, node.KindFloat, node.KindFloat, node.KindFloat}
	for i, k := range want {
		if got := root.Item(i).Kind(); got != k {
			t.Fatalf("item %d: expected %v, got %v", i, k, got)
		}
	}
	if u, ok := root.Item(2).AsUint(); !ok || u != 18446744073709551615 {
		t.Fatalf("expected exact uint64, got %v %v", u, ok)
	}
	if i, _ := root.Item(1).AsInt(); i != -2 {
		t.Fatalf("expected -2, got %d", i)
	}
}

func TestParse_Scalars(t *testing.T) {
	root, err := Parse([]byte(`{"s": "x", "t": true, "n": null, "o": {}, "a": []}`))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	cases := map[string]node.Kind{
		"s": node.KindString,
		"t": node.KindBool,
		"n": node.KindNull,
		"o": node.KindMapping,
		"a": node.KindSequence,
	}
	for k, want := range cases {
		v, ok := root.Get(k)
		if !ok || v.Kind() != want {
			t.Fatalf("%s: expected %v, got %v", k, want, v.Kind())
		}
	}
}

func TestParse_TopLevelScalar(t *testing.T) {
	n, err := Parse([]byte(`"hi"`))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s, _ := n.AsString(); s != "hi" {
		t.Fatalf("expected hi, got %q", s)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"trailing":  `{"a": 1} {"b": 2}`,
		"truncated": `{"a": [1, 2`,
		"empty":     ``,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(in)); err == nil {
				t.Fatalf("expected error for %q", in)
			}
		})
	}
}

func TestParse_MaxDepth(t *testing.T) {
	in := strings.Repeat("[", 5) + strings.Repeat("]", 5)
	if _, err := Parse([]byte(in), Options{MaxDepth: 4}); err == nil {
		t.Fatalf("expected depth error")
	}
	if _, err := Parse([]byte(in), Options{MaxDepth: 5}); err != nil {
		t.Fatalf("unexpected err at limit: %v", err)
	}
}

func TestParseReader(t *testing.T) {
	n, err := ParseReader(strings.NewReader(`{"k": [1, "two"]}`))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	k, _ := n.Get("k")
	if k.Len() != 2 || k.Item(1).Kind() != node.KindString {
		t.Fatalf("unexpected tree %v", n)
	}
}

func TestParse_KeepsNumberText(t *testing.T) {
	root, err := Parse([]byte(`{"version": 1.10, "zip": 1e3, "n": 7}`))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for key, want := range map[string]string{"version": "1.10", "zip": "1e3", "n": "7"} {
		v, _ := root.Get(key)
		got, _ := v.Raw()
		if got != want {
			t.Fatalf("%s: expected raw %q, got %q", key, want, got)
		}
	}
	v, _ := root.Get("version")
	if f, _ := v.AsFloat(); f != 1.1 {
		t.Fatalf("expected value 1.1, got %v", f)
	}
}

func TestParse_Positions(t *testing.T) {
	root, err := Parse([]byte("{\n  \"name\": \"api\",\n  \"ports\": [80,\n    443]\n}"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if root.Line() != 1 || root.Column() != 1 {
		t.Fatalf("root at %d:%d", root.Line(), root.Column())
	}
	k := root.Pair(0).Key
	if k.Line() != 2 || k.Column() != 3 {
		t.Fatalf("key at %d:%d", k.Line(), k.Column())
	}
	v := root.Pair(0).Value
	if v.Line() != 2 || v.Column() != 11 {
		t.Fatalf("value at %d:%d", v.Line(), v.Column())
	}
	ports, _ := root.Get("ports")
	if ports.Item(1).Line() != 4 || ports.Item(1).Column() != 5 {
		t.Fatalf("second port at %d:%d", ports.Item(1).Line(), ports.Item(1).Column())
	}
}
