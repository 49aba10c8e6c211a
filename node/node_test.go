package node_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/docbind/node"
)

func TestNilNodeReadsAsNull(t *testing.T) {
	var n *node.Node
	assert.Equal(t, node.KindNull, n.Kind())
	assert.True(t, n.IsNull())
	assert.Equal(t, 0, n.Len())
	assert.Nil(t, n.Items())
	assert.Equal(t, "null", n.String())
}

func TestUintStoresSignedWhenItFits(t *testing.T) {
	small := node.Uint(42)
	i, ok := small.AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(42), i)

	big := node.Uint(math.MaxUint64)
	_, ok = big.AsInt()
	assert.False(t, ok, "values above MaxInt64 do not fit int64")
	u, ok := big.AsUint()
	require.True(t, ok)
	assert.Equal(t, uint64(math.MaxUint64), u)

	_, ok = node.Int(-1).AsUint()
	assert.False(t, ok)
}

func TestMappingKeepsOrderAndDuplicates(t *testing.T) {
	m := node.Mapping(
		node.P("a", node.Int(1)),
		node.P("b", node.Int(2)),
		node.P("a", node.Int(3)),
	)
	require.Equal(t, 3, m.Len())
	k, _ := m.Pair(2).Key.AsString()
	assert.Equal(t, "a", k)

	v, ok := m.Get("a")
	require.True(t, ok)
	i, _ := v.AsInt()
	assert.Equal(t, int64(3), i, "Get returns the last occurrence")

	_, ok = m.Get("zzz")
	assert.False(t, ok)
}

func TestGetMatchesNonStringKeysByText(t *testing.T) {
	m := node.Mapping(node.KV(node.Int(8080), node.String("http")))
	v, ok := m.Get("8080")
	require.True(t, ok)
	s, _ := v.AsString()
	assert.Equal(t, "http", s)
}

func TestConstructorsCopyInput(t *testing.T) {
	raw := []byte{1, 2, 3}
	b := node.Binary(raw)
	raw[0] = 9
	got, ok := b.AsBinary()
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, got)

	items := []*node.Node{node.Int(1)}
	seq := node.Sequence(items...)
	items[0] = node.Int(2)
	i, _ := seq.Item(0).AsInt()
	assert.Equal(t, int64(1), i)
}

func TestText(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	cases := []struct {
		n    *node.Node
		want string
		ok   bool
	}{
		{node.Null(), "", true},
		{node.Bool(true), "true", true},
		{node.Int(-7), "-7", true},
		{node.Float(1.5), "1.5", true},
		{node.Float(math.Inf(1)), ".inf", true},
		{node.String("x"), "x", true},
		{node.Binary([]byte("hi")), "aGk=", true},
		{node.Timestamp(ts), "2024-01-02T03:04:05Z", true},
		{node.Sequence(), "", false},
		{node.Mapping(), "", false},
	}
	for _, tc := range cases {
		got, ok := tc.n.Text()
		assert.Equal(t, tc.ok, ok, tc.n.Kind().String())
		assert.Equal(t, tc.want, got, tc.n.Kind().String())
	}
}

func TestAtKeepsValueAndAddsPosition(t *testing.T) {
	n := node.String("v").At(3, 7)
	assert.Equal(t, 3, n.Line())
	assert.Equal(t, 7, n.Column())
	s, _ := n.AsString()
	assert.Equal(t, "v", s)
}

func TestStringRendering(t *testing.T) {
	n := node.Mapping(
		node.P("name", node.String("Ann")),
		node.P("tags", node.Sequence(node.Int(1), node.Null())),
	)
	assert.Equal(t, `{"name": "Ann", "tags": [1, null]}`, n.String())
}

func TestRawPrefersSourceText(t *testing.T) {
	n := node.Int(668).WithRaw("01234").At(2, 5)
	raw, ok := n.Raw()
	assert.True(t, ok)
	assert.Equal(t, "01234", raw)
	text, _ := n.Text()
	assert.Equal(t, "668", text)
	assert.Equal(t, 2, n.Line())

	raw, _ = node.Float(1.1).Raw()
	assert.Equal(t, "1.1", raw, "without source text Raw falls back to Text")

	_, ok = node.Sequence().WithRaw("x").Raw()
	assert.False(t, ok)

	m := node.Mapping(node.KV(node.Int(7).WithRaw("007"), node.String("bond")))
	v, ok := m.Get("007")
	require.True(t, ok)
	s, _ := v.AsString()
	assert.Equal(t, "bond", s)
}
