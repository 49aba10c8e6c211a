package docbind

import (
	"fmt"
	"reflect"

	"github.com/reoring/docbind/node"
)

// Map converts root into a new T using the tag-derived schema of T.
// The returned value is the record as far as mapping got; ok is the only
// correctness signal. Map panics with a *SchemaError when T cannot be mapped,
// since that is a programming error independent of any document.
func Map[T any](root *node.Node, opts ...Options) (T, bool) {
	return MapWith[T](MustSchemaOf[T](), root, opts...)
}

// MapWith is like Map but uses an explicit schema, for example one built
// with NewSchema or the dsl package. s.Type must be T.
func MapWith[T any](s *Schema, root *node.Node, opts ...Options) (T, bool) {
	var out T
	rv := reflect.ValueOf(&out).Elem()
	mustMatch(s, rv.Type())
	ok := newMapper(opts).run(s, root, rv)
	return out, ok
}

// MapWithMeta is like Map and also returns the presence flags of every
// matched field, keyed by JSON Pointer.
func MapWithMeta[T any](root *node.Node, opts ...Options) (Decoded[T], bool) {
	return MapWithMetaUsing[T](MustSchemaOf[T](), root, opts...)
}

// MapWithMetaUsing is MapWithMeta with an explicit schema.
func MapWithMetaUsing[T any](s *Schema, root *node.Node, opts ...Options) (Decoded[T], bool) {
	var dm Decoded[T]
	rv := reflect.ValueOf(&dm.Value).Elem()
	mustMatch(s, rv.Type())
	m := newMapper(opts)
	m.presence = PresenceMap{}
	ok := m.run(s, root, rv)
	dm.Presence = m.presence
	return dm, ok
}

// MapInto maps root onto the struct dst points to. Unlike Map, dst is not
// reset first: fields whose keys are absent keep the values the caller put
// there, at every level of nested records, which makes MapInto suitable for
// overlaying a document on defaults. Sequences and maps present in the
// document replace the destination's. A record key that repeats starts from
// zero like in Map.
// The error is non-nil only for structural problems with dst's type.
func MapInto(dst any, root *node.Node, opts ...Options) (bool, error) {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return false, &SchemaError{Type: reflect.TypeOf(dst), Reason: "destination must be a non-nil pointer to a struct"}
	}
	s, err := SchemaFor(rv.Elem().Type())
	if err != nil {
		return false, err
	}
	m := newMapper(opts)
	m.overlay = true
	return m.run(s, root, rv.Elem()), nil
}

func mustMatch(s *Schema, t reflect.Type) {
	if s == nil {
		panic(&SchemaError{Type: t, Reason: "nil schema"})
	}
	if s.Type != t {
		panic(&SchemaError{Type: t, Reason: fmt.Sprintf("schema describes %v", s.Type)})
	}
}
