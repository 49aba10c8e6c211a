package docbind

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Field describes one mapped struct field.
type Field struct {
	Name     string // Document key.
	GoName   string // Struct field name.
	Required bool
	Kind     Kind
	Index    []int // reflect.Value.FieldByIndex path.
}

// Schema is the ordered list of mapped fields of one struct type, in
// declaration order. A Schema is immutable once returned.
type Schema struct {
	Type   reflect.Type
	Fields []Field

	byName map[string]int
}

// Lookup returns the index of the first field whose Name equals name.
func (s *Schema) Lookup(name string) (int, bool) {
	if s.byName != nil {
		i, ok := s.byName[name]
		return i, ok
	}
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return i, true
		}
	}
	return -1, false
}

// Field returns the field mapped from document key name.
func (s *Schema) Field(name string) (*Field, bool) {
	i, ok := s.Lookup(name)
	if !ok {
		return nil, false
	}
	return &s.Fields[i], true
}

// Required returns the document keys of the required fields.
func (s *Schema) Required() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

// validate rejects shadowed names and indexes the fields.
func (s *Schema) validate() error {
	idx := make(map[string]int, len(s.Fields))
	for i, f := range s.Fields {
		if f.Name == "" {
			return &SchemaError{Type: s.Type, Field: f.GoName, Reason: "empty document key"}
		}
		if j, dup := idx[f.Name]; dup {
			return &SchemaError{Type: s.Type, Field: f.GoName,
				Reason: fmt.Sprintf("document key %q already mapped to field %s", f.Name, s.Fields[j].GoName)}
		}
		idx[f.Name] = i
	}
	s.byName = idx
	return nil
}

// SchemaError reports a destination type that cannot be mapped. It is
// raised before any document is processed.
type SchemaError struct {
	Type   reflect.Type
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	b := &strings.Builder{}
	b.WriteString("docbind: ")
	if e.Type != nil {
		b.WriteString(e.Type.String())
		if e.Field != "" {
			b.WriteByte('.')
		}
	}
	b.WriteString(e.Field)
	if e.Type != nil || e.Field != "" {
		b.WriteString(": ")
	}
	b.WriteString(e.Reason)
	return b.String()
}

var (
	schemaCache sync.Map // reflect.Type -> schemaEntry
	buildMu     sync.Mutex
)

type schemaEntry struct {
	s   *Schema
	err error
}

// builder derives schemas for one top-level request. Schemas under
// construction sit in pending so recursive types resolve to one pointer;
// they are published only when the whole request succeeds.
type builder struct {
	pending map[reflect.Type]*Schema
}

func withBuilder(fn func(*builder) error) error {
	buildMu.Lock()
	defer buildMu.Unlock()
	b := &builder{pending: map[reflect.Type]*Schema{}}
	if err := fn(b); err != nil {
		return err
	}
	for t, s := range b.pending {
		schemaCache.Store(t, schemaEntry{s: s})
	}
	return nil
}

// SchemaOf returns the tag-derived schema of struct type T.
func SchemaOf[T any]() (*Schema, error) { return SchemaFor(reflect.TypeFor[T]()) }

// MustSchemaOf is like SchemaOf but panics on error.
func MustSchemaOf[T any]() *Schema {
	s, err := SchemaOf[T]()
	if err != nil {
		panic(err)
	}
	return s
}

// SchemaFor returns the tag-derived schema of struct type t. Results,
// including errors, are cached per type; concurrent callers are safe.
func SchemaFor(t reflect.Type) (*Schema, error) {
	if t == nil {
		return nil, &SchemaError{Reason: "nil type"}
	}
	if e, ok := schemaCache.Load(t); ok {
		ent := e.(schemaEntry)
		return ent.s, ent.err
	}
	var s *Schema
	err := withBuilder(func(b *builder) error {
		var err error
		s, err = b.schema(t)
		return err
	})
	if err != nil {
		schemaCache.Store(t, schemaEntry{err: err})
		return nil, err
	}
	return s, nil
}

func (b *builder) schema(t reflect.Type) (*Schema, error) {
	if e, ok := schemaCache.Load(t); ok {
		ent := e.(schemaEntry)
		return ent.s, ent.err
	}
	if s, ok := b.pending[t]; ok {
		return s, nil
	}
	if t.Kind() != reflect.Struct {
		return nil, &SchemaError{Type: t, Reason: "destination must be a struct type"}
	}
	s := &Schema{Type: t}
	b.pending[t] = s
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		spec, has, err := lookupTag(sf)
		if err != nil {
			return nil, &SchemaError{Type: t, Field: sf.Name, Reason: err.Error()}
		}
		if !has || spec.ignore {
			continue
		}
		if !sf.IsExported() {
			return nil, &SchemaError{Type: t, Field: sf.Name, Reason: "unexported field carries a " + TagName + " tag"}
		}
		k, err := b.classify(sf.Type)
		if err != nil {
			return nil, fieldError(t, sf.Name, err)
		}
		s.Fields = append(s.Fields, Field{
			Name:     spec.name,
			GoName:   sf.Name,
			Required: spec.required,
			Kind:     k,
			Index:    sf.Index,
		})
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// fieldError attributes a classification error to the field that reached it.
func fieldError(t reflect.Type, field string, err error) error {
	se, ok := err.(*SchemaError)
	if !ok {
		return &SchemaError{Type: t, Field: field, Reason: err.Error()}
	}
	if se.Field != "" {
		return se
	}
	reason := se.Reason
	if se.Type != nil {
		reason = se.Type.String() + ": " + reason
	}
	return &SchemaError{Type: t, Field: field, Reason: reason}
}

// FieldSpec declares one mapped field for NewSchema.
type FieldSpec struct {
	GoName   string // Struct field name.
	Name     string // Document key; required.
	Required bool
	// Record, when set, replaces the schema of the record reached through the
	// field's type (the field itself, or the element of a sequence or map).
	Record *Schema
}

// NewSchema builds a schema for struct type t from explicit declarations
// instead of struct tags. Fields keep the order of specs.
func NewSchema(t reflect.Type, specs ...FieldSpec) (*Schema, error) {
	if t == nil || t.Kind() != reflect.Struct {
		return nil, &SchemaError{Type: t, Reason: "destination must be a struct type"}
	}
	s := &Schema{Type: t, Fields: make([]Field, 0, len(specs))}
	err := withBuilder(func(b *builder) error {
		for _, spec := range specs {
			sf, ok := t.FieldByName(spec.GoName)
			if !ok || len(sf.Index) != 1 {
				return &SchemaError{Type: t, Field: spec.GoName, Reason: "no such field"}
			}
			if !sf.IsExported() {
				return &SchemaError{Type: t, Field: spec.GoName, Reason: "field is not exported"}
			}
			k, err := b.classify(sf.Type)
			if err != nil {
				return fieldError(t, sf.Name, err)
			}
			if spec.Record != nil {
				var ok bool
				if k, ok = withRecord(k, spec.Record); !ok {
					return &SchemaError{Type: t, Field: sf.Name, Reason: "record schema does not match the field type"}
				}
			}
			s.Fields = append(s.Fields, Field{
				Name:     spec.Name,
				GoName:   sf.Name,
				Required: spec.Required,
				Kind:     k,
				Index:    sf.Index,
			})
		}
		return s.validate()
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// withRecord returns a copy of k whose innermost record uses rs. Shared Elem
// pointers of cached kinds are never modified.
func withRecord(k Kind, rs *Schema) (Kind, bool) {
	switch k.Class {
	case ClassRecord:
		if rs.Type != k.Type {
			return k, false
		}
		k.Record = rs
		return k, true
	case ClassSequence, ClassMap:
		ek, ok := withRecord(*k.Elem, rs)
		if !ok {
			return k, false
		}
		k.Elem = &ek
		return k, true
	}
	return k, false
}
