package dsl

import (
	"fmt"
	"reflect"

	"github.com/reoring/docbind"
)

// Record returns a typed record builder for struct type T.
func Record[T any]() *recordBuilder[T] {
	return &recordBuilder[T]{index: map[string]int{}}
}

type recordBuilder[T any] struct {
	specs []docbind.FieldSpec
	index map[string]int // Go field name -> position in specs
	err   error
}

// fieldStep is the builder positioned on one field, enabling chains like
// Field(...).Required().
type fieldStep[T any] struct {
	b *recordBuilder[T]
	i int
}

// Field registers goName under the document key name. Registering the same Go
// field twice is an error reported by Build.
func (b *recordBuilder[T]) Field(goName, name string) *fieldStep[T] {
	if _, dup := b.index[goName]; dup && b.err == nil {
		b.err = fmt.Errorf("dsl: field %s declared twice", goName)
	}
	b.index[goName] = len(b.specs)
	b.specs = append(b.specs, docbind.FieldSpec{GoName: goName, Name: name})
	return &fieldStep[T]{b: b, i: len(b.specs) - 1}
}

// Require marks already registered fields as required.
func (b *recordBuilder[T]) Require(goNames ...string) *recordBuilder[T] {
	for _, g := range goNames {
		i, ok := b.index[g]
		if !ok {
			if b.err == nil {
				b.err = fmt.Errorf("dsl: Require(%q): field not declared", g)
			}
			continue
		}
		b.specs[i].Required = true
	}
	return b
}

// Nested replaces the schema used for the record reached through goName.
func (b *recordBuilder[T]) Nested(goName string, s *docbind.Schema) *recordBuilder[T] {
	i, ok := b.index[goName]
	if !ok {
		if b.err == nil {
			b.err = fmt.Errorf("dsl: Nested(%q): field not declared", goName)
		}
		return b
	}
	b.specs[i].Record = s
	return b
}

// Build validates the declarations and returns the schema.
func (b *recordBuilder[T]) Build() (*docbind.Schema, error) {
	if b.err != nil {
		return nil, b.err
	}
	return docbind.NewSchema(reflect.TypeFor[T](), b.specs...)
}

// MustBuild is Build that panics on error.
func (b *recordBuilder[T]) MustBuild() *docbind.Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// ----- fieldStep methods -----

// Required marks the current field as required and returns the builder.
func (f *fieldStep[T]) Required() *recordBuilder[T] {
	f.b.specs[f.i].Required = true
	return f.b
}

// Optional clears the required flag of the current field.
func (f *fieldStep[T]) Optional() *recordBuilder[T] {
	f.b.specs[f.i].Required = false
	return f.b
}

// Nested sets the record schema of the current field.
func (f *fieldStep[T]) Nested(s *docbind.Schema) *recordBuilder[T] {
	f.b.specs[f.i].Record = s
	return f.b
}

// Forward helpers to keep chaining ergonomics.
func (f *fieldStep[T]) Field(goName, name string) *fieldStep[T] { return f.b.Field(goName, name) }
func (f *fieldStep[T]) Build() (*docbind.Schema, error)         { return f.b.Build() }
func (f *fieldStep[T]) MustBuild() *docbind.Schema              { return f.b.MustBuild() }
