package docbind

import (
	"encoding"
	"reflect"
	"strconv"
	"time"
)

// Class is the dispatch class of a destination type.
type Class uint8

const (
	ClassScalar Class = iota + 1
	ClassOptional
	ClassSequence
	ClassMap
	ClassRecord
)

func (c Class) String() string {
	switch c {
	case ClassScalar:
		return "scalar"
	case ClassOptional:
		return "optional"
	case ClassSequence:
		return "sequence"
	case ClassMap:
		return "map"
	case ClassRecord:
		return "record"
	}
	return "class(" + strconv.Itoa(int(c)) + ")"
}

// ScalarKind selects the conversion applied to a scalar document value.
// Integer and float widths come from the Go type carried by Kind.
type ScalarKind uint8

const (
	ScalarBool ScalarKind = iota + 1
	ScalarInt
	ScalarUint
	ScalarFloat
	ScalarString
	ScalarBinary
	ScalarTimestamp
	ScalarDuration
	ScalarText // encoding.TextUnmarshaler
)

var scalarNames = map[ScalarKind]string{
	ScalarBool:      "bool",
	ScalarInt:       "int",
	ScalarUint:      "uint",
	ScalarFloat:     "float",
	ScalarString:    "string",
	ScalarBinary:    "binary",
	ScalarTimestamp: "timestamp",
	ScalarDuration:  "duration",
	ScalarText:      "text",
}

func (k ScalarKind) String() string {
	if s, ok := scalarNames[k]; ok {
		return s
	}
	return "scalar(" + strconv.Itoa(int(k)) + ")"
}

// Kind is the classification of one destination type. Only the members
// relevant to Class are set:
//
//	ClassScalar, ClassOptional: Scalar
//	ClassSequence:              Elem
//	ClassMap:                   Key, Elem
//	ClassRecord:                Record
//
// Type is always the Go type being classified.
type Kind struct {
	Class  Class
	Scalar ScalarKind
	Elem   *Kind
	Key    *Kind
	Record *Schema
	Type   reflect.Type
}

// String describes the kind for diagnostics, e.g. "sequence of int32".
func (k Kind) String() string {
	switch k.Class {
	case ClassScalar:
		return scalarName(k.Scalar, k.Type)
	case ClassOptional:
		return "optional " + scalarName(k.Scalar, k.Type.Elem())
	case ClassSequence:
		return "sequence of " + k.Elem.String()
	case ClassMap:
		return "map of " + k.Key.String() + " to " + k.Elem.String()
	case ClassRecord:
		if k.Type != nil && k.Type.Name() != "" {
			return "record " + k.Type.Name()
		}
		return "record"
	}
	return "invalid"
}

func scalarName(sk ScalarKind, t reflect.Type) string {
	switch sk {
	case ScalarBinary, ScalarTimestamp, ScalarDuration:
		return sk.String()
	}
	if t == nil {
		return sk.String()
	}
	return t.String()
}

var (
	timeType            = reflect.TypeFor[time.Time]()
	durationType        = reflect.TypeFor[time.Duration]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// scalarKindOf reports the scalar conversion for t, if any.
func scalarKindOf(t reflect.Type) (ScalarKind, bool) {
	switch {
	case t == timeType:
		return ScalarTimestamp, true
	case t == durationType:
		return ScalarDuration, true
	case t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface && reflect.PointerTo(t).Implements(textUnmarshalerType):
		return ScalarText, true
	}
	switch t.Kind() {
	case reflect.Bool:
		return ScalarBool, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return ScalarInt, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return ScalarUint, true
	case reflect.Float32, reflect.Float64:
		return ScalarFloat, true
	case reflect.String:
		return ScalarString, true
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return ScalarBinary, true
		}
	}
	return 0, false
}

// mapKeyScalars are the scalar kinds accepted as map keys.
var mapKeyScalars = map[ScalarKind]bool{
	ScalarString: true,
	ScalarInt:    true,
	ScalarUint:   true,
	ScalarBool:   true,
	ScalarText:   true,
}

// Classify returns the Kind of t. Struct types reached through t get their
// schemas derived from docbind struct tags and cached.
func Classify(t reflect.Type) (Kind, error) {
	if t == nil {
		return Kind{}, &SchemaError{Reason: "nil type"}
	}
	var k Kind
	err := withBuilder(func(b *builder) error {
		var err error
		k, err = b.classify(t)
		return err
	})
	return k, err
}

func (b *builder) classify(t reflect.Type) (Kind, error) {
	if t.Kind() == reflect.Pointer {
		if sk, ok := scalarKindOf(t.Elem()); ok {
			return Kind{Class: ClassOptional, Scalar: sk, Type: t}, nil
		}
		return Kind{}, unsupported(t, "pointer to a non-scalar type")
	}
	if sk, ok := scalarKindOf(t); ok {
		return Kind{Class: ClassScalar, Scalar: sk, Type: t}, nil
	}
	switch t.Kind() {
	case reflect.Slice:
		ek, err := b.classify(t.Elem())
		if err != nil {
			return Kind{}, err
		}
		if ek.Class == ClassSequence || ek.Class == ClassMap {
			return Kind{}, unsupported(t, "sequence elements must be scalar, optional or record types")
		}
		return Kind{Class: ClassSequence, Elem: &ek, Type: t}, nil
	case reflect.Map:
		sk, ok := scalarKindOf(t.Key())
		if !ok || !mapKeyScalars[sk] {
			return Kind{}, unsupported(t, "map keys must be string, integer, bool or text types")
		}
		vk, err := b.classify(t.Elem())
		if err != nil {
			return Kind{}, err
		}
		kk := Kind{Class: ClassScalar, Scalar: sk, Type: t.Key()}
		return Kind{Class: ClassMap, Key: &kk, Elem: &vk, Type: t}, nil
	case reflect.Struct:
		s, err := b.schema(t)
		if err != nil {
			return Kind{}, err
		}
		return Kind{Class: ClassRecord, Record: s, Type: t}, nil
	}
	return Kind{}, unsupported(t, "unsupported type")
}

func unsupported(t reflect.Type, reason string) *SchemaError {
	return &SchemaError{Type: t, Reason: reason}
}
