package docbind_test

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/docbind"
	"github.com/reoring/docbind/node"
)

type tagged struct {
	First    string `docbind:"first,required"`
	Renamed  int    `docbind:"ignored,name=real"`
	Default  bool   `docbind:",optional"`
	Skipped  string `docbind:"-"`
	Untagged string
	unexp    string //nolint:unused
	Last     uint   `docbind:" last , required "`
}

func TestSchemaOf_Tags(t *testing.T) {
	s, err := docbind.SchemaOf[tagged]()
	require.NoError(t, err)
	var names, goNames []string
	for _, f := range s.Fields {
		names = append(names, f.Name)
		goNames = append(goNames, f.GoName)
	}
	assert.Equal(t, []string{"first", "real", "Default", "last"}, names)
	assert.Equal(t, []string{"First", "Renamed", "Default", "Last"}, goNames)
	assert.Equal(t, []string{"first", "last"}, s.Required())
	assert.Equal(t, reflect.TypeFor[tagged](), s.Type)

	f, ok := s.Field("real")
	require.True(t, ok)
	assert.Equal(t, []int{1}, f.Index)
	assert.Equal(t, docbind.ClassScalar, f.Kind.Class)
	_, ok = s.Field("Renamed")
	assert.False(t, ok)
	i, ok := s.Lookup("last")
	assert.True(t, ok)
	assert.Equal(t, 3, i)
}

func TestSchemaOf_Cached(t *testing.T) {
	a, err := docbind.SchemaOf[tagged]()
	require.NoError(t, err)
	b, err := docbind.SchemaFor(reflect.TypeFor[tagged]())
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestSchemaOf_Concurrent(t *testing.T) {
	type fresh struct {
		A string            `docbind:"a"`
		B []item            `docbind:"b"`
		C map[string]person `docbind:"c"`
	}
	const n = 16
	out := make([]*docbind.Schema, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out[i] = docbind.MustSchemaOf[fresh]()
		}(i)
	}
	wg.Wait()
	for i := 1; i < n; i++ {
		assert.Same(t, out[0], out[i])
	}
	itemSchema := docbind.MustSchemaOf[item]()
	assert.Same(t, itemSchema, out[0].Fields[1].Kind.Elem.Record)
}

func TestSchemaOf_Recursive(t *testing.T) {
	s, err := docbind.SchemaOf[tree]()
	require.NoError(t, err)
	kids, ok := s.Field("kids")
	require.True(t, ok)
	assert.Same(t, s, kids.Kind.Elem.Record)
}

func TestSchemaOf_ZeroFields(t *testing.T) {
	type empty struct{ A int }
	s, err := docbind.SchemaOf[empty]()
	require.NoError(t, err)
	assert.Empty(t, s.Fields)
	v, ok := docbind.Map[empty](node.Mapping(node.P("A", node.Int(1))))
	assert.True(t, ok)
	assert.Zero(t, v.A, "untagged fields are not mapped")
}

type dupNames struct {
	A string `docbind:"x"`
	B string `docbind:"x"`
}

type unexportedTagged struct {
	a string `docbind:"a"` //nolint:unused
}

type badOption struct {
	A string `docbind:"a,sometimes"`
}

type pointerToStruct struct {
	P *item `docbind:"p"`
}

type nestedBad struct {
	Items []struct {
		F func() `docbind:"f"`
	} `docbind:"items"`
}

func TestSchemaOf_Errors(t *testing.T) {
	cases := []struct {
		name   string
		t      reflect.Type
		field  string
		reason string
	}{
		{"duplicate key", reflect.TypeFor[dupNames](), "B", `document key "x" already mapped to field A`},
		{"unexported", reflect.TypeFor[unexportedTagged](), "a", "unexported field"},
		{"bad option", reflect.TypeFor[badOption](), "A", "sometimes"},
		{"pointer to struct", reflect.TypeFor[pointerToStruct](), "P", "pointer"},
		{"nested", reflect.TypeFor[nestedBad](), "F", "unsupported"},
		{"not a struct", reflect.TypeFor[int](), "", "struct"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := docbind.SchemaFor(tc.t)
			assert.Nil(t, s)
			var se *docbind.SchemaError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tc.field, se.Field)
			assert.Contains(t, se.Reason, tc.reason)
			assert.Contains(t, err.Error(), "docbind: ")

			_, again := docbind.SchemaFor(tc.t)
			assert.Equal(t, err, again, "errors are cached too")
		})
	}
	_, err := docbind.SchemaFor(nil)
	assert.Error(t, err)
}

func TestSchemaError_Error(t *testing.T) {
	e := &docbind.SchemaError{Type: reflect.TypeFor[person](), Field: "Age", Reason: "bad"}
	assert.Equal(t, "docbind: docbind_test.person.Age: bad", e.Error())
	assert.Equal(t, "docbind: nil type", (&docbind.SchemaError{Reason: "nil type"}).Error())
}

func TestNewSchema(t *testing.T) {
	itemSchema, err := docbind.NewSchema(reflect.TypeFor[item](), docbind.FieldSpec{GoName: "ID", Name: "ident"})
	require.NoError(t, err)

	s, err := docbind.NewSchema(reflect.TypeFor[bag](),
		docbind.FieldSpec{GoName: "Items", Name: "entries", Required: true, Record: itemSchema},
		docbind.FieldSpec{GoName: "Small", Name: "n"},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"entries"}, s.Required())
	f, _ := s.Field("entries")
	assert.Same(t, itemSchema, f.Kind.Elem.Record)
	tagDerived := docbind.MustSchemaOf[bag]()
	tf, _ := tagDerived.Field("items")
	assert.NotSame(t, itemSchema, tf.Kind.Elem.Record, "cached kinds are not modified")

	b, ok := docbind.MapWith[bag](s, node.Mapping(
		node.P("entries", node.Sequence(node.Mapping(node.P("ident", node.String("z"))))),
		node.P("n", node.Int(2)),
		node.P("small", node.Int(9)),
	))
	assert.True(t, ok)
	assert.Equal(t, []item{{ID: "z"}}, b.Items)
	assert.Equal(t, int8(2), b.Small)
}

func TestNewSchema_Errors(t *testing.T) {
	bagT := reflect.TypeFor[bag]()
	cases := map[string]func() (*docbind.Schema, error){
		"not struct": func() (*docbind.Schema, error) { return docbind.NewSchema(reflect.TypeFor[string]()) },
		"no field":   func() (*docbind.Schema, error) { return docbind.NewSchema(bagT, docbind.FieldSpec{GoName: "Nope", Name: "n"}) },
		"empty name": func() (*docbind.Schema, error) { return docbind.NewSchema(bagT, docbind.FieldSpec{GoName: "Tags"}) },
		"unexported": func() (*docbind.Schema, error) {
			return docbind.NewSchema(reflect.TypeFor[tagged](), docbind.FieldSpec{GoName: "unexp", Name: "u"})
		},
		"duplicate": func() (*docbind.Schema, error) {
			return docbind.NewSchema(bagT, docbind.FieldSpec{GoName: "Tags", Name: "t"}, docbind.FieldSpec{GoName: "Nums", Name: "t"})
		},
		"record on scalar": func() (*docbind.Schema, error) {
			return docbind.NewSchema(bagT, docbind.FieldSpec{GoName: "Tags", Name: "t", Record: docbind.MustSchemaOf[item]()})
		},
	}
	for name, build := range cases {
		t.Run(name, func(t *testing.T) {
			s, err := build()
			assert.Nil(t, s)
			var se *docbind.SchemaError
			assert.ErrorAs(t, err, &se)
		})
	}
}
