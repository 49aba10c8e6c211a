package docbind

import (
	"fmt"
	"reflect"
	"strings"
)

// TagName is the struct tag carrying mapping metadata.
//
//	Name    string            `docbind:"name,required"`
//	Port    int               `docbind:"port"`
//	Labels  map[string]string `docbind:",optional"` // key "Labels"
//	Ignored string            `docbind:"-"`
//
// Fields without the tag are not mapped.
const TagName = "docbind"

type tagSpec struct {
	name     string
	required bool
	ignore   bool
}

// lookupTag reports the metadata of sf and whether it carries any.
// Priority for the document key: name=... option > leading name > Go field name.
func lookupTag(sf reflect.StructField) (tagSpec, bool, error) {
	raw, ok := sf.Tag.Lookup(TagName)
	if !ok {
		return tagSpec{}, false, nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "-" {
		return tagSpec{ignore: true}, true, nil
	}
	parts := strings.Split(raw, ",")
	spec := tagSpec{name: strings.TrimSpace(parts[0])}
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		switch {
		case p == "":
		case p == "required":
			spec.required = true
		case p == "optional":
			spec.required = false
		case strings.HasPrefix(p, "name="):
			spec.name = strings.TrimPrefix(p, "name=")
		default:
			return tagSpec{}, true, fmt.Errorf("unknown %s tag option %q", TagName, p)
		}
	}
	if spec.name == "" {
		spec.name = sf.Name
	}
	return spec, true, nil
}
