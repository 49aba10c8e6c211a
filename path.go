package docbind

import (
	"strconv"
	"strings"
)

// pathRef locates a value in both the document (JSON Pointer) and the
// destination (Go field path). It is immutable; every step returns a copy.
type pathRef struct {
	parts []string // escaped pointer tokens
	field string
	key   string // last document key, unescaped
}

// Field descends into the record field mapped from key.
func (p pathRef) Field(key, goName string) pathRef {
	f := goName
	if p.field != "" {
		f = p.field + "." + goName
	}
	return pathRef{parts: p.append(escapeToken(key)), field: f, key: key}
}

// Index descends into a sequence element.
func (p pathRef) Index(i int) pathRef {
	return pathRef{parts: p.append(strconv.Itoa(i)), field: p.field + "[" + strconv.Itoa(i) + "]", key: p.key}
}

// MapKey descends into a map entry.
func (p pathRef) MapKey(key string) pathRef {
	return pathRef{parts: p.append(escapeToken(key)), field: p.field + "[" + strconv.Quote(key) + "]", key: key}
}

func (p pathRef) append(tok string) []string {
	return append(append(make([]string, 0, len(p.parts)+1), p.parts...), tok)
}

// Pointer renders the RFC 6901 pointer; the root is "/".
func (p pathRef) Pointer() string {
	if len(p.parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.parts, "/")
}

// escape '~' -> '~0', '/' -> '~1' per RFC6901
func escapeToken(s string) string {
	if !strings.ContainsAny(s, "~/") {
		return s
	}
	return strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1")
}
