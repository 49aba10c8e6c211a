package docbind

import (
	"reflect"
	"strconv"

	"github.com/reoring/docbind/diag"
	"github.com/reoring/docbind/i18n"
	"github.com/reoring/docbind/node"
)

// mapper runs one top-level mapping request. It holds no per-record state;
// that lives in callState.
type mapper struct {
	opt      Options
	presence PresenceMap // nil unless presence is collected
	overlay  bool        // records start from the destination's value
}

func newMapper(opts []Options) *mapper {
	return &mapper{opt: resolveOptions(opts)}
}

// run maps root onto dst. A root that is not a mapping fails the call
// outright: dst is left untouched and the required check is skipped.
func (m *mapper) run(s *Schema, root *node.Node, dst reflect.Value) bool {
	if root.Kind() != node.KindMapping {
		m.fail(diag.CodeRootShape, pathRef{}, root, "mapping", root.Kind().String(), nil)
		return false
	}
	if m.presence != nil {
		m.presence["/"] |= PresenceSeen
	}
	return m.record(s, root, dst, pathRef{}, 0)
}

// record is one mapping call on one record value: per-pair dispatch in
// document order followed by the required-field check.
func (m *mapper) record(s *Schema, n *node.Node, dst reflect.Value, at pathRef, depth int) bool {
	st := newCallState(s)
	stop := m.opt.Mode == StopOnError
	for i := 0; i < n.Len(); i++ {
		p := n.Pair(i)
		key, ok := keyText(p.Key)
		if !ok {
			m.fail(diag.CodeInvalidKey, at, p.Key, "string", p.Key.Kind().String(), nil)
			st.failed = true
			if stop {
				break
			}
			continue
		}
		fi, ok := s.Lookup(key)
		if !ok {
			if !m.unknown(key, p.Key, at) {
				st.failed = true
				if stop {
					break
				}
			}
			continue
		}
		f := &s.Fields[fi]
		fat := at.Field(key, f.GoName)
		first := st.presence[fi]&PresenceSeen == 0
		// Seen is recorded before dispatch: a required key that fails to
		// convert counts as present and only its conversion error is reported.
		st.mark(fi, PresenceSeen)
		if p.Value.IsNull() {
			st.mark(fi, PresenceWasNull)
		}
		fv := dst.FieldByIndex(f.Index)
		if m.overlay && first && f.Kind.Class == ClassRecord {
			ok = m.nested(&f.Kind, p.Value, fv, fat, depth, true)
		} else {
			ok = m.dispatch(&f.Kind, p.Value, fv, fat, depth)
		}
		if !ok {
			st.mark(fi, PresenceFailed)
		}
		if m.presence != nil {
			m.presence[fat.Pointer()] |= st.presence[fi]
		}
		if !ok {
			st.failed = true
			if stop {
				break
			}
		}
	}
	for _, fi := range st.missing() {
		f := &s.Fields[fi]
		fat := at.Field(f.Name, f.GoName)
		m.emit(diag.Event{
			Severity: diag.SeverityError,
			Code:     diag.CodeRequired,
			Message:  i18n.T(diag.CodeRequired, map[string]string{"key": f.Name}),
			Path:     fat.Pointer(),
			Key:      f.Name,
			Field:    fat.field,
			Expected: f.Kind.String(),
			Line:     n.Line(),
			Column:   n.Column(),
		})
		st.failed = true
	}
	return !st.failed
}

// unknown applies the unknown-key policy; false means the call failed.
func (m *mapper) unknown(key string, kn *node.Node, at pathRef) bool {
	if m.opt.Unknown == UnknownIgnore {
		return true
	}
	sev := diag.SeverityWarning
	if m.opt.Unknown == UnknownReject {
		sev = diag.SeverityError
	}
	kat := at.Field(key, "")
	m.emit(diag.Event{
		Severity: sev,
		Code:     diag.CodeUnknownKey,
		Message:  i18n.T(diag.CodeUnknownKey, map[string]string{"key": key}),
		Path:     kat.Pointer(),
		Key:      key,
		Field:    at.field,
		Line:     kn.Line(),
		Column:   kn.Column(),
	})
	return sev == diag.SeverityWarning
}

// dispatch converts n into dst according to k. dst keeps its previous value
// when n has the wrong shape; collections and records built partially before
// a failure are committed as far as they got.
func (m *mapper) dispatch(k *Kind, n *node.Node, dst reflect.Value, at pathRef, depth int) bool {
	switch k.Class {
	case ClassScalar:
		return m.scalar(k, n, dst, at)
	case ClassOptional:
		return m.optional(k, n, dst, at)
	case ClassSequence:
		return m.sequence(k, n, dst, at, depth)
	case ClassMap:
		return m.mapping(k, n, dst, at, depth)
	case ClassRecord:
		return m.nested(k, n, dst, at, depth, false)
	}
	panic("docbind: unhandled kind class " + k.Class.String())
}

func (m *mapper) scalar(k *Kind, n *node.Node, dst reflect.Value, at pathRef) bool {
	if n.IsNull() {
		m.warn(diag.CodeNullValue, at, n, k.String())
		dst.Set(reflect.Zero(dst.Type()))
		return true
	}
	if !n.IsScalar() {
		m.fail(diag.CodeInvalidType, at, n, k.String(), n.Kind().String(), nil)
		return false
	}
	v, err := convertScalar(k.Scalar, k.Type, n)
	if err != nil {
		m.convFail(err, at, n, k.String())
		return false
	}
	dst.Set(v)
	return true
}

func (m *mapper) optional(k *Kind, n *node.Node, dst reflect.Value, at pathRef) bool {
	if n.IsNull() {
		dst.Set(reflect.Zero(dst.Type()))
		return true
	}
	if !n.IsScalar() {
		m.fail(diag.CodeInvalidType, at, n, k.String(), n.Kind().String(), nil)
		return false
	}
	v, err := convertScalar(k.Scalar, k.Type.Elem(), n)
	if err != nil {
		m.convFail(err, at, n, k.String())
		return false
	}
	ptr := reflect.New(k.Type.Elem())
	ptr.Elem().Set(v)
	dst.Set(ptr)
	return true
}

// sequence resets dst and appends converted elements in order. The first
// element failure stops the field; elements appended so far remain.
func (m *mapper) sequence(k *Kind, n *node.Node, dst reflect.Value, at pathRef, depth int) bool {
	if n.Kind() != node.KindSequence {
		m.fail(diag.CodeInvalidType, at, n, k.String(), n.Kind().String(), nil)
		return false
	}
	if !m.enter(at, n, depth) {
		return false
	}
	out := reflect.MakeSlice(k.Type, 0, n.Len())
	ok := true
	for i := 0; i < n.Len(); i++ {
		ev := reflect.New(k.Type.Elem()).Elem()
		if !m.dispatch(k.Elem, n.Item(i), ev, at.Index(i), depth+1) {
			ok = false
			break
		}
		out = reflect.Append(out, ev)
	}
	dst.Set(out)
	return ok
}

// mapping resets dst and inserts converted entries; duplicate keys are last
// write wins. The first key or value failure stops the field.
func (m *mapper) mapping(k *Kind, n *node.Node, dst reflect.Value, at pathRef, depth int) bool {
	if n.Kind() != node.KindMapping {
		m.fail(diag.CodeInvalidType, at, n, k.String(), n.Kind().String(), nil)
		return false
	}
	if !m.enter(at, n, depth) {
		return false
	}
	out := reflect.MakeMapWithSize(k.Type, n.Len())
	ok := true
	for i := 0; i < n.Len(); i++ {
		p := n.Pair(i)
		text, isKey := keyText(p.Key)
		if !isKey {
			m.fail(diag.CodeInvalidKey, at, p.Key, k.Key.String(), p.Key.Kind().String(), nil)
			ok = false
			break
		}
		eat := at.MapKey(text)
		kv, err := convertScalar(k.Key.Scalar, k.Key.Type, p.Key)
		if err != nil {
			m.convFail(err, eat, p.Key, k.Key.String())
			ok = false
			break
		}
		vv := reflect.New(k.Type.Elem()).Elem()
		if !m.dispatch(k.Elem, p.Value, vv, eat, depth+1) {
			ok = false
			break
		}
		out.SetMapIndex(kv, vv)
	}
	dst.Set(out)
	return ok
}

// nested runs an independent mapping call on a fresh record and commits the
// result; only its success flag reaches the caller. With keep the record
// starts from dst's current value, so absent keys keep what dst held.
func (m *mapper) nested(k *Kind, n *node.Node, dst reflect.Value, at pathRef, depth int, keep bool) bool {
	if n.Kind() != node.KindMapping {
		m.fail(diag.CodeInvalidType, at, n, k.String(), n.Kind().String(), nil)
		return false
	}
	if !m.enter(at, n, depth) {
		return false
	}
	rv := reflect.New(k.Type).Elem()
	if keep {
		rv.Set(dst)
	}
	ok := m.record(k.Record, n, rv, at, depth+1)
	dst.Set(rv)
	return ok
}

// enter guards container nesting depth.
func (m *mapper) enter(at pathRef, n *node.Node, depth int) bool {
	if depth < m.opt.MaxDepth {
		return true
	}
	limit := strconv.Itoa(m.opt.MaxDepth)
	m.emit(diag.Event{
		Severity: diag.SeverityError,
		Code:     diag.CodeTooDeep,
		Message:  i18n.T(diag.CodeTooDeep, map[string]string{"limit": limit}),
		Path:     at.Pointer(),
		Key:      at.key,
		Field:    at.field,
		Actual:   n.Kind().String(),
		Line:     n.Line(),
		Column:   n.Column(),
	})
	return false
}

func (m *mapper) convFail(err error, at pathRef, n *node.Node, expected string) {
	code := diag.CodeParseError
	ce, ok := err.(*convError)
	if ok {
		code = ce.code
		err = ce.cause
	}
	actual := n.Kind().String()
	if s, ok := n.Raw(); ok && code != diag.CodeInvalidType {
		actual = strconv.Quote(s)
	}
	m.fail(code, at, n, expected, actual, err)
}

func (m *mapper) fail(code string, at pathRef, n *node.Node, expected, actual string, cause error) {
	m.emit(diag.Event{
		Severity: diag.SeverityError,
		Code:     code,
		Message:  i18n.T(code, map[string]string{"expected": expected, "actual": actual, "key": at.key}),
		Path:     at.Pointer(),
		Key:      at.key,
		Field:    at.field,
		Expected: expected,
		Actual:   actual,
		Line:     n.Line(),
		Column:   n.Column(),
		Cause:    cause,
	})
}

func (m *mapper) warn(code string, at pathRef, n *node.Node, expected string) {
	m.emit(diag.Event{
		Severity: diag.SeverityWarning,
		Code:     code,
		Message:  i18n.T(code, map[string]string{"expected": expected, "key": at.key}),
		Path:     at.Pointer(),
		Key:      at.key,
		Field:    at.field,
		Expected: expected,
		Actual:   n.Kind().String(),
		Line:     n.Line(),
		Column:   n.Column(),
	})
}

func (m *mapper) emit(e diag.Event) { m.opt.Reporter.Report(e) }
