package docbind

import (
	"encoding"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/reoring/docbind/diag"
	"github.com/reoring/docbind/node"
)

// convError is a failed scalar conversion. code is one of diag.CodeInvalidType
// (wrong shape), diag.CodeParseError (unparsable content) or diag.CodeOverflow.
type convError struct {
	code  string
	cause error
}

func (e *convError) Error() string {
	if e.cause == nil {
		return e.code
	}
	return e.code + ": " + e.cause.Error()
}

func (e *convError) Unwrap() error { return e.cause }

var errWrongShape = &convError{code: diag.CodeInvalidType}

func parseErr(err error) *convError {
	if errors.Is(err, strconv.ErrRange) {
		return &convError{code: diag.CodeOverflow, cause: err}
	}
	return &convError{code: diag.CodeParseError, cause: err}
}

func overflow(v any, t reflect.Type) *convError {
	return &convError{code: diag.CodeOverflow, cause: fmt.Errorf("%v overflows %s", v, t)}
}

// convertScalar converts a non-null scalar node into a value of type t
// according to sk.
func convertScalar(sk ScalarKind, t reflect.Type, n *node.Node) (reflect.Value, error) {
	out := reflect.New(t).Elem()
	switch sk {
	case ScalarBool:
		b, err := toBool(n)
		if err != nil {
			return out, err
		}
		out.SetBool(b)
	case ScalarInt:
		i, err := toInt(n)
		if err != nil {
			return out, err
		}
		if out.OverflowInt(i) {
			return out, overflow(i, t)
		}
		out.SetInt(i)
	case ScalarUint:
		u, err := toUint(n)
		if err != nil {
			return out, err
		}
		if out.OverflowUint(u) {
			return out, overflow(u, t)
		}
		out.SetUint(u)
	case ScalarFloat:
		f, err := toFloat(n)
		if err != nil {
			return out, err
		}
		if out.OverflowFloat(f) {
			return out, overflow(f, t)
		}
		out.SetFloat(f)
	case ScalarString:
		s, err := toString(n)
		if err != nil {
			return out, err
		}
		out.SetString(s)
	case ScalarBinary:
		switch n.Kind() {
		case node.KindBinary:
			b, _ := n.AsBinary()
			out.SetBytes(b)
		case node.KindString:
			s, _ := n.AsString()
			out.SetBytes([]byte(s))
		default:
			return out, errWrongShape
		}
	case ScalarTimestamp:
		tm, err := toTime(n)
		if err != nil {
			return out, err
		}
		out.Set(reflect.ValueOf(tm))
	case ScalarDuration:
		d, err := toDuration(n)
		if err != nil {
			return out, err
		}
		out.SetInt(int64(d))
	case ScalarText:
		if k := n.Kind(); k == node.KindBinary || !k.IsScalar() {
			return out, errWrongShape
		}
		s, _ := n.Raw()
		tu := out.Addr().Interface().(encoding.TextUnmarshaler)
		if err := tu.UnmarshalText([]byte(s)); err != nil {
			return out, &convError{code: diag.CodeParseError, cause: err}
		}
	default:
		return out, errWrongShape
	}
	return out, nil
}

func toBool(n *node.Node) (bool, error) {
	switch n.Kind() {
	case node.KindBool:
		b, _ := n.AsBool()
		return b, nil
	case node.KindString:
		s, _ := n.AsString()
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return false, parseErr(err)
		}
		return b, nil
	}
	return false, errWrongShape
}

func toInt(n *node.Node) (int64, error) {
	switch n.Kind() {
	case node.KindInt:
		if i, ok := n.AsInt(); ok {
			return i, nil
		}
		u, _ := n.AsUint()
		return 0, &convError{code: diag.CodeOverflow, cause: fmt.Errorf("%d overflows int64", u)}
	case node.KindFloat:
		f, _ := n.AsFloat()
		if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, &convError{code: diag.CodeParseError, cause: fmt.Errorf("%v is not an integer", f)}
		}
		if f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, &convError{code: diag.CodeOverflow, cause: fmt.Errorf("%v overflows int64", f)}
		}
		return int64(f), nil
	case node.KindString:
		s, _ := n.AsString()
		i, err := strconv.ParseInt(strings.TrimSpace(s), 0, 64)
		if err != nil {
			return 0, parseErr(err)
		}
		return i, nil
	}
	return 0, errWrongShape
}

func toUint(n *node.Node) (uint64, error) {
	switch n.Kind() {
	case node.KindInt:
		if u, ok := n.AsUint(); ok {
			return u, nil
		}
		i, _ := n.AsInt()
		return 0, &convError{code: diag.CodeOverflow, cause: fmt.Errorf("%d is negative", i)}
	case node.KindFloat:
		f, _ := n.AsFloat()
		if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, &convError{code: diag.CodeParseError, cause: fmt.Errorf("%v is not an integer", f)}
		}
		if f < 0 || f >= math.MaxUint64 {
			return 0, &convError{code: diag.CodeOverflow, cause: fmt.Errorf("%v overflows uint64", f)}
		}
		return uint64(f), nil
	case node.KindString:
		s, _ := n.AsString()
		u, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
		if err != nil {
			return 0, parseErr(err)
		}
		return u, nil
	}
	return 0, errWrongShape
}

func toFloat(n *node.Node) (float64, error) {
	switch n.Kind() {
	case node.KindInt, node.KindFloat:
		f, _ := n.AsFloat()
		return f, nil
	case node.KindString:
		s, _ := n.AsString()
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, parseErr(err)
		}
		return f, nil
	}
	return 0, errWrongShape
}

// toString accepts strings and other plain scalars (numbers, bools,
// timestamps). Those keep the text written in the document when the parser
// recorded it, so `version: 1.10` maps to "1.10" and `zip: 01234` to "01234".
func toString(n *node.Node) (string, error) {
	switch n.Kind() {
	case node.KindString, node.KindInt, node.KindFloat, node.KindBool, node.KindTimestamp:
		s, _ := n.Raw()
		return s, nil
	}
	return "", errWrongShape
}

func toTime(n *node.Node) (time.Time, error) {
	switch n.Kind() {
	case node.KindTimestamp:
		t, _ := n.AsTime()
		return t, nil
	case node.KindString:
		s, _ := n.AsString()
		t, err := ParseTimestamp(strings.TrimSpace(s))
		if err != nil {
			return time.Time{}, &convError{code: diag.CodeParseError, cause: err}
		}
		return t, nil
	}
	return time.Time{}, errWrongShape
}

// toDuration accepts time.ParseDuration strings and integers (nanoseconds).
func toDuration(n *node.Node) (time.Duration, error) {
	switch n.Kind() {
	case node.KindInt:
		i, err := toInt(n)
		return time.Duration(i), err
	case node.KindString:
		s, _ := n.AsString()
		d, err := time.ParseDuration(strings.TrimSpace(s))
		if err != nil {
			return 0, &convError{code: diag.CodeParseError, cause: err}
		}
		return d, nil
	}
	return 0, errWrongShape
}

// timestampLayouts are tried in order by ParseTimestamp: RFC3339 first, then
// the YAML 1.1 timestamp forms.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-1-2T15:4:5.999999999Z07:00",
	"2006-1-2t15:4:5.999999999Z07:00",
	"2006-1-2 15:4:5.999999999",
	"2006-1-2",
}

// ParseTimestamp parses RFC3339 (trailing zeros optional) and YAML timestamp
// text. Values without a zone are UTC.
func ParseTimestamp(s string) (time.Time, error) {
	var first error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if first == nil {
			first = err
		}
	}
	return time.Time{}, first
}

// keyText returns the text of a mapping key. Only strings, numbers and bools
// qualify; null, binary, timestamp and container keys do not.
func keyText(k *node.Node) (string, bool) {
	switch k.Kind() {
	case node.KindString, node.KindInt, node.KindFloat, node.KindBool:
		return k.Raw()
	}
	return "", false
}
