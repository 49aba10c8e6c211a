// Package diag carries the diagnostics emitted while a document is mapped
// onto a typed record.
//
// The mapping engine reports every recoverable error and warning to a
// Reporter. Reporters are pure sinks: they cannot stop or alter a mapping
// call, which only ever surfaces a single success flag to its caller.
package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Event codes (exported consts for IDE completion and type safety by convention)
const (
	CodeRootShape   = "root_shape"
	CodeInvalidKey  = "invalid_key"
	CodeInvalidType = "invalid_type"
	CodeParseError  = "parse_error"
	CodeOverflow    = "overflow"
	CodeRequired    = "required"
	CodeNullValue   = "null_value"
	CodeUnknownKey  = "unknown_key"
	CodeTooDeep     = "too_deep"
)

// Severity expresses the severity level of an event.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Event represents a single diagnostic.
type Event struct {
	Severity Severity
	Code     string // One of the codes listed above.
	Message  string
	Path     string // JSON Pointer of the offending document value (for example: /servers/2/port).
	Key      string // Document key as written, when the event concerns a mapping entry.
	Field    string // Go field path of the destination (for example: Servers.Port).
	Expected string // Expected shape or type.
	Actual   string // Observed shape or type.
	Line     int    // 1-based source line (0 when unknown).
	Column   int    // 1-based source column (0 when unknown).
	Cause    error  // Optional: underlying conversion error.
}

// IsError reports whether the event counts as a failure.
func (e Event) IsError() bool { return e.Severity == SeverityError }

// Error renders the event; Event satisfies error so single events can be
// wrapped and matched with errors.As.
func (e Event) Error() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "%s at %s", e.Code, e.Path)
	if e.Line > 0 {
		fmt.Fprintf(b, " (line %d, column %d)", e.Line, e.Column)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

func (e Event) Unwrap() error { return e.Cause }

// Events is a collection of diagnostics that implements error.
type Events []Event

// Error summarizes the first few events.
func (evs Events) Error() string {
	if len(evs) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(evs)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s at %s", evs[i].Code, evs[i].Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Errors returns only the events with error severity.
func (evs Events) Errors() Events {
	var out Events
	for _, e := range evs {
		if e.IsError() {
			out = append(out, e)
		}
	}
	return out
}

// HasCode reports whether any event carries code.
func (evs Events) HasCode(code string) bool {
	for _, e := range evs {
		if e.Code == code {
			return true
		}
	}
	return false
}

// AsEvents extracts Events from an error using errors.As internally.
func AsEvents(err error) (Events, bool) {
	if err == nil {
		return nil, false
	}
	var evs Events
	if errors.As(err, &evs) {
		return evs, true
	}
	return nil, false
}

// Reporter receives diagnostics. Implementations must not panic; they may be
// called from several goroutines when one Reporter is shared by concurrent
// mapping calls.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Event)

func (f ReporterFunc) Report(e Event) { f(e) }

type discard struct{}

func (discard) Report(Event) {}

// Discard drops every event.
var Discard Reporter = discard{}

// Tee fans events out to every non-nil reporter in order.
func Tee(rs ...Reporter) Reporter {
	out := make(tee, 0, len(rs))
	for _, r := range rs {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

type tee []Reporter

func (t tee) Report(e Event) {
	for _, r := range t {
		r.Report(e)
	}
}
