package docbind

// Presence is the bit flag recorded for every matched field.
type Presence uint8

const (
	PresenceSeen    Presence = 1 << iota // Key appeared in the document.
	PresenceWasNull                      // Value was null.
	PresenceFailed                       // Value did not convert (fully).
)

// PresenceMap maps JSON Pointers of matched fields to Presence flags.
type PresenceMap map[string]Presence

// Decoded carries the mapped value along with presence metadata.
type Decoded[T any] struct {
	Value    T
	Presence PresenceMap
}

// Seen reports whether the field at pointer appeared in the document.
func (pm PresenceMap) Seen(pointer string) bool { return pm[pointer]&PresenceSeen != 0 }

// callState is the bookkeeping of one mapping call on one record value.
// Nested records get their own callState; only the failed flag reaches the
// parent.
type callState struct {
	schema   *Schema
	failed   bool
	presence []Presence // by field index
}

func newCallState(s *Schema) *callState {
	return &callState{schema: s, presence: make([]Presence, len(s.Fields))}
}

func (c *callState) mark(i int, p Presence) { c.presence[i] |= p }

// missing returns the indexes of required fields whose key never appeared.
// Required-ness tests key presence, not conversion success.
func (c *callState) missing() []int {
	var out []int
	for i, f := range c.schema.Fields {
		if f.Required && c.presence[i]&PresenceSeen == 0 {
			out = append(out, i)
		}
	}
	return out
}
