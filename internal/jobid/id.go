// Package jobid defines the hierarchical identifier that names a job status.
//
// An identifier is an ordered sequence of optional text segments. A segment
// may be absent, which is distinct from the empty string and from any real
// value. Identifiers are immutable once constructed and are used as cache
// keys throughout the store.
package jobid

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Segment is a single identifier element. The zero value is the absent
// segment. Absent segments compare equal only to other absent segments,
// never to any real string value.
type Segment struct {
	// Value is the segment text. Meaningful only when Valid is true.
	Value string

	// Valid reports whether the segment carries a real value.
	Valid bool
}

// Seg returns a present segment holding v.
func Seg(v string) Segment {
	return Segment{Value: v, Valid: true}
}

// Absent is the explicit absent segment.
var Absent = Segment{}

// ID is an immutable ordered sequence of optional segments. The zero ID is
// the canonical empty identifier, used when no id was supplied.
type ID struct {
	segments []Segment
}

// Of builds an ID from present string segments.
//
// Of() returns the canonical empty identifier.
func Of(values ...string) ID {
	if len(values) == 0 {
		return ID{}
	}
	segs := make([]Segment, len(values))
	for i, v := range values {
		segs[i] = Seg(v)
	}
	return ID{segments: segs}
}

// FromSegments builds an ID from explicit segments, which may include Absent.
// The input slice is copied; later mutation of it does not affect the ID.
func FromSegments(segs ...Segment) ID {
	if len(segs) == 0 {
		return ID{}
	}
	cp := make([]Segment, len(segs))
	copy(cp, segs)
	return ID{segments: cp}
}

// Len returns the number of segments.
func (id ID) Len() int {
	return len(id.segments)
}

// Segment returns the i-th segment.
func (id ID) Segment(i int) Segment {
	return id.segments[i]
}

// Segments returns a copy of the segment sequence.
func (id ID) Segments() []Segment {
	if len(id.segments) == 0 {
		return nil
	}
	cp := make([]Segment, len(id.segments))
	copy(cp, id.segments)
	return cp
}

// IsEmpty reports whether id is the canonical empty identifier.
func (id ID) IsEmpty() bool {
	return len(id.segments) == 0
}

// Equal reports whether two identifiers have the same length and elementwise
// equal segments, with absent equal only to absent.
func (id ID) Equal(other ID) bool {
	if len(id.segments) != len(other.segments) {
		return false
	}
	for i, s := range id.segments {
		if s != other.segments[i] {
			return false
		}
	}
	return true
}

// Key returns a canonical string form usable as a map key. Present values are
// quoted, so no real value (including the literal reserved tokens used by the
// on-disk layout) can collide with the unquoted absent marker, and quoting
// makes the comma join unambiguous.
func (id ID) Key() string {
	if len(id.segments) == 0 {
		return ""
	}
	var b strings.Builder
	for i, s := range id.segments {
		if i > 0 {
			b.WriteByte(',')
		}
		if s.Valid {
			b.WriteString(strconv.Quote(s.Value))
		} else {
			b.WriteString("null")
		}
	}
	return b.String()
}

// String renders the identifier for logs and error messages.
func (id ID) String() string {
	parts := make([]string, len(id.segments))
	for i, s := range id.segments {
		if s.Valid {
			parts[i] = s.Value
		} else {
			parts[i] = "null"
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// MarshalJSON encodes the identifier as an array of nullable strings,
// e.g. ["jobs","42"] or ["install",null].
func (id ID) MarshalJSON() ([]byte, error) {
	arr := make([]*string, len(id.segments))
	for i, s := range id.segments {
		if s.Valid {
			v := s.Value
			arr[i] = &v
		}
	}
	return json.Marshal(arr)
}

// UnmarshalJSON decodes an array of nullable strings. A JSON null decodes to
// the empty identifier.
func (id *ID) UnmarshalJSON(data []byte) error {
	var arr []*string
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	if len(arr) == 0 {
		*id = ID{}
		return nil
	}
	segs := make([]Segment, len(arr))
	for i, v := range arr {
		if v != nil {
			segs[i] = Seg(*v)
		}
	}
	*id = ID{segments: segs}
	return nil
}
