package store

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/jobvault/jobvault/internal/jobid"
)

// Reserved names of the on-disk layout. Both tokens start with '&', which
// url.QueryEscape always percent-encodes, so neither can ever be produced by
// encoding a real segment value.
const (
	// RecordFileName is the file holding a serialized status record inside
	// its identifier's directory.
	RecordFileName = "status.json"

	// NullToken is the directory name for an absent identifier segment.
	NullToken = "&null"

	// LegacyStatusDir is the marker directory of the older on-disk layout,
	// which nested the record file one level below the identifier's
	// directory. Read-only compatibility; new records are never written
	// under it.
	LegacyStatusDir = "&status"
)

// EncodeSegment maps one identifier segment to a filesystem-safe directory
// name. Present values are percent-encoded; the absent segment maps to
// NullToken. The mapping is injective over the union of all real strings and
// the absent marker.
func EncodeSegment(seg jobid.Segment) string {
	if !seg.Valid {
		return NullToken
	}
	return url.QueryEscape(seg.Value)
}

// RelPath returns the slash-joined relative path for id, one encoded
// directory per segment. The empty identifier maps to the empty path, i.e.
// the storage root itself.
func RelPath(id jobid.ID) string {
	if id.IsEmpty() {
		return ""
	}
	parts := make([]string, id.Len())
	for i := range parts {
		parts[i] = EncodeSegment(id.Segment(i))
	}
	return strings.Join(parts, "/")
}

// dirFor resolves the directory for id under root. It does not create the
// directory.
func dirFor(root string, id jobid.ID) string {
	dir := root
	for i := 0; i < id.Len(); i++ {
		dir = filepath.Join(dir, EncodeSegment(id.Segment(i)))
	}
	return dir
}
