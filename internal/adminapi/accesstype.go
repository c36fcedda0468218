package adminapi

import "github.com/shraw06/docsplusplus/internal/nm"

// accessTypeString renders an nm.AccessType for JSON output. nm.AccessType
// has no String method of its own since the wire layer only ever needs the
// numeric form; the admin API is the one consumer that renders it for
// humans.
func accessTypeString(a nm.AccessType) string {
	switch a {
	case nm.AccessRead:
		return "read"
	case nm.AccessWrite:
		return "write"
	case nm.AccessReadWrite:
		return "read_write"
	default:
		return "none"
	}
}
