package value

import "strconv"

// trimFloat formats n using Go's shortest round-trip representation, the
// same choice golucene and the rest of the pack's numeric-heavy code make
// implicitly by relying on strconv rather than a locale-aware formatter.
func trimFloat(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
