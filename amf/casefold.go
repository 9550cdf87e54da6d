package amf

import (
	"golang.org/x/text/cases"
)

// foldCaser implements the case-insensitive comparator spec.md §9 calls
// for: Unicode case folding rather than naive ToLower, so comparisons stay
// correct for names outside ASCII without mutating the original spelling
// anywhere diagnostics or output might surface it.
var foldCaser = cases.Fold()

func foldEqual(a, b string) bool {
	if a == b {
		return true
	}
	return foldCaser.String(a) == foldCaser.String(b)
}
