package core

import (
	"regexp"
)

// tube names are 1-200 bytes of letters, digits and "-+/;.$_()",
// and may not begin with a hyphen
var tubeNameRe = regexp.MustCompile(`^[A-Za-z0-9+/;.$_()][A-Za-z0-9\-+/;.$_()]{0,199}$`)

// ValidTubeName reports whether the server will accept name as a tube name
func ValidTubeName(name string) bool {
	return tubeNameRe.MatchString(name)
}
