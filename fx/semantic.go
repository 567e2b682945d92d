package fx

import (
	"strconv"
	"strings"
	"unicode"
)

// Locations assigns interface locations to semantics. Vertex outputs and
// pixel inputs generated by one code generator share the table, so matching
// semantics end up at matching locations.
type Locations map[string]uint32

// Of returns the location of a user semantic. SV_TARGETn and COLORn use n;
// other semantics get the next free location. A semantic without a trailing
// digit is the same as its 0 variant.
func (l Locations) Of(semantic string) uint32 {
	if semantic == "" || !unicode.IsDigit(rune(semantic[len(semantic)-1])) {
		semantic += "0"
	}

	for _, prefix := range []string{"SV_TARGET", "COLOR"} {
		if rest, ok := strings.CutPrefix(semantic, prefix); ok {
			if n, err := strconv.Atoi(rest); err == nil {
				return uint32(n)
			}
		}
	}

	location, ok := l[semantic]
	if !ok {
		location = uint32(len(l))
		l[semantic] = location
	}
	return location
}
