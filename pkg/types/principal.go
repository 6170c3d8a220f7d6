package types

import "strings"

// Principal is an opaque, equality-comparable caller identity.
type Principal string

// ParsePrincipal trims surrounding whitespace. The token itself is never interpreted.
func ParsePrincipal(value string) Principal {
	return Principal(strings.TrimSpace(value))
}

func (p Principal) String() string {
	return string(p)
}

func (p Principal) IsZero() bool {
	return strings.TrimSpace(string(p)) == ""
}

// OrderedPair returns the two principals in lexical order.
func OrderedPair(a, b Principal) (Principal, Principal) {
	if a <= b {
		return a, b
	}
	return b, a
}
