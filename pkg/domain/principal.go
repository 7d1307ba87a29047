package domain

import "strings"

// Principal is an authenticated caller identity supplied by the environment
// (an address, a subject claim). It is opaque: the core only compares
// principals for equality and never parses them.
type Principal string

// NormalizePrincipal trims surrounding whitespace from external input.
func NormalizePrincipal(s string) Principal {
	return Principal(strings.TrimSpace(s))
}

func (p Principal) IsZero() bool { return p == "" }

func (p Principal) String() string { return string(p) }
