package util

import "strings"

// NormalizeCode trims and upper-cases a security code such as "110011.of".
func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// BareCode strips the exchange suffix: "110011.OF" -> "110011".
func BareCode(s string) string {
	s = NormalizeCode(s)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return s[:i]
	}
	return s
}
