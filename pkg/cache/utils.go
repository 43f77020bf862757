package cache

import (
	"fmt"
	"strings"
)

// GenerateKeyWithParams creates a cache key with multiple parameters: "prefix:p1:p2".
// Empty parameters are kept as "-" so keys stay positional.
func GenerateKeyWithParams(prefix string, params ...interface{}) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, param := range params {
		s := fmt.Sprintf("%v", param)
		if s == "" {
			s = "-"
		}
		b.WriteByte(':')
		b.WriteString(s)
	}
	return b.String()
}

// BuildPattern creates a glob pattern for key matching.
func BuildPattern(prefix string) string {
	return fmt.Sprintf("%s*", prefix)
}
