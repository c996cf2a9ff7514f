package ingest

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	snakeRe         = regexp.MustCompile(`[^A-Za-z0-9]+`)
	snakeCollapseRe = regexp.MustCompile(`_+`)
)

func snakeCase(s string) string {
	s = strings.TrimSpace(s)
	s = snakeRe.ReplaceAllString(s, "_")
	s = snakeCollapseRe.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "col"
	}
	return strings.ToLower(s)
}

// SnakeColumns normalizes header cells to snake_case column names,
// deduplicating repeats by appending _2, _3, ... in order of appearance.
func SnakeColumns(header []string) []string {
	seen := make(map[string]int, len(header))
	out := make([]string, 0, len(header))
	for _, h := range header {
		base := snakeCase(h)
		if n, ok := seen[base]; ok {
			seen[base] = n + 1
			out = append(out, fmt.Sprintf("%s_%d", base, n+1))
		} else {
			seen[base] = 1
			out = append(out, base)
		}
	}
	return out
}
