package langdetect

import "strings"

// NormalizeCode reduces a caller-supplied language tag to its primary
// subtag in lowercase, so "EN-us" and "en_US" both become "en". A tag
// with any non-alphabetic subtag is treated as absent.
func NormalizeCode(raw string) string {
	tag := strings.ToLower(strings.TrimSpace(raw))
	tag = strings.ReplaceAll(tag, "_", "-")

	primary := ""
	for _, part := range strings.Split(tag, "-") {
		if part == "" {
			continue
		}
		for _, r := range part {
			if r < 'a' || r > 'z' {
				return ""
			}
		}
		if primary == "" {
			primary = part
		}
	}
	return primary
}
