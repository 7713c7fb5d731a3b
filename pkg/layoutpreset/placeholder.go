package layoutpreset

import (
	"regexp"
	"strings"
)

// dynamicPlaceholderPattern matches a path ending in a generated
// "_xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx" suffix. The filter and the binding
// resolver must both go through CanonicalizePlaceholder so their comparisons
// agree.
var dynamicPlaceholderPattern = regexp.MustCompile(`^(.+)_[\da-zA-Z]{8}-([\da-zA-Z]{4}-){3}[\da-zA-Z]{12}$`)

// CanonicalizePlaceholder strips the dynamic suffix from the last segment of
// path. Suffixes on enclosing segments belong to their owners and are kept,
// so "main/col_<id>/main_<id>" becomes "main/col_<id>/main". Stacked trailing
// suffixes are all removed, which keeps the result a fixed point. Paths
// without a trailing suffix are returned unchanged.
func CanonicalizePlaceholder(path string) string {
	for {
		m := dynamicPlaceholderPattern.FindStringSubmatch(path)
		if len(m) < 2 {
			return path
		}
		path = m[1]
	}
}

// isAnchorPath reports whether the last segment of path ends with anchorKey.
func isAnchorPath(path, anchorKey string) bool {
	if anchorKey == "" {
		return false
	}
	last := strings.ToLower(LastPlaceholderSegment(path))
	return strings.HasSuffix(last, strings.ToLower(anchorKey))
}

// PlaceholderSegments splits a slot path on '/' and drops empty segments.
func PlaceholderSegments(path string) []string {
	parts := strings.Split(path, "/")
	segments := parts[:0]
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

// LastPlaceholderSegment returns the last non-empty segment of path, or "".
func LastPlaceholderSegment(path string) string {
	segments := PlaceholderSegments(path)
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}

// ParentPlaceholderPath drops the last segment of path.
func ParentPlaceholderPath(path string) string {
	segments := PlaceholderSegments(path)
	if len(segments) <= 1 {
		return ""
	}
	return strings.Join(segments[:len(segments)-1], "/")
}

// hasPathPrefix reports whether path is prefix itself or lies below it.
func hasPathPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}

// normalizeID lower-cases an id and strips surrounding braces.
func normalizeID(id string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(id), "{}"))
}

// replaceIDToken replaces every case-insensitive occurrence of oldID in path
// with newID, but only where the match is not part of a longer hex/hyphen run.
// Occurrences written in upper case receive an upper-case newID. oldID and
// newID must already be normalized.
func replaceIDToken(path, oldID, newID string) string {
	if oldID == "" || len(path) < len(oldID) {
		return path
	}
	lower := asciiLower(path)
	var b strings.Builder
	last := 0
	for i := 0; i+len(oldID) <= len(lower); {
		j := strings.Index(lower[i:], oldID)
		if j < 0 {
			break
		}
		start := i + j
		end := start + len(oldID)
		if isIDBoundary(lower, start-1) && isIDBoundary(lower, end) {
			b.WriteString(path[last:start])
			if match := path[start:end]; match != lower[start:end] {
				b.WriteString(strings.ToUpper(newID))
			} else {
				b.WriteString(newID)
			}
			last = end
			i = end
			continue
		}
		i = start + 1
	}
	if last == 0 {
		return path
	}
	b.WriteString(path[last:])
	return b.String()
}

func isIDBoundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	c := s[i]
	switch {
	case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c == '-':
		return false
	}
	return true
}

// asciiLower lower-cases A-Z only, so byte offsets stay aligned with s.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
