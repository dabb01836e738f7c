package resolve

import (
	"regexp"
	"strings"
)

var cjkRE = regexp.MustCompile(`[\x{4e00}-\x{9fff}]`)

// FormatAuthorParts renders family/given parts as "Family, Given" display
// form. CJK names pass through unchanged (family directly followed by given,
// no separator).
func FormatAuthorParts(family, given string) string {
	family = strings.TrimSpace(family)
	given = strings.TrimSpace(given)

	if cjkRE.MatchString(family + given) {
		return family + given
	}

	switch {
	case family != "" && given != "":
		return family + ", " + given
	case family != "":
		return family
	default:
		return given
	}
}

// FormatDisplayName converts "Given Family" display names to "Family, Given".
// CJK names pass through unchanged.
func FormatDisplayName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if cjkRE.MatchString(name) {
		return name
	}
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return name
	}
	return parts[len(parts)-1] + ", " + strings.Join(parts[:len(parts)-1], " ")
}

// FirstAuthorSurname pulls the last name token of the first listed author
// from a semicolon-joined author string.
func FirstAuthorSurname(authors string) string {
	first := strings.TrimSpace(strings.SplitN(authors, ";", 2)[0])
	if first == "" {
		return ""
	}
	parts := strings.Fields(first)
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}
