package library

import (
	"strings"
)

// Humanize turns a GITenberg repository slug into a display title.
// The catalog suffix (after "_") and the subtitle (after "--") are dropped, hyphens become
// spaces and a space is inserted before every capital letter glued to a preceding word.
// It is a heuristic and gives odd results for some slugs.
func Humanize(raw string) string {
	s := strings.Split(raw, "_")[0]
	s = strings.Split(s, "--")[0]
	s = strings.ReplaceAll(s, "-", " ")

	return strings.Join(splitCapitals(s), " ")
}

// splitCapitals cuts s before each ASCII capital that is neither the first rune nor
// preceded by a space.
func splitCapitals(s string) []string {
	var pieces []string

	start := 0
	prev := rune(-1)
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' && prev != ' ' {
			pieces = append(pieces, s[start:i])
			start = i
		}
		prev = r
	}

	if start < len(s) || len(pieces) == 0 {
		pieces = append(pieces, s[start:])
	}

	return pieces
}

// BookId returns the last "_"-delimited token of a repository name, which by
// convention is the Project Gutenberg catalog number. Trailing separators are ignored.
func BookId(name string) string {
	return lastSegment(name, "_")
}

// Subtitle extracts the part after the last "--" of the slug's title segment, with
// hyphens turned into spaces. ok is false when name has no "--" at all.
func Subtitle(name string) (subtitle string, ok bool) {
	if !strings.Contains(name, "--") {
		return "", false
	}

	title := strings.Split(name, "_")[0]

	return strings.ReplaceAll(lastSegment(title, "--"), "-", " "), true
}

// lastSegment splits s by sep, drops trailing empty pieces and returns the last one left.
func lastSegment(s, sep string) string {
	parts := strings.Split(s, sep)
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}

	if len(parts) == 0 {
		return ""
	}

	return parts[len(parts)-1]
}

func lowerEqual(a, b string) bool {
	return strings.ToLower(a) == strings.ToLower(b)
}
