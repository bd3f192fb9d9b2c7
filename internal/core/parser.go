package core

import (
	"strings"
	"unicode/utf8"
)

// Parser turns validated source text into records. refs holds the
// persisted reference entities the records should link to. Parse never
// returns an empty slice without an error.
type Parser[T any] interface {
	Parse(content string, refs References) ([]T, error)
}

func tooLong(s string, max int) bool {
	return utf8.RuneCountInString(s) > max
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// firstLine returns the 1-based number of the first line that starts
// with prefix after trimming, or 0 when no line does.
func firstLine(content, prefix string) int {
	for i, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), prefix) {
			return i + 1
		}
	}
	return 0
}

// appearsBefore reports whether a line starting with marker comes before
// the first line starting with owner, or appears with no owner at all.
func appearsBefore(content, marker, owner string) (int, bool) {
	at := firstLine(content, marker)
	if at == 0 {
		return 0, false
	}
	ownerAt := firstLine(content, owner)
	return at, ownerAt == 0 || at < ownerAt
}
