package core

import (
	"strings"
	"unicode"
)

// KeyValueSeparator separates a header key from its value.
const KeyValueSeparator = ": "

// Line is a non-blank physical line of the source text.
type Line struct {
	Number int // 1-based position in the source
	Text   string
}

// TokenKind distinguishes the three shapes a line can take.
type TokenKind int

const (
	TokenHeader TokenKind = iota + 1 // "Key: Value"
	TokenDetail                      // delimited or prefix-marked record line
	TokenMarker                      // bare section marker such as "---"
)

func (k TokenKind) String() string {
	switch k {
	case TokenHeader:
		return "header"
	case TokenDetail:
		return "detail"
	case TokenMarker:
		return "marker"
	}
	return "unknown"
}

// Token is a classified line.
type Token struct {
	Kind   TokenKind
	Line   int
	Text   string
	Key    string   // headers only
	Value  string   // headers only
	Fields []string // details only
}

// Grammar configures how a format's lines are classified.
type Grammar struct {
	// HeaderKeys lists the accepted header keys; any other key is UnknownKey.
	HeaderKeys []string

	// Markers are lines that must match exactly to open or close a section.
	Markers []string

	// DetailPrefix marks record lines, e.g. "*". The prefix and surrounding
	// whitespace are removed from the payload.
	DetailPrefix string

	// Delimiter splits a detail payload into fields. Without a DetailPrefix,
	// any line containing the delimiter is a detail line.
	Delimiter string

	// TrimLines trims every line before classification. Formats that report
	// LeadingWhitespace and TrailingWhitespace leave it off.
	TrimLines bool
}

// SplitLines splits content on "\r\n" or "\n" and drops blank lines.
// It fails with EmptyContent when nothing is left.
func SplitLines(content string, trim bool) ([]Line, error) {
	raw := strings.Split(content, "\n")
	lines := make([]Line, 0, len(raw))

	for i, text := range raw {
		text = strings.TrimSuffix(text, "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		if trim {
			text = strings.TrimSpace(text)
		}
		lines = append(lines, Line{Number: i + 1, Text: text})
	}

	if len(lines) == 0 {
		return nil, newError(EmptyContent, 0)
	}
	return lines, nil
}

// Classify turns a line into a token, validating header syntax.
func (g Grammar) Classify(l Line) (Token, error) {
	tok := Token{Line: l.Number, Text: l.Text}

	for _, m := range g.Markers {
		if l.Text == m {
			tok.Kind = TokenMarker
			return tok, nil
		}
	}

	if g.DetailPrefix != "" && strings.HasPrefix(l.Text, g.DetailPrefix) {
		tok.Kind = TokenDetail
		tok.Fields = g.split(strings.TrimSpace(strings.TrimPrefix(l.Text, g.DetailPrefix)))
		return tok, nil
	}

	if g.DetailPrefix == "" && g.Delimiter != "" && strings.Contains(l.Text, g.Delimiter) {
		tok.Kind = TokenDetail
		tok.Fields = g.split(l.Text)
		return tok, nil
	}

	key, value, err := ParseKeyValue(l.Text, l.Number)
	if err != nil {
		return tok, err
	}
	if !g.isHeaderKey(key) {
		return tok, &ImportError{Kind: UnknownKey, Line: l.Number, Detail: key}
	}

	tok.Kind = TokenHeader
	tok.Key = key
	tok.Value = value
	return tok, nil
}

func (g Grammar) split(payload string) []string {
	if g.Delimiter == "" {
		return []string{payload}
	}
	return strings.Split(payload, g.Delimiter)
}

func (g Grammar) isHeaderKey(key string) bool {
	for _, k := range g.HeaderKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Tokenize splits and classifies content in one pass, stopping at the
// first invalid line.
func Tokenize(content string, g Grammar) ([]Token, error) {
	lines, err := SplitLines(content, g.TrimLines)
	if err != nil {
		return nil, err
	}

	tokens := make([]Token, 0, len(lines))
	for _, l := range lines {
		tok, err := g.Classify(l)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

// ParseKeyValue validates a "Key: Value" line and returns its parts.
//
// Checks run in a fixed order: the separator must occur exactly once,
// the key must not start with whitespace, the value must not end with
// whitespace, and neither may be blank.
func ParseKeyValue(text string, line int) (key, value string, err error) {
	if strings.Count(text, KeyValueSeparator) != 1 {
		return "", "", newError(InvalidKeyValueFormat, line)
	}

	key, value, _ = strings.Cut(text, KeyValueSeparator)

	if key != strings.TrimLeftFunc(key, unicode.IsSpace) {
		return "", "", newError(LeadingWhitespace, line)
	}
	if value != strings.TrimRightFunc(value, unicode.IsSpace) {
		return "", "", newError(TrailingWhitespace, line)
	}
	if strings.TrimSpace(key) == "" || strings.TrimSpace(value) == "" {
		return "", "", newError(EmptyField, line)
	}

	return key, value, nil
}
