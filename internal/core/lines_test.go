package core

import (
	"errors"
	"reflect"
	"testing"
)

// =============================================================================
// SplitLines
// =============================================================================

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
		trim    bool
		want    []Line
	}{
		{
			name:    "unix newlines",
			content: "a\nb",
			want:    []Line{{1, "a"}, {2, "b"}},
		},
		{
			name:    "windows newlines",
			content: "a\r\nb\r\n",
			want:    []Line{{1, "a"}, {2, "b"}},
		},
		{
			name:    "blank and whitespace lines dropped, numbers kept",
			content: "a\n\n   \n\tb",
			want:    []Line{{1, "a"}, {4, "\tb"}},
		},
		{
			name:    "trim",
			content: "  a  \n\tb",
			trim:    true,
			want:    []Line{{1, "a"}, {2, "b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitLines(tt.content, tt.trim)
			if err != nil {
				t.Fatalf("SplitLines() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitLines() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestSplitLines_Empty(t *testing.T) {
	for _, content := range []string{"", "\n", "  \r\n\t\n"} {
		_, err := SplitLines(content, false)
		if !errors.Is(err, EmptyContent) {
			t.Errorf("SplitLines(%q) error = %v, want EmptyContent", content, err)
		}
	}
}

// =============================================================================
// ParseKeyValue
// =============================================================================

func TestParseKeyValue(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantKey   string
		wantValue string
		wantKind  ErrorKind
	}{
		{name: "valid", line: "EMP-ID: 12345", wantKey: "EMP-ID", wantValue: "12345"},
		{name: "value with inner spaces", line: "EMP-NAME: Jane Doe", wantKey: "EMP-NAME", wantValue: "Jane Doe"},
		{name: "missing separator", line: "EMP-ID:12345", wantKind: InvalidKeyValueFormat},
		{name: "no colon", line: "EMP-ID 12345", wantKind: InvalidKeyValueFormat},
		{name: "separator twice", line: "EMP-NAME: Jane: Doe", wantKind: InvalidKeyValueFormat},
		{name: "leading whitespace", line: "  EMP-ID: 12345", wantKind: LeadingWhitespace},
		{name: "trailing whitespace", line: "EMP-ID: 12345 ", wantKind: TrailingWhitespace},
		{name: "empty value", line: "EMP-ID: ", wantKind: EmptyField},
		{name: "empty key", line: ": 12345", wantKind: EmptyField},
		{name: "leading beats trailing", line: " EMP-ID: 1 ", wantKind: LeadingWhitespace},
		{name: "format beats leading", line: " EMP-ID:1", wantKind: InvalidKeyValueFormat},
		{name: "trailing beats empty", line: "EMP-ID:  ", wantKind: TrailingWhitespace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, value, err := ParseKeyValue(tt.line, 7)

			if tt.wantKind != 0 {
				var ie *ImportError
				if !errors.As(err, &ie) {
					t.Fatalf("ParseKeyValue(%q) error = %v, want %v", tt.line, err, tt.wantKind)
				}
				if ie.Kind != tt.wantKind {
					t.Errorf("Kind = %v, want %v", ie.Kind, tt.wantKind)
				}
				if ie.Line != 7 {
					t.Errorf("Line = %d, want 7", ie.Line)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseKeyValue(%q) unexpected error: %v", tt.line, err)
			}
			if key != tt.wantKey || value != tt.wantValue {
				t.Errorf("ParseKeyValue(%q) = (%q, %q), want (%q, %q)", tt.line, key, value, tt.wantKey, tt.wantValue)
			}
		})
	}
}

// =============================================================================
// Classify / Tokenize
// =============================================================================

func TestGrammarClassify(t *testing.T) {
	g := Grammar{
		HeaderKeys:   []string{"Wishlist"},
		Markers:      []string{"Items:", "---"},
		DetailPrefix: "*",
		Delimiter:    ";",
	}

	tests := []struct {
		name       string
		text       string
		wantKind   TokenKind
		wantFields []string
		wantErr    ErrorKind
	}{
		{name: "marker", text: "Items:", wantKind: TokenMarker},
		{name: "separator", text: "---", wantKind: TokenMarker},
		{name: "detail", text: "* Lego; Toys", wantKind: TokenDetail, wantFields: []string{"Lego", " Toys"}},
		{name: "header", text: "Wishlist: Anna", wantKind: TokenHeader},
		{name: "unknown key", text: "Owner: Anna", wantErr: UnknownKey},
		{name: "malformed header", text: "Wishlist Anna", wantErr: InvalidKeyValueFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := g.Classify(Line{Number: 3, Text: tt.text})
			if tt.wantErr != 0 {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Classify(%q) error = %v, want %v", tt.text, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Classify(%q) unexpected error: %v", tt.text, err)
			}
			if tok.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", tok.Kind, tt.wantKind)
			}
			if tt.wantFields != nil && !reflect.DeepEqual(tok.Fields, tt.wantFields) {
				t.Errorf("Fields = %q, want %q", tok.Fields, tt.wantFields)
			}
		})
	}
}

func TestGrammarClassify_DelimiterWithoutPrefix(t *testing.T) {
	tok, err := timesheetGrammar.Classify(Line{Number: 4, Text: `09:00;17:00;"Work";P1`})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if tok.Kind != TokenDetail {
		t.Fatalf("Kind = %v, want detail", tok.Kind)
	}
	want := []string{"09:00", "17:00", `"Work"`, "P1"}
	if !reflect.DeepEqual(tok.Fields, want) {
		t.Errorf("Fields = %q, want %q", tok.Fields, want)
	}
}

func TestTokenize(t *testing.T) {
	tokens, err := Tokenize("Assignee: Rainer\nTodos:\n* Shopping\n\n---\n", todoGrammar)
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}

	wantKinds := []TokenKind{TokenHeader, TokenMarker, TokenDetail, TokenMarker}
	if len(tokens) != len(wantKinds) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(wantKinds))
	}
	for i, k := range wantKinds {
		if tokens[i].Kind != k {
			t.Errorf("tokens[%d].Kind = %v, want %v", i, tokens[i].Kind, k)
		}
	}
	if tokens[0].Key != "Assignee" || tokens[0].Value != "Rainer" {
		t.Errorf("header = (%q, %q), want (Assignee, Rainer)", tokens[0].Key, tokens[0].Value)
	}
	if tokens[2].Fields[0] != "Shopping" {
		t.Errorf("detail payload = %q, want Shopping", tokens[2].Fields[0])
	}
	if tokens[3].Line != 5 {
		t.Errorf("separator line = %d, want 5", tokens[3].Line)
	}
}

func TestTokenize_StopsAtFirstInvalidLine(t *testing.T) {
	_, err := Tokenize("Assignee: A\nOwner: B\nAssignee C", todoGrammar)

	var ie *ImportError
	if !errors.As(err, &ie) {
		t.Fatalf("Tokenize() error = %v, want *ImportError", err)
	}
	if ie.Kind != UnknownKey || ie.Line != 2 {
		t.Errorf("got %v on line %d, want UnknownKey on line 2", ie.Kind, ie.Line)
	}
}
