package notion

import (
	"encoding/json"
	"testing"
)

func TestFormatDatabaseID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"bare 32 hex characters",
			"1234567890abcdef1234567890abcdef",
			"12345678-90ab-cdef-1234-567890abcdef",
		},
		{
			"already hyphenated",
			"12345678-90ab-cdef-1234-567890abcdef",
			"12345678-90ab-cdef-1234-567890abcdef",
		},
		{
			"surrounding whitespace stripped",
			"  1234567890abcdef1234567890abcdef ",
			"12345678-90ab-cdef-1234-567890abcdef",
		},
		{
			"wrong length passes through",
			"short-id",
			"short-id",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatDatabaseID(tc.in); got != tc.want {
				t.Errorf("FormatDatabaseID(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestPropertyTextValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"title", `{"type":"title","title":[{"plain_text":"flux-pro"}]}`, "flux-pro"},
		{"rich text", `{"type":"rich_text","rich_text":[{"plain_text":"14:00:00"}]}`, "14:00:00"},
		{"select", `{"type":"select","select":{"name":"prod-key"}}`, "prod-key"},
		{"empty title", `{"type":"title","title":[]}`, ""},
		{"null select", `{"type":"select","select":null}`, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var p property
			if err := json.Unmarshal([]byte(tc.raw), &p); err != nil {
				t.Fatalf("decoding property: %v", err)
			}
			if got := p.textValue(); got != tc.want {
				t.Errorf("textValue() = %q, want %q", got, tc.want)
			}
		})
	}
}
