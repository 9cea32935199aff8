package openai

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `[{"invoice_id":"INV-1"}]`, `[{"invoice_id":"INV-1"}]`},
		{"json fence", "```json\n[]\n```", "[]"},
		{"plain fence", "```\n[]\n```", "[]"},
		{"surrounding whitespace", "  []  ", "[]"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := stripCodeFences(tc.in); got != tc.want {
				t.Errorf("stripCodeFences(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestOutputTextConcatenatesMessages(t *testing.T) {
	raw := `{"output":[
		{"type":"mcp_call"},
		{"type":"message","content":[{"type":"output_text","text":"[{\"invoice_id\""}]},
		{"type":"message","content":[{"type":"output_text","text":":\"INV-1\"}]"}]}
	]}`

	var payload responsePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("decoding payload: %v", err)
	}
	if got := payload.outputText(); got != `[{"invoice_id":"INV-1"}]` {
		t.Errorf("outputText() = %q", got)
	}
}

func TestExtractionPromptDates(t *testing.T) {
	prompt := extractionPrompt("Your Replit receipt", "2024-01-01", "2024-03-31")

	if !strings.Contains(prompt, `after:2024/01/01 before:2024/03/31`) {
		t.Errorf("prompt should carry Gmail-format date operators, got:\n%s", prompt)
	}
	if !strings.Contains(prompt, `"Your Replit receipt"`) {
		t.Errorf("prompt should carry the quoted search keyword")
	}
}
