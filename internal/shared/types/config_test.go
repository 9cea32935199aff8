package types

import "testing"

func TestMaskKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"normal key", "fal-1234567890abcdef", "fal-...cdef"},
		{"short key", "secret", "****"},
		{"empty key", "", "****"},
		{"boundary length", "12345678", "****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskKey(tt.key); got != tt.want {
				t.Errorf("MaskKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestDatabaseFor(t *testing.T) {
	cfg := &Config{
		NotionDatabases: map[string]string{
			"production": "db-prod",
			"empty":      "",
		},
	}

	if got := cfg.DatabaseFor("production", "db-default"); got != "db-prod" {
		t.Errorf("mapped alias = %q, want db-prod", got)
	}
	if got := cfg.DatabaseFor("missing", "db-default"); got != "db-default" {
		t.Errorf("missing alias = %q, want fallback", got)
	}
	if got := cfg.DatabaseFor("empty", "db-default"); got != "db-default" {
		t.Errorf("empty mapping = %q, want fallback", got)
	}
}
