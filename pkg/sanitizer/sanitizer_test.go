package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "Harbor Kitchen", "Harbor Kitchen"},
		{"leading and trailing", "  Harbor Kitchen  ", "Harbor Kitchen"},
		{"interior runs collapse", "Harbor   \t Kitchen", "Harbor Kitchen"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.expected {
				t.Errorf("TrimAndNormalize(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIdempotence(t *testing.T) {
	inputs := []string{"  Portland  ", "SEA\ttown", "x"}
	for _, in := range inputs {
		once := NormalizeCity(in)
		twice := NormalizeCity(once)
		if once != twice {
			t.Errorf("NormalizeCity is not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalizeCurrency(t *testing.T) {
	if got := NormalizeCurrency(" USD "); got != "usd" {
		t.Errorf("NormalizeCurrency = %q, expected usd", got)
	}
}
