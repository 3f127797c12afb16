package chartifact

import (
	"reflect"
	"testing"
)

func collectPlaceholders(doc string) []Placeholder {
	var out []Placeholder
	for p := range ScanPlaceholders(doc) {
		out = append(out, p)
	}
	return out
}

func TestScanPlaceholders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected []Placeholder
	}{
		{
			name:     "no placeholders",
			input:    "just some markdown\n\n# heading",
			expected: nil,
		},
		{
			name:     "empty document",
			input:    "",
			expected: nil,
		},
		{
			name:  "single placeholder",
			input: "See [IMAGE(c1)] here.",
			expected: []Placeholder{
				{Token: "[IMAGE(c1)]", ChartID: "c1"},
			},
		},
		{
			name:  "multiple in order",
			input: "[IMAGE(b)] then [IMAGE(a)] then [IMAGE(c)]",
			expected: []Placeholder{
				{Token: "[IMAGE(b)]", ChartID: "b"},
				{Token: "[IMAGE(a)]", ChartID: "a"},
				{Token: "[IMAGE(c)]", ChartID: "c"},
			},
		},
		{
			name:  "id with non-alphanumeric characters",
			input: "[IMAGE(chart-7.v2)]",
			expected: []Placeholder{
				{Token: "[IMAGE(chart-7.v2)]", ChartID: "chart-7.v2"},
			},
		},
		{
			name:  "empty id",
			input: "[IMAGE()]",
			expected: []Placeholder{
				{Token: "[IMAGE()]", ChartID: ""},
			},
		},
		{
			name:  "repeated identical tokens",
			input: "[IMAGE(c1)] and again [IMAGE(c1)]",
			expected: []Placeholder{
				{Token: "[IMAGE(c1)]", ChartID: "c1"},
				{Token: "[IMAGE(c1)]", ChartID: "c1"},
			},
		},
		{
			name:  "scan stops at first close",
			input: "[IMAGE(a)]b)]",
			expected: []Placeholder{
				{Token: "[IMAGE(a)]", ChartID: "a"},
			},
		},
		{
			name:     "unclosed token ignored",
			input:    "[IMAGE(c1",
			expected: nil,
		},
		{
			name:  "adjacent tokens non-overlapping",
			input: "[IMAGE(a)][IMAGE(b)]",
			expected: []Placeholder{
				{Token: "[IMAGE(a)]", ChartID: "a"},
				{Token: "[IMAGE(b)]", ChartID: "b"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := collectPlaceholders(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ScanPlaceholders() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestScanPlaceholdersRestartable(t *testing.T) {
	t.Parallel()

	seq := ScanPlaceholders("[IMAGE(a)] [IMAGE(b)]")

	first := make([]Placeholder, 0, 2)
	for p := range seq {
		first = append(first, p)
	}
	second := make([]Placeholder, 0, 2)
	for p := range seq {
		second = append(second, p)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("re-ranging the sequence gave %v, want %v", second, first)
	}
}

func TestScanPlaceholdersEarlyStop(t *testing.T) {
	t.Parallel()

	var got []Placeholder
	for p := range ScanPlaceholders("[IMAGE(a)] [IMAGE(b)] [IMAGE(c)]") {
		got = append(got, p)
		if len(got) == 2 {
			break
		}
	}

	if len(got) != 2 || got[1].ChartID != "b" {
		t.Errorf("early stop collected %v, want first two placeholders", got)
	}
}
