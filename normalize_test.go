package chartifact

import "testing"

func TestNormalizeSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "already normal", in: "a\n\nb\n", want: "a\n\nb\n"},
		{name: "crlf", in: "a\r\nb\r\n", want: "a\nb\n"},
		{name: "bare cr", in: "a\rb", want: "a\nb"},
		{name: "mixed endings", in: "a\r\nb\rc\n", want: "a\nb\nc\n"},
		{name: "blank run collapses", in: "a\n\n\n\nb", want: "a\n\nb"},
		{name: "crlf blank run", in: "a\r\n\r\n\r\nb", want: "a\n\nb"},
		{name: "single blank kept", in: "a\n\nb", want: "a\n\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := NormalizeSource(tt.in); got != tt.want {
				t.Errorf("NormalizeSource(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeSourceIdempotent(t *testing.T) {
	t.Parallel()

	in := "a\r\n\r\n\r\nb\rc"
	once := NormalizeSource(in)
	if twice := NormalizeSource(once); twice != once {
		t.Errorf("second pass changed output: %q vs %q", once, twice)
	}
}
