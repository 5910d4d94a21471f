package postgres

import "testing"

func TestEscapeLike(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"deploy", "deploy"},
		{"100%", `100\%`},
		{"snake_case", `snake\_case`},
		{`back\slash`, `back\\slash`},
		{`%_\`, `\%\_\\`},
	}
	for _, tc := range cases {
		if got := escapeLike(tc.in); got != tc.want {
			t.Errorf("escapeLike(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestClampLimit(t *testing.T) {
	t.Parallel()

	if got := clampLimit(0, 100); got != 100 {
		t.Errorf("clampLimit(0, 100) = %d, want 100", got)
	}
	if got := clampLimit(500, 100); got != 100 {
		t.Errorf("clampLimit(500, 100) = %d, want 100", got)
	}
	if got := clampLimit(25, 100); got != 25 {
		t.Errorf("clampLimit(25, 100) = %d, want 25", got)
	}
}
