package validation

import "testing"

func TestValidatePhone(t *testing.T) {
	cases := []struct {
		phone string
		want  bool
	}{
		{"9876543210", true},
		{"0000000000", true},
		{"987654321", false},
		{"98765432100", false},
		{"+919876543210", false},
		{"98765abcde", false},
		{"", false},
	}
	for _, c := range cases {
		if got := ValidatePhone(c.phone); got != c.want {
			t.Errorf("ValidatePhone(%q) = %v, want %v", c.phone, got, c.want)
		}
	}
}

func TestValidateOTPCode(t *testing.T) {
	cases := []struct {
		code string
		want bool
	}{
		{"1234", true},
		{"123456", true},
		{"123", false},
		{"1234567", false},
		{"12a4", false},
		{"", false},
	}
	for _, c := range cases {
		if got := ValidateOTPCode(c.code); got != c.want {
			t.Errorf("ValidateOTPCode(%q) = %v, want %v", c.code, got, c.want)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello\x00world  "); got != "helloworld" {
		t.Errorf("SanitizeString = %q", got)
	}
}
