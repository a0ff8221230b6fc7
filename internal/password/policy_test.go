package password_test

import (
	"testing"

	"github.com/anylearn/anylearn/internal/password"
)

func TestValidate_RejectsWithFirstViolatedRule(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantRule string
	}{
		{"empty", "", password.RuleRequired},
		{"missing uppercase", "abcdef1!", password.RuleUppercase},
		{"missing lowercase", "ABCDEF1!", password.RuleLowercase},
		{"missing special", "Abcdefg1", password.RuleSpecial},
		{"missing digit", "Abcdefg!", password.RuleDigit},
		{"too short", "Ab1!xyz", password.RuleMinLength},
		// 7 characters but 10 bytes; length counts runes, not bytes
		{"too short multibyte", "ÜÜÜA1a?", password.RuleMinLength},

		// multiple rules violated: the earliest one must win
		{"missing upper and digit", "abcdefg!", password.RuleUppercase},
		{"missing lower and special", "ABCDEFG1", password.RuleLowercase},
		{"short and missing digit", "Ab!", password.RuleDigit},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := password.Validate(tc.input)

			if res.OK() {
				t.Fatalf("Validate(%q) accepted, want rejection %s", tc.input, tc.wantRule)
			}

			if res.Rule != tc.wantRule {
				t.Fatalf("Validate(%q) rule = %s, want %s", tc.input, res.Rule, tc.wantRule)
			}

			if res.Message == "" {
				t.Fatalf("Validate(%q) rejection should carry a message", tc.input)
			}
		})
	}
}

func TestValidate_AcceptsCompliantPasswords(t *testing.T) {
	for _, input := range []string{
		"Abcd123!",
		"P@ssw0rdP@ssw0rd",
		"xY9#minimal",
		"ÜberSafe9?", // multibyte counts as special
		"ÜÜÜÜA1a?",   // exactly 8 characters across 12 bytes
	} {
		res := password.Validate(input)

		if !res.OK() {
			t.Fatalf("Validate(%q) rejected with %s, want accepted", input, res.Rule)
		}

		if res.Rule != "" || res.Message != "" {
			t.Fatalf("accepted result should be zero-valued, got %+v", res)
		}
	}
}

func TestValidate_IsDeterministic(t *testing.T) {
	// same input, same first-failed rule, every time
	for i := 0; i < 100; i++ {
		res := password.Validate("abc")

		if res.Rule != password.RuleUppercase {
			t.Fatalf("iteration %d: rule = %s, want %s", i, res.Rule, password.RuleUppercase)
		}
	}
}

func TestValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"alice@example.com", true},
		{"a@b.com", true},
		{"alice+tag@sub.domain.com", true},
		{"", false},
		{"@example.com", false},
		{"alice@", false},
		{"alice", false},
		// the legacy pattern only admits .com; these are expected misses
		{"alice@example.org", false},
		{"alice@example.co.uk", false},
	}

	for _, tc := range tests {
		if got := password.ValidEmail(tc.email); got != tc.want {
			t.Fatalf("ValidEmail(%q) = %v, want %v", tc.email, got, tc.want)
		}
	}
}
