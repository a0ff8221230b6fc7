package password

import (
	"regexp"
	"unicode/utf8"
)

// Rule names double as machine-readable rejection reasons.
const (
	RuleRequired  = "password_required"
	RuleUppercase = "password_needs_uppercase"
	RuleLowercase = "password_needs_lowercase"
	RuleSpecial   = "password_needs_special"
	RuleDigit     = "password_needs_digit"
	RuleMinLength = "password_too_short"
)

const minLength = 8

var (
	hasUpper   = regexp.MustCompile(`[A-Z]`)
	hasLower   = regexp.MustCompile(`[a-z]`)
	hasDigit   = regexp.MustCompile(`[0-9]`)
	hasSpecial = regexp.MustCompile(`[^A-Za-z0-9]`)

	// legacy registration-form check: only .com addresses pass.
	emailPattern = regexp.MustCompile(`^.+@.+\.com$`)
)

type Result struct {
	Rule    string // empty when accepted
	Message string
}

func (r Result) OK() bool {
	return r.Rule == ""
}

type rule struct {
	name    string
	message string
	ok      func(string) bool
}

// evaluated in order, first failure wins.
var rules = []rule{
	{RuleRequired, "password must not be empty", func(s string) bool { return s != "" }},
	{RuleUppercase, "password needs at least one uppercase letter", hasUpper.MatchString},
	{RuleLowercase, "password needs at least one lowercase letter", hasLower.MatchString},
	{RuleSpecial, "password needs at least one special character", hasSpecial.MatchString},
	{RuleDigit, "password needs at least one digit", hasDigit.MatchString},
	// characters, not bytes: multibyte passwords count each rune once
	{RuleMinLength, "password must be at least 8 characters", func(s string) bool { return utf8.RuneCountInString(s) >= minLength }},
}

// Validate checks a candidate password against the policy. It is pure:
// any string is valid input and the worst possible answer is a rejection.
func Validate(candidate string) Result {
	for _, r := range rules {
		if !r.ok(candidate) {
			return Result{Rule: r.name, Message: r.message}
		}
	}

	return Result{}
}

// ValidEmail reports whether the address matches the registration form's
// pattern. Non-.com domains are rejected, which is a known limitation.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
