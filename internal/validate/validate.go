// Package validate holds the small form validators the UI layer calls
// before handing input to the stores or the session manager.
package validate

import (
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// LoginForm trims and checks a username/password pair. Returned errors
// are keyed by field name.
func LoginForm(username, password string) (string, string, map[string]string) {
	errs := map[string]string{}
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" {
		errs["username"] = "username or mobile required"
	}
	if password == "" {
		errs["password"] = "password required"
	}
	return username, password, errs
}

// Email trims and checks an email address.
func Email(email string) (string, map[string]string) {
	errs := map[string]string{}
	email = strings.TrimSpace(email)
	if email == "" {
		errs["email"] = "email required"
	} else if !emailRe.MatchString(email) {
		errs["email"] = "email format invalid"
	}
	return email, errs
}

// CompletionNoteMax is the cap callers enforce before Tasks.Complete.
const CompletionNoteMax = 500

// CompletionNote reports whether a note fits the cap.
func CompletionNote(note string) bool {
	return len([]rune(note)) <= CompletionNoteMax
}

var nonDialRe = regexp.MustCompile(`[^\d+]`)
var nonDigitRe = regexp.MustCompile(`\D`)

// NormalizeAUMobile rewrites an Australian mobile into +61 E.164 form.
// Inputs already carrying a + prefix pass through with separators
// stripped.
func NormalizeAUMobile(input string) string {
	raw := nonDialRe.ReplaceAllString(input, "")
	if strings.HasPrefix(raw, "+") {
		return raw
	}
	digits := nonDigitRe.ReplaceAllString(raw, "")
	switch {
	case strings.HasPrefix(digits, "61"):
		return "+" + digits
	case strings.HasPrefix(digits, "0"):
		return "+61" + digits[1:]
	default:
		return "+61" + digits
	}
}
