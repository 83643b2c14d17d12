// Package phone normalizes and validates the phone numbers users type or
// share as contacts.
package phone

import (
	"regexp"
	"strings"
)

// The accepted national formats: Uzbek mobile numbers and Russian ones.
var (
	uzPattern = regexp.MustCompile(`^\+998\d{9}$`)
	ruPattern = regexp.MustCompile(`^\+7\d{10}$`)
)

// Normalize strips all whitespace, rewrites the local trunk prefix "0" to
// "+998" and prepends "+" when missing. Normalizing an already normalized
// number is a no-op.
func Normalize(raw string) string {
	p := strings.Join(strings.Fields(raw), "")
	if p == "" {
		return p
	}
	if strings.HasPrefix(p, "0") {
		p = "+998" + p[1:]
	}
	if !strings.HasPrefix(p, "+") {
		p = "+" + p
	}
	return p
}

// Valid reports whether a normalized number matches one of the accepted
// national formats.
func Valid(p string) bool {
	return uzPattern.MatchString(p) || ruPattern.MatchString(p)
}
