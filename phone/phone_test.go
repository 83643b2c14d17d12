package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{name: "already normalized", raw: "+998901234567", expected: "+998901234567"},
		{name: "missing plus", raw: "998901234567", expected: "+998901234567"},
		{name: "local trunk prefix", raw: "0901234567", expected: "+998901234567"},
		{name: "spaces inside", raw: "+998 90 123 45 67", expected: "+998901234567"},
		{name: "surrounding whitespace", raw: "  998901234567\t", expected: "+998901234567"},
		{name: "russian number", raw: "79261234567", expected: "+79261234567"},
		{name: "empty", raw: "", expected: ""},
		{name: "whitespace only", raw: "   ", expected: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Normalize(tc.raw))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"0901234567", "+998 90 123 45 67", "79261234567", "abc"} {
		once := Normalize(raw)
		assert.Equal(t, once, Normalize(once), "normalizing %q twice", raw)
	}
}

func TestValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		phone string
		valid bool
	}{
		{phone: "+998901234567", valid: true},
		{phone: "+79261234567", valid: true},
		{phone: "+99890123456", valid: false},   // one digit short
		{phone: "+9989012345678", valid: false}, // one digit long
		{phone: "998901234567", valid: false},   // not normalized
		{phone: "+12025550123", valid: false},   // unsupported country
		{phone: "", valid: false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.valid, Valid(tc.phone), "phone %q", tc.phone)
	}
}
