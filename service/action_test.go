package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     string
		expected Action
		wantErr  bool
	}{
		{
			name:     "debtor selection",
			data:     "select_debtor:abc-123",
			expected: Action{Kind: ActionSelectDebtor, ID: "abc-123"},
		},
		{
			name:     "empty id",
			data:     "back_to_debtors:",
			expected: Action{Kind: ActionBackToDebtors},
		},
		{
			name:     "page number",
			data:     "stats_page:3",
			expected: Action{Kind: ActionStatsPage, ID: "3"},
		},
		{name: "unknown kind", data: "drop_tables:1", wantErr: true},
		{name: "no separator", data: "select_debtor", wantErr: true},
		{name: "empty", data: "", wantErr: true},
		{name: "uppercase kind", data: "SELECT_DEBTOR:1", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			action, err := ParseAction(tc.data)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, action)
		})
	}
}

func TestActionEncodeRoundTrip(t *testing.T) {
	t.Parallel()

	original := Action{Kind: ActionApprovePay, ID: "payment-42"}
	parsed, err := ParseAction(original.Encode())
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
}
