package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"plain", "+491234567890", "+491234567890", true},
		{"spaces and dashes", "+49 123 456-7890", "+491234567890", true},
		{"parentheses", "+1 (555) 123-4567", "+15551234567", true},
		{"tabs", "+44\t7700\t900123", "+447700900123", true},
		{"minimum length", "+1234567", "+1234567", true},
		{"maximum length", "+123456789012345", "+123456789012345", true},
		{"missing plus", "491234567890", "", false},
		{"leading zero", "+0491234567890", "", false},
		{"too short", "+123456", "", false},
		{"too long", "+1234567890123456", "", false},
		{"letters", "+49abc1234567", "", false},
		{"empty", "", "", false},
		{"plus only", "+", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizePhone(tc.in)
			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
			} else {
				assert.ErrorIs(t, err, ErrInvalidPhone)
			}
		})
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	once, err := NormalizePhone("+49 (123) 456-7890")
	require.NoError(t, err)
	twice, err := NormalizePhone(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}
