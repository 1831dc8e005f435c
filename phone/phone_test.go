package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"leading zero", "0501234567", "+966501234567"},
		{"already international", "+966501234567", "+966501234567"},
		{"bare country code", "966501234567", "+966501234567"},
		{"double zero prefix", "00966501234567", "+966501234567"},
		{"no prefix at all", "501234567", "+966501234567"},
		{"spaces and dashes", "050-123 4567", "+966501234567"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestDomestic(t *testing.T) {
	assert.Equal(t, "0501234567", Domestic("+966501234567"))
	assert.Equal(t, "0501234567", Domestic("0501234567"))
	assert.Equal(t, "0501234567", Domestic("966 50 123 4567"))
	assert.Equal(t, "", Domestic(""))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("0501234567", "+966501234567"))
	assert.True(t, Equal("00966501234567", "966501234567"))
	assert.True(t, Equal("050 123-4567", "0501234567"))
	assert.False(t, Equal("0501234567", "0501234568"))
	assert.False(t, Equal("", "0501234567"))
	assert.False(t, Equal("", ""))
}

func TestNormalizeDirtyInputDoesNotError(t *testing.T) {
	// Unparsable junk still normalizes to a best-effort string
	assert.Equal(t, "", Normalize("abc"))
	assert.Equal(t, "+966123", Normalize("abc123"))
}
