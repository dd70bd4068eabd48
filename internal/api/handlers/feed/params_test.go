package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFlag(t *testing.T) {
	tests := []struct {
		value    string
		expected bool
	}{
		{"", false},
		{"false", false},
		{"FALSE", false},
		{"False", false},
		{"no", false},
		{"No", false},
		{"off", false},
		{"OFF", false},
		{"true", true},
		{"1", true},
		{"yes", true},
		{"on", true},
		{"anything", true},
		{"0", true}, // only the explicit false words count as false
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseFlag(tt.value), "ParseFlag(%q)", tt.value)
	}
}
