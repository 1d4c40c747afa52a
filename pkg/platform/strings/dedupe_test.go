package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil slice", input: nil, expected: nil},
		{name: "empty slice", input: []string{}, expected: []string{}},
		{name: "trims entries", input: []string{" Draft ", "Attachment"}, expected: []string{"Draft", "Attachment"}},
		{name: "drops blanks", input: []string{"", "  ", "Draft"}, expected: []string{"Draft"}},
		{name: "keeps first occurrence", input: []string{"Draft", "Attachment", "Draft "}, expected: []string{"Draft", "Attachment"}},
		{name: "case sensitive", input: []string{"Draft", "draft"}, expected: []string{"Draft", "draft"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeFold(t *testing.T) {
	assert.Nil(t, NormalizeFold(nil))
	assert.Equal(t, []string{"Draft", "Attachment"}, NormalizeFold([]string{"Draft", " draft", "DRAFT", "Attachment"}))
}
