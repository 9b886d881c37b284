package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateShortCode_BasicProperties(t *testing.T) {
	code, err := GenerateShortCode(DefaultCodeLength)

	assert.NoError(t, err)

	assert.Len(t, code, 5, "Short code should be 5 characters long")

	assert.Regexp(t, "^[a-z0-9]+$", code, "Short code should only contain lowercase alphanumeric characters")
}

func TestGenerateShortCode_ConfigurableLength(t *testing.T) {
	for _, length := range []int{4, 5, 6, 8} {
		code, err := GenerateShortCode(length)

		assert.NoError(t, err)
		assert.Len(t, code, length)
	}
}

func TestGenerateShortCode_InvalidLength(t *testing.T) {
	_, err := GenerateShortCode(0)
	assert.Error(t, err)

	_, err = GenerateShortCode(-1)
	assert.Error(t, err)
}

func TestGenerateShortCode_Uniqueness(t *testing.T) {
	codes := make(map[string]bool, 1000)

	for i := 0; i < 1000; i++ {
		code, err := GenerateShortCode(8)
		assert.NoError(t, err)

		assert.False(t, codes[code], "Duplicate code generated: %s", code)
		codes[code] = true
	}

	assert.Equal(t, 1000, len(codes), "Should generate 1000 unique codes")
}
