package secrettoken

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	t.Run("success - minimum size", func(t *testing.T) {
		token, err := Generate(MinBytes)
		require.NoError(t, err)
		assert.NoError(t, Validate(token))
	})

	t.Run("success - maximum size fits the provider limit", func(t *testing.T) {
		token, err := Generate(MaxBytes)
		require.NoError(t, err)
		assert.Len(t, token, 256)
		assert.NoError(t, Validate(token))
	})

	t.Run("error - too small", func(t *testing.T) {
		_, err := Generate(MinBytes - 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret size must be between")
	})

	t.Run("error - too large", func(t *testing.T) {
		_, err := Generate(MaxBytes + 1)
		require.Error(t, err)
	})

	t.Run("randomness - generates different secrets", func(t *testing.T) {
		a, err1 := Generate(32)
		b, err2 := Generate(32)
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.NotEqual(t, a, b)
	})
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("abc_DEF-123"))
	assert.Error(t, Validate(""))
	assert.Error(t, Validate("has space"))
	assert.Error(t, Validate("dots.not.allowed"))
}

func TestVerify(t *testing.T) {
	assert.True(t, Verify("", "anything"))
	assert.True(t, Verify("s3cret", "s3cret"))
	assert.False(t, Verify("s3cret", "s3cre"))
	assert.False(t, Verify("s3cret", ""))
}
