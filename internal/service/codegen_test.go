package service

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davimurta/aurora-pairing-server/internal/config"
)

func TestCodeGenerator(t *testing.T) {
	gen := NewCodeGenerator()

	t.Run("generates 6-character uppercase alphanumeric codes", func(t *testing.T) {
		pattern := regexp.MustCompile(`^[A-Z0-9]{6}$`)
		for i := 0; i < 50; i++ {
			code, err := gen.Generate()
			require.NoError(t, err)
			assert.True(t, pattern.MatchString(code), "code should match ^[A-Z0-9]{6}$, got: %s", code)
		}
	})

	t.Run("uses only the configured alphabet", func(t *testing.T) {
		code, err := gen.Generate()
		require.NoError(t, err)
		for _, c := range code {
			assert.Contains(t, config.CodeAlphabet, string(c))
		}
	})

	t.Run("generates unique codes", func(t *testing.T) {
		codes := make(map[string]bool)
		for i := 0; i < 100; i++ {
			code, err := gen.Generate()
			require.NoError(t, err)
			assert.False(t, codes[code], "duplicate code generated: %s", code)
			codes[code] = true
		}
	})

	t.Run("is deterministic for a fixed source", func(t *testing.T) {
		seed := bytes.Repeat([]byte{0x07, 0x42, 0xA3, 0x1C}, 16)

		first, err := NewCodeGeneratorWithSource(bytes.NewReader(seed)).Generate()
		require.NoError(t, err)
		second, err := NewCodeGeneratorWithSource(bytes.NewReader(seed)).Generate()
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("fails when the source is exhausted", func(t *testing.T) {
		_, err := NewCodeGeneratorWithSource(bytes.NewReader(nil)).Generate()
		assert.Error(t, err)
	})
}

func TestCodeAlphabet(t *testing.T) {
	t.Run("covers the full A-Z0-9 set", func(t *testing.T) {
		assert.Len(t, config.CodeAlphabet, 36)
		for c := 'A'; c <= 'Z'; c++ {
			assert.Contains(t, config.CodeAlphabet, string(c))
		}
		for c := '0'; c <= '9'; c++ {
			assert.Contains(t, config.CodeAlphabet, string(c))
		}
	})
}
