package service

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/davimurta/aurora-pairing-server/internal/config"
)

// CodeGenerator draws 6-character connection codes from the A-Z0-9 alphabet.
// It holds no mutable state of its own: safety across goroutines is that of
// the supplied random source.
type CodeGenerator struct {
	source io.Reader
}

// NewCodeGenerator uses crypto/rand as the random source.
func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{source: rand.Reader}
}

// NewCodeGeneratorWithSource allows injecting a deterministic source in tests.
func NewCodeGeneratorWithSource(source io.Reader) *CodeGenerator {
	return &CodeGenerator{source: source}
}

var alphabetSize = big.NewInt(int64(len(config.CodeAlphabet)))

// Generate returns one uniformly drawn code. rand.Int rejection-samples, so
// every symbol is equally likely.
func (g *CodeGenerator) Generate() (string, error) {
	code := make([]byte, config.CodeLength)
	for i := range code {
		n, err := rand.Int(g.source, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("draw random symbol: %w", err)
		}
		code[i] = config.CodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
