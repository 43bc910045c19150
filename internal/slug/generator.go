// Package slug generates short, URL-safe paste identifiers.
package slug

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// Symbols used for id generation. URL-safe and unambiguous: no O, I, l, 0, 1.
const defaultSymbols = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Generator produces random ids with a fixed alphabet and length.
type Generator struct {
	symbols string
	length  int
}

// New creates a generator for ids of the given length.
func New(length int) *Generator {
	if length <= 0 {
		length = 10
	}
	return &Generator{
		symbols: defaultSymbols,
		length:  length,
	}
}

// Generate creates a new random id of the configured length.
func (g *Generator) Generate() (string, error) {
	result := make([]byte, g.length)
	symbolsLen := big.NewInt(int64(len(g.symbols)))

	for i := range result {
		n, err := rand.Int(rand.Reader, symbolsLen)
		if err != nil {
			return "", err
		}
		result[i] = g.symbols[n.Int64()]
	}
	return string(result), nil
}

// IsValid reports whether id could have been produced by a generator:
// sensible length and alphabet only. Used to reject junk ids before
// touching storage.
func IsValid(id string) bool {
	if len(id) < 4 || len(id) > 21 {
		return false
	}
	for _, char := range id {
		if !strings.ContainsRune(defaultSymbols, char) {
			return false
		}
	}
	return true
}
