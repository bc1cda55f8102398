// Package shortid provides generation and validation of short link identifiers.
// Generators should be safe for concurrent use.
package shortid

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	letters      = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits       = "0123456789"
	alphanumeric = letters + digits

	// Length is the fixed length of generated identifiers.
	Length = 6
)

// Generator generates short link identifiers.
// Implementations should be safe for concurrent use.
type Generator interface {
	Generate() (string, error)
}

// alphanumericGenerator implements Generator using crypto/rand.
// It is safe for concurrent use.
type alphanumericGenerator struct{}

// NewAlphanumeric returns a generator producing fixed-length alphanumeric
// identifiers that always contain at least one letter and one digit, so
// every generated value passes Validate by construction. The guaranteed
// letter and digit are shuffled into random positions.
func NewAlphanumeric() Generator {
	return &alphanumericGenerator{}
}

func (g *alphanumericGenerator) Generate() (string, error) {
	id := make([]byte, 0, Length)

	c, err := pick(letters)
	if err != nil {
		return "", err
	}
	id = append(id, c)

	c, err = pick(digits)
	if err != nil {
		return "", err
	}
	id = append(id, c)

	for i := 2; i < Length; i++ {
		c, err = pick(alphanumeric)
		if err != nil {
			return "", err
		}
		id = append(id, c)
	}

	if err := shuffle(id); err != nil {
		return "", err
	}

	return string(id), nil
}

// pick returns one uniformly random byte from set.
func pick(set string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, fmt.Errorf("read random: %w", err)
	}
	return set[n.Int64()], nil
}

// shuffle permutes b in place via Fisher-Yates so the guaranteed letter
// and digit are not positionally predictable.
func shuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return fmt.Errorf("read random: %w", err)
		}
		j := n.Int64()
		b[i], b[j] = b[j], b[i]
	}
	return nil
}
