// Package roomcode generates the short numeric codes players exchange
// to find each other's rooms.
package roomcode

import (
	"fmt"
	rand "math/rand/v2"
)

// Length is the number of digits in a room code.
const Length = 4

const (
	lowest  = 1000
	highest = 9999
)

// RandSource is the randomness a Generator draws from, injectable for
// deterministic tests.
type RandSource interface {
	IntN(n int) int
}

// Generator produces room codes from a RandSource.
type Generator struct {
	randSource RandSource
}

// NewGenerator creates a generator. A nil source falls back to the
// shared math/rand/v2 generator.
func NewGenerator(randSource RandSource) *Generator {
	return &Generator{randSource: randSource}
}

// Generate returns a random 4-digit code in [1000, 9999]. Uniqueness
// against live rooms is the caller's concern.
func (g *Generator) Generate() string {
	n := lowest
	if g.randSource != nil {
		n += g.randSource.IntN(highest - lowest + 1)
	} else {
		n += rand.IntN(highest - lowest + 1)
	}
	return fmt.Sprintf("%04d", n)
}

// Validate checks that a code is exactly four digits with no leading
// zero.
func Validate(code string) error {
	if len(code) != Length {
		return fmt.Errorf("room code must be exactly %d digits, got %d", Length, len(code))
	}
	if code[0] == '0' {
		return fmt.Errorf("room code must not start with 0")
	}
	for i, ch := range code {
		if ch < '0' || ch > '9' {
			return fmt.Errorf("invalid character %c at position %d", ch, i)
		}
	}
	return nil
}
