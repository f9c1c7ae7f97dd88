package dice

import (
	"crypto/rand"
	"math/big"
)

// float64Denominator is 2^53, the number of evenly spaced float64 values in [0, 1).
const float64Denominator = 1 << 53

// cryptoSource implements Source using crypto/rand.
//
// Invariant: values are uniformly distributed in [0, n) for Intn and [0, 1) for Float64.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a uniformly distributed random int in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" otherwise.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// Float64 returns a uniformly distributed random float64 in [0, 1).
func (c *cryptoSource) Float64() float64 {
	return float64(c.Intn(float64Denominator)) / float64Denominator
}

