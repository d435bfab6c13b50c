package sealbox

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// Character classes used by GenerateKey
const (
	UpperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	LowerChars  = "abcdefghijklmnopqrstuvwxyz"
	DigitChars  = "0123456789"
	SymbolChars = "!@#$%^&*()-_=+[]{};:,.<>?/|~"

	// AmbiguousChars are removed when ExcludeAmbiguous is set
	AmbiguousChars = "0Oo1lI|"

	DefaultKeyLength = 32
	MaxKeyLength     = 4096
)

// KeyOptions selects the length and alphabet of a generated key
type KeyOptions struct {
	Length  int
	Upper   bool
	Lower   bool
	Digits  bool
	Symbols bool

	// ExcludeAmbiguous drops characters that are easy to misread
	ExcludeAmbiguous bool

	// RequireEachClass rejects keys that miss any selected class
	RequireEachClass bool
}

// DefaultKeyOptions returns a 32 character key over all classes
func DefaultKeyOptions() KeyOptions {
	return KeyOptions{
		Length:  DefaultKeyLength,
		Upper:   true,
		Lower:   true,
		Digits:  true,
		Symbols: true,
	}
}

func (o KeyOptions) classes() []string {
	var classes []string
	add := func(enabled bool, chars string) {
		if !enabled {
			return
		}
		if o.ExcludeAmbiguous {
			chars = strings.Map(func(r rune) rune {
				if strings.ContainsRune(AmbiguousChars, r) {
					return -1
				}
				return r
			}, chars)
		}
		classes = append(classes, chars)
	}
	add(o.Upper, UpperChars)
	add(o.Lower, LowerChars)
	add(o.Digits, DigitChars)
	add(o.Symbols, SymbolChars)
	return classes
}

// Validate checks the options
func (o KeyOptions) Validate() error {
	if err := ValidateSize(o.Length, "length", 1, MaxKeyLength); err != nil {
		return err
	}
	classes := o.classes()
	if len(classes) == 0 {
		return NewValidationError("classes", 0, "at least one character class must be selected")
	}
	if o.RequireEachClass && o.Length < len(classes) {
		return NewValidationError("length", o.Length, fmt.Sprintf("length must be at least %d to include every class", len(classes)))
	}
	return nil
}

// Alphabet returns the characters a key may be drawn from
func (o KeyOptions) Alphabet() string {
	return strings.Join(o.classes(), "")
}

// GenerateKey returns a random key. Each position is drawn independently
// and uniformly from the alphabet using crypto/rand.
func GenerateKey(opts KeyOptions) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}

	alphabet := opts.Alphabet()
	classes := opts.classes()

	for {
		key, err := randomString(alphabet, opts.Length)
		if err != nil {
			return "", err
		}
		if !opts.RequireEachClass || containsEachClass(key, classes) {
			return key, nil
		}
	}
}

func randomString(alphabet string, length int) (string, error) {
	size := big.NewInt(int64(len(alphabet)))
	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", NewEncryptionError("generate", fmt.Errorf("failed to read random data: %w", err))
		}
		sb.WriteByte(alphabet[n.Int64()])
	}
	return sb.String(), nil
}

func containsEachClass(key string, classes []string) bool {
	for _, class := range classes {
		if !strings.ContainsAny(key, class) {
			return false
		}
	}
	return true
}
