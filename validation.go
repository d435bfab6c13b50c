package sealbox

import (
	"fmt"
)

// ValidateSize checks if a size parameter is valid
func ValidateSize(size int, name string, minSize, maxSize int) error {
	if size < 0 {
		return &ValidationError{
			Field:   name,
			Value:   size,
			Message: "size cannot be negative",
		}
	}
	if minSize >= 0 && size < minSize {
		return &ValidationError{
			Field:   name,
			Value:   size,
			Message: fmt.Sprintf("size too small: got %d, minimum is %d", size, minSize),
		}
	}
	if maxSize > 0 && size > maxSize {
		return &ValidationError{
			Field:   name,
			Value:   size,
			Message: fmt.Sprintf("size too large: got %d, maximum is %d", size, maxSize),
		}
	}
	return nil
}

// ValidateNonce checks if a nonce has the correct size for a cipher
func ValidateNonce(nonce []byte, cipher CipherSuite) error {
	if nonce == nil {
		return &ValidationError{
			Field:   "nonce",
			Message: "nonce cannot be nil",
		}
	}

	expectedSize, err := nonceSize(cipher)
	if err != nil {
		return &ValidationError{
			Field:   "cipher",
			Value:   cipher,
			Message: "unsupported cipher suite for nonce validation",
			Err:     err,
		}
	}

	if len(nonce) != expectedSize {
		return &ValidationError{
			Field:   "nonce",
			Value:   len(nonce),
			Message: fmt.Sprintf("invalid nonce size: got %d bytes, expected %d bytes for %s", len(nonce), expectedSize, cipher.String()),
		}
	}

	return nil
}

// ValidateKey checks if a key has the correct size
func ValidateKey(key []byte, expectedSize int) error {
	if key == nil {
		return &ValidationError{
			Field:   "key",
			Message: "key cannot be nil",
		}
	}

	if len(key) != expectedSize {
		return &ValidationError{
			Field:   "key",
			Value:   len(key),
			Message: fmt.Sprintf("invalid key size: got %d bytes, expected %d bytes", len(key), expectedSize),
		}
	}

	return nil
}

// ValidateID checks a vault record id
func ValidateID(id string) error {
	if id == "" {
		return &ValidationError{
			Field:   "id",
			Message: "id cannot be empty",
		}
	}
	return nil
}

func validateArgon2Params(p Argon2idParams) error {
	if p.Memory < 8*uint32(p.Parallelism) || p.Memory > maxArgon2Memory {
		return &ValidationError{
			Field:   "argon2.memory",
			Value:   p.Memory,
			Message: fmt.Sprintf("memory must be between %d and %d KiB", 8*uint32(p.Parallelism), maxArgon2Memory),
		}
	}
	if p.Iterations < 1 || p.Iterations > maxArgon2Iterations {
		return &ValidationError{
			Field:   "argon2.iterations",
			Value:   p.Iterations,
			Message: fmt.Sprintf("iterations must be between 1 and %d", maxArgon2Iterations),
		}
	}
	if p.Parallelism < 1 || p.Parallelism > maxArgon2Parallelism {
		return &ValidationError{
			Field:   "argon2.parallelism",
			Value:   p.Parallelism,
			Message: fmt.Sprintf("parallelism must be between 1 and %d", maxArgon2Parallelism),
		}
	}
	return nil
}

func validatePBKDF2Params(p PBKDF2Params) error {
	if p.Iterations < 1 || p.Iterations > maxPBKDF2Iterations {
		return &ValidationError{
			Field:   "pbkdf2.iterations",
			Value:   p.Iterations,
			Message: fmt.Sprintf("iterations must be between 1 and %d", maxPBKDF2Iterations),
		}
	}
	if p.HashFunc != SHA256 && p.HashFunc != SHA512 {
		return &ValidationError{
			Field:   "pbkdf2.hash",
			Value:   p.HashFunc,
			Message: "unsupported hash function",
		}
	}
	return nil
}
