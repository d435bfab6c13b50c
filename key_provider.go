package sealbox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// PasswordKeyProvider implements KeyProvider using password-based key derivation.
// An empty password is accepted; the salt still makes every derived key unique.
type PasswordKeyProvider struct {
	password     []byte
	kdf          KDF
	pbkdf2Params PBKDF2Params
	argon2Params Argon2idParams
}

// NewPasswordKeyProviderPBKDF2 creates a new password-based key provider using PBKDF2
func NewPasswordKeyProviderPBKDF2(password []byte, params PBKDF2Params) *PasswordKeyProvider {
	if params.Iterations == 0 {
		params.Iterations = DefaultPBKDF2Iterations
	}

	return &PasswordKeyProvider{
		password:     password,
		kdf:          KDFPBKDF2,
		pbkdf2Params: params,
	}
}

// NewPasswordKeyProvider creates a new password-based key provider using Argon2id (recommended)
func NewPasswordKeyProvider(password []byte, params Argon2idParams) *PasswordKeyProvider {
	if params.Memory == 0 {
		params.Memory = DefaultArgon2Memory
	}
	if params.Iterations == 0 {
		params.Iterations = DefaultArgon2Iterations
	}
	if params.Parallelism == 0 {
		params.Parallelism = DefaultArgon2Threads
	}

	return &PasswordKeyProvider{
		password:     password,
		kdf:          KDFArgon2id,
		argon2Params: params,
	}
}

// newKeyProvider builds the provider described by an envelope header.
func newKeyProvider(password []byte, h *EnvelopeHeader) (*PasswordKeyProvider, error) {
	switch h.KDF {
	case KDFArgon2id:
		return NewPasswordKeyProvider(password, h.argon2Params()), nil
	case KDFPBKDF2:
		return NewPasswordKeyProviderPBKDF2(password, h.pbkdf2Params()), nil
	default:
		return nil, ErrUnsupportedKDF
	}
}

// DeriveKey derives an encryption key from the password and salt
func (p *PasswordKeyProvider) DeriveKey(salt []byte) ([]byte, error) {
	if len(salt) == 0 {
		return nil, NewValidationError("salt", 0, "salt cannot be empty")
	}

	if p.kdf == KDFArgon2id {
		key := argon2.IDKey(
			p.password,
			salt,
			p.argon2Params.Iterations,
			p.argon2Params.Memory,
			p.argon2Params.Parallelism,
			KeySize,
		)
		return key, nil
	}

	var hashFunc func() hash.Hash
	switch p.pbkdf2Params.HashFunc {
	case SHA256:
		hashFunc = sha256.New
	case SHA512:
		hashFunc = sha512.New
	default:
		return nil, fmt.Errorf("unsupported hash function: %v", p.pbkdf2Params.HashFunc)
	}

	key := pbkdf2.Key(
		p.password,
		salt,
		p.pbkdf2Params.Iterations,
		KeySize,
		hashFunc,
	)
	return key, nil
}

// GenerateSalt generates a new random salt
func (p *PasswordKeyProvider) GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}
