package sealbox

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"sync"
)

// Sealer turns plaintext into password-protected envelopes and back.
// A Sealer is immutable after construction and safe for concurrent use.
type Sealer struct {
	config Config
}

// NewSealer creates a Sealer. A nil config selects DefaultConfig.
func NewSealer(config *Config) (*Sealer, error) {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := config.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Sealer{config: cfg}, nil
}

// Config returns a copy of the effective configuration
func (s *Sealer) Config() Config {
	return s.config
}

// Encrypt seals plaintext under password and returns the base64 envelope.
// Each call uses a fresh salt and nonce, so equal inputs give different output.
func (s *Sealer) Encrypt(plaintext, password string) (string, error) {
	raw, err := s.seal([]byte(plaintext), []byte(password))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Decrypt opens an envelope produced by Encrypt. Wrong passwords, tampered
// bytes and unparsable envelopes all fail with an *AuthenticationError.
func (s *Sealer) Decrypt(envelope, password string) (string, error) {
	plaintext, err := s.DecryptBytes(envelope, password)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// EncryptBytes is Encrypt for binary content
func (s *Sealer) EncryptBytes(plaintext []byte, password string) (string, error) {
	raw, err := s.seal(plaintext, []byte(password))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecryptBytes is Decrypt for binary content
func (s *Sealer) DecryptBytes(envelope, password string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return nil, NewAuthenticationError(fmt.Errorf("%w: %v", ErrInvalidEnvelope, err))
	}
	return s.open(raw, []byte(password))
}

func (s *Sealer) seal(plaintext, password []byte) ([]byte, error) {
	var provider *PasswordKeyProvider
	switch s.config.KDF {
	case KDFPBKDF2:
		provider = NewPasswordKeyProviderPBKDF2(password, s.config.PBKDF2)
	default:
		provider = NewPasswordKeyProvider(password, s.config.Argon2)
	}

	salt, err := provider.GenerateSalt()
	if err != nil {
		return nil, NewEncryptionError("encrypt", err)
	}
	key, err := provider.DeriveKey(salt)
	if err != nil {
		return nil, NewEncryptionError("encrypt", err)
	}
	defer zero(key)

	engine, err := NewCipherEngine(s.config.Cipher, key)
	if err != nil {
		return nil, NewEncryptionError("encrypt", err)
	}
	nonce, err := GenerateNonce(s.config.Cipher)
	if err != nil {
		return nil, NewEncryptionError("encrypt", err)
	}

	header := NewEnvelopeHeader(s.config, salt, nonce)
	buf := new(bytes.Buffer)
	buf.Grow(header.Size() + len(plaintext) + engine.Overhead())
	if _, err := header.WriteTo(buf); err != nil {
		return nil, NewEncryptionError("encrypt", err)
	}
	ad := bytes.Clone(buf.Bytes())

	ciphertext, err := engine.Seal(nonce, plaintext, ad)
	if err != nil {
		return nil, NewEncryptionError("encrypt", err)
	}
	buf.Write(ciphertext)
	return buf.Bytes(), nil
}

// open decrypts raw envelope bytes. The parameters come from the envelope
// header, not from the Sealer's config, so envelopes written with any
// supported suite can be opened.
func (s *Sealer) open(raw, password []byte) ([]byte, error) {
	header, ad, ciphertext, err := parseEnvelope(raw)
	if err != nil {
		return nil, NewAuthenticationError(err)
	}

	provider, err := newKeyProvider(password, header)
	if err != nil {
		return nil, NewAuthenticationError(fmt.Errorf("%w: %w", ErrInvalidEnvelope, err))
	}
	key, err := provider.DeriveKey(header.Salt)
	if err != nil {
		return nil, NewEncryptionError("decrypt", err)
	}
	defer zero(key)

	engine, err := NewCipherEngine(header.Cipher, key)
	if err != nil {
		return nil, NewEncryptionError("decrypt", err)
	}

	plaintext, err := engine.Open(header.Nonce, ciphertext, ad)
	if err != nil {
		return nil, NewAuthenticationError(err)
	}
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

var (
	defaultSealerOnce sync.Once
	defaultSealer     *Sealer
)

// Default returns the package-level Sealer built from DefaultConfig
func Default() *Sealer {
	defaultSealerOnce.Do(func() {
		s, err := NewSealer(DefaultConfig())
		if err != nil {
			panic(err)
		}
		defaultSealer = s
	})
	return defaultSealer
}

// Encrypt seals plaintext with the default Sealer
func Encrypt(plaintext, password string) (string, error) {
	return Default().Encrypt(plaintext, password)
}

// Decrypt opens an envelope with the default Sealer
func Decrypt(envelope, password string) (string, error) {
	return Default().Decrypt(envelope, password)
}
