package sealbox

import "time"

// CipherSuite represents the encryption algorithm to use
type CipherSuite uint8

const (
	// CipherAuto selects the default cipher (AES-256-GCM)
	CipherAuto CipherSuite = iota
	// CipherAES256GCM uses AES-256 with Galois/Counter Mode
	CipherAES256GCM
	// CipherChaCha20Poly1305 uses ChaCha20 stream cipher with Poly1305 MAC
	CipherChaCha20Poly1305
)

// String returns the string representation of the cipher suite
func (c CipherSuite) String() string {
	switch c {
	case CipherAuto:
		return "auto"
	case CipherAES256GCM:
		return "aes-256-gcm"
	case CipherChaCha20Poly1305:
		return "chacha20-poly1305"
	default:
		return "unknown"
	}
}

// ParseCipherSuite maps a suite name as printed by String back to its value.
func ParseCipherSuite(name string) (CipherSuite, error) {
	switch name {
	case "", "auto":
		return CipherAuto, nil
	case "aes-256-gcm", "aes":
		return CipherAES256GCM, nil
	case "chacha20-poly1305", "chacha":
		return CipherChaCha20Poly1305, nil
	}
	return 0, NewValidationError("cipher", name, "unknown cipher suite")
}

// KDF identifies the password-based key derivation function
type KDF uint8

const (
	// KDFArgon2id uses Argon2id (default)
	KDFArgon2id KDF = iota + 1
	// KDFPBKDF2 uses PBKDF2 with an HMAC hash
	KDFPBKDF2
)

func (k KDF) String() string {
	switch k {
	case KDFArgon2id:
		return "argon2id"
	case KDFPBKDF2:
		return "pbkdf2"
	default:
		return "unknown"
	}
}

// ParseKDF maps a KDF name back to its value.
func ParseKDF(name string) (KDF, error) {
	switch name {
	case "", "argon2id", "argon2":
		return KDFArgon2id, nil
	case "pbkdf2":
		return KDFPBKDF2, nil
	}
	return 0, NewValidationError("kdf", name, "unknown key derivation function")
}

// HashFunc represents hash function types for PBKDF2
type HashFunc uint8

const (
	// SHA256 hash function
	SHA256 HashFunc = iota
	// SHA512 hash function
	SHA512
)

// PBKDF2Params contains parameters for PBKDF2 key derivation
type PBKDF2Params struct {
	Iterations int      // Number of iterations (default 600,000)
	HashFunc   HashFunc // Hash function to use
}

// Argon2idParams contains parameters for Argon2id key derivation
type Argon2idParams struct {
	Memory      uint32 // Memory in KiB (e.g., 64*1024 for 64MB)
	Iterations  uint32 // Number of iterations (time parameter)
	Parallelism uint8  // Degree of parallelism
}

const (
	// SaltSize is the size of the random KDF salt stored in every envelope
	SaltSize = 32

	// KeySize is the derived key size; both cipher suites use 256-bit keys
	KeySize = 32

	DefaultPBKDF2Iterations = 600000
	DefaultArgon2Memory     = 64 * 1024
	DefaultArgon2Iterations = 3
	DefaultArgon2Threads    = 4

	// DefaultKeyTTL is the vault expiration applied when none is given
	DefaultKeyTTL = 24 * time.Hour
)

// Upper bounds on KDF cost. They apply to Config and to parameters read
// out of an envelope, so an untrusted envelope can ask for at most 1 GiB
// and 16 passes of Argon2id, or 2,000,000 PBKDF2 iterations.
const (
	maxArgon2Memory      = 1024 * 1024
	maxArgon2Iterations  = 16
	maxArgon2Parallelism = 16
	maxPBKDF2Iterations  = 2000000
)

// Config contains configuration for a Sealer
type Config struct {
	// Cipher suite used for new envelopes
	Cipher CipherSuite

	// KDF used for new envelopes
	KDF KDF

	Argon2 Argon2idParams
	PBKDF2 PBKDF2Params

	// MaxFileSize rejects larger inputs to the file codec. Zero means unlimited.
	MaxFileSize int64

	// Parallel controls the batch file codec worker pool
	Parallel ParallelConfig
}

// DefaultConfig returns the pinned parameters for the version 1 format:
// AES-256-GCM keyed by Argon2id (t=3, m=64MiB, p=4).
func DefaultConfig() *Config {
	return &Config{
		Cipher: CipherAES256GCM,
		KDF:    KDFArgon2id,
		Argon2: Argon2idParams{
			Memory:      DefaultArgon2Memory,
			Iterations:  DefaultArgon2Iterations,
			Parallelism: DefaultArgon2Threads,
		},
		PBKDF2: PBKDF2Params{
			Iterations: DefaultPBKDF2Iterations,
			HashFunc:   SHA256,
		},
		Parallel: DefaultParallelConfig(),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if c.Cipher != CipherAES256GCM && c.Cipher != CipherChaCha20Poly1305 && c.Cipher != CipherAuto {
		return NewValidationError("cipher", c.Cipher, "unsupported cipher suite")
	}
	switch c.KDF {
	case KDFArgon2id:
		if err := validateArgon2Params(c.Argon2); err != nil {
			return err
		}
	case KDFPBKDF2:
		if err := validatePBKDF2Params(c.PBKDF2); err != nil {
			return err
		}
	default:
		return NewValidationError("kdf", c.KDF, "unsupported key derivation function")
	}
	if c.MaxFileSize < 0 {
		return NewValidationError("max_file_size", c.MaxFileSize, "cannot be negative")
	}
	return c.Parallel.Validate()
}

// withDefaults fills zero fields the same way the key providers do.
func (c Config) withDefaults() Config {
	if c.Cipher == CipherAuto {
		c.Cipher = CipherAES256GCM
	}
	if c.KDF == 0 {
		c.KDF = KDFArgon2id
	}
	if c.Argon2.Memory == 0 {
		c.Argon2.Memory = DefaultArgon2Memory
	}
	if c.Argon2.Iterations == 0 {
		c.Argon2.Iterations = DefaultArgon2Iterations
	}
	if c.Argon2.Parallelism == 0 {
		c.Argon2.Parallelism = DefaultArgon2Threads
	}
	if c.PBKDF2.Iterations == 0 {
		c.PBKDF2.Iterations = DefaultPBKDF2Iterations
	}
	if c.Parallel == (ParallelConfig{}) {
		c.Parallel = DefaultParallelConfig()
	}
	return c
}

// KeyProvider derives encryption keys from a password
type KeyProvider interface {
	// DeriveKey derives an encryption key from the given salt
	DeriveKey(salt []byte) ([]byte, error)

	// GenerateSalt generates a new random salt
	GenerateSalt() ([]byte, error)
}
