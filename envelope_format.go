package sealbox

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// MagicBytes identifies sealed envelopes (ASCII: "SLBX")
	MagicBytes = uint32(0x58424C53)

	// CurrentVersion is the current envelope format version
	CurrentVersion = uint8(1)

	// MinHeaderSize is the fixed part of the header:
	// 4 (magic) + 1 (version) + 1 (cipher) + 1 (kdf) + 9 (kdf params) + 2 (salt size)
	MinHeaderSize = 18

	maxSaltSize = 64
)

// EnvelopeHeader carries every parameter needed to open an envelope given
// only the password. Its encoded bytes are authenticated as associated data.
type EnvelopeHeader struct {
	Magic     uint32      // Magic bytes to identify envelopes
	Version   uint8       // Envelope format version
	Cipher    CipherSuite // Cipher suite used for encryption
	KDF       KDF         // Key derivation function
	KDFParamA uint32      // Argon2id memory (KiB) or PBKDF2 iterations
	KDFParamB uint32      // Argon2id iterations
	KDFParamC uint8       // Argon2id parallelism or PBKDF2 hash
	SaltSize  uint16      // Size of the salt in bytes
	Salt      []byte      // Salt for key derivation
	NonceSize uint16      // Size of the nonce in bytes
	Nonce     []byte      // Nonce for encryption
}

// NewEnvelopeHeader creates a header for cfg, which must have defaults applied
func NewEnvelopeHeader(cfg Config, salt, nonce []byte) *EnvelopeHeader {
	h := &EnvelopeHeader{
		Magic:     MagicBytes,
		Version:   CurrentVersion,
		Cipher:    cfg.Cipher,
		KDF:       cfg.KDF,
		SaltSize:  uint16(len(salt)),
		Salt:      salt,
		NonceSize: uint16(len(nonce)),
		Nonce:     nonce,
	}
	switch cfg.KDF {
	case KDFArgon2id:
		h.KDFParamA = cfg.Argon2.Memory
		h.KDFParamB = cfg.Argon2.Iterations
		h.KDFParamC = cfg.Argon2.Parallelism
	case KDFPBKDF2:
		h.KDFParamA = uint32(cfg.PBKDF2.Iterations)
		h.KDFParamC = uint8(cfg.PBKDF2.HashFunc)
	}
	return h
}

func (h *EnvelopeHeader) argon2Params() Argon2idParams {
	return Argon2idParams{
		Memory:      h.KDFParamA,
		Iterations:  h.KDFParamB,
		Parallelism: h.KDFParamC,
	}
}

func (h *EnvelopeHeader) pbkdf2Params() PBKDF2Params {
	return PBKDF2Params{
		Iterations: int(h.KDFParamA),
		HashFunc:   HashFunc(h.KDFParamC),
	}
}

// Size returns the total size of the header in bytes
func (h *EnvelopeHeader) Size() int {
	return MinHeaderSize + len(h.Salt) + 2 + len(h.Nonce)
}

// WriteTo writes the header to the given writer
func (h *EnvelopeHeader) WriteTo(w io.Writer) (int64, error) {
	buf := new(bytes.Buffer)
	buf.Grow(h.Size())

	fields := []any{h.Magic, h.Version, h.Cipher, h.KDF, h.KDFParamA, h.KDFParamB, h.KDFParamC, h.SaltSize}
	for _, f := range fields {
		if err := binary.Write(buf, binary.LittleEndian, f); err != nil {
			return 0, fmt.Errorf("failed to write header: %w", err)
		}
	}
	buf.Write(h.Salt)
	if err := binary.Write(buf, binary.LittleEndian, h.NonceSize); err != nil {
		return 0, fmt.Errorf("failed to write nonce size: %w", err)
	}
	buf.Write(h.Nonce)

	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// MarshalBinary returns the encoded header
func (h *EnvelopeHeader) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	if _, err := h.WriteTo(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadFrom reads the header from the given reader
func (h *EnvelopeHeader) ReadFrom(r io.Reader) (int64, error) {
	var totalRead int64

	fixed := make([]byte, MinHeaderSize)
	n, err := io.ReadFull(r, fixed)
	totalRead += int64(n)
	if err != nil {
		return totalRead, fmt.Errorf("%w: truncated header", ErrInvalidEnvelope)
	}

	h.Magic = binary.LittleEndian.Uint32(fixed[0:4])
	if h.Magic != MagicBytes {
		return totalRead, fmt.Errorf("%w: bad magic", ErrInvalidEnvelope)
	}
	h.Version = fixed[4]
	h.Cipher = CipherSuite(fixed[5])
	h.KDF = KDF(fixed[6])
	h.KDFParamA = binary.LittleEndian.Uint32(fixed[7:11])
	h.KDFParamB = binary.LittleEndian.Uint32(fixed[11:15])
	h.KDFParamC = fixed[15]
	h.SaltSize = binary.LittleEndian.Uint16(fixed[16:18])
	if h.SaltSize == 0 || h.SaltSize > maxSaltSize {
		return totalRead, fmt.Errorf("%w: salt size %d", ErrInvalidEnvelope, h.SaltSize)
	}

	h.Salt = make([]byte, h.SaltSize)
	n, err = io.ReadFull(r, h.Salt)
	totalRead += int64(n)
	if err != nil {
		return totalRead, fmt.Errorf("%w: truncated salt", ErrInvalidEnvelope)
	}

	if err := binary.Read(r, binary.LittleEndian, &h.NonceSize); err != nil {
		return totalRead, fmt.Errorf("%w: truncated nonce size", ErrInvalidEnvelope)
	}
	totalRead += 2

	h.Nonce = make([]byte, h.NonceSize)
	n, err = io.ReadFull(r, h.Nonce)
	totalRead += int64(n)
	if err != nil {
		return totalRead, fmt.Errorf("%w: truncated nonce", ErrInvalidEnvelope)
	}

	return totalRead, nil
}

// Validate checks the header before any key derivation is attempted, so a
// crafted envelope cannot request unbounded KDF work.
func (h *EnvelopeHeader) Validate() error {
	if h.Magic != MagicBytes {
		return fmt.Errorf("%w: bad magic", ErrInvalidEnvelope)
	}
	if h.Version == 0 || h.Version > CurrentVersion {
		return fmt.Errorf("%w: %w", ErrInvalidEnvelope, ErrUnsupportedVersion)
	}
	if h.Cipher != CipherAES256GCM && h.Cipher != CipherChaCha20Poly1305 {
		return fmt.Errorf("%w: %w", ErrInvalidEnvelope, ErrUnsupportedCipher)
	}
	switch h.KDF {
	case KDFArgon2id:
		if err := validateArgon2Params(h.argon2Params()); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
		}
	case KDFPBKDF2:
		if err := validatePBKDF2Params(h.pbkdf2Params()); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
		}
	default:
		return fmt.Errorf("%w: %w", ErrInvalidEnvelope, ErrUnsupportedKDF)
	}
	if len(h.Salt) == 0 {
		return fmt.Errorf("%w: salt cannot be empty", ErrInvalidEnvelope)
	}
	if err := ValidateNonce(h.Nonce, h.Cipher); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
	}
	return nil
}

// parseEnvelope splits raw envelope bytes into header, authenticated header
// bytes and AEAD ciphertext.
func parseEnvelope(raw []byte) (*EnvelopeHeader, []byte, []byte, error) {
	h := &EnvelopeHeader{}
	n, err := h.ReadFrom(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, nil, err
	}
	if err := h.Validate(); err != nil {
		return nil, nil, nil, err
	}
	return h, raw[:n], raw[n:], nil
}
