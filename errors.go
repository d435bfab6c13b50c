package sealbox

import (
	"errors"
	"fmt"
)

// ErrorKind tags the failure classes callers are expected to branch on.
type ErrorKind uint8

const (
	// KindNone is returned for nil errors
	KindNone ErrorKind = iota
	// KindAuthenticationFailure: wrong password, tampered or malformed envelope
	KindAuthenticationFailure
	// KindMalformedPayload: decrypted content is not a valid file payload
	KindMalformedPayload
	// KindInvalidConfiguration: bad parameters or options
	KindInvalidConfiguration
	// KindKeyNotFound: vault has no record for the id
	KindKeyNotFound
	// KindKeyExpired: vault record is past its expiration
	KindKeyExpired
	// KindOther covers I/O failures and anything unclassified
	KindOther
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindAuthenticationFailure:
		return "authentication failure"
	case KindMalformedPayload:
		return "malformed payload"
	case KindInvalidConfiguration:
		return "invalid configuration"
	case KindKeyNotFound:
		return "key not found"
	case KindKeyExpired:
		return "key expired"
	default:
		return "other"
	}
}

// Sentinel errors. Structured errors below match them through errors.Is.
var (
	ErrAuthFailed           = errors.New("authentication failed - wrong password or data corrupted")
	ErrMalformedPayload     = errors.New("malformed payload")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrKeyNotFound          = errors.New("key not found")
	ErrKeyExpired           = errors.New("key expired")

	ErrInvalidEnvelope    = errors.New("invalid envelope")
	ErrUnsupportedVersion = errors.New("unsupported envelope format version")
	ErrUnsupportedCipher  = errors.New("unsupported cipher suite")
	ErrUnsupportedKDF     = errors.New("unsupported key derivation function")
	ErrNilConfig          = errors.New("config cannot be nil")
	ErrVaultClosed        = errors.New("vault is closed")
)

// ValidationError represents a configuration or parameter validation error
type ValidationError struct {
	Field   string // The field or parameter that failed validation
	Value   any    // The invalid value
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

// EncryptionError represents a failure inside encrypt or decrypt that is
// not an authentication failure (entropy source, key derivation).
type EncryptionError struct {
	Operation string // "encrypt" or "decrypt"
	Message   string // Human-readable error message
	Err       error  // Underlying error
}

func (e *EncryptionError) Error() string {
	return fmt.Sprintf("%s error: %s", e.Operation, e.Message)
}

func (e *EncryptionError) Unwrap() error {
	return e.Err
}

// CorruptionError represents decrypted content that does not hold a valid payload
type CorruptionError struct {
	Field   string // Offending payload field, if known
	Message string // Human-readable error message
	Err     error  // Underlying error
}

func (e *CorruptionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("malformed payload: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("malformed payload: %s", e.Message)
}

func (e *CorruptionError) Unwrap() error {
	return e.Err
}

func (e *CorruptionError) Is(target error) bool {
	return target == ErrMalformedPayload
}

// AuthenticationError represents a wrong password, a tampered envelope or
// an envelope that cannot be parsed at all.
type AuthenticationError struct {
	Message string // Human-readable error message
	Err     error  // Underlying error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication error: %s", e.Message)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthFailed
}

// VaultError reports a failed vault lookup
type VaultError struct {
	ID  string // Record id
	Err error  // ErrKeyNotFound or ErrKeyExpired
}

func (e *VaultError) Error() string {
	return fmt.Sprintf("vault: %s: %v", e.ID, e.Err)
}

func (e *VaultError) Unwrap() error {
	return e.Err
}

// Helper functions for creating structured errors

// NewValidationError creates a new validation error
func NewValidationError(field string, value any, message string) error {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// NewEncryptionError creates a new encryption error
func NewEncryptionError(operation string, err error) error {
	return &EncryptionError{
		Operation: operation,
		Message:   err.Error(),
		Err:       err,
	}
}

// NewCorruptionError creates a new corruption error
func NewCorruptionError(field, message string, err error) error {
	return &CorruptionError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// NewAuthenticationError creates a new authentication error
func NewAuthenticationError(err error) error {
	return &AuthenticationError{
		Message: err.Error(),
		Err:     err,
	}
}

// Error checking helpers

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsEncryptionError checks if an error is an encryption error
func IsEncryptionError(err error) bool {
	var ee *EncryptionError
	return errors.As(err, &ee)
}

// IsCorruptionError checks if an error is a corruption error
func IsCorruptionError(err error) bool {
	var ce *CorruptionError
	return errors.As(err, &ce)
}

// IsAuthenticationError checks if an error is an authentication error
func IsAuthenticationError(err error) bool {
	var ae *AuthenticationError
	return errors.As(err, &ae)
}

// KindOf classifies err. Callers switch on the result instead of
// matching error strings.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrAuthFailed):
		return KindAuthenticationFailure
	case errors.Is(err, ErrMalformedPayload):
		return KindMalformedPayload
	case errors.Is(err, ErrInvalidConfiguration):
		return KindInvalidConfiguration
	case errors.Is(err, ErrKeyNotFound):
		return KindKeyNotFound
	case errors.Is(err, ErrKeyExpired):
		return KindKeyExpired
	default:
		return KindOther
	}
}
