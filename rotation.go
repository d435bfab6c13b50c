package sealbox

import (
	"errors"
	"fmt"
)

// Reseal opens envelope with oldPassword and seals the content again under
// newPassword using the Sealer's current cipher and KDF settings. The
// content is never returned to the caller.
func (s *Sealer) Reseal(envelope, oldPassword, newPassword string) (string, error) {
	plaintext, err := s.DecryptBytes(envelope, oldPassword)
	if err != nil {
		return "", fmt.Errorf("failed to open envelope: %w", err)
	}
	defer zero(plaintext)

	out, err := s.EncryptBytes(plaintext, newPassword)
	if err != nil {
		return "", fmt.Errorf("failed to reseal envelope: %w", err)
	}
	return out, nil
}

// TryDecrypt attempts each candidate password in order and returns the
// plaintext with the index of the password that opened it. This is useful
// while passwords are being rotated.
func (s *Sealer) TryDecrypt(envelope string, candidates ...string) (string, int, error) {
	if len(candidates) == 0 {
		return "", -1, NewValidationError("candidates", 0, "at least one password required")
	}

	var lastErr error
	for i, password := range candidates {
		plaintext, err := s.Decrypt(envelope, password)
		if err == nil {
			return plaintext, i, nil
		}
		lastErr = err
		// A malformed envelope fails the same way for every password.
		if errors.Is(err, ErrInvalidEnvelope) || !errors.Is(err, ErrAuthFailed) {
			break
		}
	}
	return "", -1, fmt.Errorf("all passwords failed: %w", lastErr)
}
