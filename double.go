package sealbox

import "fmt"

// DoubleEncrypt seals text under first, then seals the resulting envelope
// under second.
func (s *Sealer) DoubleEncrypt(text, first, second string) (string, error) {
	inner, err := s.Encrypt(text, first)
	if err != nil {
		return "", fmt.Errorf("inner layer: %w", err)
	}
	outer, err := s.Encrypt(inner, second)
	if err != nil {
		return "", fmt.Errorf("outer layer: %w", err)
	}
	return outer, nil
}

// DoubleDecrypt reverses DoubleEncrypt. Pass the passwords in the order
// used for encryption; the outer layer is opened with second and the inner
// layer with first. Swapped passwords fail with an authentication error.
func (s *Sealer) DoubleDecrypt(envelope, first, second string) (string, error) {
	inner, err := s.Decrypt(envelope, second)
	if err != nil {
		return "", fmt.Errorf("outer layer: %w", err)
	}
	text, err := s.Decrypt(inner, first)
	if err != nil {
		return "", fmt.Errorf("inner layer: %w", err)
	}
	return text, nil
}
