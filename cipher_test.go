package sealbox

import (
	"bytes"
	"errors"
	"testing"
)

func TestCipherEngine_SealOpen(t *testing.T) {
	for _, suite := range []CipherSuite{CipherAES256GCM, CipherChaCha20Poly1305} {
		t.Run(suite.String(), func(t *testing.T) {
			key := bytes.Repeat([]byte{0x42}, KeySize)
			engine, err := NewCipherEngine(suite, key)
			if err != nil {
				t.Fatalf("NewCipherEngine failed: %v", err)
			}
			if engine.NonceSize() != 12 || engine.Overhead() != 16 {
				t.Errorf("NonceSize = %d, Overhead = %d", engine.NonceSize(), engine.Overhead())
			}

			nonce, err := GenerateNonce(suite)
			if err != nil {
				t.Fatalf("GenerateNonce failed: %v", err)
			}
			ad := []byte("header")
			ct, err := engine.Seal(nonce, []byte("payload"), ad)
			if err != nil {
				t.Fatalf("Seal failed: %v", err)
			}
			if len(ct) != len("payload")+engine.Overhead() {
				t.Errorf("ciphertext length = %d", len(ct))
			}

			pt, err := engine.Open(nonce, ct, ad)
			if err != nil || string(pt) != "payload" {
				t.Fatalf("Open = %q, %v", pt, err)
			}

			if _, err := engine.Open(nonce, ct, []byte("other")); !errors.Is(err, ErrAuthFailed) {
				t.Errorf("wrong associated data: got %v", err)
			}
			if _, err := engine.Seal(nonce[:4], []byte("x"), nil); err == nil {
				t.Error("short nonce should fail")
			}
		})
	}
}

func TestNewCipherEngine_Errors(t *testing.T) {
	if _, err := NewCipherEngine(CipherSuite(99), make([]byte, KeySize)); !errors.Is(err, ErrUnsupportedCipher) {
		t.Errorf("unknown suite: got %v", err)
	}
	if _, err := NewCipherEngine(CipherAES256GCM, make([]byte, 16)); !IsValidationError(err) {
		t.Errorf("short key: got %v", err)
	}
}

func TestPasswordKeyProvider(t *testing.T) {
	fast := Argon2idParams{Memory: 1024, Iterations: 1, Parallelism: 1}
	salt := bytes.Repeat([]byte{0x01}, SaltSize)

	p := NewPasswordKeyProvider([]byte("pw"), fast)
	k1, err := p.DeriveKey(salt)
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}
	if len(k1) != KeySize {
		t.Errorf("key length = %d", len(k1))
	}

	k2, _ := p.DeriveKey(salt)
	if !bytes.Equal(k1, k2) {
		t.Error("derivation must be deterministic")
	}

	other, _ := NewPasswordKeyProvider([]byte("pw"), fast).DeriveKey(bytes.Repeat([]byte{0x02}, SaltSize))
	if bytes.Equal(k1, other) {
		t.Error("different salts must give different keys")
	}

	empty, err := NewPasswordKeyProvider(nil, fast).DeriveKey(salt)
	if err != nil || len(empty) != KeySize {
		t.Errorf("empty password: %v", err)
	}

	if _, err := p.DeriveKey(nil); !IsValidationError(err) {
		t.Errorf("empty salt: got %v", err)
	}

	s1, _ := p.GenerateSalt()
	s2, _ := p.GenerateSalt()
	if len(s1) != SaltSize || bytes.Equal(s1, s2) {
		t.Error("salts must be random and SaltSize long")
	}
}

func TestPasswordKeyProviderPBKDF2(t *testing.T) {
	salt := bytes.Repeat([]byte{0x03}, SaltSize)

	sha256Key, err := NewPasswordKeyProviderPBKDF2([]byte("pw"), PBKDF2Params{Iterations: 1000, HashFunc: SHA256}).DeriveKey(salt)
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}
	sha512Key, err := NewPasswordKeyProviderPBKDF2([]byte("pw"), PBKDF2Params{Iterations: 1000, HashFunc: SHA512}).DeriveKey(salt)
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}
	if bytes.Equal(sha256Key, sha512Key) {
		t.Error("hash function must affect the key")
	}

	if _, err := NewPasswordKeyProviderPBKDF2([]byte("pw"), PBKDF2Params{Iterations: 1000, HashFunc: 7}).DeriveKey(salt); err == nil {
		t.Error("unknown hash should fail")
	}
}
