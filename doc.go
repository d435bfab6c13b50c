// Package sealbox provides password-based encryption of text, binary
// content and files into self-describing envelopes, a random key
// generator, and a local vault that issues keys with an expiration.
//
// # Overview
//
// A Sealer encrypts a string under a password and returns an opaque
// base64 envelope. The envelope carries everything needed to decrypt it
// given only the password: cipher suite, key derivation parameters, salt
// and nonce. Decryption with the wrong password, or of a modified
// envelope, fails with an *AuthenticationError rather than returning
// corrupted plaintext.
//
// # Supported Cipher Suites
//
// - AES-256-GCM (default)
// - ChaCha20-Poly1305
//
// Both are AEAD constructions with 128-bit authentication tags. The
// encoded envelope header is authenticated as associated data.
//
// # Key Derivation
//
// Argon2id (default): t=3, m=64 MiB, p=4, 32-byte salt.
//
// PBKDF2: HMAC-SHA256 or HMAC-SHA512, 600,000 iterations by default.
//
// # Basic Usage
//
//	s, err := sealbox.NewSealer(nil) // DefaultConfig
//	if err != nil {
//	    panic(err)
//	}
//
//	envelope, _ := s.Encrypt("hello world", "pw123")
//	text, err := s.Decrypt(envelope, "pw123")
//
//	// Two passwords; DoubleDecrypt takes them in the same order
//	envelope, _ = s.DoubleEncrypt("hello", "first", "second")
//	text, err = s.DoubleDecrypt(envelope, "first", "second")
//
// # Files
//
// EncryptFile wraps file content in a JSON payload
// {"name", "type", "size", "data"} before sealing it. DecryptFile
// returns a *File and reports a *CorruptionError when the decrypted
// content is not a valid payload.
//
// # Key Vault
//
//	v, _ := sealbox.NewVault(sealbox.WithStore(memfsInstance, "/vault.json"))
//	defer v.Close()
//
//	v.StoreKey("k", key, 24*time.Hour)
//	key, err := v.RetrieveKey("k") // ErrKeyNotFound, ErrKeyExpired
//
// Expired records stay listed, flagged Expired, until deleted or purged.
//
// # Errors
//
// KindOf maps any error returned by this package to an ErrorKind:
// authentication failure, malformed payload, invalid configuration, key
// not found or key expired.
//
// # Envelope Format
//
// Base64 (standard alphabet) of:
//   - Magic bytes (4 bytes): "SLBX"
//   - Version (1 byte)
//   - Cipher suite (1 byte)
//   - KDF (1 byte)
//   - KDF parameters (9 bytes)
//   - Salt size (2 bytes), salt
//   - Nonce size (2 bytes), nonce
//   - Ciphertext and authentication tag
package sealbox
