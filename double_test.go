package sealbox

import (
	"errors"
	"testing"
)

func TestDoubleEncrypt_RoundTrip(t *testing.T) {
	s := newTestSealer(t)

	for _, text := range []string{"", "two passwords", "ünïcødé 🔒"} {
		envelope, err := s.DoubleEncrypt(text, "A", "B")
		if err != nil {
			t.Fatalf("DoubleEncrypt failed: %v", err)
		}
		got, err := s.DoubleDecrypt(envelope, "A", "B")
		if err != nil {
			t.Fatalf("DoubleDecrypt failed: %v", err)
		}
		if got != text {
			t.Errorf("DoubleDecrypt = %q, want %q", got, text)
		}
	}
}

func TestDoubleDecrypt_OrderMatters(t *testing.T) {
	s := newTestSealer(t)

	envelope, err := s.DoubleEncrypt("ordered", "A", "B")
	if err != nil {
		t.Fatalf("DoubleEncrypt failed: %v", err)
	}

	_, err = s.DoubleDecrypt(envelope, "B", "A")
	if !errors.Is(err, ErrAuthFailed) {
		t.Errorf("swapped passwords: got %v, want ErrAuthFailed", err)
	}

	tests := []struct {
		name          string
		first, second string
	}{
		{"wrong first", "X", "B"},
		{"wrong second", "A", "X"},
		{"both wrong", "X", "Y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.DoubleDecrypt(envelope, tt.first, tt.second)
			if KindOf(err) != KindAuthenticationFailure {
				t.Errorf("got %v, want authentication failure", err)
			}
		})
	}
}

func TestDoubleEncrypt_Layers(t *testing.T) {
	s := newTestSealer(t)

	envelope, err := s.DoubleEncrypt("layered", "A", "B")
	if err != nil {
		t.Fatalf("DoubleEncrypt failed: %v", err)
	}

	// The outer layer is a plain envelope under the second password.
	inner, err := s.Decrypt(envelope, "B")
	if err != nil {
		t.Fatalf("outer Decrypt failed: %v", err)
	}
	got, err := s.Decrypt(inner, "A")
	if err != nil {
		t.Fatalf("inner Decrypt failed: %v", err)
	}
	if got != "layered" {
		t.Errorf("got %q", got)
	}
}
