package sealbox

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/absfs/memfs"
)

func TestFileCodec_RoundTrip(t *testing.T) {
	s := newTestSealer(t)
	ctx := context.Background()

	binary := make([]byte, 256)
	for i := range binary {
		binary[i] = byte(i)
	}

	tests := []struct {
		name     string
		fileName string
		mimeType string
		data     []byte
	}{
		{"empty file", "empty.dat", "application/octet-stream", []byte{}},
		{"utf-8 text", "notes.txt", "text/plain", []byte("héllo wörld\n你好\n")},
		{"all byte values", "bytes.bin", "application/octet-stream", binary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			envelope, err := s.EncryptFile(ctx, bytes.NewReader(tt.data), tt.fileName, tt.mimeType, "pw")
			if err != nil {
				t.Fatalf("EncryptFile failed: %v", err)
			}

			f, err := s.DecryptFile(ctx, envelope, "pw", tt.fileName)
			if err != nil {
				t.Fatalf("DecryptFile failed: %v", err)
			}
			if !bytes.Equal(f.Data, tt.data) {
				t.Errorf("data mismatch: got %d bytes, want %d", len(f.Data), len(tt.data))
			}
			if f.Name != tt.fileName {
				t.Errorf("Name = %q, want %q", f.Name, tt.fileName)
			}
			if f.MimeType != tt.mimeType {
				t.Errorf("MimeType = %q, want %q", f.MimeType, tt.mimeType)
			}
			if f.Size() != int64(len(tt.data)) {
				t.Errorf("Size = %d", f.Size())
			}

			got, err := io.ReadAll(f.Reader())
			if err != nil || !bytes.Equal(got, tt.data) {
				t.Errorf("Reader content mismatch (%v)", err)
			}
		})
	}
}

func TestFileCodec_WrongPassword(t *testing.T) {
	s := newTestSealer(t)
	ctx := context.Background()

	envelope, err := s.EncryptFile(ctx, strings.NewReader("data"), "a.txt", "", "pw")
	if err != nil {
		t.Fatalf("EncryptFile failed: %v", err)
	}

	_, err = s.DecryptFile(ctx, envelope, "nope", "a.txt")
	if KindOf(err) != KindAuthenticationFailure {
		t.Errorf("got %v, want authentication failure", err)
	}
	if IsCorruptionError(err) {
		t.Error("wrong password must not be reported as a malformed payload")
	}
}

func TestFileCodec_MalformedPayload(t *testing.T) {
	s := newTestSealer(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		payload string
		field   string
	}{
		{"not json", "definitely not json", ""},
		{"json array", `[1,2,3]`, ""},
		{"missing name", `{"type":"text/plain","size":0,"data":""}`, "name"},
		{"missing type", `{"name":"a","size":0,"data":""}`, "type"},
		{"missing size", `{"name":"a","type":"text/plain","data":""}`, "size"},
		{"missing data", `{"name":"a","type":"text/plain","size":0}`, "data"},
		{"bad base64", `{"name":"a","type":"text/plain","size":3,"data":"@@@"}`, "data"},
		{"size mismatch", `{"name":"a","type":"text/plain","size":10,"data":"aGk="}`, "size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			envelope, err := s.Encrypt(tt.payload, "pw")
			if err != nil {
				t.Fatalf("Encrypt failed: %v", err)
			}

			_, err = s.DecryptFile(ctx, envelope, "pw", "fallback")
			if !errors.Is(err, ErrMalformedPayload) {
				t.Fatalf("got %v, want ErrMalformedPayload", err)
			}
			if KindOf(err) != KindMalformedPayload {
				t.Errorf("KindOf = %v", KindOf(err))
			}

			var ce *CorruptionError
			if !errors.As(err, &ce) {
				t.Fatalf("got %T, want *CorruptionError", err)
			}
			if ce.Field != tt.field {
				t.Errorf("Field = %q, want %q", ce.Field, tt.field)
			}
		})
	}
}

func TestFileCodec_FallbackName(t *testing.T) {
	s := newTestSealer(t)
	ctx := context.Background()

	named, err := s.EncryptFile(ctx, strings.NewReader("x"), "stored.txt", "text/plain", "pw")
	if err != nil {
		t.Fatalf("EncryptFile failed: %v", err)
	}
	f, err := s.DecryptFile(ctx, named, "pw", "fallback.txt")
	if err != nil {
		t.Fatalf("DecryptFile failed: %v", err)
	}
	if f.Name != "stored.txt" || f.DisplayName() != "stored.txt" {
		t.Errorf("Name = %q, DisplayName = %q", f.Name, f.DisplayName())
	}

	unnamed, err := s.EncryptFile(ctx, strings.NewReader("x"), "", "text/plain", "pw")
	if err != nil {
		t.Fatalf("EncryptFile failed: %v", err)
	}
	f, err = s.DecryptFile(ctx, unnamed, "pw", "fallback.txt")
	if err != nil {
		t.Fatalf("DecryptFile failed: %v", err)
	}
	if f.Name != "" {
		t.Errorf("stored name must not be replaced, got %q", f.Name)
	}
	if f.DisplayName() != "fallback.txt" {
		t.Errorf("DisplayName = %q", f.DisplayName())
	}
}

func TestDetectMimeType(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		prefix string
	}{
		{"photo.png", nil, "image/png"},
		{"page.html", nil, "text/html"},
		{"noext", []byte("\x89PNG\r\n\x1a\n0000"), "image/png"},
		{"noext", []byte("just some text"), "text/plain"},
		{"noext", []byte{0x00, 0x01, 0x02}, "application/octet-stream"},
	}

	for _, tt := range tests {
		got := DetectMimeType(tt.name, tt.data)
		if !strings.HasPrefix(got, tt.prefix) {
			t.Errorf("DetectMimeType(%q) = %q, want prefix %q", tt.name, got, tt.prefix)
		}
	}
}

func TestFileCodec_MaxFileSize(t *testing.T) {
	s := newTestSealer(t, func(c *Config) { c.MaxFileSize = 8 })
	ctx := context.Background()

	if _, err := s.EncryptFile(ctx, strings.NewReader("12345678"), "ok", "", "pw"); err != nil {
		t.Errorf("file at the limit: %v", err)
	}

	_, err := s.EncryptFile(ctx, strings.NewReader("123456789"), "big", "", "pw")
	if KindOf(err) != KindInvalidConfiguration {
		t.Errorf("oversized file: got %v", err)
	}
}

func TestFileCodec_ContextCanceled(t *testing.T) {
	s := newTestSealer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.EncryptFile(ctx, strings.NewReader("x"), "a", "", "pw"); !errors.Is(err, context.Canceled) {
		t.Errorf("EncryptFile: got %v", err)
	}
	if _, err := s.DecryptFile(ctx, "whatever", "pw", "a"); !errors.Is(err, context.Canceled) {
		t.Errorf("DecryptFile: got %v", err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestFileCodec_ReadError(t *testing.T) {
	s := newTestSealer(t)
	_, err := s.EncryptFile(context.Background(), failingReader{}, "a", "", "pw")
	if err == nil || !strings.Contains(err.Error(), "disk on fire") {
		t.Errorf("got %v", err)
	}
}

func TestFileCodec_Paths(t *testing.T) {
	s := newTestSealer(t)
	ctx := context.Background()

	fs, err := memfs.NewFS()
	if err != nil {
		t.Fatalf("Failed to create memfs: %v", err)
	}

	content := []byte("\x00\x01binary\xff content")
	f, err := fs.Create("/report.pdf")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := f.Write(content); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	f.Close()

	envelope, err := s.EncryptPath(ctx, fs, "/report.pdf", "pw")
	if err != nil {
		t.Fatalf("EncryptPath failed: %v", err)
	}

	file, err := s.DecryptToPath(ctx, fs, envelope, "pw", "/restored.pdf")
	if err != nil {
		t.Fatalf("DecryptToPath failed: %v", err)
	}
	if file.Name != "report.pdf" {
		t.Errorf("stored name = %q", file.Name)
	}
	if file.MimeType != "application/pdf" {
		t.Errorf("MimeType = %q", file.MimeType)
	}

	r, err := fs.Open("/restored.pdf")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("restored content = %q, want %q", got, content)
	}

	if _, err := s.EncryptPath(ctx, fs, "/missing", "pw"); err == nil {
		t.Error("missing file should fail")
	}
}
