package sealbox

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"

	"github.com/absfs/absfs"
)

// File is a binary object with the metadata stored alongside it in an
// encrypted file payload.
type File struct {
	Name     string
	MimeType string
	Data     []byte

	fallback string
}

// Size returns the length of Data in bytes
func (f *File) Size() int64 {
	return int64(len(f.Data))
}

// DisplayName returns the stored name, or the fallback name given to
// DecryptFile when the payload carried none. Name itself is never changed.
func (f *File) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return f.fallback
}

// Reader returns a reader over the file content
func (f *File) Reader() io.Reader {
	return bytes.NewReader(f.Data)
}

// FilePayload is the JSON document sealed by the file codec
type FilePayload struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
	Data string `json:"data"`
}

// wirePayload detects missing fields while decoding
type wirePayload struct {
	Name *string `json:"name"`
	Type *string `json:"type"`
	Size *int64  `json:"size"`
	Data *string `json:"data"`
}

// DetectMimeType guesses a MIME type from the file extension, then from
// the content.
func DetectMimeType(name string, data []byte) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return http.DetectContentType(data)
}

// EncryptFile reads r to the end and seals its content together with name
// and MIME type. An empty mimeType is detected from name and content.
func (s *Sealer) EncryptFile(ctx context.Context, r io.Reader, name, mimeType, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := s.readAll(r)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	return s.encryptFile(&File{Name: name, MimeType: mimeType, Data: data}, password)
}

func (s *Sealer) encryptFile(f *File, password string) (string, error) {
	if s.config.MaxFileSize > 0 && f.Size() > s.config.MaxFileSize {
		return "", NewValidationError("file", f.Size(), fmt.Sprintf("file exceeds maximum size of %d bytes", s.config.MaxFileSize))
	}

	mimeType := f.MimeType
	if mimeType == "" {
		mimeType = DetectMimeType(f.Name, f.Data)
	}

	payload, err := json.Marshal(FilePayload{
		Name: f.Name,
		Type: mimeType,
		Size: f.Size(),
		Data: base64.StdEncoding.EncodeToString(f.Data),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode file payload: %w", err)
	}
	defer zero(payload)

	return s.EncryptBytes(payload, password)
}

func (s *Sealer) readAll(r io.Reader) ([]byte, error) {
	limit := s.config.MaxFileSize
	if limit <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, NewValidationError("file", len(data), fmt.Sprintf("file exceeds maximum size of %d bytes", limit))
	}
	return data, nil
}

// DecryptFile opens a file envelope. fallbackName is only used by
// File.DisplayName when the stored name is empty.
func (s *Sealer) DecryptFile(ctx context.Context, envelope, password, fallbackName string) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	plaintext, err := s.DecryptBytes(envelope, password)
	if err != nil {
		return nil, err
	}
	defer zero(plaintext)

	f, err := decodeFilePayload(plaintext)
	if err != nil {
		return nil, err
	}
	f.fallback = fallbackName
	return f, nil
}

func decodeFilePayload(plaintext []byte) (*File, error) {
	var wire wirePayload
	if err := json.Unmarshal(plaintext, &wire); err != nil {
		return nil, NewCorruptionError("", "not a JSON file payload", err)
	}

	switch {
	case wire.Name == nil:
		return nil, NewCorruptionError("name", "missing", nil)
	case wire.Type == nil:
		return nil, NewCorruptionError("type", "missing", nil)
	case wire.Size == nil:
		return nil, NewCorruptionError("size", "missing", nil)
	case wire.Data == nil:
		return nil, NewCorruptionError("data", "missing", nil)
	}

	data, err := base64.StdEncoding.DecodeString(*wire.Data)
	if err != nil {
		return nil, NewCorruptionError("data", "invalid base64", err)
	}
	if int64(len(data)) != *wire.Size {
		return nil, NewCorruptionError("size", fmt.Sprintf("declared %d bytes, decoded %d", *wire.Size, len(data)), nil)
	}

	return &File{
		Name:     *wire.Name,
		MimeType: *wire.Type,
		Data:     data,
	}, nil
}

// EncryptPath seals the file at name in fsys. The stored name is the base
// name of the path.
func (s *Sealer) EncryptPath(ctx context.Context, fsys absfs.FileSystem, name, password string) (string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	return s.EncryptFile(ctx, f, path.Base(name), "", password)
}

// DecryptToPath opens a file envelope and writes its content to name in fsys.
func (s *Sealer) DecryptToPath(ctx context.Context, fsys absfs.FileSystem, envelope, password, name string) (*File, error) {
	file, err := s.DecryptFile(ctx, envelope, password, path.Base(name))
	if err != nil {
		return nil, err
	}

	out, err := fsys.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", name, err)
	}
	if _, err := out.Write(file.Data); err != nil {
		out.Close()
		return nil, fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("failed to close %s: %w", name, err)
	}
	return file, nil
}
