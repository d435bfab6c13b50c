package sealbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"

	"github.com/absfs/absfs"
)

const vaultFileVersion = 1

// vaultFile is the persisted form of a vault
type vaultFile struct {
	Version int         `json:"version"`
	Keys    []KeyRecord `json:"keys"`
}

// vaultStore reads and writes the vault file in an absfs filesystem
type vaultStore struct {
	fs   absfs.FileSystem
	path string
}

func (s *vaultStore) load() ([]KeyRecord, error) {
	file, err := s.fs.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open vault file: %w", err)
	}
	defer file.Close()

	var vf vaultFile
	if err := json.NewDecoder(file).Decode(&vf); err != nil {
		return nil, NewCorruptionError("vault", "failed to decode vault file", err)
	}
	if vf.Version != vaultFileVersion {
		return nil, NewCorruptionError("version", fmt.Sprintf("unsupported vault file version %d", vf.Version), nil)
	}
	for _, r := range vf.Keys {
		if r.ID == "" {
			return nil, NewCorruptionError("id", "record without id", nil)
		}
	}
	return vf.Keys, nil
}

func (s *vaultStore) save(records []KeyRecord) error {
	if dir := path.Dir(s.path); dir != "." && dir != "/" {
		if err := s.fs.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create vault directory: %w", err)
		}
	}

	file, err := s.fs.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create vault file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(vaultFile{Version: vaultFileVersion, Keys: records}); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode vault file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close vault file: %w", err)
	}
	return nil
}
