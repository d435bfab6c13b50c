package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/absfs/absfs"
)

// dirFS is an absfs.FileSystem over the host filesystem. Relative names
// resolve against root; absolute names are used as given.
type dirFS struct {
	root string
	cwd  string
}

var _ absfs.FileSystem = (*dirFS)(nil)

func newDirFS(root string) *dirFS {
	return &dirFS{root: root}
}

func (fs *dirFS) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(fs.root, name)
}

func (fs *dirFS) OpenFile(name string, flag int, perm os.FileMode) (absfs.File, error) {
	return os.OpenFile(fs.resolve(name), flag, perm)
}

func (fs *dirFS) Mkdir(name string, perm os.FileMode) error {
	return os.Mkdir(fs.resolve(name), perm)
}

func (fs *dirFS) MkdirAll(name string, perm os.FileMode) error {
	return os.MkdirAll(fs.resolve(name), perm)
}

func (fs *dirFS) Remove(name string) error {
	return os.Remove(fs.resolve(name))
}

func (fs *dirFS) RemoveAll(path string) error {
	return os.RemoveAll(fs.resolve(path))
}

func (fs *dirFS) Rename(oldpath, newpath string) error {
	return os.Rename(fs.resolve(oldpath), fs.resolve(newpath))
}

func (fs *dirFS) Stat(name string) (os.FileInfo, error) {
	return os.Stat(fs.resolve(name))
}

func (fs *dirFS) Chmod(name string, mode os.FileMode) error {
	return os.Chmod(fs.resolve(name), mode)
}

func (fs *dirFS) Chtimes(name string, atime, mtime time.Time) error {
	return os.Chtimes(fs.resolve(name), atime, mtime)
}

func (fs *dirFS) Chown(name string, uid, gid int) error {
	return os.Chown(fs.resolve(name), uid, gid)
}

func (fs *dirFS) Separator() uint8 {
	return os.PathSeparator
}

func (fs *dirFS) ListSeparator() uint8 {
	return os.PathListSeparator
}

func (fs *dirFS) Chdir(dir string) error {
	fs.cwd = dir
	return nil
}

func (fs *dirFS) Getwd() (string, error) {
	if fs.cwd == "" {
		return fs.root, nil
	}
	return fs.cwd, nil
}

func (fs *dirFS) TempDir() string {
	return os.TempDir()
}

func (fs *dirFS) Open(name string) (absfs.File, error) {
	return fs.OpenFile(name, os.O_RDONLY, 0)
}

func (fs *dirFS) Create(name string) (absfs.File, error) {
	return fs.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
}

func (fs *dirFS) Truncate(name string, size int64) error {
	return os.Truncate(fs.resolve(name), size)
}
