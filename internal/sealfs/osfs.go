package sealfs

import (
	"os"
	"path/filepath"
	"time"

	"github.com/absfs/absfs"
)

// OSFS is an absfs.FileSystem backed by the os package. Names are resolved
// against Root; an empty Root leaves them as given.
type OSFS struct {
	Root string
	cwd  string
}

var _ absfs.FileSystem = (*OSFS)(nil)

func (fs *OSFS) path(name string) string {
	if fs.Root == "" {
		return filepath.Clean(name)
	}
	return filepath.Join(fs.Root, name)
}

func (fs *OSFS) OpenFile(name string, flag int, perm os.FileMode) (absfs.File, error) {
	return os.OpenFile(fs.path(name), flag, perm)
}

func (fs *OSFS) Mkdir(name string, perm os.FileMode) error {
	return os.Mkdir(fs.path(name), perm)
}

func (fs *OSFS) MkdirAll(name string, perm os.FileMode) error {
	return os.MkdirAll(fs.path(name), perm)
}

func (fs *OSFS) Remove(name string) error {
	return os.Remove(fs.path(name))
}

func (fs *OSFS) RemoveAll(path string) error {
	return os.RemoveAll(fs.path(path))
}

func (fs *OSFS) Rename(oldpath, newpath string) error {
	return os.Rename(fs.path(oldpath), fs.path(newpath))
}

func (fs *OSFS) Stat(name string) (os.FileInfo, error) {
	return os.Stat(fs.path(name))
}

func (fs *OSFS) Chmod(name string, mode os.FileMode) error {
	return os.Chmod(fs.path(name), mode)
}

func (fs *OSFS) Chtimes(name string, atime, mtime time.Time) error {
	return os.Chtimes(fs.path(name), atime, mtime)
}

func (fs *OSFS) Chown(name string, uid, gid int) error {
	return os.Chown(fs.path(name), uid, gid)
}

func (fs *OSFS) Separator() uint8 {
	return os.PathSeparator
}

func (fs *OSFS) ListSeparator() uint8 {
	return os.PathListSeparator
}

func (fs *OSFS) Chdir(dir string) error {
	fs.cwd = dir
	return nil
}

func (fs *OSFS) Getwd() (string, error) {
	if fs.cwd == "" {
		return os.Getwd()
	}
	return fs.cwd, nil
}

func (fs *OSFS) TempDir() string {
	return os.TempDir()
}

func (fs *OSFS) Open(name string) (absfs.File, error) {
	return fs.OpenFile(name, os.O_RDONLY, 0)
}

func (fs *OSFS) Create(name string) (absfs.File, error) {
	return fs.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
}

func (fs *OSFS) Truncate(name string, size int64) error {
	return os.Truncate(fs.path(name), size)
}
