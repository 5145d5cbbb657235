// Package sealfs reads and writes sealed containers on an absfs.FileSystem.
//
// Every output is written to a temporary sibling and renamed into place once
// it is complete, so a failed operation never leaves a partial container or a
// partial plaintext at the destination.
package sealfs

import (
	"io"
	"log/slog"
	"os"

	"github.com/absfs/absfs"
	"github.com/awnumar/memguard"
	"github.com/google/uuid"

	"sealcrypt/internal/container"
)

// outputPerm is used for both containers and recovered plaintexts.
const outputPerm os.FileMode = 0o600

// Sealer encrypts and decrypts files on a file system.
type Sealer struct {
	fs     absfs.FileSystem
	logger *slog.Logger
}

// New returns a Sealer operating on fs. A nil logger discards records.
func New(fs absfs.FileSystem, logger *slog.Logger) *Sealer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Sealer{fs: fs, logger: logger}
}

// EncryptFile seals the contents of src into a container at dst.
func (s *Sealer) EncryptFile(src, dst string, password []byte) error {
	plaintext, err := s.readFile(src)
	if err != nil {
		return err
	}
	defer memguard.WipeBytes(plaintext)

	return s.EncryptBytes(plaintext, dst, password)
}

// EncryptBytes seals plaintext into a container at dst.
func (s *Sealer) EncryptBytes(plaintext []byte, dst string, password []byte) error {
	sealed, err := container.Seal(plaintext, password)
	if err != nil {
		return err
	}

	if err := s.writeFile(dst, sealed); err != nil {
		return err
	}

	s.logger.Debug("container written", "path", dst, "plaintext_bytes", len(plaintext), "container_bytes", len(sealed))
	return nil
}

// DecryptFile opens the container at src and writes the plaintext to dst.
func (s *Sealer) DecryptFile(src, dst string, password []byte) error {
	plaintext, err := s.DecryptBytes(src, password)
	if err != nil {
		return err
	}
	defer memguard.WipeBytes(plaintext)

	if err := s.writeFile(dst, plaintext); err != nil {
		return err
	}

	s.logger.Debug("plaintext written", "path", dst, "bytes", len(plaintext))
	return nil
}

// DecryptBytes opens the container at src and returns the plaintext. The
// caller owns the returned buffer and should wipe it when done.
func (s *Sealer) DecryptBytes(src string, password []byte) ([]byte, error) {
	sealed, err := s.readFile(src)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("container read", "path", src, "bytes", len(sealed))
	return container.Open(sealed, password)
}

// IsDir reports whether path names a directory.
func (s *Sealer) IsDir(path string) (bool, error) {
	info, err := s.fs.Stat(path)
	if err != nil {
		return false, &IOError{Op: "stat", Path: path, Err: err}
	}
	return info.IsDir(), nil
}

// FS returns the file system the Sealer operates on.
func (s *Sealer) FS() absfs.FileSystem {
	return s.fs
}

// Mkdir creates a single directory and fails if path already exists.
func (s *Sealer) Mkdir(path string) error {
	if err := s.fs.Mkdir(path, 0o700); err != nil {
		return &IOError{Op: "mkdir", Path: path, Err: err}
	}
	return nil
}

// Rename moves oldpath to newpath.
func (s *Sealer) Rename(oldpath, newpath string) error {
	if err := s.fs.Rename(oldpath, newpath); err != nil {
		return &IOError{Op: "rename", Path: newpath, Err: err}
	}
	return nil
}

// Remove deletes a single source file.
func (s *Sealer) Remove(path string) error {
	if err := s.fs.Remove(path); err != nil {
		return &IOError{Op: "remove", Path: path, Err: err}
	}
	s.logger.Debug("source removed", "path", path)
	return nil
}

// RemoveAll deletes a source directory tree.
func (s *Sealer) RemoveAll(path string) error {
	if err := s.fs.RemoveAll(path); err != nil {
		return &IOError{Op: "remove", Path: path, Err: err}
	}
	s.logger.Debug("source tree removed", "path", path)
	return nil
}

func (s *Sealer) readFile(path string) ([]byte, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		memguard.WipeBytes(data)
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return data, nil
}

// writeFile writes data to a temporary sibling of path and renames it over
// path. The temporary file is removed on every failure.
func (s *Sealer) writeFile(path string, data []byte) (err error) {
	tmp := path + "." + uuid.NewString() + ".tmp"

	f, err := s.fs.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, outputPerm)
	if err != nil {
		return &IOError{Op: "create", Path: tmp, Err: err}
	}

	defer func() {
		if err != nil {
			if rmErr := s.fs.Remove(tmp); rmErr != nil {
				s.logger.Warn("temporary file not removed", "path", tmp, "error", rmErr)
			}
		}
	}()

	if _, err := f.Write(data); err != nil {
		f.Close()
		return &IOError{Op: "write", Path: tmp, Err: err}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return &IOError{Op: "sync", Path: tmp, Err: err}
	}
	if err := f.Close(); err != nil {
		return &IOError{Op: "close", Path: tmp, Err: err}
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		return &IOError{Op: "rename", Path: path, Err: err}
	}

	return nil
}
