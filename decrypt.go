package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/awnumar/memguard"
	"github.com/google/uuid"

	"sealcrypt/internal/archive"
	"sealcrypt/internal/container"
	"sealcrypt/internal/sealfs"
)

func decrypt(s *sealfs.Sealer, logger *slog.Logger, opts Options, passphrase []byte) error {
	if opts.Delete {
		if err := checkOverlap(opts.Input, opts.Output); err != nil {
			return fmt.Errorf("cannot use --delete: %w", err)
		}
	}

	if strings.Contains(opts.Input, dirSuffix) {
		if err := decryptDir(s, opts, passphrase); err != nil {
			return err
		}
		logger.Info("directory decrypted", "input", opts.Input, "output", opts.Output)
	} else {
		if err := s.DecryptFile(opts.Input, opts.Output, passphrase); err != nil {
			return decryptError(err)
		}
		logger.Info("file decrypted", "input", opts.Input, "output", opts.Output)
	}

	if opts.Delete {
		return removeSource(s.Remove, opts.Input, opts.Output)
	}
	return nil
}

// decryptDir claims the output with an empty directory, unpacks into a
// temporary sibling and renames that over the claimed directory once the
// whole tree is extracted. The rename only ever replaces an empty directory
// this call created.
func decryptDir(s *sealfs.Sealer, opts Options, passphrase []byte) (err error) {
	if err := s.Mkdir(opts.Output); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("output %s already exists", opts.Output)
		}
		return fmt.Errorf("failed to create output: %w", err)
	}

	tmp := opts.Output + "." + uuid.NewString() + ".tmp"
	defer func() {
		if err != nil {
			s.FS().RemoveAll(tmp)
			s.FS().Remove(opts.Output)
		}
	}()

	tarball, err := s.DecryptBytes(opts.Input, passphrase)
	if err != nil {
		return decryptError(err)
	}
	defer memguard.WipeBytes(tarball)

	if err := archive.Unpack(s.FS(), tarball, tmp); err != nil {
		return fmt.Errorf("failed to unpack directory: %w", err)
	}
	if err := s.Rename(tmp, opts.Output); err != nil {
		return fmt.Errorf("failed to move directory into place: %w", err)
	}
	return nil
}

func decryptError(err error) error {
	if errors.Is(err, container.ErrAuthentication) {
		return fmt.Errorf("decryption failed (wrong passphrase or corrupted data?): %w", err)
	}
	return fmt.Errorf("decryption failed: %w", err)
}
