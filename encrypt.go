package main

import (
	"fmt"
	"log/slog"

	"github.com/awnumar/memguard"

	"sealcrypt/internal/archive"
	"sealcrypt/internal/sealfs"
)

func encrypt(s *sealfs.Sealer, logger *slog.Logger, opts Options, passphrase []byte) error {
	isDir, err := s.IsDir(opts.Input)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	output := opts.Output
	remove := s.Remove
	if isDir {
		output += dirSuffix
		remove = s.RemoveAll
	}

	if opts.Delete {
		if err := checkOverlap(opts.Input, output); err != nil {
			return fmt.Errorf("cannot use --delete: %w", err)
		}
	}

	if isDir {
		// Directories are packed into one tar stream first
		tarball, err := archive.PackDir(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to archive directory: %w", err)
		}
		defer memguard.WipeBytes(tarball)

		if err := s.EncryptBytes(tarball, output, passphrase); err != nil {
			return fmt.Errorf("encryption failed: %w", err)
		}
		logger.Info("directory encrypted", "input", opts.Input, "output", output, "archive_bytes", len(tarball))
	} else {
		if err := s.EncryptFile(opts.Input, output, passphrase); err != nil {
			return fmt.Errorf("encryption failed: %w", err)
		}
		logger.Info("file encrypted", "input", opts.Input, "output", output)
	}

	if opts.Delete {
		return removeSource(remove, opts.Input, output)
	}
	return nil
}
