package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/awnumar/memguard"

	"sealcrypt/internal/sealfs"
)

const (
	Version = "1.0.0"

	// Environment variable for passphrase
	PassphraseEnvVar = "SEALCRYPT_PASSPHRASE"

	// Suffix of containers that hold an archived directory
	dirSuffix = ".tar.enc"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		printUsage()
		return err
	}

	switch opts.Command {
	case cmdHelp:
		printUsage()
		return nil
	case cmdVersion:
		fmt.Fprintf(os.Stderr, "sealcrypt version %s\n", Version)
		return nil
	}

	logger := newLogger(os.Stderr, opts.Verbose)
	if err := disableCoreDumps(); err != nil {
		logger.Debug("core dumps not disabled", "error", err)
	}

	var passphrase []byte
	source := terminalSource()
	if opts.Command == cmdEncrypt {
		passphrase, err = source.confirmed("Enter passphrase: ", "Confirm passphrase: ")
	} else {
		passphrase, err = source.passphrase("Enter passphrase: ")
	}
	if err != nil {
		return fmt.Errorf("failed to get passphrase: %w", err)
	}
	defer memguard.WipeBytes(passphrase)

	if len(passphrase) == 0 {
		return fmt.Errorf("passphrase cannot be empty")
	}

	s := sealfs.New(&sealfs.OSFS{}, logger)
	if opts.Command == cmdEncrypt {
		return encrypt(s, logger, opts, passphrase)
	}
	return decrypt(s, logger, opts, passphrase)
}

// newLogger returns the diagnostic logger. Records never carry secrets.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func printUsage() {
	usage := `sealcrypt - Password-based file and directory encryption

USAGE:
    sealcrypt <command> -i <input> -o <output> [options]

COMMANDS:
    encrypt          Encrypt a file or directory
    decrypt          Decrypt a container
    --help, -h       Show this help message
    --version        Show version information

OPTIONS:
    --input, -i PATH     Path to the input file or directory
    --output, -o PATH    Path to the output file
    --delete             Delete the source after success
    --verbose, -v        Log progress to stderr

PASSPHRASE:
    Set SEALCRYPT_PASSPHRASE environment variable, or enter interactively.

EXAMPLES:
    # Encrypt a file
    sealcrypt encrypt -i notes.txt -o notes.txt.enc

    # Encrypt a directory (writes photos.tar.enc)
    sealcrypt encrypt -i ./photos -o photos

    # Decrypt a directory container into ./photos
    sealcrypt decrypt -i photos.tar.enc -o photos --delete

SECURITY:
    - Key derived using Argon2id (16 MiB, 8 iterations, 8 lanes)
    - Contents sealed with AES-256-GCM
    - The whole input is held in memory while it is processed

`
	fmt.Fprint(os.Stderr, usage)
}
