package main

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"os"
	"runtime"
	"syscall"

	"github.com/awnumar/memguard"
	"golang.org/x/term"
)

var errPassphraseMismatch = errors.New("passphrases do not match")

// passphraseSource takes the passphrase from the environment when set and
// asks read for it otherwise.
type passphraseSource struct {
	getenv func(string) string
	read   func(prompt string) ([]byte, error)
}

func terminalSource() passphraseSource {
	return passphraseSource{getenv: os.Getenv, read: readTerminal}
}

func (p passphraseSource) fromEnv() []byte {
	if env := p.getenv(PassphraseEnvVar); env != "" {
		return []byte(env)
	}
	return nil
}

func (p passphraseSource) passphrase(prompt string) ([]byte, error) {
	if env := p.fromEnv(); env != nil {
		return env, nil
	}
	return p.read(prompt)
}

// confirmed reads the passphrase twice and returns it only when both reads
// agree. Every buffer except the returned one is wiped.
func (p passphraseSource) confirmed(prompt, confirmPrompt string) ([]byte, error) {
	if env := p.fromEnv(); env != nil {
		return env, nil
	}

	first, err := p.read(prompt)
	if err != nil {
		return nil, err
	}

	second, err := p.read(confirmPrompt)
	if err != nil {
		memguard.WipeBytes(first)
		return nil, fmt.Errorf("confirmation: %w", err)
	}
	defer memguard.WipeBytes(second)

	if subtle.ConstantTimeCompare(first, second) != 1 {
		memguard.WipeBytes(first)
		return nil, errPassphraseMismatch
	}
	return first, nil
}

// readTerminal prompts on stderr and reads without echo from stdin, or from
// /dev/tty when stdin is piped.
func readTerminal(prompt string) ([]byte, error) {
	fd, closeTTY, err := terminalFD()
	if err != nil {
		return nil, err
	}
	defer closeTTY()

	fmt.Fprint(os.Stderr, prompt)
	passphrase, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, err
	}
	return passphrase, nil
}

func terminalFD() (int, func(), error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		return int(syscall.Stdin), func() {}, nil
	}

	tty, err := os.Open("/dev/tty")
	if err != nil {
		if runtime.GOOS == "windows" {
			return 0, nil, fmt.Errorf("passphrase must be set via %s environment variable when STDIN is piped", PassphraseEnvVar)
		}
		return 0, nil, fmt.Errorf("cannot read passphrase: STDIN is piped and /dev/tty is not available. Set %s environment variable", PassphraseEnvVar)
	}
	return int(tty.Fd()), func() { tty.Close() }, nil
}
