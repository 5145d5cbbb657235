package container

import (
	"fmt"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. They are not recorded in the container, so changing
// any of them makes previously sealed containers undecryptable.
const (
	argon2Time    = 8
	argon2Memory  = 16 * 1024 // KiB
	argon2Threads = 8
)

// idKey is swapped in tests to observe the raw derivation output.
var idKey = argon2.IDKey

type kdfParams struct {
	time    uint32
	memory  uint32
	threads uint8
	keyLen  uint32
}

var defaultKDF = kdfParams{
	time:    argon2Time,
	memory:  argon2Memory,
	threads: argon2Threads,
	keyLen:  KeySize,
}

// validate rejects the parameter sets argon2.IDKey would panic on or that
// cannot key AES-256.
func (p kdfParams) validate() error {
	switch {
	case p.time < 1:
		return fmt.Errorf("%w: time cost must be at least 1", ErrKeyDerivation)
	case p.threads < 1:
		return fmt.Errorf("%w: parallelism must be at least 1", ErrKeyDerivation)
	case p.memory < 8*uint32(p.threads):
		return fmt.Errorf("%w: memory cost must be at least %d KiB", ErrKeyDerivation, 8*uint32(p.threads))
	case p.keyLen != KeySize:
		return fmt.Errorf("%w: key length must be %d bytes", ErrKeyDerivation, KeySize)
	}
	return nil
}

// DeriveKey derives the container key from password and salt with Argon2id.
// The key is returned in a locked buffer that the caller must Destroy.
func DeriveKey(password, salt []byte) (*memguard.LockedBuffer, error) {
	return deriveKey(password, salt, defaultKDF)
}

func deriveKey(password, salt []byte, p kdfParams) (*memguard.LockedBuffer, error) {
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("%w: salt must be %d bytes, got %d", ErrKeyDerivation, SaltSize, len(salt))
	}
	if err := p.validate(); err != nil {
		return nil, err
	}

	// NewBufferFromBytes wipes raw after copying it into locked memory.
	raw := idKey(password, salt, p.time, p.memory, p.threads, p.keyLen)
	return memguard.NewBufferFromBytes(raw), nil
}
