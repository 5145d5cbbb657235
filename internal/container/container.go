package container

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/awnumar/memguard"
	"github.com/tink-crypto/tink-go/v2/subtle/random"
)

const (
	// SaltSize is the size of the salt in bytes.
	SaltSize = 32
	// NonceSize is the size of the GCM nonce in bytes.
	NonceSize = 12
	// TagSize is the size of the GCM authentication tag in bytes.
	TagSize = 16
	// KeySize is the size of the derived AES-256 key in bytes.
	KeySize = 32
	// HeaderSize is the size of the salt and nonce prefix.
	HeaderSize = SaltSize + NonceSize
	// MinSize is the size of a container holding an empty plaintext.
	MinSize = HeaderSize + TagSize

	// maxPlaintextSize is the GCM limit for a single message.
	maxPlaintextSize = (1<<32 - 2) * aes.BlockSize
)

// associatedData is the fixed context tag authenticated with every container.
var associatedData [32]byte

// randomBytes is the salt and nonce source, swapped in tests.
var randomBytes = random.GetRandomBytes

// SealedSize returns the container size for a plaintext of n bytes.
func SealedSize(n int) int {
	return MinSize + n
}

// Seal encrypts plaintext under a key derived from password and returns the
// container bytes. A fresh salt and nonce are drawn for every call.
func Seal(plaintext, password []byte) ([]byte, error) {
	if uint64(len(plaintext)) > maxPlaintextSize {
		return nil, &operationError{"Seal", fmt.Errorf("%w: plaintext too large", ErrEncryption)}
	}

	salt := randomBytes(SaltSize)
	defer memguard.WipeBytes(salt)
	nonce := randomBytes(NonceSize)
	defer memguard.WipeBytes(nonce)
	if len(salt) != SaltSize || len(nonce) != NonceSize {
		return nil, &operationError{"Seal", fmt.Errorf("%w: short random read", ErrEncryption)}
	}

	key, err := DeriveKey(password, salt)
	if err != nil {
		return nil, &operationError{"Seal", err}
	}
	defer key.Destroy()

	aead, err := newAEAD(key.Bytes())
	if err != nil {
		return nil, &operationError{"Seal", err}
	}

	// SALT || NONCE || CIPHERTEXT || TAG, sealed straight into the output.
	out := make([]byte, HeaderSize, SealedSize(len(plaintext)))
	copy(out, salt)
	copy(out[SaltSize:], nonce)

	return aead.Seal(out, nonce, plaintext, associatedData[:]), nil
}

// Open authenticates and decrypts a container produced by Seal. The input is
// left untouched. Any authentication failure is reported as
// ErrAuthentication, whatever its cause.
func Open(sealed, password []byte) ([]byte, error) {
	if len(sealed) < MinSize {
		return nil, &operationError{"Open", ErrFormat}
	}

	salt := make([]byte, SaltSize)
	defer memguard.WipeBytes(salt)
	copy(salt, sealed[:SaltSize])

	nonce := make([]byte, NonceSize)
	defer memguard.WipeBytes(nonce)
	copy(nonce, sealed[SaltSize:HeaderSize])

	key, err := DeriveKey(password, salt)
	if err != nil {
		return nil, &operationError{"Open", err}
	}
	defer key.Destroy()

	aead, err := newAEAD(key.Bytes())
	if err != nil {
		return nil, &operationError{"Open", err}
	}

	// Decrypt in place over a private copy of the ciphertext.
	buf := make([]byte, len(sealed)-HeaderSize)
	copy(buf, sealed[HeaderSize:])

	plaintext, err := aead.Open(buf[:0], nonce, buf, associatedData[:])
	if err != nil {
		memguard.WipeBytes(buf)
		return nil, &operationError{"Open", ErrAuthentication}
	}

	return plaintext, nil
}

// newAEAD builds AES-256-GCM over key. The expanded round keys live inside
// crypto/aes on the heap and cannot be wiped; only key itself is caller owned.
func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: aesgcm: %v", ErrEncryption, err)
	}

	aead, err := cipher.NewGCMWithNonceSize(block, NonceSize)
	if err != nil {
		return nil, fmt.Errorf("%w: aesgcm: %v", ErrEncryption, err)
	}
	if aead.Overhead() != TagSize {
		return nil, fmt.Errorf("%w: aesgcm: unexpected tag size %d", ErrEncryption, aead.Overhead())
	}

	return aead, nil
}
