package container

import (
	"bytes"
	"errors"
	"testing"
)

func TestDeriveKey(t *testing.T) {
	salt := bytes.Repeat([]byte{0x01}, SaltSize)
	otherSalt := bytes.Repeat([]byte{0x02}, SaltSize)

	derive := func(password, salt []byte) []byte {
		t.Helper()
		key, err := DeriveKey(password, salt)
		if err != nil {
			t.Fatalf("derive failed: %v", err)
		}
		defer key.Destroy()
		return bytes.Clone(key.Bytes())
	}

	k1 := derive([]byte("correct-horse"), salt)
	k2 := derive([]byte("correct-horse"), salt)
	k3 := derive([]byte("correct-horse"), otherSalt)
	k4 := derive([]byte("wrong-password"), salt)

	if len(k1) != KeySize {
		t.Fatalf("expected %d bytes, got %d", KeySize, len(k1))
	}
	if !bytes.Equal(k1, k2) {
		t.Error("same password and salt must derive the same key")
	}
	if bytes.Equal(k1, k3) {
		t.Error("different salts must derive different keys")
	}
	if bytes.Equal(k1, k4) {
		t.Error("different passwords must derive different keys")
	}
}

func TestDeriveKeyEmptyPassword(t *testing.T) {
	key, err := DeriveKey(nil, make([]byte, SaltSize))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer key.Destroy()

	if key.Size() != KeySize {
		t.Errorf("expected %d bytes, got %d", KeySize, key.Size())
	}
}

func TestDeriveKeyInvalidSalt(t *testing.T) {
	for _, n := range []int{0, 16, SaltSize - 1, SaltSize + 1} {
		_, err := DeriveKey([]byte("password"), make([]byte, n))
		if !errors.Is(err, ErrKeyDerivation) {
			t.Errorf("salt of %d bytes: expected %v, got %v", n, ErrKeyDerivation, err)
		}
	}
}

func TestDeriveKeyInvalidParams(t *testing.T) {
	salt := make([]byte, SaltSize)

	testCases := []struct {
		name   string
		params kdfParams
	}{
		{"ZeroTime", kdfParams{time: 0, memory: argon2Memory, threads: argon2Threads, keyLen: KeySize}},
		{"ZeroThreads", kdfParams{time: argon2Time, memory: argon2Memory, threads: 0, keyLen: KeySize}},
		{"MemoryTooSmall", kdfParams{time: argon2Time, memory: 8*argon2Threads - 1, threads: argon2Threads, keyLen: KeySize}},
		{"ShortKey", kdfParams{time: argon2Time, memory: argon2Memory, threads: argon2Threads, keyLen: 16}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := deriveKey([]byte("password"), salt, tc.params)
			if !errors.Is(err, ErrKeyDerivation) {
				t.Errorf("expected %v, got %v", ErrKeyDerivation, err)
			}
		})
	}
}

func TestDefaultKDFParams(t *testing.T) {
	if err := defaultKDF.validate(); err != nil {
		t.Fatalf("default parameters rejected: %v", err)
	}

	want := kdfParams{time: 8, memory: 16384, threads: 8, keyLen: 32}
	if defaultKDF != want {
		t.Errorf("parameters changed: want %+v, got %+v", want, defaultKDF)
	}
}

func TestDeriveKeyWipesRawOutput(t *testing.T) {
	raw := captureRawKeys(t)

	key, err := DeriveKey([]byte("correct-horse"), make([]byte, SaltSize))
	if err != nil {
		t.Fatal(err)
	}
	defer key.Destroy()

	if isZero(key.Bytes()) {
		t.Fatal("locked key must hold the derived value")
	}
	assertWiped(t, *raw)
}
