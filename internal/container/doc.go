// Package container implements the sealed container format.
//
// A container is a single blob laid out as
//
//	salt (32) || nonce (12) || AES-256-GCM ciphertext || tag (16)
//
// The key is derived from a password and the salt with Argon2id using fixed
// parameters. There is no magic number and no version field: any blob of at
// least MinSize bytes is a candidate container, and a wrong password, a
// tampered byte or a foreign file all fail with ErrAuthentication.
//
// The associated data is a constant 32-byte zero value. It binds nothing
// about the file, and changing it would break every existing container.
package container
