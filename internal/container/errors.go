package container

import "errors"

var (
	// ErrFormat is returned when the input cannot be a sealed container.
	ErrFormat = errors.New("truncated or corrupt container")
	// ErrKeyDerivation is returned when the key derivation function rejects
	// its salt or parameters.
	ErrKeyDerivation = errors.New("key derivation failed")
	// ErrAuthentication is returned when the container does not authenticate.
	// Wrong passwords and tampered data are reported the same way.
	ErrAuthentication = errors.New("authentication failed")
	// ErrEncryption is returned when the cipher cannot be built or cannot
	// seal the payload.
	ErrEncryption = errors.New("encryption failed")
)

// operationError is an error that includes the operation name.
type operationError struct {
	operation string
	err       error
}

func (e *operationError) Error() string {
	if e.err == nil {
		return "op:" + e.operation + " - no error provided"
	}
	return "op:" + e.operation + " - " + e.err.Error()
}

func (e *operationError) Unwrap() error {
	return e.err
}
