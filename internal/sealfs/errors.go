package sealfs

import "fmt"

// IOError represents a file system failure while reading a source or
// writing a destination.
type IOError struct {
	Op   string // "read", "stat", "mkdir", "create", "write", "sync", "close", "rename", "remove"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
