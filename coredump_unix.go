//go:build linux || darwin

package main

import "golang.org/x/sys/unix"

// disableCoreDumps keeps key material out of crash dumps.
func disableCoreDumps() error {
	var rlim unix.Rlimit
	rlim.Cur = 0
	rlim.Max = 0
	return unix.Setrlimit(unix.RLIMIT_CORE, &rlim)
}
