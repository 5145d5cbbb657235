//go:build !(linux || darwin)

package main

func disableCoreDumps() error { return nil }
