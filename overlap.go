package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// errOverlap is returned when deleting the source would also delete the
// output.
var errOverlap = errors.New("output overlaps input")

// checkOverlap fails when input and output name the same file, or one lies
// inside the other. Symlinks are resolved for the parts of each path that
// already exist.
func checkOverlap(input, output string) error {
	in, err := resolvePath(input)
	if err != nil {
		return err
	}
	out, err := resolvePath(output)
	if err != nil {
		return err
	}

	if contains(in, out) || contains(out, in) {
		return fmt.Errorf("%w: %s and %s", errOverlap, input, output)
	}

	inInfo, inErr := os.Stat(input)
	outInfo, outErr := os.Stat(output)
	if inErr == nil && outErr == nil && os.SameFile(inInfo, outInfo) {
		return fmt.Errorf("%w: %s and %s are the same file", errOverlap, input, output)
	}
	return nil
}

// resolvePath returns the absolute path with symlinks evaluated for the
// longest existing prefix.
func resolvePath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", p, err)
	}

	var rest []string
	for dir := abs; ; {
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			return filepath.Join(append([]string{resolved}, rest...)...), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		rest = append([]string{filepath.Base(dir)}, rest...)
		dir = parent
	}
}

// contains reports whether child is parent or lies below it.
func contains(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// removeSource deletes the input after a successful run, refusing when the
// output would go with it.
func removeSource(remove func(string) error, input, output string) error {
	if err := checkOverlap(input, output); err != nil {
		return fmt.Errorf("refusing to delete source: %w", err)
	}
	return remove(input)
}
