// Package archive packs a directory tree into a single tar stream and
// unpacks it again. Encryption only ever sees the complete stream.
//
// Packing reads any fs.FS; unpacking writes through an absfs.FileSystem.
package archive

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/absfs/absfs"
)

var (
	// ErrUnsafePath is returned when an entry would land outside the
	// destination directory.
	ErrUnsafePath = errors.New("archive: entry escapes destination")
	// ErrUnsupportedEntry is returned for entries that are neither
	// directories nor regular files.
	ErrUnsupportedEntry = errors.New("archive: unsupported entry type")
)

// Pack walks fsys in lexical order and returns the tree as a tar stream.
// Only directories and regular files are archived; ownership is not
// recorded.
func Pack(fsys fs.FS) ([]byte, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	err := fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if name == "." {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() && !info.IsDir() {
			return nil
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return fmt.Errorf("archive: header for %s: %w", name, err)
		}
		hdr.Name = name
		if info.IsDir() {
			hdr.Name += "/"
		}
		hdr.Uid, hdr.Gid = 0, 0
		hdr.Uname, hdr.Gname = "", ""
		hdr.AccessTime, hdr.ChangeTime = time.Time{}, time.Time{}

		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("archive: write header for %s: %w", name, err)
		}
		if info.IsDir() {
			return nil
		}

		f, err := fsys.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()

		if _, err := io.Copy(tw, f); err != nil {
			return fmt.Errorf("archive: copy %s: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("archive: finish: %w", err)
	}
	return buf.Bytes(), nil
}

// PackDir packs the directory tree rooted at dir.
func PackDir(dir string) ([]byte, error) {
	return Pack(os.DirFS(dir))
}

// Unpack extracts a tar stream produced by Pack into dst on fsys, creating
// dst if needed.
func Unpack(fsys absfs.FileSystem, data []byte, dst string) error {
	if err := fsys.MkdirAll(dst, 0o755); err != nil {
		return fmt.Errorf("archive: create %s: %w", dst, err)
	}

	tr := tar.NewReader(bytes.NewReader(data))
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if errors.Is(err, tar.ErrInsecurePath) {
			return fmt.Errorf("%w: %q", ErrUnsafePath, hdr.Name)
		}
		if err != nil {
			return fmt.Errorf("archive: read entry: %w", err)
		}

		target, err := entryPath(dst, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := fsys.MkdirAll(target, hdr.FileInfo().Mode().Perm()|0o700); err != nil {
				return fmt.Errorf("archive: mkdir %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := extractFile(fsys, tr, target, hdr); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %s (type %q)", ErrUnsupportedEntry, hdr.Name, hdr.Typeflag)
		}
	}
}

func entryPath(dst, name string) (string, error) {
	clean := strings.TrimSuffix(name, "/")
	if clean == "" || !filepath.IsLocal(filepath.FromSlash(clean)) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	return filepath.Join(dst, filepath.FromSlash(clean)), nil
}

func extractFile(fsys absfs.FileSystem, r io.Reader, target string, hdr *tar.Header) error {
	if err := fsys.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("archive: mkdir %s: %w", filepath.Dir(target), err)
	}

	f, err := fsys.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, hdr.FileInfo().Mode().Perm())
	if err != nil {
		return fmt.Errorf("archive: create %s: %w", target, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("archive: write %s: %w", target, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("archive: close %s: %w", target, err)
	}

	if !hdr.ModTime.IsZero() {
		if err := fsys.Chtimes(target, hdr.ModTime, hdr.ModTime); err != nil {
			return fmt.Errorf("archive: chtimes %s: %w", target, err)
		}
	}
	return nil
}
