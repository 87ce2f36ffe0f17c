// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// FindFilesByExtension recursively searches the given root path for all files
// whose name ends with extension, compared case-insensitively. It returns a
// slice of their full paths in lexical order.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}
	extension = strings.ToLower(extension)

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), extension) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}

// CopyDir recursively copies srcDir into destDir, creating destDir and every
// subdirectory. Files whose base name matches exclude are skipped; a nil
// exclude copies everything. Existing files are overwritten. It returns the
// destination paths of the copied files in walk order.
func CopyDir(srcDir, destDir string, exclude *regexp.Regexp) ([]string, error) {
	var copied []string
	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		target := filepath.Join(destDir, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0750)
		}
		if exclude != nil && exclude.MatchString(d.Name()) {
			return nil
		}
		if err := CopyFile(path, target); err != nil {
			return err
		}
		copied = append(copied, target)
		return nil
	})
	if err != nil {
		return copied, fmt.Errorf("copying %s to %s: %w", srcDir, destDir, err)
	}
	return copied, nil
}

// CopyFile copies src to dst, creating dst's parent directory. The file mode
// of src is kept.
func CopyFile(src, dst string) error {
	in, err := os.Open(src) //nolint:gosec // G304: src comes from the project descriptor
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0750); err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm()) //nolint:gosec // G304: dst is inside the target tree
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// Exists reports whether path exists, following symlinks.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
