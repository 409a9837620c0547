// Package upload turns a path on disk into the payload sent for analysis.
// Directories are packed into a zip archive in memory, which is the form
// the analysis service unpacks.
package upload

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/helmcode/codelinter/pkg/model"
)

// MaxSize bounds the payload read from disk.
const MaxSize = 64 << 20

// Load reads path. A directory is zipped; a regular file is sent as-is
// unless pack is true, in which case it is zipped on its own.
func Load(path string, pack bool) (model.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return model.File{}, fmt.Errorf("upload: %w", err)
	}

	var f model.File
	switch {
	case info.IsDir():
		f, err = zipDir(path)
	case pack && !isZip(path):
		f, err = zipFile(path)
	default:
		f, err = readFile(path, info)
	}
	if err != nil {
		return model.File{}, err
	}
	if len(f.Data) > MaxSize {
		return model.File{}, fmt.Errorf("upload: %s is %d bytes, larger than the %d byte limit", path, len(f.Data), MaxSize)
	}
	if err := f.Validate(); err != nil {
		return model.File{}, fmt.Errorf("upload: %s: %w", path, err)
	}
	return f, nil
}

func isZip(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".zip")
}

func readFile(path string, info fs.FileInfo) (model.File, error) {
	if !info.Mode().IsRegular() {
		return model.File{}, fmt.Errorf("upload: %s is not a regular file", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.File{}, fmt.Errorf("upload: read %s: %w", path, err)
	}
	return model.File{Name: filepath.Base(path), Data: data}, nil
}

func zipFile(path string) (model.File, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if err := addFile(zw, path, filepath.Base(path)); err != nil {
		return model.File{}, err
	}
	if err := zw.Close(); err != nil {
		return model.File{}, fmt.Errorf("upload: close archive: %w", err)
	}
	return model.File{Name: filepath.Base(path) + ".zip", Data: buf.Bytes()}, nil
}

// zipDir archives every regular file below root, skipping hidden files and
// directories such as .git.
func zipDir(root string) (model.File, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return model.File{}, fmt.Errorf("upload: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != abs && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(abs, path)
		if err != nil {
			return err
		}
		return addFile(zw, path, filepath.ToSlash(rel))
	})
	if err != nil {
		return model.File{}, fmt.Errorf("upload: pack %s: %w", root, err)
	}
	if err := zw.Close(); err != nil {
		return model.File{}, fmt.Errorf("upload: close archive: %w", err)
	}

	return model.File{Name: filepath.Base(abs) + ".zip", Data: buf.Bytes()}, nil
}

func addFile(zw *zip.Writer, path, name string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("upload: open %s: %w", path, err)
	}
	defer src.Close()

	dst, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("upload: add %s: %w", name, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("upload: copy %s: %w", name, err)
	}
	return nil
}
