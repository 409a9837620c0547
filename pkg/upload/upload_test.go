package upload

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/helmcode/codelinter/pkg/model"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func entries(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("payload is not a zip: %v", err)
	}
	out := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		b, _ := io.ReadAll(rc)
		rc.Close()
		out[f.Name] = string(b)
	}
	return out
}

func TestLoad_RegularFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Main.java")
	write(t, path, "public class Main {}")

	f, err := Load(path, false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Name != "Main.java" || string(f.Data) != "public class Main {}" {
		t.Errorf("unexpected file %q: %q", f.Name, f.Data)
	}
}

func TestLoad_PackedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Main.java")
	write(t, path, "public class Main {}")

	f, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Name != "Main.java.zip" {
		t.Errorf("name = %q, want Main.java.zip", f.Name)
	}
	got := entries(t, f.Data)
	if got["Main.java"] != "public class Main {}" {
		t.Errorf("unexpected archive contents %v", got)
	}
}

func TestLoad_ZipIsNotRepacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "submission.zip")
	write(t, path, "PK-not-really")

	f, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Name != "submission.zip" || string(f.Data) != "PK-not-really" {
		t.Errorf("zip should be sent unchanged, got %q", f.Name)
	}
}

func TestLoad_Directory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "project")
	write(t, filepath.Join(root, "src", "Main.java"), "class Main {}")
	write(t, filepath.Join(root, "src", "util", "Util.java"), "class Util {}")
	write(t, filepath.Join(root, ".git", "HEAD"), "ref: refs/heads/main")
	write(t, filepath.Join(root, ".hidden"), "x")

	f, err := Load(root, false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Name != "project.zip" {
		t.Errorf("name = %q, want project.zip", f.Name)
	}

	got := entries(t, f.Data)
	var names []string
	for name := range got {
		names = append(names, name)
	}
	sort.Strings(names)
	want := []string{"src/Main.java", "src/util/Util.java"}
	if len(names) != len(want) || names[0] != want[0] || names[1] != want[1] {
		t.Errorf("archive entries = %v, want %v", names, want)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.java"), false); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}

	empty := filepath.Join(dir, "Empty.java")
	write(t, empty, "")
	if _, err := Load(empty, false); !errors.Is(err, model.ErrEmptyFile) {
		t.Errorf("expected ErrEmptyFile, got %v", err)
	}
}
