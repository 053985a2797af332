package fileutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/thoreinstein/drushcfg/internal/errors"
)

func TestReadFileWithLimit(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name    string
		size    int64
		wantErr bool
	}{
		{"small file", 100, false},
		{"exact limit", MaxFileSize, false},
		{"too large", MaxFileSize + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tempDir, tt.name)
			f, err := os.Create(path)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.Truncate(tt.size); err != nil {
				t.Fatal(err)
			}
			f.Close()

			data, err := ReadFileWithLimit(afero.NewOsFs(), path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ReadFileWithLimit() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrFileTooLarge) {
				t.Errorf("expected ErrFileTooLarge, got %v", err)
			}
			if !tt.wantErr && int64(len(data)) != tt.size {
				t.Errorf("read %d bytes, want %d", len(data), tt.size)
			}
		})
	}
}

func TestReadFileWithLimit_MemFs(t *testing.T) {
	mem := afero.NewMemMapFs()
	if err := afero.WriteFile(mem, "/etc/drush/drush.yml", []byte("test:\n  system: yes\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := ReadFileWithLimit(mem, "/etc/drush/drush.yml")
	if err != nil {
		t.Fatalf("ReadFileWithLimit() error = %v", err)
	}
	if string(data) != "test:\n  system: yes\n" {
		t.Errorf("ReadFileWithLimit() = %q", data)
	}
}

func TestReadFileWithLimit_Missing(t *testing.T) {
	_, err := ReadFileWithLimit(afero.NewMemMapFs(), "/nope/drush.yml")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestReadFileWithLimit_Directory(t *testing.T) {
	mem := afero.NewMemMapFs()
	if err := mem.MkdirAll("/etc/drush", 0o755); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadFileWithLimit(mem, "/etc/drush"); err == nil {
		t.Error("expected an error reading a directory")
	}
}
