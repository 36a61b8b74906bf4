package sink

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFilesystemSinkWrite(t *testing.T) {
	dir := t.TempDir()
	s := NewFilesystemSink(dir)

	if err := s.WriteFile(context.Background(), "trainingjob/resource.go", []byte("package resources\n")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "trainingjob", "resource.go"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "package resources\n" {
		t.Errorf("content = %q", got)
	}
	// No temp file debris.
	entries, _ := os.ReadDir(filepath.Join(dir, "trainingjob"))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".smgen-") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestFilesystemSinkOverwrite(t *testing.T) {
	dir := t.TempDir()
	s := NewFilesystemSink(dir)
	ctx := context.Background()

	if err := s.WriteFile(ctx, "out.go", []byte("v1")); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteFile(ctx, "out.go", []byte("v2")); err != nil {
		t.Fatalf("overwrite should succeed: %v", err)
	}
	got, _ := os.ReadFile(filepath.Join(dir, "out.go"))
	if string(got) != "v2" {
		t.Errorf("content = %q, want v2", got)
	}

	s.Overwrite = false
	err := s.WriteFile(ctx, "out.go", []byte("v3"))
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("expected already-exists error, got %v", err)
	}
}

func TestFilesystemSinkCancelledContext(t *testing.T) {
	s := NewFilesystemSink(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.WriteFile(ctx, "out.go", []byte("x")); err == nil {
		t.Error("expected context error")
	}
}

func TestMemorySink(t *testing.T) {
	s := NewMemorySink()
	ctx := context.Background()

	if err := s.WriteFile(ctx, "a.go", []byte("alpha")); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteFile(ctx, "b.go", []byte("beta")); err != nil {
		t.Fatal(err)
	}

	if got := s.Get("a.go"); string(got) != "alpha" {
		t.Errorf("Get(a.go) = %q", got)
	}
	if got := s.Get("missing.go"); got != nil {
		t.Errorf("Get(missing.go) = %q, want nil", got)
	}
	if files := s.Files(); len(files) != 2 {
		t.Errorf("Files() has %d entries, want 2", len(files))
	}

	// Mutating a returned copy must not touch the stored content.
	cp := s.Get("a.go")
	cp[0] = 'X'
	if got := s.Get("a.go"); string(got) != "alpha" {
		t.Errorf("stored content mutated: %q", got)
	}

	s.Reset()
	if files := s.Files(); len(files) != 0 {
		t.Errorf("Files() after Reset has %d entries", len(files))
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"resource.go", false},
		{"pkg/resource.go", false},
		{"deep/nested/dir/file.go", false},
		{"", true},
		{"/abs/path.go", true},
		{"C:file.go", true},
		{"../escape.go", true},
		{"pkg/../other.go", true},
		{"./file.go", true},
		{"pkg//file.go", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}
