package fileutil_test

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"

	"chamberpivot/internal/fileutil"
)

func TestFormatSize(t *testing.T) {
	cases := []struct {
		size int64
		want string
	}{
		{0, "0B"},
		{1, "1 B"},
		{1023, "1023 B"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1048576, "1 MB"},
		{1572864, "1.5 MB"},
		{3 * 1024 * 1024 * 1024, "3 GB"},
		{1024*1024 - 1, "1 MB"},
	}
	for _, tc := range cases {
		if got := fileutil.FormatSize(tc.size); got != tc.want {
			t.Fatalf("FormatSize(%d) = %q, want %q", tc.size, got, tc.want)
		}
	}
}

func TestWriteAtomicReplacesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	err := fileutil.WriteAtomic(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "new")
		return err
	})
	if err != nil {
		t.Fatalf("WriteAtomic: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "new" {
		t.Fatalf("unexpected content %q (%v)", data, err)
	}
	size, err := fileutil.Size(path)
	if err != nil || size != 3 {
		t.Fatalf("Size = %d, %v", size, err)
	}
}

func TestWriteAtomicLeavesOriginalOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	boom := errors.New("boom")
	err := fileutil.WriteAtomic(path, func(w io.Writer) error {
		fmt.Fprint(w, "partial")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "old" {
		t.Fatalf("original clobbered: %q", data)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("temp file left behind: %v", entries)
	}
}

func TestWriteAtomicMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "out.csv")
	err := fileutil.WriteAtomic(path, func(io.Writer) error { return nil })
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
	if fileutil.Exists(path) {
		t.Fatal("file should not exist")
	}
}

func TestWithLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	ran := false
	if err := fileutil.WithLock(path, func() error {
		ran = true
		if !fileutil.Exists(path + ".lock") {
			t.Fatal("expected lock file while running")
		}
		return nil
	}); err != nil {
		t.Fatalf("WithLock: %v", err)
	}
	if !ran {
		t.Fatal("callback not run")
	}
	if fileutil.Exists(path + ".lock") {
		t.Fatal("lock file not removed")
	}
}

func TestWithLockPropagatesError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	boom := errors.New("boom")
	if err := fileutil.WithLock(path, func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestWithLockHeldElsewhere(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the lock timeout")
	}
	path := filepath.Join(t.TempDir(), "out.csv")
	other := flock.New(path + ".lock")
	if ok, err := other.TryLock(); err != nil || !ok {
		t.Fatalf("pre-lock: %v %v", ok, err)
	}
	defer other.Unlock()

	err := fileutil.WithLock(path, func() error {
		t.Fatal("callback must not run while lock is held")
		return nil
	})
	if err == nil {
		t.Fatal("expected lock contention error")
	}
}
