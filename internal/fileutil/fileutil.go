package fileutil

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofrs/flock"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// FormatSize renders a byte count with binary prefixes (1 KB = 1024 B),
// rounded to two decimals: 1536 -> "1.5 KB", 0 -> "0B".
func FormatSize(size int64) string {
	if size <= 0 {
		return "0B"
	}
	i := int(math.Floor(math.Log(float64(size)) / math.Log(1024)))
	i = min(max(i, 0), len(sizeUnits)-1)
	scaled := float64(size) / math.Pow(1024, float64(i))
	scaled = math.Round(scaled*100) / 100
	// Rounding can carry into the next unit (1023.999 KB -> 1024 KB).
	if scaled >= 1024 && i < len(sizeUnits)-1 {
		i++
		scaled = math.Round(float64(size)/math.Pow(1024, float64(i))*100) / 100
	}
	return strconv.FormatFloat(scaled, 'f', -1, 64) + " " + sizeUnits[i]
}

// Size returns the size of path in bytes.
func Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// WriteAtomic streams fill into a temp file next to path and renames it into
// place, so readers never observe a partial file. On error the temp file is
// removed and path is left untouched.
func WriteAtomic(path string, fill func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if err := fill(tmp); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// TempPath returns an unused path in the directory of path for writers that
// need a filename rather than an io.Writer. The caller renames or removes it.
func TempPath(path string) (string, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", err
	}
	name := tmp.Name()
	_ = tmp.Close()
	if err := os.Remove(name); err != nil {
		return "", err
	}
	return name, nil
}

// LockTimeout bounds how long WithLock waits for a competing writer.
const LockTimeout = 5 * time.Second

// WithLock runs fn while holding an advisory lock on path+".lock". The lock
// file is removed afterwards.
func WithLock(path string, fn func() error) error {
	lockPath := path + ".lock"
	lock := flock.New(lockPath)

	deadline := time.Now().Add(LockTimeout)
	for {
		locked, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("acquire lock %s: %w", lockPath, err)
		}
		if locked {
			break
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("acquire lock %s: held by another process", lockPath)
		}
		time.Sleep(50 * time.Millisecond)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lockPath)
	}()
	return fn()
}
