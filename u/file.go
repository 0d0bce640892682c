package u

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func lstat(path string) os.FileInfo {
	st, err := os.Lstat(path)
	if err != nil {
		return nil
	}
	return st
}

// FileExists returns true if path is a regular file
func FileExists(path string) bool {
	st := lstat(path)
	return st != nil && st.Mode().IsRegular()
}

func DirExists(path string) bool {
	st := lstat(path)
	return st != nil && st.IsDir()
}

// FileSize returns -1 if path doesn't exist
func FileSize(path string) int64 {
	if st := lstat(path); st != nil {
		return st.Size()
	}
	return -1
}

// ExpandTildeInPath replaces leading "~" with user's home directory
func ExpandTildeInPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// FormatSize formats a number of bytes e.g. "1.24 kB"
func FormatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d bytes", n)
	}
	units := []string{"kB", "MB", "GB", "TB"}
	v := float64(n) / unit
	i := 0
	for v >= unit && i < len(units)-1 {
		v /= unit
		i++
	}
	s := strings.TrimSuffix(fmt.Sprintf("%.2f", v), ".00")
	return s + " " + units[i]
}
