package storage

import (
	"os"
	"path/filepath"
)

const appDir = ".mipo"

// DefaultStoragePath returns the default storage location for mipo
// Platform-specific paths:
//   - macOS/Linux: ~/.mipo
//   - Windows: %USERPROFILE%\.mipo
func DefaultStoragePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, appDir), nil
}
