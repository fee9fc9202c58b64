package apiclient

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultTokenFile is where the command line keeps its visitor token,
// under the user's config directory.
func DefaultTokenFile() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "interview-prep", "visitor-token"), nil
}

// LoadVisitorToken reads a token saved by SaveVisitorToken. A missing file
// reads as an empty token.
func LoadVisitorToken(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read visitor token: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func SaveVisitorToken(path, token string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write visitor token: %w", err)
	}
	return nil
}
