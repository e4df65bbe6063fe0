package analytics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DefaultDevicePath is where the device ID is kept between runs.
const DefaultDevicePath = "~/.flappy/device_id"

// DeviceID returns the device ID stored at path, creating and saving a new
// random one when the file is missing or unreadable as a UUID.
func DeviceID(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("analytics: cannot expand home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}

	if data, err := os.ReadFile(path); err == nil {
		if id, err := uuid.Parse(strings.TrimSpace(string(data))); err == nil {
			return id.String(), nil
		}
	}

	id := uuid.NewString()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return id, fmt.Errorf("analytics: cannot create directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return id, fmt.Errorf("analytics: cannot save device id: %w", err)
	}
	return id, nil
}
