// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/danielhkuo/syncup/auth"
)

// LoadOrCreateUserID returns the viewer id stored at path, minting and
// saving a new UUID the first time. The same id is reused for every event.
func LoadOrCreateUserID(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		id := strings.TrimSpace(string(data))
		if auth.ValidateUserID(id) == nil {
			return id, nil
		}
		// Unreadable ids are replaced rather than sent to the server
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to read user id: %w", err)
	}

	id := uuid.NewString()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("failed to create identity dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("failed to save user id: %w", err)
	}
	return id, nil
}
