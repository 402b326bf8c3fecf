// Package validation checks files the application reads secrets from.
package validation

import (
	"fmt"
	"os"
)

// IsValidFilePermissions rejects modes that grant any access to others.
func IsValidFilePermissions(mode os.FileMode) error {
	if mode&0007 != 0 {
		return fmt.Errorf("file permissions are too permissive: %s. Recommended 0600 or 0640", mode.String())
	}
	return nil
}

// CheckSecretFile verifies that path is a readable regular file whose mode
// does not expose it to other users.
func CheckSecretFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking file %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", path)
	}
	return IsValidFilePermissions(info.Mode().Perm())
}
