// Package uuid generates random identifiers for
// scratch paths and other throwaway names
package uuid

import (
	"fmt"
	"os"
	"path/filepath"

	google_uuid "github.com/google/uuid"
)

// MustUUID returns a random (version 4) UUID string.
// It panics if the system's randomness source fails.
func MustUUID() string {
	return google_uuid.New().String()
}

// TempPath returns a path under the system temp directory
// named <prefix>-<uuid>. Nothing is created.
func TempPath(prefix string) string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("%s-%s", prefix, MustUUID()))
}
