package env

import (
	"os"
	"path/filepath"
)

// DefaultVendorDir is the vendor root used when none is given, relative to
// the working directory.
const DefaultVendorDir = "vendor"

// VendorDir returns the absolute vendor root. An empty dir selects
// DefaultVendorDir. The directory is not required to exist yet.
func VendorDir(dir string) (string, error) {
	if dir == "" {
		dir = DefaultVendorDir
	}
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir), nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, dir), nil
}
