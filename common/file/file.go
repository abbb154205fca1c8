package file

import (
	"errors"
	"os"
	"path/filepath"
)

const (
	// DefaultPermissionOctal is the permission used for files and folders
	// created by the backtester
	DefaultPermissionOctal os.FileMode = 0o770
)

var errEmptyPath = errors.New("empty file path")

// Write writes selected data to a file, creating any missing parent
// directories
func Write(file string, data []byte) error {
	if file == "" {
		return errEmptyPath
	}
	basePath := filepath.Dir(file)
	if !Exists(basePath) {
		if err := os.MkdirAll(basePath, DefaultPermissionOctal); err != nil {
			return err
		}
	}
	return os.WriteFile(file, data, DefaultPermissionOctal)
}

// Exists returns whether or not a file or path exists
func Exists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}
