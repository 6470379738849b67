package file

import (
	"errors"
	"os"
	"path/filepath"
)

// DefaultPermissionOctal is the default file and folder permission octal used
// throughout the bot
const DefaultPermissionOctal os.FileMode = 0o770

var errEmptyPath = errors.New("file path is empty")

// Write writes selected data to a file or returns an error if it fails. This
// func also ensures that all files are set to this permission (only rw access
// for the running user and the group the user is a member of)
func Write(file string, data []byte) error {
	w, err := Writer(file)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	return err
}

// Writer creates a writer to a file or returns an error if it fails. The
// parent directory is created when missing and the file is truncated
func Writer(file string) (*os.File, error) {
	if file == "" {
		return nil, errEmptyPath
	}
	if err := os.MkdirAll(filepath.Dir(file), DefaultPermissionOctal); err != nil {
		return nil, err
	}
	return os.OpenFile(file, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, DefaultPermissionOctal)
}

// Exists returns whether or not a file or path exists
func Exists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}
