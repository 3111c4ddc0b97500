package io

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrFileExists is returned when an output file is present and overwriting was not requested
	ErrFileExists = errors.New("file exists")
	// ErrNotFound is returned when a required input file is missing
	ErrNotFound = os.ErrNotExist
)

// CheckOutput reports whether path may be written without touching anything.
// It returns ErrFileExists when path is present and overwrite is not set.
func CheckOutput(path string, overwrite bool) (exists bool, err error) {
	_, err = os.Stat(path)
	switch {
	case err == nil && !overwrite:
		return true, fmt.Errorf("[CheckOutput] %s: %w (set overwrite to replace it)", path, ErrFileExists)
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("[CheckOutput] %s: %w", path, err)
	}
}

// PrepareOutput makes sure the directory for path exists and that path may be written
func PrepareOutput(path string, overwrite bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("[PrepareOutput] failed to create directory for %s: %w", path, err)
	}

	exists, err := CheckOutput(path, overwrite)
	if err != nil {
		return err
	}
	if exists {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("[PrepareOutput] failed to remove %s: %w", path, err)
		}
	}

	return nil
}

// RequireFiles checks that every input exists before any work starts
func RequireFiles(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("[RequireFiles] missing input %s: %w", p, err)
		}
	}

	return nil
}
