// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package storage provides the public file disk used for cover images,
book PDFs, and category artwork.

Core Responsibilities:

  - Persistence: Streams uploads onto the disk under unique names.
  - Compensation: Removal is cheap and idempotent so callers can undo a
    write when a later step of their workflow fails.
  - Addressing: Stored paths are disk-relative; the HTTP layer prepends
    the public base URL when rendering.

The [Store] interface keeps the service layer testable without touching
the real filesystem.
*/
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/taibuivan/biblio/pkg/uuid"
)

// Store abstracts a writable public disk.
type Store interface {
	// Save streams content to a new file under dir with the given extension
	// and returns the disk-relative path (e.g. "covers/0192ab...-3f.jpg").
	Save(dir string, extension string, content io.Reader) (string, error)

	// Remove deletes a previously saved file. Removing a path that does
	// not exist is not an error.
	Remove(relativePath string) error
}

// LocalDisk is a [Store] backed by a directory on the local filesystem.
type LocalDisk struct {
	root string
}

// NewLocalDisk creates the root directory if needed and returns the disk.
func NewLocalDisk(root string) (*LocalDisk, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: failed to create root %s: %w", root, err)
	}
	return &LocalDisk{root: root}, nil
}

// Save implements [Store].
//
// File names are generated, never taken from the client, so uploads can
// never collide with or overwrite each other.
func (disk *LocalDisk) Save(dir string, extension string, content io.Reader) (string, error) {
	cleanDir := filepath.Clean(dir)
	if strings.HasPrefix(cleanDir, "..") || filepath.IsAbs(cleanDir) {
		return "", fmt.Errorf("storage: invalid target directory %q", dir)
	}

	if err := os.MkdirAll(filepath.Join(disk.root, cleanDir), 0o755); err != nil {
		return "", fmt.Errorf("storage: failed to create directory %s: %w", cleanDir, err)
	}

	// Generated name: time-sortable UUID plus the original extension.
	fileName := uuid.New() + normalizeExtension(extension)
	relativePath := filepath.ToSlash(filepath.Join(cleanDir, fileName))
	absolutePath := filepath.Join(disk.root, cleanDir, fileName)

	destination, err := os.Create(absolutePath)
	if err != nil {
		return "", fmt.Errorf("storage: failed to create file: %w", err)
	}

	if _, err := io.Copy(destination, content); err != nil {
		_ = destination.Close()
		_ = os.Remove(absolutePath)
		return "", fmt.Errorf("storage: failed to write file: %w", err)
	}

	if err := destination.Close(); err != nil {
		_ = os.Remove(absolutePath)
		return "", fmt.Errorf("storage: failed to flush file: %w", err)
	}

	return relativePath, nil
}

// Remove implements [Store].
func (disk *LocalDisk) Remove(relativePath string) error {
	if strings.TrimSpace(relativePath) == "" {
		return nil
	}

	cleanPath := filepath.Clean(relativePath)
	if strings.HasPrefix(cleanPath, "..") || filepath.IsAbs(cleanPath) {
		return fmt.Errorf("storage: invalid path %q", relativePath)
	}

	err := os.Remove(filepath.Join(disk.root, cleanPath))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: failed to remove %s: %w", cleanPath, err)
	}
	return nil
}

// normalizeExtension lowercases an extension and ensures a leading dot.
func normalizeExtension(extension string) string {
	ext := strings.ToLower(strings.TrimSpace(extension))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
