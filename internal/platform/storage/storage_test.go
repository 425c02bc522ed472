// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/biblio/internal/platform/storage"
)

/*
TestLocalDisk_SaveAndRemove covers the write/undo lifecycle used by
upload compensation.
*/
func TestLocalDisk_SaveAndRemove(t *testing.T) {
	disk, err := storage.NewLocalDisk(t.TempDir())
	require.NoError(t, err)

	// 1. Save a file and verify its generated path
	path, err := disk.Save("covers", "jpg", strings.NewReader("image-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "covers/"))
	assert.True(t, strings.HasSuffix(path, ".jpg"))

	// 2. Remove it (the compensation step)
	require.NoError(t, disk.Remove(path))

	// 3. Removing again must be a no-op, not an error
	assert.NoError(t, disk.Remove(path))
}

/*
TestLocalDisk_UniqueNames ensures two uploads of the same file never collide.
*/
func TestLocalDisk_UniqueNames(t *testing.T) {
	disk, err := storage.NewLocalDisk(t.TempDir())
	require.NoError(t, err)

	first, err := disk.Save("books", ".pdf", strings.NewReader("a"))
	require.NoError(t, err)

	second, err := disk.Save("books", ".pdf", strings.NewReader("a"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

/*
TestLocalDisk_TimeSortableNames ensures generated file names are UUIDv7, so
directory listings and backups stay in upload order.
*/
func TestLocalDisk_TimeSortableNames(t *testing.T) {
	disk, err := storage.NewLocalDisk(t.TempDir())
	require.NoError(t, err)

	path, err := disk.Save("covers", ".png", strings.NewReader("x"))
	require.NoError(t, err)

	name := strings.TrimSuffix(filepath.Base(path), ".png")
	parsed, err := uuid.Parse(name)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

/*
TestLocalDisk_RejectsTraversal ensures paths cannot escape the disk root.
*/
func TestLocalDisk_RejectsTraversal(t *testing.T) {
	root := t.TempDir()
	disk, err := storage.NewLocalDisk(root)
	require.NoError(t, err)

	_, err = disk.Save("../outside", "jpg", strings.NewReader("x"))
	assert.Error(t, err)

	assert.Error(t, disk.Remove("../etc/passwd"))
	assert.Error(t, disk.Remove(filepath.Join(string(os.PathSeparator), "etc", "passwd")))
}
