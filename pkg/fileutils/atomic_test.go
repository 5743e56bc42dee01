// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package fileutils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWriteFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		perm os.FileMode
	}{
		{name: "profile config", data: []byte("profiles:\n  default:\n    vendor_id: M1\n"), perm: 0o600},
		{name: "empty file", data: []byte{}, perm: 0o600},
		{name: "readable by group", data: []byte(strings.Repeat("x", 4096)), perm: 0o640},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			target := filepath.Join(t.TempDir(), "config.yaml")

			require.NoError(t, AtomicWriteFile(target, tt.data, tt.perm))

			content, err := os.ReadFile(target)
			require.NoError(t, err)
			assert.Equal(t, tt.data, content)

			info, err := os.Stat(target)
			require.NoError(t, err)
			assert.Equal(t, tt.perm, info.Mode().Perm())
		})
	}
}

func TestAtomicWriteFile_ReplacesAndCleansUp(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "config.yaml")

	require.NoError(t, AtomicWriteFile(target, []byte("profiles: {a: {}, b: {}, c: {}}\n"), 0o600))
	require.NoError(t, AtomicWriteFile(target, []byte("profiles: {}\n"), 0o600))

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "profiles: {}\n", string(content))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "config.yaml", entries[0].Name())
}

func TestAtomicWriteFile_MissingDirectory(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), "missing", "config.yaml")
	err := AtomicWriteFile(target, []byte("profiles: {}\n"), 0o600)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create temp file")
}
