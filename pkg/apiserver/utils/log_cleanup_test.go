package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveExpiredLogs(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 7, 25, 12, 0, 0, 0, time.UTC)

	expired := []string{
		"kubemin-workload.host.ops.log.INFO.20250701-080000.101",
		"kubemin-workload.host.ops.log.ERROR.20250710-235959.102",
	}
	kept := []string{
		"kubemin-workload.host.ops.log.WARNING.20250724-100000.103",
		"kubemin-workload.INFO",
		"notes.txt",
	}
	for _, name := range append(append([]string{}, expired...), kept...) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "a.b.c.log.INFO.20200101-000000.1"), 0o755))

	deleted, err := RemoveExpiredLogs(dir, now, 7*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	for _, name := range expired {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.True(t, os.IsNotExist(err), name)
	}
	for _, name := range kept {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
	_, err = os.Stat(filepath.Join(dir, "a.b.c.log.INFO.20200101-000000.1"))
	assert.NoError(t, err)
}

func TestRemoveExpiredLogsMissingDir(t *testing.T) {
	_, err := RemoveExpiredLogs(filepath.Join(t.TempDir(), "missing"), time.Now(), time.Hour)
	require.Error(t, err)
}
