package testutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// MkdirTemp creates a temporary directory and registers a cleanup
// which removes it with all its contents.
func MkdirTemp(t *testing.T, dir, pattern string) string {
	t.Helper()
	tmpDir, err := os.MkdirTemp(dir, pattern)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = os.RemoveAll(tmpDir)
	})
	return tmpDir
}
