package fileutil

import (
	"os"
)

// Exists returns whether the given path exists. Errors other than
// fs.ErrNotExist (e.g. permission errors on a parent directory) are
// treated as "does not exist" because the dynamic loader would not be
// able to use such a path either.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
