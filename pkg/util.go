package pkg

import (
	"fmt"
	"os"
)

// DirExists reports whether path is an existing directory. A path that exists
// but is a regular file is an error.
func DirExists(path string) (bool, error) {
	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if !stat.IsDir() {
		return false, fmt.Errorf("%s is not a directory", path)
	}
	return true, nil
}
