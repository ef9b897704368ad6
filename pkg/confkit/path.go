package confkit

import (
	"fmt"
	"os"
	"path/filepath"
)

// ProjectRoot walks up from the working directory to the first directory that
// holds go.mod or .git. It returns the working directory when none is found.
func ProjectRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return ".", fmt.Errorf("getwd: %w", err)
	}
	root := wd
	walkToRoot(wd, func(dir string) bool {
		if isProjectRoot(dir) {
			root = dir
			return true
		}
		return false
	})
	return root, nil
}

// ProjectPath joins the project root with rel.
func ProjectPath(rel string) (string, error) {
	root, err := ProjectRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, rel), nil
}

// MustProjectPath returns ProjectPath(rel) and panics on failure.
func MustProjectPath(rel string) string {
	p, err := ProjectPath(rel)
	if err != nil {
		panic(err)
	}
	return p
}
