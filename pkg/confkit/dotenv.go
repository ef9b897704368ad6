package confkit

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

const maxParentLevels = 8

var dotenvOnce sync.Once

// LoadDotenvOnce loads .env files once per process. ENV_FILE names a single
// file; otherwise every .env from the working directory up to the project root
// is loaded, nearest first. Existing variables win unless DOTENV_OVERLOAD=1.
// NO_DOTENV=1 disables loading.
func LoadDotenvOnce() {
	dotenvOnce.Do(loadDotenv)
}

func loadDotenv() {
	if os.Getenv("NO_DOTENV") == "1" {
		return
	}

	overload := os.Getenv("DOTENV_OVERLOAD") == "1"
	load := func(path string) {
		if !fileExists(path) {
			return
		}
		if overload {
			_ = godotenv.Overload(path)
		} else {
			_ = godotenv.Load(path)
		}
	}

	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		load(envFile)
		return
	}

	wd, err := os.Getwd()
	if err != nil {
		load(".env")
		return
	}
	walkToRoot(wd, func(dir string) bool {
		load(filepath.Join(dir, ".env"))
		return isProjectRoot(dir)
	})
}

// walkToRoot calls visit for dir and its parents until visit returns true or
// the filesystem root is reached.
func walkToRoot(dir string, visit func(string) bool) {
	for i := 0; i < maxParentLevels; i++ {
		if visit(dir) {
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func isProjectRoot(dir string) bool {
	return fileExists(filepath.Join(dir, "go.mod")) || fileExists(filepath.Join(dir, ".git"))
}

func fileExists(p string) bool {
	if p == "" {
		return false
	}
	_, err := os.Stat(p)
	return err == nil
}
