package shared

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

var (
	dotenvLoadOnce sync.Once
	dotenvLoaded   string
)

// LoadDotEnv loads the nearest .env file from the working directory or any
// parent. Variables already set in the process environment win. It returns
// the file's path when it set at least one variable, and "" otherwise.
func LoadDotEnv() string {
	dotenvLoadOnce.Do(func() {
		cwd, err := os.Getwd()
		if err != nil {
			return
		}
		dotenvLoaded = loadNearestDotEnv(cwd)
	})
	return dotenvLoaded
}

func loadNearestDotEnv(start string) string {
	candidate, ok := findDotEnv(start)
	if !ok || !loadDotEnvFile(candidate) {
		return ""
	}
	return candidate
}

func findDotEnv(start string) (string, bool) {
	current := start
	for {
		candidate := filepath.Join(current, ".env")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", false
		}
		current = parent
	}
}

// loadDotEnvFile reports whether any variable was set from path.
func loadDotEnvFile(path string) bool {
	values, err := godotenv.Read(path)
	if err != nil {
		return false
	}

	loadedAny := false
	for key, value := range values {
		if _, alreadySet := os.LookupEnv(key); alreadySet {
			continue
		}
		if setErr := os.Setenv(key, value); setErr == nil {
			loadedAny = true
		}
	}
	return loadedAny
}

func firstNonEmptyEnv(keys ...string) string {
	for _, key := range keys {
		value := strings.TrimSpace(os.Getenv(key))
		if value != "" {
			return value
		}
	}
	return ""
}
