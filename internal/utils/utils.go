package utils

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

var loadOnce sync.Once

// loadDotEnv reads .env once per process. A missing file is fine; variables
// already set in the environment win.
func loadDotEnv() {
	loadOnce.Do(func() {
		_ = godotenv.Load()
	})
}

func LoadEnv(requiredVars []string) (map[string]string, error) {
	loadDotEnv()

	envVars := make(map[string]string)

	for _, key := range requiredVars {
		value := os.Getenv(key)
		if value == "" {
			return nil, fmt.Errorf("missing required environment variable: %s", key)
		}
		envVars[key] = value
	}

	return envVars, nil
}

// Getenv returns the trimmed value of key, or fallback when it is unset or
// blank.
func Getenv(key, fallback string) string {
	loadDotEnv()

	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

// SplitList splits a comma separated value, dropping empty items.
func SplitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
