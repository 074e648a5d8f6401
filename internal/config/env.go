package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/joho/godotenv"
)

// envVarPattern matches ${VAR}. A bare $ is left alone so literal keys
// containing one survive.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z0-9_]+)\}`)

// ExpandEnv replaces ${VAR} with the environment variable's value.
// Example: api_key = "${OPENAI_API_KEY}" -> "sk-..."
func ExpandEnv(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Unset variables expand to the empty string
		return os.Getenv(match[2 : len(match)-1])
	})
}

// LoadDotEnv loads dir/.env into the process environment if the file
// exists. Variables that are already set are left alone. It reports whether
// a file was loaded.
func LoadDotEnv(dir string) (bool, error) {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err := godotenv.Load(path); err != nil {
		return false, &Error{Kind: KindRead, Path: path, Err: err}
	}
	return true, nil
}
