package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultModel is used when neither the file nor the command line names one.
	DefaultModel = "llama3"
	// DefaultBaseURL points at a local Ollama server.
	DefaultBaseURL = "http://localhost:11434/v1"
	// DefaultTimeoutSecs bounds the wait for the first response chunk.
	DefaultTimeoutSecs uint64 = 300

	dirName  = "ai-cli"
	fileName = "config.toml"
)

// FileConfig is the on-disk TOML document.
type FileConfig struct {
	Model         string   `toml:"model"`
	BaseURL       string   `toml:"base_url"`
	APIKey        *string  `toml:"api_key,omitempty"`
	DefaultPrompt *string  `toml:"default_prompt,omitempty"`
	Temperature   *float64 `toml:"temperature,omitempty"`
	TimeoutSecs   uint64   `toml:"timeout_secs"`
}

// Defaults returns the built-in configuration. Temperature is left unset so
// the server applies its own default.
func Defaults() FileConfig {
	return FileConfig{
		Model:       DefaultModel,
		BaseURL:     DefaultBaseURL,
		TimeoutSecs: DefaultTimeoutSecs,
	}
}

// DefaultDir returns ~/.config/ai-cli.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", &Error{Kind: KindRead, Err: fmt.Errorf("could not find home directory: %w", err)}
	}
	return filepath.Join(home, ".config", dirName), nil
}

// DefaultPath returns ~/.config/ai-cli/config.toml.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// LoadOrCreate reads the config file at path. If it does not exist, it is
// created with the serialized defaults and the defaults are returned. An
// existing file is never overwritten. Keys missing from the file keep their
// built-in defaults.
func LoadOrCreate(path string) (FileConfig, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		created, err := writeDefaults(path)
		if err != nil {
			return FileConfig{}, false, err
		}
		if created {
			return Defaults(), true, nil
		}
		// Someone else created it in the meantime.
		data, err = os.ReadFile(path)
		if err != nil {
			return FileConfig{}, false, &Error{Kind: KindRead, Path: path, Err: err}
		}
	} else if err != nil {
		return FileConfig{}, false, &Error{Kind: KindRead, Path: path, Err: err}
	}

	cfg, err := Parse(data)
	if err != nil {
		return FileConfig{}, false, &Error{Kind: KindParse, Path: path, Err: err}
	}
	return cfg, false, nil
}

// Parse decodes a TOML document on top of Defaults.
func Parse(data []byte) (FileConfig, error) {
	cfg := Defaults()
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

// Encode serializes cfg as TOML.
func Encode(cfg FileConfig) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeDefaults creates path exclusively. It reports false without error if
// the file already exists.
func writeDefaults(path string) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, &Error{Kind: KindWrite, Path: path, Err: fmt.Errorf("create config directory: %w", err)}
	}

	data, err := Encode(Defaults())
	if err != nil {
		return false, &Error{Kind: KindWrite, Path: path, Err: fmt.Errorf("serialize default config: %w", err)}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, &Error{Kind: KindWrite, Path: path, Err: err}
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return false, &Error{Kind: KindWrite, Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return false, &Error{Kind: KindWrite, Path: path, Err: err}
	}
	return true, nil
}
