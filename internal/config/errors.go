package config

import "fmt"

// Kind classifies configuration failures.
type Kind int

const (
	KindRead Kind = iota + 1
	KindParse
	KindWrite
	KindRange
)

func (k Kind) String() string {
	switch k {
	case KindRead:
		return "read"
	case KindParse:
		return "parse"
	case KindWrite:
		return "write"
	case KindRange:
		return "range"
	default:
		return "unknown"
	}
}

// Error is returned for any problem with the configuration file or the
// resolved values.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindRange:
		return fmt.Sprintf("invalid config: %v", e.Err)
	case e.Kind == KindParse:
		return fmt.Sprintf("failed to parse config file %s as TOML: %v", e.Path, e.Err)
	case e.Path != "":
		return fmt.Sprintf("config file %s: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("config: %v", e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// RangeError reports a numeric setting outside its accepted interval.
type RangeError struct {
	Field    string
	Value    float64
	Min, Max float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s must be between %.1f and %.1f, got: %v", e.Field, e.Min, e.Max, e.Value)
}
