package config

import (
	"strings"
	"time"
)

const (
	MinTemperature = 0.0
	MaxTemperature = 2.0
)

// Overrides are the values supplied on the command line. Nil means "not
// given".
type Overrides struct {
	Model       *string
	BaseURL     *string
	APIKey      *string
	Prompt      *string
	Temperature *float64
	TimeoutSecs *uint64
}

// Effective is the configuration used for one invocation. It is built once
// by Resolve and not modified afterwards.
type Effective struct {
	Model   string
	BaseURL string
	// APIKey is empty when no credential is configured.
	APIKey string
	// Temperature is nil when neither source sets it.
	Temperature *float64
	// FirstChunkTimeout of zero disables the bound.
	FirstChunkTimeout time.Duration
	// Prompt is the --prompt value or, failing that, default_prompt.
	Prompt *string
}

// HasAPIKey reports whether a credential is configured.
func (e Effective) HasAPIKey() bool {
	return e.APIKey != ""
}

// ValidateTemperature checks t against the inclusive range [0.0, 2.0].
func ValidateTemperature(t float64) error {
	// Written so that NaN fails as well.
	if !(t >= MinTemperature && t <= MaxTemperature) {
		return &RangeError{Field: "temperature", Value: t, Min: MinTemperature, Max: MaxTemperature}
	}
	return nil
}

// Resolve merges file with the command-line overrides. Precedence is
// override, then file, then the built-in default already folded into file by
// Parse. A command-line temperature is validated; otherwise a file
// temperature is validated on its own.
func Resolve(file FileConfig, o Overrides) (Effective, error) {
	eff := Effective{
		Model:             file.Model,
		BaseURL:           file.BaseURL,
		FirstChunkTimeout: time.Duration(file.TimeoutSecs) * time.Second,
	}
	if eff.Model == "" {
		eff.Model = DefaultModel
	}
	if eff.BaseURL == "" {
		eff.BaseURL = DefaultBaseURL
	}
	if file.APIKey != nil {
		eff.APIKey = ExpandEnv(strings.TrimSpace(*file.APIKey))
	}
	if file.DefaultPrompt != nil {
		p := *file.DefaultPrompt
		eff.Prompt = &p
	}

	if o.Model != nil {
		eff.Model = *o.Model
	}
	if o.BaseURL != nil {
		eff.BaseURL = *o.BaseURL
	}
	if o.APIKey != nil {
		eff.APIKey = *o.APIKey
	}
	if o.Prompt != nil {
		p := *o.Prompt
		eff.Prompt = &p
	}
	if o.TimeoutSecs != nil {
		eff.FirstChunkTimeout = time.Duration(*o.TimeoutSecs) * time.Second
	}

	switch {
	case o.Temperature != nil:
		t := *o.Temperature
		if err := ValidateTemperature(t); err != nil {
			return Effective{}, &Error{Kind: KindRange, Err: err}
		}
		eff.Temperature = &t
	case file.Temperature != nil:
		t := *file.Temperature
		if err := ValidateTemperature(t); err != nil {
			return Effective{}, &Error{Kind: KindRange, Err: err}
		}
		eff.Temperature = &t
	}

	return eff, nil
}
