package config

import (
	"io/fs"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/wk-j/opencode-helix/internal/errors"
)

// Validation errors for configuration fields.
var (
	// ErrInvalidTheme indicates an unrecognized theme name.
	ErrInvalidTheme = errors.New("invalid theme")

	// ErrInvalidDuration indicates a timeout that is zero or negative.
	ErrInvalidDuration = errors.New("duration must be positive")

	// ErrInvalidValue indicates a field outside its accepted range.
	ErrInvalidValue = errors.New("invalid value")

	// ErrInvalidPrompt indicates an inline prompt without a name or template.
	ErrInvalidPrompt = errors.New("invalid prompt")
)

// FieldError reports which config key failed validation.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return e.Field + ": " + e.Err.Error()
	}
	return e.Field + ": " + e.Err.Error() + ": " + e.Value
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if !slices.Contains(Themes, strings.ToLower(cfg.Theme)) {
		errs = append(errs, &FieldError{Field: "theme", Value: cfg.Theme, Err: ErrInvalidTheme})
	}

	durations := []struct {
		field string
		value time.Duration
	}{
		{"probe_timeout", cfg.ProbeTimeout},
		{"discovery_timeout", cfg.DiscoveryTimeout},
		{"request_timeout", cfg.RequestTimeout},
	}
	for _, d := range durations {
		if d.value <= 0 {
			errs = append(errs, &FieldError{Field: d.field, Value: d.value.String(), Err: ErrInvalidDuration})
		}
	}

	if cfg.ProbeTimeout > 0 && cfg.DiscoveryTimeout > 0 && cfg.ProbeTimeout > cfg.DiscoveryTimeout {
		errs = append(errs, &FieldError{
			Field: "probe_timeout",
			Value: cfg.ProbeTimeout.String(),
			Err:   errors.Wrap(ErrInvalidValue, "must not exceed discovery_timeout"),
		})
	}

	if cfg.MaxProbes < 1 {
		errs = append(errs, &FieldError{Field: "max_probes", Err: errors.Wrap(ErrInvalidValue, "must be >= 1")})
	}

	if strings.TrimSpace(cfg.ServerCommand) == "" {
		errs = append(errs, &FieldError{Field: "server_command", Err: errors.Wrap(ErrInvalidValue, "must not be empty")})
	}

	for i, p := range cfg.Prompts {
		switch {
		case strings.TrimSpace(p.Name) == "":
			errs = append(errs, &FieldError{Field: promptField(i), Err: errors.Wrap(ErrInvalidPrompt, "name is required")})
		case strings.ContainsAny(p.Name, " \t\n"):
			errs = append(errs, &FieldError{Field: promptField(i), Value: p.Name, Err: errors.Wrap(ErrInvalidPrompt, "name must not contain whitespace")})
		case strings.TrimSpace(p.Prompt) == "":
			errs = append(errs, &FieldError{Field: promptField(i), Value: p.Name, Err: errors.Wrap(ErrInvalidPrompt, "prompt is required")})
		}
	}

	return errs
}

func promptField(i int) string {
	return "prompts[" + strconv.Itoa(i) + "]"
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
