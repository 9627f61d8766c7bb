package logging

import (
	"log/slog"
	"strings"
)

// secretKeyPatterns are substrings of attribute keys whose values are masked.
// Matching is case-insensitive.
var secretKeyPatterns = []string{
	"PASSWORD",
	"TOKEN",
	"SECRET",
	"AUTH",
	"CREDENTIAL",
	"API_KEY",
}

// tokenPrefixes mark values that are masked regardless of their key.
var tokenPrefixes = []string{
	"ghp_",
	"gho_",
	"sk-",
	"AKIA",
	"xoxb-",
	"xoxp-",
	"Basic ",
	"Bearer ",
}

// MaskValue masks a sensitive string, keeping only the last four characters
// of values longer than four.
func MaskValue(value string) string {
	if len(value) <= 4 {
		return "********"
	}
	return "****" + value[len(value)-4:]
}

// ShouldMask reports whether key names a sensitive value.
func ShouldMask(key string) bool {
	upper := strings.ToUpper(key)
	for _, p := range secretKeyPatterns {
		if strings.Contains(upper, p) {
			return true
		}
	}
	return false
}

// HasTokenPrefix reports whether value starts with a known credential prefix.
func HasTokenPrefix(value string) bool {
	for _, p := range tokenPrefixes {
		if strings.HasPrefix(value, p) {
			return true
		}
	}
	return false
}

// redactAttr is usable as slog.HandlerOptions.ReplaceAttr.
func redactAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		return a
	}
	if ShouldMask(a.Key) {
		return slog.String(a.Key, MaskValue(a.Value.String()))
	}
	if a.Value.Kind() == slog.KindString && HasTokenPrefix(a.Value.String()) {
		return slog.String(a.Key, MaskValue(a.Value.String()))
	}
	return a
}
