package errors

import (
	"math"
	"strings"
)

// ValidateCount checks an item count. Zero is a valid, empty domain.
func ValidateCount(n int) error {
	if n < 0 {
		return New(ErrCodeInvalidCount, "item count must be >= 0, got %d", n)
	}
	return nil
}

// ValidateSize checks the size reported for item index.
// Sizes must be finite and strictly positive.
func ValidateSize(index int, size float64) error {
	if math.IsNaN(size) || math.IsInf(size, 0) || size <= 0 {
		return New(ErrCodeInvalidSize, "size of item %d must be > 0, got %v", index, size)
	}
	return nil
}

// ValidateViewport checks a viewport size.
func ValidateViewport(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return New(ErrCodeInvalidViewport, "viewport size must be > 0, got %v", v)
	}
	return nil
}

// ValidateOverscan checks an overscan count. No upper bound is imposed;
// the engine clamps the expanded range to the item domain.
func ValidateOverscan(n int) error {
	if n < 0 {
		return New(ErrCodeInvalidOverscan, "overscan must be >= 0, got %d", n)
	}
	return nil
}

// ValidateFormat checks that format is one of allowed (case-insensitive).
func ValidateFormat(format string, allowed ...string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	for _, a := range allowed {
		if strings.EqualFold(format, a) {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
}

// ValidateLocale checks a BCP 47 language tag for obvious garbage.
// Full parsing is left to golang.org/x/text/language.
func ValidateLocale(tag string) error {
	if tag == "" {
		return New(ErrCodeInvalidConfig, "locale cannot be empty")
	}
	if len(tag) > 35 {
		return New(ErrCodeInvalidConfig, "locale too long (max 35 characters)")
	}
	for _, r := range tag {
		ok := r == '-' || r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !ok {
			return New(ErrCodeInvalidConfig, "locale contains invalid character %q", r)
		}
	}
	return nil
}
