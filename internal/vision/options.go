package vision

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "go-vision-analyzer/internal/errors"
)

// Option keys understood by the adapters
const (
	OptConfidenceThreshold = "confidence_threshold"
	OptMaxObjects          = "max_objects"
	OptMaxResults          = "max_results"
	OptLanguage            = "language"
	OptReturnLandmarks     = "return_landmarks"
	OptExpectedText        = "expected_text"
)

// Defaults applied when a caller leaves an option out
const (
	DefaultConfidenceThreshold = 0.5
	DefaultMaxObjects          = 10
	DefaultMaxResults          = 10
	DefaultLanguage            = "en"

	// MaxCap bounds max_objects and max_results
	MaxCap = 1000
)

// Options is the free-form, operation-specific options map of a request.
// Values usually come from decoded JSON, so the getters accept float64,
// integer, json.Number, bool and string encodings.
type Options map[string]interface{}

// Float returns the numeric value for key or def
func (o Options) Float(key string, def float64) float64 {
	if f, ok := o.number(key); ok {
		return f
	}
	return def
}

func (o Options) number(key string) (float64, bool) {
	v, ok := o[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f, true
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// Int returns the integer value for key or def. NaN and values outside
// the int range yield def.
func (o Options) Int(key string, def int) int {
	f, ok := o.number(key)
	if !ok || math.IsNaN(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return def
	}
	return int(f)
}

// Bool returns the boolean value for key or def. The strings "true",
// "1" and "yes" are true.
func (o Options) Bool(key string, def bool) bool {
	v, ok := o[key]
	if !ok || v == nil {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	case float64:
		return b != 0
	case int:
		return b != 0
	}
	return def
}

// String returns the string value for key or def
func (o Options) String(key, def string) string {
	if s, ok := o[key].(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return def
}

// Has reports whether the caller supplied key
func (o Options) Has(key string) bool {
	v, ok := o[key]
	return ok && v != nil
}

// Language returns the requested language hint
func (o Options) Language() string {
	return o.String(OptLanguage, DefaultLanguage)
}

// ReturnLandmarks reports whether face landmarks were requested (default true)
func (o Options) ReturnLandmarks() bool {
	return o.Bool(OptReturnLandmarks, true)
}

// ConfidenceThreshold returns the caller threshold on the 0–1 scale.
// Values above 1 are read as percentages, so 50 and 0.5 are equivalent.
func (o Options) ConfidenceThreshold() float64 {
	t := o.Float(OptConfidenceThreshold, DefaultConfidenceThreshold)
	if t > 1 {
		t /= 100
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return t
}

// MaxObjects returns the object cap. Zero is honored; see capped.
func (o Options) MaxObjects() int {
	return o.capped(OptMaxObjects, DefaultMaxObjects)
}

// MaxResults returns the label cap. Zero is honored; see capped.
func (o Options) MaxResults() int {
	return o.capped(OptMaxResults, DefaultMaxResults)
}

// MaxResultsOr returns the caller's max_results, or def when none was given
func (o Options) MaxResultsOr(def int) int {
	if o.Has(OptMaxResults) {
		return o.MaxResults()
	}
	return def
}

// capped reads a list cap clamped to [0, MaxCap]. Unreadable values and
// NaN give def.
func (o Options) capped(key string, def int) int {
	f, ok := o.number(key)
	switch {
	case !ok || math.IsNaN(f):
		return def
	case f < 0:
		return 0
	case f > MaxCap:
		return MaxCap
	}
	return int(f)
}

// Validate rejects list caps that are not whole numbers in [0, MaxCap]
func (o Options) Validate() error {
	for _, key := range []string{OptMaxObjects, OptMaxResults} {
		if !o.Has(key) {
			continue
		}
		f, ok := o.number(key)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > MaxCap || f != math.Trunc(f) {
			return apperrors.NewValidationError(
				fmt.Sprintf("Option %s must be a whole number between 0 and %d", key, MaxCap), nil)
		}
	}
	return nil
}
