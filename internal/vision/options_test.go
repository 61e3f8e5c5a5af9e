package vision

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "go-vision-analyzer/internal/errors"
)

func TestOptions_Defaults(t *testing.T) {
	opts := Options{}

	assert.Equal(t, DefaultConfidenceThreshold, opts.ConfidenceThreshold())
	assert.Equal(t, DefaultMaxObjects, opts.MaxObjects())
	assert.Equal(t, DefaultMaxResults, opts.MaxResults())
	assert.Equal(t, DefaultLanguage, opts.Language())
	assert.True(t, opts.ReturnLandmarks())
}

func TestOptions_NumericEncodings(t *testing.T) {
	cases := []Options{
		{OptMaxObjects: 3},
		{OptMaxObjects: 3.0},
		{OptMaxObjects: int64(3)},
		{OptMaxObjects: json.Number("3")},
		{OptMaxObjects: "3"},
	}

	for _, opts := range cases {
		assert.Equal(t, 3, opts.MaxObjects(), "%#v", opts[OptMaxObjects])
	}
}

func TestOptions_ThresholdScales(t *testing.T) {
	assert.Equal(t, 0.7, Options{OptConfidenceThreshold: 0.7}.ConfidenceThreshold())
	assert.Equal(t, 0.7, Options{OptConfidenceThreshold: 70}.ConfidenceThreshold())
	assert.Equal(t, 1.0, Options{OptConfidenceThreshold: 250}.ConfidenceThreshold())
	assert.Equal(t, 0.0, Options{OptConfidenceThreshold: -1}.ConfidenceThreshold())
}

func TestOptions_CapsAreClamped(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  int
	}{
		{name: "zero is honored", value: 0, want: 0},
		{name: "negative clamps to zero", value: -4, want: 0},
		{name: "huge clamps to max", value: 1e19, want: MaxCap},
		{name: "infinity clamps to max", value: math.Inf(1), want: MaxCap},
		{name: "nan uses default", value: "NaN", want: DefaultMaxObjects},
		{name: "garbage uses default", value: "lots", want: DefaultMaxObjects},
		{name: "fraction truncates", value: 2.9, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Options{OptMaxObjects: tt.value}.MaxObjects())
			assert.Equal(t, tt.want, Options{OptMaxResults: tt.value}.MaxResults())
		})
	}
}

func TestOptions_IntOutOfRangeUsesDefault(t *testing.T) {
	assert.Equal(t, 7, Options{"n": 1e19}.Int("n", 7))
	assert.Equal(t, 7, Options{"n": "NaN"}.Int("n", 7))
	assert.Equal(t, 3, Options{"n": 3.5}.Int("n", 7))
}

func TestOptions_Validate(t *testing.T) {
	assert.NoError(t, Options{}.Validate())
	assert.NoError(t, Options{OptMaxObjects: 0, OptMaxResults: float64(MaxCap)}.Validate())
	assert.NoError(t, Options{OptMaxObjects: "5", OptConfidenceThreshold: 70}.Validate())

	for _, bad := range []interface{}{1e19, -1, 2.5, "NaN", "lots", math.Inf(1), true} {
		err := Options{OptMaxObjects: bad}.Validate()
		require.Error(t, err, "%#v", bad)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		assert.Contains(t, err.Error(), OptMaxObjects)
	}
	assert.Error(t, Options{OptMaxResults: MaxCap + 1}.Validate())
}

func TestOptions_Bool(t *testing.T) {
	assert.False(t, Options{OptReturnLandmarks: false}.ReturnLandmarks())
	assert.False(t, Options{OptReturnLandmarks: "no"}.ReturnLandmarks())
	assert.True(t, Options{OptReturnLandmarks: "garbage"}.ReturnLandmarks())
}

func TestOptions_BlankStringUsesDefault(t *testing.T) {
	assert.Equal(t, "en", Options{OptLanguage: "  "}.Language())
	assert.Equal(t, "de", Options{OptLanguage: "de"}.Language())
}

func TestOptions_MaxResultsOr(t *testing.T) {
	assert.Equal(t, 20, Options{}.MaxResultsOr(20))
	assert.Equal(t, 5, Options{OptMaxResults: 5}.MaxResultsOr(20))
}
