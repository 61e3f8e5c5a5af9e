package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreText_ExactMatch(t *testing.T) {
	acc := ScoreText("INVOICE\nTotal: 42.00", "INVOICE Total: 42.00")

	assert.True(t, acc.ExactMatch)
	assert.Equal(t, 0.0, acc.WordErrorRate)
	assert.Equal(t, 0.0, acc.CharacterErrorRate)
}

func TestScoreText_Substitution(t *testing.T) {
	acc := ScoreText("hello word", "hello world")

	assert.False(t, acc.ExactMatch)
	assert.Equal(t, 0.5, acc.WordErrorRate)
	assert.Equal(t, 0.09, acc.CharacterErrorRate)
	assert.Equal(t, "hello world", acc.ExpectedText)
}

func TestScoreText_EmptyReference(t *testing.T) {
	assert.True(t, ScoreText("", "").ExactMatch)

	acc := ScoreText("noise", "")
	assert.Equal(t, 1.0, acc.WordErrorRate)
	assert.Equal(t, 1.0, acc.CharacterErrorRate)
}
