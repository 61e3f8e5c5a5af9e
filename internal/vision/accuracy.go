package vision

import (
	"strings"
	"unicode/utf8"

	"github.com/arbovm/levenshtein"
	"github.com/codycollier/wer"

	"go-vision-analyzer/pkg/models"
)

// ScoreText compares extracted text against the caller's expected text.
// Whitespace runs are collapsed before scoring so line breaks introduced by
// block joining do not count as errors.
func ScoreText(extracted, expected string) *models.TextAccuracy {
	hypWords := strings.Fields(extracted)
	refWords := strings.Fields(expected)

	acc := &models.TextAccuracy{
		ExpectedText: expected,
		ExactMatch:   strings.Join(hypWords, " ") == strings.Join(refWords, " "),
	}

	if len(refWords) == 0 {
		if len(hypWords) > 0 {
			acc.WordErrorRate = 1
			acc.CharacterErrorRate = 1
		}
		return acc
	}

	wordErrorRate, _ := wer.WER(refWords, hypWords)
	acc.WordErrorRate = Round2(wordErrorRate)

	ref := strings.Join(refWords, " ")
	hyp := strings.Join(hypWords, " ")
	acc.CharacterErrorRate = Round2(float64(levenshtein.Distance(ref, hyp)) / float64(utf8.RuneCountInString(ref)))
	return acc
}
