package retrieval

import (
	"strings"

	"github.com/nextmile/chatbot/internal/corpus"
)

// Score rates one indexed record against a tokenized query. It is a
// pure function: same inputs and weights always produce the same score,
// bounded by [0, cfg.MaxScore()].
//
// Three independent heuristics are combined linearly:
//  1. keyword overlap: shared vocabulary between query and record,
//     irrespective of order;
//  2. exact substring: query tokens that occur literally inside the
//     record text, so "test" still matches a record containing
//     "testing" even though tokenization separated them;
//  3. length bonus: longer, more detailed records score slightly
//     higher, capped so huge narratives don't dominate.
func Score(queryTokens map[string]struct{}, rec *corpus.IndexedRecord, cfg Config) float64 {
	if len(queryTokens) == 0 {
		return 0.0
	}

	common := 0
	exact := 0
	for tok := range queryTokens {
		if _, ok := rec.TokenSet[tok]; ok {
			common++
		}
		if strings.Contains(rec.JoinedText, tok) {
			exact++
		}
	}
	n := float64(len(queryTokens))
	keywordScore := float64(common) / n
	exactScore := float64(exact) / n

	lengthBonus := float64(rec.TokenCount) / 50
	if lengthBonus > 1 {
		lengthBonus = 1
	}

	return keywordScore*cfg.KeywordWeight +
		exactScore*cfg.ExactMatchWeight +
		lengthBonus*cfg.LengthBonusWeight
}
