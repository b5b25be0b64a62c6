package retrieval

import (
	"context"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/nextmile/chatbot/internal/corpus"
	"github.com/nextmile/chatbot/internal/model"
)

// Retriever finds the records most relevant to a query. An empty result
// means "no relevant record" and is a normal outcome, not an error.
// Implementations must return matches sorted by descending score with
// ties broken by ascending record id.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]model.ScoredMatch, error)
	RetrieveN(ctx context.Context, query string, topK int) ([]model.ScoredMatch, error)
}

// Records are scored independently, so above this corpus size the work
// is split across CPUs.
const parallelScoreThreshold = 512

// Lexical scores every indexed record with the three-term heuristic,
// drops everything at or below the threshold, and keeps the top k.
type Lexical struct {
	index *corpus.Index
	cfg   *Holder
}

func NewLexical(index *corpus.Index, cfg *Holder) *Lexical {
	return &Lexical{index: index, cfg: cfg}
}

func (l *Lexical) Retrieve(ctx context.Context, query string) ([]model.ScoredMatch, error) {
	return l.RetrieveN(ctx, query, 0)
}

// RetrieveN retrieves with an explicit top-k override; topK <= 0 uses
// the configured value.
func (l *Lexical) RetrieveN(ctx context.Context, query string, topK int) ([]model.ScoredMatch, error) {
	cfg := l.cfg.Load()
	if topK <= 0 {
		topK = cfg.TopK
	}
	queryTokens := corpus.Tokenize(strings.ToLower(query))
	records := l.index.Snapshot()

	scores := make([]float64, len(records))
	scoreRange := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			scores[i] = Score(queryTokens, &records[i], cfg)
		}
	}
	if len(records) >= parallelScoreThreshold {
		workers := runtime.NumCPU()
		chunk := (len(records) + workers - 1) / workers
		var wg sync.WaitGroup
		for lo := 0; lo < len(records); lo += chunk {
			hi := lo + chunk
			if hi > len(records) {
				hi = len(records)
			}
			wg.Add(1)
			go func(lo, hi int) {
				defer wg.Done()
				scoreRange(lo, hi)
			}(lo, hi)
		}
		wg.Wait()
	} else {
		scoreRange(0, len(records))
	}

	// Strictly greater than the threshold: a record scoring exactly at
	// it is excluded.
	matches := make([]model.ScoredMatch, 0, len(records))
	for i := range records {
		if scores[i] > cfg.MinScoreThreshold {
			matches = append(matches, model.ScoredMatch{Score: scores[i], Record: records[i].Record})
		}
	}
	// Stable sort keeps ascending record order for equal scores.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}
