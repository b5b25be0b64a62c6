package corpus

import (
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/nextmile/chatbot/internal/model"
	appErr "github.com/nextmile/chatbot/internal/pkg/errors"
)

// wordRe matches maximal runs of letters, digits and underscore,
// Unicode-aware so non-Latin scripts tokenize too.
var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Tokenize extracts the word token set from already lower-cased text.
func Tokenize(lower string) map[string]struct{} {
	words := wordRe.FindAllString(lower, -1)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// IndexedRecord is a Record plus derived fields cached at build time.
// TokenSet always equals Tokenize(JoinedText); nothing here is mutated
// after Build returns.
type IndexedRecord struct {
	Record     model.Record
	JoinedText string
	TokenSet   map[string]struct{}
	TokenCount int
}

// Build precomputes the per-record text representation used by the
// scorer. It fails when given zero records; callers that want the
// built-in sample set must pass it explicitly.
func Build(records []model.Record) ([]IndexedRecord, error) {
	if len(records) == 0 {
		return nil, appErr.ErrCorpusEmpty
	}
	indexed := make([]IndexedRecord, 0, len(records))
	for i, rec := range records {
		rec.ID = i
		joined := strings.ToLower(fmt.Sprintf("%s %s %s %s", rec.Kind, rec.Organization, rec.Title, rec.Narrative))
		tokens := Tokenize(joined)
		indexed = append(indexed, IndexedRecord{
			Record:     rec,
			JoinedText: joined,
			TokenSet:   tokens,
			TokenCount: len(tokens),
		})
	}
	return indexed, nil
}

// Index holds the current immutable snapshot of indexed records.
// Replace swaps the whole snapshot atomically, so concurrent readers
// see either the old or the new corpus, never a mix.
type Index struct {
	snapshot atomic.Pointer[[]IndexedRecord]
}

func NewIndex(records []model.Record) (*Index, error) {
	idx := &Index{}
	if err := idx.Replace(records); err != nil {
		return nil, err
	}
	return idx, nil
}

func (x *Index) Replace(records []model.Record) error {
	indexed, err := Build(records)
	if err != nil {
		return err
	}
	x.snapshot.Store(&indexed)
	return nil
}

// Snapshot returns the current indexed records. The returned slice must
// be treated as read-only.
func (x *Index) Snapshot() []IndexedRecord {
	p := x.snapshot.Load()
	if p == nil {
		return nil
	}
	return *p
}

func (x *Index) Len() int {
	return len(x.Snapshot())
}

// Records returns the plain records of the current snapshot.
func (x *Index) Records() []model.Record {
	snap := x.Snapshot()
	records := make([]model.Record, 0, len(snap))
	for _, item := range snap {
		records = append(records, item.Record)
	}
	return records
}
