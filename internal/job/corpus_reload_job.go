package job

import (
	"context"

	"github.com/nextmile/chatbot/internal/service"
)

// CorpusReloadJob refreshes the index from the configured spreadsheet
// source, picking up out-of-band corpus edits.
type CorpusReloadJob struct {
	system *service.SystemService
}

func NewCorpusReloadJob(system *service.SystemService) *CorpusReloadJob {
	return &CorpusReloadJob{system: system}
}

func (j *CorpusReloadJob) Name() string {
	return "corpus_reload"
}

func (j *CorpusReloadJob) Run(ctx context.Context) error {
	if j.system == nil {
		return nil
	}
	return j.system.Reload(ctx, "")
}
