package corpus

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/nextmile/chatbot/internal/model"
)

// Spreadsheet column headers, matching the corpus export format.
const (
	colKind         = "type"
	colOrganization = "company_organization"
	colTitle        = "position_title"
	colNarrative    = "context"
)

// Loader reads biographical records out of an XLSX spreadsheet fetched
// from a Source. A parse or fetch failure is always returned to the
// caller; falling back to SampleRecords is the caller's decision, never
// the loader's.
type Loader struct {
	source Source
}

func NewLoader(source Source) *Loader {
	return &Loader{source: source}
}

func (l *Loader) Source() string {
	if l == nil || l.source == nil {
		return ""
	}
	return l.source.Name()
}

func (l *Loader) Load(ctx context.Context) ([]model.Record, error) {
	if l == nil || l.source == nil {
		return nil, fmt.Errorf("corpus source not configured")
	}
	rc, err := l.source.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	f, err := excelize.OpenReader(rc)
	if err != nil {
		return nil, fmt.Errorf("parse corpus spreadsheet: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("corpus spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read corpus sheet %s: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("corpus sheet %s has no data rows", sheets[0])
	}

	columns, err := mapColumns(rows[0])
	if err != nil {
		return nil, err
	}
	records := make([]model.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := model.Record{
			Kind:         model.RecordKind(cell(row, columns[colKind])),
			Organization: cell(row, columns[colOrganization]),
			Title:        cell(row, columns[colTitle]),
			Narrative:    cell(row, columns[colNarrative]),
		}
		if rec.Organization == "" && rec.Title == "" && rec.Narrative == "" {
			continue
		}
		records = append(records, rec)
	}
	logutil.GetLogger(ctx).Info("corpus loaded",
		zap.String("source", l.source.Name()),
		zap.Int("records", len(records)))
	return records, nil
}

func mapColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colKind, colOrganization, colTitle, colNarrative} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("corpus sheet is missing column %q", required)
		}
	}
	return columns, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
