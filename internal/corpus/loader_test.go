package corpus

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/nextmile/chatbot/internal/model"
)

func writeSheet(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "corpus.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save sheet: %v", err)
	}
	return path
}

func loaderFor(t *testing.T, path string) *Loader {
	t.Helper()
	source, err := NewSource("local", map[string]interface{}{"path": path})
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	return NewLoader(source)
}

func TestLoaderLoad(t *testing.T) {
	path := writeSheet(t, [][]interface{}{
		{"Type", "Company_Organization", "Position_Title", "Context"},
		{"Work", "Baidu Inc.", "AI/ML Engineer", "Fine-tuned models. Technologies: LoRA"},
		{"Project", "Personal", "Chatbot", "Built a chat service. Technologies: Go"},
		{"", "", "", ""},
		{"Work", "Apple Inc.", "Data Scientist", "Analyzed chat data."},
	})
	records, err := loaderFor(t, path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records (blank row skipped), got %d", len(records))
	}
	if records[0].Kind != model.KindWork || records[0].Organization != "Baidu Inc." {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[1].Kind != model.KindProject || records[1].Title != "Chatbot" {
		t.Fatalf("unexpected second record: %+v", records[1])
	}
}

func TestLoaderHeaderCaseInsensitive(t *testing.T) {
	path := writeSheet(t, [][]interface{}{
		{"type", "COMPANY_ORGANIZATION", " Position_Title ", "context"},
		{"Work", "Acme", "Engineer", "built pipelines"},
	})
	records, err := loaderFor(t, path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 1 || records[0].Organization != "Acme" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestLoaderMissingColumn(t *testing.T) {
	path := writeSheet(t, [][]interface{}{
		{"Type", "Company_Organization", "Context"},
		{"Work", "Acme", "built pipelines"},
	})
	_, err := loaderFor(t, path).Load(context.Background())
	if err == nil {
		t.Fatal("expected an error for the missing column")
	}
	if !strings.Contains(err.Error(), "position_title") {
		t.Fatalf("error should name the missing column, got %v", err)
	}
}

func TestLoaderNoDataRows(t *testing.T) {
	path := writeSheet(t, [][]interface{}{
		{"Type", "Company_Organization", "Position_Title", "Context"},
	})
	if _, err := loaderFor(t, path).Load(context.Background()); err == nil {
		t.Fatal("expected an error for a header-only sheet")
	}
}

func TestLoaderMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.xlsx")
	if _, err := loaderFor(t, path).Load(context.Background()); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestLoaderNilSource(t *testing.T) {
	var l *Loader
	if _, err := l.Load(context.Background()); err == nil {
		t.Fatal("expected an error without a source")
	}
}
