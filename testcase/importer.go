package testcase

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/regresshub/regresshub/logger"
)

var (
	// ErrInvalidCSV is returned when the uploaded file cannot be parsed as CSV.
	ErrInvalidCSV = errors.New("invalid CSV format")

	// ErrEmptyCSV is returned when the CSV has no data rows.
	ErrEmptyCSV = errors.New("CSV file is empty or invalid")
)

// CSV column headers expected by the importer.
const (
	colCaseLabel      = "Test Case ID"
	colUserType       = "User Type"
	colPlatform       = "Platform"
	colModule         = "Module"
	colTestScenario   = "Test Scenario"
	colTitle          = "Test Case"
	colPreConditions  = "Pre Conditions"
	colTestData       = "Test Data"
	colTestStep       = "Test Step"
	colExpectedResult = "Expected Result"
)

// ImportedCase identifies a test case created by an import.
type ImportedCase struct {
	ID        uuid.UUID `json:"id"`
	CaseLabel string    `json:"case_label"`
}

// SkippedRow records a CSV row that was not imported and why.
type SkippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportResult summarizes a CSV import.
type ImportResult struct {
	Imported []ImportedCase `json:"imported"`
	Skipped  []SkippedRow   `json:"skipped"`
}

// Importer bulk-loads test cases into a regression set from a CSV file with
// a header row. Rows missing required fields or duplicating an existing case
// label are skipped individually rather than failing the whole import.
type Importer struct {
	store  Store
	logger logger.Logger
}

// NewImporter creates a new CSV importer backed by the given store.
func NewImporter(store Store, log logger.Logger) *Importer {
	return &Importer{store: store, logger: log}
}

// Import parses the CSV stream and inserts test cases into the regression set.
func (i *Importer) Import(ctx context.Context, regressionSetID uuid.UUID, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}

	if len(records) < 2 {
		return nil, ErrEmptyCSV
	}

	header := newHeaderIndex(records[0])
	result := &ImportResult{
		Imported: make([]ImportedCase, 0),
		Skipped:  make([]SkippedRow, 0),
	}

	for idx, record := range records[1:] {
		// Rows are reported 1-indexed, +1 for the header row.
		rowNum := idx + 2

		label := header.get(record, colCaseLabel)
		module := header.get(record, colModule)
		expected := header.get(record, colExpectedResult)

		if label == "" || module == "" || expected == "" {
			result.Skipped = append(result.Skipped, SkippedRow{
				Row:    rowNum,
				Reason: "Missing required fields (Test Case ID, Module, Expected Result)",
			})
			continue
		}

		exists, err := i.store.ExistsByCaseLabel(ctx, regressionSetID, label)
		if err != nil {
			return nil, err
		}
		if exists {
			result.Skipped = append(result.Skipped, SkippedRow{
				Row:    rowNum,
				Reason: fmt.Sprintf("Duplicate Test Case ID: %s", label),
			})
			continue
		}

		tc := &TestCase{
			RegressionSetID: regressionSetID,
			CaseLabel:       label,
			UserType:        header.get(record, colUserType),
			Platform:        header.get(record, colPlatform),
			Module:          module,
			TestScenario:    header.get(record, colTestScenario),
			Title:           header.get(record, colTitle),
			PreConditions:   header.get(record, colPreConditions),
			TestData:        header.get(record, colTestData),
			TestStep:        header.get(record, colTestStep),
			ExpectedResult:  expected,
			Status:          StatusNotExecuted,
		}

		if err := i.store.Create(ctx, tc); err != nil {
			return nil, err
		}

		result.Imported = append(result.Imported, ImportedCase{
			ID:        tc.ID,
			CaseLabel: tc.CaseLabel,
		})
	}

	i.logger.Info(ctx, "test cases imported", logger.Fields{
		"regression_set_id": regressionSetID.String(),
		"imported":          len(result.Imported),
		"skipped":           len(result.Skipped),
	})

	return result, nil
}

// headerIndex maps trimmed column names to positions in a CSV record.
type headerIndex map[string]int

func newHeaderIndex(header []string) headerIndex {
	idx := make(headerIndex, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	return idx
}

func (h headerIndex) get(record []string, column string) string {
	i, ok := h[column]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
