package testcase

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/regresshub/regresshub/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const importHeader = "Test Case ID,User Type,Platform,Module,Test Scenario,Test Case,Pre Conditions,Test Data,Test Step,Expected Result\n"

func setupImporter(t *testing.T) (*Importer, *MySQLStore) {
	t.Helper()

	_, store := setupTestStore(t)
	return NewImporter(store, logger.NewTestLogger()), store
}

func TestImporter_Import(t *testing.T) {
	ctx := context.Background()

	t.Run("imports valid rows", func(t *testing.T) {
		importer, store := setupImporter(t)
		setID := uuid.New()

		csv := importHeader +
			"TC-001,Guest,Web,Login,Auth,Valid login,User exists,alice/secret,Enter credentials,Dashboard shown\n" +
			"TC-002,Member,Web,Checkout,Payment,Pay by card,Cart filled,visa test card,Submit payment,Order placed\n"

		result, err := importer.Import(ctx, setID, strings.NewReader(csv))
		require.NoError(t, err)

		require.Len(t, result.Imported, 2)
		assert.Empty(t, result.Skipped)
		assert.Equal(t, "TC-001", result.Imported[0].CaseLabel)

		cases, err := store.ListByRegressionSet(ctx, setID)
		require.NoError(t, err)
		require.Len(t, cases, 2)
		assert.Equal(t, "Login", cases[0].Module)
		assert.Equal(t, "Dashboard shown", cases[0].ExpectedResult)
		assert.Equal(t, StatusNotExecuted, cases[0].Status)
	})

	t.Run("skips rows missing required fields", func(t *testing.T) {
		importer, _ := setupImporter(t)

		csv := importHeader +
			"TC-001,,,Login,,,,,,Dashboard shown\n" +
			",,,Checkout,,,,,,Order placed\n" + // no label
			"TC-003,,,,,,,,,Order placed\n" + // no module
			"TC-004,,,Search,,,,,,\n" // no expected result

		result, err := importer.Import(ctx, uuid.New(), strings.NewReader(csv))
		require.NoError(t, err)

		assert.Len(t, result.Imported, 1)
		require.Len(t, result.Skipped, 3)

		// Rows are reported 1-indexed including the header row.
		assert.Equal(t, 3, result.Skipped[0].Row)
		assert.Contains(t, result.Skipped[0].Reason, "Missing required fields")
	})

	t.Run("skips duplicate case labels", func(t *testing.T) {
		importer, _ := setupImporter(t)
		setID := uuid.New()

		csv := importHeader +
			"TC-001,,,Login,,,,,,Dashboard shown\n" +
			"TC-001,,,Login,,,,,,Dashboard shown\n"

		result, err := importer.Import(ctx, setID, strings.NewReader(csv))
		require.NoError(t, err)

		assert.Len(t, result.Imported, 1)
		require.Len(t, result.Skipped, 1)
		assert.Contains(t, result.Skipped[0].Reason, "Duplicate Test Case ID: TC-001")

		// Re-importing the same file skips everything.
		result, err = importer.Import(ctx, setID, strings.NewReader(csv))
		require.NoError(t, err)
		assert.Empty(t, result.Imported)
		assert.Len(t, result.Skipped, 2)
	})

	t.Run("rejects a file without data rows", func(t *testing.T) {
		importer, _ := setupImporter(t)

		_, err := importer.Import(ctx, uuid.New(), strings.NewReader(importHeader))
		assert.ErrorIs(t, err, ErrEmptyCSV)

		_, err = importer.Import(ctx, uuid.New(), strings.NewReader(""))
		assert.ErrorIs(t, err, ErrEmptyCSV)
	})

	t.Run("rejects malformed CSV", func(t *testing.T) {
		importer, _ := setupImporter(t)

		malformed := importHeader + "TC-001,\"unclosed quote,Login\n"
		_, err := importer.Import(ctx, uuid.New(), strings.NewReader(malformed))
		assert.ErrorIs(t, err, ErrInvalidCSV)
	})

	t.Run("tolerates short rows", func(t *testing.T) {
		importer, _ := setupImporter(t)

		csv := importHeader + "TC-001,Guest,Web,Login\n"
		result, err := importer.Import(ctx, uuid.New(), strings.NewReader(csv))
		require.NoError(t, err)

		// Expected Result column is missing entirely, so the row is skipped.
		assert.Empty(t, result.Imported)
		assert.Len(t, result.Skipped, 1)
	})
}
