package run

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/regresshub/regresshub/regressionset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMySQLStore_CreateWithItems(t *testing.T) {
	ctx := context.Background()

	t.Run("creates run and items together", func(t *testing.T) {
		db, store := setupTestStore(t)

		ownerID := uuid.New()
		set := createRegressionSet(t, db, ownerID, regressionset.PlatformWeb)
		cases := createTestCases(t, db, set.ID, 3)

		r := &Run{
			RegressionSetID: set.ID,
			StartedBy:       ownerID,
			TotalCases:      len(cases),
		}
		items := make([]*RunItem, 0, len(cases))
		for i, tc := range cases {
			items = append(items, &RunItem{TestCaseID: tc.ID, Order: i + 1})
		}

		err := store.CreateWithItems(ctx, r, items)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, r.ID)
		assert.Equal(t, StatusInProgress, r.Status)

		stored, err := store.ListItems(ctx, r.ID)
		require.NoError(t, err)
		require.Len(t, stored, 3)
		for i, item := range stored {
			assert.Equal(t, r.ID, item.RunID)
			assert.Equal(t, i+1, item.Order)
			assert.Equal(t, ItemStatusNotExecuted, item.Status)
		}
	})

	t.Run("creates run with no items", func(t *testing.T) {
		db, store := setupTestStore(t)

		ownerID := uuid.New()
		set := createRegressionSet(t, db, ownerID, regressionset.PlatformWeb)

		r := &Run{RegressionSetID: set.ID, StartedBy: ownerID}
		err := store.CreateWithItems(ctx, r, nil)
		require.NoError(t, err)

		stored, err := store.ListItems(ctx, r.ID)
		require.NoError(t, err)
		assert.Empty(t, stored)
	})

	t.Run("rejects run without regression set", func(t *testing.T) {
		_, store := setupTestStore(t)

		r := &Run{StartedBy: uuid.New()}
		err := store.CreateWithItems(ctx, r, nil)
		assert.ErrorIs(t, err, ErrInvalidRegressionSetID)
	})

	t.Run("rejects run without starting user", func(t *testing.T) {
		_, store := setupTestStore(t)

		r := &Run{RegressionSetID: uuid.New()}
		err := store.CreateWithItems(ctx, r, nil)
		assert.ErrorIs(t, err, ErrInvalidStartedBy)
	})
}

func TestMySQLStore_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("returns run with regression set", func(t *testing.T) {
		db, store := setupTestStore(t)

		ownerID := uuid.New()
		set := createRegressionSet(t, db, ownerID, regressionset.PlatformIOS)
		r := &Run{RegressionSetID: set.ID, StartedBy: ownerID}
		require.NoError(t, store.CreateWithItems(ctx, r, nil))

		got, err := store.GetByID(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, r.ID, got.ID)
		require.NotNil(t, got.RegressionSet)
		assert.Equal(t, regressionset.PlatformIOS, got.RegressionSet.Platform)
	})

	t.Run("returns not found for unknown run", func(t *testing.T) {
		_, store := setupTestStore(t)

		_, err := store.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrRunNotFound)
	})
}

func TestMySQLStore_NextNotExecuted(t *testing.T) {
	ctx := context.Background()

	t.Run("returns lowest order pending item with test case", func(t *testing.T) {
		db, store := setupTestStore(t)

		ownerID := uuid.New()
		set := createRegressionSet(t, db, ownerID, regressionset.PlatformWeb)
		cases := createTestCases(t, db, set.ID, 2)

		r := &Run{RegressionSetID: set.ID, StartedBy: ownerID, TotalCases: 2}
		items := []*RunItem{
			{TestCaseID: cases[0].ID, Order: 1},
			{TestCaseID: cases[1].ID, Order: 2},
		}
		require.NoError(t, store.CreateWithItems(ctx, r, items))

		next, err := store.NextNotExecuted(ctx, r.ID)
		require.NoError(t, err)
		require.NotNil(t, next)
		assert.Equal(t, 1, next.Order)
		require.NotNil(t, next.TestCase)
		assert.Equal(t, "TC-001", next.TestCase.CaseLabel)

		// Peeking again without recording a result hands out the same item.
		again, err := store.NextNotExecuted(ctx, r.ID)
		require.NoError(t, err)
		require.NotNil(t, again)
		assert.Equal(t, next.ID, again.ID)
	})

	t.Run("returns nil when nothing is pending", func(t *testing.T) {
		db, store := setupTestStore(t)

		ownerID := uuid.New()
		set := createRegressionSet(t, db, ownerID, regressionset.PlatformWeb)
		r := &Run{RegressionSetID: set.ID, StartedBy: ownerID}
		require.NoError(t, store.CreateWithItems(ctx, r, nil))

		next, err := store.NextNotExecuted(ctx, r.ID)
		require.NoError(t, err)
		assert.Nil(t, next)
	})
}

func TestMySQLStore_RecordResult(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, n int) (*MySQLStore, *Run, []*RunItem) {
		db, store := setupTestStore(t)

		ownerID := uuid.New()
		set := createRegressionSet(t, db, ownerID, regressionset.PlatformWeb)
		cases := createTestCases(t, db, set.ID, n)

		r := &Run{RegressionSetID: set.ID, StartedBy: ownerID, TotalCases: n}
		items := make([]*RunItem, 0, n)
		for i, tc := range cases {
			items = append(items, &RunItem{TestCaseID: tc.ID, Order: i + 1})
		}
		require.NoError(t, store.CreateWithItems(ctx, r, items))

		return store, r, items
	}

	t.Run("records first result and bumps counter", func(t *testing.T) {
		store, _, items := setup(t, 2)

		item, r, err := store.RecordResult(ctx, items[0].ID, ItemStatusPass, strPtr("worked as expected"))
		require.NoError(t, err)

		assert.Equal(t, ItemStatusPass, item.Status)
		assert.Equal(t, "worked as expected", item.ActualResults)
		assert.NotNil(t, item.StartedAt)
		assert.NotNil(t, item.CompletedAt)

		assert.Equal(t, 1, r.Passed)
		assert.Equal(t, 0, r.Failed)
		assert.Equal(t, 0, r.Skipped)
		assert.Equal(t, StatusInProgress, r.Status)
		assert.Nil(t, r.CompletedAt)
	})

	t.Run("re-recording moves counters between buckets", func(t *testing.T) {
		store, _, items := setup(t, 2)

		_, r, err := store.RecordResult(ctx, items[0].ID, ItemStatusPass, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, r.Passed)

		_, r, err = store.RecordResult(ctx, items[0].ID, ItemStatusFail, strPtr("broke on retry"))
		require.NoError(t, err)
		assert.Equal(t, 0, r.Passed)
		assert.Equal(t, 1, r.Failed)
	})

	t.Run("re-recording the same result is a net zero", func(t *testing.T) {
		store, _, items := setup(t, 2)

		_, _, err := store.RecordResult(ctx, items[0].ID, ItemStatusSkipped, nil)
		require.NoError(t, err)

		_, r, err := store.RecordResult(ctx, items[0].ID, ItemStatusSkipped, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, r.Skipped)
		assert.Equal(t, 0, r.Passed)
		assert.Equal(t, 0, r.Failed)
	})

	t.Run("started timestamp is set once", func(t *testing.T) {
		store, _, items := setup(t, 1)

		first, _, err := store.RecordResult(ctx, items[0].ID, ItemStatusFail, nil)
		require.NoError(t, err)
		require.NotNil(t, first.StartedAt)

		second, _, err := store.RecordResult(ctx, items[0].ID, ItemStatusPass, nil)
		require.NoError(t, err)
		require.NotNil(t, second.StartedAt)
		assert.Equal(t, first.StartedAt.Unix(), second.StartedAt.Unix())
	})

	t.Run("last result completes the run", func(t *testing.T) {
		store, _, items := setup(t, 2)

		_, r, err := store.RecordResult(ctx, items[0].ID, ItemStatusPass, nil)
		require.NoError(t, err)
		assert.Equal(t, StatusInProgress, r.Status)

		_, r, err = store.RecordResult(ctx, items[1].ID, ItemStatusFail, nil)
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, r.Status)
		assert.NotNil(t, r.CompletedAt)
		assert.Equal(t, 1, r.Passed)
		assert.Equal(t, 1, r.Failed)
	})

	t.Run("cancelled run stays cancelled after late result", func(t *testing.T) {
		store, r, items := setup(t, 1)

		_, err := store.Cancel(ctx, r.ID)
		require.NoError(t, err)

		_, got, err := store.RecordResult(ctx, items[0].ID, ItemStatusPass, nil)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, got.Status)
		assert.Equal(t, 1, got.Passed)
	})

	t.Run("rejects non-result status", func(t *testing.T) {
		store, _, items := setup(t, 1)

		_, _, err := store.RecordResult(ctx, items[0].ID, ItemStatusNotExecuted, nil)
		assert.ErrorIs(t, err, ErrInvalidResultStatus)

		_, _, err = store.RecordResult(ctx, items[0].ID, ItemStatus("Blocked"), nil)
		assert.ErrorIs(t, err, ErrInvalidResultStatus)
	})

	t.Run("returns not found for unknown item", func(t *testing.T) {
		_, store := setupTestStore(t)

		_, _, err := store.RecordResult(ctx, uuid.New(), ItemStatusPass, nil)
		assert.ErrorIs(t, err, ErrRunItemNotFound)
	})
}

func TestMySQLStore_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels an in progress run", func(t *testing.T) {
		db, store := setupTestStore(t)

		ownerID := uuid.New()
		set := createRegressionSet(t, db, ownerID, regressionset.PlatformWeb)
		r := &Run{RegressionSetID: set.ID, StartedBy: ownerID}
		require.NoError(t, store.CreateWithItems(ctx, r, nil))

		got, err := store.Cancel(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, got.Status)
		assert.NotNil(t, got.CompletedAt)
	})

	t.Run("cancelling a completed run overwrites its status", func(t *testing.T) {
		db, store := setupTestStore(t)

		ownerID := uuid.New()
		set := createRegressionSet(t, db, ownerID, regressionset.PlatformWeb)
		cases := createTestCases(t, db, set.ID, 1)
		r := &Run{RegressionSetID: set.ID, StartedBy: ownerID, TotalCases: 1}
		require.NoError(t, store.CreateWithItems(ctx, r, []*RunItem{{TestCaseID: cases[0].ID, Order: 1}}))

		items, err := store.ListItems(ctx, r.ID)
		require.NoError(t, err)
		_, completed, err := store.RecordResult(ctx, items[0].ID, ItemStatusPass, nil)
		require.NoError(t, err)
		require.Equal(t, StatusCompleted, completed.Status)

		got, err := store.Cancel(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, got.Status)
	})

	t.Run("returns not found for unknown run", func(t *testing.T) {
		_, store := setupTestStore(t)

		_, err := store.Cancel(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrRunNotFound)
	})
}

func TestMySQLStore_ListByOwner(t *testing.T) {
	ctx := context.Background()

	t.Run("filters by owner status and platform", func(t *testing.T) {
		db, store := setupTestStore(t)

		ownerID := uuid.New()
		otherID := uuid.New()
		webSet := createRegressionSet(t, db, ownerID, regressionset.PlatformWeb)
		iosSet := createRegressionSet(t, db, ownerID, regressionset.PlatformIOS)

		first := &Run{RegressionSetID: webSet.ID, StartedBy: ownerID}
		require.NoError(t, store.CreateWithItems(ctx, first, nil))
		second := &Run{RegressionSetID: iosSet.ID, StartedBy: ownerID}
		require.NoError(t, store.CreateWithItems(ctx, second, nil))
		foreign := &Run{RegressionSetID: webSet.ID, StartedBy: otherID}
		require.NoError(t, store.CreateWithItems(ctx, foreign, nil))

		_, err := store.Cancel(ctx, second.ID)
		require.NoError(t, err)

		runs, total, err := store.ListByOwner(ctx, ownerID, HistoryFilter{Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Len(t, runs, 2)

		runs, total, err = store.ListByOwner(ctx, ownerID, HistoryFilter{Page: 1, Limit: 10, Status: StatusCancelled})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, runs, 1)
		assert.Equal(t, second.ID, runs[0].ID)

		runs, total, err = store.ListByOwner(ctx, ownerID, HistoryFilter{Page: 1, Limit: 10, Platform: regressionset.PlatformIOS})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, runs, 1)
		assert.Equal(t, second.ID, runs[0].ID)
		require.NotNil(t, runs[0].RegressionSet)
		assert.Equal(t, regressionset.PlatformIOS, runs[0].RegressionSet.Platform)
	})

	t.Run("pages results while total counts all matches", func(t *testing.T) {
		db, store := setupTestStore(t)

		ownerID := uuid.New()
		set := createRegressionSet(t, db, ownerID, regressionset.PlatformWeb)
		for i := 0; i < 5; i++ {
			r := &Run{RegressionSetID: set.ID, StartedBy: ownerID}
			require.NoError(t, store.CreateWithItems(ctx, r, nil))
		}

		runs, total, err := store.ListByOwner(ctx, ownerID, HistoryFilter{Page: 2, Limit: 2})
		require.NoError(t, err)
		assert.EqualValues(t, 5, total)
		assert.Len(t, runs, 2)

		runs, total, err = store.ListByOwner(ctx, ownerID, HistoryFilter{Page: 3, Limit: 2})
		require.NoError(t, err)
		assert.EqualValues(t, 5, total)
		assert.Len(t, runs, 1)
	})
}
