package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/config"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/database"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/model"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/repository"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/workflow"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newBudget(id string, status workflow.Status, approver string) *model.ProjectBudget {
	return &model.ProjectBudget{
		WorkflowFields: model.WorkflowFields{
			ID:                id,
			TenantID:          "tenant-1",
			ApprovalStatus:    string(status),
			OperationalStatus: string(workflow.OperationalDraft),
			OwnerID:           "owner-1",
			ApproverID:        approver,
			UpdatedAt:         time.Now().UTC(),
		},
		ProjectID:          "project-1",
		FiscalYear:         2025,
		Name:               "FY25 " + id,
		TotalBudgetedHours: decimal.RequireFromString("1200.50"),
	}
}

func insert(t *testing.T, store repository.WorkflowStore, recs ...workflow.Record) {
	t.Helper()
	err := store.Transaction(context.Background(), func(tx workflow.Tx) error {
		for _, rec := range recs {
			if err := tx.Insert(context.Background(), rec); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func TestWorkflowStoreGet(t *testing.T) {
	store := repository.NewWorkflowStore(setupTestDB(t))
	insert(t, store, newBudget("b1", workflow.StatusDraft, ""))

	rec, err := store.Get(context.Background(), workflow.KindBudget, "b1")
	require.NoError(t, err)
	budget, ok := rec.(*model.ProjectBudget)
	require.True(t, ok)
	assert.Equal(t, "FY25 b1", budget.Name)
	assert.True(t, budget.TotalBudgetedHours.Equal(decimal.RequireFromString("1200.5")))

	_, err = store.Get(context.Background(), workflow.KindBudget, "missing")
	assert.ErrorIs(t, err, workflow.ErrNotFound)

	// 同一 ID 在其他类型的表中不存在
	_, err = store.Get(context.Background(), workflow.KindWbs, "b1")
	assert.ErrorIs(t, err, workflow.ErrNotFound)
}

func TestWorkflowStoreLoadMany(t *testing.T) {
	store := repository.NewWorkflowStore(setupTestDB(t))
	insert(t, store,
		newBudget("b1", workflow.StatusDraft, ""),
		newBudget("b2", workflow.StatusDraft, ""),
	)

	err := store.Transaction(context.Background(), func(tx workflow.Tx) error {
		recs, err := tx.LoadMany(context.Background(), workflow.KindBudget, []string{"b1", "b2", "b3"})
		require.NoError(t, err)
		assert.Len(t, recs, 2)
		assert.Contains(t, recs, "b1")
		assert.NotContains(t, recs, "b3")
		return nil
	})
	require.NoError(t, err)
}

func TestWorkflowStoreSaveOptimisticLock(t *testing.T) {
	store := repository.NewWorkflowStore(setupTestDB(t))
	insert(t, store, newBudget("b1", workflow.StatusDraft, ""))
	ctx := context.Background()

	first, err := store.Get(ctx, workflow.KindBudget, "b1")
	require.NoError(t, err)
	stale, err := store.Get(ctx, workflow.KindBudget, "b1")
	require.NoError(t, err)

	first.(*model.ProjectBudget).Name = "renamed"
	err = store.Transaction(ctx, func(tx workflow.Tx) error {
		return tx.Save(ctx, first)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.GetVersion())

	stale.(*model.ProjectBudget).Name = "lost update"
	err = store.Transaction(ctx, func(tx workflow.Tx) error {
		return tx.Save(ctx, stale)
	})
	assert.ErrorIs(t, err, workflow.ErrConcurrentModification)
	assert.Equal(t, int64(0), stale.GetVersion())

	current, err := store.Get(ctx, workflow.KindBudget, "b1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", current.(*model.ProjectBudget).Name)
	assert.Equal(t, int64(1), current.GetVersion())
}

func TestWorkflowStoreHistoryAndOutbox(t *testing.T) {
	db := setupTestDB(t)
	store := repository.NewWorkflowStore(db)
	insert(t, store, newBudget("b1", workflow.StatusDraft, "approver-1"))
	ctx := context.Background()

	at := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	entries := []workflow.HistoryEntry{
		{ID: "h1", Kind: workflow.KindBudget, RecordID: "b1", ChangedBy: "u1", ChangedAt: at,
			ChangeType: workflow.ChangeStatusChanged, Transition: workflow.TransitionSubmit,
			OldValues: &workflow.Snapshot{Version: 1, Status: &workflow.StatusSnapshot{ApprovalStatus: workflow.StatusDraft}},
			NewValues: &workflow.Snapshot{Version: 1, Status: &workflow.StatusSnapshot{ApprovalStatus: workflow.StatusPendingApproval}}},
		// 时间戳相同,依靠 sequence 保持顺序
		{ID: "h2", Kind: workflow.KindBudget, RecordID: "b1", ChangedBy: "u2", ChangedAt: at,
			ChangeType: workflow.ChangeStatusChanged, Transition: workflow.TransitionApprove,
			OldValues: &workflow.Snapshot{Version: 1, Status: &workflow.StatusSnapshot{ApprovalStatus: workflow.StatusPendingApproval}},
			NewValues: &workflow.Snapshot{Version: 1, Status: &workflow.StatusSnapshot{ApprovalStatus: workflow.StatusApproved}}},
	}
	err := store.Transaction(ctx, func(tx workflow.Tx) error {
		return tx.AppendHistory(ctx, entries...)
	})
	require.NoError(t, err)

	history, err := store.History(ctx, workflow.KindBudget, "b1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "h2", history[0].ID)
	assert.Equal(t, "h1", history[1].ID)
	assert.Greater(t, history[0].Sequence, history[1].Sequence)
	require.NotNil(t, history[0].NewValues)
	assert.Equal(t, workflow.StatusApproved, history[0].NewValues.Status.ApprovalStatus)

	events, err := repository.NewEventRepository(db).FindByRecord(string(workflow.KindBudget), "b1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "record.status_changed", events[0].Type)
	assert.Equal(t, model.EventStatusPending, events[0].Status)
}

func TestWorkflowStoreCreatedHistoryHasNoOldValues(t *testing.T) {
	store := repository.NewWorkflowStore(setupTestDB(t))
	ctx := context.Background()

	err := store.Transaction(ctx, func(tx workflow.Tx) error {
		return tx.AppendHistory(ctx, workflow.HistoryEntry{
			ID: "h1", Kind: workflow.KindWbs, RecordID: "w1", ChangedBy: "u1", ChangedAt: time.Now(),
			ChangeType: workflow.ChangeCreated,
			NewValues:  &workflow.Snapshot{Version: 1, Fields: map[string]string{"code": "1.1"}},
		})
	})
	require.NoError(t, err)

	history, err := store.History(ctx, workflow.KindWbs, "w1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].OldValues)
	assert.Equal(t, "1.1", history[0].NewValues.Fields["code"])
}

func TestWorkflowStoreTransactionRollback(t *testing.T) {
	store := repository.NewWorkflowStore(setupTestDB(t))
	ctx := context.Background()

	err := store.Transaction(ctx, func(tx workflow.Tx) error {
		require.NoError(t, tx.Insert(ctx, newBudget("b1", workflow.StatusDraft, "")))
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	_, err = store.Get(ctx, workflow.KindBudget, "b1")
	assert.ErrorIs(t, err, workflow.ErrNotFound)
}

func TestFindPendingApproval(t *testing.T) {
	store := repository.NewWorkflowStore(setupTestDB(t))
	group := newBudget("b3", workflow.StatusPendingApproval, "")
	group.ApproverGroupID = "finance"
	insert(t, store,
		newBudget("b1", workflow.StatusPendingApproval, "alice"),
		newBudget("b2", workflow.StatusPendingApproval, "bob"),
		group,
		newBudget("b4", workflow.StatusDraft, "alice"),
	)
	ctx := context.Background()

	all, err := store.FindPendingApproval(ctx, workflow.KindBudget, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	alice, err := store.FindPendingApproval(ctx, workflow.KindBudget, "alice", "")
	require.NoError(t, err)
	require.Len(t, alice, 1)
	assert.Equal(t, "b1", alice[0].GetID())

	aliceOrFinance, err := store.FindPendingApproval(ctx, workflow.KindBudget, "alice", "finance")
	require.NoError(t, err)
	assert.Len(t, aliceOrFinance, 2)

	_, err = store.FindPendingApproval(ctx, workflow.Kind("timesheets"), "", "")
	assert.ErrorIs(t, err, workflow.ErrNotFound)
}
