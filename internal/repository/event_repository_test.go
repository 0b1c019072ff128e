package repository_test

import (
	"testing"
	"time"

	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/model"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEvent(id string, createdAt time.Time) *model.EventModel {
	return &model.EventModel{
		ID:         id,
		RecordKind: "wbs",
		RecordID:   "w1",
		Type:       "record.status_changed",
		Data:       []byte(`{"id":"` + id + `"}`),
		Status:     model.EventStatusPending,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

func TestEventRepositoryLifecycle(t *testing.T) {
	repo := repository.NewEventRepository(setupTestDB(t))
	base := time.Now().Add(-time.Minute)
	require.NoError(t, repo.Save(newEvent("e1", base)))
	require.NoError(t, repo.Save(newEvent("e2", base.Add(time.Second))))
	require.NoError(t, repo.Save(newEvent("e3", base.Add(2*time.Second))))

	pending, err := repo.FindPending(time.Now(), 2)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "e1", pending[0].ID)

	require.NoError(t, repo.MarkDelivered("e1"))
	retryAt := time.Now().Add(time.Hour)
	require.NoError(t, repo.MarkFailed("e2", "timeout", false, retryAt))
	require.NoError(t, repo.MarkFailed("e3", "gone", true, retryAt))

	pending, err = repo.FindPending(time.Now(), 0)
	require.NoError(t, err)
	assert.Empty(t, pending, "events waiting out their backoff are not due")

	pending, err = repo.FindPending(retryAt.Add(time.Second), 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "e2", pending[0].ID)
	assert.Equal(t, 1, pending[0].RetryCount)
	assert.Equal(t, "timeout", pending[0].LastError)

	events, err := repo.FindByRecord("wbs", "w1")
	require.NoError(t, err)
	statuses := map[string]string{}
	for _, e := range events {
		statuses[e.ID] = e.Status
	}
	assert.Equal(t, model.EventStatusSuccess, statuses["e1"])
	assert.Equal(t, model.EventStatusFailed, statuses["e3"])
}

func TestAuditLogRepository(t *testing.T) {
	repo := repository.NewAuditLogRepository(setupTestDB(t))
	now := time.Now()
	require.NoError(t, repo.Save(&model.AuditLogModel{
		ID: "a1", UserID: "alice", Action: "approver", ResourceType: "wbs", ResourceID: "w1", Allowed: true, CreatedAt: now,
	}))
	require.NoError(t, repo.Save(&model.AuditLogModel{
		ID: "a2", UserID: "bob", Action: "approver", ResourceType: "wbs", ResourceID: "w1", Allowed: false,
		Reason: "missing relation", CreatedAt: now.Add(time.Second),
	}))

	byResource, err := repo.FindByResource("wbs", "w1")
	require.NoError(t, err)
	require.Len(t, byResource, 2)
	assert.Equal(t, "a2", byResource[0].ID)

	denied, err := repo.FindDenied(10)
	require.NoError(t, err)
	require.Len(t, denied, 1)
	assert.Equal(t, "bob", denied[0].UserID)

	alice, err := repo.FindByUserID("alice")
	require.NoError(t, err)
	assert.Len(t, alice, 1)
}
