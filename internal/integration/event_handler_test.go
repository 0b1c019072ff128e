package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/config"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/database"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/model"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/repository"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/workflow"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEvents(t *testing.T, n int) (repository.EventRepository, []*model.EventModel) {
	t.Helper()
	db, err := database.Connect(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	repo := repository.NewEventRepository(db)
	events := make([]*model.EventModel, 0, n)
	for i := 0; i < n; i++ {
		evt, err := model.NewHistoryEventModel(workflow.HistoryEntry{
			ID:         "h" + string(rune('a'+i)),
			Kind:       workflow.KindWbs,
			RecordID:   "w" + string(rune('a'+i)),
			ChangedBy:  "pm",
			ChangedAt:  time.Now().UTC(),
			ChangeType: workflow.ChangeStatusChanged,
			Transition: workflow.TransitionSubmit,
		})
		require.NoError(t, err)
		require.NoError(t, repo.Save(evt))
		events = append(events, evt)
	}
	return repo, events
}

func statusByID(t *testing.T, repo repository.EventRepository, evt *model.EventModel) *model.EventModel {
	t.Helper()
	found, err := repo.FindByRecord(evt.RecordKind, evt.RecordID)
	require.NoError(t, err)
	require.Len(t, found, 1)
	return found[0]
}

func TestDispatchOnce_DeliversToAllWebhooks(t *testing.T) {
	var mu sync.Mutex
	received := map[string][]string{}
	handler := func(name string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			var evt model.HistoryEvent
			if json.Unmarshal(body, &evt) != nil || r.Header.Get("X-Event-Type") != "record.status_changed" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			mu.Lock()
			received[name] = append(received[name], evt.RecordID)
			mu.Unlock()
			w.WriteHeader(http.StatusAccepted)
		}
	}
	first := httptest.NewServer(handler("first"))
	defer first.Close()
	second := httptest.NewServer(handler("second"))
	defer second.Close()

	repo, events := setupEvents(t, 3)
	logger, _ := test.NewNullLogger()
	d := NewEventDispatcher(repo, config.EventsConfig{
		Webhooks: []string{first.URL, second.URL},
		Workers:  2,
	}, logger)

	attempted, err := d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, attempted)

	assert.ElementsMatch(t, []string{"wa", "wb", "wc"}, received["first"])
	assert.ElementsMatch(t, []string{"wa", "wb", "wc"}, received["second"])
	for _, evt := range events {
		assert.Equal(t, model.EventStatusSuccess, statusByID(t, repo, evt).Status)
	}

	attempted, err = d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, attempted)
}

func TestDispatchOnce_NoWebhooksMarksDelivered(t *testing.T) {
	repo, events := setupEvents(t, 1)
	d := NewEventDispatcher(repo, config.EventsConfig{}, nil)

	_, err := d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.EventStatusSuccess, statusByID(t, repo, events[0]).Status)
}

func TestDispatchOnce_RetriesWithBackoffThenFails(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	repo, events := setupEvents(t, 1)
	d := NewEventDispatcher(repo, config.EventsConfig{
		Webhooks:     []string{srv.URL},
		MaxRetries:   2,
		PollInterval: time.Minute,
	}, nil)
	clock := time.Now()
	d.now = func() time.Time { return clock }

	attempted, err := d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, attempted)
	evt := statusByID(t, repo, events[0])
	assert.Equal(t, model.EventStatusPending, evt.Status)
	assert.Equal(t, 1, evt.RetryCount)
	assert.Contains(t, evt.LastError, "500")

	attempted, err = d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, attempted, "retry must wait for the backoff window")

	clock = clock.Add(2 * time.Minute)
	attempted, err = d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, attempted)

	evt = statusByID(t, repo, events[0])
	assert.Equal(t, model.EventStatusFailed, evt.Status)
	assert.Equal(t, 2, evt.RetryCount)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestDispatchOnce_BackoffDoesNotStarveNewEvents(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("X-Event-ID"))
		mu.Unlock()
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	repo, events := setupEvents(t, 2)
	d := NewEventDispatcher(repo, config.EventsConfig{
		Webhooks:     []string{srv.URL},
		BatchSize:    1,
		MaxRetries:   5,
		PollInterval: time.Minute,
	}, nil)
	clock := time.Now()
	d.now = func() time.Time { return clock }

	for i := 0; i < 2; i++ {
		attempted, err := d.DispatchOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, attempted)
	}

	assert.ElementsMatch(t, []string{events[0].ID, events[1].ID}, seen)
	for _, evt := range events {
		assert.Equal(t, 1, statusByID(t, repo, evt).RetryCount)
	}

	attempted, err := d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, attempted)
}

func TestEventDispatcher_StartStop(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	repo, _ := setupEvents(t, 2)
	d := NewEventDispatcher(repo, config.EventsConfig{
		Webhooks:     []string{srv.URL},
		PollInterval: 10 * time.Millisecond,
	}, nil)
	d.Start()
	defer d.Stop()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&hits) == 2 }, 2*time.Second, 10*time.Millisecond)
	d.Stop()
}
