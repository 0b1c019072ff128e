package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/auth"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/workflow"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubChecker 按 relation 返回固定结果
type stubChecker struct {
	mu      sync.Mutex
	allowed map[string]bool
	err     error
	calls   int
}

func (s *stubChecker) CheckPermission(ctx context.Context, userID, relation, objectType, objectID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return false, s.err
	}
	return s.allowed[userID+"|"+relation+"|"+objectType+":"+objectID], nil
}

type recordedDecisions struct {
	mu        sync.Mutex
	decisions []auth.Decision
}

func (r *recordedDecisions) RecordDecision(ctx context.Context, d auth.Decision) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decisions = append(r.decisions, d)
	return nil
}

func TestPermissionCache_GetSet(t *testing.T) {
	cache := auth.NewPermissionCache(5 * time.Minute)

	key := "user:user-001:editor:workflow_resource:wbs"
	cache.Set(key, true)

	value, found := cache.Get(key)
	assert.True(t, found)
	assert.True(t, value)

	_, found = cache.Get("non-existent-key")
	assert.False(t, found)

	cache.Delete(key)
	_, found = cache.Get(key)
	assert.False(t, found)
}

func TestPermissionCache_Expiration(t *testing.T) {
	cache := auth.NewPermissionCache(50 * time.Millisecond)

	key := "user:user-001:reader:workflow_resource:budgets"
	cache.Set(key, true)
	_, found := cache.Get(key)
	assert.True(t, found)

	time.Sleep(80 * time.Millisecond)

	_, found = cache.Get(key)
	assert.False(t, found)
}

func TestCachedPermissionChecker(t *testing.T) {
	inner := &stubChecker{allowed: map[string]bool{"u1|editor|workflow_resource:wbs": true}}
	checker := auth.NewCachedPermissionChecker(inner, auth.NewPermissionCache(time.Minute))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := checker.CheckPermission(ctx, "u1", auth.RelationEditor, auth.ObjectType, "wbs")
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	assert.Equal(t, 1, inner.calls)

	checker.Invalidate("u1", auth.RelationEditor, auth.ObjectType, "wbs")
	_, err := checker.CheckPermission(ctx, "u1", auth.RelationEditor, auth.ObjectType, "wbs")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedPermissionChecker_ErrorsAreNotCached(t *testing.T) {
	inner := &stubChecker{err: errors.New("openfga unavailable")}
	checker := auth.NewCachedPermissionChecker(inner, auth.NewPermissionCache(time.Minute))

	_, err := checker.CheckPermission(context.Background(), "u1", auth.RelationReader, auth.ObjectType, "wbs")
	assert.Error(t, err)
	_, err = checker.CheckPermission(context.Background(), "u1", auth.RelationReader, auth.ObjectType, "wbs")
	assert.Error(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestRelationFor(t *testing.T) {
	assert.Equal(t, auth.RelationApprover, auth.RelationFor(workflow.TransitionApprove))
	assert.Equal(t, auth.RelationApprover, auth.RelationFor(workflow.TransitionReject))
	assert.Equal(t, auth.RelationEditor, auth.RelationFor(workflow.TransitionSubmit))
	assert.Equal(t, auth.RelationEditor, auth.RelationFor(workflow.TransitionSuspend))
	assert.Equal(t, auth.RelationEditor, auth.RelationFor(workflow.TransitionClose))
}

func TestGetPermissionModel(t *testing.T) {
	m := auth.GetPermissionModel()
	assert.Contains(t, m, "type "+auth.ObjectType)
	for _, rel := range []string{auth.RelationReader, auth.RelationEditor, auth.RelationApprover} {
		assert.Contains(t, m, "define "+rel+":")
	}
}

func newPermissionRouter(checker auth.PermissionChecker, recorder auth.DecisionRecorder, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set(auth.ContextUserID, userID)
		}
		c.Next()
	})
	router.POST("/wbs/:id/approve",
		auth.PermissionMiddleware(checker, auth.ObjectType, "wbs", auth.RelationApprover, recorder),
		func(c *gin.Context) { c.Status(http.StatusNoContent) },
	)
	return router
}

func TestPermissionMiddleware(t *testing.T) {
	checker := &stubChecker{allowed: map[string]bool{"boss|approver|workflow_resource:wbs": true}}

	t.Run("missing user", func(t *testing.T) {
		w := httptest.NewRecorder()
		newPermissionRouter(checker, nil, "").ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/wbs/w1/approve", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("allowed", func(t *testing.T) {
		rec := &recordedDecisions{}
		w := httptest.NewRecorder()
		newPermissionRouter(checker, rec, "boss").ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/wbs/w1/approve", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
		require.Len(t, rec.decisions, 1)
		assert.True(t, rec.decisions[0].Allowed)
		assert.Equal(t, "w1", rec.decisions[0].ResourceID)
		assert.Equal(t, auth.RelationApprover, rec.decisions[0].Relation)
	})

	t.Run("denied", func(t *testing.T) {
		rec := &recordedDecisions{}
		w := httptest.NewRecorder()
		newPermissionRouter(checker, rec, "intern").ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/wbs/w1/approve", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
		require.Len(t, rec.decisions, 1)
		assert.False(t, rec.decisions[0].Allowed)
		assert.NotEmpty(t, rec.decisions[0].Reason)
	})

	t.Run("checker error", func(t *testing.T) {
		w := httptest.NewRecorder()
		failing := &stubChecker{err: errors.New("openfga unavailable")}
		newPermissionRouter(failing, nil, "boss").ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/wbs/w1/approve", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("allow all", func(t *testing.T) {
		w := httptest.NewRecorder()
		newPermissionRouter(auth.AllowAllChecker{}, nil, "anyone").ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/wbs/w1/approve", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestHeaderIdentityMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(auth.HeaderIdentityMiddleware())
	router.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": auth.UserID(c), "groups": auth.Groups(c)})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(auth.UserIDHeader, " user-001 ")
	req.Header.Set(auth.GroupsHeader, "finance, pmo,,")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"user-001","groups":["finance","pmo"]}`, w.Body.String())
}
