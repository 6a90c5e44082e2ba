package goals

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Vivek145899/GymBuddy/internal/store"
	"github.com/Vivek145899/GymBuddy/internal/telemetry/metrics"
	"github.com/Vivek145899/GymBuddy/internal/users"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessionProvider struct {
	session *users.Session
	err     error
}

func (f *fakeSessionProvider) CurrentSession(_ context.Context) (*users.Session, error) {
	return f.session, f.err
}

func newTestHandler(t *testing.T) (*mux.Router, *Repo, *fakeSessionProvider) {
	t.Helper()
	repo := NewRepo(store.NewTestStore())
	sessions := &fakeSessionProvider{
		session: &users.Session{ID: "u1", Name: "Mila", Email: "mila@example.com"},
	}
	handler := NewHandler(repo, sessions, metrics.NewTestManager())

	router := mux.NewRouter()
	handler.SetupRoutes(router)
	return router, repo, sessions
}

func TestHandler_AddAndList(t *testing.T) {
	router, _, _ := newTestHandler(t)

	body := `{"title":"run 10 times","type":"cardio","target":10,"unit":"times"}`
	req := httptest.NewRequest("POST", "/goals", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var added Goal
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &added))
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, "u1", added.UserID)
	assert.Zero(t, added.Progress)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/goals", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var listed ListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listed))
	assert.Equal(t, 1, listed.Total)
}

func TestHandler_AddValidationError(t *testing.T) {
	router, repo, _ := newTestHandler(t)

	body := `{"title":"no target"}`
	req := httptest.NewRequest("POST", "/goals", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, repo.List(context.Background(), "u1"))
}

func TestHandler_NotSignedIn(t *testing.T) {
	router, _, sessions := newTestHandler(t)
	sessions.session = nil
	sessions.err = fmt.Errorf("no active session")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/goals", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandler_Progress(t *testing.T) {
	router, repo, _ := newTestHandler(t)
	ctx := context.Background()

	added, err := repo.Add(ctx, "u1", Draft{Title: "goal", Target: 10}, time.Now())
	require.NoError(t, err)

	progress := func(value int) *Goal {
		body := fmt.Sprintf(`{"value":%d}`, value)
		req := httptest.NewRequest("POST", "/goals/"+added.ID+"/progress", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		var updated Goal
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
		return &updated
	}

	assert.Equal(t, 7, progress(7).Progress)
	assert.Equal(t, 10, progress(15).Progress)
	assert.Equal(t, 0, progress(-5).Progress)
}

func TestHandler_ProgressOtherUsersGoal(t *testing.T) {
	router, repo, _ := newTestHandler(t)

	other, err := repo.Add(context.Background(), "u2", Draft{Title: "goal", Target: 10}, time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/goals/"+other.ID+"/progress", strings.NewReader(`{"value":5}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_Update(t *testing.T) {
	router, repo, _ := newTestHandler(t)

	added, err := repo.Add(context.Background(), "u1", Draft{Title: "goal", Target: 10}, time.Now())
	require.NoError(t, err)

	body := `{"title":"renamed goal"}`
	req := httptest.NewRequest("PUT", "/goals/"+added.ID, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var updated Goal
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, "renamed goal", updated.Title)
	assert.Equal(t, 10, updated.Target)
}

func TestHandler_Delete(t *testing.T) {
	router, repo, _ := newTestHandler(t)
	ctx := context.Background()

	added, err := repo.Add(ctx, "u1", Draft{Title: "goal", Target: 10}, time.Now())
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("DELETE", "/goals/"+added.ID, nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp DeleteGoalResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, added.ID, resp.DeletedID)
	assert.Empty(t, repo.List(ctx, "u1"))

	// idempotent
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("DELETE", "/goals/"+added.ID, nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}
