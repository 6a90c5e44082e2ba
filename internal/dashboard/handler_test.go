package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Vivek145899/GymBuddy/internal/activities"
	"github.com/Vivek145899/GymBuddy/internal/goals"
	"github.com/Vivek145899/GymBuddy/internal/store"
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

func newTestHandlerRouter(t *testing.T) (*mux.Router, *Handler, *activities.Repo, *goals.Repo) {
	t.Helper()
	s := store.NewTestStore()
	activitiesRepo := activities.NewRepo(s)
	goalsRepo := goals.NewRepo(s)
	sessions := &fakeSessionProvider{
		session: &users.Session{ID: "u1", Name: "Mila", Email: "mila@example.com"},
	}
	handler := NewHandler(sessions, activitiesRepo, goalsRepo)

	router := mux.NewRouter()
	handler.SetupRoutes(router)
	return router, handler, activitiesRepo, goalsRepo
}

func TestHandler_Dashboard(t *testing.T) {
	router, _, activitiesRepo, _ := newTestHandlerRouter(t)
	ctx := context.Background()

	_, err := activitiesRepo.Add(ctx, "u1", activities.Draft{Name: "run", Duration: 30}, time.Now())
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/dashboard", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var vm ViewModel
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &vm))
	assert.Equal(t, ViewActivities, vm.View)
	assert.Equal(t, 1, vm.Summary.TotalWorkouts)
	assert.Len(t, vm.WeeklyDuration, 7)
}

func TestHandler_DashboardSwitchView(t *testing.T) {
	router, _, _, _ := newTestHandlerRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/dashboard?view=goals", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var vm ViewModel
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &vm))
	assert.Equal(t, ViewGoals, vm.View)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/dashboard?view=calendar", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_DashboardNotSignedIn(t *testing.T) {
	router, handler, _, _ := newTestHandlerRouter(t)
	sessions := handler.sessions.(*fakeSessionProvider)
	sessions.session = nil
	sessions.err = fmt.Errorf("no active session")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/dashboard", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandler_ConfirmFlow(t *testing.T) {
	router, handler, activitiesRepo, _ := newTestHandlerRouter(t)
	ctx := context.Background()

	activity, err := activitiesRepo.Add(ctx, "u1", activities.Draft{Name: "run", Duration: 30}, time.Now())
	require.NoError(t, err)

	controller := handler.ControllerFor("u1")
	controller.Refresh(ctx)
	confirmation, err := controller.RequestDeleteActivity(activity.ID)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("POST", "/dashboard/confirmations/"+confirmation.ID, nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var vm ViewModel
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &vm))
	assert.Empty(t, vm.Activities)
	assert.Empty(t, activitiesRepo.List(ctx, "u1"))
}

func TestHandler_ConfirmUnknownID(t *testing.T) {
	router, _, _, _ := newTestHandlerRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("POST", "/dashboard/confirmations/missing", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_CancelConfirmation(t *testing.T) {
	router, handler, _, goalsRepo := newTestHandlerRouter(t)
	ctx := context.Background()

	goal, err := goalsRepo.Add(ctx, "u1", goals.Draft{Title: "goal", Target: 10}, time.Now())
	require.NoError(t, err)

	controller := handler.ControllerFor("u1")
	controller.Refresh(ctx)
	confirmation, err := controller.RequestDeleteGoal(goal.ID)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("DELETE", "/dashboard/confirmations/"+confirmation.ID, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"canceled":true}`, rr.Body.String())

	// the goal is still there, and the confirmation is gone
	assert.Len(t, goalsRepo.List(ctx, "u1"), 1)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("POST", "/dashboard/confirmations/"+confirmation.ID, nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

type panickyActivitiesRepo struct{}

func (p *panickyActivitiesRepo) List(_ context.Context, _ string) []activities.Activity {
	panic("storage exploded")
}

func (p *panickyActivitiesRepo) Add(_ context.Context, _ string, _ activities.Draft, _ time.Time) (*activities.Activity, error) {
	panic("storage exploded")
}

func (p *panickyActivitiesRepo) Update(_ context.Context, _ string, _ activities.Partial) (*activities.Activity, error) {
	panic("storage exploded")
}

func (p *panickyActivitiesRepo) Delete(_ context.Context, _ string) error {
	panic("storage exploded")
}

func TestHandler_DashboardFallbackOnPanic(t *testing.T) {
	s := store.NewTestStore()
	sessions := &fakeSessionProvider{
		session: &users.Session{ID: "u1", Name: "Mila"},
	}
	handler := NewHandler(sessions, &panickyActivitiesRepo{}, goals.NewRepo(s))

	router := mux.NewRouter()
	handler.SetupRoutes(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/dashboard", nil))

	// the client still gets a renderable payload with a retry hint
	require.Equal(t, http.StatusOK, rr.Code)
	var fallback FallbackResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &fallback))
	assert.True(t, fallback.Retry)
	assert.NotEmpty(t, fallback.Error)
}
