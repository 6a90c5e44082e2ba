package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/Vivek145899/GymBuddy/internal/activities"
	"github.com/Vivek145899/GymBuddy/internal/goals"
	"github.com/Vivek145899/GymBuddy/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(t *testing.T) (*Controller, *activities.Repo, *goals.Repo) {
	t.Helper()
	s := store.NewTestStore()
	activitiesRepo := activities.NewRepo(s)
	goalsRepo := goals.NewRepo(s)
	controller := NewController("u1", activitiesRepo, goalsRepo)
	controller.NowFunc = func() time.Time {
		return time.Date(2024, 3, 18, 15, 0, 0, 0, time.UTC)
	}
	return controller, activitiesRepo, goalsRepo
}

func TestController_RefreshEmpty(t *testing.T) {
	controller, _, _ := newTestController(t)

	vm := controller.Refresh(context.Background())

	assert.Equal(t, ViewActivities, vm.View)
	assert.Equal(t, FormIdle, vm.ActivityForm)
	assert.Equal(t, FormIdle, vm.GoalForm)
	assert.Empty(t, vm.Activities)
	assert.Empty(t, vm.Goals)
	assert.Zero(t, vm.Summary.TotalWorkouts)
	assert.Len(t, vm.WeeklyDuration, 7)
	assert.Len(t, vm.WeeklyCalories, 7)
	assert.Zero(t, vm.Streak)
}

func TestController_SetView(t *testing.T) {
	controller, _, _ := newTestController(t)
	ctx := context.Background()

	vm, err := controller.SetView(ctx, ViewGoals)
	require.NoError(t, err)
	assert.Equal(t, ViewGoals, vm.View)

	_, err = controller.SetView(ctx, View("calendar"))
	assert.ErrorIs(t, err, ErrUnknownView)
	assert.Equal(t, ViewGoals, controller.State().View)
}

func TestController_SubmitActivity(t *testing.T) {
	controller, _, _ := newTestController(t)
	ctx := context.Background()

	vm := controller.StartAddActivity()
	assert.Equal(t, FormOpen, vm.ActivityForm)

	vm, err := controller.SubmitActivity(ctx, activities.Draft{
		Name:     "morning run",
		Type:     activities.TypeRunning,
		Duration: 30,
		Calories: 300,
	})
	require.NoError(t, err)

	assert.Equal(t, FormIdle, vm.ActivityForm)
	assert.Empty(t, vm.FormError)
	require.Len(t, vm.Activities, 1)
	assert.Equal(t, "morning run", vm.Activities[0].Name)
	assert.Equal(t, 1, vm.Summary.TotalWorkouts)
	assert.Equal(t, 1, vm.Streak)
	assert.Equal(t, 30, vm.WeeklyDuration[6].Value)
	assert.Equal(t, 300, vm.WeeklyCalories[6].Value)
}

func TestController_SubmitActivityValidationFailure(t *testing.T) {
	controller, _, _ := newTestController(t)
	ctx := context.Background()

	controller.StartAddActivity()
	vm, err := controller.SubmitActivity(ctx, activities.Draft{Name: "no duration"})
	require.ErrorIs(t, err, activities.ErrValidation)

	// form reopens with the error attached, nothing got stored
	assert.Equal(t, FormOpen, vm.ActivityForm)
	assert.NotEmpty(t, vm.FormError)
	assert.Empty(t, vm.Activities)

	// a corrected resubmit goes through without reopening the form
	vm, err = controller.SubmitActivity(ctx, activities.Draft{Name: "fixed", Duration: 20})
	require.NoError(t, err)
	assert.Equal(t, FormIdle, vm.ActivityForm)
	assert.Empty(t, vm.FormError)
	require.Len(t, vm.Activities, 1)
}

func TestController_SubmitWithoutOpenForm(t *testing.T) {
	controller, _, _ := newTestController(t)
	ctx := context.Background()

	_, err := controller.SubmitActivity(ctx, activities.Draft{Name: "run", Duration: 30})
	assert.ErrorIs(t, err, ErrNoOpenForm)

	_, err = controller.SubmitGoal(ctx, goals.Draft{Title: "goal", Target: 10})
	assert.ErrorIs(t, err, ErrNoOpenForm)
}

func TestController_CancelForm(t *testing.T) {
	controller, _, _ := newTestController(t)

	controller.StartAddGoal()
	vm := controller.CancelForm()
	assert.Equal(t, FormIdle, vm.ActivityForm)
	assert.Equal(t, FormIdle, vm.GoalForm)
	assert.Empty(t, vm.FormError)
}

func TestController_SubmitGoal(t *testing.T) {
	controller, _, _ := newTestController(t)
	ctx := context.Background()

	controller.StartAddGoal()
	vm, err := controller.SubmitGoal(ctx, goals.Draft{
		Title:  "run 10 times",
		Type:   goals.TypeCardio,
		Target: 10,
	})
	require.NoError(t, err)

	require.Len(t, vm.Goals, 1)
	assert.Equal(t, 0, vm.Goals[0].Percent)
	assert.Equal(t, 1, vm.ActiveGoals)
	assert.Zero(t, vm.CompletedGoals)
}

func TestController_RecordGoalProgress(t *testing.T) {
	controller, _, goalsRepo := newTestController(t)
	ctx := context.Background()

	goal, err := goalsRepo.Add(ctx, "u1", goals.Draft{Title: "goal", Target: 10}, time.Now())
	require.NoError(t, err)
	controller.Refresh(ctx)

	vm, err := controller.RecordGoalProgress(ctx, goal.ID, 5)
	require.NoError(t, err)
	require.Len(t, vm.Goals, 1)
	assert.Equal(t, 5, vm.Goals[0].Progress)
	assert.Equal(t, 50, vm.Goals[0].Percent)

	vm, err = controller.RecordGoalProgress(ctx, goal.ID, 25)
	require.NoError(t, err)
	assert.Equal(t, 10, vm.Goals[0].Progress)
	assert.Equal(t, 100, vm.Goals[0].Percent)
	assert.Equal(t, 1, vm.CompletedGoals)
	assert.Zero(t, vm.ActiveGoals)
}

func TestController_OwnershipChecks(t *testing.T) {
	controller, activitiesRepo, goalsRepo := newTestController(t)
	ctx := context.Background()

	otherActivity, err := activitiesRepo.Add(ctx, "u2", activities.Draft{Name: "run", Duration: 30}, time.Now())
	require.NoError(t, err)
	otherGoal, err := goalsRepo.Add(ctx, "u2", goals.Draft{Title: "goal", Target: 10}, time.Now())
	require.NoError(t, err)
	controller.Refresh(ctx)

	newName := "hijacked"
	_, err = controller.UpdateActivity(ctx, otherActivity.ID, activities.Partial{Name: &newName})
	assert.ErrorIs(t, err, activities.ErrActivityNotFound)

	_, err = controller.RecordGoalProgress(ctx, otherGoal.ID, 5)
	assert.ErrorIs(t, err, goals.ErrGoalNotFound)

	_, err = controller.RequestDeleteActivity(otherActivity.ID)
	assert.ErrorIs(t, err, activities.ErrActivityNotFound)

	_, err = controller.RequestDeleteGoal(otherGoal.ID)
	assert.ErrorIs(t, err, goals.ErrGoalNotFound)
}

func TestController_ConfirmDelete(t *testing.T) {
	controller, activitiesRepo, _ := newTestController(t)
	ctx := context.Background()

	activity, err := activitiesRepo.Add(ctx, "u1", activities.Draft{Name: "run", Duration: 30}, time.Now())
	require.NoError(t, err)
	controller.Refresh(ctx)

	confirmation, err := controller.RequestDeleteActivity(activity.ID)
	require.NoError(t, err)
	assert.Equal(t, ConfirmDeleteActivity, confirmation.Action)
	assert.Equal(t, activity.ID, confirmation.TargetID)

	// nothing is gone until the confirmation is committed
	assert.Len(t, activitiesRepo.List(ctx, "u1"), 1)

	vm, err := controller.Confirm(ctx, confirmation.ID)
	require.NoError(t, err)
	assert.Empty(t, vm.Activities)
	assert.Empty(t, activitiesRepo.List(ctx, "u1"))

	// a confirmation is single use
	_, err = controller.Confirm(ctx, confirmation.ID)
	assert.ErrorIs(t, err, ErrConfirmationNotFound)
}

func TestController_CancelConfirmation(t *testing.T) {
	controller, _, goalsRepo := newTestController(t)
	ctx := context.Background()

	goal, err := goalsRepo.Add(ctx, "u1", goals.Draft{Title: "goal", Target: 10}, time.Now())
	require.NoError(t, err)
	controller.Refresh(ctx)

	confirmation, err := controller.RequestDeleteGoal(goal.ID)
	require.NoError(t, err)

	controller.CancelConfirmation(confirmation.ID)
	assert.Len(t, goalsRepo.List(ctx, "u1"), 1)

	_, err = controller.Confirm(ctx, confirmation.ID)
	assert.ErrorIs(t, err, ErrConfirmationNotFound)

	// canceling twice, or canceling garbage, is a quiet no-op
	controller.CancelConfirmation(confirmation.ID)
	controller.CancelConfirmation("nope")
}

func TestController_ConfirmUnknownID(t *testing.T) {
	controller, _, _ := newTestController(t)

	_, err := controller.Confirm(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrConfirmationNotFound)
}

func TestController_StreakUsesInjectedClock(t *testing.T) {
	controller, activitiesRepo, _ := newTestController(t)
	ctx := context.Background()

	reference := controller.NowFunc()
	for offset := 0; offset < 3; offset++ {
		_, err := activitiesRepo.Add(ctx, "u1", activities.Draft{
			Name:     "run",
			Duration: 30,
		}, reference.AddDate(0, 0, -offset))
		require.NoError(t, err)
	}

	vm := controller.Refresh(ctx)
	assert.Equal(t, 3, vm.Streak)

	// move the clock one day forward, today is now uncovered
	controller.NowFunc = func() time.Time {
		return reference.AddDate(0, 0, 1)
	}
	vm = controller.Refresh(ctx)
	assert.Zero(t, vm.Streak)
}
