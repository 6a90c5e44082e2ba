package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Vivek145899/GymBuddy/internal/activities"
	"github.com/Vivek145899/GymBuddy/internal/analytics"
	"github.com/Vivek145899/GymBuddy/internal/goals"
	"github.com/Vivek145899/GymBuddy/internal/store"
	"github.com/Vivek145899/GymBuddy/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type activitiesRepo interface {
	List(ctx context.Context, userID string) []activities.Activity
	Add(ctx context.Context, userID string, draft activities.Draft, now time.Time) (*activities.Activity, error)
	Update(ctx context.Context, id string, partial activities.Partial) (*activities.Activity, error)
	Delete(ctx context.Context, id string) error
}

type goalsRepo interface {
	List(ctx context.Context, userID string) []goals.Goal
	Add(ctx context.Context, userID string, draft goals.Draft, now time.Time) (*goals.Goal, error)
	Update(ctx context.Context, id string, partial goals.Partial) (*goals.Goal, error)
	RecordProgress(ctx context.Context, id string, value int) (*goals.Goal, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrNoOpenForm           = errors.New("no open form to submit")
	ErrConfirmationNotFound = errors.New("pending confirmation not found")
	ErrUnknownView          = errors.New("unknown dashboard view")
	ErrUnknownConfirmAction = errors.New("unknown confirmation action")
)

type View string

const (
	ViewActivities View = "activities"
	ViewProgress   View = "progress"
	ViewGoals      View = "goals"
)

func (v View) IsValid() bool {
	switch v {
	case ViewActivities, ViewProgress, ViewGoals:
		return true
	}
	return false
}

type FormState string

const (
	FormIdle       FormState = "idle"
	FormOpen       FormState = "open"
	FormSubmitting FormState = "submitting"
)

type ConfirmAction string

const (
	ConfirmDeleteActivity ConfirmAction = "delete-activity"
	ConfirmDeleteGoal     ConfirmAction = "delete-goal"
)

// Confirmation is a pending destructive intent. Nothing happens to
// the data until the caller commits it through Confirm; Cancel just
// forgets it.
type Confirmation struct {
	ID       string        `json:"id"`
	Action   ConfirmAction `json:"action"`
	TargetID string        `json:"targetId"`
}

type GoalView struct {
	goals.Goal
	Percent int `json:"percent"`
}

// ViewModel is the fully computed dashboard state handed to the UI.
// All aggregates are precomputed; consumers render them verbatim.
type ViewModel struct {
	View             View                  `json:"view"`
	ActivityForm     FormState             `json:"activityForm"`
	GoalForm         FormState             `json:"goalForm"`
	FormError        string                `json:"formError,omitempty"`
	Activities       []activities.Activity `json:"activities"`
	Goals            []GoalView            `json:"goals"`
	Summary          analytics.Summary     `json:"summary"`
	WeeklyDuration   []analytics.DayBucket `json:"weeklyDuration"`
	WeeklyCalories   []analytics.DayBucket `json:"weeklyCalories"`
	TypeDistribution []analytics.TypeCount `json:"typeDistribution"`
	Streak           int                   `json:"streak"`
	ActiveGoals      int                   `json:"activeGoals"`
	CompletedGoals   int                   `json:"completedGoals"`
}

// Controller drives the dashboard for one signed in user. It keeps
// in-memory snapshots of that user's activities and goals, mutates
// through the repos, and recomputes every aggregate after each write.
// The snapshots are refreshed from the repos after every mutation
// instead of being patched by hand, which keeps them in lockstep with
// what got persisted.
//
// NowFunc is the single place a live clock is read; analytics get the
// reference time from here.
type Controller struct {
	userID         string
	activitiesRepo activitiesRepo
	goalsRepo      goalsRepo

	NowFunc func() time.Time

	mutex         sync.Mutex
	view          View
	activityForm  FormState
	goalForm      FormState
	formError     string
	confirmIDs    *store.IDGenerator
	confirmations map[string]Confirmation
	viewModel     ViewModel
}

func NewController(userID string, activitiesRepo activitiesRepo, goalsRepo goalsRepo) *Controller {
	return &Controller{
		userID:         userID,
		activitiesRepo: activitiesRepo,
		goalsRepo:      goalsRepo,
		NowFunc:        time.Now,
		view:           ViewActivities,
		activityForm:   FormIdle,
		goalForm:       FormIdle,
		confirmIDs:     &store.IDGenerator{},
		confirmations:  make(map[string]Confirmation),
	}
}

// Refresh reloads both snapshots from the repos and recomputes the
// view model. Called at session start and after every mutation.
func (c *Controller) Refresh(ctx context.Context) ViewModel {
	ctx, span := tracing.GlobalTracer.Start(ctx, "dashboard.refresh")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", c.userID))

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.recompute(ctx)
	return c.viewModel
}

// State returns the last computed view model without touching storage.
func (c *Controller) State() ViewModel {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.viewModel
}

// SetView switches the active presentation and recomputes, so a view
// opened after a long idle period shows aggregates for the current
// day, not the day of the last mutation.
func (c *Controller) SetView(ctx context.Context, view View) (ViewModel, error) {
	if !view.IsValid() {
		return c.State(), fmt.Errorf("%w: %q", ErrUnknownView, view)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.view = view
	c.recompute(ctx)
	return c.viewModel, nil
}

func (c *Controller) StartAddActivity() ViewModel {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.activityForm = FormOpen
	c.formError = ""
	c.syncFormState()
	return c.viewModel
}

func (c *Controller) StartAddGoal() ViewModel {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.goalForm = FormOpen
	c.formError = ""
	c.syncFormState()
	return c.viewModel
}

// CancelForm closes both forms and drops any form error.
func (c *Controller) CancelForm() ViewModel {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.activityForm = FormIdle
	c.goalForm = FormIdle
	c.formError = ""
	c.syncFormState()
	return c.viewModel
}

// SubmitActivity runs the repo validation for the open activity form.
// A validation failure reopens the form with the error attached and
// leaves the collections untouched.
func (c *Controller) SubmitActivity(ctx context.Context, draft activities.Draft) (ViewModel, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "dashboard.submitActivity")
	defer span.End()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.activityForm != FormOpen {
		return c.viewModel, ErrNoOpenForm
	}
	c.activityForm = FormSubmitting

	if _, err := c.activitiesRepo.Add(ctx, c.userID, draft, c.NowFunc()); err != nil {
		c.activityForm = FormOpen
		c.formError = err.Error()
		c.syncFormState()
		return c.viewModel, err
	}

	c.activityForm = FormIdle
	c.formError = ""
	c.recompute(ctx)
	return c.viewModel, nil
}

func (c *Controller) SubmitGoal(ctx context.Context, draft goals.Draft) (ViewModel, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "dashboard.submitGoal")
	defer span.End()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.goalForm != FormOpen {
		return c.viewModel, ErrNoOpenForm
	}
	c.goalForm = FormSubmitting

	if _, err := c.goalsRepo.Add(ctx, c.userID, draft, c.NowFunc()); err != nil {
		c.goalForm = FormOpen
		c.formError = err.Error()
		c.syncFormState()
		return c.viewModel, err
	}

	c.goalForm = FormIdle
	c.formError = ""
	c.recompute(ctx)
	return c.viewModel, nil
}

func (c *Controller) UpdateActivity(ctx context.Context, id string, partial activities.Partial) (ViewModel, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "dashboard.updateActivity")
	defer span.End()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.ownsActivity(id) {
		return c.viewModel, activities.ErrActivityNotFound
	}
	if _, err := c.activitiesRepo.Update(ctx, id, partial); err != nil {
		return c.viewModel, err
	}
	c.recompute(ctx)
	return c.viewModel, nil
}

func (c *Controller) UpdateGoal(ctx context.Context, id string, partial goals.Partial) (ViewModel, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "dashboard.updateGoal")
	defer span.End()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.ownsGoal(id) {
		return c.viewModel, goals.ErrGoalNotFound
	}
	if _, err := c.goalsRepo.Update(ctx, id, partial); err != nil {
		return c.viewModel, err
	}
	c.recompute(ctx)
	return c.viewModel, nil
}

func (c *Controller) RecordGoalProgress(ctx context.Context, id string, value int) (ViewModel, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "dashboard.recordGoalProgress")
	defer span.End()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.ownsGoal(id) {
		return c.viewModel, goals.ErrGoalNotFound
	}
	if _, err := c.goalsRepo.RecordProgress(ctx, id, value); err != nil {
		return c.viewModel, err
	}
	c.recompute(ctx)
	return c.viewModel, nil
}

// RequestDeleteActivity registers the intent to delete and hands back
// a pending confirmation. The activity stays until Confirm.
func (c *Controller) RequestDeleteActivity(id string) (*Confirmation, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.ownsActivity(id) {
		return nil, activities.ErrActivityNotFound
	}
	return c.addConfirmation(ConfirmDeleteActivity, id), nil
}

func (c *Controller) RequestDeleteGoal(id string) (*Confirmation, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.ownsGoal(id) {
		return nil, goals.ErrGoalNotFound
	}
	return c.addConfirmation(ConfirmDeleteGoal, id), nil
}

// Confirm commits a previously requested destructive action.
func (c *Controller) Confirm(ctx context.Context, confirmationID string) (ViewModel, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "dashboard.confirm")
	defer span.End()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	confirmation, ok := c.confirmations[confirmationID]
	if !ok {
		return c.viewModel, ErrConfirmationNotFound
	}
	delete(c.confirmations, confirmationID)

	var err error
	switch confirmation.Action {
	case ConfirmDeleteActivity:
		err = c.activitiesRepo.Delete(ctx, confirmation.TargetID)
	case ConfirmDeleteGoal:
		err = c.goalsRepo.Delete(ctx, confirmation.TargetID)
	default:
		return c.viewModel, fmt.Errorf("%w: %q", ErrUnknownConfirmAction, confirmation.Action)
	}
	if err != nil {
		return c.viewModel, err
	}

	c.recompute(ctx)
	return c.viewModel, nil
}

// CancelConfirmation drops a pending confirmation. Unknown ids are a
// no-op, same as deleting something already gone.
func (c *Controller) CancelConfirmation(confirmationID string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.confirmations, confirmationID)
}

func (c *Controller) addConfirmation(action ConfirmAction, targetID string) *Confirmation {
	confirmation := Confirmation{
		ID:       c.confirmIDs.Next(c.NowFunc()),
		Action:   action,
		TargetID: targetID,
	}
	c.confirmations[confirmation.ID] = confirmation
	return &confirmation
}

func (c *Controller) ownsActivity(id string) bool {
	for _, activity := range c.viewModel.Activities {
		if activity.ID == id {
			return true
		}
	}
	return false
}

func (c *Controller) ownsGoal(id string) bool {
	for _, goal := range c.viewModel.Goals {
		if goal.ID == id {
			return true
		}
	}
	return false
}

// recompute rebuilds the snapshots from the repos and reruns every
// aggregate with the current clock as reference. Caller holds the
// mutex.
func (c *Controller) recompute(ctx context.Context) {
	now := c.NowFunc()

	userActivities := c.activitiesRepo.List(ctx, c.userID)
	userGoals := c.goalsRepo.List(ctx, c.userID)

	goalViews := make([]GoalView, 0, len(userGoals))
	for _, goal := range userGoals {
		goalViews = append(goalViews, GoalView{
			Goal:    goal,
			Percent: analytics.GoalProgressPercent(goal.Progress, goal.Target),
		})
	}

	c.viewModel = ViewModel{
		View:             c.view,
		ActivityForm:     c.activityForm,
		GoalForm:         c.goalForm,
		FormError:        c.formError,
		Activities:       userActivities,
		Goals:            goalViews,
		Summary:          analytics.SummaryStats(userActivities),
		WeeklyDuration:   analytics.WeeklySeries(userActivities, now, analytics.FieldDuration),
		WeeklyCalories:   analytics.WeeklySeries(userActivities, now, analytics.FieldCalories),
		TypeDistribution: analytics.TypeDistribution(userActivities),
		Streak:           analytics.StreakLength(userActivities, now),
		ActiveGoals:      analytics.ActiveGoalCount(userGoals),
		CompletedGoals:   analytics.CompletedGoalCount(userGoals),
	}

	log.Tracef("dashboard recomputed for user %s: %d activities, %d goals",
		c.userID, len(userActivities), len(userGoals))
}

// syncFormState refreshes only the form related view model fields,
// leaving the aggregates as they were. Caller holds the mutex.
func (c *Controller) syncFormState() {
	c.viewModel.View = c.view
	c.viewModel.ActivityForm = c.activityForm
	c.viewModel.GoalForm = c.goalForm
	c.viewModel.FormError = c.formError
}
