package goals

import (
	"context"
	"sync"
	"time"

	"github.com/Vivek145899/GymBuddy/internal/store"
	"github.com/Vivek145899/GymBuddy/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// Repo keeps all goals of all users in a single document under the
// goals key, filtered per owner on the way out. Same storage shape as
// the activities repo.
type Repo struct {
	store store.Store
	ids   *store.IDGenerator
	mutex sync.Mutex
}

func NewRepo(s store.Store) *Repo {
	return &Repo{
		store: s,
		ids:   &store.IDGenerator{},
	}
}

// List returns the goals owned by userID, in insertion order.
func (r *Repo) List(ctx context.Context, userID string) []Goal {
	_, span := tracing.GlobalTracer.Start(ctx, "goals.repo.list")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	r.mutex.Lock()
	defer r.mutex.Unlock()

	userGoals := make([]Goal, 0)
	for _, goal := range r.listAll(ctx) {
		if goal.UserID == userID {
			userGoals = append(userGoals, goal)
		}
	}
	return userGoals
}

func (r *Repo) Get(ctx context.Context, id string) (*Goal, error) {
	_, span := tracing.GlobalTracer.Start(ctx, "goals.repo.get")
	defer span.End()
	span.SetAttributes(attribute.String("goal.id", id))

	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, goal := range r.listAll(ctx) {
		if goal.ID == id {
			g := goal
			return &g, nil
		}
	}
	return nil, ErrGoalNotFound
}

func (r *Repo) Add(ctx context.Context, userID string, draft Draft, now time.Time) (_ *Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "goals.repo.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := draft.validate(); err != nil {
		return nil, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	goal := Goal{
		ID:          r.ids.Next(now),
		UserID:      userID,
		Title:       draft.Title,
		Description: draft.Description,
		Type:        draft.Type,
		Target:      draft.Target,
		Unit:        draft.Unit,
		Progress:    0,
		Deadline:    draft.Deadline,
		CreatedAt:   now,
	}

	all := append(r.listAll(ctx), goal)
	r.store.Set(ctx, store.KeyGoals, all)

	log.Debugf("goal added: [%s] %s", goal.ID, goal.Title)
	return &goal, nil
}

func (r *Repo) Update(ctx context.Context, id string, partial Partial) (_ *Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "goals.repo.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("goal.id", id))

	r.mutex.Lock()
	defer r.mutex.Unlock()

	all := r.listAll(ctx)
	for i := range all {
		if all[i].ID != id {
			continue
		}
		if err := partial.applyTo(&all[i]); err != nil {
			return nil, err
		}
		r.store.Set(ctx, store.KeyGoals, all)
		updated := all[i]
		return &updated, nil
	}
	return nil, ErrGoalNotFound
}

// RecordProgress sets the goal progress to value clamped into
// [0, target]. The raw value is never stored.
func (r *Repo) RecordProgress(ctx context.Context, id string, value int) (_ *Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "goals.repo.recordProgress")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("goal.id", id))

	r.mutex.Lock()
	defer r.mutex.Unlock()

	all := r.listAll(ctx)
	for i := range all {
		if all[i].ID != id {
			continue
		}
		progress := value
		if progress < 0 {
			progress = 0
		}
		if progress > all[i].Target {
			progress = all[i].Target
		}
		all[i].Progress = progress
		r.store.Set(ctx, store.KeyGoals, all)
		updated := all[i]
		log.Debugf("goal [%s] progress now %d/%d", updated.ID, updated.Progress, updated.Target)
		return &updated, nil
	}
	return nil, ErrGoalNotFound
}

// Delete removes the goal if present. Deleting an unknown id is not
// an error.
func (r *Repo) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "goals.repo.delete")
	defer span.End()
	span.SetAttributes(attribute.String("goal.id", id))

	r.mutex.Lock()
	defer r.mutex.Unlock()

	all := r.listAll(ctx)
	kept := make([]Goal, 0, len(all))
	for _, goal := range all {
		if goal.ID != id {
			kept = append(kept, goal)
		}
	}
	if len(kept) == len(all) {
		return nil
	}

	r.store.Set(ctx, store.KeyGoals, kept)
	return nil
}

// listAll loads the shared goals document. Caller holds the mutex.
func (r *Repo) listAll(ctx context.Context) []Goal {
	var all []Goal
	if !r.store.Get(ctx, store.KeyGoals, &all) {
		return []Goal{}
	}
	if all == nil {
		all = []Goal{}
	}
	return all
}
