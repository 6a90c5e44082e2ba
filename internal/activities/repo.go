package activities

import (
	"context"
	"sync"
	"time"

	"github.com/Vivek145899/GymBuddy/internal/store"
	"github.com/Vivek145899/GymBuddy/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// Repo persists the activities collection as one flat list under the
// "activities" store key. The list is shared across all users, which
// is why every read goes through the user id filter in List. Failed
// mutations leave both the list and the stored document untouched.
type Repo struct {
	store store.Store
	ids   store.IDGenerator
	mutex sync.Mutex
}

func NewRepo(s store.Store) *Repo {
	return &Repo{
		store: s,
	}
}

// List returns the activities of the given user only, in insertion
// order. Chronological order is not guaranteed - callers needing it
// must sort by date themselves.
func (r *Repo) List(ctx context.Context, userID string) []Activity {
	_, span := tracing.GlobalTracer.Start(ctx, "activities.repo.list")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	mine := make([]Activity, 0)
	for _, a := range r.listAll(ctx) {
		if a.UserID == userID {
			mine = append(mine, a)
		}
	}
	return mine
}

func (r *Repo) Get(ctx context.Context, id string) (*Activity, error) {
	for _, a := range r.listAll(ctx) {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, ErrActivityNotFound
}

// Add validates the draft, assigns a fresh id (and date, unless the
// draft forces one) from the given instant, appends the activity and
// persists the whole collection.
func (r *Repo) Add(ctx context.Context, userID string, draft Draft, now time.Time) (_ *Activity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "activities.repo.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := draft.validate(); err != nil {
		return nil, err
	}

	date := draft.Date
	if date.IsZero() {
		date = now
	}

	activity := Activity{
		ID:        r.ids.Next(now),
		UserID:    userID,
		Type:      draft.Type,
		Name:      draft.Name,
		Duration:  draft.Duration,
		Calories:  draft.Calories,
		Intensity: draft.Intensity,
		Notes:     draft.Notes,
		Date:      date,
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	all := append(r.listAll(ctx), activity)
	r.store.Set(ctx, store.KeyActivities, all)

	log.Debugf("new activity added: [%s] %s", activity.ID, activity.Name)
	return &activity, nil
}

// Update shallow-merges the partial into the matching activity and
// re-persists the collection. Unknown id fails with
// ErrActivityNotFound and writes nothing.
func (r *Repo) Update(ctx context.Context, id string, partial Partial) (_ *Activity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "activities.repo.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	r.mutex.Lock()
	defer r.mutex.Unlock()

	all := r.listAll(ctx)
	for i := range all {
		if all[i].ID != id {
			continue
		}
		partial.applyTo(&all[i])
		r.store.Set(ctx, store.KeyActivities, all)
		updated := all[i]
		return &updated, nil
	}

	return nil, ErrActivityNotFound
}

// Delete removes the matching activity. Deleting a missing id is a
// successful no-op.
func (r *Repo) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "activities.repo.delete")
	defer span.End()

	r.mutex.Lock()
	defer r.mutex.Unlock()

	all := r.listAll(ctx)
	kept := all[:0]
	var removed bool
	for _, a := range all {
		if a.ID == id {
			removed = true
			continue
		}
		kept = append(kept, a)
	}

	if removed {
		r.store.Set(ctx, store.KeyActivities, kept)
		log.Debugf("activity [%s] deleted", id)
	}

	return nil
}

func (r *Repo) listAll(ctx context.Context) []Activity {
	var all []Activity
	r.store.Get(ctx, store.KeyActivities, &all)
	return all
}
