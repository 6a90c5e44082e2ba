package users

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Vivek145899/GymBuddy/internal/store"
	"github.com/Vivek145899/GymBuddy/internal/telemetry/tracing"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user with this email already exists")
)

// Repo holds all registered users as one flat list under the "users"
// store key. The fitness core only reads it; registration is the one
// write path.
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

func (r *Repo) List(ctx context.Context) []User {
	var all []User
	r.store.Get(ctx, store.KeyUsers, &all)
	return all
}

func (r *Repo) Get(ctx context.Context, id string) (*User, error) {
	for _, u := range r.List(ctx) {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range r.List(ctx) {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

// Add appends a new user, assigning a fresh id and creation timestamp.
// Fails with ErrUserExists when the email is already taken.
func (r *Repo) Add(ctx context.Context, user User, now time.Time) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "users.repo.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	r.mutex.Lock()
	defer r.mutex.Unlock()

	all := r.List(ctx)
	for _, u := range all {
		if u.Email == user.Email {
			return nil, ErrUserExists
		}
	}

	user.ID = r.ids.Next(now)
	user.CreatedAt = now

	all = append(all, user)
	r.store.Set(ctx, store.KeyUsers, all)

	return &user, nil
}
