package goals

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrGoalNotFound = errors.New("goal not found")
	ErrValidation   = errors.New("invalid goal")
)

type GoalType string

const (
	TypeWorkout     GoalType = "workout"
	TypeCardio      GoalType = "cardio"
	TypeStrength    GoalType = "strength"
	TypeWeight      GoalType = "weight"
	TypeEndurance   GoalType = "endurance"
	TypeFlexibility GoalType = "flexibility"
	TypeOther       GoalType = "other"
)

func (t GoalType) IsValid() bool {
	switch t {
	case TypeWorkout, TypeCardio, TypeStrength, TypeWeight, TypeEndurance, TypeFlexibility, TypeOther:
		return true
	}
	return false
}

type Unit string

const (
	UnitTimes   Unit = "times"
	UnitMinutes Unit = "minutes"
	UnitHours   Unit = "hours"
	UnitKg      Unit = "kg"
	UnitMiles   Unit = "miles"
	UnitKm      Unit = "km"
	UnitDays    Unit = "days"
	UnitWeeks   Unit = "weeks"
)

func (u Unit) IsValid() bool {
	switch u {
	case UnitTimes, UnitMinutes, UnitHours, UnitKg, UnitMiles, UnitKm, UnitDays, UnitWeeks:
		return true
	}
	return false
}

type Goal struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Type        GoalType   `json:"type"`
	Target      int        `json:"target"`
	Unit        Unit       `json:"unit"`
	Progress    int        `json:"progress"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Completed reports whether progress reached the target.
func (g Goal) Completed() bool {
	return g.Target > 0 && g.Progress >= g.Target
}

// Draft carries the client provided fields of a goal before it gets
// an id and an owner. Progress always starts at zero.
type Draft struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Type        GoalType   `json:"type"`
	Target      int        `json:"target"`
	Unit        Unit       `json:"unit"`
	Deadline    *time.Time `json:"deadline"`
}

func (d *Draft) validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if d.Target <= 0 {
		return fmt.Errorf("%w: target must be positive", ErrValidation)
	}
	if d.Type == "" {
		d.Type = TypeOther
	}
	if !d.Type.IsValid() {
		return fmt.Errorf("%w: unknown goal type %q", ErrValidation, d.Type)
	}
	if d.Unit == "" {
		d.Unit = UnitTimes
	}
	if !d.Unit.IsValid() {
		return fmt.Errorf("%w: unknown unit %q", ErrValidation, d.Unit)
	}
	return nil
}

// Partial is a shallow patch for a goal. Nil fields stay untouched,
// so a patch can set a deadline but not clear one. ID, UserID,
// Progress and CreatedAt are not patchable; progress moves only
// through RecordProgress.
type Partial struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Type        *GoalType  `json:"type"`
	Target      *int       `json:"target"`
	Unit        *Unit      `json:"unit"`
	Deadline    *time.Time `json:"deadline"`
}

func (p Partial) applyTo(goal *Goal) error {
	if p.Title != nil {
		if strings.TrimSpace(*p.Title) == "" {
			return fmt.Errorf("%w: title is required", ErrValidation)
		}
		goal.Title = *p.Title
	}
	if p.Description != nil {
		goal.Description = *p.Description
	}
	if p.Type != nil {
		if !p.Type.IsValid() {
			return fmt.Errorf("%w: unknown goal type %q", ErrValidation, *p.Type)
		}
		goal.Type = *p.Type
	}
	if p.Target != nil {
		if *p.Target <= 0 {
			return fmt.Errorf("%w: target must be positive", ErrValidation)
		}
		goal.Target = *p.Target
		if goal.Progress > goal.Target {
			goal.Progress = goal.Target
		}
	}
	if p.Unit != nil {
		if !p.Unit.IsValid() {
			return fmt.Errorf("%w: unknown unit %q", ErrValidation, *p.Unit)
		}
		goal.Unit = *p.Unit
	}
	if p.Deadline != nil {
		goal.Deadline = p.Deadline
	}
	return nil
}
