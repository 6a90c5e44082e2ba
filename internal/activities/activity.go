package activities

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrActivityNotFound = errors.New("activity not found")
	ErrValidation       = errors.New("validation error")
)

// ActivityType can be one of:
//   - cardio, strength, yoga, pilates,
//   - swimming, cycling, running, walking, other
type ActivityType string

const (
	TypeCardio   ActivityType = "cardio"
	TypeStrength ActivityType = "strength"
	TypeYoga     ActivityType = "yoga"
	TypePilates  ActivityType = "pilates"
	TypeSwimming ActivityType = "swimming"
	TypeCycling  ActivityType = "cycling"
	TypeRunning  ActivityType = "running"
	TypeWalking  ActivityType = "walking"
	TypeOther    ActivityType = "other"
)

func (at ActivityType) String() string {
	return string(at)
}

func (at ActivityType) IsValid() bool {
	switch at {
	case TypeCardio, TypeStrength, TypeYoga, TypePilates,
		TypeSwimming, TypeCycling, TypeRunning, TypeWalking, TypeOther:
		return true
	default:
		return false
	}
}

type Intensity string

const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

func (i Intensity) IsValid() bool {
	switch i {
	case IntensityLow, IntensityMedium, IntensityHigh:
		return true
	default:
		return false
	}
}

// Activity is a single logged exercise session. Duration is in
// minutes. Date and UserID are set once at creation and never change.
type Activity struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	Type      ActivityType `json:"type"`
	Name      string       `json:"name"`
	Duration  int          `json:"duration"`
	Calories  int          `json:"calories"`
	Intensity Intensity    `json:"intensity"`
	Notes     string       `json:"notes"`
	Date      time.Time    `json:"date"`
}

// Draft carries the caller-supplied fields of a new activity. Date is
// normally left zero and assigned from the call-time clock; forcing it
// is only used by tests.
type Draft struct {
	Type      ActivityType `json:"type"`
	Name      string       `json:"name"`
	Duration  int          `json:"duration"`
	Calories  int          `json:"calories"`
	Intensity Intensity    `json:"intensity"`
	Notes     string       `json:"notes"`
	Date      time.Time    `json:"date"`
}

func (d *Draft) validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: activity name empty", ErrValidation)
	}
	if d.Duration <= 0 {
		return fmt.Errorf("%w: duration must be a positive number of minutes", ErrValidation)
	}
	if d.Type == "" {
		d.Type = TypeOther
	}
	if !d.Type.IsValid() {
		return fmt.Errorf("%w: unknown activity type [%s]", ErrValidation, d.Type)
	}
	if d.Intensity == "" {
		d.Intensity = IntensityMedium
	}
	if !d.Intensity.IsValid() {
		return fmt.Errorf("%w: unknown intensity [%s]", ErrValidation, d.Intensity)
	}
	if d.Calories < 0 {
		d.Calories = 0
	}
	return nil
}

// Partial is a shallow-merge patch for an existing activity. Fields
// left nil are untouched. ID, UserID and Date are immutable and thus
// not part of the patch.
type Partial struct {
	Type      *ActivityType `json:"type,omitempty"`
	Name      *string       `json:"name,omitempty"`
	Duration  *int          `json:"duration,omitempty"`
	Calories  *int          `json:"calories,omitempty"`
	Intensity *Intensity    `json:"intensity,omitempty"`
	Notes     *string       `json:"notes,omitempty"`
}

func (p Partial) applyTo(a *Activity) {
	if p.Type != nil {
		a.Type = *p.Type
	}
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Duration != nil {
		a.Duration = *p.Duration
	}
	if p.Calories != nil {
		a.Calories = *p.Calories
	}
	if p.Intensity != nil {
		a.Intensity = *p.Intensity
	}
	if p.Notes != nil {
		a.Notes = *p.Notes
	}
}
