package analytics

import (
	"math"
	"time"

	"github.com/Vivek145899/GymBuddy/internal/activities"
	"github.com/Vivek145899/GymBuddy/internal/goals"
)

// Everything in this package is a pure function of its inputs. There
// are no clock reads; callers pass the reference time so the same
// inputs always compute the same numbers.

const dayFormat = "2006-01-02"

type Summary struct {
	TotalWorkouts int `json:"totalWorkouts"`
	TotalMinutes  int `json:"totalMinutes"`
	TotalCalories int `json:"totalCalories"`
	AvgDuration   int `json:"avgDuration"`
	AvgCalories   int `json:"avgCalories"`
}

// SummaryStats aggregates the given activities. Averages are rounded
// to the nearest integer; an empty input yields all zeros.
func SummaryStats(acts []activities.Activity) Summary {
	summary := Summary{
		TotalWorkouts: len(acts),
	}
	for _, activity := range acts {
		summary.TotalMinutes += activity.Duration
		summary.TotalCalories += activity.Calories
	}
	if summary.TotalWorkouts > 0 {
		summary.AvgDuration = roundedDiv(summary.TotalMinutes, summary.TotalWorkouts)
		summary.AvgCalories = roundedDiv(summary.TotalCalories, summary.TotalWorkouts)
	}
	return summary
}

type Field string

const (
	FieldDuration Field = "duration"
	FieldCalories Field = "calories"
)

type DayBucket struct {
	Date  string `json:"date"`
	Label string `json:"label"`
	Value int    `json:"value"`
}

// WeeklySeries sums the chosen field per calendar day over the seven
// days ending at the reference day, inclusive. The result always has
// exactly seven buckets, oldest first, zero valued where no activity
// happened. Days are calendar days in the reference time's location.
func WeeklySeries(acts []activities.Activity, reference time.Time, field Field) []DayBucket {
	sumPerDay := make(map[string]int)
	for _, activity := range acts {
		day := activity.Date.In(reference.Location()).Format(dayFormat)
		switch field {
		case FieldCalories:
			sumPerDay[day] += activity.Calories
		default:
			sumPerDay[day] += activity.Duration
		}
	}

	series := make([]DayBucket, 0, 7)
	for offset := 6; offset >= 0; offset-- {
		day := reference.AddDate(0, 0, -offset)
		key := day.Format(dayFormat)
		series = append(series, DayBucket{
			Date:  key,
			Label: day.Format("Mon"),
			Value: sumPerDay[key],
		})
	}
	return series
}

type TypeCount struct {
	Type  activities.ActivityType `json:"type"`
	Count int                     `json:"count"`
}

// TypeDistribution counts activities per type, types ordered by first
// appearance in the input.
func TypeDistribution(acts []activities.Activity) []TypeCount {
	counts := make(map[activities.ActivityType]int)
	order := make([]activities.ActivityType, 0)
	for _, activity := range acts {
		if _, seen := counts[activity.Type]; !seen {
			order = append(order, activity.Type)
		}
		counts[activity.Type]++
	}

	distribution := make([]TypeCount, 0, len(order))
	for _, activityType := range order {
		distribution = append(distribution, TypeCount{
			Type:  activityType,
			Count: counts[activityType],
		})
	}
	return distribution
}

// StreakLength counts consecutive calendar days with at least one
// activity, walking back from the reference day. A day without an
// activity on the reference day itself means no current streak, so
// the result is zero no matter what happened before.
func StreakLength(acts []activities.Activity, reference time.Time) int {
	coveredDays := make(map[string]bool)
	for _, activity := range acts {
		coveredDays[activity.Date.In(reference.Location()).Format(dayFormat)] = true
	}

	streak := 0
	for day := reference; coveredDays[day.Format(dayFormat)]; day = day.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

// GoalProgressPercent is the progress toward the target as a rounded
// whole percent. A non positive target yields zero.
func GoalProgressPercent(progress, target int) int {
	if target <= 0 {
		return 0
	}
	return roundedDiv(progress*100, target)
}

func ActiveGoalCount(gs []goals.Goal) int {
	active := 0
	for _, goal := range gs {
		if !goal.Completed() {
			active++
		}
	}
	return active
}

func CompletedGoalCount(gs []goals.Goal) int {
	completed := 0
	for _, goal := range gs {
		if goal.Completed() {
			completed++
		}
	}
	return completed
}

func roundedDiv(numerator, denominator int) int {
	return int(math.Round(float64(numerator) / float64(denominator)))
}
