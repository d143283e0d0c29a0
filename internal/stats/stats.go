// Package stats aggregates completed trainings into dashboard figures:
// weekly training volume, average session RPE, the current training
// streak, mesocycle progress, and best recorded lifts.
package stats

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/milassn/fitness-tracker/internal/models"
)

// Summary bundles the headline figures shown on a training dashboard.
type Summary struct {
	WeeklyVolume      float64 `json:"weeklyVolume"`
	WeeklyAverageRPE  int     `json:"weeklyAverageRpe"`
	StreakDays        int     `json:"streakDays"`
	ProgressPercent   int     `json:"mesocycleProgressPercent"`
	CompletedSessions int     `json:"completedSessions"`
	TotalSessions     int     `json:"totalSessions"`
}

// Lift is one exercise's heaviest recorded set with its estimated
// one-rep max.
type Lift struct {
	Exercise     string  `json:"exercise"`
	Weight       float64 `json:"weight"`
	Reps         int     `json:"reps"`
	EstimatedMax float64 `json:"estimatedMax"`
}

// Summarize computes the dashboard figures for the given trainings and
// the active mesocycle. The mesocycle may be nil; progress is then zero.
func Summarize(trainings []models.CompletedTraining, meso *models.Mesocycle, now time.Time) Summary {
	volume, rpe := Weekly(trainings, now)
	s := Summary{
		WeeklyVolume:     volume,
		WeeklyAverageRPE: rpe,
		StreakDays:       Streak(trainings, now),
	}
	if meso != nil {
		s.TotalSessions = len(meso.Sessions)
		for _, session := range meso.Sessions {
			if session.Completed {
				s.CompletedSessions++
			}
		}
		if s.TotalSessions > 0 {
			s.ProgressPercent = int(math.Round(float64(s.CompletedSessions) / float64(s.TotalSessions) * 100))
		}
	}
	return s
}

// Weekly sums the volume (completed reps times exercise weight) of
// trainings finished in the last seven days and averages their overall
// RPE. Trainings without an RPE still count toward the average's
// denominator; an empty week reports zero.
func Weekly(trainings []models.CompletedTraining, now time.Time) (volume float64, averageRPE int) {
	weekAgo := now.Add(-7 * 24 * time.Hour)

	var totalRPE, recent int
	for _, training := range trainings {
		if !training.CompletedAt.After(weekAgo) {
			continue
		}
		recent++
		totalRPE += training.OverallRPE
		for _, result := range training.Results {
			weight := parseWeight(result.Weight)
			for _, set := range result.Sets {
				if set.Completed {
					volume += float64(set.ActualReps) * weight
				}
			}
		}
	}
	if recent > 0 {
		averageRPE = int(math.Round(float64(totalRPE) / float64(recent)))
	}
	return volume, averageRPE
}

// Streak counts consecutive training days ending today. Walking back
// from now, each training extends the streak while it is at most one
// day before the previous one; the first larger gap ends it.
func Streak(trainings []models.CompletedTraining, now time.Time) int {
	sorted := make([]models.CompletedTraining, len(trainings))
	copy(sorted, trainings)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CompletedAt.After(sorted[j].CompletedAt)
	})

	streak := 0
	current := now
	for _, training := range sorted {
		gap := int(current.Sub(training.CompletedAt).Hours() / 24)
		if gap > 1 {
			break
		}
		streak++
		current = training.CompletedAt
	}
	return streak
}

// BestLifts returns the top n exercises by estimated one-rep max over
// all completed sets, heaviest first. The estimate uses the Epley
// formula, weight * (1 + reps/30).
func BestLifts(trainings []models.CompletedTraining, n int) []Lift {
	best := map[string]Lift{}
	for _, training := range trainings {
		for idx, result := range training.Results {
			name := exerciseName(training.Session, idx)
			if name == "" {
				continue
			}
			weight := parseWeight(result.Weight)
			for _, set := range result.Sets {
				if !set.Completed {
					continue
				}
				estMax := weight * (1 + float64(set.ActualReps)/30)
				if estMax > best[name].EstimatedMax {
					best[name] = Lift{Exercise: name, Weight: weight, Reps: set.ActualReps, EstimatedMax: estMax}
				}
			}
		}
	}

	lifts := make([]Lift, 0, len(best))
	for _, lift := range best {
		if lift.EstimatedMax > 0 {
			lifts = append(lifts, lift)
		}
	}
	sort.Slice(lifts, func(i, j int) bool { return lifts[i].EstimatedMax > lifts[j].EstimatedMax })
	if n > 0 && len(lifts) > n {
		lifts = lifts[:n]
	}
	return lifts
}

func exerciseName(session models.Session, exerciseIndex int) string {
	if session.Workout == nil || exerciseIndex < 0 || exerciseIndex >= len(session.Workout.Exercises) {
		return ""
	}
	return session.Workout.Exercises[exerciseIndex].Name
}

// parseWeight reads the free-text weight entry as kilograms; anything
// non-numeric counts as zero.
func parseWeight(s string) float64 {
	w, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || w < 0 {
		return 0
	}
	return w
}
