package models

import (
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Measurement types for exercises.
const (
	MeasurementWeightReps = "weight_reps"
	MeasurementReps       = "reps"
	MeasurementTime       = "time"
	MeasurementDistance   = "distance"
)

// Weight increment policies.
const (
	IncrementStandard = "standard" // fixed step, e.g. 2.5 kg plates
	IncrementSpecific = "specific" // explicit list of machine weights
)

// Session types and activity types as they appear on the calendar.
const (
	TypeTrainingA = "A"
	TypeTrainingB = "B"
	ActivityRest  = "PAUSE"
	ActivitySick  = "KRANK"
	ActivityOther = "ACTIVITY"
)

// Mesocycle status values. The wire values are German, matching the data
// already in the field. Only StatusActive has behavioral meaning; any other
// value reads as inactive.
const (
	StatusActive    = "aktiv"
	StatusCompleted = "beendet"
)

// Training patterns: two workouts alternating 4 or 6 times per week.
const (
	PatternABAB   = "ABAB"
	PatternABABAB = "ABABAB"
)

// Synchronized table names. The order is the reconciliation order of a full
// sync pass.
const (
	TableExercises          = "exercises"
	TableWorkouts           = "workouts"
	TableMesocycles         = "mesocycles"
	TableTrainingGoals      = "trainingGoals"
	TableCompletedTrainings = "completedTrainings"
)

// SyncTables returns the tables reconciled by a full sync pass.
func SyncTables() []string {
	return []string{
		TableExercises,
		TableWorkouts,
		TableMesocycles,
		TableTrainingGoals,
		TableCompletedTrainings,
	}
}

// NewID returns a fresh record identifier.
func NewID() string {
	return uuid.NewString()
}

// User is the authenticated identity sync operations are scoped to.
type User struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	APIKey string `json:"-"`
}

// Exercise is a movement definition referenced by workout templates.
type Exercise struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"user_id,omitempty"`
	Name                string    `json:"name"`
	Category            string    `json:"category"`
	MovementPattern     string    `json:"movementPattern,omitempty"`
	MeasurementType     string    `json:"measurementType"`
	WeightIncrementType string    `json:"weightIncrementType"`
	WeightIncrement     float64   `json:"weightIncrements,omitempty"`
	SpecificWeights     []float64 `json:"specificWeights,omitempty"`
	AllowsDropset       bool      `json:"allowsDropset"`
	CreatedAt           time.Time `json:"createdAt,omitzero"`
	UpdatedAt           time.Time `json:"updated_at,omitzero"`
}

// AvailableWeights returns the ascending discrete weight list for exercises
// with a specific increment policy, or nil for fixed-increment exercises.
func (e Exercise) AvailableWeights() []float64 {
	if e.WeightIncrementType != IncrementSpecific {
		return nil
	}
	weights := make([]float64, 0, len(e.SpecificWeights))
	for _, w := range e.SpecificWeights {
		if w > 0 {
			weights = append(weights, w)
		}
	}
	sort.Float64s(weights)
	return weights
}

// WorkoutExercise is one slot in a workout template: an exercise reference
// with a set count and a target rep descriptor (free text, may be a range
// like "8-12").
type WorkoutExercise struct {
	ExerciseID string `json:"id"`
	Name       string `json:"name"`
	Sets       int    `json:"sets"`
	Reps       string `json:"reps"`
}

// WorkoutTemplate is an ordered exercise sequence referenced by mesocycles.
// Order is significant: it is both display and execution order.
type WorkoutTemplate struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id,omitempty"`
	Name      string            `json:"name"`
	Exercises []WorkoutExercise `json:"exercises"`
	UpdatedAt time.Time         `json:"updated_at,omitzero"`
}

// WorkoutSnapshot is the resolved template embedded into a generated session.
// Later edits to the template do not alter sessions generated from it.
type WorkoutSnapshot struct {
	Name      string            `json:"name"`
	Exercises []WorkoutExercise `json:"exercises"`
}

// Session is one concrete, dated occurrence of a scheduled workout.
type Session struct {
	Number    int              `json:"number"`
	Date      Date             `json:"date"`
	Week      int              `json:"week"`
	Type      string           `json:"type"`
	WorkoutID string           `json:"workoutId"`
	Workout   *WorkoutSnapshot `json:"workout,omitempty"`
	Completed bool             `json:"completed"`
}

// Activity is a non-training calendar entry (rest day, illness, other).
type Activity struct {
	Type      string    `json:"type"`
	Label     string    `json:"activity,omitempty"` // only set for ActivityOther
	Notes     string    `json:"notes,omitempty"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// TrainingDays maps weekday slots ("day1".."day6") to a day of week. The
// wire format keeps the original string-keyed shape; values are Sunday=0
// weekday numbers.
type TrainingDays map[string]string

// Weekday returns the day of week assigned to the 1-based slot, if any.
func (d TrainingDays) Weekday(slot int) (time.Weekday, bool) {
	v, ok := d[slotKey(slot)]
	if !ok || v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 || n > 6 {
		return 0, false
	}
	return time.Weekday(n), true
}

// Set assigns a day of week to the 1-based slot.
func (d TrainingDays) Set(slot int, day time.Weekday) {
	d[slotKey(slot)] = strconv.Itoa(int(day))
}

func slotKey(slot int) string {
	return "day" + strconv.Itoa(slot)
}

// SlotCount returns the number of weekday slots a pattern defines.
func SlotCount(pattern string) int {
	if pattern == PatternABABAB {
		return 6
	}
	return 4
}

// Mesocycle is a multi-week training block: a date range, a weekday pattern,
// two workout templates, the generated session list, and manually recorded
// calendar activities keyed by ISO date.
type Mesocycle struct {
	ID         string              `json:"id"`
	UserID     string              `json:"user_id,omitempty"`
	Number     int                 `json:"number"`
	StartDate  Date                `json:"startDate"`
	EndDate    Date                `json:"endDate"`
	Pattern    string              `json:"pattern"`
	Days       TrainingDays        `json:"trainingDays"`
	WorkoutA   string              `json:"workoutA"`
	WorkoutB   string              `json:"workoutB"`
	Status     string              `json:"status"`
	Sessions   []Session           `json:"generatedTrainings"`
	Activities map[string]Activity `json:"activities"`
	UpdatedAt  time.Time           `json:"updated_at,omitzero"`
}

// Active reports whether this mesocycle is the currently running block.
func (m *Mesocycle) Active() bool {
	return m.Status == StatusActive
}

// Session returns the session with the given number, or nil.
func (m *Mesocycle) Session(number int) *Session {
	for i := range m.Sessions {
		if m.Sessions[i].Number == number {
			return &m.Sessions[i]
		}
	}
	return nil
}

// SetGoal holds the planned targets for one set of one exercise occurrence.
type SetGoal struct {
	Reps          string  `json:"reps,omitempty"`
	Weight        float64 `json:"weight,omitempty"`
	RPE           int     `json:"rpe,omitempty"`
	Dropset       bool    `json:"dropset,omitempty"`
	DropsetReps   string  `json:"dropsetReps,omitempty"`
	DropsetWeight float64 `json:"dropsetWeight,omitempty"`
}

// TrainingGoal carries the per-set targets for one session × exercise
// occurrence. Its identifier is the composite "<sessionNumber>-<exerciseIndex>"
// key, scoped to a mesocycle.
type TrainingGoal struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id,omitempty"`
	MesocycleID string          `json:"mesocycleId"`
	Sets        map[int]SetGoal `json:"sets"`
	UpdatedAt   time.Time       `json:"updated_at,omitzero"`
}

// GoalKey builds the composite training-goal identifier.
func GoalKey(sessionNumber, exerciseIndex int) string {
	return strconv.Itoa(sessionNumber) + "-" + strconv.Itoa(exerciseIndex)
}

// SetResult is the execution outcome of a single set.
type SetResult struct {
	Completed  bool    `json:"completed"`
	Reps       int     `json:"reps"` // target, prefilled from the rep descriptor
	ActualReps int     `json:"actualReps"`
	Weight     float64 `json:"weight,omitempty"`
}

// ExerciseResult is the execution outcome of one exercise: its sets plus
// free-form RPE, comment, and weight entries.
type ExerciseResult struct {
	Sets    []SetResult `json:"sets"`
	RPE     int         `json:"rpe,omitempty"`
	Comment string      `json:"comment,omitempty"`
	Weight  string      `json:"weight,omitempty"`
}

// CompletedTraining is the immutable record appended when a live session is
// finalized.
type CompletedTraining struct {
	ID          string                 `json:"id"`
	UserID      string                 `json:"user_id,omitempty"`
	Session     Session                `json:"session"`
	CompletedAt time.Time              `json:"completedAt"`
	StartedAt   time.Time              `json:"startTime"`
	EndedAt     time.Time              `json:"endTime"`
	DurationSec float64                `json:"duration"`
	Results     map[int]ExerciseResult `json:"results"`
	OverallRPE  int                    `json:"overallRPE,omitempty"`
	Comment     string                 `json:"comment,omitempty"`
	UpdatedAt   time.Time              `json:"updated_at,omitzero"`
}
