package execution

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/milassn/fitness-tracker/internal/models"
	"github.com/milassn/fitness-tracker/internal/store"
)

// ErrSessionPrecondition is returned when an operation's local precondition
// does not hold: starting with no session due today, finalizing with
// unfinished sets, adjusting an unstarted set, or operating outside the
// Active state. Violations are plain no-ops; nothing is persisted.
var ErrSessionPrecondition = errors.New("session precondition not met")

// Tracker executes one scheduled session at a time. It is Idle until Start
// succeeds, Active until Complete or Abandon, and never holds more than one
// session in progress.
type Tracker struct {
	store       *store.Store
	log         *slog.Logger
	onRestStart func()

	active *liveSession
}

// liveSession is the in-memory execution state of the session in progress.
type liveSession struct {
	mesoID     string
	session    models.Session
	results    map[int]models.ExerciseResult
	startedAt  time.Time
	overallRPE int
	comment    string
}

// New creates an idle tracker. onRestStart is invoked every time a set is
// marked complete; it is purely observational and may be nil.
func New(s *store.Store, log *slog.Logger, onRestStart func()) *Tracker {
	return &Tracker{store: s, log: log, onRestStart: onRestStart}
}

// Active reports whether a session is in progress.
func (t *Tracker) Active() bool {
	return t.active != nil
}

// Session returns the session in progress, or nil when idle.
func (t *Tracker) Session() *models.Session {
	if t.active == nil {
		return nil
	}
	s := t.active.session
	return &s
}

// Results returns the live per-exercise results, keyed by exercise index.
// The returned map is the tracker's own state; callers mutate it only
// through tracker operations.
func (t *Tracker) Results() map[int]models.ExerciseResult {
	if t.active == nil {
		return nil
	}
	return t.active.results
}

// Start transitions Idle → Active for the active mesocycle's session
// scheduled today. It refuses when already active, when no active mesocycle
// exists, or when no uncompleted session is dated today.
func (t *Tracker) Start() error {
	if t.active != nil {
		return fmt.Errorf("%w: a session is already in progress", ErrSessionPrecondition)
	}

	mesos, _ := store.LoadJSON[[]models.Mesocycle](t.store, models.TableMesocycles)
	var meso *models.Mesocycle
	for i := range mesos {
		if mesos[i].Active() {
			meso = &mesos[i]
			break
		}
	}
	if meso == nil {
		return fmt.Errorf("%w: no active mesocycle", ErrSessionPrecondition)
	}

	today := models.Today()
	var session *models.Session
	for i := range meso.Sessions {
		if meso.Sessions[i].Date.Equal(today) && !meso.Sessions[i].Completed {
			session = &meso.Sessions[i]
			break
		}
	}
	if session == nil {
		return fmt.Errorf("%w: no session scheduled today", ErrSessionPrecondition)
	}

	t.active = &liveSession{
		mesoID:    meso.ID,
		session:   *session,
		results:   initResults(session),
		startedAt: time.Now(),
	}
	t.log.Info("session started", "number", session.Number, "type", session.Type, "date", session.Date.String())
	return nil
}

// initResults builds one result entry per exercise in the session's workout
// snapshot, with one set entry per configured set. Target reps come from the
// rep descriptor parsed as a leading integer; descriptors without a leading
// number yield 0.
func initResults(session *models.Session) map[int]models.ExerciseResult {
	results := make(map[int]models.ExerciseResult)
	if session.Workout == nil {
		return results
	}
	for i, ex := range session.Workout.Exercises {
		sets := make([]models.SetResult, ex.Sets)
		for j := range sets {
			sets[j] = models.SetResult{Reps: parseLeadingInt(ex.Reps)}
		}
		results[i] = models.ExerciseResult{Sets: sets}
	}
	return results
}

// parseLeadingInt parses the integer prefix of a rep descriptor ("8-12" → 8,
// "max" → 0).
func parseLeadingInt(s string) int {
	n := 0
	seen := false
	for _, c := range s {
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
		seen = true
	}
	if !seen {
		return 0
	}
	return n
}

// CompleteSet marks a set done and copies its target reps into actual reps.
// A completed set stays completed; there is no reverse transition. Marking a
// set starts the rest timer observer.
func (t *Tracker) CompleteSet(exerciseIndex, setIndex int) error {
	set, err := t.set(exerciseIndex, setIndex)
	if err != nil {
		return err
	}
	if set.Completed {
		return fmt.Errorf("%w: set already completed", ErrSessionPrecondition)
	}
	set.Completed = true
	set.ActualReps = set.Reps
	if t.onRestStart != nil {
		t.onRestStart()
	}
	return nil
}

// AdjustReps changes a completed set's actual reps by delta, floored at
// zero. Sets not yet completed cannot be adjusted.
func (t *Tracker) AdjustReps(exerciseIndex, setIndex, delta int) error {
	set, err := t.set(exerciseIndex, setIndex)
	if err != nil {
		return err
	}
	if !set.Completed {
		return fmt.Errorf("%w: set not completed", ErrSessionPrecondition)
	}
	set.ActualReps += delta
	if set.ActualReps < 0 {
		set.ActualReps = 0
	}
	return nil
}

func (t *Tracker) set(exerciseIndex, setIndex int) (*models.SetResult, error) {
	if t.active == nil {
		return nil, fmt.Errorf("%w: no session in progress", ErrSessionPrecondition)
	}
	result, ok := t.active.results[exerciseIndex]
	if !ok || setIndex < 0 || setIndex >= len(result.Sets) {
		return nil, fmt.Errorf("%w: no such set", ErrSessionPrecondition)
	}
	return &result.Sets[setIndex], nil
}

// UpdateRPE overwrites an exercise's RPE.
func (t *Tracker) UpdateRPE(exerciseIndex, rpe int) error {
	return t.updateExercise(exerciseIndex, func(r *models.ExerciseResult) { r.RPE = rpe })
}

// UpdateComment overwrites an exercise's comment.
func (t *Tracker) UpdateComment(exerciseIndex int, comment string) error {
	return t.updateExercise(exerciseIndex, func(r *models.ExerciseResult) { r.Comment = comment })
}

// UpdateWeight overwrites an exercise's weight entry (free text).
func (t *Tracker) UpdateWeight(exerciseIndex int, weight string) error {
	return t.updateExercise(exerciseIndex, func(r *models.ExerciseResult) { r.Weight = weight })
}

func (t *Tracker) updateExercise(exerciseIndex int, fn func(*models.ExerciseResult)) error {
	if t.active == nil {
		return fmt.Errorf("%w: no session in progress", ErrSessionPrecondition)
	}
	result, ok := t.active.results[exerciseIndex]
	if !ok {
		return fmt.Errorf("%w: no such exercise", ErrSessionPrecondition)
	}
	fn(&result)
	t.active.results[exerciseIndex] = result
	return nil
}

// SetOverallRPE records the whole-session RPE.
func (t *Tracker) SetOverallRPE(rpe int) {
	if t.active != nil {
		t.active.overallRPE = rpe
	}
}

// SetComment records the whole-session comment.
func (t *Tracker) SetComment(comment string) {
	if t.active != nil {
		t.active.comment = comment
	}
}

// PrefillWeights copies planned weights from training goals into exercises
// that have no weight entry yet. The first set's goal weight is used.
func (t *Tracker) PrefillWeights(goals []models.TrainingGoal) {
	if t.active == nil {
		return
	}
	for i := range t.active.results {
		result := t.active.results[i]
		if result.Weight != "" {
			continue
		}
		key := models.GoalKey(t.active.session.Number, i)
		for _, g := range goals {
			if g.ID != key {
				continue
			}
			if sg, ok := g.Sets[1]; ok && sg.Weight > 0 {
				result.Weight = fmt.Sprintf("%g", sg.Weight)
				t.active.results[i] = result
			}
			break
		}
	}
}

// Elapsed returns the time since the session started, or zero when idle.
func (t *Tracker) Elapsed() time.Duration {
	if t.active == nil {
		return 0
	}
	return time.Since(t.active.startedAt)
}

// Complete finalizes the session: every set across every exercise must be
// completed. It appends an immutable record to the completed-trainings
// table, flips the originating session's completed flag inside its
// mesocycle, persists both, and transitions back to Idle.
func (t *Tracker) Complete() (*models.CompletedTraining, error) {
	if t.active == nil {
		return nil, fmt.Errorf("%w: no session in progress", ErrSessionPrecondition)
	}
	for _, result := range t.active.results {
		for _, set := range result.Sets {
			if !set.Completed {
				return nil, fmt.Errorf("%w: not all sets completed", ErrSessionPrecondition)
			}
		}
	}

	now := time.Now()
	record := models.CompletedTraining{
		ID:          models.NewID(),
		Session:     t.active.session,
		CompletedAt: now.UTC(),
		StartedAt:   t.active.startedAt,
		EndedAt:     now,
		DurationSec: now.Sub(t.active.startedAt).Seconds(),
		Results:     t.active.results,
		OverallRPE:  t.active.overallRPE,
		Comment:     t.active.comment,
		UpdatedAt:   now.UTC(),
	}
	record.Session.Completed = true

	completed, _ := store.LoadJSON[[]models.CompletedTraining](t.store, models.TableCompletedTrainings)
	completed = append(completed, record)
	if !store.SaveJSON(t.store, models.TableCompletedTrainings, completed) {
		return nil, fmt.Errorf("persisting completed trainings")
	}

	mesos, _ := store.LoadJSON[[]models.Mesocycle](t.store, models.TableMesocycles)
	for i := range mesos {
		if mesos[i].ID != t.active.mesoID {
			continue
		}
		if session := mesos[i].Session(t.active.session.Number); session != nil {
			session.Completed = true
			mesos[i].UpdatedAt = now.UTC()
		}
	}
	if !store.SaveJSON(t.store, models.TableMesocycles, mesos) {
		return nil, fmt.Errorf("persisting mesocycles")
	}

	t.log.Info("session completed",
		"number", record.Session.Number,
		"duration", now.Sub(t.active.startedAt).String(),
	)
	t.active = nil
	return &record, nil
}

// Abandon discards all in-memory progress without persisting anything. The
// session's completed flag is untouched.
func (t *Tracker) Abandon() {
	if t.active == nil {
		return
	}
	t.log.Info("session abandoned", "number", t.active.session.Number)
	t.active = nil
}
