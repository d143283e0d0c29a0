package goals

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/milassn/fitness-tracker/internal/models"
	"github.com/milassn/fitness-tracker/internal/store"
)

// Target is one occurrence of an exercise within a mesocycle's session list:
// the session, the exercise's position in the workout snapshot, and the
// composite goal key.
type Target struct {
	Session       models.Session
	ExerciseIndex int
	Exercise      models.WorkoutExercise
	Key           string
}

// Planner manages per-set training goals for the active mesocycle.
type Planner struct {
	store *store.Store
	log   *slog.Logger
}

// New creates a goal planner over the given replica.
func New(s *store.Store, log *slog.Logger) *Planner {
	return &Planner{store: s, log: log}
}

// TargetsForExercise lists every occurrence of an exercise across a
// mesocycle's sessions, in session order.
func TargetsForExercise(meso *models.Mesocycle, exerciseID string) []Target {
	var targets []Target
	for _, session := range meso.Sessions {
		if session.Workout == nil {
			continue
		}
		for i, ex := range session.Workout.Exercises {
			if ex.ExerciseID == exerciseID {
				targets = append(targets, Target{
					Session:       session,
					ExerciseIndex: i,
					Exercise:      ex,
					Key:           models.GoalKey(session.Number, i),
				})
			}
		}
	}
	return targets
}

// List returns all stored training goals.
func (p *Planner) List() []models.TrainingGoal {
	goals, _ := store.LoadJSON[[]models.TrainingGoal](p.store, models.TableTrainingGoals)
	return goals
}

// Get returns the goal with the given composite key within a mesocycle,
// or nil.
func Get(goals []models.TrainingGoal, mesoID, key string) *models.TrainingGoal {
	for i := range goals {
		if goals[i].MesocycleID == mesoID && goals[i].ID == key {
			return &goals[i]
		}
	}
	return nil
}

// SetField applies fn to the set goal identified by (key, setNumber),
// creating the goal record and set entry as needed, and persists.
func (p *Planner) SetField(mesoID, key string, setNumber int, fn func(*models.SetGoal)) error {
	goals := p.List()
	goals = upsertField(goals, mesoID, key, setNumber, fn)
	if !store.SaveJSON(p.store, models.TableTrainingGoals, goals) {
		return fmt.Errorf("persisting training goals")
	}
	return nil
}

func upsertField(goals []models.TrainingGoal, mesoID, key string, setNumber int, fn func(*models.SetGoal)) []models.TrainingGoal {
	goal := Get(goals, mesoID, key)
	if goal == nil {
		goals = append(goals, models.TrainingGoal{
			ID:          key,
			MesocycleID: mesoID,
			Sets:        map[int]models.SetGoal{},
		})
		goal = &goals[len(goals)-1]
	}
	if goal.Sets == nil {
		goal.Sets = map[int]models.SetGoal{}
	}
	sg := goal.Sets[setNumber]
	fn(&sg)
	goal.Sets[setNumber] = sg
	goal.UpdatedAt = time.Now().UTC()
	return goals
}

// Selection names one (session × exercise × set) target for bulk editing.
type Selection struct {
	SessionNumber int
	ExerciseIndex int
	SetNumber     int
}

// BulkValues is the values bundle of a bulk edit. Zero-valued fields are
// absent and leave existing goal fields untouched; the edit is a sparse
// merge, not a replace.
type BulkValues struct {
	Reps          string
	Weight        float64
	RPE           int
	UseDropset    bool
	DropsetReps   string
	DropsetWeight float64
}

// BulkApply overwrites the present fields of values across every selected
// target. Drop-set fields only apply to drop-set-eligible exercises.
func (p *Planner) BulkApply(mesoID string, selections []Selection, values BulkValues, exercise models.Exercise) error {
	goals := p.List()

	for _, sel := range selections {
		key := models.GoalKey(sel.SessionNumber, sel.ExerciseIndex)
		goals = upsertField(goals, mesoID, key, sel.SetNumber, func(sg *models.SetGoal) {
			if values.Reps != "" {
				sg.Reps = values.Reps
			}
			if values.Weight > 0 {
				sg.Weight = values.Weight
			}
			if values.RPE > 0 {
				sg.RPE = values.RPE
			}
			if exercise.AllowsDropset {
				sg.Dropset = values.UseDropset
				if values.UseDropset {
					if values.DropsetReps != "" {
						sg.DropsetReps = values.DropsetReps
					}
					if values.DropsetWeight > 0 {
						sg.DropsetWeight = values.DropsetWeight
					}
				}
			}
		})
	}

	if !store.SaveJSON(p.store, models.TableTrainingGoals, goals) {
		return fmt.Errorf("persisting training goals")
	}
	p.log.Info("bulk goal edit applied", "targets", len(selections))
	return nil
}

// Delta is the weight change between two consecutive occurrences of an
// exercise.
type Delta struct {
	Absolute float64
	Percent  float64
}

// WeightDelta compares a target's first-set weight against the previous
// occurrence's. Returns nil when either weight is unset or the change is
// zero.
func WeightDelta(goals []models.TrainingGoal, mesoID string, targets []Target, index, setNumber int) *Delta {
	if index <= 0 || index >= len(targets) {
		return nil
	}
	current := Get(goals, mesoID, targets[index].Key)
	previous := Get(goals, mesoID, targets[index-1].Key)
	if current == nil || previous == nil {
		return nil
	}
	cw := current.Sets[setNumber].Weight
	pw := previous.Sets[setNumber].Weight
	if cw == 0 || pw == 0 || cw == pw {
		return nil
	}
	return &Delta{
		Absolute: cw - pw,
		Percent:  (cw - pw) / pw * 100,
	}
}
