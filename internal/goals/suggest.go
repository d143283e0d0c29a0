package goals

import (
	"errors"
	"fmt"

	"github.com/milassn/fitness-tracker/internal/models"
	"github.com/milassn/fitness-tracker/internal/store"
)

// ErrNoProgression is returned when a suggestion cannot be computed: no
// targets, a zero increment, or start/end weights outside a specific
// exercise's discrete weight list.
var ErrNoProgression = errors.New("cannot compute weight progression")

// SuggestionSettings drive the automatic weight progression.
type SuggestionSettings struct {
	StartWeight float64
	EndWeight   float64
	// AlternateIncrease restricts weight bumps to every other occurrence;
	// in-between occurrences repeat the previous weight.
	AlternateIncrease bool
}

// Suggest computes a monotonic weight progression from start to end weight
// across the exercise's occurrences and writes it into the training goals
// for every set of every occurrence.
//
// The required increments are spread as evenly as possible across the
// eligible occurrences: a bump happens every floor(eligible/increments)
// occurrences. The progression never oversteps the end weight and the last
// eligible occurrence always lands exactly on it. For drop-set-eligible
// exercises with a discrete weight list, each occurrence also gets a
// one-step-lower drop-set suggestion whenever a lower weight exists.
func (p *Planner) Suggest(mesoID string, targets []Target, exercise models.Exercise, settings SuggestionSettings) error {
	if len(targets) == 0 {
		return fmt.Errorf("%w: exercise occurs in no session", ErrNoProgression)
	}

	weights, err := progression(len(targets), exercise, settings)
	if err != nil {
		return err
	}

	goals := p.List()
	for i, target := range targets {
		goals = p.applyWeight(goals, mesoID, target, weights[i], exercise)
	}
	if !store.SaveJSON(p.store, models.TableTrainingGoals, goals) {
		return fmt.Errorf("persisting training goals")
	}
	p.log.Info("weight progression suggested",
		"exercise", exercise.Name,
		"occurrences", len(targets),
		"start", settings.StartWeight,
		"end", settings.EndWeight,
	)
	return nil
}

// progression returns one weight per occurrence.
func progression(count int, exercise models.Exercise, settings SuggestionSettings) ([]float64, error) {
	eligible := count
	if settings.AlternateIncrease {
		eligible = (count + 1) / 2
	}

	steps, err := weightSteps(exercise, settings)
	if err != nil {
		return nil, err
	}

	// Spacing between bumps, in eligible occurrences. The final eligible
	// occurrence is pinned to the end weight regardless of spacing.
	spacing := 1
	if n := len(steps) - 1; n > 0 && eligible/n > 1 {
		spacing = eligible / n
	}

	weights := make([]float64, count)
	stepIndex := 0
	eligibleSeen := 0
	for i := range count {
		if settings.AlternateIncrease && i%2 == 1 {
			weights[i] = weights[i-1]
			continue
		}
		eligibleSeen++
		if eligibleSeen == eligible {
			stepIndex = len(steps) - 1 // land on target
		}
		weights[i] = steps[stepIndex]
		if eligibleSeen%spacing == 0 && stepIndex < len(steps)-1 {
			stepIndex++
		}
	}
	return weights, nil
}

// weightSteps expands the start→end range into the discrete weights the
// progression may pass through, inclusive on both ends.
func weightSteps(exercise models.Exercise, settings SuggestionSettings) ([]float64, error) {
	if available := exercise.AvailableWeights(); available != nil {
		startIdx, endIdx := -1, -1
		for i, w := range available {
			if w == settings.StartWeight {
				startIdx = i
			}
			if w == settings.EndWeight {
				endIdx = i
			}
		}
		if startIdx == -1 || endIdx == -1 {
			return nil, fmt.Errorf("%w: start or end weight not in the available weight list", ErrNoProgression)
		}
		if startIdx <= endIdx {
			return available[startIdx : endIdx+1], nil
		}
		steps := make([]float64, 0, startIdx-endIdx+1)
		for i := startIdx; i >= endIdx; i-- {
			steps = append(steps, available[i])
		}
		return steps, nil
	}

	if exercise.WeightIncrement <= 0 {
		return nil, fmt.Errorf("%w: exercise has no weight increment", ErrNoProgression)
	}
	steps := []float64{settings.StartWeight}
	if settings.StartWeight == settings.EndWeight {
		return steps, nil
	}
	increment := exercise.WeightIncrement
	if settings.EndWeight < settings.StartWeight {
		increment = -increment
	}
	for w := settings.StartWeight + increment; ; w += increment {
		if (increment > 0 && w >= settings.EndWeight) || (increment < 0 && w <= settings.EndWeight) {
			steps = append(steps, settings.EndWeight)
			return steps, nil
		}
		steps = append(steps, w)
	}
}

// applyWeight writes the weight to every set of the occurrence, plus the
// drop-set suggestion where applicable.
func (p *Planner) applyWeight(goals []models.TrainingGoal, mesoID string, target Target, weight float64, exercise models.Exercise) []models.TrainingGoal {
	available := exercise.AvailableWeights()
	dropsetWeight := 0.0
	if exercise.AllowsDropset {
		for i, w := range available {
			if w == weight && i > 0 {
				dropsetWeight = available[i-1]
			}
		}
	}

	for set := 1; set <= target.Exercise.Sets; set++ {
		goals = upsertField(goals, mesoID, target.Key, set, func(sg *models.SetGoal) {
			sg.Weight = weight
			if dropsetWeight > 0 {
				sg.Dropset = true
				sg.DropsetWeight = dropsetWeight
				sg.DropsetReps = target.Exercise.Reps
			}
		})
	}
	return goals
}
