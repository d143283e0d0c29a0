package planner

import (
	"errors"
	"fmt"

	"github.com/milassn/fitness-tracker/internal/models"
)

// ErrIncompleteConfiguration is returned when schedule generation
// preconditions are unmet: a missing start or end date, or a workout
// assignment that does not resolve against the template catalog. Generation
// never emits a partial session list.
var ErrIncompleteConfiguration = errors.New("incomplete mesocycle configuration")

// Draft is the user-entered mesocycle definition before sessions exist.
type Draft struct {
	Number    int
	StartDate models.Date
	EndDate   models.Date
	Pattern   string
	Days      models.TrainingDays
	WorkoutA  string
	WorkoutB  string
}

// Generate expands a draft into the ordered session list: every calendar
// date from start to end inclusive is checked against the configured weekday
// slots, and each match emits one session bound to a snapshot of the slot's
// workout template.
//
// Odd-numbered slots produce type "A" sessions, even-numbered slots type "B",
// for both the 4-slot and the 6-slot pattern. When two slots map to the same
// weekday the lowest slot index wins. Session numbers count emitted sessions
// only, so dates without a match do not consume numbers.
func Generate(draft Draft, catalog []models.WorkoutTemplate) ([]models.Session, error) {
	if err := validate(draft, catalog); err != nil {
		return nil, err
	}

	templates := make(map[string]models.WorkoutTemplate, len(catalog))
	for _, t := range catalog {
		templates[t.ID] = t
	}

	slots := models.SlotCount(draft.Pattern)
	var sessions []models.Session
	number := 1

	for date := draft.StartDate; !date.After(draft.EndDate); date = date.AddDays(1) {
		sessionType := ""
		for slot := 1; slot <= slots; slot++ {
			day, ok := draft.Days.Weekday(slot)
			if !ok || day != date.Weekday() {
				continue
			}
			if slot%2 == 1 {
				sessionType = models.TypeTrainingA
			} else {
				sessionType = models.TypeTrainingB
			}
			break // lowest matching slot wins
		}
		if sessionType == "" {
			continue
		}

		workoutID := draft.WorkoutA
		if sessionType == models.TypeTrainingB {
			workoutID = draft.WorkoutB
		}
		template, ok := templates[workoutID]
		if !ok {
			// Tolerated per date: the slot matched but no snapshot can be
			// taken, so the date produces no session.
			continue
		}

		sessions = append(sessions, models.Session{
			Number:    number,
			Date:      date,
			Week:      date.DaysSince(draft.StartDate)/7 + 1,
			Type:      sessionType,
			WorkoutID: workoutID,
			Workout: &models.WorkoutSnapshot{
				Name:      template.Name,
				Exercises: template.Exercises,
			},
			Completed: false,
		})
		number++
	}

	return sessions, nil
}

func validate(draft Draft, catalog []models.WorkoutTemplate) error {
	if draft.StartDate.IsZero() || draft.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end date are required", ErrIncompleteConfiguration)
	}
	if draft.WorkoutA == "" || draft.WorkoutB == "" {
		return fmt.Errorf("%w: workout A and workout B are required", ErrIncompleteConfiguration)
	}
	if !templateExists(catalog, draft.WorkoutA) {
		return fmt.Errorf("%w: workout A %q not found", ErrIncompleteConfiguration, draft.WorkoutA)
	}
	if !templateExists(catalog, draft.WorkoutB) {
		return fmt.Errorf("%w: workout B %q not found", ErrIncompleteConfiguration, draft.WorkoutB)
	}
	return nil
}

func templateExists(catalog []models.WorkoutTemplate, id string) bool {
	for _, t := range catalog {
		if t.ID == id {
			return true
		}
	}
	return false
}

// WeekCount returns the mesocycle's duration in weeks, rounding partial
// weeks up.
func WeekCount(start, end models.Date) int {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	days := end.DaysSince(start)
	if days < 0 {
		days = -days
	}
	return (days + 6) / 7
}
