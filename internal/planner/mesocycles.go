package planner

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/milassn/fitness-tracker/internal/models"
	"github.com/milassn/fitness-tracker/internal/store"
)

// ErrActiveConflict is returned when saving an active mesocycle while a
// different mesocycle is already active. At most one mesocycle may be active
// at a time; calendar and dashboard lookups depend on it.
var ErrActiveConflict = errors.New("another mesocycle is already active")

// firstNumber is the number assigned when no mesocycles exist yet.
const firstNumber = 6

// Service manages the mesocycle collection in the local replica.
type Service struct {
	store *store.Store
	log   *slog.Logger
}

// NewService creates a mesocycle service over the given replica.
func NewService(s *store.Store, log *slog.Logger) *Service {
	return &Service{store: s, log: log}
}

// List returns all stored mesocycles.
func (s *Service) List() []models.Mesocycle {
	mesos, _ := store.LoadJSON[[]models.Mesocycle](s.store, models.TableMesocycles)
	return mesos
}

// NextNumber computes the sequential number for a new mesocycle:
// one past the highest existing number, or firstNumber when none exist.
func NextNumber(mesos []models.Mesocycle) int {
	if len(mesos) == 0 {
		return firstNumber
	}
	highest := firstNumber - 1
	for _, m := range mesos {
		if m.Number > highest {
			highest = m.Number
		}
	}
	return highest + 1
}

// Create generates the session list for a draft and stores the resulting
// mesocycle with status active.
func (s *Service) Create(draft Draft, catalog []models.WorkoutTemplate) (models.Mesocycle, error) {
	sessions, err := Generate(draft, catalog)
	if err != nil {
		return models.Mesocycle{}, err
	}

	mesos := s.List()
	number := draft.Number
	if number == 0 {
		number = NextNumber(mesos)
	}

	meso := models.Mesocycle{
		ID:         models.NewID(),
		Number:     number,
		StartDate:  draft.StartDate,
		EndDate:    draft.EndDate,
		Pattern:    draft.Pattern,
		Days:       draft.Days,
		WorkoutA:   draft.WorkoutA,
		WorkoutB:   draft.WorkoutB,
		Status:     models.StatusActive,
		Sessions:   sessions,
		Activities: map[string]models.Activity{},
	}

	if err := s.put(mesos, meso); err != nil {
		return models.Mesocycle{}, err
	}
	s.log.Info("mesocycle created", "id", meso.ID, "number", meso.Number, "sessions", len(sessions))
	return meso, nil
}

// Update replaces a stored mesocycle wholesale. Existing activities are
// preserved when the update carries none.
func (s *Service) Update(meso models.Mesocycle) error {
	mesos := s.List()
	for _, existing := range mesos {
		if existing.ID == meso.ID && meso.Activities == nil {
			meso.Activities = existing.Activities
		}
	}
	return s.put(mesos, meso)
}

// put inserts or replaces meso in the collection, enforcing the
// single-active invariant, and persists it.
func (s *Service) put(mesos []models.Mesocycle, meso models.Mesocycle) error {
	if meso.Active() {
		for _, other := range mesos {
			if other.ID != meso.ID && other.Active() {
				return fmt.Errorf("%w: #%d (%s)", ErrActiveConflict, other.Number, other.ID)
			}
		}
	}

	meso.UpdatedAt = time.Now().UTC()

	replaced := false
	for i := range mesos {
		if mesos[i].ID == meso.ID {
			mesos[i] = meso
			replaced = true
			break
		}
	}
	if !replaced {
		mesos = append(mesos, meso)
	}

	if !store.SaveJSON(s.store, models.TableMesocycles, mesos) {
		return fmt.Errorf("persisting mesocycles")
	}
	return nil
}

// Delete removes a mesocycle by id. Deleting an unknown id is a no-op.
func (s *Service) Delete(id string) error {
	mesos := s.List()
	kept := mesos[:0]
	for _, m := range mesos {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	if !store.SaveJSON(s.store, models.TableMesocycles, kept) {
		return fmt.Errorf("persisting mesocycles")
	}
	return nil
}
