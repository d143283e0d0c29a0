package calendar

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/milassn/fitness-tracker/internal/models"
	"github.com/milassn/fitness-tracker/internal/store"
)

// ErrNoSession is returned when an operation names a session number the
// mesocycle does not contain.
var ErrNoSession = errors.New("no session with that number")

// ErrNoMesocycle is returned when an operation names an unknown mesocycle.
var ErrNoMesocycle = errors.New("mesocycle not found")

// Cell is what a calendar day displays: a session if one is scheduled, else
// a manually recorded activity, else nothing. When both exist the session
// wins the lookup; the activity stays stored underneath.
type Cell struct {
	Session  *models.Session
	Activity *models.Activity
}

// Empty reports whether the day has neither a session nor an activity.
func (c Cell) Empty() bool {
	return c.Session == nil && c.Activity == nil
}

// Overlay reads and mutates the session/activity layer of the mesocycle
// collection.
type Overlay struct {
	store *store.Store
	log   *slog.Logger
}

// New creates an overlay over the given replica.
func New(s *store.Store, log *slog.Logger) *Overlay {
	return &Overlay{store: s, log: log}
}

// ActiveMesocycle returns the currently active mesocycle, or nil.
func (o *Overlay) ActiveMesocycle() *models.Mesocycle {
	mesos, _ := store.LoadJSON[[]models.Mesocycle](o.store, models.TableMesocycles)
	for i := range mesos {
		if mesos[i].Active() {
			return &mesos[i]
		}
	}
	return nil
}

// CellForDate computes the display content of a calendar day within a
// mesocycle. Sessions take precedence over activities.
func CellForDate(meso *models.Mesocycle, date models.Date) Cell {
	var cell Cell
	for i := range meso.Sessions {
		if meso.Sessions[i].Date.Equal(date) {
			cell.Session = &meso.Sessions[i]
			break
		}
	}
	if a, ok := meso.Activities[date.String()]; ok {
		cell.Activity = &a
	}
	return cell
}

// DayCell pairs a calendar date with its display content.
type DayCell struct {
	Date models.Date
	Cell
}

// MonthCells computes the display content for every day of a month, in
// day order. Days outside the mesocycle's date range still get a cell;
// it is simply empty.
func MonthCells(meso *models.Mesocycle, year int, month time.Month) []DayCell {
	days := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1).Day()
	cells := make([]DayCell, 0, days)
	for day := 1; day <= days; day++ {
		d := models.NewDate(year, month, day)
		cells = append(cells, DayCell{Date: d, Cell: CellForDate(meso, d)})
	}
	return cells
}

// SetActivity records an activity for a date, replacing any existing entry
// wholesale. The entry gets a fresh creation timestamp and starts
// uncompleted. No collision check is made against sessions on that date.
func (o *Overlay) SetActivity(mesoID string, date models.Date, activityType, label, notes string) error {
	return o.mutate(mesoID, func(meso *models.Mesocycle) error {
		if meso.Activities == nil {
			meso.Activities = map[string]models.Activity{}
		}
		if activityType != models.ActivityOther {
			label = ""
		}
		meso.Activities[date.String()] = models.Activity{
			Type:      activityType,
			Label:     label,
			Notes:     notes,
			Completed: false,
			CreatedAt: time.Now().UTC(),
		}
		return nil
	})
}

// MoveSession reassigns a session to a new date. Only the date field changes;
// no overlap check is performed against other sessions or activities on the
// destination date.
func (o *Overlay) MoveSession(mesoID string, sessionNumber int, newDate models.Date) error {
	return o.mutate(mesoID, func(meso *models.Mesocycle) error {
		session := meso.Session(sessionNumber)
		if session == nil {
			return fmt.Errorf("%w: %d", ErrNoSession, sessionNumber)
		}
		session.Date = newDate
		return nil
	})
}

// ToggleSessionCompleted flips a session's completed flag.
func (o *Overlay) ToggleSessionCompleted(mesoID string, sessionNumber int) error {
	return o.mutate(mesoID, func(meso *models.Mesocycle) error {
		session := meso.Session(sessionNumber)
		if session == nil {
			return fmt.Errorf("%w: %d", ErrNoSession, sessionNumber)
		}
		session.Completed = !session.Completed
		return nil
	})
}

// UpcomingSessions returns up to limit uncompleted sessions of the active
// mesocycle dated today or later, in chronological order.
func (o *Overlay) UpcomingSessions(limit int) []models.Session {
	meso := o.ActiveMesocycle()
	if meso == nil {
		return nil
	}

	today := models.Today()
	var upcoming []models.Session
	for _, s := range meso.Sessions {
		if !s.Completed && !s.Date.Before(today) {
			upcoming = append(upcoming, s)
		}
	}
	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].Date.Before(upcoming[j].Date)
	})
	if limit > 0 && len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return upcoming
}

// mutate loads the mesocycle collection, applies fn to the named mesocycle,
// stamps it, and persists the collection.
func (o *Overlay) mutate(mesoID string, fn func(*models.Mesocycle) error) error {
	mesos, _ := store.LoadJSON[[]models.Mesocycle](o.store, models.TableMesocycles)
	for i := range mesos {
		if mesos[i].ID != mesoID {
			continue
		}
		if err := fn(&mesos[i]); err != nil {
			return err
		}
		mesos[i].UpdatedAt = time.Now().UTC()
		if !store.SaveJSON(o.store, models.TableMesocycles, mesos) {
			return fmt.Errorf("persisting mesocycles")
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNoMesocycle, mesoID)
}
