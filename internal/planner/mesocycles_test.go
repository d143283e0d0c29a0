package planner

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/milassn/fitness-tracker/internal/models"
	"github.com/milassn/fitness-tracker/internal/store"
)

func testService(t *testing.T) *Service {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := store.Open(t.TempDir(), log)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return NewService(s, log)
}

func testDraft(t *testing.T, start, end string) Draft {
	t.Helper()
	days := models.TrainingDays{}
	days.Set(1, time.Monday)
	days.Set(2, time.Thursday)
	return Draft{
		StartDate: date(t, start),
		EndDate:   date(t, end),
		Pattern:   models.PatternABAB,
		Days:      days,
		WorkoutA:  "wa",
		WorkoutB:  "wb",
	}
}

// TestNextNumber verifies the numbering rule: the first mesocycle gets 6,
// later ones continue one past the highest existing number.
func TestNextNumber(t *testing.T) {
	if got := NextNumber(nil); got != 6 {
		t.Errorf("NextNumber(empty) = %d, want 6", got)
	}
	mesos := []models.Mesocycle{{Number: 6}, {Number: 9}, {Number: 7}}
	if got := NextNumber(mesos); got != 10 {
		t.Errorf("NextNumber = %d, want 10", got)
	}
}

// TestCreatePersists verifies that a created mesocycle comes back from the
// replica with its generated sessions and active status.
func TestCreatePersists(t *testing.T) {
	svc := testService(t)

	meso, err := svc.Create(testDraft(t, "2024-01-01", "2024-01-28"), testCatalog())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meso.Number != 6 {
		t.Errorf("number = %d, want 6", meso.Number)
	}
	if !meso.Active() {
		t.Error("created mesocycle is not active")
	}
	if len(meso.Sessions) != 8 {
		t.Errorf("len(sessions) = %d, want 8", len(meso.Sessions))
	}

	stored := svc.List()
	if len(stored) != 1 || stored[0].ID != meso.ID {
		t.Fatalf("stored = %v, want the created mesocycle", stored)
	}
	if stored[0].UpdatedAt.IsZero() {
		t.Error("stored mesocycle has no updated_at stamp")
	}
}

// TestSingleActiveMesocycle verifies that creating a second active
// mesocycle is refused while another is running.
func TestSingleActiveMesocycle(t *testing.T) {
	svc := testService(t)

	if _, err := svc.Create(testDraft(t, "2024-01-01", "2024-01-28"), testCatalog()); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(testDraft(t, "2024-02-05", "2024-03-03"), testCatalog())
	if !errors.Is(err, ErrActiveConflict) {
		t.Fatalf("err = %v, want ErrActiveConflict", err)
	}
}

// TestCreateAfterCompletion verifies that finishing a block unblocks the
// next one and numbering continues.
func TestCreateAfterCompletion(t *testing.T) {
	svc := testService(t)

	first, err := svc.Create(testDraft(t, "2024-01-01", "2024-01-28"), testCatalog())
	if err != nil {
		t.Fatalf("first create: %v", err)
	}

	first.Status = models.StatusCompleted
	if err := svc.Update(first); err != nil {
		t.Fatalf("update: %v", err)
	}

	second, err := svc.Create(testDraft(t, "2024-02-05", "2024-03-03"), testCatalog())
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if second.Number != 7 {
		t.Errorf("second number = %d, want 7", second.Number)
	}
}

// TestUpdatePreservesActivities verifies that an update without an
// activities map keeps the stored calendar entries.
func TestUpdatePreservesActivities(t *testing.T) {
	svc := testService(t)

	meso, err := svc.Create(testDraft(t, "2024-01-01", "2024-01-28"), testCatalog())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	meso.Activities = map[string]models.Activity{
		"2024-01-03": {Type: models.ActivitySick},
	}
	if err := svc.Update(meso); err != nil {
		t.Fatalf("update with activities: %v", err)
	}

	meso.Activities = nil
	meso.WorkoutA = "wa"
	if err := svc.Update(meso); err != nil {
		t.Fatalf("update without activities: %v", err)
	}

	stored := svc.List()[0]
	if _, ok := stored.Activities["2024-01-03"]; !ok {
		t.Error("activities were lost by an update that carried none")
	}
}

// TestDelete verifies removal by id and that unknown ids are a no-op.
func TestDelete(t *testing.T) {
	svc := testService(t)

	meso, err := svc.Create(testDraft(t, "2024-01-01", "2024-01-28"), testCatalog())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete("nope"); err != nil {
		t.Fatalf("delete unknown: %v", err)
	}
	if len(svc.List()) != 1 {
		t.Fatal("delete of unknown id removed something")
	}

	if err := svc.Delete(meso.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(svc.List()) != 0 {
		t.Error("mesocycle still present after delete")
	}
}
