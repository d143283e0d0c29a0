package planner

import (
	"errors"
	"testing"
	"time"

	"github.com/milassn/fitness-tracker/internal/models"
)

func date(t *testing.T, s string) models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

func testCatalog() []models.WorkoutTemplate {
	return []models.WorkoutTemplate{
		{ID: "wa", Name: "Push", Exercises: []models.WorkoutExercise{
			{ExerciseID: "ex-bench", Name: "Bench Press", Sets: 3, Reps: "8-12"},
		}},
		{ID: "wb", Name: "Pull", Exercises: []models.WorkoutExercise{
			{ExerciseID: "ex-row", Name: "Barbell Row", Sets: 3, Reps: "8-12"},
		}},
	}
}

// TestGenerateFourWeekSchedule walks a full four-week block with four
// training days per week: 16 sessions, contiguous numbering, correct
// week assignment and A/B typing at both ends of the range.
func TestGenerateFourWeekSchedule(t *testing.T) {
	days := models.TrainingDays{}
	days.Set(1, time.Monday)
	days.Set(2, time.Tuesday)
	days.Set(3, time.Thursday)
	days.Set(4, time.Saturday)

	draft := Draft{
		StartDate: date(t, "2024-01-01"), // a Monday
		EndDate:   date(t, "2024-01-28"),
		Pattern:   models.PatternABAB,
		Days:      days,
		WorkoutA:  "wa",
		WorkoutB:  "wb",
	}

	sessions, err := Generate(draft, testCatalog())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 16 {
		t.Fatalf("len(sessions) = %d, want 16", len(sessions))
	}

	for i, s := range sessions {
		if s.Number != i+1 {
			t.Errorf("session %d has number %d, numbering must be contiguous", i, s.Number)
		}
		if s.Completed {
			t.Errorf("session %d generated as completed", s.Number)
		}
		if s.Workout == nil {
			t.Errorf("session %d has no workout snapshot", s.Number)
		}
	}

	first := sessions[0]
	if first.Date.String() != "2024-01-01" || first.Type != models.TypeTrainingA || first.Week != 1 {
		t.Errorf("first session = %s/%s/week %d, want 2024-01-01/A/week 1",
			first.Date, first.Type, first.Week)
	}

	last := sessions[15]
	if last.Date.String() != "2024-01-27" || last.Type != models.TypeTrainingB || last.Week != 4 {
		t.Errorf("last session = %s/%s/week %d, want 2024-01-27/B/week 4",
			last.Date, last.Type, last.Week)
	}
}

// TestGenerateSlotParity verifies the A/B assignment rule: odd slots train
// workout A, even slots workout B, independent of the weekday order.
func TestGenerateSlotParity(t *testing.T) {
	days := models.TrainingDays{}
	days.Set(1, time.Friday)
	days.Set(2, time.Monday)

	draft := Draft{
		StartDate: date(t, "2024-01-01"),
		EndDate:   date(t, "2024-01-07"),
		Pattern:   models.PatternABAB,
		Days:      days,
		WorkoutA:  "wa",
		WorkoutB:  "wb",
	}

	sessions, err := Generate(draft, testCatalog())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("len(sessions) = %d, want 2", len(sessions))
	}
	// Monday comes first in the calendar but sits in slot 2, so it is a B day.
	if sessions[0].Type != models.TypeTrainingB {
		t.Errorf("Monday session type = %s, want B (slot 2)", sessions[0].Type)
	}
	if sessions[1].Type != models.TypeTrainingA {
		t.Errorf("Friday session type = %s, want A (slot 1)", sessions[1].Type)
	}
}

// TestGenerateSlotCollision verifies that when two slots name the same
// weekday, the date yields exactly one session typed by the lowest slot.
func TestGenerateSlotCollision(t *testing.T) {
	days := models.TrainingDays{}
	days.Set(1, time.Monday)
	days.Set(2, time.Monday)

	draft := Draft{
		StartDate: date(t, "2024-01-01"),
		EndDate:   date(t, "2024-01-07"),
		Pattern:   models.PatternABAB,
		Days:      days,
		WorkoutA:  "wa",
		WorkoutB:  "wb",
	}

	sessions, err := Generate(draft, testCatalog())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("len(sessions) = %d, want 1 (one session per date)", len(sessions))
	}
	if sessions[0].Type != models.TypeTrainingA {
		t.Errorf("collision session type = %s, want A (slot 1 wins)", sessions[0].Type)
	}
}

// TestGenerateSixSlotPattern verifies the 6-day pattern keeps the same
// parity rule across all six slots.
func TestGenerateSixSlotPattern(t *testing.T) {
	days := models.TrainingDays{}
	for slot, day := range map[int]time.Weekday{
		1: time.Monday, 2: time.Tuesday, 3: time.Wednesday,
		4: time.Thursday, 5: time.Friday, 6: time.Saturday,
	} {
		days.Set(slot, day)
	}

	draft := Draft{
		StartDate: date(t, "2024-01-01"),
		EndDate:   date(t, "2024-01-06"),
		Pattern:   models.PatternABABAB,
		Days:      days,
		WorkoutA:  "wa",
		WorkoutB:  "wb",
	}

	sessions, err := Generate(draft, testCatalog())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 6 {
		t.Fatalf("len(sessions) = %d, want 6", len(sessions))
	}
	want := []string{
		models.TypeTrainingA, models.TypeTrainingB, models.TypeTrainingA,
		models.TypeTrainingB, models.TypeTrainingA, models.TypeTrainingB,
	}
	for i, s := range sessions {
		if s.Type != want[i] {
			t.Errorf("session %d type = %s, want %s", s.Number, s.Type, want[i])
		}
	}
}

// TestGenerateSnapshotIsolation verifies the session binds a snapshot of
// the template, not the template itself: later catalog edits must not leak
// into already generated sessions.
func TestGenerateSnapshotIsolation(t *testing.T) {
	catalog := testCatalog()
	days := models.TrainingDays{}
	days.Set(1, time.Monday)

	draft := Draft{
		StartDate: date(t, "2024-01-01"),
		EndDate:   date(t, "2024-01-07"),
		Pattern:   models.PatternABAB,
		Days:      days,
		WorkoutA:  "wa",
		WorkoutB:  "wb",
	}

	sessions, err := Generate(draft, catalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	catalog[0].Name = "Renamed"
	if got := sessions[0].Workout.Name; got != "Push" {
		t.Errorf("snapshot name = %q, want %q", got, "Push")
	}
}

// TestGenerateIncompleteConfiguration verifies that missing dates or
// unresolvable workout assignments refuse to generate rather than emit a
// partial list.
func TestGenerateIncompleteConfiguration(t *testing.T) {
	days := models.TrainingDays{}
	days.Set(1, time.Monday)

	cases := []struct {
		name  string
		draft Draft
	}{
		{"missing dates", Draft{Pattern: models.PatternABAB, Days: days, WorkoutA: "wa", WorkoutB: "wb"}},
		{"missing workout B", Draft{
			StartDate: date(t, "2024-01-01"), EndDate: date(t, "2024-01-28"),
			Pattern: models.PatternABAB, Days: days, WorkoutA: "wa",
		}},
		{"unknown workout", Draft{
			StartDate: date(t, "2024-01-01"), EndDate: date(t, "2024-01-28"),
			Pattern: models.PatternABAB, Days: days, WorkoutA: "wa", WorkoutB: "missing",
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Generate(tc.draft, testCatalog()); !errors.Is(err, ErrIncompleteConfiguration) {
				t.Errorf("err = %v, want ErrIncompleteConfiguration", err)
			}
		})
	}
}

// TestGenerateNoConfiguredDays verifies that an empty weekday assignment
// generates an empty (but valid) session list.
func TestGenerateNoConfiguredDays(t *testing.T) {
	draft := Draft{
		StartDate: date(t, "2024-01-01"),
		EndDate:   date(t, "2024-01-28"),
		Pattern:   models.PatternABAB,
		Days:      models.TrainingDays{},
		WorkoutA:  "wa",
		WorkoutB:  "wb",
	}

	sessions, err := Generate(draft, testCatalog())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("len(sessions) = %d, want 0", len(sessions))
	}
}

// TestWeekCount verifies duration computation rounds partial weeks up.
func TestWeekCount(t *testing.T) {
	cases := []struct {
		start, end string
		want       int
	}{
		{"2024-01-01", "2024-01-28", 4},
		{"2024-01-01", "2024-01-29", 4},
		{"2024-01-01", "2024-01-08", 1},
		{"2024-01-01", "2024-01-09", 2},
	}
	for _, tc := range cases {
		if got := WeekCount(date(t, tc.start), date(t, tc.end)); got != tc.want {
			t.Errorf("WeekCount(%s, %s) = %d, want %d", tc.start, tc.end, got, tc.want)
		}
	}
}
