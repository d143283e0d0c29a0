package store

import (
	"io"
	"log/slog"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := Open(t.TempDir(), log)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestSaveLoadRoundTrip verifies basic persistence and overwrite behavior.
func TestSaveLoadRoundTrip(t *testing.T) {
	s := testStore(t)

	if got := s.Load("exercises"); got != nil {
		t.Errorf("Load of absent key = %q, want nil", got)
	}

	if !s.Save("exercises", []byte(`[{"id":"a"}]`)) {
		t.Fatal("save failed")
	}
	if got := string(s.Load("exercises")); got != `[{"id":"a"}]` {
		t.Errorf("Load = %q", got)
	}

	if !s.Save("exercises", []byte(`[]`)) {
		t.Fatal("overwrite failed")
	}
	if got := string(s.Load("exercises")); got != `[]` {
		t.Errorf("Load after overwrite = %q", got)
	}
}

// TestRemove verifies deletion and that removing an absent key succeeds.
func TestRemove(t *testing.T) {
	s := testStore(t)

	s.Save("workouts", []byte(`[]`))
	if !s.Remove("workouts") {
		t.Fatal("remove failed")
	}
	if s.Load("workouts") != nil {
		t.Error("value still present after remove")
	}
	if !s.Remove("workouts") {
		t.Error("removing an absent key must succeed")
	}
}

// TestClear verifies the whole namespace empties at once.
func TestClear(t *testing.T) {
	s := testStore(t)

	s.Save("a", []byte("1"))
	s.Save("b", []byte("2"))
	if !s.Clear() {
		t.Fatal("clear failed")
	}
	if s.Load("a") != nil || s.Load("b") != nil {
		t.Error("values survived clear")
	}
}

// TestLoadJSON verifies typed round trips and the decode-failure path.
func TestLoadJSON(t *testing.T) {
	s := testStore(t)

	type row struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	if _, ok := LoadJSON[[]row](s, "rows"); ok {
		t.Error("LoadJSON of absent key reported ok")
	}

	if !SaveJSON(s, "rows", []row{{ID: "1", Name: "one"}}) {
		t.Fatal("SaveJSON failed")
	}
	rows, ok := LoadJSON[[]row](s, "rows")
	if !ok || len(rows) != 1 || rows[0].Name != "one" {
		t.Fatalf("LoadJSON = %v, %v", rows, ok)
	}

	s.Save("rows", []byte("not json"))
	if _, ok := LoadJSON[[]row](s, "rows"); ok {
		t.Error("LoadJSON of corrupt value reported ok")
	}
}

// TestPersistsAcrossReopen verifies the replica file survives a close.
func TestPersistsAcrossReopen(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()

	s, err := Open(dir, log)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	s.Save("mesocycles", []byte(`[{"id":"m1"}]`))
	s.Close()

	reopened, err := Open(dir, log)
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	defer reopened.Close()
	if got := string(reopened.Load("mesocycles")); got != `[{"id":"m1"}]` {
		t.Errorf("Load after reopen = %q", got)
	}
}
