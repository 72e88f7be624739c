package daily

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/robalobadob/wordle/internal/db"
)

func TestWordIndexUnsalted(t *testing.T) {
	cases := []struct {
		date time.Time
		n    int
		want int
	}{
		{Epoch, 10, 0},
		{Epoch.Add(23 * time.Hour), 10, 0},
		{Epoch.Add(24 * time.Hour), 10, 1},
		{time.Date(2022, time.January, 11, 8, 0, 0, 0, time.UTC), 10, 0},
		{time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC), 100, 65},
		{Epoch, 0, 0},
	}
	for _, tc := range cases {
		if got := WordIndex(tc.date, "", tc.n); got != tc.want {
			t.Errorf("WordIndex(%s, %d) = %d, want %d", tc.date, tc.n, got, tc.want)
		}
	}
}

func TestWordIndexSalted(t *testing.T) {
	morning := time.Date(2024, time.May, 4, 1, 0, 0, 0, time.UTC)
	evening := time.Date(2024, time.May, 4, 23, 0, 0, 0, time.UTC)

	a := WordIndex(morning, "pepper", 1000)
	if b := WordIndex(evening, "pepper", 1000); a != b {
		t.Errorf("same UTC day gave %d and %d", a, b)
	}
	if a < 0 || a >= 1000 {
		t.Errorf("index %d out of range", a)
	}

	differs := false
	for d := 1; d < 10; d++ {
		if WordIndex(morning.AddDate(0, 0, d), "pepper", 1000) != a {
			differs = true
		}
	}
	if !differs {
		t.Error("salted index never changes across days")
	}
}

func TestAnswer(t *testing.T) {
	pool := []string{"crane", "slate", "pause"}
	w, i := Answer(Epoch.AddDate(0, 0, 4), "", pool)
	if w != "slate" || i != 1 {
		t.Errorf("Answer = %q/%d, want slate/1", w, i)
	}
	if w, _ := Answer(Epoch, "", nil); w != "" {
		t.Errorf("Answer on empty pool = %q", w)
	}
}

func TestStore(t *testing.T) {
	sdb, err := db.Open(filepath.Join(t.TempDir(), "daily.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer sdb.Close()
	if err := db.Migrate(sdb); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	ctx := context.Background()
	st := NewStore(sdb)
	date := "2024-05-04"

	results := []Result{
		{UserID: "u1", Date: date, Guesses: 4, ElapsedMs: 9000, Won: true},
		{UserID: "u2", Date: date, Guesses: 3, ElapsedMs: 9000, Won: true},
		{UserID: "u3", Date: date, Guesses: 2, ElapsedMs: 1000, Won: true},
		{UserID: "u4", Date: date, Guesses: 6, ElapsedMs: 500, Won: false},
		// Duplicate for u3 is ignored.
		{UserID: "u3", Date: date, Guesses: 1, ElapsedMs: 10, Won: true},
		{UserID: "u1", Date: "2024-05-05", Guesses: 1, ElapsedMs: 10, Won: true},
	}
	for _, r := range results {
		if err := st.InsertResult(ctx, r); err != nil {
			t.Fatalf("InsertResult(%+v): %v", r, err)
		}
	}

	played, err := st.AlreadyPlayed(ctx, "u4", date)
	if err != nil || !played {
		t.Errorf("AlreadyPlayed(u4) = %t, %v", played, err)
	}
	played, _ = st.AlreadyPlayed(ctx, "u5", date)
	if played {
		t.Error("AlreadyPlayed(u5) = true")
	}

	got, err := st.Leaderboard(ctx, date, 0)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	want := []LBRow{
		{UserID: "u3", Guesses: 2, ElapsedMs: 1000},
		{UserID: "u2", Guesses: 3, ElapsedMs: 9000},
		{UserID: "u1", Guesses: 4, ElapsedMs: 9000},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected leaderboard (-want +got)\n%s", diff)
	}
}
