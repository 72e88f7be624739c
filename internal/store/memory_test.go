package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/robalobadob/wordle/internal/game"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	s := game.NewSession(nil, game.ModeRandom, "crane", 0)
	if err := st.Save(ctx, s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := st.Get(ctx, s.ID)
	if err != nil || got != s {
		t.Fatalf("Get = %p, %v; want %p", got, err, s)
	}
	if _, err := st.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) err = %v", err)
	}
	if err := st.Update(ctx, "missing", func(*game.Session) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) err = %v", err)
	}

	boom := errors.New("boom")
	if err := st.View(ctx, s.ID, func(*game.Session) error { return boom }); err != boom {
		t.Errorf("View err = %v, want callback error", err)
	}

	st.Delete(ctx, s.ID)
	if st.Len() != 0 {
		t.Errorf("Len after delete = %d", st.Len())
	}
}

func TestMemoryStoreConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	s := game.NewSession(nil, game.ModeRandom, "crane", 100)
	st.Save(ctx, s)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.Update(ctx, s.ID, func(s *game.Session) error {
				_, err := s.SubmitGuess("slate")
				return err
			})
		}()
	}
	wg.Wait()

	st.View(ctx, s.ID, func(s *game.Session) error {
		if len(s.Attempts) != 50 {
			t.Errorf("attempts = %d, want 50", len(s.Attempts))
		}
		return nil
	})
}
