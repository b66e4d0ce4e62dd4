package game

import (
	"errors"
	"testing"

	"github.com/pilcrowe/diceduel/internal/randutil"
)

func TestScoreBeforeFirstRollRejected(t *testing.T) {
	t.Parallel()

	g := NewPlayerGame(randutil.New(10))
	if _, err := g.Score(Chance); !errors.Is(err, ErrMustRollFirst) {
		t.Errorf("Scoring before rolling should fail with ErrMustRollFirst, got %v", err)
	}
	if g.Turn() != 1 {
		t.Errorf("Rejected score must not advance the turn, got %d", g.Turn())
	}
}

func TestTurnLifecycle(t *testing.T) {
	t.Parallel()

	g := NewPlayerGame(randutil.New(11))

	if _, err := g.Roll(nil); err != nil {
		t.Fatalf("First roll failed: %v", err)
	}
	if g.Dice().RollsRemaining() != 2 {
		t.Errorf("Budget should be 2 after the first roll, got %d", g.Dice().RollsRemaining())
	}

	if _, err := g.Score(Chance); err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if g.Turn() != 2 {
		t.Errorf("Turn should advance to 2, got %d", g.Turn())
	}

	// Turns after the first open pre-rolled at budget 2.
	if g.Dice().RollsRemaining() != 2 {
		t.Errorf("Turn 2 should open at budget 2, got %d", g.Dice().RollsRemaining())
	}

	// The implicit roll counts, so an immediate score is allowed.
	if _, err := g.Score(Ones); err != nil {
		t.Errorf("Scoring the automatic opening roll should be allowed, got %v", err)
	}
}

func TestScoreCommittedCategoryRejected(t *testing.T) {
	t.Parallel()

	g := NewPlayerGame(randutil.New(12))
	if _, err := g.Roll(nil); err != nil {
		t.Fatalf("Roll failed: %v", err)
	}
	if _, err := g.Score(Chance); err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	turn := g.Turn()
	if _, err := g.Score(Chance); !errors.Is(err, ErrCategoryUnavailable) {
		t.Errorf("Re-scoring a committed category should fail, got %v", err)
	}
	if g.Turn() != turn {
		t.Errorf("Rejected score must not advance the turn, got %d", g.Turn())
	}
}

func TestGameCompletesAfterThirteenTurns(t *testing.T) {
	t.Parallel()

	g := NewPlayerGame(randutil.New(13))

	if _, err := g.Roll(nil); err != nil {
		t.Fatalf("Opening roll failed: %v", err)
	}
	for _, cat := range Categories() {
		if g.Complete() {
			t.Fatalf("Game completed early on turn %d", g.Turn())
		}
		if _, err := g.Score(cat); err != nil {
			t.Fatalf("Score %s failed: %v", cat, err)
		}
	}

	if !g.Complete() {
		t.Fatal("Game should be complete after 13 commits")
	}
	if !g.Scorecard().IsFull() {
		t.Error("Scorecard should be full at completion")
	}

	if _, err := g.Roll(nil); !errors.Is(err, ErrGameComplete) {
		t.Errorf("Roll after completion should fail with ErrGameComplete, got %v", err)
	}
	if _, err := g.Score(Chance); !errors.Is(err, ErrGameComplete) {
		t.Errorf("Score after completion should fail with ErrGameComplete, got %v", err)
	}
}

func TestRollErrorsPassThrough(t *testing.T) {
	t.Parallel()

	g := NewPlayerGame(randutil.New(14))

	if _, err := g.Roll([]bool{true}); !errors.Is(err, ErrInvalidKeepMask) {
		t.Errorf("Bad mask should pass through, got %v", err)
	}

	for i := 0; i < RollsPerTurn; i++ {
		if _, err := g.Roll(nil); err != nil {
			t.Fatalf("Roll %d failed: %v", i+1, err)
		}
	}
	if _, err := g.Roll(nil); !errors.Is(err, ErrNoRollsRemaining) {
		t.Errorf("Exhausted budget should pass through, got %v", err)
	}
}

func TestIdenticalSeedsPlayIdenticalGames(t *testing.T) {
	t.Parallel()

	a := NewPlayerGame(randutil.New(99))
	b := NewPlayerGame(randutil.New(99))

	if _, err := a.Roll(nil); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Roll(nil); err != nil {
		t.Fatal(err)
	}
	for _, cat := range Categories() {
		if _, err := a.Score(cat); err != nil {
			t.Fatalf("a: %v", err)
		}
		if _, err := b.Score(cat); err != nil {
			t.Fatalf("b: %v", err)
		}
	}

	if a.Scorecard().GrandTotal() != b.Scorecard().GrandTotal() {
		t.Errorf("Same seed should produce the same totals: %d vs %d",
			a.Scorecard().GrandTotal(), b.Scorecard().GrandTotal())
	}
}
