package game

import rand "math/rand/v2"

// FinalTurn is the last turn of a game; the scorecard is full once it
// resolves.
const FinalTurn = NumCategories

// PlayerGame binds one player's dice and scorecard into the turn state
// machine. Turn 1 waits for an explicit first roll; every later turn is
// seeded with an automatic roll the moment the previous one resolves,
// so it opens at budget 2 with fresh faces. Completion is irreversible.
type PlayerGame struct {
	dice      *DiceSet
	scorecard *Scorecard
	turn      int
	complete  bool
}

// NewPlayerGame creates a game on turn 1 awaiting its first roll.
func NewPlayerGame(rng *rand.Rand) *PlayerGame {
	return &PlayerGame{
		dice:      NewDiceSet(rng),
		scorecard: NewScorecard(),
		turn:      1,
	}
}

// Turn returns the current 1-based turn number.
func (g *PlayerGame) Turn() int {
	return g.turn
}

// Complete reports whether all thirteen turns have resolved.
func (g *PlayerGame) Complete() bool {
	return g.complete
}

// Dice returns the player's dice set.
func (g *PlayerGame) Dice() *DiceSet {
	return g.dice
}

// Scorecard returns the player's scorecard.
func (g *PlayerGame) Scorecard() *Scorecard {
	return g.scorecard
}

// Roll rerolls the player's dice. A nil keep mask rerolls all five.
func (g *PlayerGame) Roll(keep []bool) ([NumDice]int, error) {
	if g.complete {
		return g.dice.Faces(), ErrGameComplete
	}
	return g.dice.RollKeeping(keep)
}

// Score resolves the current turn by committing the dice to a category
// and returns the committed points. On success the next turn starts
// with a fresh budget and an automatic first roll, unless the game is
// over.
func (g *PlayerGame) Score(cat Category) (int, error) {
	if g.complete {
		return 0, ErrGameComplete
	}
	if g.dice.RollsRemaining() == RollsPerTurn {
		return 0, ErrMustRollFirst
	}
	if !g.scorecard.Commit(cat, g.dice.Faces()) {
		return 0, ErrCategoryUnavailable
	}
	score, _ := g.scorecard.Committed(cat)

	g.turn++
	if g.turn > FinalTurn || g.scorecard.IsFull() {
		g.complete = true
		return score, nil
	}
	g.dice.StartNewTurn()
	_, _ = g.dice.RollAll() // every turn after the first opens pre-rolled
	return score, nil
}
