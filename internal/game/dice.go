package game

import rand "math/rand/v2"

const (
	// NumDice is the number of dice in a set.
	NumDice = 5

	// RollsPerTurn is the roll budget at the start of every turn.
	RollsPerTurn = 3
)

// DiceSet owns five die faces and the roll budget for the current turn.
// It draws exclusively from the rand.Rand injected at construction, so
// games are reproducible under a fixed seed.
type DiceSet struct {
	rng            *rand.Rand
	faces          [NumDice]int
	rollsRemaining int
}

// NewDiceSet returns a fresh set with every face showing 1 and a full
// roll budget.
func NewDiceSet(rng *rand.Rand) *DiceSet {
	d := &DiceSet{rng: rng, rollsRemaining: RollsPerTurn}
	for i := range d.faces {
		d.faces[i] = 1
	}
	return d
}

// Faces returns the current die faces.
func (d *DiceSet) Faces() [NumDice]int {
	return d.faces
}

// RollsRemaining returns how many rolls are left this turn.
func (d *DiceSet) RollsRemaining() int {
	return d.rollsRemaining
}

// RollAll rerolls every die.
func (d *DiceSet) RollAll() ([NumDice]int, error) {
	return d.RollKeeping(nil)
}

// RollKeeping rerolls the dice whose keep entry is false; a true entry
// holds that die. A nil mask rerolls everything. Any mask length other
// than five is rejected before the budget is touched.
func (d *DiceSet) RollKeeping(keep []bool) ([NumDice]int, error) {
	if keep != nil && len(keep) != NumDice {
		return d.faces, ErrInvalidKeepMask
	}
	if d.rollsRemaining <= 0 {
		return d.faces, ErrNoRollsRemaining
	}
	for i := range d.faces {
		if keep == nil || !keep[i] {
			d.faces[i] = d.rng.IntN(6) + 1
		}
	}
	d.rollsRemaining--
	return d.faces, nil
}

// StartNewTurn restores the roll budget without touching the faces.
func (d *DiceSet) StartNewTurn() {
	d.rollsRemaining = RollsPerTurn
}
