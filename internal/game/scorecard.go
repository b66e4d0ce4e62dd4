package game

// Scorecard records one player's committed category scores, the upper
// bonus, and the Yahtzee bonus count. A committed category is immutable
// for the rest of the game.
type Scorecard struct {
	scores       [NumCategories]int
	committed    [NumCategories]bool
	yahtzeeBonus int
}

// NewScorecard returns an empty scorecard.
func NewScorecard() *Scorecard {
	return &Scorecard{}
}

// faceCounts tallies how many dice show each face value, indexed by face.
func faceCounts(faces [NumDice]int) [7]int {
	var counts [7]int
	for _, f := range faces {
		counts[f]++
	}
	return counts
}

func sumFaces(faces [NumDice]int) int {
	total := 0
	for _, f := range faces {
		total += f
	}
	return total
}

// hasRun reports whether every face in [lo, hi] appears at least once.
func hasRun(counts [7]int, lo, hi int) bool {
	for f := lo; f <= hi; f++ {
		if counts[f] == 0 {
			return false
		}
	}
	return true
}

func isFiveOfAKind(faces [NumDice]int) bool {
	for _, f := range faces[1:] {
		if f != faces[0] {
			return false
		}
	}
	return true
}

// ScoreFor computes the score the given faces would earn in a category.
// Pure function of its inputs, independent of die order.
func ScoreFor(cat Category, faces [NumDice]int) int {
	counts := faceCounts(faces)
	if cat.IsUpper() {
		face := cat.FaceValue()
		return face * counts[face]
	}

	switch cat {
	case ThreeOfAKind:
		for _, n := range counts {
			if n >= 3 {
				return sumFaces(faces)
			}
		}
	case FourOfAKind:
		for _, n := range counts {
			if n >= 4 {
				return sumFaces(faces)
			}
		}
	case FullHouse:
		// Exactly one value with count 3 plus a genuine pair; five of a
		// kind does not qualify.
		threes, pairs := 0, 0
		for _, n := range counts {
			switch n {
			case 3:
				threes++
			case 2:
				pairs++
			}
		}
		if threes == 1 && pairs == 1 {
			return 25
		}
	case SmallStraight:
		if hasRun(counts, 1, 4) || hasRun(counts, 2, 5) || hasRun(counts, 3, 6) {
			return 30
		}
	case LargeStraight:
		if hasRun(counts, 1, 5) || hasRun(counts, 2, 6) {
			return 40
		}
	case Yahtzee:
		for _, n := range counts {
			if n == 5 {
				return 50
			}
		}
	case Chance:
		return sumFaces(faces)
	}
	return 0
}

// Committed returns the score committed to a category and whether the
// category has been committed at all.
func (sc *Scorecard) Committed(cat Category) (int, bool) {
	if cat < 0 || cat >= NumCategories {
		return 0, false
	}
	return sc.scores[cat], sc.committed[cat]
}

// PossibleScores scores the faces against every category still open.
func (sc *Scorecard) PossibleScores(faces [NumDice]int) map[Category]int {
	possible := make(map[Category]int)
	for _, cat := range Categories() {
		if !sc.committed[cat] {
			possible[cat] = ScoreFor(cat, faces)
		}
	}
	return possible
}

// Commit writes the score the faces earn in the category. It returns
// false with no mutation when the category is already committed.
//
// Committing any non-Yahtzee category with a five-of-a-kind while the
// yahtzee slot already holds 50 earns a bonus Yahtzee. A five-of-a-kind
// rolled before the slot is filled, or after it was zeroed, earns
// nothing.
func (sc *Scorecard) Commit(cat Category, faces [NumDice]int) bool {
	if cat < 0 || cat >= NumCategories || sc.committed[cat] {
		return false
	}
	sc.scores[cat] = ScoreFor(cat, faces)
	sc.committed[cat] = true
	if cat != Yahtzee && isFiveOfAKind(faces) && sc.committed[Yahtzee] && sc.scores[Yahtzee] == 50 {
		sc.yahtzeeBonus++
	}
	return true
}

// IsFull reports whether all thirteen categories have been committed.
func (sc *Scorecard) IsFull() bool {
	for _, done := range sc.committed {
		if !done {
			return false
		}
	}
	return true
}

// YahtzeeBonusCount returns how many bonus Yahtzees have been earned.
func (sc *Scorecard) YahtzeeBonusCount() int {
	return sc.yahtzeeBonus
}

// UpperTotal sums the committed upper-section scores.
func (sc *Scorecard) UpperTotal() int {
	total := 0
	for cat := Ones; cat <= Sixes; cat++ {
		if sc.committed[cat] {
			total += sc.scores[cat]
		}
	}
	return total
}

// UpperBonus is 35 once the upper section reaches 63 points.
func (sc *Scorecard) UpperBonus() int {
	if sc.UpperTotal() >= 63 {
		return 35
	}
	return 0
}

// LowerTotal sums the committed lower-section scores.
func (sc *Scorecard) LowerTotal() int {
	total := 0
	for cat := ThreeOfAKind; cat <= Chance; cat++ {
		if sc.committed[cat] {
			total += sc.scores[cat]
		}
	}
	return total
}

// YahtzeeBonusTotal is 100 points per bonus Yahtzee.
func (sc *Scorecard) YahtzeeBonusTotal() int {
	return sc.yahtzeeBonus * 100
}

// GrandTotal is the running total across both sections and all bonuses.
func (sc *Scorecard) GrandTotal() int {
	return sc.UpperTotal() + sc.UpperBonus() + sc.LowerTotal() + sc.YahtzeeBonusTotal()
}
