package game

import "fmt"

// Category identifies one of the thirteen scoring slots on a scorecard.
// The upper section (Ones..Sixes) scores by counting matching faces;
// the lower section holds the combination categories.
type Category int

const (
	Ones Category = iota
	Twos
	Threes
	Fours
	Fives
	Sixes
	ThreeOfAKind
	FourOfAKind
	FullHouse
	SmallStraight
	LargeStraight
	Yahtzee
	Chance

	// NumCategories is the number of slots on a scorecard.
	NumCategories = 13
)

var categoryNames = [NumCategories]string{
	"ones", "twos", "threes", "fours", "fives", "sixes",
	"three_of_kind", "four_of_kind", "full_house",
	"small_straight", "large_straight", "yahtzee", "chance",
}

// String returns the category's wire name.
func (c Category) String() string {
	if c < 0 || c >= NumCategories {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// IsUpper reports whether the category belongs to the upper section.
func (c Category) IsUpper() bool {
	return c >= Ones && c <= Sixes
}

// FaceValue returns the die face an upper category counts (Ones → 1).
// Only meaningful for upper categories.
func (c Category) FaceValue() int {
	return int(c) + 1
}

// ParseCategory maps a wire name to its Category.
func ParseCategory(name string) (Category, error) {
	for i, n := range categoryNames {
		if n == name {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown category %q", ErrCategoryUnavailable, name)
}

// Categories returns all thirteen categories in scorecard order.
func Categories() []Category {
	cats := make([]Category, NumCategories)
	for i := range cats {
		cats[i] = Category(i)
	}
	return cats
}
