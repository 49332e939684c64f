package dice

import (
	"math/rand/v2"
	"slices"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_source.go mcp-toolbox-go/internal/dice Source

// Source is the randomness provider for rolls.
//
// Implementations must be safe for concurrent use.
type Source interface {
	// IntN returns a uniformly distributed int in [0, n). n is always > 0.
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// DefaultSource draws from the math/rand/v2 top-level generator, which is
// safe for concurrent use and seeded randomly at startup.
var DefaultSource Source = globalSource{}

// Outcome is a single die after keep/drop selection.
type Outcome struct {
	Face     int
	Selected bool
}

// Result holds every repeat of a rolled Spec. Rolls[i] and Totals[i] describe
// the i-th repeat; dice appear in the order they were drawn.
type Result struct {
	Spec   Spec
	Rolls  [][]Outcome
	Totals []int
}

// Roller executes specs against a Source.
type Roller struct {
	src Source
}

// NewRoller returns a Roller drawing from src, or from DefaultSource when src
// is nil.
func NewRoller(src Source) *Roller {
	if src == nil {
		src = DefaultSource
	}
	return &Roller{src: src}
}

// Roll executes spec.Repeats independent rolls. spec must come from Parse.
func (r *Roller) Roll(spec Spec) Result {
	result := Result{
		Spec:   spec,
		Rolls:  make([][]Outcome, 0, spec.Repeats),
		Totals: make([]int, 0, spec.Repeats),
	}
	for range spec.Repeats {
		outcomes := r.draw(spec)
		result.Rolls = append(result.Rolls, outcomes)
		result.Totals = append(result.Totals, total(outcomes))
	}
	return result
}

// RollNotation parses notation and rolls it in one call.
func (r *Roller) RollNotation(notation string, repeats int) (Result, error) {
	spec, err := Parse(notation, repeats)
	if err != nil {
		return Result{}, err
	}
	return r.Roll(spec), nil
}

// Roll parses notation, rolls it repeats times with DefaultSource and renders
// the result as text.
func Roll(notation string, repeats int) (string, error) {
	result, err := NewRoller(nil).RollNotation(notation, repeats)
	if err != nil {
		return "", err
	}
	return result.String(), nil
}

func (r *Roller) draw(spec Spec) []Outcome {
	outcomes := make([]Outcome, spec.Count)
	for i := range outcomes {
		outcomes[i] = Outcome{Face: r.src.IntN(spec.Sides) + 1}
	}
	selectDice(outcomes, spec.Mode, spec.KeepCount)
	return outcomes
}

// selectDice marks the outcomes that count toward the total. The n dice at
// the targeted end are kept (keep modes) or discarded (drop modes); among
// equal faces the earlier draw is targeted first.
func selectDice(outcomes []Outcome, mode KeepMode, n int) {
	if mode == KeepNone {
		for i := range outcomes {
			outcomes[i].Selected = true
		}
		return
	}

	order := make([]int, len(outcomes))
	for i := range order {
		order[i] = i
	}
	lowestFirst := mode == KeepLowest || mode == DropLowest
	slices.SortStableFunc(order, func(a, b int) int {
		if lowestFirst {
			return outcomes[a].Face - outcomes[b].Face
		}
		return outcomes[b].Face - outcomes[a].Face
	})

	keep := mode == KeepHighest || mode == KeepLowest
	for rank, idx := range order {
		inHead := rank < n
		outcomes[idx].Selected = inHead == keep
	}
}

func total(outcomes []Outcome) int {
	sum := 0
	for _, o := range outcomes {
		if o.Selected {
			sum += o.Face
		}
	}
	return sum
}
