// Package roll exposes the dice roller as the roll_dice tool.
package roll

import (
	"context"
	"encoding/json"

	"mcp-toolbox-go/internal/dice"
	"mcp-toolbox-go/internal/tools"
)

// Name is the tool name.
const Name = "roll_dice"

// Args represents the arguments for the roll_dice tool.
type Args struct {
	Notation string `json:"notation" jsonschema:"dice notation such as d20, 2d20k1, 4d6dl1 or 3d6kl2"`
	NumRolls *int   `json:"num_rolls,omitempty" jsonschema:"number of independent rolls (default 1)"`
}

// Observer is notified about parsed specs and rejected notations.
type Observer interface {
	ObserveRoll(spec dice.Spec)
	ObserveNotationError(kind dice.ErrorKind)
}

// Die is one die in the structured output.
type Die struct {
	Face     int  `json:"face"`
	Selected bool `json:"selected"`
}

// Output is the structured result of a roll.
type Output struct {
	Notation  string  `json:"notation"`
	Count     int     `json:"count"`
	Sides     int     `json:"sides"`
	Mode      string  `json:"mode"`
	KeepCount int     `json:"keep_count"`
	Rolls     [][]Die `json:"rolls"`
	Totals    []int   `json:"totals"`
}

// Tool rolls dice notation.
type Tool struct {
	roller   *dice.Roller
	observer Observer
}

// New creates a roll_dice tool. observer may be nil.
func New(roller *dice.Roller, observer Observer) *Tool {
	if roller == nil {
		roller = dice.NewRoller(nil)
	}
	return &Tool{roller: roller, observer: observer}
}

// Definition implements tools.Tool.
func (t *Tool) Definition() tools.Definition {
	return tools.Define[Args](Name, "Roll Dice",
		"Roll the dice with the given notation. Supports NdM with an optional keep/drop modifier: "+
			"k or kh (keep highest), kl (keep lowest), dh (drop highest), dl (drop lowest). "+
			"Discarded dice are shown in parentheses.", false)
}

// Call implements tools.Tool.
func (t *Tool) Call(ctx context.Context, raw json.RawMessage) (*tools.Result, error) {
	var args Args
	if err := tools.Decode(raw, &args); err != nil {
		return nil, err
	}

	repeats := 1
	if args.NumRolls != nil {
		repeats = *args.NumRolls
	}

	spec, err := dice.Parse(args.Notation, repeats)
	if err != nil {
		if perr, ok := err.(*dice.ParseError); ok && t.observer != nil {
			t.observer.ObserveNotationError(perr.Kind)
		}
		return nil, err
	}
	if t.observer != nil {
		t.observer.ObserveRoll(spec)
	}

	result := t.roller.Roll(spec)
	return &tools.Result{
		Text:       result.String(),
		Structured: toOutput(result),
	}, nil
}

func toOutput(result dice.Result) Output {
	out := Output{
		Notation:  result.Spec.Canonical(),
		Count:     result.Spec.Count,
		Sides:     result.Spec.Sides,
		Mode:      result.Spec.Mode.String(),
		KeepCount: result.Spec.KeepCount,
		Rolls:     make([][]Die, len(result.Rolls)),
		Totals:    result.Totals,
	}
	for i, outcomes := range result.Rolls {
		dies := make([]Die, len(outcomes))
		for j, o := range outcomes {
			dies[j] = Die{Face: o.Face, Selected: o.Selected}
		}
		out.Rolls[i] = dies
	}
	return out
}
