package roll

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-toolbox-go/internal/dice"
	"mcp-toolbox-go/internal/tools"
)

// fixed always lands on the highest face.
type fixed struct{}

func (fixed) IntN(n int) int { return n - 1 }

type recorder struct {
	specs []dice.Spec
	kinds []dice.ErrorKind
}

func (r *recorder) ObserveRoll(spec dice.Spec)               { r.specs = append(r.specs, spec) }
func (r *recorder) ObserveNotationError(kind dice.ErrorKind) { r.kinds = append(r.kinds, kind) }

func TestTool_Definition(t *testing.T) {
	def := New(nil, nil).Definition()

	assert.Equal(t, Name, def.Name)
	require.NotNil(t, def.InputSchema)
	assert.Contains(t, def.InputSchema.Properties, "notation")
	assert.Contains(t, def.InputSchema.Properties, "num_rolls")
	assert.Contains(t, def.InputSchema.Required, "notation")
	assert.NotContains(t, def.InputSchema.Required, "num_rolls")
}

func TestTool_Call(t *testing.T) {
	rec := &recorder{}
	tool := New(dice.NewRoller(fixed{}), rec)

	result, err := tool.Call(context.Background(), json.RawMessage(`{"notation":"2d20k1","num_rolls":3}`))
	require.NoError(t, err)

	assert.Contains(t, result.Text, "2d20k1 #1: [20, (20)] = 20")
	assert.Contains(t, result.Text, "Totals: [20, 20, 20]")

	out, ok := result.Structured.(Output)
	require.True(t, ok)
	assert.Equal(t, "2d20kh1", out.Notation)
	assert.Equal(t, "KEEP_HIGHEST", out.Mode)
	assert.Equal(t, 1, out.KeepCount)
	assert.Equal(t, []int{20, 20, 20}, out.Totals)
	require.Len(t, out.Rolls, 3)
	assert.Equal(t, []Die{{Face: 20, Selected: true}, {Face: 20, Selected: false}}, out.Rolls[0])

	require.Len(t, rec.specs, 1)
	assert.Equal(t, 3, rec.specs[0].Repeats)
}

func TestTool_CallDefaultsToOneRoll(t *testing.T) {
	result, err := New(dice.NewRoller(fixed{}), nil).Call(context.Background(), json.RawMessage(`{"notation":"3d6"}`))
	require.NoError(t, err)
	assert.Equal(t, "3d6: [6, 6, 6] = 18", result.Text)
}

func TestTool_CallErrors(t *testing.T) {
	tests := []struct {
		name string
		args string
		code string
	}{
		{"invalid modifier count", `{"notation":"3d6k5"}`, string(dice.InvalidModifierCount)},
		{"malformed", `{"notation":"2x6"}`, string(dice.MalformedNotation)},
		{"explicit zero rolls", `{"notation":"1d6","num_rolls":0}`, string(dice.OutOfRangeValue)},
		{"unknown modifier", `{"notation":"2d20d1"}`, string(dice.UnknownModifier)},
		{"missing notation", `{}`, string(dice.MalformedNotation)},
		{"unknown field", `{"notation":"1d6","sides":6}`, tools.CodeInvalidArguments},
		{"wrong type", `{"notation":12}`, tools.CodeInvalidArguments},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			_, err := New(nil, rec).Call(context.Background(), json.RawMessage(tt.args))
			require.Error(t, err)
			assert.Equal(t, tt.code, tools.CodeOf(err))

			var perr *dice.ParseError
			if errors.As(err, &perr) {
				assert.Equal(t, []dice.ErrorKind{perr.Kind}, rec.kinds)
			}
		})
	}
}
