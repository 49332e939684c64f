package dice

import (
	"strconv"
	"strings"
)

const discardedLegend = "(discarded dice shown in parentheses)"

// String renders the result for a human or agent caller:
//
//	4d6dl1 #1: [5, 3, (1), 6] = 14
//	4d6dl1 #2: [2, 2, 4, (2)] = 8
//	Totals: [14, 8]
//	(discarded dice shown in parentheses)
//
// A single repeat omits the "#n" label and the totals line.
func (r Result) String() string {
	var b strings.Builder
	multi := len(r.Rolls) > 1
	discarded := false

	for i, outcomes := range r.Rolls {
		b.WriteString(r.Spec.Notation)
		if multi {
			b.WriteString(" #")
			b.WriteString(strconv.Itoa(i + 1))
		}
		b.WriteString(": [")
		for j, o := range outcomes {
			if j > 0 {
				b.WriteString(", ")
			}
			if o.Selected {
				b.WriteString(strconv.Itoa(o.Face))
			} else {
				discarded = true
				b.WriteString("(" + strconv.Itoa(o.Face) + ")")
			}
		}
		b.WriteString("] = ")
		b.WriteString(strconv.Itoa(r.Totals[i]))
		b.WriteByte('\n')
	}

	if multi {
		b.WriteString("Totals: ")
		b.WriteString(formatInts(r.Totals))
		b.WriteByte('\n')
	}
	if discarded {
		b.WriteString(discardedLegend)
		b.WriteByte('\n')
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func formatInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
