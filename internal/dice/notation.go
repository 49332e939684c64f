// Package dice parses dice notation such as "4d6dl1" and rolls the resulting
// dice pools.
//
// Parsing and rolling are separate steps: Parse validates a notation string
// into a Spec, and a Roller executes a Spec against an injected Source of
// randomness. Neither step performs I/O or keeps state between calls.
package dice

import (
	"fmt"
	"strconv"
	"strings"
)

// Limits applied while parsing. Values above them are rejected, never clamped.
const (
	MaxCount   = 1000
	MaxSides   = 1_000_000
	MaxRepeats = 100
)

// KeepMode selects which dice contribute to a total.
type KeepMode int

const (
	KeepNone KeepMode = iota
	KeepHighest
	KeepLowest
	DropHighest
	DropLowest
)

func (m KeepMode) String() string {
	switch m {
	case KeepNone:
		return "NONE"
	case KeepHighest:
		return "KEEP_HIGHEST"
	case KeepLowest:
		return "KEEP_LOWEST"
	case DropHighest:
		return "DROP_HIGHEST"
	case DropLowest:
		return "DROP_LOWEST"
	default:
		return "UNKNOWN"
	}
}

// token returns the canonical modifier token for the mode.
func (m KeepMode) token() string {
	switch m {
	case KeepHighest:
		return "kh"
	case KeepLowest:
		return "kl"
	case DropHighest:
		return "dh"
	case DropLowest:
		return "dl"
	default:
		return ""
	}
}

// modifiers maps modifier tokens to keep modes. A bare "d" is absent:
// drop modifiers must say which end they drop.
var modifiers = map[string]KeepMode{
	"k":  KeepHighest,
	"kh": KeepHighest,
	"kl": KeepLowest,
	"dh": DropHighest,
	"dl": DropLowest,
}

// Spec is a validated roll specification.
type Spec struct {
	// Notation is the input as parsed: trimmed and lower-cased.
	Notation  string
	Count     int
	Sides     int
	Mode      KeepMode
	KeepCount int
	Repeats   int
}

// Canonical renders the spec in normalized notation, e.g. "1d20" or "2d20kh1".
func (s Spec) Canonical() string {
	out := fmt.Sprintf("%dd%d", s.Count, s.Sides)
	if s.Mode != KeepNone {
		out += s.Mode.token() + strconv.Itoa(s.KeepCount)
	}
	return out
}

// Parse converts a notation string and a repeat count into a Spec.
//
//	notation := count? "d" sides modifier?
//	modifier := ("k"|"kh"|"kl"|"dh"|"dl") count
//
// Syntax errors are reported before range errors, and range errors before
// modifier count errors.
func Parse(notation string, repeats int) (Spec, error) {
	normalized := strings.ToLower(strings.TrimSpace(notation))
	if normalized == "" {
		return Spec{}, newParseError(MalformedNotation, notation, "notation is empty")
	}

	if strings.ContainsAny(normalized, " \t\r\n") {
		return Spec{}, newParseError(MalformedNotation, notation, "notation must not contain whitespace")
	}

	sc := scanner{input: normalized}

	countDigits := sc.digits()
	if !sc.accept('d') {
		if sc.done() {
			return Spec{}, newParseError(MalformedNotation, notation, "missing \"d\" separator")
		}
		return Spec{}, newParseError(MalformedNotation, notation,
			fmt.Sprintf("expected \"d\" separator at position %d, found %q", sc.pos+1, sc.peek()))
	}

	sidesDigits := sc.digits()
	if sidesDigits == "" {
		return Spec{}, newParseError(MalformedNotation, notation, "number of sides is missing or not numeric")
	}

	var (
		mode       = KeepNone
		keepDigits string
	)
	if !sc.done() {
		tok := sc.token()
		m, ok := modifiers[tok]
		if !ok {
			return Spec{}, newParseError(UnknownModifier, notation, unknownModifierMessage(tok))
		}
		mode = m

		keepDigits = sc.digits()
		if keepDigits == "" {
			return Spec{}, newParseError(MalformedNotation, notation,
				fmt.Sprintf("modifier %q requires a count", tok))
		}
		if !sc.done() {
			return Spec{}, newParseError(UnknownModifier, notation,
				fmt.Sprintf("unexpected %q after modifier; only one keep/drop modifier is allowed", sc.rest()))
		}
	}

	count := 1
	if countDigits != "" {
		n, err := bounded(countDigits, "dice count", 1, MaxCount)
		if err != nil {
			return Spec{}, newParseError(OutOfRangeValue, notation, err.Error())
		}
		count = n
	}

	sides, err := bounded(sidesDigits, "number of sides", 1, MaxSides)
	if err != nil {
		return Spec{}, newParseError(OutOfRangeValue, notation, err.Error())
	}

	if repeats < 1 || repeats > MaxRepeats {
		return Spec{}, newParseError(OutOfRangeValue, notation,
			fmt.Sprintf("number of rolls must be between 1 and %d, got %d", MaxRepeats, repeats))
	}

	keepCount := 0
	if mode != KeepNone {
		n, err := strconv.Atoi(keepDigits)
		if err != nil || n > count {
			return Spec{}, newParseError(InvalidModifierCount, notation,
				fmt.Sprintf("modifier count %s exceeds the %d dice rolled", keepDigits, count))
		}
		keepCount = n
	}

	return Spec{
		Notation:  normalized,
		Count:     count,
		Sides:     sides,
		Mode:      mode,
		KeepCount: keepCount,
		Repeats:   repeats,
	}, nil
}

func unknownModifierMessage(tok string) string {
	if tok == "d" {
		return "ambiguous modifier \"d\": use \"dh\" to drop highest or \"dl\" to drop lowest"
	}
	return fmt.Sprintf("unknown modifier %q (supported: k, kh, kl, dh, dl)", tok)
}

// bounded parses a run of ASCII digits and checks it against [lo, hi].
func bounded(digits, what string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(digits)
	if err != nil || n > hi {
		return 0, fmt.Errorf("%s must be at most %d, got %s", what, hi, digits)
	}
	if n < lo {
		return 0, fmt.Errorf("%s must be at least %d, got %d", what, lo, n)
	}
	return n, nil
}

// scanner walks a normalized notation string one byte at a time.
type scanner struct {
	input string
	pos   int
}

func (s *scanner) done() bool { return s.pos >= len(s.input) }

func (s *scanner) peek() byte { return s.input[s.pos] }

func (s *scanner) rest() string { return s.input[s.pos:] }

func (s *scanner) accept(c byte) bool {
	if !s.done() && s.peek() == c {
		s.pos++
		return true
	}
	return false
}

func (s *scanner) digits() string {
	return s.span(func(c byte) bool { return c >= '0' && c <= '9' })
}

// token consumes everything up to the next digit.
func (s *scanner) token() string {
	return s.span(func(c byte) bool { return c < '0' || c > '9' })
}

func (s *scanner) span(match func(byte) bool) string {
	start := s.pos
	for !s.done() && match(s.peek()) {
		s.pos++
	}
	return s.input[start:s.pos]
}
