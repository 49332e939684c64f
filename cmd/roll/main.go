// Command roll rolls dice notation from the command line.
//
//	roll [-n repeats] [-plain] NOTATION...
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"mcp-toolbox-go/internal/dice"
)

func main() {
	repeats := flag.Int("n", 1, "number of independent rolls")
	plain := flag.Bool("plain", false, "print the plain text rendering without color")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: roll [-n repeats] [-plain] NOTATION...\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	roller := dice.NewRoller(nil)
	failed := false
	for _, notation := range flag.Args() {
		result, err := roller.RollNotation(notation, *repeats)
		if err != nil {
			printError(os.Stderr, err)
			failed = true
			continue
		}
		if *plain {
			fmt.Println(result.String())
			continue
		}
		printResult(color.Output, result)
	}

	if failed {
		os.Exit(1)
	}
}

func printResult(w io.Writer, result dice.Result) {
	label := color.New(color.FgCyan, color.Bold).SprintFunc()
	kept := color.New(color.FgGreen).SprintFunc()
	dropped := color.New(color.Faint).SprintFunc()
	total := color.New(color.FgYellow, color.Bold).SprintFunc()

	for i, outcomes := range result.Rolls {
		name := result.Spec.Notation
		if len(result.Rolls) > 1 {
			name = fmt.Sprintf("%s #%d", name, i+1)
		}

		faces := make([]string, len(outcomes))
		for j, o := range outcomes {
			if o.Selected {
				faces[j] = kept(o.Face)
			} else {
				faces[j] = dropped(fmt.Sprintf("(%d)", o.Face))
			}
		}
		fmt.Fprintf(w, "%s: [%s] = %s\n", label(name), strings.Join(faces, ", "), total(result.Totals[i]))
	}
	if len(result.Totals) > 1 {
		sums := make([]string, len(result.Totals))
		for i, t := range result.Totals {
			sums[i] = fmt.Sprint(t)
		}
		fmt.Fprintf(w, "%s [%s]\n", label("Totals:"), strings.Join(sums, ", "))
	}
}

func printError(w io.Writer, err error) {
	red := color.New(color.FgRed).SprintFunc()
	var perr *dice.ParseError
	if errors.As(err, &perr) {
		fmt.Fprintf(w, "%s %s\n", red(string(perr.Kind)+":"), perr.Message)
		return
	}
	fmt.Fprintln(w, red(err.Error()))
}
