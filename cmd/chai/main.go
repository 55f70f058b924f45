// Command chai is the cmd/chai CLI of SPEC_FULL.md §6: a thin driver over
// the chai package's Host API. It is the only evaluation path the module
// ships — the REPL, `-c`, `-`, and positional-file modes all call the same
// chai.Engine.Eval.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/rubiojr/chaiscript-go/boxed"
	"github.com/rubiojr/chaiscript-go/chai"
)

var version = "v0.1.0"

func main() {
	cmd := &cli.Command{
		Name:                   "chai",
		Usage:                  "An embeddable, ChaiScript-inspired scripting language",
		Version:                version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "command",
				Aliases: []string{"c"},
				Usage:   "Evaluate <text> instead of reading a file",
			},
			&cli.BoolFlag{
				Name:    "interactive",
				Aliases: []string{"i"},
				Usage:   "Force the REPL even when stdin is piped",
			},
			&cli.BoolFlag{
				Name:  "stdin",
				Usage: "Read a script from stdin",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	e := chai.New()

	switch {
	case cmd.String("command") != "":
		return evalAndPrint(e, cmd.String("command"))

	case cmd.Bool("stdin") || cmd.Args().First() == "-":
		src, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		return evalAndPrint(e, string(src))

	case cmd.NArg() > 0:
		v, err := e.EvalFile(cmd.Args().First())
		if err != nil {
			return err
		}
		return printResult(e, v)

	case cmd.Bool("interactive") || term.IsTerminal(int(os.Stdin.Fd())):
		return repl(e)

	default:
		src, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		return evalAndPrint(e, string(src))
	}
}

func evalAndPrint(e *chai.Engine, source string) error {
	v, err := e.Eval(source)
	if err != nil {
		return err
	}
	return printResult(e, v)
}

func printResult(e *chai.Engine, v boxed.Value) error {
	if v.IsVoid() {
		return nil
	}
	s, err := e.ToString(v)
	if err != nil {
		return nil
	}
	fmt.Println(s)
	return nil
}

// repl reads one line at a time from stdin, evaluating each against the
// same long-lived Engine so later lines see earlier bindings (spec.md §6's
// CLI description), printing to_string of each non-void result.
func repl(e *chai.Engine) error {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("chai> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		v, err := e.Eval(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		if v.IsVoid() {
			continue
		}
		s, err := e.ToString(v)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(s)
	}
}
