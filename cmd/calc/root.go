package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aescanero/dago-node-calculator/internal/calc"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var errFailed = errors.New("one or more expressions failed")

type evalOptions struct {
	jsonOutput bool
	maxDepth   int
	verbose    bool
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "calc",
		Short:         "Evaluate arithmetic expressions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newEvalCmd(os.Stdin))
	return root
}

func newEvalCmd(stdin io.Reader) *cobra.Command {
	opts := &evalOptions{}

	cmd := &cobra.Command{
		Use:   "eval [expression...]",
		Short: "Evaluate an expression, or one expression per line from stdin",
		Long: "Evaluate an expression given as arguments (joined with spaces), or read one\n" +
			"expression per line from stdin when no arguments are given.\n\n" +
			"Flags must come before the expression. Arguments such as -5 are part of the\n" +
			"expression, and -- ends flag parsing explicitly.",
		Example: "  calc eval 2 + 3 \\* 4\n  calc eval -5 + 3\n  calc eval --json -- --5",
		// flags are split from the expression by hand so a leading unary minus is not a flag
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			flagArgs, args := splitFlags(cmd.Flags(), args)
			if err := cmd.Flags().Parse(flagArgs); err != nil {
				return err
			}
			if help, _ := cmd.Flags().GetBool("help"); help {
				return cmd.Help()
			}

			logger := zap.NewNop()
			if opts.verbose {
				cfg := zap.NewDevelopmentConfig()
				cfg.OutputPaths = []string{"stderr"}
				l, err := cfg.Build()
				if err != nil {
					return fmt.Errorf("failed to initialize logger: %w", err)
				}
				defer func() { _ = l.Sync() }()
				logger = l
			}

			evaluator := calc.NewEvaluator(logger, calc.WithMaxDepth(opts.maxDepth))
			out := cmd.OutOrStdout()

			if len(args) > 0 {
				expression := strings.Join(args, " ")
				return report(out, expression, evaluator.Evaluate(expression), opts.jsonOutput)
			}
			return evalLines(stdin, out, evaluator, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "print results as JSON")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", calc.DefaultMaxDepth, "maximum nesting of parentheses and unary signs")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log evaluation failures to stderr")

	return cmd
}

// splitFlags separates the leading flags from the expression. Scanning stops at
// "--" or at the first argument that is not a flag name, so "-5" or "--5" stay
// in the expression.
func splitFlags(flags *pflag.FlagSet, args []string) (flagArgs, rest []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return flagArgs, args[i+1:]
		}

		name, hasValue := flagName(arg)
		if name == "" {
			return flagArgs, args[i:]
		}
		flagArgs = append(flagArgs, arg)

		// a non-boolean long flag without "=value" takes the next argument
		if hasValue || !strings.HasPrefix(arg, "--") {
			continue
		}
		if f := flags.Lookup(name); f != nil && f.NoOptDefVal == "" && i+1 < len(args) {
			i++
			flagArgs = append(flagArgs, args[i])
		}
	}
	return flagArgs, nil
}

// flagName returns the flag name of arg, or "" when arg does not look like a flag
func flagName(arg string) (name string, hasValue bool) {
	var body string
	switch {
	case strings.HasPrefix(arg, "--"):
		body = arg[2:]
	case strings.HasPrefix(arg, "-"):
		body = arg[1:]
	default:
		return "", false
	}
	if body == "" || !isLetter(body[0]) {
		return "", false
	}
	name, _, hasValue = strings.Cut(body, "=")
	return name, hasValue
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// evalLines evaluates every non-blank line of in
func evalLines(in io.Reader, out io.Writer, evaluator *calc.Evaluator, opts *evalOptions) error {
	interactive := false
	if f, ok := in.(*os.File); ok {
		interactive = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	var failed bool
	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			fmt.Fprint(out, "> ")
		}
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := report(out, line, evaluator.Evaluate(line), opts.jsonOutput); err != nil {
			failed = true
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if failed {
		return errFailed
	}
	return nil
}

type jsonResult struct {
	Expression string `json:"expression"`
	calc.Result
}

// report prints one result and returns errFailed when it is a failure
func report(out io.Writer, expression string, result calc.Result, asJSON bool) error {
	if asJSON {
		data, err := json.Marshal(jsonResult{Expression: expression, Result: result})
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		fmt.Fprintln(out, string(data))
	} else if result.OK {
		fmt.Fprintln(out, result.Value)
	} else {
		fmt.Fprintf(out, "error: %s\n", result.Message)
	}

	if !result.OK {
		return errFailed
	}
	return nil
}
