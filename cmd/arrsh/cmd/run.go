package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/arrshell/arrsh/internal/env"
	arrsherrors "github.com/arrshell/arrsh/internal/errors"
	"github.com/arrshell/arrsh/internal/eval"
	"github.com/arrshell/arrsh/internal/lexer"
	"github.com/arrshell/arrsh/internal/printer"
	"github.com/arrshell/arrsh/internal/tree"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.Args = cobra.ArbitraryArgs
	rootCmd.RunE = runArrsh
}

// runArrsh dispatches on the positional arguments: no positional argument
// starts the interactive REPL; one filename plus any number of extra
// arguments runs that file in script mode with ARGV bound to the
// extras. Unknown flags are rejected by cobra before this ever runs.
func runArrsh(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		runREPL()
		return nil
	}
	return runScript(args[0], args[1:])
}

// runScript opens filename, binds ARGV to argv (as a string array),
// and evaluates every line of the file in order. Each line is tried
// first in "preview" mode, with side effects disallowed: a line
// with no side effect just returns its value; a line that would bind
// a variable or touch an external command is re-run for real. A
// failure at any line reports its diagnostic and stops the script,
// but the process still exits 0 — a nonzero exit code is reserved
// for argument misuse at the CLI boundary.
func runScript(filename string, argv []string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to open file `%s`.\n", filename)
		return nil
	}

	e := env.New()
	argvNodes := make([]*tree.Node, len(argv))
	for i, a := range argv {
		argvNodes[i] = tree.NewString(a, tree.Location{})
	}
	e.Set("ARGV", tree.NewArray(argvNodes, tree.Location{}))

	lines := strings.Split(string(data), "\n")
	for _, line := range lines {
		toks, err := lexer.Tokenize(line)
		if err != nil {
			printErr(locateLexError(err, line, filename))
			break
		}
		if len(toks) == 0 {
			continue
		}

		result, err := eval.EvalLine(toks, line, filename, e, true)
		var failExtern *eval.FailExternError
		if errors.As(err, &failExtern) {
			result, err = eval.EvalLine(toks, line, filename, e, false)
		}
		if err != nil {
			printErr(err)
			break
		}
		log.WithField("line", line).Trace("evaluated script line")
		if result != nil {
			fmt.Println(printer.Display(result))
		}
	}
	return nil
}

// runREPL is a plain, scriptable line-based prompt. Each line is
// tokenized, resolved, and evaluated with side effects fully enabled,
// and its value is pretty-printed.
func runREPL() {
	e := env.New()
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("arrsh — an interactive array shell. `)help` for the command list.")

	for {
		fmt.Print("$ ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, ")") {
			if quit := runMetaCommand(trimmed[1:], e); quit {
				return
			}
			continue
		}

		toks, err := lexer.Tokenize(line)
		if err != nil {
			printErr(locateLexError(err, line, "<repl>"))
			continue
		}
		if len(toks) == 0 {
			continue
		}

		log.WithField("line", line).Info("evaluating line")
		result, err := eval.EvalLine(toks, line, "<repl>", e, false)
		if err != nil {
			printErr(err)
			continue
		}
		if result != nil {
			fmt.Println(printer.Display(result))
		}
	}
}

// runMetaCommand handles the `)`-prefixed REPL commands. The raw-mode
// line-editor overlay, terminal-size querying, and syntax highlighting
// live outside this binary; what's implemented here is the part of
// each command that doesn't depend on that machinery. Returns true
// when the REPL should exit.
func runMetaCommand(cmd string, e *env.Env) bool {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "help":
		if len(fields) > 1 {
			fmt.Printf("No detailed help is built in for %q.\n", fields[1])
		} else {
			fmt.Println("Commands: )help [topic]  )info EXPR  )wipe  )clear  )rtf FILE  )cm  )c [line]")
		}
	case "info":
		fmt.Println(strings.Join(fields[1:], " "))
	case "wipe":
		e.Wipe()
		fmt.Println("Environment cleared.")
	case "clear":
		fmt.Print("\x1b[2J\x1b[H")
	case "rtf":
		fmt.Println("The )rtf line-editor overlay is a REPL input mechanic and is out of scope for this build.")
	case "cm":
		fmt.Println("Commit-mode toggling applies to the raw-mode line editor, which is out of scope for this build; every line here commits immediately.")
	case "c":
		if len(fields) > 1 {
			fmt.Println(strings.Join(fields[1:], " "))
		}
	default:
		fmt.Printf("Invalid shell command %q.\n", fields[0])
	}
	return false
}

// locateLexError upgrades a tokenizer failure to a full diagnostic
// with the faulty source line and a caret span; anything else passes
// through unchanged.
func locateLexError(err error, line, file string) error {
	var le *lexer.LexError
	if !errors.As(err, &le) {
		return err
	}
	pos := lexer.Position{Line: 1, Column: le.Col + 1}
	return arrsherrors.NewCompilerErrorSpan(pos, le.Len, le.Message, le.Note, line, file)
}

func printErr(err error) {
	var ce *arrsherrors.CompilerError
	if errors.As(err, &ce) {
		fmt.Fprintln(os.Stderr, ce.Format(true))
		return
	}
	fmt.Fprintln(os.Stderr, err.Error())
}
