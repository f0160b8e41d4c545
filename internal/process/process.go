// Package process realizes Command nodes into actual OS processes: it
// spawns a pipe chain of external commands, wiring stdin/stdout/stderr
// per each command's redirect policy, and can capture stdout/stderr
// instead of letting them pass through to the controlling terminal.
//
// Built on os/exec.Cmd, os.Pipe, and goroutines joined by a
// sync.WaitGroup.
package process

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"

	"github.com/arrshell/arrsh/internal/tree"
)

// InternalError tags a runtime plumbing failure — pipe I/O, spawn,
// wait, a missing exit code — as internal, so diagnostics can set it
// apart from the user-facing type and shape errors ordinary
// evaluation produces.
type InternalError struct {
	Action string
	Err    error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("[INTERNAL] Failed to %s.", e.Action)
}

func (e *InternalError) Unwrap() error { return e.Err }

func internalFailure(action string, err error) *InternalError {
	return &InternalError{Action: action, Err: err}
}

// CaptureMode selects what a realization collects versus passes through.
type CaptureMode int

const (
	// CaptureNone passes stdout/stderr straight through to the
	// controlling terminal; realization yields the exit code.
	CaptureNone CaptureMode = iota
	// CaptureData captures stdout as a string; stderr still passes
	// through.
	CaptureData
	// CaptureAll captures both stdout and stderr as strings.
	CaptureAll
)

// Realize spawns the Command chain rooted at n and blocks until it
// completes, returning a value-tree node per mode:
//   - CaptureNone: Num(exit code)
//   - CaptureData: String(captured stdout)
//   - CaptureAll:  Array[String(stdout), Num(exit code), String(stderr)]
//
// A non-Command node (including an Array of them, walked recursively)
// passes through unchanged.
func Realize(n *tree.Node, mode CaptureMode) (*tree.Node, error) {
	if n == nil {
		return nil, nil
	}
	switch n.Kind {
	case tree.KindCommand:
		return realizeCommand(n, mode)
	case tree.KindArray:
		out := make([]*tree.Node, len(n.Elems))
		for i, e := range n.Elems {
			r, err := Realize(e, mode)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return tree.NewArray(out, n.Location), nil
	default:
		return n, nil
	}
}

func realizeCommand(n *tree.Node, mode CaptureMode) (*tree.Node, error) {
	pc, err := spawn(n)
	if err != nil {
		return nil, err
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	var drain sync.WaitGroup

	drain.Add(2)
	go func() {
		defer drain.Done()
		switch mode {
		case CaptureNone:
			io.Copy(os.Stdout, pc.stdout)
		default:
			io.Copy(&stdoutBuf, pc.stdout)
		}
	}()
	go func() {
		defer drain.Done()
		switch mode {
		case CaptureAll:
			io.Copy(&stderrBuf, pc.stderr)
		default:
			io.Copy(os.Stderr, pc.stderr)
		}
	}()

	// Streams drain fully before the exit code is observed, so a
	// captured string is always complete by the time the code is read.
	drain.Wait()
	pc.stdout.Close()
	pc.stderr.Close()

	var waitErr error
	for i, cmd := range pc.cmds {
		err := cmd.Wait()
		if i == len(pc.cmds)-1 {
			waitErr = err
		}
	}

	exitCode := 0
	if waitErr != nil {
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
			if exitCode < 0 {
				return nil, internalFailure("read exit code", nil)
			}
		} else {
			return nil, internalFailure("wait for process", waitErr)
		}
	}

	switch mode {
	case CaptureNone:
		return tree.NewNum(float64(exitCode), n.Location), nil
	case CaptureData:
		return tree.NewString(stdoutBuf.String(), n.Location), nil
	default:
		return tree.NewArray([]*tree.Node{
			tree.NewString(stdoutBuf.String(), n.Location),
			tree.NewNum(float64(exitCode), n.Location),
			tree.NewString(stderrBuf.String(), n.Location),
		}, n.Location), nil
	}
}

// pipedCommand is a fully-started process chain plus the two reader
// ends the caller should drain. cmds is ordered upstream first; the
// final element is the outermost command, whose exit code stands for
// the whole chain.
type pipedCommand struct {
	cmds   []*exec.Cmd
	stdout *os.File
	stderr *os.File
}

// chain carries the state shared along one Command chain: the single
// stderr pipe every stage writes into (each nested stage inherits it
// rather than opening its own, so the whole chain drains into one
// stream), plus the fan-out copiers that must finish before the
// parent's stderr writer may drop.
type chain struct {
	stderrW *os.File
	fanouts sync.WaitGroup
	cmds    []*exec.Cmd
}

// spawn starts the whole chain rooted at n and hands back its drained
// ends. The parent's stderr writer closes only after every stderr
// fan-out finishes, so the stderr reader observes EOF exactly when the
// last writer (child or copier) is gone.
func spawn(n *tree.Node) (*pipedCommand, error) {
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		return nil, internalFailure("open pipe", err)
	}

	ch := &chain{stderrW: stderrW}
	stdoutR, err := ch.spawnStage(n)
	if err != nil {
		stderrR.Close()
		stderrW.Close()
		return nil, err
	}

	go func() {
		ch.fanouts.Wait()
		stderrW.Close()
	}()

	return &pipedCommand{cmds: ch.cmds, stdout: stdoutR, stderr: stderrR}, nil
}

// spawnStage starts one stage of the chain, recursively starting its
// stdin producer first, and returns the reader end of this stage's
// stdout pipe. Each stage gets its own stdout pipe and "both" pipe;
// the stderr pipe is the chain-wide one.
func (ch *chain) spawnStage(n *tree.Node) (*os.File, error) {
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, internalFailure("open pipe", err)
	}
	bothR, bothW, err := os.Pipe()
	if err != nil {
		stdoutR.Close()
		stdoutW.Close()
		return nil, internalFailure("open pipe", err)
	}

	var stdinR *os.File
	if n.Stdin != nil && n.Stdin.Kind == tree.KindCommand {
		stdinR, err = ch.spawnStage(n.Stdin)
		if err != nil {
			stdoutR.Close()
			stdoutW.Close()
			bothR.Close()
			bothW.Close()
			return nil, err
		}
	}

	args, err := commandArgs(n)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(n.Name, args...)
	if stdinR != nil {
		cmd.Stdin = stdinR
	} else {
		cmd.Stdin = os.Stdin
	}

	switch n.Redir.Stdout {
	case tree.ToStdout:
		cmd.Stdout = stdoutW
	case tree.ToStderr:
		cmd.Stdout = ch.stderrW
	case tree.ToBoth:
		cmd.Stdout = bothW
	case tree.ToNull:
		cmd.Stdout = nil
	}
	switch n.Redir.Stderr {
	case tree.ToStdout:
		cmd.Stderr = stdoutW
	case tree.ToStderr:
		cmd.Stderr = ch.stderrW
	case tree.ToBoth:
		cmd.Stderr = bothW
	case tree.ToNull:
		cmd.Stderr = nil
	}

	if err := cmd.Start(); err != nil {
		stdoutR.Close()
		stdoutW.Close()
		bothR.Close()
		bothW.Close()
		return nil, internalFailure(fmt.Sprintf("spawn command %q", n.Name), err)
	}
	ch.cmds = append(ch.cmds, cmd)

	// The child holds its own dups of every pipe it was handed; the
	// parent's copies close as soon as no copier needs them, so each
	// reader sees EOF when the child is done writing.
	if stdinR != nil {
		stdinR.Close()
	}
	bothW.Close()

	stdoutToBoth := n.Redir.Stdout == tree.ToBoth
	stderrToBoth := n.Redir.Stderr == tree.ToBoth

	if !stdoutToBoth {
		stdoutW.Close()
	}

	if stdoutToBoth || stderrToBoth {
		if stderrToBoth {
			ch.fanouts.Add(1)
		}
		stderrW := ch.stderrW
		go func() {
			var writers []io.Writer
			if stdoutToBoth {
				writers = append(writers, stdoutW)
			}
			if stderrToBoth {
				writers = append(writers, stderrW)
			}
			io.Copy(io.MultiWriter(writers...), bothR)
			bothR.Close()
			if stdoutToBoth {
				stdoutW.Close()
			}
			if stderrToBoth {
				ch.fanouts.Done()
			}
		}()
	} else {
		bothR.Close()
	}

	return stdoutR, nil
}

// commandArgs realizes every argument: literal strings/symbols/numbers
// pass through as their text form; a Command argument is realized
// eagerly (CaptureData) before the parent spawns, matching the
// "command as CLI argument" rule.
func commandArgs(n *tree.Node) ([]string, error) {
	args := make([]string, 0, len(n.Args))
	for _, a := range n.Args {
		switch a.Kind {
		case tree.KindString, tree.KindSymbol:
			args = append(args, a.Str)
		case tree.KindNum:
			args = append(args, strconv.FormatFloat(a.NumVal, 'g', -1, 64))
		case tree.KindCommand:
			realized, err := Realize(a, CaptureData)
			if err != nil {
				return nil, err
			}
			if realized.Kind != tree.KindString && realized.Kind != tree.KindNum {
				return nil, fmt.Errorf("process requires valid arguments, but was not given one")
			}
			if realized.Kind == tree.KindString {
				args = append(args, realized.Str)
			} else {
				args = append(args, strconv.FormatFloat(realized.NumVal, 'g', -1, 64))
			}
		default:
			return nil, fmt.Errorf("process requires valid arguments, but was not given one")
		}
	}
	return args, nil
}
