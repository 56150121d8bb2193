package buildsys

import (
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
)

// Phase is one externally invoked build step (bootstrap, configure, compile,
// install) of a vendored library.
type Phase struct {
	// Label names the phase in diagnostics, e.g. "configure".
	Label   string
	Program string
	Args    []string
	// Env is merged over the process environment for this phase only.
	Env map[string]string
	// Dir is the working directory. It is always the unit's source directory.
	Dir string
}

// String returns the phase as a shell-like command line.
func (p Phase) String() string {
	var sb strings.Builder
	keys := make([]string, 0, len(p.Env))
	for k := range p.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(k + "=" + p.Env[k] + " ")
	}
	sb.WriteString(p.Program)
	for _, arg := range p.Args {
		sb.WriteByte(' ')
		sb.WriteString(arg)
	}
	return sb.String()
}

// Runner executes a single phase and blocks until it has finished.
// A nil error means the process exited with status zero.
type Runner interface {
	Run(p Phase) error
}

// ErrPhaseFailed is matched by every *PhaseFailedError.
var ErrPhaseFailed = errors.New("build phase failed")

// PhaseFailedError reports a phase that exited non-zero or could not be launched.
type PhaseFailedError struct {
	Unit    string
	Phase   string
	Command string
	Dir     string
	// ExitCode is -1 when the process never started.
	ExitCode int
	// Output holds the last lines the tool wrote, if they were captured.
	Output string
	Err    error
}

func (e *PhaseFailedError) Error() string {
	msg := fmt.Sprintf("%s: %s failed (in %s: %s)", e.Unit, e.Phase, e.Dir, e.Command)
	if e.ExitCode >= 0 {
		msg += fmt.Sprintf(": exit status %d", e.ExitCode)
	} else {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	if e.Output != "" {
		msg += "\n" + e.Output
	}
	return msg
}

func (e *PhaseFailedError) Unwrap() error {
	return e.Err
}

func (e *PhaseFailedError) Is(target error) bool {
	return target == ErrPhaseFailed
}

// outputError is implemented by runner errors that carry captured tool output.
type outputError interface {
	error
	Output() string
}

// RunPhase runs p for the named unit through r and turns any failure into a
// *PhaseFailedError. It never retries.
func RunPhase(r Runner, unit string, p Phase) error {
	err := r.Run(p)
	if err == nil {
		return nil
	}
	pe := &PhaseFailedError{
		Unit:     unit,
		Phase:    p.Label,
		Command:  p.String(),
		Dir:      p.Dir,
		ExitCode: -1,
		Err:      err,
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		pe.ExitCode = exitErr.ExitCode()
	}
	var out outputError
	if errors.As(err, &out) {
		pe.Output = out.Output()
	}
	return pe
}
