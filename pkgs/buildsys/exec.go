package buildsys

import (
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/qiniu/x/log"
)

const (
	tailBytes = 16 << 10
	tailLines = 30
)

// Exec runs phases as real child processes.
type Exec struct {
	// Verbose streams tool output to the terminal in addition to capturing it.
	Verbose bool
	Stdout  io.Writer
	Stderr  io.Writer
}

// Run starts p.Program in p.Dir and waits for it to exit.
func (e *Exec) Run(p Phase) error {
	log.Debugf("[%s] %s", p.Dir, p)

	if _, err := os.Stat(p.Dir); err != nil {
		return err
	}

	tail := &tailBuffer{max: tailBytes}
	cmd := exec.Command(p.Program, p.Args...)
	cmd.Dir = p.Dir
	cmd.Stdout = tail
	cmd.Stderr = tail
	if e.Verbose {
		cmd.Stdout = io.MultiWriter(tail, e.stdout())
		cmd.Stderr = io.MultiWriter(tail, e.stderr())
	}
	if len(p.Env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), p.Env)
	}
	if err := cmd.Run(); err != nil {
		return &runError{err: err, output: tail.lastLines(tailLines)}
	}
	return nil
}

func (e *Exec) stdout() io.Writer {
	if e.Stdout != nil {
		return e.Stdout
	}
	return os.Stdout
}

func (e *Exec) stderr() io.Writer {
	if e.Stderr != nil {
		return e.Stderr
	}
	return os.Stderr
}

type runError struct {
	err    error
	output string
}

func (e *runError) Error() string  { return e.err.Error() }
func (e *runError) Unwrap() error  { return e.err }
func (e *runError) Output() string { return e.output }

// tailBuffer keeps the most recent max bytes written to it.
type tailBuffer struct {
	buf []byte
	max int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

func (t *tailBuffer) lastLines(n int) string {
	lines := strings.Split(strings.TrimRight(string(t.buf), "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// mergeEnv returns base with every key in overrides replaced or appended.
func mergeEnv(base []string, overrides map[string]string) []string {
	out := make([]string, len(base))
	copy(out, base)
	idx := make(map[string]int, len(out))
	for i, kv := range out {
		if k, _, ok := strings.Cut(kv, "="); ok {
			idx[k] = i
		}
	}
	for k, v := range overrides {
		if i, ok := idx[k]; ok {
			out[i] = k + "=" + v
		} else {
			out = append(out, k+"="+v)
		}
	}
	return out
}
