package build

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goplus/cdeps/pkgs/buildsys"
)

// mockRunner implements buildsys.Runner for testing. It records every phase
// as "<unit>:<label>", deriving the unit from the base of the phase directory.
type mockRunner struct {
	trace []string
	// fail maps "<unit>:<label>" to the exit status the phase reports.
	fail map[string]int
}

func (m *mockRunner) Run(p buildsys.Phase) error {
	key := filepath.Base(p.Dir) + ":" + p.Label
	m.trace = append(m.trace, key)
	if code, ok := m.fail[key]; ok {
		return &mockExitError{code: code}
	}
	return nil
}

// calls returns how many phases of unit were invoked.
func (m *mockRunner) calls(unit string) int {
	n := 0
	for _, key := range m.trace {
		if u, _, _ := strings.Cut(key, ":"); u == unit {
			n++
		}
	}
	return n
}

type mockExitError struct {
	code int
}

func (e *mockExitError) Error() string  { return fmt.Sprintf("exit status %d", e.code) }
func (e *mockExitError) Output() string { return "configure: error: no acceptable C compiler found in $PATH" }

func newMockRunner() *mockRunner {
	return &mockRunner{fail: map[string]int{}}
}
