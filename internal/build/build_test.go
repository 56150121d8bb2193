package build

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/goplus/cdeps/internal/graph"
	"github.com/goplus/cdeps/internal/link"
	"github.com/goplus/cdeps/internal/platform"
	"github.com/goplus/cdeps/internal/vendored"
	"github.com/goplus/cdeps/pkgs/buildsys"
)

func newTestBuilder(t *testing.T, goos string, r buildsys.Runner) *Builder {
	t.Helper()
	b, err := NewBuilder(Options{VendorDir: t.TempDir(), GOOS: goos, Runner: r})
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	return b
}

// unitsOf returns the distinct consecutive unit names of keys shaped "<unit>:<x>".
func unitsOf(keys []string) string {
	var out []string
	for _, key := range keys {
		u, _, _ := strings.Cut(key, ":")
		if len(out) == 0 || out[len(out)-1] != u {
			out = append(out, u)
		}
	}
	return strings.Join(out, " ")
}

func orderOf(g *graph.Graph) string {
	var s []string
	for _, u := range g.Order() {
		s = append(s, u.Name)
	}
	return strings.Join(s, " ")
}

func TestBuildSuccess(t *testing.T) {
	for _, goos := range []string{"linux", "darwin", "windows"} {
		t.Run(goos, func(t *testing.T) {
			r := newMockRunner()
			b := newTestBuilder(t, goos, r)

			dirs, err := b.Build()
			if err != nil {
				t.Fatalf("Build: %v", err)
			}

			want := orderOf(b.Graph())
			if got := unitsOf(r.trace); got != want {
				t.Errorf("phase trace units = %q, want %q", got, want)
			}
			if len(r.trace) != len(b.Plan()) {
				t.Errorf("ran %d phases, plan has %d", len(r.trace), len(b.Plan()))
			}

			var dirUnits []string
			count := map[string]int{}
			for _, d := range dirs {
				dirUnits = append(dirUnits, d.Unit+":")
				if !d.System() {
					count[d.Unit]++
				}
			}
			if got := unitsOf(dirUnits); got != want {
				t.Errorf("directive units = %q, want %q", got, want)
			}
			for _, u := range b.Graph().Order() {
				if count[u.Name] != len(u.Artifacts) {
					t.Errorf("%s: %d library directives, want %d", u.Name, count[u.Name], len(u.Artifacts))
				}
			}
		})
	}
}

func TestBuildAbortsOnFirstFailure(t *testing.T) {
	r := newMockRunner()
	r.fail[vendored.OpenSSL+":configure"] = 1
	b := newTestBuilder(t, "linux", r)

	emitted := 0
	b.emit = func(g *graph.Graph) []link.Directive {
		emitted++
		return link.Emit(g)
	}

	dirs, err := b.Build()
	if err == nil {
		t.Fatal("Build succeeded, want failure")
	}
	if dirs != nil {
		t.Errorf("got %d directives from a failed build", len(dirs))
	}
	if emitted != 0 {
		t.Errorf("emitter invoked %d times", emitted)
	}
	if !errors.Is(err, buildsys.ErrPhaseFailed) {
		t.Fatalf("error = %v, want ErrPhaseFailed", err)
	}
	var pe *buildsys.PhaseFailedError
	if !errors.As(err, &pe) {
		t.Fatalf("error type = %T", err)
	}
	if pe.Unit != vendored.OpenSSL || pe.Phase != "configure" {
		t.Errorf("failed at %s/%s, want openssl/configure", pe.Unit, pe.Phase)
	}
	if !strings.Contains(pe.Output, "no acceptable C compiler") {
		t.Errorf("Output = %q", pe.Output)
	}

	if last := r.trace[len(r.trace)-1]; last != "openssl:configure" {
		t.Errorf("trace ends at %q, want openssl:configure", last)
	}
	for _, unit := range []string{vendored.Libevent, vendored.Tor} {
		if n := r.calls(unit); n != 0 {
			t.Errorf("%s: %d phases invoked after the failure", unit, n)
		}
	}
	if n := r.calls(vendored.Zlib); n == 0 {
		t.Error("zlib never ran")
	}
}

func TestBuildDeterministic(t *testing.T) {
	root := t.TempDir()
	run := func(f link.Format) []byte {
		b, err := NewBuilder(Options{VendorDir: root, GOOS: "linux", Runner: newMockRunner()})
		if err != nil {
			t.Fatal(err)
		}
		dirs, err := b.Build()
		if err != nil {
			t.Fatal(err)
		}
		var buf bytes.Buffer
		if err := link.Write(&buf, f, "libtor", dirs); err != nil {
			t.Fatal(err)
		}
		return buf.Bytes()
	}
	for _, f := range []link.Format{link.FormatFlags, link.FormatCgo} {
		first, second := run(f), run(f)
		if len(first) == 0 {
			t.Fatalf("%s: empty output", f)
		}
		if !bytes.Equal(first, second) {
			t.Fatalf("%s outputs differ:\n%s\n---\n%s", f, first, second)
		}
	}
}

func TestUnsupportedPlatformRunsNothing(t *testing.T) {
	r := newMockRunner()
	b, err := NewBuilder(Options{VendorDir: t.TempDir(), GOOS: "plan9", Runner: r})
	if !errors.Is(err, platform.ErrUnsupportedPlatform) {
		t.Fatalf("NewBuilder error = %v, want ErrUnsupportedPlatform", err)
	}
	if b != nil {
		t.Error("got a builder for an unsupported platform")
	}
	if len(r.trace) != 0 {
		t.Errorf("%d phases invoked", len(r.trace))
	}
}

func TestGraphIntegrityRunsNothing(t *testing.T) {
	r := newMockRunner()
	_, err := NewBuilder(Options{
		VendorDir: t.TempDir(),
		GOOS:      "linux",
		Runner:    r,
		Units: func(root string) []*graph.Unit {
			units := vendored.Units(root)
			units[len(units)-1].Deps = append(units[len(units)-1].Deps, "lzo")
			return units
		},
	})
	if !errors.Is(err, graph.ErrGraphIntegrity) {
		t.Fatalf("NewBuilder error = %v, want ErrGraphIntegrity", err)
	}
	if len(r.trace) != 0 {
		t.Errorf("%d phases invoked", len(r.trace))
	}
}

func TestPlan(t *testing.T) {
	b := newTestBuilder(t, "linux", newMockRunner())
	steps := b.Plan()
	if len(steps) == 0 {
		t.Fatal("empty plan")
	}
	var keys []string
	for _, s := range steps {
		keys = append(keys, s.Unit+":"+s.Phase.Label)
	}
	joined := strings.Join(keys, " ")
	for _, want := range []string{
		"openssl:configure openssl:depend openssl:compile openssl:install",
		"tor:bootstrap tor:link-sibling tor:configure tor:compile tor:install",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("plan %q missing %q", joined, want)
		}
	}
	if !strings.HasSuffix(joined, "tor:install") {
		t.Errorf("plan does not end with tor:install: %q", joined)
	}
}

func TestLinksWithoutBuilding(t *testing.T) {
	r := newMockRunner()
	b := newTestBuilder(t, "windows", r)
	dirs := b.Links()
	if len(r.trace) != 0 {
		t.Errorf("Links ran %d phases", len(r.trace))
	}
	var sys []string
	for _, d := range dirs {
		if d.System() {
			sys = append(sys, d.Library)
		}
	}
	if got := strings.Join(sys, " "); got != "ws2_32 crypt32 gdi32" {
		t.Errorf("system libraries = %q", got)
	}
}
