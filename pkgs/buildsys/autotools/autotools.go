// Package autotools describes the classic bootstrap/configure/make/make-install
// workflow as a sequence of build phases.
package autotools

import (
	"maps"
	"path/filepath"

	"github.com/goplus/cdeps/pkgs/buildsys"
)

// Shell runs the project's scripts. Scripts are never executed directly so a
// missing execute bit in a vendored tree does not matter.
const Shell = "sh"

// AutoTools produces the phases of an Autotools-style build.
type AutoTools struct {
	sourceDir  string
	installDir string
	env        map[string]string
}

// New returns an AutoTools rooted at sourceDir that installs into installDir.
func New(sourceDir, installDir string) *AutoTools {
	return &AutoTools{
		sourceDir:  sourceDir,
		installDir: installDir,
		env:        make(map[string]string),
	}
}

// Env sets key=value for every phase produced afterwards.
func (a *AutoTools) Env(key, value string) *AutoTools {
	a.env[key] = value
	return a
}

// Bootstrap runs a generator script such as ./autogen.sh.
func (a *AutoTools) Bootstrap(script string) buildsys.Phase {
	return a.phase("bootstrap", Shell, script)
}

// Configure runs the given configure script. --prefix is prepended
// automatically when installDir is set. Extra flags follow --prefix.
func (a *AutoTools) Configure(script string, args ...string) buildsys.Phase {
	flags := make([]string, 0, 2+len(args))
	flags = append(flags, script)
	if a.installDir != "" {
		flags = append(flags, "--prefix="+a.installDir)
	}
	return a.phase("configure", Shell, append(flags, args...)...)
}

// Make runs "make" with optional targets under a custom label.
func (a *AutoTools) Make(label string, args ...string) buildsys.Phase {
	return a.phase(label, "make", args...)
}

// Build runs "make" with optional extra arguments.
func (a *AutoTools) Build(args ...string) buildsys.Phase {
	return a.Make("compile", args...)
}

// Install runs "make install" with optional extra arguments appended.
func (a *AutoTools) Install(args ...string) buildsys.Phase {
	return a.Make("install", append([]string{"install"}, args...)...)
}

// OutputDir returns installDir if set, otherwise the source directory.
func (a *AutoTools) OutputDir() string {
	if a.installDir != "" {
		return a.installDir
	}
	return a.sourceDir
}

// LibDir returns the directory static archives are installed into.
func (a *AutoTools) LibDir() string {
	return filepath.Join(a.OutputDir(), "lib")
}

func (a *AutoTools) phase(label, program string, args ...string) buildsys.Phase {
	p := buildsys.Phase{
		Label:   label,
		Program: program,
		Args:    args,
		Dir:     a.sourceDir,
	}
	if len(a.env) > 0 {
		p.Env = maps.Clone(a.env)
	}
	return p
}
