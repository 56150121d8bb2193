// Package vendored declares the vendored native libraries and how each one is
// built on every supported strategy.
//
// Layout under the vendor root is fixed:
//
//	<root>/
//	  zlib/      compression (libz)
//	  xz/        compression (liblzma)
//	  openssl/   crypto (libcrypto, libssl)
//	  libevent/  event loop (libevent)
//	  tor/       anonymization daemon, depends on zlib, openssl and libevent
//
// Every unit installs into a "dist" prefix beneath its own source tree.
package vendored

import (
	"path/filepath"
	"slices"

	"github.com/goplus/cdeps/internal/graph"
	"github.com/goplus/cdeps/internal/platform"
	"github.com/goplus/cdeps/pkgs/buildsys"
	"github.com/goplus/cdeps/pkgs/buildsys/autotools"
)

// Unit names.
const (
	Zlib     = "zlib"
	XZ       = "xz"
	OpenSSL  = "openssl"
	Libevent = "libevent"
	Tor      = "tor"
)

// PrefixDir is the install prefix directory inside every unit's source tree.
const PrefixDir = "dist"

// Units returns the vendored units rooted at root, dependencies first.
// root should be absolute since configure scripts receive paths derived from it.
func Units(root string) []*graph.Unit {
	return []*graph.Unit{
		zlib(root),
		xz(root),
		openssl(root),
		libevent(root),
		tor(root),
	}
}

func srcDir(root, name string) string {
	return filepath.Join(root, name)
}

func prefix(root, name string) string {
	return filepath.Join(root, name, PrefixDir)
}

// same returns a phase table using one sequence for every strategy.
func same(phases ...buildsys.Phase) map[platform.Kind][]buildsys.Phase {
	m := make(map[platform.Kind][]buildsys.Phase)
	for _, k := range platform.Kinds() {
		m[k] = phases
	}
	return m
}

func zlib(root string) *graph.Unit {
	dir := srcDir(root, Zlib)
	dist := prefix(root, Zlib)
	a := autotools.New(dir, dist)

	// zlib's configure does not understand MinGW; the bundled gcc makefile does.
	winMake := []string{"-f", filepath.Join("win32", "Makefile.gcc")}
	winInstall := slices.Concat(winMake, []string{
		"INCLUDE_PATH=" + filepath.Join(dist, "include"),
		"LIBRARY_PATH=" + filepath.Join(dist, "lib"),
		"BINARY_PATH=" + filepath.Join(dist, "bin"),
	})

	return &graph.Unit{
		Name: Zlib,
		Dir:  dir,
		Phases: map[platform.Kind][]buildsys.Phase{
			platform.Unix: {
				a.Configure("./configure", "--static"),
				a.Build(),
				a.Install(),
			},
			platform.Windows: {
				a.Build(winMake...),
				a.Install(winInstall...),
			},
		},
		Artifacts: []graph.Artifact{
			{SearchPath: a.LibDir(), Library: "z"},
		},
	}
}

func xz(root string) *graph.Unit {
	dir := srcDir(root, XZ)
	a := autotools.New(dir, prefix(root, XZ))
	return &graph.Unit{
		Name: XZ,
		Dir:  dir,
		Phases: same(
			a.Bootstrap("./autogen.sh"),
			a.Configure("./configure",
				"--disable-shared",
				"--enable-static",
				"--disable-doc",
				"--disable-scripts",
				"--disable-xz",
				"--disable-xzdec",
				"--disable-lzmadec",
				"--disable-lzmainfo",
				"--disable-lzma-links",
			),
			a.Build(),
			a.Install(),
		),
		Artifacts: []graph.Artifact{
			{SearchPath: a.LibDir(), Library: "lzma"},
		},
	}
}

func openssl(root string) *graph.Unit {
	dir := srcDir(root, OpenSSL)
	a := autotools.New(dir, prefix(root, OpenSSL))
	return &graph.Unit{
		Name: OpenSSL,
		Dir:  dir,
		Phases: same(
			a.Configure("./config", "no-shared", "no-dso", "no-zlib"),
			a.Make("depend", "depend"),
			a.Build(),
			a.Install(),
		),
		Artifacts: []graph.Artifact{
			{SearchPath: a.LibDir(), Library: "crypto"},
			{SearchPath: a.LibDir(), Library: "ssl"},
		},
	}
}

func libevent(root string) *graph.Unit {
	dir := srcDir(root, Libevent)
	a := autotools.New(dir, prefix(root, Libevent))
	return &graph.Unit{
		Name: Libevent,
		Dir:  dir,
		Phases: same(
			a.Bootstrap("./autogen.sh"),
			a.Configure("./configure",
				"--disable-shared",
				"--enable-static",
				"--with-pic",
				"--disable-openssl",
				"--disable-samples",
				"--disable-libevent-regress",
			),
			a.Build(),
			a.Install(),
		),
		Artifacts: []graph.Artifact{
			{SearchPath: a.LibDir(), Library: "event"},
		},
	}
}

func tor(root string) *graph.Unit {
	dir := srcDir(root, Tor)
	a := autotools.New(dir, prefix(root, Tor))

	torFlags := func(zlibDir string) []string {
		return []string{
			"--disable-gcc-hardening",
			"--enable-static-tor",
			"--enable-static-libevent",
			"--with-libevent-dir=" + prefix(root, Libevent),
			"--enable-static-openssl",
			"--with-openssl-dir=" + prefix(root, OpenSSL),
			"--enable-static-zlib",
			"--with-zlib-dir=" + zlibDir,
			"--disable-system-torrc",
			"--disable-asciidoc",
		}
	}

	// tor's configure looks for libz.a under the openssl prefix, so the zlib
	// archive is linked there first.
	linkSibling := buildsys.Phase{
		Label:   "link-sibling",
		Program: "ln",
		Args: []string{
			"-sf",
			filepath.Join(prefix(root, Zlib), "lib", "libz.a"),
			filepath.Join(prefix(root, OpenSSL), "lib", "libz.a"),
		},
		Dir: dir,
	}
	unixPhases := []buildsys.Phase{
		a.Bootstrap("./autogen.sh"),
		linkSibling,
		a.Configure("./configure", torFlags(prefix(root, OpenSSL))...),
		a.Build(),
		a.Install(),
	}

	// Symlinks are unreliable under MSYS, so zlib is found in its own prefix.
	w := autotools.New(dir, prefix(root, Tor)).Env("LIBS", "-lcrypt32")
	windowsPhases := []buildsys.Phase{
		a.Bootstrap("./autogen.sh"),
		w.Configure("./configure", torFlags(prefix(root, Zlib))...),
		a.Build(),
		a.Install(),
	}

	lib := func(rel, name string) graph.Artifact {
		return graph.Artifact{SearchPath: filepath.Join(dir, filepath.FromSlash(rel)), Library: name}
	}
	return &graph.Unit{
		Name: Tor,
		Dir:  dir,
		Deps: []string{Zlib, OpenSSL, Libevent},
		Phases: map[platform.Kind][]buildsys.Phase{
			platform.Unix:    unixPhases,
			platform.Windows: windowsPhases,
		},
		Artifacts: []graph.Artifact{
			lib("src/ext/ed25519/ref10", "ed25519_ref10"),
			lib("src/ext/ed25519/donna", "ed25519_donna"),
			lib("src/trunnel", "or-trunnel"),
			lib("src/ext/keccak-tiny", "keccak-tiny"),
			lib("src/common", "curve25519_donna"),
			lib("src/common", "or"),
			lib("src/common", "or-crypto"),
			lib("src/common", "or-ctime"),
			lib("src/common", "or-event"),
			lib("src/or", "tor"),
		},
		SystemLibs: map[platform.Kind][]string{
			platform.Windows: {"ws2_32", "crypt32", "gdi32"},
		},
	}
}
