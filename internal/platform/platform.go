// Package platform maps the build platform to the strategy used to build the
// vendored native libraries.
package platform

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Kind is the closed set of build strategies.
type Kind int

const (
	Unsupported Kind = iota
	// Unix covers Linux, macOS and the BSDs: POSIX sh, make, symlinks.
	Unix
	// Windows builds under an MSYS2/MinGW shell and links extra system libraries.
	Windows
)

func (k Kind) String() string {
	switch k {
	case Unix:
		return "unix"
	case Windows:
		return "windows"
	}
	return "unsupported"
}

// Strategy is the policy active for one run. It is chosen once by Select and
// never changes afterwards.
type Strategy struct {
	Kind Kind
	// GOOS is the platform identifier the strategy was selected for.
	GOOS string
}

func (s Strategy) String() string {
	return s.Kind.String() + "/" + s.GOOS
}

var strategies = map[string]Kind{
	"darwin":    Unix,
	"dragonfly": Unix,
	"freebsd":   Unix,
	"linux":     Unix,
	"netbsd":    Unix,
	"openbsd":   Unix,
	"windows":   Windows,
}

// Kinds returns every strategy kind Select can produce.
func Kinds() []Kind {
	return []Kind{Unix, Windows}
}

// Supported returns the sorted list of supported platform identifiers.
func Supported() []string {
	out := make([]string, 0, len(strategies))
	for goos := range strategies {
		out = append(out, goos)
	}
	slices.Sort(out)
	return out
}

// ErrUnsupportedPlatform is matched by every *UnsupportedPlatformError.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// UnsupportedPlatformError reports a platform with no matching strategy.
type UnsupportedPlatformError struct {
	Platform  string
	Supported []string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported platform %q (supported: %s)", e.Platform, strings.Join(e.Supported, ", "))
}

func (e *UnsupportedPlatformError) Is(target error) bool {
	return target == ErrUnsupportedPlatform
}

// Select returns the strategy for goos. There is no fallback: an unknown
// platform yields *UnsupportedPlatformError.
func Select(goos string) (Strategy, error) {
	kind, ok := strategies[goos]
	if !ok {
		return Strategy{Kind: Unsupported, GOOS: goos}, &UnsupportedPlatformError{
			Platform:  goos,
			Supported: Supported(),
		}
	}
	return Strategy{Kind: kind, GOOS: goos}, nil
}
