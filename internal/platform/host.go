package platform

import (
	"fmt"
	"runtime"
)

// HostInfo describes the machine running the build. It is diagnostic only and
// never influences strategy selection.
type HostInfo struct {
	OS      string
	Arch    string
	Release string
}

func (h HostInfo) String() string {
	if h.Release == "" {
		return fmt.Sprintf("%s/%s", h.OS, h.Arch)
	}
	return fmt.Sprintf("%s/%s (%s)", h.OS, h.Arch, h.Release)
}

// Host describes the current machine.
func Host() HostInfo {
	return HostInfo{
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
		Release: osRelease(),
	}
}
