//go:build !unix && !windows

package platform

func osRelease() string { return "" }
