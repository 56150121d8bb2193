package link

import (
	"bytes"
	"fmt"
	"go/format"
	"io"
	"strings"
)

// Format selects how directives are written.
type Format string

const (
	// FormatFlags writes one linker flag per line.
	FormatFlags Format = "flags"
	// FormatCgo writes a Go source file carrying #cgo LDFLAGS lines.
	FormatCgo Format = "cgo"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatFlags, FormatCgo:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want %s or %s)", s, FormatFlags, FormatCgo)
}

// Write renders dirs in format f. pkg names the package of generated cgo files.
func Write(w io.Writer, f Format, pkg string, dirs []Directive) error {
	switch f {
	case FormatFlags:
		return WriteFlags(w, dirs)
	case FormatCgo:
		return WriteCgo(w, pkg, dirs)
	}
	return fmt.Errorf("unknown output format %q", f)
}

// WriteFlags writes one linker flag per line.
func WriteFlags(w io.Writer, dirs []Directive) error {
	for _, flag := range Flags(dirs) {
		if _, err := fmt.Fprintln(w, flag); err != nil {
			return err
		}
	}
	return nil
}

// WriteCgo writes a Go file for package pkg whose preamble links dirs.
// Each unit gets its own #cgo line, in build order.
func WriteCgo(w io.Writer, pkg string, dirs []Directive) error {
	var buf bytes.Buffer
	buf.WriteString("// Code generated by cdeps; DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", pkg)
	buf.WriteString("/*\n")
	for start := 0; start < len(dirs); {
		end := start + 1
		for end < len(dirs) && dirs[end].Unit == dirs[start].Unit {
			end++
		}
		for _, flag := range Flags(dirs[start:end]) {
			if strings.ContainsAny(flag, " \t") {
				return fmt.Errorf("cgo: flag %q contains whitespace", flag)
			}
		}
		fmt.Fprintf(&buf, "#cgo LDFLAGS: %s\n", strings.Join(Flags(dirs[start:end]), " "))
		start = end
	}
	buf.WriteString("*/\n")
	buf.WriteString("import \"C\"\n")

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("cgo: %w", err)
	}
	_, err = w.Write(src)
	return err
}
