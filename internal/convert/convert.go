// Copyright Ansvar Systems AB, 2026. All rights reserved.

// Package convert turns legacy binary Word documents into plain text by
// piping them through an external converter tool. Detection tries antiword
// first and falls back to catdoc; both read the document from a file and
// write text to stdout.
package convert

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
)

const (
	binAntiword = "antiword"
	binCatdoc   = "catdoc"
)

// Converter transforms legacy DOC bytes into plain text.
type Converter interface {
	// Name returns the converter tool name.
	Name() string

	// Available reports whether the tool binary exists on PATH.
	Available() bool

	// Convert returns the plain-text rendering of a legacy DOC payload.
	Convert(data []byte) (string, error)
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunOutput(name string, args []string, stdout io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunOutput(name string, args []string, stdout io.Writer) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = stdout
	return cmd.Run()
}

// tool implements Converter for a specific converter binary. Antiword and
// catdoc share the same shape; they differ only in name and flags.
type tool struct {
	bin  string
	args []string
	exec executor
}

func (t *tool) Name() string { return t.bin }

func (t *tool) Available() bool {
	_, err := t.exec.LookPath(t.bin)
	return err == nil
}

func (t *tool) Convert(data []byte) (string, error) {
	tmp, err := os.CreateTemp("", "qatarlaw-*.doc")
	if err != nil {
		return "", fmt.Errorf("creating temp document: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		return "", fmt.Errorf("writing temp document: %w", writeErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("closing temp document: %w", closeErr)
	}

	var out bytes.Buffer
	args := append(append([]string{}, t.args...), tmpPath)
	if err := t.exec.RunOutput(t.bin, args, &out); err != nil {
		return "", fmt.Errorf("converting with %s: %w", t.bin, err)
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("%s produced empty output", t.bin)
	}
	return out.String(), nil
}

func newAntiword(exec executor) *tool {
	// -w 0 disables line wrapping so paragraphs stay on single lines.
	return &tool{bin: binAntiword, args: []string{"-w", "0"}, exec: exec}
}

func newCatdoc(exec executor) *tool {
	return &tool{bin: binCatdoc, args: []string{"-w"}, exec: exec}
}

var defaultExec = &osExecutor{}

// DetectConverter tries antiword first, then catdoc. Returns an error when
// neither tool is on PATH.
func DetectConverter() (Converter, error) {
	return detectConverter(defaultExec)
}

func detectConverter(exec executor) (Converter, error) {
	antiword := newAntiword(exec)
	if antiword.Available() {
		return antiword, nil
	}

	catdoc := newCatdoc(exec)
	if catdoc.Available() {
		return catdoc, nil
	}

	return nil, fmt.Errorf(
		"no DOC converter available: neither %s nor %s found on PATH",
		binAntiword, binCatdoc,
	)
}
