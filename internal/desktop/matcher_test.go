package desktop

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type fakeWindow struct {
	exe    string
	err    error
	closed bool
}

func (w *fakeWindow) ExecutablePath() (string, error) {
	if w.err != nil {
		return "", w.err
	}
	return w.exe, nil
}

func (w *fakeWindow) RequestClose() error {
	w.closed = true
	return nil
}

func writeFakeBinary(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write fake binary: %v", err)
	}
	return path
}

func TestMatchesReflexive(t *testing.T) {
	dir := t.TempDir()
	binary := writeFakeBinary(t, dir, "browser")

	m := NewMatcher(func() string { return binary })
	if !m.Matches(&fakeWindow{exe: binary}) {
		t.Fatal("Matches() = false for the locator's own path")
	}
}

func TestMatchesThroughSymlink(t *testing.T) {
	dir := t.TempDir()
	binary := writeFakeBinary(t, dir, "browser")
	link := filepath.Join(dir, "browser-link")
	if err := os.Symlink(binary, link); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	m := NewMatcher(func() string { return link })
	if !m.Matches(&fakeWindow{exe: binary}) {
		t.Fatal("Matches() = false when locator returns a symlink to the window's binary")
	}
}

func TestMatchesRejectsUnrelatedExecutable(t *testing.T) {
	dir := t.TempDir()
	binary := writeFakeBinary(t, dir, "browser")
	other := writeFakeBinary(t, dir, "editor")

	m := NewMatcher(func() string { return binary })
	if m.Matches(&fakeWindow{exe: other}) {
		t.Fatal("Matches() = true for an unrelated executable")
	}
}

func TestMatchesFailureIsNonMatch(t *testing.T) {
	dir := t.TempDir()
	binary := writeFakeBinary(t, dir, "browser")
	m := NewMatcher(func() string { return binary })

	if m.Matches(&fakeWindow{err: errors.New("process exited")}) {
		t.Fatal("Matches() = true for a window whose owner cannot be resolved")
	}
	if m.Matches(&fakeWindow{exe: filepath.Join(dir, "gone")}) {
		t.Fatal("Matches() = true for a dangling executable path")
	}
}

func TestMatchesDanglingLocatorPathIsNonMatch(t *testing.T) {
	dir := t.TempDir()
	binary := writeFakeBinary(t, dir, "browser")
	m := NewMatcher(func() string { return filepath.Join(dir, "missing") })

	if m.Matches(&fakeWindow{exe: binary}) {
		t.Fatal("Matches() = true when the locator path cannot be canonicalized")
	}
}
