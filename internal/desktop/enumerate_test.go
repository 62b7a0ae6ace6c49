package desktop

import (
	"errors"
	"testing"
)

type fakeDesktop struct {
	windows []Window
	err     error
}

func (d *fakeDesktop) Windows() ([]Window, error) {
	return d.windows, d.err
}

func TestEnumerateCountsOnlyMatches(t *testing.T) {
	dir := t.TempDir()
	browser := writeFakeBinary(t, dir, "browser")
	editor := writeFakeBinary(t, dir, "editor")
	m := NewMatcher(func() string { return browser })

	d := &fakeDesktop{windows: []Window{
		&fakeWindow{exe: browser},
		&fakeWindow{exe: editor},
		&fakeWindow{exe: browser},
	}}

	got, err := Enumerate(d, m, false)
	if err != nil {
		t.Fatalf("Enumerate() error = %v", err)
	}
	if got != 2 {
		t.Fatalf("Enumerate() = %d, want 2", got)
	}
}

func TestEnumerateRequestsCloseOnlyWhenAsked(t *testing.T) {
	dir := t.TempDir()
	browser := writeFakeBinary(t, dir, "browser")
	editor := writeFakeBinary(t, dir, "editor")
	m := NewMatcher(func() string { return browser })

	match := &fakeWindow{exe: browser}
	other := &fakeWindow{exe: editor}
	d := &fakeDesktop{windows: []Window{match, other}}

	if _, err := Enumerate(d, m, false); err != nil {
		t.Fatalf("Enumerate() error = %v", err)
	}
	if match.closed || other.closed {
		t.Fatal("Enumerate(requestClose=false) sent a close request")
	}

	if _, err := Enumerate(d, m, true); err != nil {
		t.Fatalf("Enumerate() error = %v", err)
	}
	if !match.closed {
		t.Fatal("Enumerate(requestClose=true) did not close the matching window")
	}
	if other.closed {
		t.Fatal("Enumerate(requestClose=true) closed a non-matching window")
	}
}

func TestEnumerateSurvivesBrokenWindow(t *testing.T) {
	dir := t.TempDir()
	browser := writeFakeBinary(t, dir, "browser")
	m := NewMatcher(func() string { return browser })

	d := &fakeDesktop{windows: []Window{
		&fakeWindow{err: errors.New("permission denied")},
		&fakeWindow{exe: browser},
	}}

	got, err := Enumerate(d, m, false)
	if err != nil {
		t.Fatalf("Enumerate() error = %v", err)
	}
	if got != 1 {
		t.Fatalf("Enumerate() = %d, want 1 (broken window excluded, pass not aborted)", got)
	}
}

func TestEnumerateDesktopFailureIsAnError(t *testing.T) {
	dir := t.TempDir()
	browser := writeFakeBinary(t, dir, "browser")
	m := NewMatcher(func() string { return browser })

	d := &fakeDesktop{err: errors.New("walk failed")}
	if _, err := Enumerate(d, m, true); err == nil {
		t.Fatal("Enumerate() did not report the failed pass")
	}
}
