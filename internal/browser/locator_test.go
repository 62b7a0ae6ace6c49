package browser

import (
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestLocateExplicitPathWins(t *testing.T) {
	l := NewLocator("/opt/browser/app")
	l.lookPath = func(string) (string, error) {
		t.Fatal("lookPath should not be consulted when an explicit path is set")
		return "", nil
	}
	if got := l.Locate(); got != "/opt/browser/app" {
		t.Fatalf("Locate() = %q, want /opt/browser/app", got)
	}
}

func TestLocatePrefersFirstCandidateHit(t *testing.T) {
	l := NewLocator("")
	l.lookPath = func(name string) (string, error) {
		if name == "chromium-browser" {
			return "/usr/bin/chromium-browser", nil
		}
		return "", errors.New("not found")
	}
	if got := l.Locate(); got != "/usr/bin/chromium-browser" {
		t.Fatalf("Locate() = %q, want /usr/bin/chromium-browser", got)
	}
}

func TestLocateFallsBackWhenEverythingMisses(t *testing.T) {
	if runtime.GOOS == "darwin" {
		t.Skip("darwin bundle path may shadow the fallback")
	}
	l := NewLocator("")
	l.lookPath = func(string) (string, error) {
		return "", errors.New("not found")
	}
	got := l.Locate()
	if got == "" {
		t.Fatal("Locate() returned empty path, want best-effort fallback")
	}
	want := filepath.Join("google-chrome", "chrome")
	if !strings.HasSuffix(got, want) {
		t.Fatalf("Locate() = %q, want suffix %q", got, want)
	}
}

func TestLocateIsRepeatable(t *testing.T) {
	calls := 0
	l := NewLocator("")
	l.lookPath = func(name string) (string, error) {
		if name == "google-chrome" {
			calls++
			return "/usr/bin/google-chrome", nil
		}
		return "", errors.New("not found")
	}
	first := l.Locate()
	second := l.Locate()
	if first != second {
		t.Fatalf("Locate() not stable: %q then %q", first, second)
	}
	if calls != 2 {
		t.Fatalf("Locate() cached its result (lookups = %d, want 2)", calls)
	}
}
