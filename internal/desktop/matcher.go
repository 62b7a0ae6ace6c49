package desktop

import (
	"path/filepath"
	"strings"
)

// Matcher decides whether a window belongs to the browser instance the
// manager launched. Identity is path-based rather than pid-based: browsers
// commonly re-exec or spawn a detached UI process, so the only durable signal
// a window presents later is which executable owns it.
type Matcher struct {
	locate func() string
}

// NewMatcher builds a matcher over the locator's current result. locate is
// called on every Matches so identity always reflects the current install
// location.
func NewMatcher(locate func() string) *Matcher {
	return &Matcher{locate: locate}
}

// Matches reports whether w is owned by the controlled browser's executable.
// Any resolution failure (owner exited, permission denied, dangling path)
// yields false, never an error: ambiguous windows are excluded from the match
// set rather than risk closing an unrelated one.
func (m *Matcher) Matches(w Window) bool {
	owned, err := w.ExecutablePath()
	if err != nil {
		return false
	}
	ownedCanon, ok := canonicalize(owned)
	if !ok {
		return false
	}
	wantCanon, ok := canonicalize(m.locate())
	if !ok {
		return false
	}
	return strings.EqualFold(ownedCanon, wantCanon)
}

// canonicalize resolves symlinks and normalizes the path so two references to
// the same binary compare equal. ok is false when the path cannot be resolved.
func canonicalize(path string) (string, bool) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", false
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return "", false
	}
	return filepath.Clean(abs), true
}
