package browser

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// defaultCandidates are the well-known binary names probed on PATH, in
// preference order.
var defaultCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium-browser",
	"chromium",
}

const darwinAppPath = "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"

// Locator resolves the path of the browser binary the agent controls.
//
// Locate never caches: the installed location is ground truth, and identity
// decisions must always reflect where the browser lives right now, not where
// it lived when the agent started.
type Locator struct {
	// ExplicitPath, when set, short-circuits discovery entirely.
	ExplicitPath string

	candidates []string
	lookPath   func(string) (string, error)
}

func NewLocator(explicitPath string) *Locator {
	return &Locator{
		ExplicitPath: explicitPath,
		candidates:   defaultCandidates,
		lookPath:     exec.LookPath,
	}
}

// Locate returns the path to the browser executable. It never fails: when
// every lookup misses it returns the deterministic fallback under the user's
// application-data root as a best-effort guess, and downstream launch or
// match simply reports the miss.
func (l *Locator) Locate() string {
	if l.ExplicitPath != "" {
		return l.ExplicitPath
	}
	for _, name := range l.candidates {
		if path, err := l.lookPath(name); err == nil {
			return path
		}
	}
	if runtime.GOOS == "darwin" {
		if _, err := os.Stat(darwinAppPath); err == nil {
			return darwinAppPath
		}
	}
	return fallbackPath()
}

func fallbackPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "/opt"
	}
	return filepath.Join(dir, "google-chrome", "chrome")
}
