package browser

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"

	"github.com/dgnsrekt/preview_agent/internal/errcode"
	"github.com/dgnsrekt/preview_agent/internal/netutil"
)

// profileDirName is the dedicated profile created under the profile root for
// debug launches. An isolated profile keeps the launched instance apart from
// the user's default browsing session and its extensions/cookies.
const profileDirName = "live-dev-profile"

// LaunchRequest describes one browser launch. Immutable once submitted.
// ProfileRoot is only consulted when RemoteDebugging is set.
type LaunchRequest struct {
	URL             string
	RemoteDebugging bool
	ProfileRoot     string
}

// Launcher starts the preview browser as a detached process. It keeps no
// handle to what it started; the identity matcher re-discovers the instance
// later from the process table.
type Launcher struct {
	locator   *Locator
	debugPort int
}

func NewLauncher(locator *Locator, debugPort int) *Launcher {
	return &Launcher{locator: locator, debugPort: debugPort}
}

// Launch resolves the browser binary, builds the argument list, and starts
// the process in its own session. OS failures are mapped once into the
// portable taxonomy and returned; nothing is retried here.
func (l *Launcher) Launch(req LaunchRequest) error {
	path := l.locator.Locate()
	if _, err := os.Stat(path); err != nil {
		return errcode.New(errcode.BrowserNotInstalled, "browser executable not found at "+path, err)
	}

	if req.RemoteDebugging {
		if netutil.IsPortListening("127.0.0.1", l.debugPort) {
			slog.Warn("remote debugging port already in use, launching anyway",
				"port", l.debugPort)
		}
		profile := filepath.Join(req.ProfileRoot, profileDirName)
		if err := os.MkdirAll(profile, 0o755); err != nil {
			return errcode.New(errcode.FromOS(err, false), "create profile dir", err)
		}
	}

	cmd := exec.Command(path, l.buildArgs(req)...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return errcode.New(errcode.FromOS(err, true), "start browser", err)
	}

	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		slog.Debug("browser process release failed", "error", err)
	}
	slog.Info("browser launched",
		"path", path, "pid", pid, "remote_debugging", req.RemoteDebugging)
	return nil
}

// buildArgs assembles the command line. The URL is always the final argument.
func (l *Launcher) buildArgs(req LaunchRequest) []string {
	var args []string
	if req.RemoteDebugging {
		args = append(args,
			"--user-data-dir="+filepath.Join(req.ProfileRoot, profileDirName),
			"--no-first-run",
			"--no-default-browser-check",
			"--allow-file-access-from-files",
			fmt.Sprintf("--remote-debugging-port=%d", l.debugPort),
		)
	}
	return append(args, req.URL)
}
