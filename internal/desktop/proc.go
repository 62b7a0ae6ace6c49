package desktop

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// ProcDesktop presents top-level processes from the /proc table as windows.
//
// A browser forks renderer and helper children that all share the binary, so
// only processes whose parent does not run the same executable count — one
// instance shows up once per top-level process, the way it shows up once per
// top-level window. SIGTERM is the polite close request; Chromium treats it
// as a graceful shutdown and its own dialogs still apply.
type ProcDesktop struct {
	root string
}

func NewProcDesktop() *ProcDesktop {
	return &ProcDesktop{root: "/proc"}
}

func (d *ProcDesktop) Windows() ([]Window, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, err
	}

	exe := make(map[int]string)
	ppid := make(map[int]int)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		// Unreadable entries (exited, or not ours to inspect) are simply
		// excluded from the pass, never an error.
		path, err := os.Readlink(filepath.Join(d.root, e.Name(), "exe"))
		if err != nil {
			continue
		}
		exe[pid] = strings.TrimSuffix(path, " (deleted)")
		ppid[pid] = readPPID(filepath.Join(d.root, e.Name(), "stat"))
	}

	var windows []Window
	for pid, path := range exe {
		if parent, ok := exe[ppid[pid]]; ok && parent == path {
			continue
		}
		windows = append(windows, &procWindow{pid: pid, exe: path})
	}
	return windows, nil
}

// readPPID parses the parent pid out of /proc/<pid>/stat. The comm field may
// contain spaces and parentheses, so fields are counted from the last ')'.
func readPPID(statPath string) int {
	data, err := os.ReadFile(statPath)
	if err != nil {
		return 0
	}
	raw := string(data)
	end := strings.LastIndex(raw, ")")
	if end < 0 || end+2 > len(raw) {
		return 0
	}
	fields := strings.Fields(raw[end+2:])
	if len(fields) < 2 {
		return 0
	}
	ppid, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0
	}
	return ppid
}

type procWindow struct {
	pid int
	exe string
}

func (w *procWindow) ExecutablePath() (string, error) {
	return w.exe, nil
}

func (w *procWindow) RequestClose() error {
	return syscall.Kill(w.pid, syscall.SIGTERM)
}
