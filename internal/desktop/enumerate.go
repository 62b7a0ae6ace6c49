package desktop

import "log/slog"

// Enumerate makes a single pass over every top-level window, counting those
// the matcher claims. When requestClose is set, each match is also sent a
// polite close request. The pass returns immediately; it never waits for the
// requests to take effect.
//
// A failed pass is reported as an error so the caller can tell "no windows
// matched" apart from "could not look".
func Enumerate(d Desktop, m *Matcher, requestClose bool) (int, error) {
	windows, err := d.Windows()
	if err != nil {
		return 0, err
	}

	count := 0
	for _, w := range windows {
		if !m.Matches(w) {
			continue
		}
		count++
		if requestClose {
			if err := w.RequestClose(); err != nil {
				slog.Debug("window close request failed", "error", err)
			}
		}
	}
	return count, nil
}
