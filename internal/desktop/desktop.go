// Package desktop models the OS-visible surface of a running browser: the
// top-level windows it presents, who owns them, and how to ask one to close.
// The lifecycle manager only ever supplies a predicate and a side effect;
// handle plumbing stays in here.
package desktop

// Window is one top-level window-like surface the OS exposes.
type Window interface {
	// ExecutablePath resolves the executable image backing the window's
	// owning process.
	ExecutablePath() (string, error)

	// RequestClose sends a polite, non-blocking close request. It never
	// force-terminates: the browser keeps its own unsaved-state dialogs.
	RequestClose() error
}

// Desktop walks every top-level window in a single pass. Enumeration order is
// OS-defined and must not be assumed stable across calls.
type Desktop interface {
	Windows() ([]Window, error)
}
