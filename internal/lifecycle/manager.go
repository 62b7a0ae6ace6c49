// Package lifecycle owns the one-at-a-time live preview browser relationship:
// launching the browser and driving the asynchronous close protocol over the
// window table.
package lifecycle

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dgnsrekt/preview_agent/internal/browser"
	"github.com/dgnsrekt/preview_agent/internal/desktop"
	"github.com/dgnsrekt/preview_agent/internal/errcode"
)

const (
	// DefaultHeartbeat is how often close progress is re-checked while a
	// close is pending.
	DefaultHeartbeat = 30 * time.Millisecond

	// DefaultCloseTimeout bounds the total wait for a close to complete. A
	// modal "save changes?" dialog can block the browser forever; the host
	// must not be left waiting with it.
	DefaultCloseTimeout = 10 * time.Second

	devtoolsCloseWait = time.Second
)

// Launcher starts the preview browser process.
type Launcher interface {
	Launch(req browser.LaunchRequest) error
}

// PoliteCloser asks the browser itself to shut down over its debugging
// channel. Best effort only; the window poll stays the ground truth.
type PoliteCloser interface {
	CloseBrowser(ctx context.Context) error
}

// Options tunes the manager. Zero values take the defaults.
type Options struct {
	Heartbeat    time.Duration
	CloseTimeout time.Duration

	// Devtools, when set, is offered a polite close before the window pass
	// whenever the last launch enabled remote debugging.
	Devtools PoliteCloser
}

// Manager is the process-wide lifecycle manager. Construct exactly one and
// tear it down with Shutdown; there is no implicit default instance.
//
// Timer callbacks arrive on their own goroutines, so the pending record is
// guarded by a single mutex and every transition cancels timers before
// mutating state.
type Manager struct {
	launcher  Launcher
	desk      desktop.Desktop
	matcher   *desktop.Matcher
	devtools  PoliteCloser
	heartbeat time.Duration
	timeout   time.Duration

	mu        sync.Mutex
	pending   *pendingClose
	debugging bool
}

// pendingClose is the at-most-one in-flight close. Its callback is non-nil
// exactly while the close is in flight, and fires exactly once.
type pendingClose struct {
	heartbeat  *time.Timer
	timeout    *time.Timer
	onComplete func(errcode.Code)
}

func (p *pendingClose) stopTimers() {
	if p.heartbeat != nil {
		p.heartbeat.Stop()
	}
	if p.timeout != nil {
		p.timeout.Stop()
	}
}

func NewManager(launcher Launcher, desk desktop.Desktop, matcher *desktop.Matcher, opts Options) *Manager {
	if opts.Heartbeat <= 0 {
		opts.Heartbeat = DefaultHeartbeat
	}
	if opts.CloseTimeout <= 0 {
		opts.CloseTimeout = DefaultCloseTimeout
	}
	return &Manager{
		launcher:  launcher,
		desk:      desk,
		matcher:   matcher,
		devtools:  opts.Devtools,
		heartbeat: opts.Heartbeat,
		timeout:   opts.CloseTimeout,
	}
}

// Open launches the browser pointed at url. Synchronous: the returned code is
// the launch outcome, and no handle to the process is retained afterwards.
func (m *Manager) Open(url string, remoteDebugging bool, profileRoot string) errcode.Code {
	if strings.TrimSpace(url) == "" {
		return errcode.InvalidParams
	}

	err := m.launcher.Launch(browser.LaunchRequest{
		URL:             url,
		RemoteDebugging: remoteDebugging,
		ProfileRoot:     profileRoot,
	})
	if err != nil {
		slog.Error("browser launch failed", "url", url, "error", err)
		return errcode.CodeOf(err)
	}

	m.mu.Lock()
	m.debugging = remoteDebugging
	m.mu.Unlock()
	return errcode.OK
}

// Close asks the launched browser instance to close and reports the outcome
// through onComplete, which fires exactly once with one of OK, Timeout, or
// Superseded. Close itself never blocks on the browser.
//
// A Close issued while another is pending supersedes it: the old callback
// receives Superseded and its timers are torn down before anything new is
// armed, so two heartbeats never coexist.
func (m *Manager) Close(onComplete func(errcode.Code)) {
	m.mu.Lock()
	superseded := m.detachPendingLocked()
	debugging := m.debugging
	m.mu.Unlock()

	if superseded != nil {
		slog.Warn("pending close superseded by newer close request")
		superseded(errcode.Superseded)
	}

	if debugging && m.devtools != nil {
		// Best effort only; the poll below decides the outcome, so the
		// caller never waits on the devtools round trip.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), devtoolsCloseWait)
			defer cancel()
			if err := m.devtools.CloseBrowser(ctx); err != nil {
				slog.Debug("devtools close request failed", "error", err)
			}
		}()
	}

	n, err := desktop.Enumerate(m.desk, m.matcher, true)
	if err == nil && n == 0 {
		slog.Info("no preview browser windows to close")
		onComplete(errcode.OK)
		return
	}
	if err != nil {
		// Could not look at the window table; assume the browser is still up
		// and let the poll sort it out under the timeout.
		slog.Warn("window enumeration failed, polling until timeout", "error", err)
	} else {
		slog.Info("close requested, waiting for windows to disappear", "windows", n)
	}

	p := &pendingClose{onComplete: onComplete}
	m.mu.Lock()
	// A concurrent Close may have installed its own record between the first
	// detach and now; it loses to this one, but its callback still fires.
	interim := m.detachPendingLocked()
	m.pending = p
	p.heartbeat = time.AfterFunc(m.heartbeat, func() { m.onHeartbeat(p) })
	p.timeout = time.AfterFunc(m.timeout, func() { m.onTimeout(p) })
	m.mu.Unlock()

	if interim != nil {
		slog.Warn("pending close superseded by newer close request")
		interim(errcode.Superseded)
	}
}

func (m *Manager) onHeartbeat(p *pendingClose) {
	m.mu.Lock()
	live := m.pending == p
	m.mu.Unlock()
	if !live {
		return
	}

	n, err := desktop.Enumerate(m.desk, m.matcher, false)
	if err != nil || n > 0 {
		// Still closing, or the window table could not be read this beat.
		// Either way wait for the next beat; a failed look must never count
		// as "all windows gone". The timeout timer bounds the whole wait.
		if err != nil {
			slog.Debug("window enumeration failed, skipping beat", "error", err)
		}
		m.mu.Lock()
		if m.pending == p {
			p.heartbeat.Reset(m.heartbeat)
		}
		m.mu.Unlock()
		return
	}

	m.complete(p, errcode.OK)
}

func (m *Manager) onTimeout(p *pendingClose) {
	slog.Warn("browser did not close before the timeout")
	m.complete(p, errcode.Timeout)
}

// complete finishes p exactly once. Both timers are dead before the callback
// observes the result; a stale timer that lost the race sees pending != p and
// drops out.
func (m *Manager) complete(p *pendingClose, code errcode.Code) {
	m.mu.Lock()
	if m.pending != p {
		m.mu.Unlock()
		return
	}
	m.pending = nil
	p.stopTimers()
	m.mu.Unlock()

	slog.Info("close completed", "code", code.String())
	p.onComplete(code)
}

// detachPendingLocked tears down the pending close, if any, and hands back
// its callback for the caller to fire once the lock is released.
func (m *Manager) detachPendingLocked() func(errcode.Code) {
	p := m.pending
	if p == nil {
		return nil
	}
	m.pending = nil
	p.stopTimers()
	return p.onComplete
}

// Shutdown tears down any in-flight close, delivering Superseded so the host
// is never left holding a dangling callback.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	cb := m.detachPendingLocked()
	m.mu.Unlock()
	if cb != nil {
		cb(errcode.Superseded)
	}
}

// WindowCount reports how many windows currently belong to the controlled
// browser. Recomputed on every call, never cached.
func (m *Manager) WindowCount() int {
	n, err := desktop.Enumerate(m.desk, m.matcher, false)
	if err != nil {
		slog.Debug("window enumeration failed", "error", err)
		return 0
	}
	return n
}

// Closing reports whether a close is in flight.
func (m *Manager) Closing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending != nil
}

// Debugging reports whether the last launch enabled remote debugging.
func (m *Manager) Debugging() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.debugging
}
