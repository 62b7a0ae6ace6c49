// Package devtools talks to the launched browser's remote-debugging endpoint.
// It speaks browser-level CDP over a bare websocket rather than going through
// chromedp's session bootstrap (SetAutoAttach, Page.Enable, ...), which is far
// more machinery than an instance the agent does not own should be subjected
// to. chromedp is used only read-only, to enumerate page targets for status.
package devtools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// Client issues browser-level commands against one debugging endpoint,
// e.g. "http://127.0.0.1:9222".
type Client struct {
	httpBase string
	http     *http.Client
}

func NewClient(httpBase string) *Client {
	return &Client{
		httpBase: strings.TrimRight(httpBase, "/"),
		http:     &http.Client{Timeout: 2 * time.Second},
	}
}

// VersionInfo is the identity the debugging endpoint reports for itself.
type VersionInfo struct {
	Browser         string `json:"browser"`
	ProtocolVersion string `json:"protocol_version"`
}

type versionPayload struct {
	Browser              string `json:"Browser"`
	ProtocolVersion      string `json:"Protocol-Version"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

func (c *Client) version(ctx context.Context) (versionPayload, error) {
	var payload versionPayload

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.httpBase+"/json/version", nil)
	if err != nil {
		return payload, fmt.Errorf("devtools: version request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return payload, fmt.Errorf("devtools: version: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return payload, fmt.Errorf("devtools: version: status=%d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return payload, fmt.Errorf("devtools: version decode: %w", err)
	}
	return payload, nil
}

// Version reports the browser build behind the debugging endpoint.
func (c *Client) Version(ctx context.Context) (VersionInfo, error) {
	payload, err := c.version(ctx)
	if err != nil {
		return VersionInfo{}, err
	}
	return VersionInfo{Browser: payload.Browser, ProtocolVersion: payload.ProtocolVersion}, nil
}

// CloseBrowser asks the browser to shut itself down via Browser.close. Best
// effort: the caller's window poll remains the ground truth for whether the
// instance actually went away.
func (c *Client) CloseBrowser(ctx context.Context) error {
	payload, err := c.version(ctx)
	if err != nil {
		return err
	}
	if payload.WebSocketDebuggerURL == "" {
		return errors.New("devtools: endpoint reported no websocket url")
	}

	conn, _, _, err := ws.Dial(ctx, payload.WebSocketDebuggerURL)
	if err != nil {
		return fmt.Errorf("devtools: dial: %w", err)
	}
	defer func() {
		_ = conn.Close()
	}()

	msg, err := json.Marshal(map[string]any{"id": 1, "method": "Browser.close"})
	if err != nil {
		return fmt.Errorf("devtools: marshal Browser.close: %w", err)
	}
	if err := wsutil.WriteClientText(conn, msg); err != nil {
		return fmt.Errorf("devtools: send Browser.close: %w", err)
	}

	// The browser may reply, or may just drop the socket on its way out.
	// Either counts as an acknowledged request.
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	}
	if _, err := wsutil.ReadServerText(conn); err != nil && !errors.Is(err, io.EOF) {
		slog.Debug("devtools Browser.close reply not read", "error", err)
	}
	return nil
}
