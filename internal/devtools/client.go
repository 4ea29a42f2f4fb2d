// Package devtools implements a Chrome DevTools Protocol client that
// discovers browser tabs over HTTP and queries their media playback state
// over per-tab WebSocket sessions.
package devtools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/oszuidwest/zwfm-audioscan/internal/types"
)

// mediaProbeScript inventories every <audio>/<video> element in a page and
// serializes a point-in-time snapshot of each. Source URLs are truncated to
// 120 characters to keep RPC replies small.
const mediaProbeScript = `
(function() {
    var elems = document.querySelectorAll('audio, video');
    var results = [];
    for (var i = 0; i < elems.length; i++) {
        var el = elems[i];
        results.push({
            tag: el.tagName.toLowerCase(),
            paused: el.paused,
            muted: el.muted,
            volume: el.volume,
            currentTime: el.currentTime,
            duration: el.duration || 0,
            src: (el.currentSrc || el.src || '').substring(0, 120)
        });
    }
    return JSON.stringify(results);
})()
`

// pageTabType is the DevTools target type for regular browser tabs.
const pageTabType = "page"

// Client talks to a Chrome instance started with --remote-debugging-port.
// Tab records are rebuilt on each discovery and only exposed by value.
// It is safe for concurrent use.
type Client struct {
	debugPort  int
	httpClient *http.Client
	dialer     *websocket.Dialer

	mu        sync.Mutex
	connected bool
	tabs      []types.ChromeTab
}

// NewClient returns a Client for the given remote debugging port.
func NewClient(debugPort int) *Client {
	if debugPort == 0 {
		debugPort = types.DefaultDebugPort
	}
	return &Client{
		debugPort:  debugPort,
		httpClient: &http.Client{Timeout: types.TabDiscoveryTimeout},
		dialer: &websocket.Dialer{
			HandshakeTimeout: types.TabConnectTimeout,
		},
	}
}

// Connected reports whether the last discovery attempt succeeded.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// tabDescriptor is one entry of the DevTools /json listing.
type tabDescriptor struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	Type       string `json:"type"`
	FaviconURL string `json:"faviconUrl"`
	WSURL      string `json:"webSocketDebuggerUrl"`
}

// ListTabs returns all page tabs, optionally enriched with their current
// audio state. Discovery is re-attempted whenever the client is not
// connected; an unreachable endpoint yields an empty list and leaves the
// client disconnected so the next call retries.
func (c *Client) ListTabs(ctx context.Context, withAudioState bool) []types.ChromeTab {
	c.mu.Lock()
	connected := c.connected
	c.mu.Unlock()

	if !connected {
		if !c.Discover(ctx) {
			return nil
		}
	}

	if withAudioState {
		c.queryAllTabAudio(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var pages []types.ChromeTab
	for _, tab := range c.tabs {
		if tab.Type == pageTabType {
			pages = append(pages, tab)
		}
	}
	return pages
}

// Discover fetches the tab list from the DevTools HTTP endpoint and reports
// whether the endpoint was reachable. A failed or malformed response resets
// the connection state.
func (c *Client) Discover(ctx context.Context) bool {
	url := fmt.Sprintf("http://localhost:%d/json", c.debugPort)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return c.setDisconnected(url, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.setDisconnected(url, err)
	}
	defer func() {
		_ = resp.Body.Close() //nolint:errcheck // Best-effort cleanup
	}()

	if resp.StatusCode != http.StatusOK {
		return c.setDisconnected(url, fmt.Errorf("status %d", resp.StatusCode))
	}

	var descriptors []tabDescriptor
	if err := json.NewDecoder(resp.Body).Decode(&descriptors); err != nil {
		return c.setDisconnected(url, err)
	}

	tabs := make([]types.ChromeTab, 0, len(descriptors))
	for _, d := range descriptors {
		tabs = append(tabs, types.ChromeTab{
			ID:         d.ID,
			Title:      d.Title,
			URL:        d.URL,
			Type:       d.Type,
			FaviconURL: d.FaviconURL,
			WSURL:      d.WSURL,
			AudioState: types.TabUnknown,
		})
	}

	c.mu.Lock()
	c.tabs = tabs
	c.connected = true
	c.mu.Unlock()

	slog.Debug("connected to browser debugging endpoint", "url", url, "tabs", len(tabs))
	return true
}

// setDisconnected records a failed discovery and returns false.
func (c *Client) setDisconnected(url string, err error) bool {
	slog.Debug("cannot reach browser debugging endpoint", "url", url, "error", err)
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
	return false
}

// queryAllTabAudio refreshes the audio state of every page tab with a
// debugger URL. Queries fan out concurrently, one WebSocket session per tab;
// each child writes only to its own tab slot, and a failure in one tab never
// cancels or degrades the others.
func (c *Client) queryAllTabAudio(ctx context.Context) {
	c.mu.Lock()
	indices := make([]int, 0, len(c.tabs))
	for i := range c.tabs {
		if c.tabs[i].Type == pageTabType && c.tabs[i].WSURL != "" {
			indices = append(indices, i)
		}
	}
	c.mu.Unlock()

	var g errgroup.Group
	for _, i := range indices {
		g.Go(func() error {
			// Work on a copy so the shared slice is only touched
			// under the lock.
			c.mu.Lock()
			tab := c.tabs[i]
			c.mu.Unlock()

			c.queryTab(ctx, &tab)

			c.mu.Lock()
			c.tabs[i] = tab
			c.mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // Children never return errors
}

// evaluateRequest is the JSON-RPC request evaluating the media probe script.
type evaluateRequest struct {
	ID     int            `json:"id"`
	Method string         `json:"method"`
	Params map[string]any `json:"params"`
}

// evaluateResponse carries the nested Runtime.evaluate reply.
type evaluateResponse struct {
	Result struct {
		Result struct {
			Value string `json:"value"`
		} `json:"result"`
	} `json:"result"`
}

// queryTab opens one WebSocket session to the tab, evaluates the media probe
// script, and derives the tab's aggregate audio state. Any failure marks
// this tab as errored and nothing else.
func (c *Client) queryTab(ctx context.Context, tab *types.ChromeTab) {
	elements, err := c.evaluateMediaProbe(ctx, tab.WSURL)
	if err != nil {
		slog.Debug("tab audio query failed", "title", truncate(tab.Title, 40), "error", err)
		tab.AudioState = types.TabError
		return
	}

	tab.MediaElements = elements
	tab.AudioState, tab.HasAudio = aggregateAudioState(elements)
}

// evaluateMediaProbe performs the single-request RPC exchange with a tab.
func (c *Client) evaluateMediaProbe(ctx context.Context, wsURL string) ([]types.MediaElementSnapshot, error) {
	conn, _, err := c.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial tab: %w", err)
	}
	defer func() {
		_ = conn.Close() //nolint:errcheck // Best-effort cleanup
	}()

	req := evaluateRequest{
		ID:     1,
		Method: "Runtime.evaluate",
		Params: map[string]any{"expression": mediaProbeScript},
	}
	if err := conn.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("send evaluate request: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(types.TabResponseTimeout)); err != nil {
		return nil, fmt.Errorf("set read deadline: %w", err)
	}

	var resp evaluateResponse
	if err := conn.ReadJSON(&resp); err != nil {
		return nil, fmt.Errorf("read evaluate response: %w", err)
	}

	value := resp.Result.Result.Value
	if value == "" {
		value = "[]"
	}

	var elements []types.MediaElementSnapshot
	if err := json.Unmarshal([]byte(value), &elements); err != nil {
		return nil, fmt.Errorf("decode media snapshots: %w", err)
	}
	return elements, nil
}

// aggregateAudioState derives one audio state for a tab from its media
// element snapshots.
func aggregateAudioState(elements []types.MediaElementSnapshot) (state types.TabAudioState, hasAudio bool) {
	if len(elements) == 0 {
		return types.TabSilent, false
	}

	playing := 0
	allMuted := true
	for _, e := range elements {
		if !e.Paused {
			playing++
		}
		if !e.Muted {
			allMuted = false
		}
	}

	switch {
	case playing > 0 && !allMuted:
		return types.TabPlaying, true
	case playing > 0:
		return types.TabMuted, true
	default:
		return types.TabPaused, false
	}
}

// truncate shortens s to at most n runes for log output.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
