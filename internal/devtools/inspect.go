package devtools

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
)

// PageTarget describes one page-type target of the instance.
type PageTarget struct {
	TargetID string `json:"target_id"`
	URL      string `json:"url"`
	Title    string `json:"title,omitempty"`
}

// ListPages attaches to the debugging endpoint and enumerates its page
// targets. Read-only; no session state is left behind beyond the transient
// attach.
func (c *Client) ListPages(ctx context.Context) ([]PageTarget, error) {
	allocCtx, allocCancel := chromedp.NewRemoteAllocator(ctx, c.httpBase)
	defer allocCancel()

	tabCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	if err := chromedp.Run(tabCtx); err != nil {
		return nil, fmt.Errorf("devtools: connect to browser: %w", err)
	}
	targets, err := chromedp.Targets(tabCtx)
	if err != nil {
		return nil, fmt.Errorf("devtools: enumerate targets: %w", err)
	}
	return pageTargets(targets), nil
}

func pageTargets(infos []*target.Info) []PageTarget {
	pages := make([]PageTarget, 0, len(infos))
	for _, t := range infos {
		if t.Type != "page" {
			continue
		}
		pages = append(pages, PageTarget{
			TargetID: string(t.TargetID),
			URL:      t.URL,
			Title:    t.Title,
		})
	}
	return pages
}
