// Package content reads pages from the hosted content workspace (Notion API). Read-only.
package content

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jomei/notionapi"
)

const pageSize = 100

type Page struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

type Block struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Text        string `json:"text"`
	HasChildren bool   `json:"has_children"`
}

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("content provider error %d: %s", e.StatusCode, e.Message)
}

type Config struct {
	// BaseURL overrides the API host; empty means api.notion.com
	BaseURL    string
	Token      string
	Timeout    time.Duration
	MaxRetries int
}

type Client struct {
	api *notionapi.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	var transport http.RoundTripper = http.DefaultTransport
	if cfg.BaseURL != "" {
		target, err := url.Parse(cfg.BaseURL)
		if err != nil || target.Host == "" {
			return nil, fmt.Errorf("invalid content api url %q", cfg.BaseURL)
		}
		transport = hostTransport{target: target, base: transport}
	}

	opts := []notionapi.ClientOption{
		notionapi.WithHTTPClient(&http.Client{Timeout: cfg.Timeout, Transport: transport}),
	}
	if cfg.MaxRetries > 0 {
		opts = append(opts, notionapi.WithRetry(cfg.MaxRetries))
	}

	return &Client{api: notionapi.NewClient(notionapi.Token(cfg.Token), opts...)}, nil
}

func (c *Client) RetrievePage(ctx context.Context, pageID string) (*Page, error) {
	p, err := c.api.Page.Get(ctx, notionapi.PageID(pageID))
	if err != nil {
		return nil, fmt.Errorf("retrieve page %s: %w", pageID, toAPIError(err))
	}

	page := &Page{ID: p.ID.String(), URL: p.URL}
	for _, prop := range p.Properties {
		if title, ok := prop.(*notionapi.TitleProperty); ok {
			page.Title = plainText(title.Title)
			break
		}
	}
	return page, nil
}

// ListBlockChildren returns every direct child block, following pagination.
// Block types the sdk cannot decode are skipped.
func (c *Client) ListBlockChildren(ctx context.Context, blockID string) ([]Block, error) {
	var blocks []Block
	pagination := &notionapi.Pagination{PageSize: pageSize}
	for {
		out, err := c.api.Block.GetChildren(ctx, notionapi.BlockID(blockID), pagination)
		if err != nil {
			return nil, fmt.Errorf("list children of %s: %w", blockID, toAPIError(err))
		}

		for _, b := range out.Results {
			if b.GetType() == "" {
				continue
			}
			blocks = append(blocks, Block{
				ID:          b.GetID().String(),
				Type:        string(b.GetType()),
				Text:        b.GetRichTextString(),
				HasChildren: b.GetHasChildren(),
			})
		}

		if !out.HasMore || out.NextCursor == "" {
			return blocks, nil
		}
		pagination.StartCursor = notionapi.Cursor(out.NextCursor)
	}
}

func plainText(parts []notionapi.RichText) string {
	var text string
	for _, p := range parts {
		text += p.PlainText
	}
	return text
}

func toAPIError(err error) error {
	var notionErr *notionapi.Error
	if errors.As(err, &notionErr) {
		return &APIError{StatusCode: notionErr.Status, Message: notionErr.Message}
	}
	var limited *notionapi.RateLimitedError
	if errors.As(err, &limited) {
		return &APIError{StatusCode: http.StatusTooManyRequests, Message: limited.Message}
	}
	return err
}

// hostTransport sends requests to target instead of the sdk's fixed host.
type hostTransport struct {
	target *url.URL
	base   http.RoundTripper
}

func (t hostTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL.Scheme = t.target.Scheme
	out.URL.Host = t.target.Host
	out.Host = t.target.Host
	return t.base.RoundTrip(out)
}
