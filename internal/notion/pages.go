package notion

import (
	"context"
	"net/http"
)

type Page struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type createPageRequest struct {
	Parent struct {
		DatabaseID string `json:"database_id"`
	} `json:"parent"`
	Properties map[string]any `json:"properties"`
}

// CreatePage adds one row to a database.
func (c *Client) CreatePage(ctx context.Context, databaseID string, properties map[string]any) (Page, error) {
	var req createPageRequest
	req.Parent.DatabaseID = databaseID
	req.Properties = properties

	var p Page
	if err := c.do(ctx, http.MethodPost, "/pages", req, &p); err != nil {
		return Page{}, err
	}
	return p, nil
}

// Property builders for the shapes Notion expects.

func Title(s string) map[string]any {
	return map[string]any{"title": []any{textBlock(s)}}
}

func RichText(s string) map[string]any {
	return map[string]any{"rich_text": []any{textBlock(s)}}
}

// URL sets a url property; an empty string clears it.
func URL(s string) map[string]any {
	if s == "" {
		return map[string]any{"url": nil}
	}
	return map[string]any{"url": s}
}

func textBlock(s string) map[string]any {
	return map[string]any{"text": map[string]any{"content": s}}
}
