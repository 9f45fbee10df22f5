package notion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"golang.org/x/sync/errgroup"
)

type QueryPage struct {
	Count      int
	HasMore    bool
	NextCursor string
}

type StatusCount struct {
	Status     string `json:"status"`
	Count      int    `json:"count"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor,omitempty"`
	Pages      int    `json:"pages"`
}

type queryRequest struct {
	Filter      statusFilter `json:"filter"`
	PageSize    int          `json:"page_size"`
	StartCursor string       `json:"start_cursor,omitempty"`
}

type statusFilter struct {
	Property string `json:"property"`
	Status   struct {
		Equals string `json:"equals"`
	} `json:"status"`
}

type queryResponse struct {
	Results    []json.RawMessage `json:"results"`
	HasMore    bool              `json:"has_more"`
	NextCursor *string           `json:"next_cursor"`
}

// QueryStatus fetches one page (up to 100 rows) of pages whose Status
// property equals status.
func (c *Client) QueryStatus(ctx context.Context, databaseID, status, cursor string) (QueryPage, error) {
	req := queryRequest{PageSize: 100, StartCursor: cursor}
	req.Filter.Property = "Status"
	req.Filter.Status.Equals = status

	var resp queryResponse
	path := "/databases/" + url.PathEscape(databaseID) + "/query"
	if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return QueryPage{}, err
	}
	qp := QueryPage{Count: len(resp.Results), HasMore: resp.HasMore}
	if resp.NextCursor != nil {
		qp.NextCursor = *resp.NextCursor
	}
	return qp, nil
}

// CountStatus counts pages with the given status. With all=false only the
// first page is counted and HasMore tells whether the number is a floor.
func (c *Client) CountStatus(ctx context.Context, databaseID, status string, all bool) (StatusCount, error) {
	out := StatusCount{Status: status}
	cursor := ""
	for {
		qp, err := c.QueryStatus(ctx, databaseID, status, cursor)
		if err != nil {
			return StatusCount{}, err
		}
		out.Pages++
		out.Count += qp.Count
		out.HasMore = qp.HasMore
		out.NextCursor = qp.NextCursor
		if !all || !qp.HasMore || qp.NextCursor == "" {
			return out, nil
		}
		cursor = qp.NextCursor
	}
}

// CountStatuses counts several statuses concurrently. Results keep the
// order of statuses.
func (c *Client) CountStatuses(ctx context.Context, databaseID string, statuses []string, all bool) ([]StatusCount, error) {
	out := make([]StatusCount, len(statuses))
	g, gctx := errgroup.WithContext(ctx)
	for i, st := range statuses {
		i, st := i, st
		g.Go(func() error {
			sc, err := c.CountStatus(gctx, databaseID, st, all)
			if err != nil {
				return err
			}
			out[i] = sc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
