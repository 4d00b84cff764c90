package hubspot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Object is a CRM object as returned by the v3 list endpoints.
type Object struct {
	ID         string     `json:"id"`
	Properties Properties `json:"properties"`
}

// Properties carries the known display and timestamp fields across the three
// object types. The list endpoints only populate the ones that apply to the
// requested type.
type Properties struct {
	FirstName          string `json:"firstname,omitempty"`
	LastName           string `json:"lastname,omitempty"`
	Name               string `json:"name,omitempty"`
	DealName           string `json:"dealname,omitempty"`
	CreateDate         string `json:"createdate,omitempty"`
	LastModifiedDate   string `json:"lastmodifieddate,omitempty"`
	HSLastModifiedDate string `json:"hs_lastmodifieddate,omitempty"`
}

type listResponse struct {
	Results []Object `json:"results"`
	Paging  struct {
		Next struct {
			After string `json:"after"`
		} `json:"next"`
	} `json:"paging"`
}

// fetchObjects walks the paginated list endpoint and returns every result in
// page order. Pages are strictly sequential: each request's cursor comes
// from the previous response.
func (c *Client) fetchObjects(ctx context.Context, accessToken, endpoint string) ([]Object, error) {
	var all []Object
	after := ""
	for {
		page, err := c.fetchPage(ctx, accessToken, endpoint, after)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Results...)
		after = page.Paging.Next.After
		if after == "" {
			return all, nil
		}
	}
}

func (c *Client) fetchPage(ctx context.Context, accessToken, endpoint, after string) (*listResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		page, retryable, err := c.doFetchPage(ctx, accessToken, endpoint, after)
		if err == nil {
			return page, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		c.logger.Warn("object list request failed",
			"endpoint", endpoint, "attempt", attempt+1, "error", err)
	}
	return nil, lastErr
}

func (c *Client) doFetchPage(ctx context.Context, accessToken, endpoint, after string) (*listResponse, bool, error) {
	u, err := url.Parse(c.cfg.APIBaseURL + endpoint)
	if err != nil {
		return nil, false, fmt.Errorf("hubspot: parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("limit", "100")
	if after != "" {
		q.Set("after", after)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, false, fmt.Errorf("hubspot: build list request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("hubspot: list request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<22))
	if err != nil {
		return nil, true, fmt.Errorf("hubspot: read list response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		upstream := &UpstreamError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		return nil, resp.StatusCode >= 500, upstream
	}
	var page listResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, false, fmt.Errorf("hubspot: decode list response: %w", err)
	}
	return &page, false, nil
}
