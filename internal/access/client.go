package access

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Client fetches board and list projections from the board service over
// HTTP. Responses are never cached beyond the single check in flight.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *Client) Board(ctx context.Context, id int64) (*Board, error) {
	var board Board
	if err := c.get(ctx, "/boards/"+strconv.FormatInt(id, 10), &board); err != nil {
		return nil, err
	}
	return &board, nil
}

func (c *Client) List(ctx context.Context, id int64) (*List, error) {
	var list List
	if err := c.get(ctx, "/lists/"+strconv.FormatInt(id, 10), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("access: board service request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("access: decode board service response: %w", err)
		}
		return nil
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("access: board service returned status %d", resp.StatusCode)
	}
}
