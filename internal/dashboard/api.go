package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/R3E-Network/stockboard/internal/app/domain/item"
	"github.com/R3E-Network/stockboard/internal/httputil"
)

// APIError carries a non-2xx response from the inventory API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("inventory api: %d %s", e.StatusCode, e.Message)
}

// NewItem is the body of a create request.
type NewItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Category string  `json:"category"`
}

// Client calls the inventory REST API with a static bearer token.
type Client struct {
	http *httputil.Client
}

// NewClient creates a client for baseURL.
func NewClient(cfg httputil.ClientConfig) *Client {
	return &Client{http: httputil.NewClient(cfg)}
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.http.BaseURL()
}

// FetchItems lists items, filtered by q when non-empty.
func (c *Client) FetchItems(ctx context.Context, q string) ([]item.Item, error) {
	path := "/items"
	if q != "" {
		path += "?" + url.Values{"q": {q}}.Encode()
	}

	resp, err := c.http.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	items := []item.Item{}
	if err := decode(httputil.DecodeResponse(resp, &items)); err != nil {
		return nil, err
	}
	return items, nil
}

// AddItem creates an item.
func (c *Client) AddItem(ctx context.Context, in NewItem) (item.Item, error) {
	resp, err := c.http.Post(ctx, "/items", in)
	if err != nil {
		return item.Item{}, err
	}
	var created item.Item
	if err := decode(httputil.DecodeResponse(resp, &created)); err != nil {
		return item.Item{}, err
	}
	return created, nil
}

// UpdateItem applies patch to the item with id.
func (c *Client) UpdateItem(ctx context.Context, id string, patch item.Patch) (item.Item, error) {
	resp, err := c.http.Put(ctx, "/items/"+url.PathEscape(id), patch)
	if err != nil {
		return item.Item{}, err
	}
	var updated item.Item
	if err := decode(httputil.DecodeResponse(resp, &updated)); err != nil {
		return item.Item{}, err
	}
	return updated, nil
}

// DeleteItem removes the item with id.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	resp, err := c.http.Delete(ctx, "/items/"+url.PathEscape(id))
	if err != nil {
		return err
	}
	return decode(httputil.DecodeResponse(resp, nil))
}

func decode(err error) error {
	var statusErr *httputil.StatusError
	if errors.As(err, &statusErr) {
		return &APIError{StatusCode: statusErr.StatusCode, Message: statusErr.Message}
	}
	return err
}
