package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/idilsaglam/campusfinder/internal/model"
)

// ListItems is GET /items?type=lost|found.
func (c *Client) ListItems(ctx context.Context, kind model.Kind) ([]model.Item, error) {
	q := url.Values{}
	q.Set("type", kind.Param())
	resp, err := c.Do(ctx, http.MethodGet, "/items", q, nil)
	if err != nil {
		return nil, err
	}
	items := []model.Item{}
	if err := resp.Decode(&items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) ListLost(ctx context.Context) ([]model.Item, error) {
	return c.ListItems(ctx, model.Lost)
}

func (c *Client) ListFound(ctx context.Context) ([]model.Item, error) {
	return c.ListItems(ctx, model.Found)
}

// Search sends both filters even when empty; empty filters return the whole catalog.
func (c *Client) Search(ctx context.Context, f model.Filter) ([]model.Item, error) {
	q := url.Values{}
	q.Set("itemName", f.ItemName)
	q.Set("category", f.Category)
	resp, err := c.Do(ctx, http.MethodGet, "/items/search", q, nil)
	if err != nil {
		return nil, err
	}
	items := []model.Item{}
	if err := resp.Decode(&items); err != nil {
		return nil, err
	}
	return items, nil
}

// Report posts r to /items/lost or /items/found; the status always matches kind.
func (c *Client) Report(ctx context.Context, kind model.Kind, r model.Report) (*model.Item, error) {
	r.Status = kind
	resp, err := c.Do(ctx, http.MethodPost, "/items/"+kind.Param(), nil, r)
	if err != nil {
		return nil, err
	}
	var item model.Item
	if err := resp.Decode(&item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) ReportLost(ctx context.Context, r model.Report) (*model.Item, error) {
	return c.Report(ctx, model.Lost, r)
}

func (c *Client) ReportFound(ctx context.Context, r model.Report) (*model.Item, error) {
	return c.Report(ctx, model.Found, r)
}

// DeleteItem asks the server to remove id. Only the owner may; the server decides.
func (c *Client) DeleteItem(ctx context.Context, id model.ID) error {
	_, err := c.Do(ctx, http.MethodDelete, "/items/"+url.PathEscape(id.String()), nil, nil)
	return err
}
