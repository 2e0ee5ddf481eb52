package client

import (
	"context"
	"encoding/json"

	stac "github.com/planetlabs/go-stac"
)

// ItemsURL returns the items listing URL of a collection under endpoint.
func ItemsURL(endpoint, collectionID string) string {
	return endpoint + collectionID + "/items"
}

// ItemURL returns the URL of a single item document under endpoint.
func ItemURL(endpoint, collectionID, itemID string) string {
	return ItemsURL(endpoint, collectionID) + "/" + itemID
}

// ListItems fetches the first page of a collection's items listing and
// returns its `features` in listing order. Entries are decoded one by one: see
// decodeEntries.
func (c *Client) ListItems(ctx context.Context, endpoint, collectionID string) ([]*stac.Item, error) {
	u := ItemsURL(endpoint, collectionID)

	body, err := c.getJSON(ctx, u)
	if err != nil {
		return nil, err
	}

	var page struct {
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, &DecodeError{URL: u, Err: err}
	}
	return decodeEntries(c, u, "item", page.Features, func(id string) *stac.Item {
		return &stac.Item{Id: id}
	}), nil
}

// GetItemDocument fetches an item document without interpreting it. Any JSON
// value is accepted; the returned bytes are the body exactly as served.
func (c *Client) GetItemDocument(ctx context.Context, endpoint, collectionID, itemID string) (json.RawMessage, error) {
	body, err := c.getJSON(ctx, ItemURL(endpoint, collectionID, itemID))
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// ItemIDs returns the ids of the items in order, skipping nil entries and
// empty ids.
func ItemIDs(items []*stac.Item) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item == nil || item.Id == "" {
			continue
		}
		ids = append(ids, item.Id)
	}
	return ids
}
