package client

import (
	"context"
	"encoding/json"

	stac "github.com/planetlabs/go-stac"
)

// ListCollections fetches the collections root document at endpoint and
// returns its `collections` entries in listing order. Only the first page is
// read. A document without a `collections` key yields an empty slice.
// Entries are decoded one by one: see decodeEntries.
func (c *Client) ListCollections(ctx context.Context, endpoint string) ([]*stac.Collection, error) {
	body, err := c.getJSON(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var page struct {
		Collections []json.RawMessage `json:"collections"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, &DecodeError{URL: endpoint, Err: err}
	}
	return decodeEntries(c, endpoint, "collection", page.Collections, func(id string) *stac.Collection {
		return &stac.Collection{Id: id}
	}), nil
}

// CollectionIDs returns the ids of the collections in order, skipping nil
// entries and empty ids.
func CollectionIDs(collections []*stac.Collection) []string {
	ids := make([]string, 0, len(collections))
	for _, col := range collections {
		if col == nil || col.Id == "" {
			continue
		}
		ids = append(ids, col.Id)
	}
	return ids
}
