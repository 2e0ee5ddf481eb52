package client

import (
	"encoding/json"

	"go.uber.org/zap"
)

// entryID returns the string id of a listing entry. Entries that are not
// objects, or whose id is missing, empty or not a string, have none.
func entryID(raw json.RawMessage) (string, bool) {
	var entry struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &entry); err != nil || entry.ID == "" {
		return "", false
	}
	return entry.ID, true
}

// decodeEntries decodes every listing entry on its own, so that one entry
// that does not fit the STAC types cannot fail its siblings. Such an entry is
// kept with its id only; an entry without an id is dropped.
func decodeEntries[T any](c *Client, rawURL, kind string, entries []json.RawMessage, idOnly func(id string) *T) []*T {
	out := make([]*T, 0, len(entries))
	for i, raw := range entries {
		id, ok := entryID(raw)
		if !ok {
			c.logger.Warn("skipping listing entry without id",
				zap.String("url", rawURL), zap.String("kind", kind), zap.Int("index", i))
			continue
		}
		v := new(T)
		if err := json.Unmarshal(raw, v); err != nil {
			c.logger.Debug("listing entry kept by id only",
				zap.String("url", rawURL), zap.String("kind", kind), zap.String("id", id), zap.Error(err))
			v = idOnly(id)
		}
		out = append(out, v)
	}
	return out
}
