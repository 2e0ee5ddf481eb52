// Package harvest walks STAC endpoints and copies every item document into an
// object store.
//
// The walk is sequential: endpoints, collections and items are processed one
// at a time in listing order. Failures are recorded per endpoint and the walk
// keeps going wherever it can; see Outcome.
package harvest

import (
	"context"
	"encoding/json"
	"errors"

	stac "github.com/planetlabs/go-stac"
	"go.uber.org/zap"

	"github.com/robert-malhotra/stac-harvester/pkg/client"
	"github.com/robert-malhotra/stac-harvester/pkg/store"
)

// Config holds the deployment settings of a harvest.
type Config struct {
	// Bucket receives every harvested item.
	Bucket string
	// Region the bucket is created in when it does not exist yet.
	Region string
}

// Source is the STAC capability the harvester reads from. *client.Client
// implements it.
type Source interface {
	ListCollections(ctx context.Context, endpoint string) ([]*stac.Collection, error)
	ListItems(ctx context.Context, endpoint, collectionID string) ([]*stac.Item, error)
	GetItemDocument(ctx context.Context, endpoint, collectionID, itemID string) (json.RawMessage, error)
}

var _ Source = (*client.Client)(nil)

// Outcome is the result of harvesting one endpoint.
type Outcome struct {
	Endpoint string
	// Stored counts the item documents written.
	Stored int
	// Errs lists what went wrong, in the order it happened.
	Errs []error
}

// Messages returns the caller-facing message of every recorded error.
func (o Outcome) Messages() []string {
	msgs := make([]string, 0, len(o.Errs))
	for _, err := range o.Errs {
		msgs = append(msgs, err.Error())
	}
	return msgs
}

// OK reports whether the endpoint was harvested without any error.
func (o Outcome) OK() bool { return len(o.Errs) == 0 }

// Harvester copies STAC item documents into a store.
type Harvester struct {
	cfg    Config
	source Source
	store  store.Gateway
	logger *zap.Logger
}

// New returns a Harvester. A nil logger disables logging.
func New(cfg Config, source Source, gw store.Gateway, logger *zap.Logger) *Harvester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Harvester{cfg: cfg, source: source, store: gw, logger: logger}
}

// WithLogger returns a copy of h that logs to logger.
func (h *Harvester) WithLogger(logger *zap.Logger) *Harvester {
	cp := *h
	if logger != nil {
		cp.logger = logger
	}
	return &cp
}

// Run harvests every endpoint in order and returns one Outcome per endpoint.
// A failing endpoint never prevents the next one from being harvested.
func (h *Harvester) Run(ctx context.Context, endpoints []string) []Outcome {
	outcomes := make([]Outcome, 0, len(endpoints))
	for _, endpoint := range endpoints {
		outcomes = append(outcomes, h.HarvestEndpoint(ctx, endpoint))
	}
	return outcomes
}

// HarvestEndpoint makes sure the bucket exists, then copies every item of
// every collection listed at endpoint.
func (h *Harvester) HarvestEndpoint(ctx context.Context, endpoint string) Outcome {
	out := Outcome{Endpoint: endpoint}
	log := h.logger.With(zap.String("endpoint", endpoint))
	log.Info("harvesting endpoint")

	defer func() {
		log.Info("endpoint harvested",
			zap.Int("stored", out.Stored),
			zap.Int("errors", len(out.Errs)),
			zap.String("bucket", h.cfg.Bucket))
	}()

	if err := h.store.CreateBucket(ctx, h.cfg.Bucket, h.cfg.Region); err != nil {
		log.Error("bucket unavailable", zap.String("bucket", h.cfg.Bucket), zap.Error(err))
		out.Errs = append(out.Errs, &BucketError{Bucket: h.cfg.Bucket, Err: err})
		return out
	}

	collections, err := h.source.ListCollections(ctx, endpoint)
	if err != nil {
		log.Error("could not list collections", zap.Error(err))
		out.Errs = append(out.Errs, rootError(endpoint, err))
		return out
	}

	ids := client.CollectionIDs(collections)
	if len(ids) == 0 {
		log.Warn("no collections found")
		out.Errs = append(out.Errs, &NoCollectionsError{URL: endpoint})
		return out
	}
	log.Info("collections identified", zap.Int("count", len(ids)), zap.Strings("collections", ids))

	for _, collectionID := range ids {
		if err := h.harvestCollection(ctx, log, endpoint, collectionID, &out); err != nil {
			out.Errs = append(out.Errs, err)
			return out
		}
	}
	return out
}

// harvestCollection copies the items of one collection. Recoverable failures
// are recorded on out; the returned error is a transport fault that ends the
// endpoint.
func (h *Harvester) harvestCollection(ctx context.Context, log *zap.Logger, endpoint, collectionID string, out *Outcome) error {
	log = log.With(zap.String("collection", collectionID))

	items, err := h.source.ListItems(ctx, endpoint, collectionID)
	if err != nil {
		if access := accessError(err); access != nil {
			log.Error("transport fault listing items", zap.Error(err))
			return access
		}
		log.Error("could not list items", zap.Error(err))
		out.Errs = append(out.Errs, &ListItemsError{Collection: collectionID, Err: err})
		return nil
	}

	ids := client.ItemIDs(items)
	if len(ids) == 0 {
		// An empty collection is skipped without a message, unlike an
		// endpoint without collections.
		log.Debug("collection has no items")
		return nil
	}

	for _, itemID := range ids {
		if err := h.harvestItem(ctx, log, endpoint, collectionID, itemID, out); err != nil {
			return err
		}
	}
	return nil
}

// harvestItem fetches one item document and writes it to the store.
func (h *Harvester) harvestItem(ctx context.Context, log *zap.Logger, endpoint, collectionID, itemID string, out *Outcome) error {
	log = log.With(zap.String("item", itemID))
	log.Debug("requesting item")

	doc, err := h.source.GetItemDocument(ctx, endpoint, collectionID, itemID)
	if err != nil {
		if access := accessError(err); access != nil {
			log.Error("transport fault fetching item", zap.Error(err))
			return access
		}
		log.Error("could not fetch item", zap.Error(err))
		out.Errs = append(out.Errs, &FetchItemError{Collection: collectionID, Item: itemID, Err: err})
		return nil
	}

	body, err := RenderDocument(doc)
	if err != nil {
		log.Error("item document is not valid JSON", zap.Error(err))
		out.Errs = append(out.Errs, &FetchItemError{Collection: collectionID, Item: itemID, Err: err})
		return nil
	}

	key := ObjectKey(collectionID, itemID)
	if err := h.store.PutObject(ctx, h.cfg.Bucket, key, body); err != nil {
		log.Error("upload failed", zap.String("key", key), zap.String("bucket", h.cfg.Bucket), zap.Error(err))
		out.Errs = append(out.Errs, &UploadError{Bucket: h.cfg.Bucket, Key: key, Err: err})
		return nil
	}

	out.Stored++
	log.Info("uploaded item", zap.String("key", key), zap.String("bucket", h.cfg.Bucket))
	return nil
}

// rootError maps a collections root fetch failure to its reported error.
func rootError(endpoint string, err error) error {
	if access := accessError(err); access != nil {
		return access
	}
	var statusErr *client.StatusError
	if errors.As(err, &statusErr) {
		return &UpstreamStatusError{URL: endpoint, StatusCode: statusErr.StatusCode}
	}
	return &CollectionsDocumentError{URL: endpoint, Err: err}
}

// accessError returns an *AccessError when err is a transport fault, nil
// otherwise.
func accessError(err error) *AccessError {
	var transportErr *client.TransportError
	if errors.As(err, &transportErr) {
		return &AccessError{URL: transportErr.URL, Err: transportErr.Err}
	}
	return nil
}
