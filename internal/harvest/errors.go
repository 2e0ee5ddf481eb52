package harvest

import "fmt"

// The error types below carry the message reported back to the caller in
// their Error method. The underlying cause, when there is one, is available
// through Unwrap and is only logged.

// AccessError reports a transport fault while fetching URL. It stops the
// harvest of the endpoint.
type AccessError struct {
	URL string
	Err error
}

func (e *AccessError) Error() string { return "Error trying to access " + e.URL }
func (e *AccessError) Unwrap() error { return e.Err }

// UpstreamStatusError reports a non-200 answer to the collections root fetch.
type UpstreamStatusError struct {
	URL        string
	StatusCode int
}

func (e *UpstreamStatusError) Error() string {
	return "Source STAC API did not return a HTTP 200 OK"
}

// CollectionsDocumentError reports a collections root document that could
// not be decoded.
type CollectionsDocumentError struct {
	URL string
	Err error
}

func (e *CollectionsDocumentError) Error() string {
	return "Source STAC API returned an invalid collections document: " + e.URL
}
func (e *CollectionsDocumentError) Unwrap() error { return e.Err }

// NoCollectionsError reports an endpoint that lists no collections.
type NoCollectionsError struct {
	URL string
}

func (e *NoCollectionsError) Error() string {
	return "Could not find any collections in api: " + e.URL
}

// BucketError reports that the target bucket could neither be found nor
// created.
type BucketError struct {
	Bucket string
	Err    error
}

func (e *BucketError) Error() string { return "Could not create S3 bucket: " + e.Bucket }
func (e *BucketError) Unwrap() error { return e.Err }

// ListItemsError reports a collection whose items listing was answered but
// could not be used. Sibling collections are still harvested.
type ListItemsError struct {
	Collection string
	Err        error
}

func (e *ListItemsError) Error() string {
	return fmt.Sprintf("Could not list items of collection %s: %v", e.Collection, e.Err)
}
func (e *ListItemsError) Unwrap() error { return e.Err }

// FetchItemError reports an item document that was answered but could not be
// used. Sibling items are still harvested.
type FetchItemError struct {
	Collection string
	Item       string
	Err        error
}

func (e *FetchItemError) Error() string {
	return fmt.Sprintf("Could not fetch item %s of collection %s: %v", e.Item, e.Collection, e.Err)
}
func (e *FetchItemError) Unwrap() error { return e.Err }

// UploadError reports a failed object write. Sibling items are still
// harvested.
type UploadError struct {
	Bucket string
	Key    string
	Err    error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("Could not upload %s to bucket %s", e.Key, e.Bucket)
}
func (e *UploadError) Unwrap() error { return e.Err }
