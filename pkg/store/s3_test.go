package store

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeS3 speaks just enough path-style S3 for the gateway.
type fakeS3 struct {
	mu        sync.Mutex
	buckets   map[string]map[string][]byte
	forbidden map[string]bool
	requests  []string
	createErr bool
}

func newFakeS3() *fakeS3 {
	return &fakeS3{
		buckets:   make(map[string]map[string][]byte),
		forbidden: make(map[string]bool),
	}
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.SplitN(strings.Trim(r.URL.Path, "/"), "/", 2)
	bucket := parts[0]
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	if f.forbidden[bucket] {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	switch {
	case r.Method == http.MethodHead && len(parts) == 1:
		if _, ok := f.buckets[bucket]; !ok {
			w.WriteHeader(http.StatusNotFound)
		}
	case r.Method == http.MethodPut && len(parts) == 1:
		if f.createErr {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusConflict)
			_, _ = io.WriteString(w, `<Error><Code>BucketAlreadyOwnedByYou</Code><Message>nope</Message></Error>`)
			return
		}
		f.buckets[bucket] = make(map[string][]byte)
	case r.Method == http.MethodPut:
		objects, ok := f.buckets[bucket]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		body, _ := io.ReadAll(r.Body)
		objects[parts[1]] = body
	case r.Method == http.MethodGet && len(parts) == 2:
		body, ok := f.buckets[bucket][parts[1]]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
			return
		}
		_, _ = w.Write(body)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeS3) countPrefix(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

func newTestS3(t *testing.T) (*S3, *fakeS3) {
	t.Helper()
	fake := newFakeS3()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client := s3.New(s3.Options{
		Region:                     "ca-central-1",
		BaseEndpoint:               aws.String(server.URL),
		UsePathStyle:               true,
		Credentials:                aws.AnonymousCredentials{},
		HTTPClient:                 server.Client(),
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
	})
	return NewS3FromClient(client, zaptest.NewLogger(t)), fake
}

func TestS3BucketExists(t *testing.T) {
	gw, fake := newTestS3(t)
	ctx := context.Background()
	fake.buckets["present"] = map[string][]byte{}
	fake.forbidden["private"] = true

	ok, err := gw.BucketExists(ctx, "present")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = gw.BucketExists(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = gw.BucketExists(ctx, "private")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestS3CreateBucket(t *testing.T) {
	t.Run("creates missing bucket", func(t *testing.T) {
		gw, fake := newTestS3(t)

		require.NoError(t, gw.CreateBucket(context.Background(), "harvest", "ca-central-1"))
		assert.Contains(t, fake.buckets, "harvest")
		assert.Equal(t, 1, fake.countPrefix("PUT /harvest"))
	})

	t.Run("skips creation when bucket exists", func(t *testing.T) {
		gw, fake := newTestS3(t)
		fake.buckets["harvest"] = map[string][]byte{}

		require.NoError(t, gw.CreateBucket(context.Background(), "harvest", "ca-central-1"))
		assert.Zero(t, fake.countPrefix("PUT"))
	})

	t.Run("reports creation failure", func(t *testing.T) {
		gw, fake := newTestS3(t)
		fake.createErr = true

		err := gw.CreateBucket(context.Background(), "harvest", "ca-central-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "create bucket harvest")
	})
}

func TestS3PutObject(t *testing.T) {
	gw, fake := newTestS3(t)
	ctx := context.Background()
	require.NoError(t, gw.CreateBucket(ctx, "harvest", "ca-central-1"))

	body := []byte("{\n    \"id\": \"a\"\n}")
	require.NoError(t, gw.PutObject(ctx, "harvest", "landcover_a.json", body))
	assert.Equal(t, body, fake.buckets["harvest"]["landcover_a.json"])
	assert.Equal(t, 1, fake.countPrefix("PUT /harvest/landcover_a.json"))
}

func TestS3PutObjectFailure(t *testing.T) {
	gw, _ := newTestS3(t)

	err := gw.PutObject(context.Background(), "no-such-bucket", "k.json", []byte("{}"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "k.json")
}
