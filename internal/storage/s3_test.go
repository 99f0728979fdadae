package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBucket answers the handful of S3 calls the backend makes, path style.
type fakeBucket struct {
	mu      sync.Mutex
	objects map[string]string
	types   map[string]string
}

func (b *fakeBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := strings.TrimPrefix(r.URL.Path, "/exports/")
	switch {
	case r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		b.objects[key] = string(body)
		b.types[key] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodGet && r.URL.Query().Get("list-type") == "2":
		prefix := r.URL.Query().Get("prefix")
		w.Header().Set("Content-Type", "application/xml")
		io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/"><Name>exports</Name><IsTruncated>false</IsTruncated>`)
		for k := range b.objects {
			if strings.HasPrefix(k, prefix) {
				io.WriteString(w, "<Contents><Key>"+k+"</Key></Contents>")
			}
		}
		io.WriteString(w, `</ListBucketResult>`)
	case r.Method == http.MethodHead:
		body, ok := b.objects[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodDelete:
		delete(b.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestS3(t *testing.T) (*S3Storage, *fakeBucket, *httptest.Server) {
	bucket := &fakeBucket{objects: map[string]string{}, types: map[string]string{}}
	srv := httptest.NewServer(bucket)
	t.Cleanup(srv.Close)

	client := s3.New(s3.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String(srv.URL),
		UsePathStyle: true,
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{AccessKeyID: "AKIDEXAMPLE", SecretAccessKey: "secret"}, nil
		}),
		RetryMaxAttempts: 1,
	})
	return newS3Storage(client, "exports", "reports"), bucket, srv
}

func TestS3Storage(t *testing.T) {
	ctx := context.Background()
	s, bucket, srv := newTestS3(t)
	key := ReportKey(time.Now().Add(15 * time.Minute))

	t.Run("Save puts the object under the prefix", func(t *testing.T) {
		require.NoError(t, s.SaveFile(ctx, key, "application/vnd.ms-excel", strings.NewReader("xlsx-bytes")))

		bucket.mu.Lock()
		defer bucket.mu.Unlock()
		assert.Equal(t, "xlsx-bytes", bucket.objects["reports/"+key])
		assert.Equal(t, "application/vnd.ms-excel", bucket.types["reports/"+key])
	})

	t.Run("Presigned link", func(t *testing.T) {
		link, err := s.GenerateDownloadURL(ctx, key, 15*time.Minute)
		require.NoError(t, err)

		u, err := url.Parse(link)
		require.NoError(t, err)
		assert.Equal(t, strings.TrimPrefix(srv.URL, "http://"), u.Host)
		assert.Equal(t, "/exports/reports/"+key, u.Path)
		assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
		assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	})

	t.Run("Exists list delete", func(t *testing.T) {
		exists, size, err := s.FileExists(ctx, key)
		require.NoError(t, err)
		assert.True(t, exists)
		assert.Equal(t, int64(10), size)

		keys, err := s.ListFiles(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{key}, keys)

		require.NoError(t, s.DeleteFile(ctx, key))
		exists, _, err = s.FileExists(ctx, key)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}
