package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

var ErrObjectNotFound = errors.New("object not found")

type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	LastModified time.Time
}

type PutOptions struct {
	ContentType string
}

// ObjectStore is the slice of an S3-compatible bucket the loader and the
// demo dataset writer rely on.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, opts PutOptions) (ObjectInfo, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Stat(ctx context.Context, key string) (ObjectInfo, error)
}

const uriScheme = "s3://"

// Location addresses one object in a bucket.
type Location struct {
	Bucket string
	Key    string
}

func (l Location) String() string {
	return uriScheme + l.Bucket + "/" + l.Key
}

func IsObjectURI(raw string) bool {
	return strings.HasPrefix(strings.TrimSpace(raw), uriScheme)
}

// ParseURI splits s3://bucket/key into its parts.
func ParseURI(raw string) (Location, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, uriScheme) {
		return Location{}, fmt.Errorf("object uri %q must start with %s", raw, uriScheme)
	}
	bucket, key, ok := strings.Cut(strings.TrimPrefix(raw, uriScheme), "/")
	if !ok || bucket == "" || strings.Trim(key, "/") == "" {
		return Location{}, fmt.Errorf("object uri %q must name a bucket and a key", raw)
	}
	return Location{Bucket: bucket, Key: key}, nil
}
