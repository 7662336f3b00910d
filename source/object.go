package source

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DefaultMaxObjectSize bounds objects fetched by ObjectLoader.
const DefaultMaxObjectSize = 256 << 20

// ObjectOption configures an ObjectLoader.
type ObjectOption func(c *objectConfig)

type objectConfig struct {
	endpoint        string
	accessKey       string
	secretAccessKey string
	region          string
	useSSL          bool
	maxSize         int64
}

// WithEndpoint sets the S3 endpoint host, e.g. "minio.local:9000".
func WithEndpoint(endpoint string) ObjectOption {
	return func(c *objectConfig) {
		c.endpoint = endpoint
	}
}

// WithAccessKey sets the access key ID.
func WithAccessKey(accessKey string) ObjectOption {
	return func(c *objectConfig) {
		c.accessKey = accessKey
	}
}

// WithSecretKey sets the secret access key.
func WithSecretKey(secretKey string) ObjectOption {
	return func(c *objectConfig) {
		c.secretAccessKey = secretKey
	}
}

// WithRegion sets the bucket region.
func WithRegion(region string) ObjectOption {
	return func(c *objectConfig) {
		c.region = region
	}
}

// WithSSL enables TLS.
func WithSSL(useSSL bool) ObjectOption {
	return func(c *objectConfig) {
		c.useSSL = useSSL
	}
}

// WithMaxSize overrides DefaultMaxObjectSize.
func WithMaxSize(n int64) ObjectOption {
	return func(c *objectConfig) {
		if n > 0 {
			c.maxSize = n
		}
	}
}

// ObjectLoader reads sources from S3-compatible object storage. Names have
// the form s3://bucket/key.
type ObjectLoader struct {
	cfg    *objectConfig
	client *minio.Client
}

// NewObjectLoader creates a loader. No request is made until Load.
func NewObjectLoader(opts ...ObjectOption) (*ObjectLoader, error) {
	cfg := &objectConfig{maxSize: DefaultMaxObjectSize}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.endpoint == "" {
		return nil, fmt.Errorf("source: object storage endpoint is required")
	}

	client, err := minio.New(cfg.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.accessKey, cfg.secretAccessKey, ""),
		Secure: cfg.useSSL,
		Region: cfg.region,
	})
	if err != nil {
		return nil, fmt.Errorf("source: object storage client: %w", err)
	}
	return &ObjectLoader{cfg: cfg, client: client}, nil
}

// ParseObjectURL splits s3://bucket/key.
func ParseObjectURL(name string) (bucket, key string, err error) {
	u, err := url.Parse(name)
	if err != nil {
		return "", "", fmt.Errorf("source: invalid object URL %q: %w", name, err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("source: invalid object URL %q: want s3://bucket/key", name)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("source: invalid object URL %q: missing key", name)
	}
	return u.Host, key, nil
}

// Load fetches the object named by an s3:// URL.
func (l *ObjectLoader) Load(ctx context.Context, name string) ([]byte, error) {
	bucket, key, err := ParseObjectURL(name)
	if err != nil {
		return nil, err
	}
	object, err := l.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer object.Close()

	info, err := object.Stat()
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}
	if info.Size > l.cfg.maxSize {
		return nil, fmt.Errorf("source: object %s is %d bytes, limit %d", name, info.Size, l.cfg.maxSize)
	}

	data, err := io.ReadAll(io.LimitReader(object, l.cfg.maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) != info.Size {
		return nil, fmt.Errorf("source: object %s: expected %d bytes, received %d", name, info.Size, len(data))
	}
	return data, nil
}
