package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DefaultURLTTL is how long a presigned export link stays valid.
const DefaultURLTTL = time.Hour

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// URLTTL defaults to DefaultURLTTL.
	URLTTL time.Duration
}

// S3Store keeps exported setups in one S3/MinIO bucket. The bucket is
// created on first use; a failed attempt is retried on the next call.
type S3Store struct {
	client *minio.Client
	bucket string
	region string
	urlTTL time.Duration

	mu    sync.Mutex
	ready bool
}

var errNilStore = errors.New("s3 store is nil")

func NewS3Store(cfg S3Config) (*S3Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	bucket := strings.TrimSpace(cfg.Bucket)
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	switch {
	case endpoint == "":
		return nil, fmt.Errorf("s3 endpoint is required")
	case access == "" || secret == "":
		return nil, fmt.Errorf("s3 access key and secret key are required")
	case bucket == "":
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}
	ttl := cfg.URLTTL
	if ttl <= 0 {
		ttl = DefaultURLTTL
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &S3Store{client: client, bucket: bucket, region: region, urlTTL: ttl}, nil
}

// prepare validates key and makes sure the bucket exists.
func (s *S3Store) prepare(ctx context.Context, key string) (string, error) {
	if s == nil || s.client == nil {
		return "", errNilStore
	}
	key, err := normalizeKey(key)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return key, nil
	}
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return "", fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return "", fmt.Errorf("create bucket %s: %w", s.bucket, err)
		}
	}
	s.ready = true
	return key, nil
}

// Put uploads one exported setup. Downloads get it as an attachment named
// after the last key segment.
func (s *S3Store) Put(ctx context.Context, key string, content []byte) error {
	key, err := s.prepare(ctx, key)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType:        "application/json",
		ContentDisposition: attachment(key),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	key, err := s.prepare(ctx, key)
	if err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if isMissing(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// GetURL presigns a download link valid for the configured TTL. Signing
// is local; the bucket is not contacted.
func (s *S3Store) GetURL(ctx context.Context, key string) (string, error) {
	if s == nil || s.client == nil {
		return "", errNilStore
	}
	key, err := normalizeKey(key)
	if err != nil {
		return "", err
	}
	params := url.Values{}
	params.Set("response-content-disposition", attachment(key))
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.urlTTL, params)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return u.String(), nil
}

func attachment(key string) string {
	return fmt.Sprintf("attachment; filename=%q", path.Base(key))
}

func isMissing(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return true
	}
	return false
}
