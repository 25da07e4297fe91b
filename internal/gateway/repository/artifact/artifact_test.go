package artifact

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	assert.Equal(t,
		"porsche-911-gt3-r-992/spa-francorchamps/abc-123-r2.json",
		ObjectKey("Porsche 911 GT3 R (992)", "Spa-Francorchamps", "abc-123", 2))
	assert.Equal(t, "unknown/n-rburgring/x-r1.json", ObjectKey("  ", "Nürburgring", "x", 1))
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "/a/b.json", []byte(`{}`)))
	got, err := s.Get(ctx, "a/b.json")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{}`), got)

	_, err = s.Get(ctx, "a/missing.json")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, s.Put(ctx, "", nil))
	assert.ErrorIs(t, s.Put(ctx, "a/../b", nil), ErrInvalidKey)

	u, err := s.GetURL(ctx, "a/b.json")
	require.NoError(t, err)
	assert.Empty(t, u)
}

func TestNewS3StoreValidates(t *testing.T) {
	_, err := NewS3Store(S3Config{})
	assert.Error(t, err)
	_, err = NewS3Store(S3Config{Endpoint: "localhost:9000", Bucket: "b"})
	assert.Error(t, err)

	s, err := NewS3Store(S3Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s", Bucket: "b"})
	require.NoError(t, err)
	u, err := s.GetURL(context.Background(), "car/track/s-r1.json")
	require.NoError(t, err)
	assert.Contains(t, u, "/b/car/track/s-r1.json")
	assert.Contains(t, u, "X-Amz-Signature=")
}

func TestS3PresignedURLIsAttachment(t *testing.T) {
	s, err := NewS3Store(S3Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s", Bucket: "b", URLTTL: 10 * time.Minute})
	require.NoError(t, err)
	u, err := s.GetURL(context.Background(), "bmw/monza/s-r2.json")
	require.NoError(t, err)
	assert.Contains(t, u, "X-Amz-Expires=600")
	assert.Contains(t, u, "response-content-disposition=")
	assert.Contains(t, u, "s-r2.json")

	_, err = s.GetURL(context.Background(), "../x")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestAttachment(t *testing.T) {
	assert.Equal(t, `attachment; filename="s-r1.json"`, attachment("car/track/s-r1.json"))
}
