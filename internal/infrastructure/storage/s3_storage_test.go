package storage

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/homechef/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestStorage(t *testing.T) *S3ObjectStorage {
	t.Helper()
	s, err := NewS3ObjectStorage(context.Background(), config.StorageConfig{
		Endpoint:        "http://localhost:9000",
		Region:          "eu-west-1",
		Bucket:          "dish-images",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		UsePathStyle:    true,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	_, err := NewS3ObjectStorage(context.Background(), config.StorageConfig{}, nil)
	assert.ErrorContains(t, err, "bucket is required")

	_, err = NewS3ObjectStorage(context.Background(), config.StorageConfig{Bucket: "b", Endpoint: "not a url"}, nil)
	assert.ErrorContains(t, err, "invalid storage endpoint")
}

func TestGenerateUploadURL(t *testing.T) {
	s := newTestStorage(t)

	raw, expiresAt, err := s.GenerateUploadURL(context.Background(), "dishes/abc/photo.jpg", "image/jpeg", 10*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 14, 12, 10, 0, 0, time.UTC), expiresAt)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/dish-images/dishes/abc/photo.jpg", u.Path)
	q := u.Query()
	assert.Equal(t, "600", q.Get("X-Amz-Expires"))
	assert.Contains(t, q.Get("X-Amz-SignedHeaders"), "content-type")
	assert.Contains(t, q.Get("X-Amz-Credential"), "eu-west-1/s3/aws4_request")
}

func TestGenerateDownloadURL(t *testing.T) {
	s := newTestStorage(t)

	raw, _, err := s.GenerateDownloadURL(context.Background(), "dishes/abc/photo.jpg", time.Hour)
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestEmptyKeyRejected(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, _, err := s.GenerateUploadURL(ctx, "", "image/png", time.Minute)
	assert.ErrorIs(t, err, errEmptyKey)
	_, _, err = s.GenerateDownloadURL(ctx, "", time.Minute)
	assert.ErrorIs(t, err, errEmptyKey)
	assert.ErrorIs(t, s.DeleteObject(ctx, ""), errEmptyKey)
}
