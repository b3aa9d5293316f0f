package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/snapvault/gallery-server-go/internal/errors"
)

type mockObjects struct {
	headFunc   func(ctx context.Context, params *s3.HeadObjectInput) (*s3.HeadObjectOutput, error)
	deleteFunc func(ctx context.Context, params *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error)
}

func (m *mockObjects) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if m.headFunc != nil {
		return m.headFunc(ctx, params)
	}
	return &s3.HeadObjectOutput{}, nil
}

func (m *mockObjects) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, params)
	}
	return &s3.DeleteObjectOutput{}, nil
}

type mockPresign struct {
	getFunc func(ctx context.Context, params *s3.GetObjectInput) (*v4.PresignedHTTPRequest, error)
	putFunc func(ctx context.Context, params *s3.PutObjectInput) (*v4.PresignedHTTPRequest, error)
}

func (m *mockPresign) PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, params)
	}
	return &v4.PresignedHTTPRequest{URL: "https://signed.example/get"}, nil
}

func (m *mockPresign) PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	if m.putFunc != nil {
		return m.putFunc(ctx, params)
	}
	return &v4.PresignedHTTPRequest{URL: "https://signed.example/put"}, nil
}

func newTestBroker(objects *mockObjects, presign *mockPresign) *Broker {
	return &Broker{
		objects:    objects,
		presign:    presign,
		defaultTTL: 15 * time.Minute,
	}
}

func TestSignDownloadURL(t *testing.T) {
	t.Run("returns presigned url", func(t *testing.T) {
		presign := &mockPresign{
			getFunc: func(ctx context.Context, params *s3.GetObjectInput) (*v4.PresignedHTTPRequest, error) {
				assert.Equal(t, "event-media", aws.ToString(params.Bucket))
				assert.Equal(t, "events/e1/photo.jpg", aws.ToString(params.Key))
				return &v4.PresignedHTTPRequest{URL: "https://signed.example/get"}, nil
			},
		}
		broker := newTestBroker(&mockObjects{}, presign)

		url, err := broker.SignDownloadURL(context.Background(), "event-media", "events/e1/photo.jpg", 0)
		require.NoError(t, err)
		assert.Equal(t, "https://signed.example/get", url)
	})

	t.Run("classifies signing failures", func(t *testing.T) {
		presign := &mockPresign{
			getFunc: func(ctx context.Context, params *s3.GetObjectInput) (*v4.PresignedHTTPRequest, error) {
				return nil, errors.New("signer exploded")
			},
		}
		broker := newTestBroker(&mockObjects{}, presign)

		_, err := broker.SignDownloadURL(context.Background(), "event-media", "k", 0)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeStorageSignFailed, apperrors.GetCode(err))
		assert.ErrorContains(t, err, "signer exploded")
	})
}

func TestSignUploadURL(t *testing.T) {
	presign := &mockPresign{
		putFunc: func(ctx context.Context, params *s3.PutObjectInput) (*v4.PresignedHTTPRequest, error) {
			assert.Equal(t, "image/jpeg", aws.ToString(params.ContentType))
			return &v4.PresignedHTTPRequest{URL: "https://signed.example/put"}, nil
		},
	}
	broker := newTestBroker(&mockObjects{}, presign)

	url, err := broker.SignUploadURL(context.Background(), "event-media", "k", "image/jpeg", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/put", url)
}

func TestExists(t *testing.T) {
	t.Run("present object", func(t *testing.T) {
		broker := newTestBroker(&mockObjects{}, &mockPresign{})

		exists, err := broker.Exists(context.Background(), "event-media", "k")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("not found is false without error", func(t *testing.T) {
		objects := &mockObjects{
			headFunc: func(ctx context.Context, params *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
				return nil, &types.NotFound{}
			},
		}
		broker := newTestBroker(objects, &mockPresign{})

		exists, err := broker.Exists(context.Background(), "event-media", "k")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("other failures are classified", func(t *testing.T) {
		objects := &mockObjects{
			headFunc: func(ctx context.Context, params *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
				return nil, errors.New("connection reset")
			},
		}
		broker := newTestBroker(objects, &mockPresign{})

		_, err := broker.Exists(context.Background(), "event-media", "k")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeStorageCheckFailed, apperrors.GetCode(err))
	})
}

func TestDelete(t *testing.T) {
	t.Run("classifies delete failures", func(t *testing.T) {
		objects := &mockObjects{
			deleteFunc: func(ctx context.Context, params *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
				return nil, errors.New("denied")
			},
		}
		broker := newTestBroker(objects, &mockPresign{})

		err := broker.Delete(context.Background(), "event-media", "k")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeStorageDeleteFailed, apperrors.GetCode(err))
	})

	t.Run("succeeds", func(t *testing.T) {
		broker := newTestBroker(&mockObjects{}, &mockPresign{})
		assert.NoError(t, broker.Delete(context.Background(), "event-media", "k"))
	})
}
