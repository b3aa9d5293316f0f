package storage

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	apperrors "github.com/snapvault/gallery-server-go/internal/errors"
)

// objectAPI is the slice of the S3 client the broker calls directly.
type objectAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// presignAPI is the slice of the S3 presign client the broker calls.
type presignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Broker issues short-lived capability URLs against an S3-compatible backend
// and performs direct existence checks and deletes. It holds no per-call
// state; one instance is shared by all request handlers.
type Broker struct {
	objects    objectAPI
	presign    presignAPI
	defaultTTL time.Duration
}

// NewS3Client builds the underlying client once at startup. R2 speaks the S3
// API with a custom endpoint and path-style addressing.
func NewS3Client(ctx context.Context, endpoint, accessKeyID, secretAccessKey string) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	}), nil
}

func NewBroker(client *s3.Client, defaultTTL time.Duration) *Broker {
	return &Broker{
		objects:    client,
		presign:    s3.NewPresignClient(client),
		defaultTTL: defaultTTL,
	}
}

func (b *Broker) ttl(override time.Duration) time.Duration {
	if override > 0 {
		return override
	}
	return b.defaultTTL
}

// SignDownloadURL returns a presigned GET URL. A zero ttl means the
// configured default.
func (b *Broker) SignDownloadURL(ctx context.Context, bucket, objectKey string, ttl time.Duration) (string, error) {
	req, err := b.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(b.ttl(ttl)))
	if err != nil {
		return "", apperrors.StorageSignFailed(err)
	}
	return req.URL, nil
}

// SignUploadURL returns a presigned PUT URL bound to the given content type.
func (b *Broker) SignUploadURL(ctx context.Context, bucket, objectKey, contentType string, ttl time.Duration) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(objectKey),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	req, err := b.presign.PresignPutObject(ctx, input, s3.WithPresignExpires(b.ttl(ttl)))
	if err != nil {
		return "", apperrors.StorageSignFailed(err)
	}
	return req.URL, nil
}

// Exists reports whether the object is present. A not-found response is a
// normal false, not an error.
func (b *Broker) Exists(ctx context.Context, bucket, objectKey string) (bool, error) {
	_, err := b.objects.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, apperrors.StorageCheckFailed(err)
	}
	return true, nil
}

func (b *Broker) Delete(ctx context.Context, bucket, objectKey string) error {
	_, err := b.objects.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return apperrors.StorageDeleteFailed(err)
	}
	return nil
}
