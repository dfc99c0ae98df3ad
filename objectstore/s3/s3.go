// Package s3 provides an objectstore.Store backed by Amazon S3 (or any
// S3-compatible API such as MinIO or LocalStack) using aws-sdk-go-v2.
//
// The store is bucket agnostic: bucket and key travel with every call, which
// matches how pipeline stages address input and output objects. Construct it
// once at process start and share it; the underlying SDK client is safe for
// concurrent use.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/hupe1980/s3agent/objectstore"
)

// API is the subset of the S3 client used by Store. *awss3.Client satisfies
// it; tests substitute a fake.
type API interface {
	GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
}

var _ API = (*awss3.Client)(nil)

// Store implements objectstore.Store on top of the S3 API.
type Store struct {
	client API
}

// NewStore loads the default AWS credential chain (env, shared config, IMDS)
// overlaid with the explicit settings in cfg and returns a ready Store.
func NewStore(ctx context.Context, cfg *Config) (*Store, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.ApplyDefaults()

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return NewStoreFromClient(client), nil
}

// NewStoreFromClient wraps an existing S3 API client.
func NewStoreFromClient(client API) *Store {
	return &Store{client: client}
}

// Fetch downloads the object body at bucket/key.
func (s *Store) Fetch(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3: get s3://%s/%s: %w", bucket, key, classify(err))
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3: read s3://%s/%s: %w", bucket, key, err)
	}
	return data, nil
}

// Put uploads data to bucket/key, overwriting any existing object.
func (s *Store) Put(ctx context.Context, bucket, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("s3: put s3://%s/%s: %w", bucket, key, classify(err))
	}
	return nil
}

// classify joins an objectstore sentinel with err when the S3 error code
// identifies a missing object or a permission failure. Other errors pass
// through unchanged.
func classify(err error) error {
	var nsk *types.NoSuchKey
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsk) || errors.As(err, &nsb) {
		return errors.Join(objectstore.ErrNotFound, err)
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	switch apiErr.ErrorCode() {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return errors.Join(objectstore.ErrNotFound, err)
	case "AccessDenied", "Forbidden", "InvalidAccessKeyId", "SignatureDoesNotMatch", "AllAccessDisabled":
		return errors.Join(objectstore.ErrAccessDenied, err)
	default:
		return err
	}
}

// compile-time check
var _ objectstore.Store = (*Store)(nil)
