package s3

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"bananaledger/internal/config"
	"bananaledger/internal/port"
)

// Archive stores original statements. Keys are content addressed, so an
// object that already exists under the key is left untouched.
type Archive struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
}

// NewArchive builds an Archive for cfg.Bucket. A custom endpoint switches to
// path-style addressing for MinIO and similar stores.
func NewArchive(cfg *config.S3Config) (*Archive, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &Archive{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   cfg.Bucket,
	}, nil
}

// Upload stores the statement unless the key is already present. An empty
// input.Bucket selects the configured archive bucket.
func (a *Archive) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	bucket := input.Bucket
	if bucket == "" {
		bucket = a.bucket
	}

	if out, ok := a.existing(ctx, bucket, input.Key); ok {
		return out, nil
	}

	result, err := a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(input.Key),
		Body:        input.Body,
		ContentType: aws.String(input.ContentType),
		Metadata:    input.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("archive upload %s: %w", input.Key, err)
	}

	return &port.UploadOutput{
		Location: result.Location,
		ETag:     aws.ToString(result.ETag),
	}, nil
}

// existing reports an object already stored under key. Any lookup failure,
// a missing key included, falls through to a normal upload.
func (a *Archive) existing(ctx context.Context, bucket, key string) (*port.UploadOutput, bool) {
	head, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, false
	}
	return &port.UploadOutput{
		Location: fmt.Sprintf("s3://%s/%s", bucket, key),
		ETag:     aws.ToString(head.ETag),
		Existing: true,
	}, true
}
