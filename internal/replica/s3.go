package replica

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/masterc/wealthdesk/internal/config"
)

// S3Source downloads the replica object from an S3-compatible bucket (AWS, R2, MinIO)
type S3Source struct {
	bucket     string
	key        string
	downloader *manager.Downloader
}

// NewS3Source builds an S3 client from cfg. Static credentials are used when
// both keys are set, otherwise the default AWS credential chain applies.
func NewS3Source(ctx context.Context, cfg config.ReplicaSource) (*S3Source, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKeyID != "" && cfg.S3SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 configuration: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Source{
		bucket:     cfg.S3Bucket,
		key:        cfg.S3Key,
		downloader: manager.NewDownloader(client),
	}, nil
}

// Name returns the s3:// location of the object
func (s *S3Source) Name() string {
	return "s3://" + s.bucket + "/" + s.key
}

// Fetch downloads the object to destPath
func (s *S3Source) Fetch(ctx context.Context, destPath string) (int64, error) {
	file, err := os.Create(destPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create replica file: %w", err)
	}

	n, err := s.downloader.Download(ctx, file, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return n, fmt.Errorf("failed to download %s: %w", s.Name(), err)
	}
	return n, nil
}
