package repomanager

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/totpkeeper/internal/server/repositories/accounts"
)

// S3Settings address an S3-compatible store such as MinIO.
type S3Settings struct {
	RootUser     string
	RootPassword string
	Bucket       string
	Region       string
	BaseEndpoint string
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type S3RepositoryManager struct {
	client *s3.Client
	bucket string
}

// NewS3RepositoryManager builds a path-style client and checks that the
// bucket is reachable with the given credentials.
func NewS3RepositoryManager(ctx context.Context, s S3Settings) (*S3RepositoryManager, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.RootUser,
			s.RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	m := &S3RepositoryManager{client: client, bucket: s.Bucket}
	if err := m.Ping(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *S3RepositoryManager) Accounts() accounts.Repository {
	return accounts.NewS3Repository(m.client, m.bucket)
}

func (m *S3RepositoryManager) Ping(ctx context.Context) error {
	if _, err := m.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(m.bucket)}); err != nil {
		return fmt.Errorf("head bucket %s: %w", m.bucket, err)
	}
	return nil
}

func (m *S3RepositoryManager) Close(context.Context) error { return nil }
