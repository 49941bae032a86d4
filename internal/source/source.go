// Package source opens a blocklist for reading, either a local file or
// an object fetched from S3, and hands back a plain io.ReadCloser so
// the pipeline's line scanner never needs to know which kind it got.
// Grounded on DNShield's rules.Fetcher (S3 client construction, the
// same explicit-credentials-else-default-chain branch, and a 30s
// timeout per fetch).
package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"blockfold/internal/config"
)

// Source opens a blocklist for streaming, byte for byte, including its
// original line terminators.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	// Name identifies the source for audit events and carry-over
	// provenance (a file path or an s3://bucket/key URI).
	Name() string
}

// FileSource reads a blocklist from the local filesystem.
type FileSource struct {
	Path string
}

func (f FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	return os.Open(f.Path)
}

func (f FileSource) Name() string { return f.Path }

// S3Config holds the subset of credentials DNShield's S3Config carries
// that a one-shot GetObject needs.
type S3Config struct {
	Region      string
	Bucket      string
	Key         string
	AccessKeyID string
	SecretKey   string
}

// S3Source fetches a blocklist object from S3 on each Open call.
type S3Source struct {
	cfg      S3Config
	s3Client *s3.Client
}

// NewS3Source builds the AWS SDK client for cfg, resolving credentials
// through config.GetAWSCredentials's priority order (IAM role, env
// vars, config file) before falling back to the SDK's own default
// credential chain.
func NewS3Source(ctx context.Context, cfg S3Config) (*S3Source, error) {
	creds, err := config.GetAWSCredentials(&config.S3Config{
		AccessKeyID: cfg.AccessKeyID,
		SecretKey:   cfg.SecretKey,
	})
	if err != nil {
		return nil, fmt.Errorf("source: resolve aws credentials: %w", err)
	}

	var awsCfg aws.Config
	if creds.AccessKeyID != "" && creds.SecretAccessKey != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				creds.AccessKeyID, creds.SecretAccessKey, "",
			)),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	}
	if err != nil {
		return nil, fmt.Errorf("source: load aws config: %w", err)
	}

	return &S3Source{cfg: cfg, s3Client: s3.NewFromConfig(awsCfg)}, nil
}

func (s *S3Source) Open(ctx context.Context) (io.ReadCloser, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)

	resp, err := s.s3Client.GetObject(fetchCtx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.cfg.Key),
	})
	if err != nil {
		cancel()
		logrus.WithError(err).WithFields(logrus.Fields{
			"bucket": s.cfg.Bucket, "key": s.cfg.Key,
		}).Error("source: failed to fetch blocklist from S3")
		return nil, fmt.Errorf("source: fetch s3 object: %w", err)
	}
	return cancelOnClose{ReadCloser: resp.Body, cancel: cancel}, nil
}

// cancelOnClose keeps the fetch context alive while the body is read and
// releases it on Close.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

func (s *S3Source) Name() string {
	return fmt.Sprintf("s3://%s/%s", s.cfg.Bucket, s.cfg.Key)
}
