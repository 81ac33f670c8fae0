// Package reliability ships stress reports to durable object storage.
package reliability

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// ArchiveConfig configures the S3-compatible report bucket
type ArchiveConfig struct {
	Bucket          string
	Endpoint        string // empty for AWS, set for R2/MinIO
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

// ReportArchiver stores completed stress reports
type ReportArchiver interface {
	Archive(ctx context.Context, runID string, createdAt time.Time, report []byte) (string, error)
}

type objectUploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3ReportArchiver uploads gzip-compressed JSON reports to an S3-compatible bucket
type S3ReportArchiver struct {
	uploader objectUploader
	bucket   string
	prefix   string
	log      zerolog.Logger
}

// NewS3ReportArchiver creates an archiver using static credentials
func NewS3ReportArchiver(ctx context.Context, cfg ArchiveConfig, log zerolog.Logger) (*S3ReportArchiver, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("archive bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load archive storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3ReportArchiver(manager.NewUploader(client), cfg.Bucket, cfg.Prefix, log), nil
}

func newS3ReportArchiver(uploader objectUploader, bucket, prefix string, log zerolog.Logger) *S3ReportArchiver {
	return &S3ReportArchiver{
		uploader: uploader,
		bucket:   bucket,
		prefix:   prefix,
		log:      log.With().Str("service", "report_archiver").Logger(),
	}
}

// ObjectKey returns the key a report is stored under: <prefix>YYYY/MM/DD/<run id>.json.gz
func (a *S3ReportArchiver) ObjectKey(runID string, createdAt time.Time) string {
	day := createdAt.UTC().Format("2006/01/02")
	return strings.TrimPrefix(path.Join(a.prefix, day, runID+".json.gz"), "/")
}

// Archive compresses and uploads a report, returning its object key
func (a *S3ReportArchiver) Archive(ctx context.Context, runID string, createdAt time.Time, report []byte) (string, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(report); err != nil {
		return "", fmt.Errorf("failed to compress report %s: %w", runID, err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("failed to compress report %s: %w", runID, err)
	}

	key := a.ObjectKey(runID, createdAt)
	start := time.Now()

	_, err := a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:          aws.String(a.bucket),
		Key:             aws.String(key),
		Body:            bytes.NewReader(buf.Bytes()),
		ContentType:     aws.String("application/json"),
		ContentEncoding: aws.String("gzip"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report %s: %w", runID, err)
	}

	a.log.Info().
		Str("key", key).
		Int("size_bytes", buf.Len()).
		Dur("duration", time.Since(start)).
		Msg("Stress report archived")
	return key, nil
}
