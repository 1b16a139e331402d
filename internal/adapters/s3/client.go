// internal/adapters/s3/client.go
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"golang.org/x/time/rate"

	"review_system/internal/adapters/observability"
	"review_system/internal/domain"
)

// Config carries the connection settings for the review bucket.
type Config struct {
	Endpoint       string
	Region         string
	AccessKey      string
	SecretKey      string
	ForcePathStyle bool
	Bucket         string
	Prefix         string
	Suffix         string
	RPS            int
}

// Store lists and streams review files from an S3-compatible bucket.
type Store struct {
	client *awss3.S3
	bucket string
	prefix string
	suffix string
	rl     *rate.Limiter
}

func New(cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	rps := cfg.RPS
	if rps <= 0 {
		rps = 5
	}
	awsCfg := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(cfg.ForcePathStyle),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, err
	}
	return &Store{
		client: awss3.New(sess),
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		suffix: cfg.Suffix,
		rl:     rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ListFiles walks the configured prefix page by page and returns every
// object whose key carries the review-file suffix.
func (s *Store) ListFiles(ctx context.Context) ([]domain.FileInfo, error) {
	var (
		files []domain.FileInfo
		token *string
	)
	for {
		// client-side rate limiting, one token per page
		if err := s.rl.Wait(ctx); err != nil {
			return nil, err
		}
		start := time.Now()
		out, err := s.client.ListObjectsV2WithContext(ctx, &awss3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(s.prefix),
			ContinuationToken: token,
		})
		observability.ObserveExternal("s3", "list", statusOf(err), time.Since(start))
		if err != nil {
			return nil, fmt.Errorf("list bucket %s: %w", s.bucket, err)
		}
		for _, obj := range out.Contents {
			key := aws.StringValue(obj.Key)
			if s.suffix != "" && !strings.HasSuffix(key, s.suffix) {
				continue
			}
			files = append(files, domain.FileInfo{
				Key:          key,
				LastModified: aws.TimeValue(obj.LastModified),
				Size:         aws.Int64Value(obj.Size),
			})
		}
		if !aws.BoolValue(out.IsTruncated) {
			break
		}
		token = out.NextContinuationToken
	}
	return files, nil
}

// Open streams one object's body. The caller owns the ReadCloser.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := s.rl.Wait(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	out, err := s.client.GetObjectWithContext(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	observability.ObserveExternal("s3", "get", statusOf(err), time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	return out.Body, nil
}

// statusOf maps an SDK error to the HTTP status it rode in on, 200 on success.
func statusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var rf awserr.RequestFailure
	if errors.As(err, &rf) {
		return rf.StatusCode()
	}
	return 0
}
