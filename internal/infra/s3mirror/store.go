package s3mirror

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
	"github.com/dhruv-ramu/FragmentFusion/internal/ports"
)

// Store mirrors project files into a single S3-compatible bucket. Keys are
// placed under the configured prefix.
type Store struct {
	client *s3.Client
	bucket string
	prefix string
}

var _ ports.ObjectStore = (*Store)(nil)

// New builds a store from the mirror config. Credentials come from the
// default AWS chain (environment, shared config, instance roles).
func New(ctx context.Context, cfg domain.S3Config, optFns ...func(*s3.Options)) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, &domain.OpError{
			Op:   "s3mirror.new",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("mirror.s3.bucket is required: %w", domain.ErrInvalidConfig),
		}
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, &domain.OpError{Op: "s3mirror.new", Kind: domain.KindInvalidConfig, Err: err}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// S3-compatible endpoints may store aws-chunked framing as object bytes.
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		for _, fn := range optFns {
			fn(o)
		}
	})
	return &Store{client: client, bucket: cfg.Bucket, prefix: strings.Trim(cfg.Prefix, "/")}, nil
}

// Key maps a slash-separated project path to its object key.
func (s *Store) Key(rel string) string {
	rel = strings.TrimPrefix(path.Clean("/"+rel), "/")
	if s.prefix == "" {
		return rel
	}
	return s.prefix + "/" + rel
}

// URI renders the s3:// location of a project path.
func (s *Store) URI(rel string) string {
	return "s3://" + s.bucket + "/" + s.Key(rel)
}

func (s *Store) Head(ctx context.Context, rel string) (int64, bool, error) {
	key := s.Key(rel)
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		if isNotFound(err) {
			return 0, false, nil
		}
		return 0, false, &domain.OpError{Op: "s3mirror.head", Kind: domain.KindRemote, Path: key, Err: err}
	}
	return aws.ToInt64(out.ContentLength), true, nil
}

func (s *Store) Put(ctx context.Context, rel string, r io.Reader, size int64) error {
	key := s.Key(rel)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &s.bucket,
		Key:           &key,
		Body:          r,
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return &domain.OpError{Op: "s3mirror.put", Kind: domain.KindRemote, Path: key, Err: err}
	}
	return nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var status interface{ HTTPStatusCode() int }
	return errors.As(err, &status) && status.HTTPStatusCode() == 404
}
