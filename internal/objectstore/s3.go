// Package objectstore moves snapshots through an S3-compatible bucket
// (AWS S3, MinIO), one object per snapshot.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/timex"
)

// DefaultKey is the object key used when none is configured.
const DefaultKey = "gophchat/snapshot.json"

// maxObjectSize caps how much of a snapshot object is read back.
const maxObjectSize = 64 << 20

// Config describes the bucket. Credentials are static; an empty Endpoint
// uses the SDK's default AWS endpoint resolution.
type Config struct {
	Endpoint  string         `json:"endpoint"`
	Region    string         `json:"region"`
	Bucket    string         `json:"bucket"`
	AccessKey string         `json:"access_key"`
	SecretKey string         `json:"secret_key"`
	Key       string         `json:"key"`
	Timeout   timex.Duration `json:"timeout"`
}

// API is the part of *s3.Client the store uses.
type API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Presigner issues time-limited download links for objects.
type Presigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// DefaultLinkTTL is how long a shared download link stays valid.
const DefaultLinkTTL = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3Clients = func(cfg aws.Config, optFns ...func(*s3.Options)) (API, Presigner) {
		client := s3.NewFromConfig(cfg, optFns...)
		return client, s3.NewPresignClient(client)
	}
)

// Store reads and writes snapshot objects.
type Store struct {
	client  API
	signer  Presigner
	bucket  string
	key     string
	timeout time.Duration
	log     logging.Logger
}

// New builds an S3 client from cfg.
func New(ctx context.Context, cfg Config, log logging.Logger) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: s3 bucket is not configured", common.ErrorValidation)
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load s3 config: %w", err)
	}

	client, signer := newS3Clients(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewWithClient(client, signer, cfg, log), nil
}

// NewWithClient wraps existing clients. signer may be nil, in which case
// PresignGet fails.
func NewWithClient(client API, signer Presigner, cfg Config, log logging.Logger) *Store {
	key := cfg.Key
	if key == "" {
		key = DefaultKey
	}
	return &Store{
		client:  client,
		signer:  signer,
		bucket:  cfg.Bucket,
		key:     key,
		timeout: cfg.Timeout.Duration,
		log:     log.With("component", "objectstore", "bucket", cfg.Bucket),
	}
}

// Key returns the object key used when callers pass an empty one.
func (s *Store) Key() string {
	return s.key
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Store) objectKey(key string) string {
	if key == "" {
		return s.key
	}
	return key
}

// Put uploads blob under key, or under the configured key when key is empty.
func (s *Store) Put(ctx context.Context, key string, blob []byte, contentType string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	key = s.objectKey(key)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(blob),
		ContentLength: aws.Int64(int64(len(blob))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload snapshot to %s: %w", key, err)
	}

	s.log.Info(ctx, "snapshot uploaded", "key", key, "bytes", len(blob))
	return nil
}

// Get downloads the object under key. A missing object is ErrorNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	key = s.objectKey(key)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: snapshot object %s", common.ErrorNotFound, key)
		}
		return nil, fmt.Errorf("failed to download snapshot %s: %w", key, err)
	}
	defer out.Body.Close()

	blob, err := io.ReadAll(io.LimitReader(out.Body, maxObjectSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", key, err)
	}
	if len(blob) > maxObjectSize {
		return nil, fmt.Errorf("%w: snapshot object %s exceeds %d bytes", common.ErrorValidation, key, maxObjectSize)
	}

	s.log.Debug(ctx, "snapshot downloaded", "key", key, "bytes", len(blob))
	return blob, nil
}

// PresignGet returns a link that downloads the object under key without
// credentials until ttl elapses. A non-positive ttl means DefaultLinkTTL.
func (s *Store) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if s.signer == nil {
		return "", errors.New("presigning is not available for this store")
	}
	if ttl <= 0 {
		ttl = DefaultLinkTTL
	}

	key = s.objectKey(key)
	req, err := s.signer.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return req.URL, nil
}
