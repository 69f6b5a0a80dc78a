// Package s3 publishes rendered diagrams to an S3 compatible bucket.
package s3

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter is the part of *s3.Client the publisher needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Params configures the S3 client.
//
// Endpoint overrides the S3 endpoint for S3 compatible storage such as MinIO.
// Empty AccessKey and SecretKey fall back to the default credential chain.
type Params struct {
	Bucket    string
	Prefix    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// Publisher implements ports.Publisher by uploading every file of the image
// directory under Prefix.
type Publisher struct {
	client ObjectPutter
	bucket string
	prefix string
	logger *slog.Logger
}

// Option configures the publisher.
type Option func(*Publisher)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewWithClient creates a publisher on an existing client.
func NewWithClient(client ObjectPutter, bucket, prefix string, opts ...Option) *Publisher {
	p := &Publisher{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// New builds an S3 client from params and wraps it.
func New(ctx context.Context, params Params, opts ...Option) (*Publisher, error) {
	loadOpts := []func(*config.LoadOptions) error{}
	if params.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(params.Region))
	}
	if params.Endpoint != "" {
		loadOpts = append(loadOpts, config.WithBaseEndpoint(params.Endpoint))
	}
	if params.AccessKey != "" && params.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(params.AccessKey, params.SecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = params.Endpoint != ""
	})
	return NewWithClient(client, params.Bucket, params.Prefix, opts...), nil
}

// Key returns the object key of a file name.
func (p *Publisher) Key(name string) string {
	if p.prefix == "" {
		return name
	}
	return path.Join(p.prefix, name)
}

// Publish uploads the regular files directly inside dir.
func (p *Publisher) Publish(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", dir, err)
	}

	uploaded := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if err := p.put(ctx, filepath.Join(dir, entry.Name()), entry.Name()); err != nil {
			return err
		}
		uploaded++
	}
	p.logger.Info("published images", "bucket", p.bucket, "prefix", p.prefix, "count", uploaded)
	return nil
}

func (p *Publisher) put(ctx context.Context, file, name string) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", file, err)
	}
	defer f.Close()

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(p.Key(name)),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to S3: %w", name, err)
	}
	return nil
}
