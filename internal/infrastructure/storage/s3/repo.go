// Package s3 exports every published view as <prefix>/<view>.json to an
// S3-compatible bucket, overwriting the previous object.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"tokendict/internal/application/port"
	"tokendict/internal/domain"
	"tokendict/internal/infrastructure/storage"
)

// Config S3 连接参数；Endpoint 为空时使用 AWS 默认地址
type Config struct {
	Endpoint       string
	Region         string
	Bucket         string
	Prefix         string
	AccessKey      string
	SecretKey      string
	UseSSL         bool
	ForcePathStyle bool
}

// ObjectPutter s3.Client 中用到的部分
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Repo struct {
	client ObjectPutter
	bucket string
	prefix string
}

func New(ctx context.Context, cfg Config) (*Repo, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3: bucket name is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("s3: region is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(normaliseEndpoint(cfg.Endpoint, cfg.UseSSL))
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})
	return NewWithClient(client, cfg.Bucket, cfg.Prefix), nil
}

// NewWithClient 使用已有客户端（测试中注入）
func NewWithClient(client ObjectPutter, bucket, prefix string) *Repo {
	return &Repo{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// ObjectKey <prefix>/<name>.json
func (r *Repo) ObjectKey(name string) string {
	return path.Join(r.prefix, name+".json")
}

func (r *Repo) put(ctx context.Context, name string, payload []byte) error {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(r.ObjectKey(name)),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3: put %s: %w", name, err)
	}
	return nil
}

func (r *Repo) PublishDirectory(ctx context.Context, dir *domain.Directory) error {
	views, err := storage.EncodeViews(dir)
	if err != nil {
		return err
	}
	for _, v := range views {
		if err := r.put(ctx, v.Name, v.Payload); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) PublishDexBlob(ctx context.Context, items []domain.DexBlobItem) error {
	b, err := storage.EncodeDexBlob(items)
	if err != nil {
		return err
	}
	return r.put(ctx, domain.DexBlobKey, b)
}

func (r *Repo) Close() error { return nil }

// normaliseEndpoint 未带 scheme 时按 UseSSL 补全
func normaliseEndpoint(endpoint string, useSSL bool) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

var _ port.Publisher = (*Repo)(nil)
