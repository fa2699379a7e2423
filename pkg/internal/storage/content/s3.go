package content

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yeisme/filevault/pkg/configs"
	nlog "github.com/yeisme/filevault/pkg/log"
)

// S3 基于 MinIO 客户端的对象存储，Root 作为对象前缀.
type S3 struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewS3 初始化 MinIO 客户端，若 bucket 不存在则创建.
func NewS3(ctx context.Context, cfg configs.ContentConfig) (*S3, error) {
	s3cfg := cfg.S3
	endpoint := s3cfg.Endpoint

	// 允许传入带 scheme 的 endpoint
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			s3cfg.UseSSL = true
		}
	}

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(s3cfg.AccessKeyID, s3cfg.SecretAccessKey, ""),
		Secure: s3cfg.UseSSL,
		Region: s3cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	cli.SetAppInfo(configs.AppName, configs.AppVersion)

	exists, err := cli.BucketExists(ctx, s3cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", s3cfg.BucketName, err)
	}

	if !exists {
		if err := cli.MakeBucket(ctx, s3cfg.BucketName, minio.MakeBucketOptions{Region: s3cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", s3cfg.BucketName, err)
		}

		nlog.Logger().Info().Str("bucket", s3cfg.BucketName).Msg("bucket created")
	}

	nlog.Logger().Info().Str("endpoint", s3cfg.GetEndpointURL()).Str("bucket", s3cfg.BucketName).Msg("s3 connected")

	return &S3{
		client: cli,
		bucket: s3cfg.BucketName,
		prefix: strings.Trim(cfg.Root, "/"),
	}, nil
}

func (s *S3) NewKey() string {
	return path.Join(s.prefix, uuid.NewString())
}

// Put 单次 PutObject，对象在上传完成前不可见.
func (s *S3) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}

	return nil
}

func (s *S3) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.mapErr(key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.mapErr(key, err)
	}

	return data, nil
}

func (s *S3) mapErr(key string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	return fmt.Errorf("get object %s: %w", key, err)
}

func (s *S3) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)

	return err
}

func (s *S3) Backend() string {
	return "s3"
}
