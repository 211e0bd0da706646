// Package minio stores blobs in an S3-compatible bucket. References are
// generated object keys.
package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/fancystore/storeadmin/internal/blob"
)

// Config holds the S3 endpoint and bucket settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	BaseURL   string
}

// Store is an S3-backed blob backend.
type Store struct {
	client  *minio.Client
	bucket  string
	region  string
	baseURL string
}

// New builds a client. No request is sent until Init or the first call.
func New(cfg Config) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &Store{
		client:  client,
		bucket:  cfg.Bucket,
		region:  cfg.Region,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

func (s *Store) Name() string { return "minio" }

// Init creates the bucket when it does not exist yet.
func (s *Store) Init(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *Store) Put(ctx context.Context, obj *blob.Object, _ string) (string, error) {
	key := uuid.NewString()
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(obj.Data), int64(len(obj.Data)),
		minio.PutObjectOptions{ContentType: obj.ContentType})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return key, nil
}

func (s *Store) Get(ctx context.Context, ref string) (*blob.Object, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, ref, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapError(err)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return nil, mapError(err)
	}
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, mapError(err)
	}
	return &blob.Object{Data: data, ContentType: info.ContentType}, nil
}

func (s *Store) Remove(ctx context.Context, ref string) error {
	if _, err := s.client.StatObject(ctx, s.bucket, ref, minio.StatObjectOptions{}); err != nil {
		return mapError(err)
	}
	return s.client.RemoveObject(ctx, s.bucket, ref, minio.RemoveObjectOptions{})
}

func (s *Store) URL(ref string) string {
	return s.baseURL + "/api/images/" + url.PathEscape(ref)
}

func (s *Store) Ping(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", s.bucket)
	}
	return nil
}

func mapError(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchObject":
		return blob.ErrNotFound
	}
	return err
}
