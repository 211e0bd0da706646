// Package gridfs stores blobs in a MongoDB GridFS bucket. References are the
// hex form of the GridFS file id.
package gridfs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/fancystore/storeadmin/internal/blob"
)

const metadataContentType = "contentType"

// Config selects the database and bucket.
type Config struct {
	URI      string
	Database string
	Bucket   string
	BaseURL  string
}

// Store is a GridFS-backed blob backend.
type Store struct {
	client  *mongo.Client
	bucket  *gridfs.Bucket
	baseURL string
}

// Connect creates a client for cfg.URI. The driver connects lazily, so this
// does not fail when the server is down.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	return client, nil
}

// New opens the bucket on client.
func New(client *mongo.Client, cfg Config) (*Store, error) {
	db := client.Database(cfg.Database)
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(cfg.Bucket))
	if err != nil {
		return nil, fmt.Errorf("open gridfs bucket %s: %w", cfg.Bucket, err)
	}
	return &Store{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

func (s *Store) Name() string { return "gridfs" }

// Init waits for a reachable primary.
func (s *Store) Init(ctx context.Context) error {
	return s.Ping(ctx)
}

func (s *Store) Put(_ context.Context, obj *blob.Object, filename string) (string, error) {
	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: metadataContentType, Value: obj.ContentType}})
	id, err := s.bucket.UploadFromStream(filename, bytes.NewReader(obj.Data), opts)
	if err != nil {
		return "", fmt.Errorf("gridfs upload: %w", err)
	}
	return id.Hex(), nil
}

func (s *Store) Get(_ context.Context, ref string) (*blob.Object, error) {
	id, err := primitive.ObjectIDFromHex(ref)
	if err != nil {
		return nil, blob.ErrNotFound
	}

	stream, err := s.bucket.OpenDownloadStream(id)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, blob.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("gridfs open %s: %w", ref, err)
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("gridfs read %s: %w", ref, err)
	}

	return &blob.Object{Data: data, ContentType: contentType(stream.GetFile())}, nil
}

func (s *Store) Remove(ctx context.Context, ref string) error {
	id, err := primitive.ObjectIDFromHex(ref)
	if err != nil {
		return blob.ErrNotFound
	}
	err = s.bucket.DeleteContext(ctx, id)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return blob.ErrNotFound
	}
	return err
}

func (s *Store) URL(ref string) string {
	return s.baseURL + "/api/images/" + url.PathEscape(ref)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func contentType(f *gridfs.File) string {
	if f == nil || len(f.Metadata) == 0 {
		return "application/octet-stream"
	}
	if ct, ok := f.Metadata.Lookup(metadataContentType).StringValueOK(); ok && ct != "" {
		return ct
	}
	return "application/octet-stream"
}
