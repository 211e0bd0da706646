package minio

import (
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fancystore/storeadmin/internal/blob"
)

func TestMapError(t *testing.T) {
	notFound := minio.ErrorResponse{Code: "NoSuchKey", Message: "The specified key does not exist."}
	assert.ErrorIs(t, mapError(notFound), blob.ErrNotFound)

	denied := minio.ErrorResponse{Code: "AccessDenied"}
	assert.NotErrorIs(t, mapError(denied), blob.ErrNotFound)

	plain := errors.New("dial tcp: connection refused")
	assert.Equal(t, plain, mapError(plain))
}

func TestNew_BuildsURLs(t *testing.T) {
	s, err := New(Config{
		Endpoint:  "localhost:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    "images",
		BaseURL:   "http://localhost:5000/",
	})
	require.NoError(t, err)
	assert.Equal(t, "minio", s.Name())
	assert.Equal(t, "http://localhost:5000/api/images/abc-123", s.URL("abc-123"))
}
