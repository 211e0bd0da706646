package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fancystore/storeadmin/internal/domain"
)

func TestListUsers(t *testing.T) {
	repo := new(mockUserRepository)
	svc := NewUserService(repo, newTestLogger())
	ctx := context.Background()

	want := []domain.User{
		{ID: "u1", Name: "Ada", Email: "ada@example.com", OrderCount: 2},
		{ID: "u2", Name: "Grace", Email: "grace@example.com"},
	}
	repo.On("List", ctx).Return(want, nil)

	got, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	repo.AssertExpectations(t)
}

func TestListUsers_RepositoryError(t *testing.T) {
	repo := new(mockUserRepository)
	svc := NewUserService(repo, newTestLogger())
	ctx := context.Background()

	repo.On("List", ctx).Return([]domain.User(nil), errors.New("connection refused"))

	_, err := svc.ListUsers(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list users")
}
