package services

import (
	"context"
	"io"
	"testing"

	"geniustrading/logger"
	"geniustrading/models"
	"geniustrading/storage"
	"geniustrading/utils"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	logger.SetOutput(io.Discard, zerolog.Disabled)
}

func newAuth(store storage.Storage) *Auth {
	return NewAuth(store, bcrypt.MinCost)
}

func registerUser(t *testing.T, store storage.Storage, username string) *models.User {
	t.Helper()
	u, err := newAuth(store).Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	return u
}

func balanceOf(t *testing.T, store storage.Storage, id uint) int64 {
	t.Helper()
	u, err := store.GetUser(context.Background(), id)
	require.NoError(t, err)
	return u.Balance
}

func assertKind(t *testing.T, err error, kind error) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, kind)
	var appErr *utils.AppError
	assert.ErrorAs(t, err, &appErr)
}
