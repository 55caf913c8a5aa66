package storage_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/green-tasty/preorder-gateway/internal/models"
	"github.com/green-tasty/preorder-gateway/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (storage.Storage, redismock.ClientMock) {
	t.Helper()

	client, mock := redismock.NewClientMock()

	return storage.NewRedisStorage(client), mock
}

func sampleCart() []models.CartItem {
	return []models.CartItem{
		{
			ReservationID: "res-1",
			State:         models.StateUnsubmitted,
			DishItems: []models.DishLine{
				{DishID: "dish-1", DishName: "Green Salad", DishQuantity: 2},
			},
		},
	}
}

func TestRedisGet(t *testing.T) {
	ctx := t.Context()
	items := sampleCart()
	jsonData, err := json.Marshal(items)
	require.NoError(t, err)

	t.Run("Success - Key Found", func(t *testing.T) {
		// Arrange
		store, mock := setup(t)

		var result []models.CartItem

		mock.ExpectGet(storage.PersistRootKey).SetVal(string(jsonData))

		// Act
		found, err := store.Get(ctx, storage.PersistRootKey, &result)

		// Assert
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, items, result)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success - Key Missing", func(t *testing.T) {
		// Arrange
		store, mock := setup(t)

		var result []models.CartItem

		mock.ExpectGet(storage.PersistRootKey).SetErr(redis.Nil)

		// Act
		found, err := store.Get(ctx, storage.PersistRootKey, &result)

		// Assert
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, result)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Redis Error", func(t *testing.T) {
		// Arrange
		store, mock := setup(t)

		var result []models.CartItem

		expectedErr := errors.New("redis connection error")
		mock.ExpectGet(storage.PersistRootKey).SetErr(expectedErr)

		// Act
		found, err := store.Get(ctx, storage.PersistRootKey, &result)

		// Assert
		require.Error(t, err)
		assert.False(t, found)
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRedisSet(t *testing.T) {
	ctx := t.Context()
	items := sampleCart()
	jsonData, err := json.Marshal(items)
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		// Arrange
		store, mock := setup(t)
		mock.ExpectSet(storage.PersistRootKey, jsonData, 0).SetVal("OK")

		// Act
		err := store.Set(ctx, storage.PersistRootKey, items)

		// Assert
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Redis Error", func(t *testing.T) {
		// Arrange
		store, mock := setup(t)

		expectedErr := errors.New("write refused")
		mock.ExpectSet(storage.PersistRootKey, jsonData, 0).SetErr(expectedErr)

		// Act
		err := store.Set(ctx, storage.PersistRootKey, items)

		// Assert
		require.Error(t, err)
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRedisDelete(t *testing.T) {
	ctx := t.Context()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		store, mock := setup(t)
		mock.ExpectDel(storage.AuthTokenKey).SetVal(1)

		// Act
		err := store.Delete(ctx, storage.AuthTokenKey)

		// Assert
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
