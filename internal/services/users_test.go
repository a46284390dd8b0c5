package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchUsers(t *testing.T) {
	database := newTestDB(t)
	users := NewUsers(database)
	ctx := context.Background()

	createUser(t, database, "Alice Anders", "alice@example.com")
	createUser(t, database, "Bob", "bob@alpha.io")
	createUser(t, database, "Carol", "carol_x@example.com")

	found, err := users.Search(ctx, "AL")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = users.Search(ctx, "example")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	// Wildcards are matched literally.
	found, err = users.Search(ctx, "l_x")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Carol", found[0].Name)

	found, err = users.Search(ctx, "%%")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestSearchUsersShortQuery(t *testing.T) {
	database := newTestDB(t)
	createUser(t, database, "Alice", "alice@example.com")

	found, err := NewUsers(database).Search(context.Background(), " a ")
	require.NoError(t, err)
	assert.NotNil(t, found)
	assert.Empty(t, found)
}

func TestSearchUsersShortQueryDoesNotTouchStore(t *testing.T) {
	database := newTestDB(t)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	found, err := NewUsers(database).Search(context.Background(), "a")
	require.NoError(t, err)
	assert.Empty(t, found)

	_, err = NewUsers(database).Search(context.Background(), "ab")
	assert.Error(t, err)
}

func TestSearchUsersLimit(t *testing.T) {
	database := newTestDB(t)
	for i := 0; i < 15; i++ {
		createUser(t, database, fmt.Sprintf("User %02d", i), fmt.Sprintf("user%02d@example.com", i))
	}

	found, err := NewUsers(database).Search(context.Background(), "user")
	require.NoError(t, err)
	assert.Len(t, found, 10)
}
