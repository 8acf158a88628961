package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.mustUser(t, "Alice", "alice@example.com")

	t.Run("OK", func(t *testing.T) {
		view, err := env.requests.Create(ctx, user.ID, NewRequest{Description: strPtr("need a kayak")})
		require.NoError(t, err)
		assert.NotZero(t, view.ID)
		assert.Equal(t, user.ID, view.Requestor)
		assert.False(t, view.Created.IsZero())
	})

	t.Run("MissingDescription", func(t *testing.T) {
		_, err := env.requests.Create(ctx, user.ID, NewRequest{})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "request description must not be empty", vErr.Message)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		_, err := env.requests.Create(ctx, 999, NewRequest{Description: strPtr("anything")})
		var nfErr *NotFoundError
		assert.ErrorAs(t, err, &nfErr)
	})
}

func TestRequestLists(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.mustUser(t, "Alice", "alice@example.com")
	bob := env.mustUser(t, "Bob", "bob@example.com")

	aliceReq, err := env.requests.Create(ctx, alice.ID, NewRequest{Description: strPtr("need a kayak")})
	require.NoError(t, err)
	_, err = env.requests.Create(ctx, bob.ID, NewRequest{Description: strPtr("need a tent")})
	require.NoError(t, err)

	// Bob answers Alice's request with an item.
	available := true
	_, err = env.items.Create(ctx, bob.ID, NewItem{
		Name:        "Kayak",
		Description: strPtr("single seat"),
		Available:   &available,
		RequestID:   &aliceReq.ID,
	})
	require.NoError(t, err)

	t.Run("SelfWithItems", func(t *testing.T) {
		views, err := env.requests.ListSelf(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, views, 1)
		require.Len(t, views[0].Items, 1)
		assert.Equal(t, "Kayak", views[0].Items[0].Name)
	})

	t.Run("OthersExcludesOwn", func(t *testing.T) {
		views, err := env.requests.ListOthers(ctx, alice.ID, nil, nil)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, "need a tent", views[0].Description)
	})

	t.Run("OthersBadPaging", func(t *testing.T) {
		_, err := env.requests.ListOthers(ctx, alice.ID, intPtr(0), intPtr(-5))
		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("GetByID", func(t *testing.T) {
		view, err := env.requests.GetByID(ctx, bob.ID, aliceReq.ID)
		require.NoError(t, err)
		assert.Equal(t, "need a kayak", view.Description)
		assert.Len(t, view.Items, 1)
	})

	t.Run("GetByID_Missing", func(t *testing.T) {
		_, err := env.requests.GetByID(ctx, bob.ID, 999)
		var nfErr *NotFoundError
		require.ErrorAs(t, err, &nfErr)
		assert.Equal(t, "request with id 999 does not exist", nfErr.Message)
	})
}
