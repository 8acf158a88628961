package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shareit/internal/models"
)

func TestItemCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.mustUser(t, "Owner", "owner@example.com")

	t.Run("OK", func(t *testing.T) {
		item, err := env.items.Create(ctx, owner.ID, NewItem{
			Name:        "Drill",
			Description: strPtr("700W"),
			Available:   boolPtr(true),
		})
		require.NoError(t, err)
		assert.NotZero(t, item.ID)
		assert.Equal(t, owner.ID, item.OwnerID)
	})

	t.Run("UnknownOwner", func(t *testing.T) {
		_, err := env.items.Create(ctx, 999, NewItem{
			Name: "Drill", Description: strPtr("700W"), Available: boolPtr(true),
		})
		var nfErr *NotFoundError
		assert.ErrorAs(t, err, &nfErr)
	})

	t.Run("MissingAvailable", func(t *testing.T) {
		_, err := env.items.Create(ctx, owner.ID, NewItem{
			Name: "Drill", Description: strPtr("700W"),
		})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "availability status is missing", vErr.Message)
	})

	t.Run("BlankName", func(t *testing.T) {
		_, err := env.items.Create(ctx, owner.ID, NewItem{
			Name: "  ", Description: strPtr("700W"), Available: boolPtr(true),
		})
		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("MissingDescription", func(t *testing.T) {
		_, err := env.items.Create(ctx, owner.ID, NewItem{
			Name: "Drill", Available: boolPtr(true),
		})
		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("UnavailableAtCreation", func(t *testing.T) {
		_, err := env.items.Create(ctx, owner.ID, NewItem{
			Name: "Drill", Description: strPtr("700W"), Available: boolPtr(false),
		})
		var nfErr *NotFoundError
		require.ErrorAs(t, err, &nfErr)
		assert.Equal(t, "item is busy", nfErr.Message)
	})
}

func TestItemUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.mustUser(t, "Owner", "owner@example.com")
	other := env.mustUser(t, "Other", "other@example.com")
	item := env.mustItem(t, owner.ID, "Drill", "700W")

	t.Run("OwnerPartialUpdate", func(t *testing.T) {
		updated, err := env.items.Update(ctx, owner.ID, item.ID, ItemPatch{
			Description: strPtr("700W, two batteries"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Drill", updated.Name)
		assert.Equal(t, "700W, two batteries", updated.Description)
		assert.True(t, updated.Available)
	})

	t.Run("MissingItem", func(t *testing.T) {
		_, err := env.items.Update(ctx, owner.ID, 999, ItemPatch{Name: strPtr("x")})
		var nfErr *NotFoundError
		assert.ErrorAs(t, err, &nfErr)
	})

	t.Run("NonOwnerOnAvailableItem", func(t *testing.T) {
		// An available item can be edited by anyone.
		_, err := env.items.Update(ctx, other.ID, item.ID, ItemPatch{Name: strPtr("Drill+")})
		assert.NoError(t, err)
	})

	t.Run("NonOwnerOnUnavailableItem", func(t *testing.T) {
		_, err := env.items.Update(ctx, owner.ID, item.ID, ItemPatch{Available: boolPtr(false)})
		require.NoError(t, err)

		_, err = env.items.Update(ctx, other.ID, item.ID, ItemPatch{Name: strPtr("Mine now")})
		var nfErr *NotFoundError
		require.ErrorAs(t, err, &nfErr)
		assert.Equal(t, "cannot edit another user's item", nfErr.Message)
	})
}

func TestItemSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.mustUser(t, "Owner", "owner@example.com")
	env.mustItem(t, owner.ID, "Power Drill", "700W")
	env.mustItem(t, owner.ID, "Tent", "two person")

	t.Run("BlankTextReturnsEmpty", func(t *testing.T) {
		items, err := env.items.Search(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("CaseInsensitive", func(t *testing.T) {
		items, err := env.items.Search(ctx, "dRiLl")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Power Drill", items[0].Name)
	})

	t.Run("NoMatch", func(t *testing.T) {
		items, err := env.items.Search(ctx, "kayak")
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestPostComment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.mustUser(t, "Owner", "owner@example.com")
	booker := env.mustUser(t, "Booker", "booker@example.com")
	item := env.mustItem(t, owner.ID, "Drill", "700W")

	t.Run("EmptyText", func(t *testing.T) {
		_, err := env.items.PostComment(ctx, booker.ID, item.ID, "")
		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("NoFinishedBooking", func(t *testing.T) {
		_, err := env.items.PostComment(ctx, booker.ID, item.ID, "never used it")
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "you cannot post a comment on this item", vErr.Message)
	})

	// A finished booking unlocks commenting for any registered user.
	now := time.Now()
	require.NoError(t, env.db.CreateBooking(ctx, &models.Booking{
		Start: now.Add(-48 * time.Hour), End: now.Add(-24 * time.Hour),
		ItemID: item.ID, BookerID: booker.ID, Status: models.StatusApproved,
	}))

	t.Run("OK", func(t *testing.T) {
		comment, err := env.items.PostComment(ctx, booker.ID, item.ID, "worked great")
		require.NoError(t, err)
		assert.Equal(t, "worked great", comment.Text)
		assert.Equal(t, "Booker", comment.AuthorName)
		assert.Equal(t, time.Now().Format("2006-01-02"), comment.Created)
	})

	t.Run("AnyUserAfterFinishedBooking", func(t *testing.T) {
		_, err := env.items.PostComment(ctx, owner.ID, item.ID, "still mine")
		assert.NoError(t, err)
	})
}

func TestItemHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.mustUser(t, "Owner", "owner@example.com")
	booker := env.mustUser(t, "Booker", "booker@example.com")
	item := env.mustItem(t, owner.ID, "Drill", "700W")

	now := time.Now()
	require.NoError(t, env.db.CreateBooking(ctx, &models.Booking{
		Start: now.Add(-48 * time.Hour), End: now.Add(-24 * time.Hour),
		ItemID: item.ID, BookerID: booker.ID, Status: models.StatusApproved,
	}))
	require.NoError(t, env.db.CreateBooking(ctx, &models.Booking{
		Start: now.Add(24 * time.Hour), End: now.Add(48 * time.Hour),
		ItemID: item.ID, BookerID: booker.ID, Status: models.StatusApproved,
	}))
	require.NoError(t, env.db.CreateComment(ctx, &models.Comment{
		Text: "first", ItemID: item.ID, AuthorID: booker.ID, Created: now.Add(-time.Hour),
	}))
	require.NoError(t, env.db.CreateComment(ctx, &models.Comment{
		Text: "latest", ItemID: item.ID, AuthorID: booker.ID, Created: now,
	}))

	t.Run("OwnerSeesBookings", func(t *testing.T) {
		view, err := env.items.GetWithHistory(ctx, owner.ID, item.ID)
		require.NoError(t, err)
		require.NotNil(t, view.LastBooking)
		require.NotNil(t, view.NextBooking)
		assert.True(t, view.LastBooking.Start.Before(now))
		assert.True(t, view.NextBooking.Start.After(now))
		// Only the most recent comment is attached
		require.Len(t, view.Comments, 1)
		assert.Equal(t, "latest", view.Comments[0].Text)
	})

	t.Run("NonOwnerSeesNoBookings", func(t *testing.T) {
		view, err := env.items.GetWithHistory(ctx, booker.ID, item.ID)
		require.NoError(t, err)
		assert.Nil(t, view.LastBooking)
		assert.Nil(t, view.NextBooking)
		assert.Len(t, view.Comments, 1)
	})

	t.Run("ListForOwner", func(t *testing.T) {
		views, err := env.items.ListForOwner(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.NotNil(t, views[0].LastBooking)
	})
}
