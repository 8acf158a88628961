package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shareit/internal/models"
)

func TestBookingCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.mustUser(t, "Owner", "owner@example.com")
	booker := env.mustUser(t, "Booker", "booker@example.com")
	item := env.mustItem(t, owner.ID, "Drill", "700W")

	start := time.Now().Add(24 * time.Hour)
	end := start.Add(24 * time.Hour)

	t.Run("OK", func(t *testing.T) {
		view, err := env.bookings.Create(ctx, booker.ID, NewBooking{
			ItemID: item.ID, Start: start, End: end,
		})
		require.NoError(t, err)
		assert.Equal(t, models.StatusWaiting, view.Status)
		assert.Equal(t, booker.ID, view.Booker.ID)
		assert.Equal(t, item.Name, view.Item.Name)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		_, err := env.bookings.Create(ctx, 999, NewBooking{ItemID: item.ID, Start: start, End: end})
		var nfErr *NotFoundError
		assert.ErrorAs(t, err, &nfErr)
	})

	t.Run("UnknownItem", func(t *testing.T) {
		_, err := env.bookings.Create(ctx, booker.ID, NewBooking{ItemID: 999, Start: start, End: end})
		var nfErr *NotFoundError
		assert.ErrorAs(t, err, &nfErr)
	})

	t.Run("OwnerBooksOwnItem", func(t *testing.T) {
		_, err := env.bookings.Create(ctx, owner.ID, NewBooking{ItemID: item.ID, Start: start, End: end})
		var nfErr *NotFoundError
		require.ErrorAs(t, err, &nfErr)
		assert.Equal(t, "owner cannot book own item", nfErr.Message)
	})

	t.Run("StartInPast", func(t *testing.T) {
		_, err := env.bookings.Create(ctx, booker.ID, NewBooking{
			ItemID: item.ID, Start: time.Now().Add(-time.Hour), End: end,
		})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "incorrect booking date", vErr.Message)
	})

	t.Run("EndBeforeStart", func(t *testing.T) {
		_, err := env.bookings.Create(ctx, booker.ID, NewBooking{
			ItemID: item.ID, Start: end, End: start,
		})
		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("UnavailableItem", func(t *testing.T) {
		_, err := env.items.Update(ctx, owner.ID, item.ID, ItemPatch{Available: boolPtr(false)})
		require.NoError(t, err)

		_, err = env.bookings.Create(ctx, booker.ID, NewBooking{ItemID: item.ID, Start: start, End: end})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "item is booked by another user", vErr.Message)
	})
}

func TestBookingApproval(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.mustUser(t, "Owner", "owner@example.com")
	booker := env.mustUser(t, "Booker", "booker@example.com")
	item := env.mustItem(t, owner.ID, "Drill", "700W")

	start := time.Now().Add(24 * time.Hour)
	view, err := env.bookings.Create(ctx, booker.ID, NewBooking{
		ItemID: item.ID, Start: start, End: start.Add(time.Hour),
	})
	require.NoError(t, err)

	t.Run("NonOwner", func(t *testing.T) {
		_, err := env.bookings.SetApproval(ctx, booker.ID, view.ID, "true")
		var nfErr *NotFoundError
		require.ErrorAs(t, err, &nfErr)
		assert.Equal(t, "only the owner may change the booking status", nfErr.Message)
	})

	t.Run("MissingBooking", func(t *testing.T) {
		_, err := env.bookings.SetApproval(ctx, owner.ID, 999, "true")
		var nfErr *NotFoundError
		assert.ErrorAs(t, err, &nfErr)
	})

	t.Run("Approve", func(t *testing.T) {
		detail, err := env.bookings.SetApproval(ctx, owner.ID, view.ID, "true")
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, detail.Status)
	})

	t.Run("SameStatusTwice", func(t *testing.T) {
		_, err := env.bookings.SetApproval(ctx, owner.ID, view.ID, "true")
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "cannot change status to identical", vErr.Message)
	})

	t.Run("Reject", func(t *testing.T) {
		detail, err := env.bookings.SetApproval(ctx, owner.ID, view.ID, "false")
		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, detail.Status)
	})
}

func TestBookingGetByID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.mustUser(t, "Owner", "owner@example.com")
	booker := env.mustUser(t, "Booker", "booker@example.com")
	stranger := env.mustUser(t, "Stranger", "stranger@example.com")
	item := env.mustItem(t, owner.ID, "Drill", "700W")

	start := time.Now().Add(24 * time.Hour)
	view, err := env.bookings.Create(ctx, booker.ID, NewBooking{
		ItemID: item.ID, Start: start, End: start.Add(time.Hour),
	})
	require.NoError(t, err)

	for _, userID := range []int64{owner.ID, booker.ID} {
		detail, err := env.bookings.GetByID(ctx, userID, view.ID)
		require.NoError(t, err)
		assert.Equal(t, view.ID, detail.ID)
		require.NotNil(t, detail.Item)
		assert.Equal(t, item.ID, detail.Item.ID)
	}

	_, err = env.bookings.GetByID(ctx, stranger.ID, view.ID)
	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "cannot view another person's booking", nfErr.Message)
}

func TestBookingLists(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.mustUser(t, "Owner", "owner@example.com")
	booker := env.mustUser(t, "Booker", "booker@example.com")
	item := env.mustItem(t, owner.ID, "Drill", "700W")

	now := time.Now()
	seed := func(start, end time.Time, status string) {
		require.NoError(t, env.db.CreateBooking(ctx, &models.Booking{
			Start: start, End: end, ItemID: item.ID, BookerID: booker.ID, Status: status,
		}))
	}
	seed(now.Add(-48*time.Hour), now.Add(-24*time.Hour), models.StatusApproved) // past
	seed(now.Add(-time.Hour), now.Add(time.Hour), models.StatusApproved)        // current
	seed(now.Add(-time.Hour), now.Add(2*time.Hour), models.StatusWaiting)       // current but waiting
	seed(now.Add(24*time.Hour), now.Add(48*time.Hour), models.StatusRejected)   // future rejected

	cases := []struct {
		state string
		want  int
	}{
		{"", 4},
		{"ALL", 4},
		{"PAST", 1},
		{"FUTURE", 1},
		{"REJECTED", 1},
		{"WAITING", 1},
	}
	for _, tc := range cases {
		got, err := env.bookings.ListForBooker(ctx, booker.ID, tc.state, nil, nil)
		require.NoError(t, err, "state %q", tc.state)
		assert.Len(t, got, tc.want, "state %q", tc.state)
	}

	t.Run("CurrentForBooker", func(t *testing.T) {
		got, err := env.bookings.ListForBooker(ctx, booker.ID, "CURRENT", nil, nil)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("CurrentForOwnerRequiresApproved", func(t *testing.T) {
		got, err := env.bookings.ListForOwner(ctx, owner.ID, "CURRENT", nil, nil)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("NewestStartFirst", func(t *testing.T) {
		got, err := env.bookings.ListForBooker(ctx, booker.ID, "ALL", nil, nil)
		require.NoError(t, err)
		for i := 1; i < len(got); i++ {
			assert.False(t, got[i-1].Start.Before(got[i].Start))
		}
	})

	t.Run("PageWindow", func(t *testing.T) {
		got, err := env.bookings.ListForBooker(ctx, booker.ID, "ALL", intPtr(0), intPtr(2))
		require.NoError(t, err)
		assert.Len(t, got, 2)

		// from=3,size=2 lands on page 1
		got, err = env.bookings.ListForBooker(ctx, booker.ID, "ALL", intPtr(3), intPtr(2))
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("BadPaging", func(t *testing.T) {
		_, err := env.bookings.ListForBooker(ctx, booker.ID, "ALL", intPtr(-1), intPtr(2))
		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)

		_, err = env.bookings.ListForBooker(ctx, booker.ID, "ALL", intPtr(0), intPtr(0))
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("UnknownState", func(t *testing.T) {
		_, err := env.bookings.ListForBooker(ctx, booker.ID, "SOMEDAY", nil, nil)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "Unknown state: SOMEDAY", vErr.Message)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		_, err := env.bookings.ListForBooker(ctx, 999, "ALL", nil, nil)
		var nfErr *NotFoundError
		assert.ErrorAs(t, err, &nfErr)
	})
}
