package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"shareit/internal/database"
	"shareit/internal/models"
)

type testEnv struct {
	db       *database.DB
	users    *UserService
	items    *ItemService
	bookings *BookingService
	requests *RequestService
}

func newTestEnv(t *testing.T) *testEnv {
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &testEnv{
		db:       db,
		users:    NewUserService(db, &logger),
		items:    NewItemService(db, db, db, db, &logger),
		bookings: NewBookingService(db, db, db, &logger),
		requests: NewRequestService(db, db, db, &logger),
	}
}

func (e *testEnv) mustUser(t *testing.T, name, email string) *models.User {
	user, err := e.users.Create(context.Background(), name, email)
	require.NoError(t, err)
	return user
}

func (e *testEnv) mustItem(t *testing.T, ownerID int64, name, description string) *models.Item {
	available := true
	item, err := e.items.Create(context.Background(), ownerID, NewItem{
		Name:        name,
		Description: &description,
		Available:   &available,
	})
	require.NoError(t, err)
	return item
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }
