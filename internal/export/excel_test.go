package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"shareit/internal/models"
	"shareit/internal/service"
)

func TestWriteOwnerBookings(t *testing.T) {
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	bookings := []*service.BookingDetail{
		{
			ID:     1,
			Start:  now,
			End:    now.Add(24 * time.Hour),
			Status: models.StatusApproved,
			Booker: service.BookerRef{ID: 2},
			Item:   &models.Item{ID: 1, Name: "Drill"},
		},
		{
			ID:     2,
			Start:  now.Add(48 * time.Hour),
			End:    now.Add(72 * time.Hour),
			Status: models.StatusWaiting,
			Booker: service.BookerRef{ID: 3},
			Item:   nil, // item deleted after booking
		},
	}

	var buf bytes.Buffer
	err := WriteOwnerBookings(&buf, bookings)
	require.NoError(t, err)
	require.NotZero(t, buf.Len())

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"ID", "Item", "Booker", "Start", "End", "Status"}, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "Drill", rows[1][1])
	assert.Equal(t, "01.08.2026 10:00", rows[1][3])
	assert.Equal(t, models.StatusApproved, rows[1][5])
}

func TestWriteOwnerBookings_Empty(t *testing.T) {
	var buf bytes.Buffer
	err := WriteOwnerBookings(&buf, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
