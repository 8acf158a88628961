package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"shareit/internal/database"
	"shareit/internal/models"
)

type BookingStore interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBookingByID(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status string) error
	ListBookingsByBooker(ctx context.Context, bookerID int64, limit, offset int) ([]*models.Booking, error)
	ListBookingsByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]*models.Booking, error)
	GetLastBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	GetNextBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	HasFinishedBooking(ctx context.Context, itemID int64, now time.Time) (bool, error)
}

// NewBooking is the booking creation payload.
type NewBooking struct {
	ItemID int64     `json:"itemId"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

type BookingService struct {
	bookings BookingStore
	items    ItemStore
	users    UserStore
	log      zerolog.Logger
}

func NewBookingService(bookings BookingStore, items ItemStore, users UserStore, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		bookings: bookings,
		items:    items,
		users:    users,
		log:      logger.With().Str("component", "booking-service").Logger(),
	}
}

// Create places a booking in WAITING status. The booker must not own the
// item, the item must be available, and the range must start in the future
// and end after it starts.
func (s *BookingService) Create(ctx context.Context, userID int64, in NewBooking) (*BookingView, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	item, err := s.items.GetItemByID(ctx, in.ItemID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundf("item with id %d does not exist", in.ItemID)
	}
	if err != nil {
		return nil, err
	}

	if item.OwnerID == userID {
		return nil, notFoundf("owner cannot book own item")
	}
	if !item.Available {
		return nil, validationf("item is booked by another user")
	}
	if in.Start.After(in.End) || in.Start.Before(time.Now()) {
		return nil, validationf("incorrect booking date")
	}

	booking := &models.Booking{
		Start:    in.Start,
		End:      in.End,
		ItemID:   in.ItemID,
		BookerID: userID,
		Status:   models.StatusWaiting,
	}
	if err := s.bookings.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}
	s.log.Info().Int64("booking_id", booking.ID).Int64("item_id", item.ID).Msg("booking created")

	return &BookingView{
		ID:     booking.ID,
		Start:  booking.Start,
		End:    booking.End,
		Status: booking.Status,
		Booker: BookerRef{ID: userID},
		Item:   ItemRef{ID: item.ID, Name: item.Name},
	}, nil
}

// SetApproval moves a WAITING booking to APPROVED ("true") or REJECTED
// (anything else). Only the item's owner may do this, and re-applying the
// current status is rejected.
func (s *BookingService) SetApproval(ctx context.Context, userID, bookingID int64, approved string) (*BookingDetail, error) {
	booking, err := s.bookings.GetBookingByID(ctx, bookingID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundf("booking with id %d does not exist", bookingID)
	}
	if err != nil {
		return nil, err
	}

	item, err := s.items.GetItemByID(ctx, booking.ItemID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}
	if item == nil || item.OwnerID != userID {
		return nil, notFoundf("only the owner may change the booking status")
	}

	status := models.StatusRejected
	if approved == "true" {
		status = models.StatusApproved
	}
	if booking.Status == status {
		return nil, validationf("cannot change status to identical")
	}

	if err := s.bookings.UpdateBookingStatus(ctx, bookingID, status); err != nil {
		return nil, err
	}
	booking.Status = status
	s.log.Info().Int64("booking_id", bookingID).Str("status", status).Msg("booking status changed")

	return toBookingDetail(booking, item), nil
}

// GetByID returns the booking; only its booker and the item's owner may see it.
func (s *BookingService) GetByID(ctx context.Context, userID, bookingID int64) (*BookingDetail, error) {
	booking, err := s.bookings.GetBookingByID(ctx, bookingID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundf("booking with id %d does not exist", bookingID)
	}
	if err != nil {
		return nil, err
	}

	item, err := s.items.GetItemByID(ctx, booking.ItemID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}
	ownerID := int64(-1)
	if item != nil {
		ownerID = item.OwnerID
	}
	if userID != ownerID && userID != booking.BookerID {
		return nil, notFoundf("cannot view another person's booking")
	}
	return toBookingDetail(booking, item), nil
}

// ListForBooker returns the user's own bookings, newest start first,
// filtered by state.
func (s *BookingService) ListForBooker(ctx context.Context, userID int64, state string, from, size *int) ([]*BookingDetail, error) {
	return s.list(ctx, userID, state, from, size, false)
}

// ListForOwner returns bookings of the user's items, newest start first,
// filtered by state. The CURRENT filter additionally requires APPROVED.
func (s *BookingService) ListForOwner(ctx context.Context, userID int64, state string, from, size *int) ([]*BookingDetail, error) {
	return s.list(ctx, userID, state, from, size, true)
}

func (s *BookingService) list(ctx context.Context, userID int64, state string, from, size *int, ownerView bool) ([]*BookingDetail, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	limit, offset := -1, 0
	if from != nil && size != nil {
		if *from < 0 || *size <= 0 {
			return nil, validationf("from and size must not be negative")
		}
		// Page-based convention kept for wire compatibility: from is an
		// offset in units of size, not a raw row offset.
		page := *from / *size
		limit = *size
		offset = page * *size
	}

	var (
		bookings []*models.Booking
		err      error
	)
	if ownerView {
		bookings, err = s.bookings.ListBookingsByOwner(ctx, userID, limit, offset)
	} else {
		bookings, err = s.bookings.ListBookingsByBooker(ctx, userID, limit, offset)
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	views := make([]*BookingDetail, 0, len(bookings))
	for _, b := range bookings {
		match, err := matchesState(b, state, now, ownerView)
		if err != nil {
			return nil, err
		}
		if !match {
			continue
		}
		item, err := s.items.GetItemByID(ctx, b.ItemID)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
		views = append(views, toBookingDetail(b, item))
	}
	return views, nil
}

func matchesState(b *models.Booking, state string, now time.Time, ownerView bool) (bool, error) {
	switch state {
	case "", "ALL":
		return true, nil
	case "PAST":
		return b.End.Before(now), nil
	case "FUTURE":
		return b.Start.After(now), nil
	case "CURRENT":
		current := b.Start.Before(now) && b.End.After(now)
		if ownerView {
			current = current && b.Status == models.StatusApproved
		}
		return current, nil
	case "REJECTED":
		return b.Status == models.StatusRejected, nil
	case "WAITING":
		return b.Status == models.StatusWaiting, nil
	default:
		return false, validationf("Unknown state: %s", state)
	}
}

func toBookingDetail(b *models.Booking, item *models.Item) *BookingDetail {
	return &BookingDetail{
		ID:     b.ID,
		Start:  b.Start,
		End:    b.End,
		Status: b.Status,
		Booker: BookerRef{ID: b.BookerID},
		Item:   item,
	}
}

func (s *BookingService) requireUser(ctx context.Context, userID int64) error {
	_, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return notFoundf("user with id %d does not exist", userID)
	}
	return err
}
