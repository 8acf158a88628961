package service

import (
	"time"

	"shareit/internal/models"
)

// View types composed for the HTTP surface. Field names follow the wire
// format consumed by existing clients.

type BookerRef struct {
	ID int64 `json:"id"`
}

type ItemRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// BookingRef is the short booking summary embedded in item history views.
type BookingRef struct {
	ID       int64     `json:"id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	ItemID   int64     `json:"itemId"`
	BookerID int64     `json:"bookerId"`
}

// BookingView is the response to booking creation: the item is summarized.
type BookingView struct {
	ID     int64     `json:"id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Status string    `json:"status"`
	Booker BookerRef `json:"booker"`
	Item   ItemRef   `json:"item"`
}

// BookingDetail carries the full item record, used by booking reads and lists.
type BookingDetail struct {
	ID     int64        `json:"id"`
	Start  time.Time    `json:"start"`
	End    time.Time    `json:"end"`
	Status string       `json:"status"`
	Booker BookerRef    `json:"booker"`
	Item   *models.Item `json:"item"`
}

type CommentView struct {
	ID         int64        `json:"id"`
	Text       string       `json:"text"`
	Item       *models.Item `json:"item"`
	AuthorName string       `json:"authorName"`
	Author     *models.User `json:"author"`
	Created    string       `json:"created"`
}

// ItemHistory is an item enriched with its booking history, owner-only fields
// nulled out for other callers.
type ItemHistory struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Available   bool          `json:"available"`
	LastBooking *BookingRef   `json:"lastBooking"`
	NextBooking *BookingRef   `json:"nextBooking"`
	Comments    []CommentView `json:"comments"`
}

type RequestView struct {
	ID          int64          `json:"id"`
	Description string         `json:"description"`
	Requestor   int64          `json:"requestor"`
	Created     time.Time      `json:"created"`
	Items       []*models.Item `json:"items,omitempty"`
}

const commentDateLayout = "2006-01-02"

func toBookingRef(b *models.Booking) *BookingRef {
	if b == nil {
		return nil
	}
	return &BookingRef{ID: b.ID, Start: b.Start, End: b.End, ItemID: b.ItemID, BookerID: b.BookerID}
}
