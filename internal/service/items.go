package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"shareit/internal/database"
	"shareit/internal/models"
)

type ItemStore interface {
	CreateItem(ctx context.Context, item *models.Item) error
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	ListItemsByOwner(ctx context.Context, ownerID int64) ([]*models.Item, error)
	ListItemsByRequest(ctx context.Context, requestID int64) ([]*models.Item, error)
	SearchItems(ctx context.Context, text string) ([]*models.Item, error)
}

type CommentStore interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetLatestCommentByItem(ctx context.Context, itemID int64) (*models.Comment, error)
}

// NewItem is the item creation payload. Description and Available are
// pointers so that missing fields can be told apart from zero values.
type NewItem struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
	RequestID   *int64  `json:"request"`
}

// ItemPatch carries a partial update; nil fields keep the stored value.
type ItemPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

type ItemService struct {
	items    ItemStore
	comments CommentStore
	bookings BookingStore
	users    UserStore
	log      zerolog.Logger
}

func NewItemService(items ItemStore, comments CommentStore, bookings BookingStore, users UserStore, logger *zerolog.Logger) *ItemService {
	return &ItemService{
		items:    items,
		comments: comments,
		bookings: bookings,
		users:    users,
		log:      logger.With().Str("component", "item-service").Logger(),
	}
}

func (s *ItemService) Create(ctx context.Context, ownerID int64, in NewItem) (*models.Item, error) {
	if err := s.requireUser(ctx, ownerID); err != nil {
		return nil, err
	}
	if in.Available == nil {
		return nil, validationf("availability status is missing")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, validationf("item name is missing")
	}
	if in.Description == nil {
		return nil, validationf("item description is missing")
	}
	// Historical quirk kept for wire compatibility: an item posted as
	// unavailable is rejected through the not-found channel.
	if !*in.Available {
		return nil, notFoundf("item is busy")
	}

	item := &models.Item{
		Name:        in.Name,
		Description: *in.Description,
		Available:   *in.Available,
		OwnerID:     ownerID,
		RequestID:   in.RequestID,
	}
	if err := s.items.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	s.log.Info().Int64("item_id", item.ID).Int64("owner_id", ownerID).Msg("item created")
	return item, nil
}

func (s *ItemService) Update(ctx context.Context, userID, itemID int64, patch ItemPatch) (*models.Item, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	item, err := s.items.GetItemByID(ctx, itemID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundf("item with id %d does not exist", itemID)
	}
	if err != nil {
		return nil, err
	}

	// A non-owner is blocked only when the item is also unavailable.
	if item.OwnerID != userID && !item.Available {
		return nil, notFoundf("cannot edit another user's item")
	}

	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Available != nil && *patch.Available != item.Available {
		item.Available = *patch.Available
	}

	if err := s.items.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ItemService) GetByID(ctx context.Context, itemID int64) (*models.Item, error) {
	item, err := s.items.GetItemByID(ctx, itemID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundf("item with id %d does not exist", itemID)
	}
	return item, err
}

// GetWithHistory returns the item with its most recent comment and, for the
// owner only, the last and next approved bookings.
func (s *ItemService) GetWithHistory(ctx context.Context, userID, itemID int64) (*ItemHistory, error) {
	item, err := s.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, userID, item)
}

// ListForOwner returns every item owned by userID, enriched as in
// GetWithHistory and sorted by item id ascending.
func (s *ItemService) ListForOwner(ctx context.Context, userID int64) ([]*ItemHistory, error) {
	items, err := s.items.ListItemsByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]*ItemHistory, 0, len(items))
	for _, item := range items {
		view, err := s.enrich(ctx, userID, item)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// Search matches available items by case-insensitive substring of name or
// description. Blank text returns an empty result, never the full catalog.
func (s *ItemService) Search(ctx context.Context, text string) ([]*models.Item, error) {
	if text == "" {
		return []*models.Item{}, nil
	}
	items, err := s.items.SearchItems(ctx, text)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Item{}
	}
	return items, nil
}

// PostComment records a comment by userID on the item. The item must have at
// least one booking that ended in the past; the check is keyed on the item
// alone, so any registered user may comment once someone has rented it.
func (s *ItemService) PostComment(ctx context.Context, userID, itemID int64, text string) (*CommentView, error) {
	if text == "" {
		return nil, validationf("comment text must not be empty")
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	finished, err := s.bookings.HasFinishedBooking(ctx, itemID, time.Now())
	if err != nil {
		return nil, err
	}
	if !finished {
		return nil, validationf("you cannot post a comment on this item")
	}

	item, err := s.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	author, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Text:     text,
		ItemID:   itemID,
		AuthorID: userID,
		Created:  time.Now(),
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	return &CommentView{
		ID:         comment.ID,
		Text:       comment.Text,
		Item:       item,
		AuthorName: author.Name,
		Author:     author,
		Created:    comment.Created.Format(commentDateLayout),
	}, nil
}

func (s *ItemService) enrich(ctx context.Context, userID int64, item *models.Item) (*ItemHistory, error) {
	view := &ItemHistory{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Available:   item.Available,
		Comments:    []CommentView{},
	}

	comment, err := s.comments.GetLatestCommentByItem(ctx, item.ID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}
	if comment != nil {
		author, err := s.users.GetUserByID(ctx, comment.AuthorID)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
		cv := CommentView{
			ID:      comment.ID,
			Text:    comment.Text,
			Item:    item,
			Created: comment.Created.Format(commentDateLayout),
		}
		if author != nil {
			cv.AuthorName = author.Name
			cv.Author = author
		}
		view.Comments = append(view.Comments, cv)
	}

	// Booking history is visible to the owner only.
	if item.OwnerID != userID {
		return view, nil
	}

	now := time.Now()
	last, err := s.bookings.GetLastBooking(ctx, item.ID, now)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}
	next, err := s.bookings.GetNextBooking(ctx, item.ID, now)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}
	view.LastBooking = toBookingRef(last)
	view.NextBooking = toBookingRef(next)
	return view, nil
}

func (s *ItemService) requireUser(ctx context.Context, userID int64) error {
	_, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return notFoundf("user with id %d does not exist", userID)
	}
	return err
}
