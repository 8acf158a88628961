package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"shareit/internal/database"
	"shareit/internal/models"
)

type RequestStore interface {
	CreateRequest(ctx context.Context, request *models.ItemRequest) error
	GetRequestByID(ctx context.Context, id int64) (*models.ItemRequest, error)
	ListRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error)
	ListRequestsExcluding(ctx context.Context, userID int64, limit, offset int) ([]*models.ItemRequest, error)
}

// NewRequest is the request creation payload; Description is a pointer so a
// missing field can be rejected.
type NewRequest struct {
	Description *string `json:"description"`
}

type RequestService struct {
	requests RequestStore
	items    ItemStore
	users    UserStore
	log      zerolog.Logger
}

func NewRequestService(requests RequestStore, items ItemStore, users UserStore, logger *zerolog.Logger) *RequestService {
	return &RequestService{
		requests: requests,
		items:    items,
		users:    users,
		log:      logger.With().Str("component", "request-service").Logger(),
	}
}

func (s *RequestService) Create(ctx context.Context, userID int64, in NewRequest) (*RequestView, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	if in.Description == nil {
		return nil, validationf("request description must not be empty")
	}

	request := &models.ItemRequest{
		Description: *in.Description,
		RequestorID: userID,
		Created:     time.Now(),
	}
	if err := s.requests.CreateRequest(ctx, request); err != nil {
		return nil, err
	}
	s.log.Info().Int64("request_id", request.ID).Msg("item request created")

	return &RequestView{
		ID:          request.ID,
		Description: request.Description,
		Requestor:   request.RequestorID,
		Created:     request.Created,
	}, nil
}

// ListSelf returns the user's own requests with the items created against them.
func (s *RequestService) ListSelf(ctx context.Context, userID int64) ([]*RequestView, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	requests, err := s.requests.ListRequestsByRequestor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, requests)
}

// ListOthers returns everyone else's requests, oldest first, page-sliced when
// both from and size are supplied.
func (s *RequestService) ListOthers(ctx context.Context, userID int64, from, size *int) ([]*RequestView, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	limit, offset := -1, 0
	if from != nil && size != nil {
		if *from < 0 || *size <= 0 {
			return nil, validationf("from and size must not be negative")
		}
		page := *from / *size
		limit = *size
		offset = page * *size
	}

	requests, err := s.requests.ListRequestsExcluding(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, requests)
}

func (s *RequestService) GetByID(ctx context.Context, userID, requestID int64) (*RequestView, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	request, err := s.requests.GetRequestByID(ctx, requestID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundf("request with id %d does not exist", requestID)
	}
	if err != nil {
		return nil, err
	}

	views, err := s.withItems(ctx, []*models.ItemRequest{request})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *RequestService) withItems(ctx context.Context, requests []*models.ItemRequest) ([]*RequestView, error) {
	views := make([]*RequestView, 0, len(requests))
	for _, r := range requests {
		items, err := s.items.ListItemsByRequest(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []*models.Item{}
		}
		views = append(views, &RequestView{
			ID:          r.ID,
			Description: r.Description,
			Requestor:   r.RequestorID,
			Created:     r.Created,
			Items:       items,
		})
	}
	return views, nil
}

func (s *RequestService) requireUser(ctx context.Context, userID int64) error {
	_, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return notFoundf("user with id %d does not exist", userID)
	}
	return err
}
