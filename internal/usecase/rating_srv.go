package usecase

import (
	"context"
	"fmt"

	"store-rating/internal/data/entity"
	"store-rating/internal/data/repository"
	"store-rating/internal/dto/request"
	"store-rating/internal/dto/response"
	"store-rating/internal/ledger"
	"store-rating/internal/policy"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RatingService interface {
	SubmitRating(ctx context.Context, principal policy.Principal, req *request.SubmitRatingRequest) (*response.RatingResponse, error)
	UpdateRating(ctx context.Context, principal policy.Principal, ratingID string, req *request.UpdateRatingRequest) (*response.RatingResponse, error)
	ListMyRatings(ctx context.Context, principal policy.Principal, req *request.PaginatedRequest) (*response.PaginatedResponse[response.RatingResponse], error)
}

type ratingService struct {
	repo   *repository.Repository
	ledger *ledger.Ledger
	log    *zap.Logger
}

func NewRatingService(repo *repository.Repository, led *ledger.Ledger, log *zap.Logger) RatingService {
	return &ratingService{
		repo:   repo,
		ledger: led,
		log:    log.With(zap.String("service", "rating")),
	}
}

func (s *ratingService) SubmitRating(ctx context.Context, principal policy.Principal, req *request.SubmitRatingRequest) (*response.RatingResponse, error) {
	if err := policy.CheckRole(principal, policy.ActionSubmitRating); err != nil {
		return nil, err
	}

	if err := validate(req); err != nil {
		return nil, err
	}
	storeID, err := parseID(req.StoreID, "store_id")
	if err != nil {
		return nil, err
	}

	rating, err := s.ledger.Submit(ctx, principal.PrincipalID(), storeID, req.Rating)
	if err != nil {
		return nil, err
	}

	return s.buildRatingResponse(ctx, rating), nil
}

// UpdateRating changes the value of one of the principal's own ratings.
// Ratings that belong to someone else are reported as not found.
func (s *ratingService) UpdateRating(ctx context.Context, principal policy.Principal, ratingID string, req *request.UpdateRatingRequest) (*response.RatingResponse, error) {
	if err := policy.CheckRole(principal, policy.ActionUpdateRating); err != nil {
		return nil, err
	}

	id, err := parseID(ratingID, "rating_id")
	if err != nil {
		return nil, err
	}

	rating, err := s.ledger.Update(ctx, id, principal.PrincipalID(), req.Rating)
	if err != nil {
		return nil, err
	}

	return s.buildRatingResponse(ctx, rating), nil
}

func (s *ratingService) ListMyRatings(ctx context.Context, principal policy.Principal, req *request.PaginatedRequest) (*response.PaginatedResponse[response.RatingResponse], error) {
	if err := policy.CheckRole(principal, policy.ActionReadOwnRatings); err != nil {
		return nil, err
	}

	req.Normalize()
	userID := principal.PrincipalID()

	ratings, err := s.repo.Rating.FindByUserID(ctx, userID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get user ratings",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, fmt.Errorf("get user ratings: %w", err)
	}

	total, err := s.repo.Rating.CountByUserID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to count user ratings", zap.Error(err))
		return nil, fmt.Errorf("count user ratings: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(ratings))
	for _, r := range ratings {
		ids = append(ids, r.StoreID)
	}
	stores, err := storesByID(ctx, s.repo.Store, ids)
	if err != nil {
		s.log.Error("Failed to get rated stores", zap.Error(err))
		return nil, fmt.Errorf("load rated stores: %w", err)
	}

	items := make([]response.RatingResponse, len(ratings))
	for i, r := range ratings {
		items[i] = response.RatingToResponse(r).WithStore(stores[r.StoreID])
	}

	s.log.Debug("User ratings retrieved",
		zap.String("user_id", userID.String()),
		zap.Int("count", len(items)),
		zap.Int64("total", total),
	)

	return response.NewPaginatedResponse(items, req.Page, req.PerPage, total), nil
}

// ==================== HELPER METHODS ====================

func (s *ratingService) buildRatingResponse(ctx context.Context, rating *entity.Rating) *response.RatingResponse {
	resp := response.RatingToResponse(rating)

	store, err := s.repo.Store.FindByID(ctx, rating.StoreID)
	if err != nil {
		s.log.Warn("Failed to load store for rating response", zap.Error(err))
	}
	resp = resp.WithStore(store)

	return &resp
}
