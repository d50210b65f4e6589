package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"store-rating/internal/aggregate"
	"store-rating/internal/data/entity"
	"store-rating/internal/data/repository"
	"store-rating/internal/dto/request"
	"store-rating/internal/dto/response"
	"store-rating/internal/ledger"
	"store-rating/internal/policy"
	"store-rating/pkg/apperr"
	"store-rating/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type StoreService interface {
	// Queries
	ListStores(ctx context.Context, principal policy.Principal, req *request.ListStoresRequest) (*response.PaginatedResponse[response.StoreResponse], error)
	GetStore(ctx context.Context, principal policy.Principal, storeID string) (*response.StoreDetailResponse, error)
	ListStoreRatings(ctx context.Context, principal policy.Principal, storeID string, req *request.PaginatedRequest) (*response.StoreRatingsResponse, error)
	MyStores(ctx context.Context, principal policy.Principal) ([]response.StoreDetailResponse, error)

	// Commands
	CreateStore(ctx context.Context, principal policy.Principal, req *request.CreateStoreRequest) (*response.StoreResponse, error)
	UpdateStore(ctx context.Context, principal policy.Principal, storeID string, req *request.UpdateStoreRequest) (*response.StoreResponse, error)
	DeleteStore(ctx context.Context, principal policy.Principal, storeID string) error
}

type storeService struct {
	repo   *repository.Repository
	ledger *ledger.Ledger
	log    *zap.Logger
}

func NewStoreService(repo *repository.Repository, led *ledger.Ledger, log *zap.Logger) StoreService {
	return &storeService{
		repo:   repo,
		ledger: led,
		log:    log.With(zap.String("service", "store")),
	}
}

func (s *storeService) ListStores(ctx context.Context, principal policy.Principal, req *request.ListStoresRequest) (*response.PaginatedResponse[response.StoreResponse], error) {
	if err := policy.CheckRole(principal, policy.ActionBrowseStores); err != nil {
		return nil, err
	}

	req.Normalize()

	stores, err := s.repo.Store.FindAll(ctx, req.Search, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get stores", zap.Error(err), zap.String("search", req.Search))
		return nil, fmt.Errorf("list stores: %w", err)
	}

	total, err := s.repo.Store.CountAll(ctx, req.Search)
	if err != nil {
		s.log.Error("Failed to count stores", zap.Error(err))
		return nil, fmt.Errorf("count stores: %w", err)
	}

	ids := storeIDs(stores)
	ratings, err := s.repo.Rating.FindByStoreIDs(ctx, ids)
	if err != nil {
		s.log.Error("Failed to get store ratings", zap.Error(err))
		return nil, fmt.Errorf("store ratings: %w", err)
	}

	// my_rating is only meaningful for raters
	mine := make(map[uuid.UUID]*entity.Rating)
	if _, ok := principal.(policy.UserPrincipal); ok {
		own, err := s.repo.Rating.FindByUserAndStores(ctx, principal.PrincipalID(), ids)
		if err != nil {
			s.log.Error("Failed to get own ratings", zap.Error(err))
			return nil, fmt.Errorf("own ratings: %w", err)
		}
		for _, r := range own {
			mine[r.StoreID] = r
		}
	}

	groups := aggregate.GroupByStore(stores, ratings)
	items := make([]response.StoreResponse, len(groups))
	for i, g := range groups {
		items[i] = response.StoreToResponse(g.Store, aggregate.Summarize(g))
		if r, ok := mine[g.Store.ID]; ok {
			value, id := r.Rating, r.ID.String()
			items[i].MyRating = &value
			items[i].MyRatingID = &id
		}
	}

	s.log.Debug("Stores listed",
		zap.String("search", req.Search),
		zap.Int("count", len(items)),
		zap.Int64("total", total))

	return response.NewPaginatedResponse(items, req.Page, req.PerPage, total), nil
}

func (s *storeService) GetStore(ctx context.Context, principal policy.Principal, storeID string) (*response.StoreDetailResponse, error) {
	store, err := s.authorizedStore(ctx, principal, policy.ActionReadStore, storeID)
	if err != nil {
		return nil, err
	}

	ratings, err := s.repo.Rating.FindByStoreIDs(ctx, []uuid.UUID{store.ID})
	if err != nil {
		s.log.Error("Failed to get store ratings", zap.Error(err), zap.String("store_id", storeID))
		return nil, fmt.Errorf("store ratings: %w", err)
	}

	group := aggregate.StoreRatings{Store: store, Ratings: ratings}
	summary := aggregate.Summarize(group)
	feed := aggregate.RecentFeed(ratings, []*entity.Store{store}, aggregate.DefaultFeedLimit)

	ids := []uuid.UUID{store.OwnerID}
	for _, item := range feed {
		ids = append(ids, item.Rating.UserID)
	}
	users, err := usersByID(ctx, s.repo.User, ids)
	if err != nil {
		s.log.Error("Failed to get raters", zap.Error(err))
		return nil, fmt.Errorf("load raters: %w", err)
	}

	detail := &response.StoreDetailResponse{
		StoreResponse: response.StoreToResponse(store, summary),
		Distribution:  summary.Distribution,
		RecentRatings: response.FeedToResponse(feed, users),
	}
	if owner, ok := users[store.OwnerID]; ok {
		detail.Owner = &response.OwnerInfo{ID: owner.ID.String(), Name: owner.Name, Email: owner.Email}
	}
	if _, ok := principal.(policy.UserPrincipal); ok {
		for _, r := range ratings {
			if r.UserID == principal.PrincipalID() {
				value, id := r.Rating, r.ID.String()
				detail.MyRating = &value
				detail.MyRatingID = &id
				break
			}
		}
	}

	return detail, nil
}

func (s *storeService) ListStoreRatings(ctx context.Context, principal policy.Principal, storeID string, req *request.PaginatedRequest) (*response.StoreRatingsResponse, error) {
	store, err := s.authorizedStore(ctx, principal, policy.ActionReadStoreRatings, storeID)
	if err != nil {
		return nil, err
	}

	req.Normalize()

	page, err := s.repo.Rating.FindByStoreID(ctx, store.ID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get store ratings page",
			zap.Error(err),
			zap.String("store_id", storeID),
			zap.Int("page", req.Page))
		return nil, fmt.Errorf("store ratings: %w", err)
	}

	total, err := s.repo.Rating.CountByStoreID(ctx, store.ID)
	if err != nil {
		s.log.Error("Failed to count store ratings", zap.Error(err), zap.String("store_id", storeID))
		return nil, fmt.Errorf("count store ratings: %w", err)
	}

	// the average covers every rating, not only this page
	all, err := s.repo.Rating.FindByStoreIDs(ctx, []uuid.UUID{store.ID})
	if err != nil {
		return nil, fmt.Errorf("store ratings: %w", err)
	}

	users, err := usersByID(ctx, s.repo.User, raterIDs(page))
	if err != nil {
		s.log.Error("Failed to get raters", zap.Error(err))
		return nil, fmt.Errorf("load raters: %w", err)
	}

	items := make([]response.RatingResponse, len(page))
	for i, r := range page {
		items[i] = response.RatingToResponse(r).WithUser(users[r.UserID])
	}

	return &response.StoreRatingsResponse{
		StoreID:       store.ID.String(),
		StoreName:     store.Name,
		AverageRating: aggregate.Round1(aggregate.Average(all)),
		TotalRatings:  total,
		Ratings:       items,
		Pagination:    response.NewPaginationMeta(req.Page, req.PerPage, total),
	}, nil
}

// MyStores lists the owner's stores with their statistics.
func (s *storeService) MyStores(ctx context.Context, principal policy.Principal) ([]response.StoreDetailResponse, error) {
	if err := policy.CheckRole(principal, policy.ActionViewOwnerDashboard); err != nil {
		return nil, err
	}

	stores, err := s.repo.Store.FindByOwnerID(ctx, principal.PrincipalID())
	if err != nil {
		s.log.Error("Failed to get owner stores", zap.Error(err))
		return nil, fmt.Errorf("owner stores: %w", err)
	}

	ratings, err := s.repo.Rating.FindByStoreIDs(ctx, storeIDs(stores))
	if err != nil {
		s.log.Error("Failed to get owner store ratings", zap.Error(err))
		return nil, fmt.Errorf("owner store ratings: %w", err)
	}

	groups := aggregate.GroupByStore(stores, ratings)
	out := make([]response.StoreDetailResponse, len(groups))
	for i, g := range groups {
		summary := aggregate.Summarize(g)
		out[i] = response.StoreDetailResponse{
			StoreResponse: response.StoreToResponse(g.Store, summary),
			Distribution:  summary.Distribution,
		}
	}
	return out, nil
}

func (s *storeService) CreateStore(ctx context.Context, principal policy.Principal, req *request.CreateStoreRequest) (*response.StoreResponse, error) {
	if err := policy.CheckRole(principal, policy.ActionCreateStore); err != nil {
		return nil, err
	}

	if err := validate(req); err != nil {
		return nil, err
	}

	ownerID, err := s.resolveOwner(ctx, principal, req.OwnerID)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)
	if err := s.checkEmailFree(ctx, email, uuid.Nil); err != nil {
		return nil, err
	}

	now := time.Now()
	store := &entity.Store{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:    strings.TrimSpace(req.Name),
		Email:   email,
		Address: utils.OptionalString(req.Address),
		OwnerID: ownerID,
	}

	if err := s.repo.Store.Create(ctx, store); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("Store with this email already exists")
		}
		s.log.Error("Failed to create store", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("create store: %w", err)
	}

	s.log.Info("Store created",
		zap.String("store_id", store.ID.String()),
		zap.String("owner_id", ownerID.String()),
		zap.String("created_by", principal.PrincipalID().String()))

	resp := response.StoreToResponse(store, aggregate.Summarize(aggregate.StoreRatings{Store: store}))
	return &resp, nil
}

func (s *storeService) UpdateStore(ctx context.Context, principal policy.Principal, storeID string, req *request.UpdateStoreRequest) (*response.StoreResponse, error) {
	store, err := s.authorizedStore(ctx, principal, policy.ActionUpdateStore, storeID)
	if err != nil {
		return nil, err
	}

	if err := validate(req); err != nil {
		return nil, err
	}

	if req.Name != nil {
		store.Name = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		store.Address = utils.OptionalString(req.Address)
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if err := s.checkEmailFree(ctx, email, store.ID); err != nil {
			return nil, err
		}
		store.Email = email
	}

	store.UpdatedAt = time.Now()
	if err := s.repo.Store.Update(ctx, store); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, apperr.Conflict("Store with this email already exists")
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperr.NotFound("store not found")
		}
		s.log.Error("Failed to update store", zap.Error(err), zap.String("store_id", storeID))
		return nil, fmt.Errorf("update store: %w", err)
	}

	ratings, err := s.repo.Rating.FindByStoreIDs(ctx, []uuid.UUID{store.ID})
	if err != nil {
		return nil, fmt.Errorf("store ratings: %w", err)
	}

	s.log.Info("Store updated",
		zap.String("store_id", storeID),
		zap.String("updated_by", principal.PrincipalID().String()))

	resp := response.StoreToResponse(store, aggregate.Summarize(aggregate.StoreRatings{Store: store, Ratings: ratings}))
	return &resp, nil
}

// DeleteStore removes the store's ratings and then the store in one
// transaction.
func (s *storeService) DeleteStore(ctx context.Context, principal policy.Principal, storeID string) error {
	store, err := s.authorizedStore(ctx, principal, policy.ActionDeleteStore, storeID)
	if err != nil {
		return err
	}

	var removed int64
	err = s.repo.WithinTx(ctx, func(tx *repository.Repository) error {
		n, err := s.ledger.WithRepo(tx).DeleteForStore(ctx, store.ID)
		if err != nil {
			return err
		}
		removed = n
		return tx.Store.Delete(ctx, store.ID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.Wrap(apperr.KindNotFound, "store not found", err)
		}
		s.log.Error("Failed to delete store", zap.Error(err), zap.String("store_id", storeID))
		return fmt.Errorf("delete store: %w", err)
	}

	s.log.Info("Store deleted",
		zap.String("store_id", storeID),
		zap.Int64("ratings_removed", removed),
		zap.String("deleted_by", principal.PrincipalID().String()))
	return nil
}

// ==================== HELPER METHODS ====================

// authorizedStore rejects principals whose role never allows action, then
// loads the store and checks ownership against it.
func (s *storeService) authorizedStore(ctx context.Context, principal policy.Principal, action policy.Action, rawID string) (*entity.Store, error) {
	if err := policy.CheckRole(principal, action); err != nil {
		return nil, err
	}

	id, err := parseID(rawID, "store_id")
	if err != nil {
		return nil, err
	}

	store, err := s.repo.Store.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find store", zap.Error(err), zap.String("store_id", rawID))
		return nil, fmt.Errorf("find store: %w", err)
	}
	if store == nil {
		return nil, apperr.NotFound("store not found")
	}

	if err := policy.Check(principal, action, policy.Target{OwnerID: store.OwnerID}); err != nil {
		s.log.Warn("Store access denied",
			zap.String("store_id", rawID),
			zap.String("principal_id", principal.PrincipalID().String()),
			zap.String("action", string(action)))
		return nil, err
	}
	return store, nil
}

// resolveOwner returns the owner of a new store. Owners always own what
// they create; administrators name an existing owner.
func (s *storeService) resolveOwner(ctx context.Context, principal policy.Principal, rawOwnerID string) (uuid.UUID, error) {
	if _, ok := principal.(policy.OwnerPrincipal); ok {
		return principal.PrincipalID(), nil
	}

	if strings.TrimSpace(rawOwnerID) == "" {
		return uuid.Nil, apperr.Validation("owner_id is required",
			map[string]string{"owner_id": "This field is required"})
	}
	ownerID, err := parseID(rawOwnerID, "owner_id")
	if err != nil {
		return uuid.Nil, err
	}

	owner, err := s.repo.User.FindByID(ctx, ownerID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("find owner: %w", err)
	}
	if owner == nil || owner.Role != entity.RoleOwner {
		return uuid.Nil, apperr.Validation("owner_id must reference a store owner",
			map[string]string{"owner_id": "Must reference a user with role owner"})
	}
	return owner.ID, nil
}

func (s *storeService) checkEmailFree(ctx context.Context, email string, self uuid.UUID) error {
	existing, err := s.repo.Store.FindByEmail(ctx, email)
	if err != nil {
		s.log.Error("Failed to check store email", zap.Error(err), zap.String("email", email))
		return fmt.Errorf("check store email: %w", err)
	}
	if existing != nil && existing.ID != self {
		return apperr.Conflict("Store with this email already exists")
	}
	return nil
}
