package usecase

import (
	"context"
	"fmt"

	"store-rating/internal/aggregate"
	"store-rating/internal/data/entity"
	"store-rating/internal/data/repository"
	"store-rating/internal/dto/response"
	"store-rating/internal/policy"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type DashboardService interface {
	Admin(ctx context.Context, principal policy.Principal) (*response.AdminDashboardResponse, error)
	Owner(ctx context.Context, principal policy.Principal) (*response.OwnerDashboardResponse, error)
}

type dashboardService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewDashboardService(repo *repository.Repository, log *zap.Logger) DashboardService {
	return &dashboardService{
		repo: repo,
		log:  log.With(zap.String("service", "dashboard")),
	}
}

// Admin returns platform wide totals. The independent reads run
// concurrently; the first failure cancels the rest.
func (s *dashboardService) Admin(ctx context.Context, principal policy.Principal) (*response.AdminDashboardResponse, error) {
	if err := policy.CheckRole(principal, policy.ActionViewAdminDashboard); err != nil {
		return nil, err
	}

	var (
		totalUsers, totalStores, totalRatings int64
		byRole                                map[entity.Role]int64
		stores                                []*entity.Store
		ratings                               []*entity.Rating
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		totalUsers, err = s.repo.User.CountAll(gctx, repository.UserFilter{})
		return err
	})
	g.Go(func() (err error) {
		byRole, err = s.repo.User.CountByRole(gctx)
		return err
	})
	g.Go(func() (err error) {
		totalStores, err = s.repo.Store.CountAll(gctx, "")
		return err
	})
	g.Go(func() (err error) {
		totalRatings, err = s.repo.Rating.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stores, err = s.repo.Store.ListAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		ratings, err = s.repo.Rating.ListAll(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error("Failed to load admin dashboard", zap.Error(err))
		return nil, fmt.Errorf("admin dashboard: %w", err)
	}

	feed := aggregate.RecentFeed(ratings, stores, aggregate.DefaultFeedLimit)
	recent, err := s.feedResponse(ctx, feed)
	if err != nil {
		return nil, err
	}

	roles := make(map[string]int64, len(byRole))
	for role, n := range byRole {
		roles[string(role)] = n
	}

	return &response.AdminDashboardResponse{
		TotalUsers:    totalUsers,
		UsersByRole:   roles,
		TotalStores:   totalStores,
		TotalRatings:  totalRatings,
		AverageRating: aggregate.Round1(aggregate.Average(ratings)),
		Distribution:  aggregate.Histogram(ratings),
		RecentRatings: recent,
	}, nil
}

// Owner returns statistics over the stores the principal owns.
func (s *dashboardService) Owner(ctx context.Context, principal policy.Principal) (*response.OwnerDashboardResponse, error) {
	if err := policy.CheckRole(principal, policy.ActionViewOwnerDashboard); err != nil {
		return nil, err
	}

	ownerID := principal.PrincipalID()
	stores, err := s.repo.Store.FindByOwnerID(ctx, ownerID)
	if err != nil {
		s.log.Error("Failed to get owner stores", zap.Error(err), zap.String("owner_id", ownerID.String()))
		return nil, fmt.Errorf("owner stores: %w", err)
	}

	ratings, err := s.repo.Rating.FindByStoreIDs(ctx, storeIDs(stores))
	if err != nil {
		s.log.Error("Failed to get owner ratings", zap.Error(err), zap.String("owner_id", ownerID.String()))
		return nil, fmt.Errorf("owner ratings: %w", err)
	}

	groups := aggregate.GroupByStore(stores, ratings)
	rollup := aggregate.RollupStores(groups)

	recent, err := s.feedResponse(ctx, aggregate.RecentFeed(ratings, stores, aggregate.DefaultFeedLimit))
	if err != nil {
		return nil, err
	}

	stats := make([]response.StoreStatsResponse, len(rollup.PerStore))
	for i, summary := range rollup.PerStore {
		stats[i] = response.StoreStatsToResponse(summary)
	}

	s.log.Debug("Owner dashboard computed",
		zap.String("owner_id", ownerID.String()),
		zap.Int("stores", rollup.TotalStores),
		zap.Int("ratings", rollup.TotalRatings))

	return &response.OwnerDashboardResponse{
		TotalStores:   rollup.TotalStores,
		TotalRatings:  rollup.TotalRatings,
		AverageRating: aggregate.Round1(rollup.OverallAverage),
		Stores:        stats,
		RecentRatings: recent,
	}, nil
}

func (s *dashboardService) feedResponse(ctx context.Context, feed []aggregate.FeedItem) ([]response.RatingResponse, error) {
	feedRatings := make([]*entity.Rating, len(feed))
	for i, item := range feed {
		feedRatings[i] = item.Rating
	}
	users, err := usersByID(ctx, s.repo.User, raterIDs(feedRatings))
	if err != nil {
		s.log.Error("Failed to get raters", zap.Error(err))
		return nil, fmt.Errorf("load raters: %w", err)
	}
	return response.FeedToResponse(feed, users), nil
}
