package usecase

import (
	"store-rating/internal/data/repository"
	"store-rating/internal/ledger"
	"store-rating/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth      AuthService
	User      UserService
	Store     StoreService
	Rating    RatingService
	Dashboard DashboardService
}

func NewService(repo *repository.Repository, config *utils.Config, log *zap.Logger) *Service {
	led := ledger.New(repo, log)

	return &Service{
		Auth:      NewAuthService(repo, config, log),
		User:      NewUserService(repo, led, log),
		Store:     NewStoreService(repo, led, log),
		Rating:    NewRatingService(repo, led, log),
		Dashboard: NewDashboardService(repo, log),
	}
}
