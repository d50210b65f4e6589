package usecase

import (
	"context"
	"testing"
	"time"

	"store-rating/internal/data/entity"
	"store-rating/internal/data/repository"
	"store-rating/internal/data/repository/repotest"
	"store-rating/internal/policy"
	"store-rating/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type harness struct {
	t    *testing.T
	repo *repository.Repository
	svc  *Service
	cfg  *utils.Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := &utils.Config{
		App: utils.AppConfig{Name: "store-rating-test"},
		JWT: utils.JWTConfig{Secret: "test-secret", ExpiryHours: 1},
	}
	repo := repotest.New()
	return &harness{t: t, repo: repo, svc: NewService(repo, cfg, zap.NewNop()), cfg: cfg}
}

func (h *harness) user(name string, role entity.Role) *entity.User {
	h.t.Helper()
	now := time.Now()
	u := &entity.User{
		Base:  entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name:  name,
		Email: name + "@example.com",
		Role:  role,
	}
	require.NoError(h.t, h.repo.User.Create(context.Background(), u))
	return u
}

func (h *harness) store(name string, owner *entity.User) *entity.Store {
	h.t.Helper()
	now := time.Now()
	s := &entity.Store{
		Base:    entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name:    name,
		Email:   name + "@shop.example.com",
		OwnerID: owner.ID,
	}
	require.NoError(h.t, h.repo.Store.Create(context.Background(), s))
	return s
}

func (h *harness) rate(user *entity.User, store *entity.Store, value int) *entity.Rating {
	h.t.Helper()
	r, err := h.svc.Rating.(*ratingService).ledger.Submit(context.Background(), user.ID, store.ID, value)
	require.NoError(h.t, err)
	return r
}

func principalOf(t *testing.T, u *entity.User) policy.Principal {
	t.Helper()
	p, err := policy.NewPrincipal(u.ID, u.Role)
	require.NoError(t, err)
	return p
}

func ptr[T any](v T) *T { return &v }
