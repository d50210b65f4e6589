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

// UserService is the administrator's user management.
type UserService interface {
	ListUsers(ctx context.Context, principal policy.Principal, req *request.ListUsersRequest) (*response.PaginatedResponse[response.AdminUserResponse], error)
	GetUser(ctx context.Context, principal policy.Principal, userID string) (*response.UserDetailResponse, error)
	CreateUser(ctx context.Context, principal policy.Principal, req *request.CreateUserRequest) (*response.UserResponse, error)
	UpdateUser(ctx context.Context, principal policy.Principal, userID string, req *request.UpdateUserRequest) (*response.UserResponse, error)
	DeleteUser(ctx context.Context, principal policy.Principal, userID string) error
}

type userService struct {
	repo   *repository.Repository
	ledger *ledger.Ledger
	log    *zap.Logger
}

func NewUserService(repo *repository.Repository, led *ledger.Ledger, log *zap.Logger) UserService {
	return &userService{
		repo:   repo,
		ledger: led,
		log:    log.With(zap.String("service", "user")),
	}
}

func (us *userService) ListUsers(ctx context.Context, principal policy.Principal, req *request.ListUsersRequest) (*response.PaginatedResponse[response.AdminUserResponse], error) {
	if err := policy.CheckRole(principal, policy.ActionManageUsers); err != nil {
		return nil, err
	}

	req.Normalize()
	if err := validate(req); err != nil {
		return nil, err
	}

	filter := repository.UserFilter{Search: req.Search, Role: entity.Role(req.Role)}

	users, err := us.repo.User.FindAll(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		us.log.Error("Failed to get all users", zap.Error(err), zap.Int("page", req.Page))
		return nil, fmt.Errorf("list users: %w", err)
	}

	total, err := us.repo.User.CountAll(ctx, filter)
	if err != nil {
		us.log.Error("Failed to count users", zap.Error(err))
		return nil, fmt.Errorf("count users: %w", err)
	}

	rollups, err := us.ownerRollups(ctx, users)
	if err != nil {
		us.log.Error("Failed to compute owner averages", zap.Error(err))
		return nil, fmt.Errorf("owner averages: %w", err)
	}

	items := make([]response.AdminUserResponse, len(users))
	for i, u := range users {
		items[i] = adminUserResponse(u, rollups[u.ID])
	}

	return response.NewPaginatedResponse(items, req.Page, req.PerPage, total), nil
}

func (us *userService) GetUser(ctx context.Context, principal policy.Principal, userID string) (*response.UserDetailResponse, error) {
	if err := policy.CheckRole(principal, policy.ActionManageUsers); err != nil {
		return nil, err
	}

	user, err := us.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	rollups, err := us.ownerRollups(ctx, []*entity.User{user})
	if err != nil {
		us.log.Error("Failed to compute owner rollup", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("owner rollup: %w", err)
	}

	detail := &response.UserDetailResponse{
		AdminUserResponse: adminUserResponse(user, rollups[user.ID]),
	}
	if rollup, ok := rollups[user.ID]; ok {
		detail.Stores = make([]response.StoreStatsResponse, len(rollup.PerStore))
		for i, summary := range rollup.PerStore {
			detail.Stores[i] = response.StoreStatsToResponse(summary)
		}
	}

	return detail, nil
}

func (us *userService) CreateUser(ctx context.Context, principal policy.Principal, req *request.CreateUserRequest) (*response.UserResponse, error) {
	if err := policy.CheckRole(principal, policy.ActionManageUsers); err != nil {
		return nil, err
	}

	if err := validate(req); err != nil {
		return nil, err
	}

	user, err := createAccount(ctx, us.repo.User, req.Name, req.Email, req.Password, req.Address, entity.Role(req.Role))
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			us.log.Error("Failed to create user", zap.Error(err), zap.String("email", req.Email))
		}
		return nil, err
	}

	us.log.Info("User created by admin",
		zap.String("user_id", user.ID.String()),
		zap.String("admin_id", principal.PrincipalID().String()),
		zap.String("role", string(user.Role)))

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) UpdateUser(ctx context.Context, principal policy.Principal, userID string, req *request.UpdateUserRequest) (*response.UserResponse, error) {
	if err := policy.CheckRole(principal, policy.ActionManageUsers); err != nil {
		return nil, err
	}

	if err := validate(req); err != nil {
		return nil, err
	}

	user, err := us.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		user.Address = utils.OptionalString(req.Address)
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if err := checkEmailFree(ctx, us.repo.User, email, user.ID); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if req.Role != nil {
		role := entity.Role(*req.Role)
		if user.Role == entity.RoleOwner && role != entity.RoleOwner {
			// stores must always reference an owner
			owned, err := us.repo.Store.CountByOwnerID(ctx, user.ID)
			if err != nil {
				return nil, fmt.Errorf("count owned stores: %w", err)
			}
			if owned > 0 {
				return nil, apperr.Conflict("user still owns %d store(s); delete or reassign them first", owned)
			}
		}
		user.Role = role
	}

	user.UpdatedAt = time.Now()
	if err := us.repo.User.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, apperr.Conflict("Email already registered")
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperr.NotFound("user not found")
		}
		us.log.Error("Failed to update user", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("update user: %w", err)
	}

	us.log.Info("User updated by admin",
		zap.String("user_id", userID),
		zap.String("admin_id", principal.PrincipalID().String()))

	resp := response.UserToResponse(user)
	return &resp, nil
}

// DeleteUser removes the user with everything that references it: the
// user's own ratings, then the ratings of each store they own and those
// stores, then the user row. All of it happens in one transaction.
func (us *userService) DeleteUser(ctx context.Context, principal policy.Principal, userID string) error {
	if err := policy.CheckRole(principal, policy.ActionManageUsers); err != nil {
		return err
	}

	user, err := us.findUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.ID == principal.PrincipalID() {
		return apperr.Conflict("administrators cannot delete their own account")
	}

	err = us.repo.WithinTx(ctx, func(tx *repository.Repository) error {
		led := us.ledger.WithRepo(tx)

		if _, err := led.DeleteForUser(ctx, user.ID); err != nil {
			return err
		}

		stores, err := tx.Store.FindByOwnerID(ctx, user.ID)
		if err != nil {
			return err
		}
		for _, store := range stores {
			if _, err := led.DeleteForStore(ctx, store.ID); err != nil {
				return err
			}
			if err := tx.Store.Delete(ctx, store.ID); err != nil {
				return err
			}
		}

		return tx.User.Delete(ctx, user.ID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.Wrap(apperr.KindNotFound, "user not found", err)
		}
		us.log.Error("Failed to delete user", zap.Error(err), zap.String("user_id", userID))
		return fmt.Errorf("delete user: %w", err)
	}

	us.log.Info("User deleted by admin",
		zap.String("user_id", userID),
		zap.String("admin_id", principal.PrincipalID().String()))
	return nil
}

// ==================== HELPER METHODS ====================

func (us *userService) findUser(ctx context.Context, rawID string) (*entity.User, error) {
	id, err := parseID(rawID, "user_id")
	if err != nil {
		return nil, err
	}

	user, err := us.repo.User.FindByID(ctx, id)
	if err != nil {
		us.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", rawID))
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	return user, nil
}

// ownerRollups computes store statistics for every owner among users.
func (us *userService) ownerRollups(ctx context.Context, users []*entity.User) (map[uuid.UUID]aggregate.Rollup, error) {
	storesByOwner := make(map[uuid.UUID][]*entity.Store)
	var allStores []*entity.Store
	for _, u := range users {
		if u.Role != entity.RoleOwner {
			continue
		}
		stores, err := us.repo.Store.FindByOwnerID(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		storesByOwner[u.ID] = stores
		allStores = append(allStores, stores...)
	}

	if len(storesByOwner) == 0 {
		return nil, nil
	}

	ratings, err := us.repo.Rating.FindByStoreIDs(ctx, storeIDs(allStores))
	if err != nil {
		return nil, err
	}

	rollups := make(map[uuid.UUID]aggregate.Rollup, len(storesByOwner))
	for ownerID, stores := range storesByOwner {
		rollups[ownerID] = aggregate.RollupStores(aggregate.GroupByStore(stores, ratings))
	}
	return rollups, nil
}

func adminUserResponse(user *entity.User, rollup aggregate.Rollup) response.AdminUserResponse {
	resp := response.AdminUserResponse{UserResponse: response.UserToResponse(user)}
	if user.Role == entity.RoleOwner {
		avg := aggregate.Round1(rollup.OverallAverage)
		total := rollup.TotalStores
		resp.AverageRating = &avg
		resp.TotalStores = &total
	}
	return resp
}
