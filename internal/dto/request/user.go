package request

// CreateUserRequest is used by administrators and may carry any role.
type CreateUserRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=60"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
	Address  *string `json:"address,omitempty" validate:"omitempty,max=400"`
	Role     string  `json:"role" validate:"required,oneof=user owner admin"`
}

type UpdateUserRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=2,max=60"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=400"`
	Role    *string `json:"role,omitempty" validate:"omitempty,oneof=user owner admin"`
}

type ListUsersRequest struct {
	PaginatedRequest
	Search string `json:"search"`
	Role   string `json:"role" validate:"omitempty,oneof=user owner admin"`
}
