package request

type RegisterRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=60"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
	Address  *string `json:"address,omitempty" validate:"omitempty,max=400"`
	Role     string  `json:"role,omitempty" validate:"omitempty,oneof=user owner"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=2,max=60"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=400"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=72"`
}
