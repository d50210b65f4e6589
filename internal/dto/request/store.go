package request

type CreateStoreRequest struct {
	Name    string  `json:"name" validate:"required,min=1,max=100"`
	Email   string  `json:"email" validate:"required,email,max=255"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=400"`
	// OwnerID is required when an administrator creates the store and
	// ignored for owners, who always create their own.
	OwnerID string `json:"owner_id,omitempty" validate:"omitempty,uuid"`
}

type UpdateStoreRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=400"`
}

type ListStoresRequest struct {
	PaginatedRequest
	Search string `json:"search"`
}
