package request

import "store-rating/pkg/utils"

type PaginatedRequest struct {
	Page    int `json:"page" validate:"min=1"`
	PerPage int `json:"per_page" validate:"min=1,max=100"`
}

// Normalize replaces out of range values with the defaults.
func (p *PaginatedRequest) Normalize() {
	p.Page = utils.ClampPage(p.Page)
	p.PerPage = utils.ClampPerPage(p.PerPage)
}

func (p PaginatedRequest) Offset() int {
	return utils.CalculateOffset(p.Page, p.Limit())
}

func (p PaginatedRequest) Limit() int {
	return utils.ClampPerPage(p.PerPage)
}
