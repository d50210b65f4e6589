package utils

import "math"

const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100

	// MaxPage keeps (page-1)*per_page inside an int32 OFFSET.
	MaxPage = math.MaxInt32 / MaxPerPage
)

func CalculateTotalPages(total int64, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

// ClampPage bounds page to [1, MaxPage].
func ClampPage(page int) int {
	if page < 1 {
		return DefaultPage
	}
	if page > MaxPage {
		return MaxPage
	}
	return page
}

func ClampPerPage(perPage int) int {
	if perPage < 1 {
		return DefaultPerPage
	}
	if perPage > MaxPerPage {
		return MaxPerPage
	}
	return perPage
}

func CalculateOffset(page, perPage int) int {
	return int(offset64(page, perPage))
}

func offset64(page, perPage int) int64 {
	return int64(ClampPage(page)-1) * int64(ClampPerPage(perPage))
}

// HasNextPage reports whether rows remain after the given page.
func HasNextPage(page, perPage int, total int64) bool {
	return offset64(page, perPage)+int64(ClampPerPage(perPage)) < total
}

func HasPrevPage(page int) bool {
	return page > 1
}
