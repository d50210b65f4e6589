// Package aggregate computes rating statistics. Every function is pure and
// deterministic so the admin, owner and user views agree on the numbers.
package aggregate

import (
	"math"
	"sort"
	"time"

	"store-rating/internal/data/entity"

	"github.com/google/uuid"
)

// DefaultFeedLimit is used by RecentFeed when no positive limit is given.
const DefaultFeedLimit = 10

// Distribution counts ratings per value. Keys 1 through 5 are always present.
type Distribution map[int]int

// StoreRatings pairs a store with all of its ratings.
type StoreRatings struct {
	Store   *entity.Store
	Ratings []*entity.Rating
}

type FeedItem struct {
	Rating    *entity.Rating
	StoreID   uuid.UUID
	StoreName string
}

type StoreSummary struct {
	StoreID      uuid.UUID
	StoreName    string
	TotalRatings int
	Average      float64
	Distribution Distribution
}

type Rollup struct {
	TotalStores    int
	TotalRatings   int
	OverallAverage float64
	PerStore       []StoreSummary
}

// Average returns the arithmetic mean, or 0 for no ratings.
func Average(ratings []*entity.Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Rating
	}
	return float64(sum) / float64(len(ratings))
}

// Round1 rounds to one decimal place for display.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func Histogram(ratings []*entity.Rating) Distribution {
	dist := make(Distribution, entity.MaxRating)
	for v := entity.MinRating; v <= entity.MaxRating; v++ {
		dist[v] = 0
	}
	for _, r := range ratings {
		if r.Rating >= entity.MinRating && r.Rating <= entity.MaxRating {
			dist[r.Rating]++
		}
	}
	return dist
}

// GroupByStore attaches ratings to their stores, keeping the order of
// stores and of ratings. Ratings of unknown stores are dropped.
func GroupByStore(stores []*entity.Store, ratings []*entity.Rating) []StoreRatings {
	groups := make([]StoreRatings, len(stores))
	index := make(map[uuid.UUID]int, len(stores))
	for i, s := range stores {
		groups[i] = StoreRatings{Store: s}
		index[s.ID] = i
	}
	for _, r := range ratings {
		if i, ok := index[r.StoreID]; ok {
			groups[i].Ratings = append(groups[i].Ratings, r)
		}
	}
	return groups
}

// RecentFeed returns the newest ratings of the given stores, newest first.
// Ties keep the order of ratings. Ratings of unknown stores are dropped.
func RecentFeed(ratings []*entity.Rating, stores []*entity.Store, limit int) []FeedItem {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}

	byID := make(map[uuid.UUID]*entity.Store, len(stores))
	for _, s := range stores {
		byID[s.ID] = s
	}

	items := make([]FeedItem, 0, len(ratings))
	for _, r := range ratings {
		if s, ok := byID[r.StoreID]; ok {
			items = append(items, FeedItem{Rating: r, StoreID: s.ID, StoreName: s.Name})
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return newer(items[i].Rating.CreatedAt, items[j].Rating.CreatedAt)
	})

	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

func newer(a, b time.Time) bool {
	return a.After(b)
}

// Summarize computes the statistics of a single store.
func Summarize(g StoreRatings) StoreSummary {
	return StoreSummary{
		StoreID:      g.Store.ID,
		StoreName:    g.Store.Name,
		TotalRatings: len(g.Ratings),
		Average:      Average(g.Ratings),
		Distribution: Histogram(g.Ratings),
	}
}

// RollupStores summarizes a set of stores. OverallAverage is the mean over
// all ratings pooled together, not the mean of per-store averages.
func RollupStores(groups []StoreRatings) Rollup {
	out := Rollup{
		TotalStores: len(groups),
		PerStore:    make([]StoreSummary, 0, len(groups)),
	}

	sum := 0
	for _, g := range groups {
		out.PerStore = append(out.PerStore, Summarize(g))
		out.TotalRatings += len(g.Ratings)
		for _, r := range g.Ratings {
			sum += r.Rating
		}
	}

	if out.TotalRatings > 0 {
		out.OverallAverage = float64(sum) / float64(out.TotalRatings)
	}
	return out
}
