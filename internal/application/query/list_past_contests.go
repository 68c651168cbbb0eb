package query

import (
	"context"
	"fmt"

	"github.com/leetscope/leetscope/internal/domain/contest"
	"github.com/leetscope/leetscope/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST PAST CONTESTS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// Pagination bounds for the contest listing.
const (
	defaultPerPage = 10
	maxPerPage     = 100
)

// ListPastContestsQuery requests one page of the persisted global
// contest listing.
type ListPastContestsQuery struct {
	// Page is the 1-based page number. Zero means page 1.
	Page int

	// PerPage is the page size. Zero means the default.
	PerPage int
}

// Validate validates and normalizes the query in place.
func (q *ListPastContestsQuery) Validate() error {
	if q.Page < 0 || q.PerPage < 0 {
		return shared.ErrInvalidPage
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PerPage == 0 {
		q.PerPage = defaultPerPage
	}
	if q.PerPage > maxPerPage {
		q.PerPage = maxPerPage
	}
	return nil
}

// ContestPage is one page of the listing plus pagination metadata.
type ContestPage struct {
	Contests   []contest.Contest
	Page       int
	PerPage    int
	TotalCount int
	TotalPages int
}

// ListPastContestsHandler handles ListPastContestsQuery.
type ListPastContestsHandler struct {
	contestRepo contest.ContestRepository
}

// NewListPastContestsHandler creates a new ListPastContestsHandler.
func NewListPastContestsHandler(contestRepo contest.ContestRepository) *ListPastContestsHandler {
	return &ListPastContestsHandler{contestRepo: contestRepo}
}

// Handle returns the requested page, newest contests first. A page past
// the end of the listing is an empty page, not an error.
func (h *ListPastContestsHandler) Handle(ctx context.Context, q ListPastContestsQuery) (*ContestPage, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("list_past_contests: %w", err)
	}

	contests, total, err := h.contestRepo.List(ctx, q.Page, q.PerPage)
	if err != nil {
		return nil, fmt.Errorf("list_past_contests: %w", err)
	}

	totalPages := total / q.PerPage
	if total%q.PerPage != 0 {
		totalPages++
	}

	return &ContestPage{
		Contests:   contests,
		Page:       q.Page,
		PerPage:    q.PerPage,
		TotalCount: total,
		TotalPages: totalPages,
	}, nil
}
