package leetcode

import (
	"context"
	"time"

	"github.com/leetscope/leetscope/internal/domain/contest"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN-FACING PROVIDER
// The application layer depends on small interfaces it declares itself;
// Provider satisfies them by combining the raw client with the mapper so
// that no DTO ever crosses the infrastructure boundary.
// ══════════════════════════════════════════════════════════════════════════════

// Provider exposes the upstream API in domain terms.
type Provider struct {
	client   *Client
	pageSize int
}

// NewProvider creates a Provider over the given client. pageSize controls
// the contest listing page size; a non-positive value uses the client
// default of 10 per page.
func NewProvider(client *Client, pageSize int) *Provider {
	if pageSize <= 0 {
		pageSize = defaultContestPageSize
	}
	return &Provider{
		client:   client,
		pageSize: pageSize,
	}
}

// FetchContestHistory returns the user's full contest history as domain
// records stamped with the current time. A (nil, nil) return means the
// upstream has no data for the user.
func (p *Provider) FetchContestHistory(ctx context.Context, username contest.Username) ([]contest.HistoryRecord, error) {
	dtos, err := p.client.FetchUserContestHistory(ctx, username.String())
	if err != nil {
		return nil, err
	}
	if dtos == nil {
		return nil, nil
	}

	return p.client.Mapper().HistoryRecordsFromDTOs(dtos, username, time.Now().UTC()), nil
}

// FetchRankingSummary returns the user's aggregate ranking view, or
// (nil, nil) when the user is unknown or has never attended a contest.
func (p *Provider) FetchRankingSummary(ctx context.Context, username contest.Username) (*contest.RankingSummary, error) {
	dto, err := p.client.FetchUserRankingSummary(ctx, username.String())
	if err != nil {
		return nil, err
	}
	if dto == nil {
		return nil, nil
	}

	return p.client.Mapper().RankingSummaryFromDTO(dto)
}

// FetchAllContests aggregates the upstream past-contest listing across
// pages and returns it in page order. A mid-listing failure truncates
// the result rather than failing the whole aggregation.
func (p *Provider) FetchAllContests(ctx context.Context) ([]contest.Contest, error) {
	dtos, err := p.client.FetchAllPastContests(ctx, p.pageSize)
	if err != nil {
		return nil, err
	}

	return p.client.Mapper().ContestsFromDTOs(dtos, time.Now().UTC()), nil
}
