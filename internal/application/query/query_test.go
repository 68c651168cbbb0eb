package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leetscope/leetscope/internal/domain/contest"
	"github.com/leetscope/leetscope/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// FAKES
// The synchronizer fake mimics the real write path: on first touch it
// copies the upstream data into the store, unless the store already has
// records for the user.
// ══════════════════════════════════════════════════════════════════════════════

type fakeStore struct {
	records  map[contest.Username][]contest.HistoryRecord
	upstream map[contest.Username][]contest.HistoryRecord
	syncs    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records:  make(map[contest.Username][]contest.HistoryRecord),
		upstream: make(map[contest.Username][]contest.HistoryRecord),
	}
}

func (f *fakeStore) EnsureSynchronized(ctx context.Context, u contest.Username) error {
	f.syncs++
	if len(f.records[u]) > 0 {
		return nil
	}
	if data := f.upstream[u]; len(data) > 0 {
		f.records[u] = data
	}
	return nil
}

func (f *fakeStore) ExistsForUser(ctx context.Context, u contest.Username) (bool, error) {
	return len(f.records[u]) > 0, nil
}

func (f *fakeStore) FindAllForUser(ctx context.Context, u contest.Username) ([]contest.HistoryRecord, error) {
	return f.records[u], nil
}

func (f *fakeStore) FindForUserWhere(ctx context.Context, u contest.Username, filter contest.Filter) ([]contest.HistoryRecord, error) {
	if title, ok := filter.(contest.TitleFilter); ok {
		if best := contest.BestTitleMatch(f.records[u], title.Query); best != nil {
			return []contest.HistoryRecord{*best}, nil
		}
		return nil, nil
	}

	var out []contest.HistoryRecord
	for _, r := range f.records[u] {
		if filter.Matches(&r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) BulkReplaceForUser(ctx context.Context, u contest.Username, records []contest.HistoryRecord) error {
	f.records[u] = records
	return nil
}

func (f *fakeStore) DeleteForUser(ctx context.Context, u contest.Username) error {
	delete(f.records, u)
	return nil
}

func (f *fakeStore) FindBiggestRatingJump(ctx context.Context, u contest.Username) (*contest.RatingJump, error) {
	return contest.ComputeRatingJump(f.records[u]), nil
}

func (f *fakeStore) FindBestRanking(ctx context.Context, u contest.Username) (*contest.HistoryRecord, error) {
	return contest.BestRanking(f.records[u]), nil
}

func record(title string, start int64, rating float64, ranking int, attended bool, solved int) contest.HistoryRecord {
	return contest.HistoryRecord{
		Username:         "alice",
		ContestTitle:     title,
		ContestStartTime: start,
		Attended:         attended,
		TrendDirection:   contest.TrendUp,
		ProblemsSolved:   solved,
		Rating:           contest.Rating(rating),
		Ranking:          contest.Ranking(ranking),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// GET HISTORY
// ══════════════════════════════════════════════════════════════════════════════

func TestGetHistory_SyncsThenReturnsRecords(t *testing.T) {
	store := newFakeStore()
	store.upstream["alice"] = []contest.HistoryRecord{
		record("Weekly Contest 401", 1, 1500, 100, true, 3),
		record("Weekly Contest 402", 2, 1550, 90, true, 4),
	}
	handler := NewGetHistoryHandler(store, store)

	records, err := handler.Handle(context.Background(), GetHistoryQuery{Username: "alice"})
	require.NoError(t, err)

	assert.Len(t, records, 2)
	assert.Equal(t, 1, store.syncs)
}

func TestGetHistory_UnknownUser(t *testing.T) {
	store := newFakeStore()
	handler := NewGetHistoryHandler(store, store)

	_, err := handler.Handle(context.Background(), GetHistoryQuery{Username: "ghost"})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrUserNotFound)
}

func TestGetHistory_SecondCallHitsStoreOnly(t *testing.T) {
	store := newFakeStore()
	store.upstream["alice"] = []contest.HistoryRecord{
		record("Weekly Contest 401", 1, 1500, 100, true, 3),
	}
	handler := NewGetHistoryHandler(store, store)

	_, err := handler.Handle(context.Background(), GetHistoryQuery{Username: "alice"})
	require.NoError(t, err)

	// Drop the upstream; the populated store must now be authoritative.
	store.upstream = nil

	records, err := handler.Handle(context.Background(), GetHistoryQuery{Username: "alice"})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

// ══════════════════════════════════════════════════════════════════════════════
// GET FILTERED HISTORY
// ══════════════════════════════════════════════════════════════════════════════

func TestGetFilteredHistory_MinProblemsEmptyIsError(t *testing.T) {
	store := newFakeStore()
	store.upstream["alice"] = []contest.HistoryRecord{
		record("Weekly Contest 401", 1, 1500, 100, true, 2),
	}
	handler := NewGetFilteredHistoryHandler(store, store)

	_, err := handler.Handle(context.Background(), GetFilteredHistoryQuery{
		Username: "alice",
		Kind:     contest.FilterProblemsAtLeast,
		RawValue: "5",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNoMatchingContest)
}

func TestGetFilteredHistory_MaxProblemsEmptyIsOK(t *testing.T) {
	store := newFakeStore()
	store.upstream["alice"] = []contest.HistoryRecord{
		record("Weekly Contest 401", 1, 1500, 100, true, 4),
	}
	handler := NewGetFilteredHistoryHandler(store, store)

	records, err := handler.Handle(context.Background(), GetFilteredHistoryQuery{
		Username: "alice",
		Kind:     contest.FilterProblemsAtMost,
		RawValue: "1",
	})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestGetFilteredHistory_InvalidFilterFailsBeforeSync(t *testing.T) {
	store := newFakeStore()
	handler := NewGetFilteredHistoryHandler(store, store)

	_, err := handler.Handle(context.Background(), GetFilteredHistoryQuery{
		Username: "alice",
		Kind:     contest.FilterTrendDirection,
		RawValue: "up",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidTrendDirection)
	assert.Equal(t, 0, store.syncs, "a malformed filter must not trigger a sync")
}

func TestGetFilteredHistory_UnknownKind(t *testing.T) {
	store := newFakeStore()
	handler := NewGetFilteredHistoryHandler(store, store)

	_, err := handler.Handle(context.Background(), GetFilteredHistoryQuery{
		Username: "alice",
		Kind:     "BY_MOOD",
		RawValue: "happy",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrUnknownFilterKind)
}

func TestGetFilteredHistory_TitleReturnsSingleBestMatch(t *testing.T) {
	store := newFakeStore()
	store.upstream["alice"] = []contest.HistoryRecord{
		record("Biweekly Contest 40", 1, 1500, 100, true, 3),
		record("Weekly Contest 40", 2, 1550, 90, true, 4),
	}
	handler := NewGetFilteredHistoryHandler(store, store)

	records, err := handler.Handle(context.Background(), GetFilteredHistoryQuery{
		Username: "alice",
		Kind:     contest.FilterTitleContains,
		RawValue: "contest 40",
	})
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "Weekly Contest 40", records[0].ContestTitle)
}

// ══════════════════════════════════════════════════════════════════════════════
// GET RATING JUMP
// ══════════════════════════════════════════════════════════════════════════════

func TestGetRatingJump_FindsLargestConsecutiveIncrease(t *testing.T) {
	store := newFakeStore()
	store.upstream["alice"] = []contest.HistoryRecord{
		record("Weekly Contest 401", 1, 1500, 100, true, 3),
		record("Weekly Contest 402", 2, 1600, 90, true, 4),
		record("Weekly Contest 403", 3, 1450, 200, true, 1),
	}
	handler := NewGetRatingJumpHandler(store, store)

	jump, err := handler.Handle(context.Background(), GetRatingJumpQuery{Username: "alice"})
	require.NoError(t, err)

	require.NotNil(t, jump)
	assert.Equal(t, contest.Rating(100), jump.Jump)
	assert.Equal(t, "Weekly Contest 402", jump.Record.ContestTitle)
}

func TestGetRatingJump_SingleRecordYieldsNil(t *testing.T) {
	store := newFakeStore()
	store.upstream["alice"] = []contest.HistoryRecord{
		record("Weekly Contest 401", 1, 1500, 100, true, 3),
	}
	handler := NewGetRatingJumpHandler(store, store)

	jump, err := handler.Handle(context.Background(), GetRatingJumpQuery{Username: "alice"})
	require.NoError(t, err)
	assert.Nil(t, jump)
}

// ══════════════════════════════════════════════════════════════════════════════
// GET BEST RANKING
// ══════════════════════════════════════════════════════════════════════════════

func TestGetBestRanking_ExcludesUnrankedSentinel(t *testing.T) {
	store := newFakeStore()
	store.upstream["alice"] = []contest.HistoryRecord{
		record("Weekly Contest 401", 1, 1500, 0, false, 0),
		record("Weekly Contest 402", 2, 1550, 42, true, 4),
		record("Weekly Contest 403", 3, 1600, 120, true, 3),
	}
	handler := NewGetBestRankingHandler(store, store)

	best, err := handler.Handle(context.Background(), GetBestRankingQuery{Username: "alice"})
	require.NoError(t, err)

	assert.Equal(t, contest.Ranking(42), best.Ranking)
}

func TestGetBestRanking_AllUnranked(t *testing.T) {
	store := newFakeStore()
	store.upstream["alice"] = []contest.HistoryRecord{
		record("Weekly Contest 401", 1, 1500, 0, false, 0),
	}
	handler := NewGetBestRankingHandler(store, store)

	_, err := handler.Handle(context.Background(), GetBestRankingQuery{Username: "alice"})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrUserNotFound)
}

// ══════════════════════════════════════════════════════════════════════════════
// GET CONTEST RANKING
// ══════════════════════════════════════════════════════════════════════════════

type fakeRankingCache struct {
	data map[contest.Username]*contest.RankingSummary
}

func newFakeRankingCache() *fakeRankingCache {
	return &fakeRankingCache{data: make(map[contest.Username]*contest.RankingSummary)}
}

func (f *fakeRankingCache) Get(ctx context.Context, u contest.Username) (*contest.RankingSummary, error) {
	return f.data[u], nil
}

func (f *fakeRankingCache) Set(ctx context.Context, u contest.Username, s *contest.RankingSummary) error {
	f.data[u] = s
	return nil
}

func (f *fakeRankingCache) Invalidate(ctx context.Context, u contest.Username) error {
	delete(f.data, u)
	return nil
}

type fakeRankingProvider struct {
	summary *contest.RankingSummary
	err     error
	calls   int
}

func (f *fakeRankingProvider) FetchRankingSummary(ctx context.Context, u contest.Username) (*contest.RankingSummary, error) {
	f.calls++
	return f.summary, f.err
}

func TestGetContestRanking_CachesUpstreamResult(t *testing.T) {
	cache := newFakeRankingCache()
	provider := &fakeRankingProvider{summary: &contest.RankingSummary{
		AttendedContestsCount: 12,
		Rating:                1834.5,
		GlobalRanking:         4021,
	}}
	handler := NewGetContestRankingHandler(cache, provider, nil)

	first, err := handler.Handle(context.Background(), GetContestRankingQuery{Username: "alice"})
	require.NoError(t, err)

	second, err := handler.Handle(context.Background(), GetContestRankingQuery{Username: "alice"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, provider.calls, "second query must be served from cache")
}

func TestGetContestRanking_UnknownUser(t *testing.T) {
	handler := NewGetContestRankingHandler(newFakeRankingCache(), &fakeRankingProvider{}, nil)

	_, err := handler.Handle(context.Background(), GetContestRankingQuery{Username: "ghost"})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrUserNotFound)
}

func TestGetContestRanking_CacheFailureFallsThrough(t *testing.T) {
	provider := &fakeRankingProvider{summary: &contest.RankingSummary{Rating: 1500}}
	handler := NewGetContestRankingHandler(failingCache{}, provider, nil)

	summary, err := handler.Handle(context.Background(), GetContestRankingQuery{Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, 1500.0, summary.Rating)
}

type failingCache struct{}

func (failingCache) Get(ctx context.Context, u contest.Username) (*contest.RankingSummary, error) {
	return nil, errors.New("redis down")
}

func (failingCache) Set(ctx context.Context, u contest.Username, s *contest.RankingSummary) error {
	return errors.New("redis down")
}

func (failingCache) Invalidate(ctx context.Context, u contest.Username) error {
	return errors.New("redis down")
}

// ══════════════════════════════════════════════════════════════════════════════
// LIST PAST CONTESTS
// ══════════════════════════════════════════════════════════════════════════════

type fakeContestRepo struct {
	contests []contest.Contest
}

func (f *fakeContestRepo) ReplaceAll(ctx context.Context, contests []contest.Contest) error {
	f.contests = contests
	return nil
}

func (f *fakeContestRepo) List(ctx context.Context, page, perPage int) ([]contest.Contest, int, error) {
	start := (page - 1) * perPage
	if start >= len(f.contests) {
		return nil, len(f.contests), nil
	}
	end := start + perPage
	if end > len(f.contests) {
		end = len(f.contests)
	}
	return f.contests[start:end], len(f.contests), nil
}

func TestListPastContests_Pagination(t *testing.T) {
	repo := &fakeContestRepo{}
	for i := 0; i < 25; i++ {
		repo.contests = append(repo.contests, contest.Contest{Title: "Weekly Contest"})
	}
	handler := NewListPastContestsHandler(repo)

	page, err := handler.Handle(context.Background(), ListPastContestsQuery{Page: 3, PerPage: 10})
	require.NoError(t, err)

	assert.Len(t, page.Contests, 5)
	assert.Equal(t, 25, page.TotalCount)
	assert.Equal(t, 3, page.TotalPages)
}

func TestListPastContests_DefaultsApplied(t *testing.T) {
	handler := NewListPastContestsHandler(&fakeContestRepo{})

	page, err := handler.Handle(context.Background(), ListPastContestsQuery{})
	require.NoError(t, err)

	assert.Equal(t, 1, page.Page)
	assert.Equal(t, defaultPerPage, page.PerPage)
}

func TestListPastContests_NegativePage(t *testing.T) {
	handler := NewListPastContestsHandler(&fakeContestRepo{})

	_, err := handler.Handle(context.Background(), ListPastContestsQuery{Page: -1})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidPage)
}
