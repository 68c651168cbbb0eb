package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leetscope/leetscope/internal/domain/contest"
)

// ══════════════════════════════════════════════════════════════════════════════
// FAKES
// ══════════════════════════════════════════════════════════════════════════════

type fakeHistoryRepo struct {
	store        map[contest.Username][]contest.HistoryRecord
	existsErr    error
	replaceErr   error
	replaceCalls int
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{store: make(map[contest.Username][]contest.HistoryRecord)}
}

func (f *fakeHistoryRepo) ExistsForUser(ctx context.Context, u contest.Username) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return len(f.store[u]) > 0, nil
}

func (f *fakeHistoryRepo) FindAllForUser(ctx context.Context, u contest.Username) ([]contest.HistoryRecord, error) {
	return f.store[u], nil
}

func (f *fakeHistoryRepo) FindForUserWhere(ctx context.Context, u contest.Username, filter contest.Filter) ([]contest.HistoryRecord, error) {
	if title, ok := filter.(contest.TitleFilter); ok {
		if best := contest.BestTitleMatch(f.store[u], title.Query); best != nil {
			return []contest.HistoryRecord{*best}, nil
		}
		return nil, nil
	}

	var out []contest.HistoryRecord
	for _, r := range f.store[u] {
		if filter.Matches(&r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeHistoryRepo) BulkReplaceForUser(ctx context.Context, u contest.Username, records []contest.HistoryRecord) error {
	f.replaceCalls++
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.store[u] = records
	return nil
}

func (f *fakeHistoryRepo) DeleteForUser(ctx context.Context, u contest.Username) error {
	delete(f.store, u)
	return nil
}

func (f *fakeHistoryRepo) FindBiggestRatingJump(ctx context.Context, u contest.Username) (*contest.RatingJump, error) {
	return contest.ComputeRatingJump(f.store[u]), nil
}

func (f *fakeHistoryRepo) FindBestRanking(ctx context.Context, u contest.Username) (*contest.HistoryRecord, error) {
	return contest.BestRanking(f.store[u]), nil
}

type fakeProvider struct {
	records map[contest.Username][]contest.HistoryRecord
	err     error
	calls   int
}

func (f *fakeProvider) FetchContestHistory(ctx context.Context, u contest.Username) ([]contest.HistoryRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records[u], nil
}

type fakeInvalidator struct {
	invalidated []contest.Username
}

func (f *fakeInvalidator) Invalidate(ctx context.Context, u contest.Username) error {
	f.invalidated = append(f.invalidated, u)
	return nil
}

func historyOf(titles ...string) []contest.HistoryRecord {
	records := make([]contest.HistoryRecord, 0, len(titles))
	for i, title := range titles {
		records = append(records, contest.HistoryRecord{
			Username:         "alice",
			ContestTitle:     title,
			ContestStartTime: int64(1700000000 + i*604800),
			Attended:         true,
			TrendDirection:   contest.TrendUp,
			Rating:           contest.Rating(1500 + 10*i),
		})
	}
	return records
}

// ══════════════════════════════════════════════════════════════════════════════
// TESTS
// ══════════════════════════════════════════════════════════════════════════════

func TestSyncHistory_PopulatesEmptyStore(t *testing.T) {
	repo := newFakeHistoryRepo()
	provider := &fakeProvider{records: map[contest.Username][]contest.HistoryRecord{
		"alice": historyOf("Weekly Contest 401", "Weekly Contest 402"),
	}}
	handler := NewSyncHistoryHandler(repo, provider, nil, nil)

	result, err := handler.Handle(context.Background(), SyncHistoryCommand{Username: "alice"})
	require.NoError(t, err)

	assert.True(t, result.Performed)
	assert.Equal(t, 2, result.RecordCount)
	assert.Len(t, repo.store["alice"], 2)
}

func TestSyncHistory_SkipsWhenAlreadyPopulated(t *testing.T) {
	repo := newFakeHistoryRepo()
	repo.store["alice"] = historyOf("Weekly Contest 400")
	provider := &fakeProvider{records: map[contest.Username][]contest.HistoryRecord{
		"alice": historyOf("Weekly Contest 401"),
	}}
	handler := NewSyncHistoryHandler(repo, provider, nil, nil)

	result, err := handler.Handle(context.Background(), SyncHistoryCommand{Username: "alice"})
	require.NoError(t, err)

	assert.False(t, result.Performed)
	assert.Equal(t, 0, provider.calls, "populated store must not trigger an upstream fetch")
	assert.Equal(t, "Weekly Contest 400", repo.store["alice"][0].ContestTitle)
}

func TestSyncHistory_SoftNoOpWhenUpstreamEmpty(t *testing.T) {
	repo := newFakeHistoryRepo()
	provider := &fakeProvider{records: map[contest.Username][]contest.HistoryRecord{}}
	handler := NewSyncHistoryHandler(repo, provider, nil, nil)

	result, err := handler.Handle(context.Background(), SyncHistoryCommand{Username: "ghost"})
	require.NoError(t, err)

	assert.False(t, result.Performed)
	assert.True(t, result.UpstreamEmpty)
	assert.Equal(t, 0, repo.replaceCalls, "nothing may be written for an unknown user")
}

func TestSyncHistory_ForceReplacesPopulatedStore(t *testing.T) {
	repo := newFakeHistoryRepo()
	repo.store["alice"] = historyOf("Weekly Contest 400")
	provider := &fakeProvider{records: map[contest.Username][]contest.HistoryRecord{
		"alice": historyOf("Weekly Contest 401", "Weekly Contest 402", "Weekly Contest 403"),
	}}
	handler := NewSyncHistoryHandler(repo, provider, nil, nil)

	result, err := handler.Handle(context.Background(), SyncHistoryCommand{Username: "alice", Force: true})
	require.NoError(t, err)

	assert.True(t, result.Performed)
	assert.Len(t, repo.store["alice"], 3, "old records must be fully replaced, never merged")
}

func TestSyncHistory_UpstreamErrorLeavesStoreUntouched(t *testing.T) {
	repo := newFakeHistoryRepo()
	provider := &fakeProvider{err: errors.New("upstream down")}
	handler := NewSyncHistoryHandler(repo, provider, nil, nil)

	_, err := handler.Handle(context.Background(), SyncHistoryCommand{Username: "alice"})
	require.Error(t, err)
	assert.Equal(t, 0, repo.replaceCalls)
}

func TestSyncHistory_InvalidUsername(t *testing.T) {
	handler := NewSyncHistoryHandler(newFakeHistoryRepo(), &fakeProvider{}, nil, nil)

	_, err := handler.Handle(context.Background(), SyncHistoryCommand{Username: ""})
	require.Error(t, err)
}

func TestFetchAndStore_ReturnsFreshRecordsAndInvalidates(t *testing.T) {
	repo := newFakeHistoryRepo()
	repo.store["alice"] = historyOf("Weekly Contest 400")
	invalidator := &fakeInvalidator{}
	provider := &fakeProvider{records: map[contest.Username][]contest.HistoryRecord{
		"alice": historyOf("Weekly Contest 401", "Weekly Contest 402"),
	}}
	handler := NewSyncHistoryHandler(repo, provider, invalidator, nil)

	records, err := handler.FetchAndStore(context.Background(), "alice")
	require.NoError(t, err)

	assert.Len(t, records, 2)
	assert.Equal(t, []contest.Username{"alice"}, invalidator.invalidated)
}

func TestEvictHistory_DropsDataAndInvalidatesCache(t *testing.T) {
	repo := newFakeHistoryRepo()
	repo.store["alice"] = historyOf("Weekly Contest 400")
	invalidator := &fakeInvalidator{}
	handler := NewEvictHistoryHandler(repo, invalidator, nil)

	err := handler.Handle(context.Background(), EvictHistoryCommand{Username: "alice"})
	require.NoError(t, err)

	assert.Empty(t, repo.store["alice"])
	assert.Equal(t, []contest.Username{"alice"}, invalidator.invalidated)
}

func TestEvictHistory_NextSyncFetchesUpstreamAgain(t *testing.T) {
	repo := newFakeHistoryRepo()
	provider := &fakeProvider{records: map[contest.Username][]contest.HistoryRecord{
		"alice": historyOf("Weekly Contest 400"),
	}}
	sync := NewSyncHistoryHandler(repo, provider, nil, nil)
	evict := NewEvictHistoryHandler(repo, nil, nil)

	require.NoError(t, sync.EnsureSynchronized(context.Background(), "alice"))
	require.Equal(t, 1, provider.calls)

	// While populated, repeated reads never go upstream.
	require.NoError(t, sync.EnsureSynchronized(context.Background(), "alice"))
	require.Equal(t, 1, provider.calls)

	err := evict.Handle(context.Background(), EvictHistoryCommand{Username: "alice"})
	require.NoError(t, err)

	// The first read after eviction re-fetches, exactly once.
	require.NoError(t, sync.EnsureSynchronized(context.Background(), "alice"))
	assert.Equal(t, 2, provider.calls)
	assert.Len(t, repo.store["alice"], 1)

	require.NoError(t, sync.EnsureSynchronized(context.Background(), "alice"))
	assert.Equal(t, 2, provider.calls)
}

func TestEvictHistory_AbsentUserIsNoError(t *testing.T) {
	handler := NewEvictHistoryHandler(newFakeHistoryRepo(), nil, nil)

	err := handler.Handle(context.Background(), EvictHistoryCommand{Username: "ghost"})
	require.NoError(t, err)
}

// ══════════════════════════════════════════════════════════════════════════════
// REFRESH CONTESTS
// ══════════════════════════════════════════════════════════════════════════════

type fakeContestRepo struct {
	contests []contest.Contest
	replaced int
}

func (f *fakeContestRepo) ReplaceAll(ctx context.Context, contests []contest.Contest) error {
	f.replaced++
	f.contests = contests
	return nil
}

func (f *fakeContestRepo) List(ctx context.Context, page, perPage int) ([]contest.Contest, int, error) {
	return f.contests, len(f.contests), nil
}

type fakeContestProvider struct {
	contests []contest.Contest
	err      error
}

func (f *fakeContestProvider) FetchAllContests(ctx context.Context) ([]contest.Contest, error) {
	return f.contests, f.err
}

func TestRefreshContests_PersistsAggregatedListing(t *testing.T) {
	repo := &fakeContestRepo{}
	provider := &fakeContestProvider{contests: []contest.Contest{
		{Title: "Weekly Contest 405", TitleSlug: "weekly-contest-405"},
		{Title: "Weekly Contest 404", TitleSlug: "weekly-contest-404"},
	}}
	handler := NewRefreshContestsHandler(repo, provider, nil)

	result, err := handler.Handle(context.Background(), RefreshContestsCommand{})
	require.NoError(t, err)

	assert.Equal(t, 2, result.ContestCount)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 1, repo.replaced)
}

func TestRefreshContests_EmptyAggregationKeepsListing(t *testing.T) {
	repo := &fakeContestRepo{contests: []contest.Contest{{Title: "Weekly Contest 400"}}}
	provider := &fakeContestProvider{}
	handler := NewRefreshContestsHandler(repo, provider, nil)

	result, err := handler.Handle(context.Background(), RefreshContestsCommand{})
	require.NoError(t, err)

	assert.Equal(t, 0, result.ContestCount)
	assert.Equal(t, 0, repo.replaced, "an empty aggregation must not wipe the stored listing")
}
