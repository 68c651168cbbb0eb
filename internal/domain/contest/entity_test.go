package contest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(title string, start int64, rating float64, ranking int) HistoryRecord {
	return HistoryRecord{
		Username:         "alice",
		ContestTitle:     title,
		ContestStartTime: start,
		Rating:           Rating(rating),
		Ranking:          Ranking(ranking),
	}
}

func TestComputeRatingJump(t *testing.T) {
	records := []HistoryRecord{
		rec("Weekly Contest 100", 1000, 1500, 200),
		rec("Weekly Contest 101", 2000, 1600, 150),
		rec("Weekly Contest 102", 3000, 1450, 900),
	}

	jump := ComputeRatingJump(records)
	require.NotNil(t, jump)
	assert.Equal(t, Rating(100), jump.Jump)
	assert.Equal(t, Rating(1500), jump.PreviousRating)
	assert.Equal(t, Rating(1600), jump.NewRating)
	assert.Equal(t, "Weekly Contest 101", jump.Record.ContestTitle)
}

func TestComputeRatingJump_OrdersByStartTime(t *testing.T) {
	// Same data, shuffled: the computation must sort chronologically first.
	records := []HistoryRecord{
		rec("Weekly Contest 102", 3000, 1450, 900),
		rec("Weekly Contest 100", 1000, 1500, 200),
		rec("Weekly Contest 101", 2000, 1600, 150),
	}

	jump := ComputeRatingJump(records)
	require.NotNil(t, jump)
	assert.Equal(t, Rating(100), jump.Jump)
	assert.Equal(t, "Weekly Contest 101", jump.Record.ContestTitle)
}

func TestComputeRatingJump_TieBrokenByEarliest(t *testing.T) {
	records := []HistoryRecord{
		rec("Weekly Contest 1", 1000, 1500, 1),
		rec("Weekly Contest 2", 2000, 1550, 2),
		rec("Weekly Contest 3", 3000, 1500, 3),
		rec("Weekly Contest 4", 4000, 1550, 4),
	}

	jump := ComputeRatingJump(records)
	require.NotNil(t, jump)
	assert.Equal(t, Rating(50), jump.Jump)
	assert.Equal(t, "Weekly Contest 2", jump.Record.ContestTitle)
}

func TestComputeRatingJump_AllDeclines(t *testing.T) {
	// The biggest jump can be negative - the least bad decline wins.
	records := []HistoryRecord{
		rec("Weekly Contest 1", 1000, 1600, 1),
		rec("Weekly Contest 2", 2000, 1550, 2),
		rec("Weekly Contest 3", 3000, 1540, 3),
	}

	jump := ComputeRatingJump(records)
	require.NotNil(t, jump)
	assert.Equal(t, Rating(-10), jump.Jump)
	assert.Equal(t, "Weekly Contest 3", jump.Record.ContestTitle)
}

func TestComputeRatingJump_TooFewRecords(t *testing.T) {
	assert.Nil(t, ComputeRatingJump(nil))
	assert.Nil(t, ComputeRatingJump([]HistoryRecord{rec("Weekly Contest 1", 1000, 1500, 1)}))
}

func TestBestRanking(t *testing.T) {
	records := []HistoryRecord{
		rec("Weekly Contest 1", 1000, 1500, 120),
		rec("Weekly Contest 2", 2000, 1550, 45),
		rec("Weekly Contest 3", 3000, 1540, 300),
	}

	best := BestRanking(records)
	require.NotNil(t, best)
	assert.Equal(t, Ranking(45), best.Ranking)
	assert.Equal(t, "Weekly Contest 2", best.ContestTitle)
}

func TestBestRanking_ExcludesUnrankedSentinel(t *testing.T) {
	records := []HistoryRecord{
		rec("Weekly Contest 1", 1000, 1500, 0),
		rec("Weekly Contest 2", 2000, 1550, 77),
	}

	best := BestRanking(records)
	require.NotNil(t, best)
	assert.Equal(t, Ranking(77), best.Ranking)
}

func TestBestRanking_AllUnranked(t *testing.T) {
	records := []HistoryRecord{
		rec("Weekly Contest 1", 1000, 1500, 0),
		rec("Weekly Contest 2", 2000, 1550, 0),
	}

	assert.Nil(t, BestRanking(records))
	assert.Nil(t, BestRanking(nil))
}

func TestBestTitleMatch(t *testing.T) {
	records := []HistoryRecord{
		rec("Weekly Contest 390", 1000, 1500, 1),
		rec("Biweekly Contest 120", 2000, 1550, 2),
	}

	match := BestTitleMatch(records, "biweekly")
	require.NotNil(t, match)
	assert.Equal(t, "Biweekly Contest 120", match.ContestTitle)

	assert.Nil(t, BestTitleMatch(records, "monthly"))
}

func TestParseTrendDirection(t *testing.T) {
	for _, valid := range []string{"UP", "DOWN", "NONE"} {
		direction, err := ParseTrendDirection(valid)
		assert.NoError(t, err)
		assert.Equal(t, TrendDirection(valid), direction)
	}

	// Case-sensitive: lowercase is rejected.
	for _, invalid := range []string{"up", "down", "Sideways", ""} {
		_, err := ParseTrendDirection(invalid)
		assert.Error(t, err, "expected error for %q", invalid)
	}
}

func TestRankingIsRanked(t *testing.T) {
	assert.False(t, Ranking(0).IsRanked())
	assert.True(t, Ranking(1).IsRanked())
}

func TestUsernameIsValid(t *testing.T) {
	assert.True(t, Username("neal_wu").IsValid())
	assert.False(t, Username("").IsValid())
	assert.False(t, Username("has space").IsValid())
}
