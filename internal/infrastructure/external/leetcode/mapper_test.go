package leetcode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leetscope/leetscope/internal/domain/contest"
)

func TestMapper_HistoryRecordFromDTO(t *testing.T) {
	mapper := NewMapper()
	syncedAt := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	dto := HistoryItemDTO{
		Attended:            true,
		TrendDirection:      "DOWN",
		ProblemsSolved:      2,
		TotalProblems:       4,
		FinishTimeInSeconds: 5400,
		Rating:              1499.5,
		Ranking:             3200,
		Contest: ContestRefDTO{
			Title:     "Biweekly Contest 128",
			StartTime: 1713018600,
		},
	}

	record, err := mapper.HistoryRecordFromDTO(&dto, "alice", syncedAt)
	require.NoError(t, err)

	assert.Equal(t, contest.Username("alice"), record.Username)
	assert.Equal(t, "Biweekly Contest 128", record.ContestTitle)
	assert.Equal(t, int64(1713018600), record.ContestStartTime)
	assert.True(t, record.Attended)
	assert.Equal(t, contest.TrendDown, record.TrendDirection)
	assert.Equal(t, 2, record.ProblemsSolved)
	assert.Equal(t, int64(5400), record.FinishTimeSecs)
	assert.Equal(t, contest.Rating(1499.5), record.Rating)
	assert.Equal(t, contest.Ranking(3200), record.Ranking)
	assert.Equal(t, syncedAt, record.SyncedAt)
}

func TestMapper_HistoryRecordFromDTO_UnknownTrend(t *testing.T) {
	mapper := NewMapper()

	dto := HistoryItemDTO{TrendDirection: "SIDEWAYS"}

	record, err := mapper.HistoryRecordFromDTO(&dto, "alice", time.Now())
	require.NoError(t, err)
	assert.Equal(t, contest.TrendNone, record.TrendDirection)
}

func TestMapper_HistoryRecordFromDTO_Nil(t *testing.T) {
	mapper := NewMapper()

	_, err := mapper.HistoryRecordFromDTO(nil, "alice", time.Now())
	assert.ErrorIs(t, err, ErrNilDTO)
}

func TestMapper_ContestFromDTO(t *testing.T) {
	mapper := NewMapper()
	syncedAt := time.Now()

	dto := PastContestDTO{
		Title:           "Weekly Contest 390",
		TitleSlug:       "weekly-contest-390",
		StartTime:       1711852200,
		OriginStartTime: 1711852200,
		CardImg:         "https://assets.leetcode.com/card.png",
		Sponsors: []SponsorDTO{
			{Name: "LeetCode", LightLogo: "light.png", DarkLogo: "dark.png"},
		},
	}

	c, err := mapper.ContestFromDTO(&dto, syncedAt)
	require.NoError(t, err)

	assert.Equal(t, "Weekly Contest 390", c.Title)
	assert.Equal(t, "weekly-contest-390", c.TitleSlug)
	assert.Equal(t, "https://assets.leetcode.com/card.png", c.CardImage)
	require.Len(t, c.Sponsors, 1)
	assert.Equal(t, "LeetCode", c.Sponsors[0].Name)
	assert.Equal(t, "light.png", c.Sponsors[0].LightLogo)
}

func TestMapper_RankingSummaryFromDTO(t *testing.T) {
	mapper := NewMapper()

	summary, err := mapper.RankingSummaryFromDTO(&RankingDTO{
		AttendedContestsCount: 25,
		Rating:                1843.2,
		GlobalRanking:         15000,
		TotalParticipants:     500000,
		TopPercentage:         3.0,
	})
	require.NoError(t, err)

	assert.Equal(t, 25, summary.AttendedContestsCount)
	assert.Equal(t, 1843.2, summary.Rating)
	assert.Equal(t, 3.0, summary.TopPercentage)

	_, err = mapper.RankingSummaryFromDTO(nil)
	assert.ErrorIs(t, err, ErrNilDTO)
}
