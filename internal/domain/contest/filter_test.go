package contest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leetscope/leetscope/internal/domain/shared"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name     string
		kind     FilterKind
		rawValue string
		want     Filter
	}{
		{"attended true", FilterAttended, "true", AttendedFilter{Attended: true}},
		{"attended false", FilterAttended, "false", AttendedFilter{Attended: false}},
		{"trend up", FilterTrendDirection, "UP", TrendFilter{Direction: TrendUp}},
		{"problems at least", FilterProblemsAtLeast, "3", ProblemsAtLeastFilter{Min: 3}},
		{"problems at most", FilterProblemsAtMost, "2", ProblemsAtMostFilter{Max: 2}},
		{"finish time", FilterFinishTime, "1hrs 5mins 30s", FinishTimeFilter{MaxSeconds: 3930}},
		{"rating", FilterRating, "1650.5", RatingFilter{Rating: 1650.5}},
		{"title contains", FilterTitleContains, "weekly", TitleFilter{Query: "weekly"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f, err := ParseFilter(tc.kind, tc.rawValue)
			require.NoError(t, err)
			assert.Equal(t, tc.want, f)
		})
	}
}

func TestParseFilter_InvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		kind     FilterKind
		rawValue string
		wantErr  error
	}{
		{"attended not boolean", FilterAttended, "yes please", shared.ErrInvalidInput},
		{"trend lowercase", FilterTrendDirection, "up", shared.ErrInvalidTrendDirection},
		{"trend unknown", FilterTrendDirection, "SIDEWAYS", shared.ErrInvalidTrendDirection},
		{"problems not integer", FilterProblemsAtLeast, "many", shared.ErrInvalidInput},
		{"finish time malformed", FilterFinishTime, "5xyz", shared.ErrInvalidDurationFormat},
		{"rating not number", FilterRating, "high", shared.ErrInvalidInput},
		{"unknown kind", FilterKind("COLOR_EQUALS"), "blue", shared.ErrUnknownFilterKind},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFilter(tc.kind, tc.rawValue)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
		})
	}
}

func TestFilterMatches(t *testing.T) {
	record := HistoryRecord{
		Username:       "alice",
		ContestTitle:   "Weekly Contest 390",
		Attended:       true,
		TrendDirection: TrendUp,
		ProblemsSolved: 3,
		TotalProblems:  4,
		FinishTimeSecs: 3600,
		Rating:         1650,
		Ranking:        120,
	}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"attended match", AttendedFilter{Attended: true}, true},
		{"attended mismatch", AttendedFilter{Attended: false}, false},
		{"trend match", TrendFilter{Direction: TrendUp}, true},
		{"trend mismatch", TrendFilter{Direction: TrendDown}, false},
		{"at least inclusive boundary", ProblemsAtLeastFilter{Min: 3}, true},
		{"at least above", ProblemsAtLeastFilter{Min: 4}, false},
		{"at most inclusive boundary", ProblemsAtMostFilter{Max: 3}, true},
		{"at most below", ProblemsAtMostFilter{Max: 2}, false},
		{"finish time inclusive boundary", FinishTimeFilter{MaxSeconds: 3600}, true},
		{"finish time below", FinishTimeFilter{MaxSeconds: 3599}, false},
		{"rating match", RatingFilter{Rating: 1650}, true},
		{"rating mismatch", RatingFilter{Rating: 1651}, false},
		{"title case-insensitive", TitleFilter{Query: "weekly"}, true},
		{"title no match", TitleFilter{Query: "biweekly"}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.filter.Matches(&record))
		})
	}
}

func TestFinishTimeFilter_RequiresAttendance(t *testing.T) {
	record := HistoryRecord{
		Attended:       false,
		FinishTimeSecs: 0,
	}

	// A fast finish on a contest the user never attended does not match.
	assert.False(t, FinishTimeFilter{MaxSeconds: 3600}.Matches(&record))
}

func TestRequiresNonEmptyResult(t *testing.T) {
	assert.True(t, RequiresNonEmptyResult(ProblemsAtLeastFilter{Min: 1}))
	assert.False(t, RequiresNonEmptyResult(ProblemsAtMostFilter{Max: 1}))
	assert.False(t, RequiresNonEmptyResult(AttendedFilter{Attended: true}))
}
