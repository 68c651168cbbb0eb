package contest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leetscope/leetscope/internal/domain/shared"
	"github.com/leetscope/leetscope/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// FILTER SUM TYPE
// ══════════════════════════════════════════════════════════════════════════════

// Filter is a sealed set of query criteria over a user's contest history.
// Each kind carries its own typed payload; consumers dispatch with an
// exhaustive type switch so an unhandled kind is a compile-time smell
// rather than a silent empty result.
type Filter interface {
	// Matches reports whether a record satisfies the filter. Storage
	// backends may translate the filter into their own query language,
	// but must preserve these exact semantics.
	Matches(r *HistoryRecord) bool

	isFilter()
}

// AttendedFilter matches records by exact attendance flag.
type AttendedFilter struct {
	Attended bool
}

// TrendFilter matches records by exact trend direction.
type TrendFilter struct {
	Direction TrendDirection
}

// ProblemsAtLeastFilter matches records with at least N problems solved
// (inclusive). An empty result set is an error for this kind.
type ProblemsAtLeastFilter struct {
	Min int
}

// ProblemsAtMostFilter matches records with at most N problems solved
// (inclusive). Unlike the at-least kind, an empty result is fine.
type ProblemsAtMostFilter struct {
	Max int
}

// FinishTimeFilter matches attended records whose finish time does not
// exceed the given number of seconds.
type FinishTimeFilter struct {
	MaxSeconds int64
}

// RatingFilter matches records by exact rating.
type RatingFilter struct {
	Rating Rating
}

// TitleFilter matches records whose title contains the query,
// case-insensitively. Resolves to at most one record (the single best
// match), not a list of all matches.
type TitleFilter struct {
	Query string
}

func (AttendedFilter) isFilter()        {}
func (TrendFilter) isFilter()           {}
func (ProblemsAtLeastFilter) isFilter() {}
func (ProblemsAtMostFilter) isFilter()  {}
func (FinishTimeFilter) isFilter()      {}
func (RatingFilter) isFilter()          {}
func (TitleFilter) isFilter()           {}

// Matches implements Filter.
func (f AttendedFilter) Matches(r *HistoryRecord) bool {
	return r.Attended == f.Attended
}

// Matches implements Filter.
func (f TrendFilter) Matches(r *HistoryRecord) bool {
	return r.TrendDirection == f.Direction
}

// Matches implements Filter.
func (f ProblemsAtLeastFilter) Matches(r *HistoryRecord) bool {
	return r.ProblemsSolved >= f.Min
}

// Matches implements Filter.
func (f ProblemsAtMostFilter) Matches(r *HistoryRecord) bool {
	return r.ProblemsSolved <= f.Max
}

// Matches implements Filter.
func (f FinishTimeFilter) Matches(r *HistoryRecord) bool {
	return r.Attended && r.FinishTimeSecs <= f.MaxSeconds
}

// Matches implements Filter.
func (f RatingFilter) Matches(r *HistoryRecord) bool {
	return r.Rating == f.Rating
}

// Matches implements Filter.
func (f TitleFilter) Matches(r *HistoryRecord) bool {
	return strings.Contains(strings.ToLower(r.ContestTitle), strings.ToLower(f.Query))
}

// ══════════════════════════════════════════════════════════════════════════════
// FILTER PARSING
// ══════════════════════════════════════════════════════════════════════════════

// FilterKind identifies a filter criterion as named by API callers.
type FilterKind string

const (
	FilterAttended        FilterKind = "ATTENDED"
	FilterTrendDirection  FilterKind = "TREND_DIRECTION"
	FilterProblemsAtLeast FilterKind = "PROBLEMS_SOLVED_AT_LEAST"
	FilterProblemsAtMost  FilterKind = "PROBLEMS_SOLVED_AT_MOST"
	FilterFinishTime      FilterKind = "FINISH_TIME_AT_MOST_AND_ATTENDED"
	FilterRating          FilterKind = "RATING_EQUALS"
	FilterTitleContains   FilterKind = "TITLE_CONTAINS"
)

// ParseFilter builds a typed Filter from a kind name and its raw value.
// Unknown kinds and malformed values fail fast.
func ParseFilter(kind FilterKind, rawValue string) (Filter, error) {
	switch kind {
	case FilterAttended:
		attended, err := strconv.ParseBool(rawValue)
		if err != nil {
			return nil, shared.WrapError("contest", "ParseFilter", shared.ErrInvalidInput,
				fmt.Sprintf("attended value %q is not a boolean", rawValue), err)
		}
		return AttendedFilter{Attended: attended}, nil

	case FilterTrendDirection:
		direction, err := ParseTrendDirection(rawValue)
		if err != nil {
			return nil, err
		}
		return TrendFilter{Direction: direction}, nil

	case FilterProblemsAtLeast:
		n, err := strconv.Atoi(rawValue)
		if err != nil {
			return nil, shared.WrapError("contest", "ParseFilter", shared.ErrInvalidInput,
				fmt.Sprintf("problems-solved value %q is not an integer", rawValue), err)
		}
		return ProblemsAtLeastFilter{Min: n}, nil

	case FilterProblemsAtMost:
		n, err := strconv.Atoi(rawValue)
		if err != nil {
			return nil, shared.WrapError("contest", "ParseFilter", shared.ErrInvalidInput,
				fmt.Sprintf("problems-solved value %q is not an integer", rawValue), err)
		}
		return ProblemsAtMostFilter{Max: n}, nil

	case FilterFinishTime:
		seconds, err := timeutil.ParseCompactDuration(rawValue)
		if err != nil {
			return nil, shared.WrapError("contest", "ParseFilter", shared.ErrInvalidDurationFormat,
				fmt.Sprintf("finish-time value %q is not a valid duration", rawValue), err)
		}
		return FinishTimeFilter{MaxSeconds: seconds}, nil

	case FilterRating:
		rating, err := strconv.ParseFloat(rawValue, 64)
		if err != nil {
			return nil, shared.WrapError("contest", "ParseFilter", shared.ErrInvalidInput,
				fmt.Sprintf("rating value %q is not a number", rawValue), err)
		}
		return RatingFilter{Rating: Rating(rating)}, nil

	case FilterTitleContains:
		return TitleFilter{Query: rawValue}, nil

	default:
		return nil, shared.WrapError("contest", "ParseFilter", shared.ErrUnknownFilterKind,
			fmt.Sprintf("unsupported filter kind %q", kind), nil)
	}
}

// RequiresNonEmptyResult reports whether an empty result set under this
// filter is an error rather than a legitimate answer. Only the
// at-least kind carries this behavior; its at-most counterpart permits
// an empty result. The asymmetry is preserved deliberately.
func RequiresNonEmptyResult(f Filter) bool {
	_, ok := f.(ProblemsAtLeastFilter)
	return ok
}
