// Package contest contains the domain model for LeetCode contest history.
// This is the core of the business logic - no external dependencies here.
package contest

import (
	"sort"
	"strings"
	"time"

	"github.com/leetscope/leetscope/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Username represents a LeetCode username.
type Username string

// IsValid checks that the username is non-empty and contains no whitespace.
func (u Username) IsValid() bool {
	s := string(u)
	return len(s) >= 1 && len(s) <= 64 && !strings.ContainsAny(s, " \t\n\r")
}

// String returns the string representation of the username.
func (u Username) String() string {
	return string(u)
}

// Rating represents a contest rating.
type Rating float64

// Ranking represents a user's placement in a single contest.
// A value of 0 is the "unranked" sentinel used by the upstream for
// contests where the user received no placement; it is not a real rank.
type Ranking int

// IsRanked reports whether this is a real placement.
func (r Ranking) IsRanked() bool {
	return r > 0
}

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// TrendDirection is the rating trend reported by the upstream for a contest.
type TrendDirection string

const (
	TrendUp   TrendDirection = "UP"
	TrendDown TrendDirection = "DOWN"
	TrendNone TrendDirection = "NONE"
)

// IsValid checks that the trend direction is one of the known values.
// The comparison is case-sensitive: "up" is not a valid trend.
func (t TrendDirection) IsValid() bool {
	switch t {
	case TrendUp, TrendDown, TrendNone:
		return true
	default:
		return false
	}
}

// String returns the string representation of the trend direction.
func (t TrendDirection) String() string {
	return string(t)
}

// ParseTrendDirection validates a raw trend value.
func ParseTrendDirection(raw string) (TrendDirection, error) {
	t := TrendDirection(raw)
	if !t.IsValid() {
		return "", shared.ErrInvalidTrendDirection
	}
	return t, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// HistoryRecord is one entry in a user's contest history.
type HistoryRecord struct {
	ID               int64
	Username         Username
	ContestTitle     string
	ContestStartTime int64 // unix seconds
	Attended         bool
	TrendDirection   TrendDirection
	ProblemsSolved   int
	TotalProblems    int
	FinishTimeSecs   int64
	Rating           Rating
	Ranking          Ranking
	SyncedAt         time.Time
}

// Sponsor is a contest sponsor as reported by the upstream listing.
type Sponsor struct {
	Name      string `json:"name"`
	LightLogo string `json:"light_logo"`
	DarkLogo  string `json:"dark_logo"`
}

// Contest is one entry in the global past-contest listing.
type Contest struct {
	ID              int64
	Title           string
	TitleSlug       string
	StartTime       int64
	OriginStartTime int64
	CardImage       string
	Sponsors        []Sponsor
	SyncedAt        time.Time
}

// RankingSummary is the upstream's aggregate contest-ranking view of a user.
type RankingSummary struct {
	AttendedContestsCount int     `json:"attended_contests_count"`
	Rating                float64 `json:"rating"`
	GlobalRanking         int     `json:"global_ranking"`
	TotalParticipants     int     `json:"total_participants"`
	TopPercentage         float64 `json:"top_percentage"`
}

// RatingJump describes the largest rating increase between two
// chronologically adjacent contests.
type RatingJump struct {
	Jump           Rating
	PreviousRating Rating
	NewRating      Rating
	Record         HistoryRecord // the later of the two contests
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN LOGIC
// ══════════════════════════════════════════════════════════════════════════════

// ComputeRatingJump finds the pair of temporally adjacent records with the
// maximum rating increase. Records are ordered by contest start time
// ascending before scanning. Ties are broken by the earliest occurrence.
// Returns nil if fewer than two records exist.
func ComputeRatingJump(records []HistoryRecord) *RatingJump {
	if len(records) < 2 {
		return nil
	}

	ordered := make([]HistoryRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ContestStartTime < ordered[j].ContestStartTime
	})

	best := RatingJump{
		Jump:           ordered[1].Rating - ordered[0].Rating,
		PreviousRating: ordered[0].Rating,
		NewRating:      ordered[1].Rating,
		Record:         ordered[1],
	}
	for i := 2; i < len(ordered); i++ {
		jump := ordered[i].Rating - ordered[i-1].Rating
		if jump > best.Jump {
			best = RatingJump{
				Jump:           jump,
				PreviousRating: ordered[i-1].Rating,
				NewRating:      ordered[i].Rating,
				Record:         ordered[i],
			}
		}
	}
	return &best
}

// BestRanking returns the record with the numerically smallest ranking,
// excluding the ranking==0 "unranked" sentinel. Returns nil if no ranked
// record exists.
func BestRanking(records []HistoryRecord) *HistoryRecord {
	var best *HistoryRecord
	for i := range records {
		if !records[i].Ranking.IsRanked() {
			continue
		}
		if best == nil || records[i].Ranking < best.Ranking {
			best = &records[i]
		}
	}
	return best
}

// BestTitleMatch returns the single best match for a case-insensitive
// substring search over contest titles. Among all matches the shortest
// title wins (the tightest fit for the query); earlier records break ties.
// Returns nil when nothing matches.
func BestTitleMatch(records []HistoryRecord, query string) *HistoryRecord {
	needle := strings.ToLower(query)
	var best *HistoryRecord
	for i := range records {
		if !strings.Contains(strings.ToLower(records[i].ContestTitle), needle) {
			continue
		}
		if best == nil || len(records[i].ContestTitle) < len(best.ContestTitle) {
			best = &records[i]
		}
	}
	return best
}
