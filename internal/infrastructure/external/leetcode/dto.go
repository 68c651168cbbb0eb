// Package leetcode implements the LeetCode GraphQL API client.
// This package handles all communication with the leetcode.com endpoint,
// including per-user contest history, ranking summaries, and the global
// past-contest listing.
package leetcode

import (
	"encoding/json"
)

// ══════════════════════════════════════════════════════════════════════════════
// GRAPHQL RESPONSE WRAPPERS
// ══════════════════════════════════════════════════════════════════════════════

// graphqlResponse is the generic GraphQL response envelope.
type graphqlResponse[T any] struct {
	Data   T              `json:"data"`
	Errors []graphqlError `json:"errors,omitempty"`
}

// graphqlError is one entry in a GraphQL "errors" array.
type graphqlError struct {
	Message    string          `json:"message"`
	Extensions json.RawMessage `json:"extensions,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// CONTEST HISTORY DTOs
// ══════════════════════════════════════════════════════════════════════════════

// historyData is the data payload of the userContestRankingInfo query.
type historyData struct {
	UserContestRankingHistory []HistoryItemDTO `json:"userContestRankingHistory"`
}

// HistoryItemDTO is one contest in a user's contest history as returned
// by the upstream.
type HistoryItemDTO struct {
	Attended            bool          `json:"attended"`
	TrendDirection      string        `json:"trendDirection"`
	ProblemsSolved      int           `json:"problemsSolved"`
	TotalProblems       int           `json:"totalProblems"`
	FinishTimeInSeconds int64         `json:"finishTimeInSeconds"`
	Rating              float64       `json:"rating"`
	Ranking             int           `json:"ranking"`
	Contest             ContestRefDTO `json:"contest"`
}

// ContestRefDTO identifies the contest a history item belongs to.
type ContestRefDTO struct {
	Title     string `json:"title"`
	StartTime int64  `json:"startTime"`
}

// ══════════════════════════════════════════════════════════════════════════════
// RANKING SUMMARY DTOs
// ══════════════════════════════════════════════════════════════════════════════

// rankingData is the data payload of the userContestRanking query.
type rankingData struct {
	UserContestRanking *RankingDTO `json:"userContestRanking"`
}

// RankingDTO is the upstream's aggregate contest-ranking view of a user.
// The field is null for users who never attended a contest.
type RankingDTO struct {
	AttendedContestsCount int     `json:"attendedContestsCount"`
	Rating                float64 `json:"rating"`
	GlobalRanking         int     `json:"globalRanking"`
	TotalParticipants     int     `json:"totalParticipants"`
	TopPercentage         float64 `json:"topPercentage"`
}

// ══════════════════════════════════════════════════════════════════════════════
// PAST CONTEST DTOs
// ══════════════════════════════════════════════════════════════════════════════

// pastContestsData is the data payload of the pastContests query.
type pastContestsData struct {
	PastContests *ContestPageDTO `json:"pastContests"`
}

// ContestPageDTO is one page of the global past-contest listing.
// PageNum is the total page count; CurrentPage is this page's 1-based index.
type ContestPageDTO struct {
	PageNum     int              `json:"pageNum"`
	CurrentPage int              `json:"currentPage"`
	TotalNum    int              `json:"totalNum"`
	NumPerPage  int              `json:"numPerPage"`
	Data        []PastContestDTO `json:"data"`
}

// PastContestDTO is one contest in the global listing.
type PastContestDTO struct {
	Title           string       `json:"title"`
	TitleSlug       string       `json:"titleSlug"`
	StartTime       int64        `json:"startTime"`
	OriginStartTime int64        `json:"originStartTime"`
	CardImg         string       `json:"cardImg"`
	Sponsors        []SponsorDTO `json:"sponsors"`
}

// SponsorDTO is a contest sponsor in the global listing.
type SponsorDTO struct {
	Name      string `json:"name"`
	LightLogo string `json:"lightLogo"`
	DarkLogo  string `json:"darkLogo"`
}
