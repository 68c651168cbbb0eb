// Package http implements the REST API for LeetScope.
package http

import (
	"net/http"
	"time"

	"github.com/leetscope/leetscope/internal/application/command"
	"github.com/leetscope/leetscope/internal/application/query"
	"github.com/leetscope/leetscope/internal/domain/contest"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "LeetScope API",
		"version":     "v1",
		"description": "Contest history synchronization and query engine for LeetCode",
		"endpoints": map[string]string{
			"health":          "/health",
			"history":         "/api/v1/users/{username}/contests",
			"rating_jump":     "/api/v1/users/{username}/contests/rating-jump",
			"best_ranking":    "/api/v1/users/{username}/contests/best-ranking",
			"contest_ranking": "/api/v1/users/{username}/contest-ranking",
			"contests":        "/api/v1/contests",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": status.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE DTOs
// ══════════════════════════════════════════════════════════════════════════════

// HistoryRecordResponse is the wire form of one history record.
type HistoryRecordResponse struct {
	ContestTitle     string  `json:"contest_title"`
	ContestStartTime int64   `json:"contest_start_time"`
	Attended         bool    `json:"attended"`
	TrendDirection   string  `json:"trend_direction"`
	ProblemsSolved   int     `json:"problems_solved"`
	TotalProblems    int     `json:"total_problems"`
	FinishTimeSecs   int64   `json:"finish_time_in_seconds"`
	Rating           float64 `json:"rating"`
	Ranking          int     `json:"ranking"`
}

// RatingJumpResponse is the wire form of the biggest rating jump.
type RatingJumpResponse struct {
	Jump           float64               `json:"jump"`
	PreviousRating float64               `json:"previous_rating"`
	NewRating      float64               `json:"new_rating"`
	Contest        HistoryRecordResponse `json:"contest"`
}

// ContestResponse is the wire form of one global-listing contest.
type ContestResponse struct {
	Title           string            `json:"title"`
	TitleSlug       string            `json:"title_slug"`
	StartTime       int64             `json:"start_time"`
	OriginStartTime int64             `json:"origin_start_time"`
	CardImage       string            `json:"card_img,omitempty"`
	Sponsors        []contest.Sponsor `json:"sponsors,omitempty"`
}

func toHistoryRecordResponse(rec contest.HistoryRecord) HistoryRecordResponse {
	return HistoryRecordResponse{
		ContestTitle:     rec.ContestTitle,
		ContestStartTime: rec.ContestStartTime,
		Attended:         rec.Attended,
		TrendDirection:   rec.TrendDirection.String(),
		ProblemsSolved:   rec.ProblemsSolved,
		TotalProblems:    rec.TotalProblems,
		FinishTimeSecs:   rec.FinishTimeSecs,
		Rating:           float64(rec.Rating),
		Ranking:          int(rec.Ranking),
	}
}

func toHistoryRecordResponses(records []contest.HistoryRecord) []HistoryRecordResponse {
	out := make([]HistoryRecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toHistoryRecordResponse(rec))
	}
	return out
}

func toContestResponses(contests []contest.Contest) []ContestResponse {
	out := make([]ContestResponse, 0, len(contests))
	for _, c := range contests {
		out = append(out, ContestResponse{
			Title:           c.Title,
			TitleSlug:       c.TitleSlug,
			StartTime:       c.StartTime,
			OriginStartTime: c.OriginStartTime,
			CardImage:       c.CardImage,
			Sponsors:        c.Sponsors,
		})
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// CONTEST HISTORY HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetHistory handles GET /api/v1/users/{username}/contests.
// With filter/value query parameters it returns the filtered subset,
// otherwise the full history.
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	username := contest.Username(r.PathValue("username"))

	filterKind := getQueryParam(r, "filter", "")
	if filterKind != "" {
		s.handleGetFilteredHistory(w, r, username, filterKind)
		return
	}

	records, err := s.deps.GetHistoryHandler.Handle(r.Context(), query.GetHistoryQuery{
		Username: username,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSONWithMeta(w, r, http.StatusOK, toHistoryRecordResponses(records), &ResponseMeta{
		TotalCount: len(records),
	})
}

// handleGetFilteredHistory serves the filter branch of the history endpoint.
func (s *Server) handleGetFilteredHistory(w http.ResponseWriter, r *http.Request, username contest.Username, filterKind string) {
	records, err := s.deps.GetFilteredHistoryHandler.Handle(r.Context(), query.GetFilteredHistoryQuery{
		Username: username,
		Kind:     contest.FilterKind(filterKind),
		RawValue: getQueryParam(r, "value", ""),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSONWithMeta(w, r, http.StatusOK, toHistoryRecordResponses(records), &ResponseMeta{
		TotalCount: len(records),
	})
}

// handleEvictHistory handles DELETE /api/v1/users/{username}/contests.
func (s *Server) handleEvictHistory(w http.ResponseWriter, r *http.Request) {
	username := contest.Username(r.PathValue("username"))

	err := s.deps.EvictHistoryHandler.Handle(r.Context(), command.EvictHistoryCommand{
		Username: username,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "evicted",
		"username": username.String(),
	})
}

// handleGetRatingJump handles GET /api/v1/users/{username}/contests/rating-jump.
func (s *Server) handleGetRatingJump(w http.ResponseWriter, r *http.Request) {
	username := contest.Username(r.PathValue("username"))

	jump, err := s.deps.GetRatingJumpHandler.Handle(r.Context(), query.GetRatingJumpQuery{
		Username: username,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if jump == nil {
		writeJSONError(w, http.StatusNotFound, "not_enough_history",
			"At least two contests are required to compute a rating jump")
		return
	}

	writeJSON(w, http.StatusOK, RatingJumpResponse{
		Jump:           float64(jump.Jump),
		PreviousRating: float64(jump.PreviousRating),
		NewRating:      float64(jump.NewRating),
		Contest:        toHistoryRecordResponse(jump.Record),
	})
}

// handleGetBestRanking handles GET /api/v1/users/{username}/contests/best-ranking.
func (s *Server) handleGetBestRanking(w http.ResponseWriter, r *http.Request) {
	username := contest.Username(r.PathValue("username"))

	record, err := s.deps.GetBestRankingHandler.Handle(r.Context(), query.GetBestRankingQuery{
		Username: username,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toHistoryRecordResponse(*record))
}

// handleGetContestRanking handles GET /api/v1/users/{username}/contest-ranking.
func (s *Server) handleGetContestRanking(w http.ResponseWriter, r *http.Request) {
	username := contest.Username(r.PathValue("username"))

	summary, err := s.deps.GetContestRankingHandler.Handle(r.Context(), query.GetContestRankingQuery{
		Username: username,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// ══════════════════════════════════════════════════════════════════════════════
// GLOBAL CONTEST LISTING HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListContests handles GET /api/v1/contests.
func (s *Server) handleListContests(w http.ResponseWriter, r *http.Request) {
	page, err := s.deps.ListPastContestsHandler.Handle(r.Context(), query.ListPastContestsQuery{
		Page:    getQueryParamInt(r, "page", 0),
		PerPage: getQueryParamInt(r, "per_page", 0),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSONWithMeta(w, r, http.StatusOK, toContestResponses(page.Contests), &ResponseMeta{
		TotalCount: page.TotalCount,
		Page:       page.Page,
		PageSize:   page.PerPage,
		HasMore:    page.Page < page.TotalPages,
	})
}

// handleRefreshContests handles POST /api/v1/contests/refresh.
func (s *Server) handleRefreshContests(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.RefreshContestsHandler.Handle(r.Context(), command.RefreshContestsCommand{})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":        result.RunID,
		"contest_count": result.ContestCount,
		"duration_ms":   result.Duration.Milliseconds(),
		"refreshed_at":  result.RefreshedAt.Format(time.RFC3339),
	})
}
