package leetcode

import (
	"errors"
	"time"

	"github.com/leetscope/leetscope/internal/domain/contest"
)

// ErrNilDTO is returned when a nil DTO is passed to a mapping function.
var ErrNilDTO = errors.New("nil DTO")

// ══════════════════════════════════════════════════════════════════════════════
// MAPPER - DTO to Domain Entity transformations
// ══════════════════════════════════════════════════════════════════════════════

// Mapper handles transformation between LeetCode API DTOs and domain
// entities. This follows the Anti-Corruption Layer pattern from DDD,
// protecting our domain from external API changes.
type Mapper struct{}

// NewMapper creates a new Mapper instance.
func NewMapper() *Mapper {
	return &Mapper{}
}

// HistoryRecordFromDTO converts one upstream history item to a domain
// record stamped with the target username and the given sync time.
func (m *Mapper) HistoryRecordFromDTO(dto *HistoryItemDTO, username contest.Username, syncedAt time.Time) (contest.HistoryRecord, error) {
	if dto == nil {
		return contest.HistoryRecord{}, ErrNilDTO
	}

	// Unknown trend values are collapsed to NONE rather than rejected:
	// the upstream owns this enum and a new value must not poison a sync.
	trend := contest.TrendDirection(dto.TrendDirection)
	if !trend.IsValid() {
		trend = contest.TrendNone
	}

	return contest.HistoryRecord{
		Username:         username,
		ContestTitle:     dto.Contest.Title,
		ContestStartTime: dto.Contest.StartTime,
		Attended:         dto.Attended,
		TrendDirection:   trend,
		ProblemsSolved:   dto.ProblemsSolved,
		TotalProblems:    dto.TotalProblems,
		FinishTimeSecs:   dto.FinishTimeInSeconds,
		Rating:           contest.Rating(dto.Rating),
		Ranking:          contest.Ranking(dto.Ranking),
		SyncedAt:         syncedAt,
	}, nil
}

// HistoryRecordsFromDTOs converts a full upstream history list.
func (m *Mapper) HistoryRecordsFromDTOs(dtos []HistoryItemDTO, username contest.Username, syncedAt time.Time) []contest.HistoryRecord {
	records := make([]contest.HistoryRecord, 0, len(dtos))
	for i := range dtos {
		record, err := m.HistoryRecordFromDTO(&dtos[i], username, syncedAt)
		if err != nil {
			continue
		}
		records = append(records, record)
	}
	return records
}

// RankingSummaryFromDTO converts an upstream ranking summary.
func (m *Mapper) RankingSummaryFromDTO(dto *RankingDTO) (*contest.RankingSummary, error) {
	if dto == nil {
		return nil, ErrNilDTO
	}

	return &contest.RankingSummary{
		AttendedContestsCount: dto.AttendedContestsCount,
		Rating:                dto.Rating,
		GlobalRanking:         dto.GlobalRanking,
		TotalParticipants:     dto.TotalParticipants,
		TopPercentage:         dto.TopPercentage,
	}, nil
}

// ContestFromDTO converts one entry of the global past-contest listing.
func (m *Mapper) ContestFromDTO(dto *PastContestDTO, syncedAt time.Time) (contest.Contest, error) {
	if dto == nil {
		return contest.Contest{}, ErrNilDTO
	}

	sponsors := make([]contest.Sponsor, 0, len(dto.Sponsors))
	for _, s := range dto.Sponsors {
		sponsors = append(sponsors, contest.Sponsor{
			Name:      s.Name,
			LightLogo: s.LightLogo,
			DarkLogo:  s.DarkLogo,
		})
	}

	return contest.Contest{
		Title:           dto.Title,
		TitleSlug:       dto.TitleSlug,
		StartTime:       dto.StartTime,
		OriginStartTime: dto.OriginStartTime,
		CardImage:       dto.CardImg,
		Sponsors:        sponsors,
		SyncedAt:        syncedAt,
	}, nil
}

// ContestsFromDTOs converts a flattened past-contest listing.
func (m *Mapper) ContestsFromDTOs(dtos []PastContestDTO, syncedAt time.Time) []contest.Contest {
	contests := make([]contest.Contest, 0, len(dtos))
	for i := range dtos {
		c, err := m.ContestFromDTO(&dtos[i], syncedAt)
		if err != nil {
			continue
		}
		contests = append(contests, c)
	}
	return contests
}
