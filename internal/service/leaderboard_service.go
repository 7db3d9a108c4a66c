package service

import (
	"errors"
	"subway_roulette_backend/internal/repository"
	"subway_roulette_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
	weeklyWindow            = 7 * 24 * time.Hour
)

type LeaderboardService struct {
	LeaderboardRepo *repository.LeaderboardRepository
	StatsRepo       *repository.StatsRepository
	Settings        GameSettings
	Now             Clock
}

func NewLeaderboardService(
	leaderboardRepo *repository.LeaderboardRepository,
	statsRepo *repository.StatsRepository,
	settings GameSettings,
) *LeaderboardService {
	return &LeaderboardService{
		LeaderboardRepo: leaderboardRepo,
		StatsRepo:       statsRepo,
		Settings:        settings,
		Now:             time.Now,
	}
}

type LeaderboardEntry struct {
	Rank int `json:"rank"`
	repository.LeaderboardRow
}

type WeeklyEntry struct {
	Rank int `json:"rank"`
	repository.WeeklyRow
	WeeklyScore int `json:"weeklyScore"`
}

// UserRank 各榜单名次，不上榜为 null
type UserRank struct {
	ScoreRank       *int `json:"scoreRank"`
	StreakRank      *int `json:"streakRank"`
	StationsRank    *int `json:"stationsRank"`
	SuccessRateRank *int `json:"successRateRank"`
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		return MaxLeaderboardLimit
	}
	return limit
}

// Top 按榜单类型排序，并列共享名次（1,1,3）
func (s *LeaderboardService) Top(kind repository.RankingType, limit int) ([]LeaderboardEntry, error) {
	if kind == "" {
		kind = repository.RankByScore
	}
	if !kind.Valid() {
		return nil, util.ErrUnknownLeaderboardType
	}

	rows, err := s.LeaderboardRepo.Top(kind, clampLimit(limit))
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(rows))
	for i, row := range rows {
		rank := i + 1
		if i > 0 && sameStanding(kind, rows[i-1], row) {
			rank = entries[i-1].Rank
		}
		entries[i] = LeaderboardEntry{Rank: rank, LeaderboardRow: row}
	}
	return entries, nil
}

func sameStanding(kind repository.RankingType, a, b repository.LeaderboardRow) bool {
	switch kind {
	case repository.RankByScore:
		return a.TotalScore == b.TotalScore && a.CompletedChallenges == b.CompletedChallenges
	case repository.RankByStreak:
		return a.MaxStreak == b.MaxStreak && a.TotalScore == b.TotalScore
	case repository.RankByStations:
		return a.UniqueVisitedStations == b.UniqueVisitedStations && a.TotalScore == b.TotalScore
	case repository.RankBySuccessRate:
		return a.SuccessRate == b.SuccessRate && a.TotalChallenges == b.TotalChallenges
	}
	return false
}

// Weekly 最近 7 天完成的挑战，直接统计挑战表
func (s *LeaderboardService) Weekly(limit int) ([]WeeklyEntry, error) {
	since := s.Now().Add(-weeklyWindow)
	rows, err := s.LeaderboardRepo.Weekly(since, clampLimit(limit))
	if err != nil {
		return nil, err
	}

	entries := make([]WeeklyEntry, len(rows))
	for i, row := range rows {
		rank := i + 1
		if i > 0 && rows[i-1].CompletedCount == row.CompletedCount && rows[i-1].StationsVisited == row.StationsVisited {
			rank = entries[i-1].Rank
		}
		entries[i] = WeeklyEntry{
			Rank:        rank,
			WeeklyRow:   row,
			WeeklyScore: row.CompletedCount * s.Settings.ScorePerCompletion,
		}
	}
	return entries, nil
}

func (s *LeaderboardService) UserRank(userID uint) (*UserRank, error) {
	stats, err := s.StatsRepo.FindByUserID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &UserRank{}, nil
	}
	if err != nil {
		return nil, err
	}

	ranks := &UserRank{}
	targets := []struct {
		kind repository.RankingType
		dst  **int
	}{
		{repository.RankByScore, &ranks.ScoreRank},
		{repository.RankByStreak, &ranks.StreakRank},
		{repository.RankByStations, &ranks.StationsRank},
		{repository.RankBySuccessRate, &ranks.SuccessRateRank},
	}
	for _, t := range targets {
		rank, err := s.LeaderboardRepo.RankOf(t.kind, stats)
		if err != nil {
			return nil, err
		}
		*t.dst = rank
	}
	return ranks, nil
}
