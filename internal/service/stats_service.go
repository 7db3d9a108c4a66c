package service

import (
	"errors"
	"fmt"
	"math"
	"subway_roulette_backend/internal/model"
	"subway_roulette_backend/internal/repository"
	"time"

	"gorm.io/gorm"
)

// StatsService 维护用户统计汇总。Apply* 必须在调用方的事务内执行，
// 统计行在事务结束前保持 FOR UPDATE 锁，保证同一用户的并发结算串行。
type StatsService struct {
	DB          *gorm.DB
	StatsRepo   *repository.StatsRepository
	VisitRepo   *repository.VisitRepository
	StationRepo *repository.StationRepository
	Settings    GameSettings
}

func NewStatsService(
	db *gorm.DB,
	statsRepo *repository.StatsRepository,
	visitRepo *repository.VisitRepository,
	stationRepo *repository.StationRepository,
	settings GameSettings,
) *StatsService {
	return &StatsService{
		DB:          db,
		StatsRepo:   statsRepo,
		VisitRepo:   visitRepo,
		StationRepo: stationRepo,
		Settings:    settings,
	}
}

// ApplyCompletion 挑战完成后的统计更新
func (s *StatsService) ApplyCompletion(tx *gorm.DB, challenge *model.Challenge) (*model.UserStats, error) {
	statsRepo := s.StatsRepo.WithTx(tx)

	stats, err := statsRepo.LockForUpdate(challenge.UserID)
	if err != nil {
		return nil, fmt.Errorf("lock user stats: %w", err)
	}

	stats.TotalChallenges++
	stats.CompletedChallenges++
	stats.CurrentStreak++
	if stats.CurrentStreak > stats.MaxStreak {
		stats.MaxStreak = stats.CurrentStreak
	}

	playTime := challenge.PlayTimeSeconds()
	stats.TotalPlayTime += playTime
	if playTime > 0 && (stats.BestTime == 0 || playTime < stats.BestTime) {
		stats.BestTime = playTime
	}

	stats.TotalScore += s.Settings.ScorePerCompletion
	touchChallengeTimes(stats, challenge.CreatedAt)

	visits, err := s.VisitRepo.WithTx(tx).FindVerifiedByChallenge(challenge.ID)
	if err != nil {
		return nil, fmt.Errorf("load verified visits: %w", err)
	}
	for _, v := range visits {
		at := challenge.CreatedAt
		if v.VisitedAt != nil {
			at = *v.VisitedAt
		}
		count, err := statsRepo.UpsertVisitedStation(challenge.UserID, v.StationID, at)
		if err != nil {
			return nil, fmt.Errorf("upsert visited station %d: %w", v.StationID, err)
		}
		stats.TotalVisitedStations++
		if count == 1 {
			stats.UniqueVisitedStations++
		}
	}

	stats.RecomputeSuccessRate()

	if err := statsRepo.Save(stats); err != nil {
		return nil, fmt.Errorf("save user stats: %w", err)
	}
	return stats, nil
}

// ApplyFailure 挑战失败：连胜清零，分数、时间与车站计数不变
func (s *StatsService) ApplyFailure(tx *gorm.DB, challenge *model.Challenge) (*model.UserStats, error) {
	statsRepo := s.StatsRepo.WithTx(tx)

	stats, err := statsRepo.LockForUpdate(challenge.UserID)
	if err != nil {
		return nil, fmt.Errorf("lock user stats: %w", err)
	}

	stats.TotalChallenges++
	stats.FailedChallenges++
	stats.CurrentStreak = 0
	touchChallengeTimes(stats, challenge.CreatedAt)
	stats.RecomputeSuccessRate()

	if err := statsRepo.Save(stats); err != nil {
		return nil, fmt.Errorf("save user stats: %w", err)
	}
	return stats, nil
}

func touchChallengeTimes(stats *model.UserStats, startedAt time.Time) {
	if stats.FirstChallengeAt == nil || startedAt.Before(*stats.FirstChallengeAt) {
		t := startedAt
		stats.FirstChallengeAt = &t
	}
	if stats.LastChallengeAt == nil || startedAt.After(*stats.LastChallengeAt) {
		t := startedAt
		stats.LastChallengeAt = &t
	}
}

// GetUserStats 没有统计行的用户返回零值
func (s *StatsService) GetUserStats(userID uint) (*model.UserStats, error) {
	stats, err := s.StatsRepo.FindByUserID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.UserStats{UserID: userID}, nil
	}
	return stats, err
}

// LineStat 某条线路的完成度
type LineStat struct {
	repository.LineCoverage
	CompletionRate float64 `json:"completionRate"`
	IsCompleted    bool    `json:"isCompleted"`
}

func (s *StatsService) GetLineStats(userID uint) ([]LineStat, error) {
	coverage, err := s.StationRepo.LineCoverage(userID)
	if err != nil {
		return nil, err
	}

	stats := make([]LineStat, 0, len(coverage))
	for _, c := range coverage {
		rate := 0.0
		if c.TotalStations > 0 {
			rate = float64(c.VisitedStations) * 100 / float64(c.TotalStations)
		}
		stats = append(stats, LineStat{
			LineCoverage:   c,
			CompletionRate: math.Round(rate*100) / 100,
			IsCompleted:    c.Complete(),
		})
	}
	return stats, nil
}

func (s *StatsService) GetVisitedStations(userID uint) ([]repository.VisitedStationRecord, error) {
	return s.StatsRepo.FindVisitedStations(userID)
}
