package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"subway_roulette_backend/internal/model"
	"subway_roulette_backend/internal/repository"
	"subway_roulette_backend/internal/util"
	"subway_roulette_backend/pkg/logger"
	"subway_roulette_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ChallengeService struct {
	DB            *gorm.DB
	ChallengeRepo *repository.ChallengeRepository
	VisitRepo     *repository.VisitRepository
	StationRepo   *repository.StationRepository
	Stats         *StatsService
	Achievements  *AchievementService
	Settings      GameSettings
	Now           Clock
	// Shuffle 打乱候选车站，测试中可替换为确定性实现
	Shuffle func(n int, swap func(i, j int))
}

func NewChallengeService(
	db *gorm.DB,
	challengeRepo *repository.ChallengeRepository,
	visitRepo *repository.VisitRepository,
	stationRepo *repository.StationRepository,
	stats *StatsService,
	achievements *AchievementService,
	settings GameSettings,
) *ChallengeService {
	return &ChallengeService{
		DB:            db,
		ChallengeRepo: challengeRepo,
		VisitRepo:     visitRepo,
		StationRepo:   stationRepo,
		Stats:         stats,
		Achievements:  achievements,
		Settings:      settings,
		Now:           time.Now,
		Shuffle:       rand.Shuffle,
	}
}

type CreateChallengeRequest struct {
	UserID       uint   `json:"userId" binding:"required"`
	LineName     string `json:"lineName" binding:"required"`
	StationCount int    `json:"stationCount"`
}

type CreateChallengeResult struct {
	ChallengeID uint            `json:"challengeId"`
	LineName    string          `json:"lineName"`
	Stations    []model.Station `json:"stations"`
	TimeLimitMs int64           `json:"timeLimitMs"`
	ExpiresAt   time.Time       `json:"expiresAt"`
}

// ChallengeDetail 挑战详情附带剩余时间
type ChallengeDetail struct {
	*model.Challenge
	RemainingMs int64     `json:"remainingMs"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// ResolutionResult 挑战进入终态后的结算结果
type ResolutionResult struct {
	Challenge       *model.Challenge    `json:"challenge"`
	Stats           *model.UserStats    `json:"stats,omitempty"`
	NewAchievements []model.Achievement `json:"newAchievements"`
}

// Create 在线路上随机抽取 stationCount 个不同车站，创建挑战及对应的未验证访问行
func (s *ChallengeService) Create(ctx context.Context, req CreateChallengeRequest) (*CreateChallengeResult, error) {
	count := req.StationCount
	if count == 0 {
		count = 1
	}
	if count < 1 || count > MaxStationsPerChallenge {
		return nil, util.ErrInvalidStationCount
	}

	if _, err := s.StationRepo.FindLineByName(req.LineName); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLineNotFound
		}
		return nil, err
	}

	candidates, err := s.StationRepo.FindByLine(req.LineName)
	if err != nil {
		return nil, err
	}
	if len(candidates) < count {
		return nil, util.ErrInsufficientStations
	}
	s.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	picked := candidates[:count]

	now := s.Now()
	var challenge *model.Challenge
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		challengeRepo := s.ChallengeRepo.WithTx(tx)

		active, err := challengeRepo.FindInProgressByUser(req.UserID)
		if err != nil {
			return err
		}
		for i := range active {
			if active[i].Elapsed(now) <= s.Settings.TimeLimit {
				return util.ErrActiveChallengeExists
			}
		}
		// 超时但尚未被清理的挑战先按失败结算
		for i := range active {
			if _, err := s.failInTx(tx, active[i].ID, now); err != nil {
				return err
			}
		}

		challenge = &model.Challenge{
			UserID:        req.UserID,
			LineName:      req.LineName,
			TotalStations: count,
			Status:        model.ChallengeInProgress,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := challengeRepo.Create(challenge); err != nil {
			return err
		}

		visits := make([]model.Visit, 0, count)
		for _, st := range picked {
			visits = append(visits, model.Visit{
				ChallengeID: challenge.ID,
				UserID:      req.UserID,
				StationID:   st.ID,
				CreatedAt:   now,
			})
		}
		return s.VisitRepo.WithTx(tx).CreateBatch(visits)
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("challenge started",
		zap.Uint("challenge_id", challenge.ID),
		zap.Uint("user_id", req.UserID),
		zap.String("line", req.LineName),
		zap.Int("stations", count),
	)

	return &CreateChallengeResult{
		ChallengeID: challenge.ID,
		LineName:    challenge.LineName,
		Stations:    picked,
		TimeLimitMs: s.Settings.TimeLimit.Milliseconds(),
		ExpiresAt:   challenge.CreatedAt.Add(s.Settings.TimeLimit),
	}, nil
}

func (s *ChallengeService) Get(challengeID, userID uint) (*ChallengeDetail, error) {
	challenge, err := s.ChallengeRepo.FindDetail(challengeID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrChallengeNotFound
		}
		return nil, err
	}

	expiresAt := challenge.CreatedAt.Add(s.Settings.TimeLimit)
	var remaining int64
	if challenge.Status == model.ChallengeInProgress {
		remaining = expiresAt.Sub(s.Now()).Milliseconds()
		if remaining < 0 {
			remaining = 0
		}
	}
	return &ChallengeDetail{Challenge: challenge, RemainingMs: remaining, ExpiresAt: expiresAt}, nil
}

func (s *ChallengeService) List(userID uint, status model.ChallengeStatus, page, limit int) (*util.PageResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = util.DefaultPageSize
	}
	if limit > util.MaxPageSize {
		limit = util.MaxPageSize
	}

	challenges, total, err := s.ChallengeRepo.List(repository.ChallengeFilter{
		UserID: userID,
		Status: status,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}
	return &util.PageResponse{List: challenges, Total: total, Page: page, Limit: limit}, nil
}

func (s *ChallengeService) RecentActivities(userID uint, limit int) ([]model.Challenge, error) {
	return s.ChallengeRepo.Recent(userID, limit)
}

// CompleteInTx 所有车站验证完毕后完成挑战：写入终态，更新统计并评估成就。
// 调用方必须已持有挑战行锁。
func (s *ChallengeService) CompleteInTx(tx *gorm.DB, challenge *model.Challenge, finalStationID uint, now time.Time) (*ResolutionResult, error) {
	if !challenge.CanTransitionTo(model.ChallengeCompleted) {
		return nil, util.ErrInvalidStatusTransition
	}

	challenge.Status = model.ChallengeCompleted
	challenge.CompletedAt = &now
	challenge.UpdatedAt = now
	challenge.FinalStationID = &finalStationID
	if err := s.ChallengeRepo.WithTx(tx).Save(challenge); err != nil {
		return nil, fmt.Errorf("save challenge: %w", err)
	}

	stats, err := s.Stats.ApplyCompletion(tx, challenge)
	if err != nil {
		return nil, err
	}
	newly, err := s.Achievements.EvaluateInTx(tx, stats)
	if err != nil {
		return nil, err
	}

	monitoring.ChallengesResolved.WithLabelValues(string(model.ChallengeCompleted)).Inc()
	return &ResolutionResult{Challenge: challenge, Stats: stats, NewAchievements: newly}, nil
}

// failInTx 将进行中的挑战置为失败并结算；已是终态时返回 ErrInvalidStatusTransition
func (s *ChallengeService) failInTx(tx *gorm.DB, challengeID uint, now time.Time) (*ResolutionResult, error) {
	challenge, err := s.ChallengeRepo.WithTx(tx).FindByIDForUpdate(challengeID)
	if err != nil {
		return nil, err
	}
	if !challenge.CanTransitionTo(model.ChallengeFailed) {
		return nil, util.ErrInvalidStatusTransition
	}

	challenge.Status = model.ChallengeFailed
	challenge.UpdatedAt = now
	if err := s.ChallengeRepo.WithTx(tx).Save(challenge); err != nil {
		return nil, fmt.Errorf("save challenge: %w", err)
	}

	stats, err := s.Stats.ApplyFailure(tx, challenge)
	if err != nil {
		return nil, err
	}
	newly, err := s.Achievements.EvaluateInTx(tx, stats)
	if err != nil {
		return nil, err
	}

	monitoring.ChallengesResolved.WithLabelValues(string(model.ChallengeFailed)).Inc()
	return &ResolutionResult{Challenge: challenge, Stats: stats, NewAchievements: newly}, nil
}

// Fail 用户主动放弃，计入失败
func (s *ChallengeService) Fail(ctx context.Context, challengeID, userID uint) (*ResolutionResult, error) {
	var result *ResolutionResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.ChallengeRepo.WithTx(tx).FindByIDAndUserForUpdate(challengeID, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrChallengeNotFound
			}
			return err
		}
		var err error
		result, err = s.failInTx(tx, challengeID, s.Now())
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("challenge failed",
		zap.Uint("challenge_id", challengeID),
		zap.Uint("user_id", userID),
	)
	return result, nil
}

// Cancel 取消挑战，不影响统计
func (s *ChallengeService) Cancel(ctx context.Context, challengeID, userID uint) (*model.Challenge, error) {
	var challenge *model.Challenge
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.ChallengeRepo.WithTx(tx)
		var err error
		challenge, err = repo.FindByIDAndUserForUpdate(challengeID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrChallengeNotFound
			}
			return err
		}
		if !challenge.CanTransitionTo(model.ChallengeCancelled) {
			return util.ErrInvalidStatusTransition
		}
		challenge.Status = model.ChallengeCancelled
		challenge.UpdatedAt = s.Now()
		return repo.Save(challenge)
	})
	if err != nil {
		return nil, err
	}

	monitoring.ChallengesResolved.WithLabelValues(string(model.ChallengeCancelled)).Inc()
	logger.Log.Info("challenge cancelled",
		zap.Uint("challenge_id", challengeID),
		zap.Uint("user_id", userID),
	)
	return challenge, nil
}

const expiryBatchSize = 200

// ExpireOverdue 将超过时限仍在进行中的挑战置为失败，每个挑战单独一个事务
func (s *ChallengeService) ExpireOverdue(ctx context.Context) (int, error) {
	now := s.Now()
	ids, err := s.ChallengeRepo.FindOverdueIDs(now.Add(-s.Settings.TimeLimit), expiryBatchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return expired, err
		}
		err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			_, err := s.failInTx(tx, id, now)
			return err
		})
		if errors.Is(err, util.ErrInvalidStatusTransition) {
			// 并发请求已经把它结算了
			continue
		}
		if err != nil {
			logger.Log.Error("expire challenge failed", zap.Uint("challenge_id", id), zap.Error(err))
			continue
		}
		expired++
	}

	if expired > 0 {
		logger.Log.Info("expired overdue challenges", zap.Int("count", expired))
	}
	return expired, nil
}
