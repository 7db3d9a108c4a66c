package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"subway_roulette_backend/internal/geo"
	"subway_roulette_backend/internal/model"
	"subway_roulette_backend/internal/repository"
	"subway_roulette_backend/pkg/logger"
	"subway_roulette_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// VisitService GPS 到站验证
type VisitService struct {
	DB            *gorm.DB
	ChallengeRepo *repository.ChallengeRepository
	VisitRepo     *repository.VisitRepository
	StationRepo   *repository.StationRepository
	Challenges    *ChallengeService
	Settings      GameSettings
	Now           Clock
}

func NewVisitService(
	db *gorm.DB,
	challengeRepo *repository.ChallengeRepository,
	visitRepo *repository.VisitRepository,
	stationRepo *repository.StationRepository,
	challenges *ChallengeService,
	settings GameSettings,
) *VisitService {
	return &VisitService{
		DB:            db,
		ChallengeRepo: challengeRepo,
		VisitRepo:     visitRepo,
		StationRepo:   stationRepo,
		Challenges:    challenges,
		Settings:      settings,
		Now:           time.Now,
	}
}

// VerifyVisitInput 指针字段用于区分缺失与零值（坐标 0 是合法值）
type VerifyVisitInput struct {
	ChallengeID *uint    `json:"challengeId"`
	UserID      *uint    `json:"userId"`
	StationID   *uint    `json:"stationId"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

func (in *VerifyVisitInput) validate() *VerifyError {
	var missing []string
	if in.ChallengeID == nil {
		missing = append(missing, "challengeId")
	}
	if in.UserID == nil {
		missing = append(missing, "userId")
	}
	if in.StationID == nil {
		missing = append(missing, "stationId")
	}
	if in.Latitude == nil {
		missing = append(missing, "latitude")
	}
	if in.Longitude == nil {
		missing = append(missing, "longitude")
	}
	if len(missing) > 0 {
		return validationError(fmt.Sprintf("missing required fields: %v", missing))
	}

	lat, lng := *in.Latitude, *in.Longitude
	if math.IsNaN(lat) || math.IsNaN(lng) || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return validationError("coordinates out of range")
	}
	return nil
}

type VerifyVisitResult struct {
	Success           bool                `json:"success"`
	StationName       string              `json:"stationName"`
	Distance          float64             `json:"distance"`
	CompletedStations int                 `json:"completedStations"`
	TotalStations     int                 `json:"totalStations"`
	IsAllCompleted    bool                `json:"isAllCompleted"`
	NewAchievements   []model.Achievement `json:"newAchievements"`
}

// Verify 单个事务内完成全部校验与写入；任何一步失败整体回滚
func (s *VisitService) Verify(ctx context.Context, in VerifyVisitInput) (*VerifyVisitResult, error) {
	if verr := in.validate(); verr != nil {
		monitoring.VisitVerifications.WithLabelValues(string(verr.Kind)).Inc()
		return nil, verr
	}

	challengeID, userID, stationID := *in.ChallengeID, *in.UserID, *in.StationID
	lat, lng := *in.Latitude, *in.Longitude

	var result *VerifyVisitResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.Now()

		challenge, err := s.ChallengeRepo.WithTx(tx).FindByIDAndUserForUpdate(challengeID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("challenge")
			}
			return err
		}

		// 已结束的挑战上重复验证同一站，仍报告已验证
		if challenge.Status != model.ChallengeInProgress {
			prior, err := s.VisitRepo.WithTx(tx).FindForUpdate(challenge.ID, stationID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if prior != nil && prior.IsVerified {
				return alreadyVerifiedError(prior.VisitedAt)
			}
		}

		// 超时只拒绝本次验证，挑战状态由超时清理任务处理
		if elapsed := challenge.Elapsed(now); elapsed > s.Settings.TimeLimit {
			return expiredError(elapsed, s.Settings.TimeLimit)
		}
		if challenge.Status != model.ChallengeInProgress {
			return validationError(fmt.Sprintf("challenge is %s", challenge.Status))
		}

		station, err := s.StationRepo.WithTx(tx).FindByID(stationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("station")
			}
			return err
		}

		distance, ok := geo.Within(
			geo.Point{Latitude: lat, Longitude: lng},
			geo.Point{Latitude: station.Latitude, Longitude: station.Longitude},
			s.Settings.VerificationRadius,
		)
		if !ok {
			return tooFarError(math.Round(distance), s.Settings.VerificationRadius, station.Name)
		}

		visitRepo := s.VisitRepo.WithTx(tx)
		visit, err := visitRepo.FindForUpdate(challenge.ID, station.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("visit")
			}
			return err
		}
		if visit.IsVerified {
			return alreadyVerifiedError(visit.VisitedAt)
		}

		updated, err := visitRepo.MarkVerified(visit.ID, now, lat, lng)
		if err != nil {
			return fmt.Errorf("mark visit verified: %w", err)
		}
		if !updated {
			return alreadyVerifiedError(visit.VisitedAt)
		}

		verified, err := visitRepo.CountVerified(challenge.ID)
		if err != nil {
			return fmt.Errorf("count verified visits: %w", err)
		}
		challenge.CompletedStations = int(verified)
		challenge.UpdatedAt = now

		result = &VerifyVisitResult{
			Success:           true,
			StationName:       station.Name,
			Distance:          math.Round(distance),
			CompletedStations: challenge.CompletedStations,
			TotalStations:     challenge.TotalStations,
			IsAllCompleted:    challenge.CompletedStations >= challenge.TotalStations,
			NewAchievements:   []model.Achievement{},
		}

		if !result.IsAllCompleted {
			return s.ChallengeRepo.WithTx(tx).Save(challenge)
		}

		resolution, err := s.Challenges.CompleteInTx(tx, challenge, station.ID, now)
		if err != nil {
			return err
		}
		if resolution.NewAchievements != nil {
			result.NewAchievements = resolution.NewAchievements
		}
		return nil
	})

	if err != nil {
		var verr *VerifyError
		if errors.As(err, &verr) {
			monitoring.VisitVerifications.WithLabelValues(string(verr.Kind)).Inc()
			logger.Log.Info("visit verification rejected",
				zap.Uint("challenge_id", challengeID),
				zap.Uint("user_id", userID),
				zap.Uint("station_id", stationID),
				zap.String("reason", string(verr.Kind)),
			)
		} else {
			monitoring.VisitVerifications.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	monitoring.VisitVerifications.WithLabelValues("success").Inc()
	logger.Log.Info("visit verified",
		zap.Uint("challenge_id", challengeID),
		zap.Uint("user_id", userID),
		zap.Uint("station_id", stationID),
		zap.Float64("distance_m", result.Distance),
		zap.Bool("all_completed", result.IsAllCompleted),
	)
	return result, nil
}

const defaultVisitHistoryLimit = 100

// GetUserVisits 用户已验证的到站记录，按时间倒序
func (s *VisitService) GetUserVisits(userID uint, limit int) ([]repository.VisitRecord, error) {
	if limit <= 0 {
		limit = defaultVisitHistoryLimit
	}
	return s.VisitRepo.FindVerifiedByUser(userID, limit)
}
