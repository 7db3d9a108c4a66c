package service

import (
	"errors"
	"fmt"
	"subway_roulette_backend/internal/model"
	"subway_roulette_backend/internal/repository"
	"subway_roulette_backend/pkg/logger"
	"subway_roulette_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AchievementService struct {
	DB              *gorm.DB
	AchievementRepo *repository.AchievementRepository
	StatsRepo       *repository.StatsRepository
	StationRepo     *repository.StationRepository
	Now             Clock
}

func NewAchievementService(
	db *gorm.DB,
	achievementRepo *repository.AchievementRepository,
	statsRepo *repository.StatsRepository,
	stationRepo *repository.StationRepository,
) *AchievementService {
	return &AchievementService{
		DB:              db,
		AchievementRepo: achievementRepo,
		StatsRepo:       statsRepo,
		StationRepo:     stationRepo,
		Now:             time.Now,
	}
}

// AchievementProgress 成就进度视图，不修改任何状态
type AchievementProgress struct {
	model.Achievement
	Progress   int        `json:"progress"`
	IsUnlocked bool       `json:"isUnlocked"`
	AchievedAt *time.Time `json:"achievedAt,omitempty"`
}

// buildContext 按需加载线路覆盖数据
func (s *AchievementService) buildContext(db *gorm.DB, stats *model.UserStats, catalog []model.Achievement) (*ConditionContext, error) {
	unique, err := s.StatsRepo.WithTx(db).CountUniqueVisited(stats.UserID)
	if err != nil {
		return nil, fmt.Errorf("count visited stations: %w", err)
	}
	ctx := &ConditionContext{Stats: stats, UniqueStations: int(unique)}

	for i := range catalog {
		if needsLines(catalog[i].ConditionType) {
			lines, err := s.StationRepo.WithTx(db).LineCoverage(stats.UserID)
			if err != nil {
				return nil, fmt.Errorf("load line coverage: %w", err)
			}
			ctx.Lines = lines
			break
		}
	}
	return ctx, nil
}

// EvaluateInTx 在调用方事务内评估全部未解锁成就，新满足的一次性全部解锁，
// 并把成就积分加到 stats.TotalScore。stats 必须是本事务中已加锁的统计行。
func (s *AchievementService) EvaluateInTx(tx *gorm.DB, stats *model.UserStats) ([]model.Achievement, error) {
	achievementRepo := s.AchievementRepo.WithTx(tx)

	catalog, err := achievementRepo.ListCatalog()
	if err != nil {
		return nil, fmt.Errorf("load achievement catalog: %w", err)
	}
	unlocked, err := achievementRepo.UnlockedIDs(stats.UserID)
	if err != nil {
		return nil, fmt.Errorf("load unlocked achievements: %w", err)
	}

	pending := make([]model.Achievement, 0, len(catalog))
	for _, a := range catalog {
		if !unlocked[a.ID] {
			pending = append(pending, a)
		}
	}
	if len(pending) == 0 {
		return nil, nil
	}

	cctx, err := s.buildContext(tx, stats, pending)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	var newly []model.Achievement
	for i := range pending {
		a := &pending[i]
		if !evaluateCondition(a, cctx).Satisfied {
			continue
		}

		inserted, err := achievementRepo.Unlock(&model.UserAchievement{
			UserID:        stats.UserID,
			AchievementID: a.ID,
			AchievedAt:    now,
			Progress:      100,
		})
		if err != nil {
			return nil, fmt.Errorf("unlock achievement %s: %w", a.Code, err)
		}
		if !inserted {
			continue
		}

		stats.TotalScore += a.Points
		newly = append(newly, *a)
	}

	if len(newly) == 0 {
		return nil, nil
	}

	if err := s.StatsRepo.WithTx(tx).Save(stats); err != nil {
		return nil, fmt.Errorf("save achievement points: %w", err)
	}

	for _, a := range newly {
		monitoring.AchievementsUnlocked.WithLabelValues(a.Code).Inc()
		logger.Log.Info("achievement unlocked",
			zap.Uint("user_id", stats.UserID),
			zap.String("code", a.Code),
			zap.Int("points", a.Points),
		)
	}
	return newly, nil
}

// Evaluate 独立事务中重新评估（统计未变化时为空操作）
func (s *AchievementService) Evaluate(userID uint) ([]model.Achievement, error) {
	var newly []model.Achievement
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		stats, err := s.StatsRepo.WithTx(tx).LockForUpdate(userID)
		if err != nil {
			return err
		}
		newly, err = s.EvaluateInTx(tx, stats)
		return err
	})
	return newly, err
}

func (s *AchievementService) GetCatalog() ([]model.Achievement, error) {
	return s.AchievementRepo.ListCatalog()
}

func (s *AchievementService) GetUserAchievements(userID uint) ([]model.UserAchievement, error) {
	return s.AchievementRepo.FindByUserID(userID)
}

// GetProgress 目录中每个成就的当前进度；已解锁的固定为 100
func (s *AchievementService) GetProgress(userID uint) ([]AchievementProgress, error) {
	catalog, err := s.AchievementRepo.ListCatalog()
	if err != nil {
		return nil, err
	}
	unlockedRows, err := s.AchievementRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}
	unlockedAt := make(map[uint]time.Time, len(unlockedRows))
	for _, ua := range unlockedRows {
		unlockedAt[ua.AchievementID] = ua.AchievedAt
	}

	stats, err := s.StatsRepo.FindByUserID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stats = &model.UserStats{UserID: userID}
	} else if err != nil {
		return nil, err
	}

	cctx, err := s.buildContext(s.DB, stats, catalog)
	if err != nil {
		return nil, err
	}

	result := make([]AchievementProgress, 0, len(catalog))
	for i := range catalog {
		a := catalog[i]
		p := AchievementProgress{Achievement: a}
		if at, ok := unlockedAt[a.ID]; ok {
			p.IsUnlocked = true
			p.Progress = 100
			p.AchievedAt = &at
		} else {
			p.Progress = evaluateCondition(&a, cctx).Progress
		}
		result = append(result, p)
	}
	return result, nil
}
