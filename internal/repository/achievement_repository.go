package repository

import (
	"subway_roulette_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AchievementRepository struct {
	DB *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{DB: db}
}

func (r *AchievementRepository) WithTx(tx *gorm.DB) *AchievementRepository {
	return &AchievementRepository{DB: tx}
}

func (r *AchievementRepository) ListCatalog() ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := r.DB.Order("category ASC, condition_value ASC, id ASC").Find(&achievements).Error
	return achievements, err
}

// UpsertCatalogEntry 按 code 写入成就目录
func (r *AchievementRepository) UpsertCatalogEntry(a *model.Achievement) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "description", "category", "tier", "condition_type", "condition_value", "points", "icon",
		}),
	}).Create(a).Error
}

func (r *AchievementRepository) FindByUserID(userID uint) ([]model.UserAchievement, error) {
	var unlocked []model.UserAchievement
	err := r.DB.Preload("Achievement").
		Where("user_id = ?", userID).
		Order("achieved_at DESC, id DESC").
		Find(&unlocked).Error
	return unlocked, err
}

func (r *AchievementRepository) UnlockedIDs(userID uint) (map[uint]bool, error) {
	var ids []uint
	err := r.DB.Model(&model.UserAchievement{}).
		Where("user_id = ?", userID).
		Pluck("achievement_id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// Unlock 插入解锁记录；已存在时不做任何修改并返回 false
func (r *AchievementRepository) Unlock(ua *model.UserAchievement) (bool, error) {
	res := r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(ua)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
