package repository

import (
	"subway_roulette_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChallengeRepository struct {
	DB *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) *ChallengeRepository {
	return &ChallengeRepository{DB: db}
}

func (r *ChallengeRepository) WithTx(tx *gorm.DB) *ChallengeRepository {
	return &ChallengeRepository{DB: tx}
}

// ChallengeFilter 挑战历史查询条件
type ChallengeFilter struct {
	UserID uint
	Status model.ChallengeStatus
	Page   int
	Limit  int
}

func (r *ChallengeRepository) Create(challenge *model.Challenge) error {
	return r.DB.Create(challenge).Error
}

// FindByIDAndUserForUpdate 加行锁读取用户自己的挑战
func (r *ChallengeRepository) FindByIDAndUserForUpdate(id, userID uint) (*model.Challenge, error) {
	var challenge model.Challenge
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", id, userID).
		First(&challenge).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (r *ChallengeRepository) FindByIDForUpdate(id uint) (*model.Challenge, error) {
	var challenge model.Challenge
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&challenge).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// FindDetail 带上分配车站的挑战详情
func (r *ChallengeRepository) FindDetail(id, userID uint) (*model.Challenge, error) {
	var challenge model.Challenge
	err := r.DB.Preload("Visits", func(db *gorm.DB) *gorm.DB {
		return db.Order("visits.id ASC")
	}).Preload("Visits.Station").
		Where("id = ? AND user_id = ?", id, userID).
		First(&challenge).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (r *ChallengeRepository) FindInProgressByUser(userID uint) ([]model.Challenge, error) {
	var challenges []model.Challenge
	err := r.DB.Where("user_id = ? AND status = ?", userID, model.ChallengeInProgress).
		Order("created_at ASC").
		Find(&challenges).Error
	return challenges, err
}

// FindOverdueIDs 创建时间早于 deadline 且仍在进行中的挑战
func (r *ChallengeRepository) FindOverdueIDs(deadline time.Time, limit int) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Challenge{}).
		Where("status = ? AND created_at < ?", model.ChallengeInProgress, deadline).
		Order("created_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *ChallengeRepository) List(filter ChallengeFilter) ([]model.Challenge, int64, error) {
	query := r.DB.Model(&model.Challenge{}).Where("user_id = ?", filter.UserID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var challenges []model.Challenge
	offset := (filter.Page - 1) * filter.Limit
	err := query.Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(filter.Limit).
		Find(&challenges).Error
	return challenges, total, err
}

func (r *ChallengeRepository) Recent(userID uint, limit int) ([]model.Challenge, error) {
	var challenges []model.Challenge
	err := r.DB.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&challenges).Error
	return challenges, err
}

func (r *ChallengeRepository) Save(challenge *model.Challenge) error {
	return r.DB.Omit(clause.Associations).Save(challenge).Error
}
