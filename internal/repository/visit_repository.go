package repository

import (
	"subway_roulette_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VisitRepository struct {
	DB *gorm.DB
}

func NewVisitRepository(db *gorm.DB) *VisitRepository {
	return &VisitRepository{DB: db}
}

func (r *VisitRepository) WithTx(tx *gorm.DB) *VisitRepository {
	return &VisitRepository{DB: tx}
}

// VisitRecord 访问记录附带车站信息
type VisitRecord struct {
	ID          uint       `json:"id"`
	ChallengeID uint       `json:"challengeId"`
	StationID   uint       `json:"stationId"`
	StationName string     `json:"stationName"`
	StationCode string     `json:"stationCode"`
	LineName    string     `json:"lineName"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	VisitedAt   *time.Time `json:"visitedAt"`
}

func (r *VisitRepository) CreateBatch(visits []model.Visit) error {
	if len(visits) == 0 {
		return nil
	}
	return r.DB.Create(&visits).Error
}

// FindForUpdate 加行锁读取某挑战中某车站的访问行
func (r *VisitRepository) FindForUpdate(challengeID, stationID uint) (*model.Visit, error) {
	var visit model.Visit
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("challenge_id = ? AND station_id = ?", challengeID, stationID).
		First(&visit).Error
	if err != nil {
		return nil, err
	}
	return &visit, nil
}

// MarkVerified 只更新尚未验证的行，返回是否真正更新
func (r *VisitRepository) MarkVerified(visitID uint, at time.Time, lat, lng float64) (bool, error) {
	res := r.DB.Model(&model.Visit{}).
		Where("id = ? AND is_verified = ?", visitID, false).
		Updates(map[string]interface{}{
			"is_verified":        true,
			"visited_at":         at,
			"verified_latitude":  lat,
			"verified_longitude": lng,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *VisitRepository) CountVerified(challengeID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Visit{}).
		Where("challenge_id = ? AND is_verified = ?", challengeID, true).
		Count(&count).Error
	return count, err
}

func (r *VisitRepository) FindVerifiedByChallenge(challengeID uint) ([]model.Visit, error) {
	var visits []model.Visit
	err := r.DB.Where("challenge_id = ? AND is_verified = ?", challengeID, true).
		Order("visited_at ASC, id ASC").
		Find(&visits).Error
	return visits, err
}

func (r *VisitRepository) FindVerifiedByUser(userID uint, limit int) ([]VisitRecord, error) {
	var records []VisitRecord
	err := r.DB.Table("visits AS v").
		Select("v.id, v.challenge_id, v.station_id, s.name AS station_name, s.code AS station_code, "+
			"s.line_name, s.latitude, s.longitude, v.visited_at").
		Joins("JOIN stations s ON s.id = v.station_id").
		Where("v.user_id = ? AND v.is_verified = ?", userID, true).
		Order("v.visited_at DESC, v.id DESC").
		Limit(limit).
		Scan(&records).Error
	return records, err
}
