package repository

import (
	"subway_roulette_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StatsRepository struct {
	DB *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{DB: db}
}

func (r *StatsRepository) WithTx(tx *gorm.DB) *StatsRepository {
	return &StatsRepository{DB: tx}
}

// VisitedStationRecord 已访问车站附带车站信息
type VisitedStationRecord struct {
	StationID    uint      `json:"stationId"`
	StationName  string    `json:"stationName"`
	StationCode  string    `json:"stationCode"`
	LineName     string    `json:"lineName"`
	VisitCount   int       `json:"visitCount"`
	FirstVisitAt time.Time `json:"firstVisitAt"`
	LastVisitAt  time.Time `json:"lastVisitAt"`
}

// FindByUserID 不存在时返回 gorm.ErrRecordNotFound
func (r *StatsRepository) FindByUserID(userID uint) (*model.UserStats, error) {
	var stats model.UserStats
	if err := r.DB.Where("user_id = ?", userID).First(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// LockForUpdate 确保统计行存在，然后 SELECT ... FOR UPDATE。
// 必须在事务中调用，锁持续到事务结束。
func (r *StatsRepository) LockForUpdate(userID uint) (*model.UserStats, error) {
	if err := r.DB.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.UserStats{UserID: userID}).Error; err != nil {
		return nil, err
	}

	var stats model.UserStats
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *StatsRepository) Save(stats *model.UserStats) error {
	return r.DB.Save(stats).Error
}

// UpsertVisitedStation 原子地插入或累加 (user, station) 访问计数，
// 返回写入后的 visit_count（为 1 表示首次访问）。
func (r *StatsRepository) UpsertVisitedStation(userID, stationID uint, at time.Time) (int, error) {
	row := model.UserVisitedStation{
		UserID:       userID,
		StationID:    stationID,
		FirstVisitAt: at,
		LastVisitAt:  at,
		VisitCount:   1,
	}
	err := r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "station_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"visit_count":   gorm.Expr("visit_count + 1"),
			"last_visit_at": at,
		}),
	}).Create(&row).Error
	if err != nil {
		return 0, err
	}

	var count int
	err = r.DB.Model(&model.UserVisitedStation{}).
		Where("user_id = ? AND station_id = ?", userID, stationID).
		Select("visit_count").
		Scan(&count).Error
	return count, err
}

func (r *StatsRepository) CountUniqueVisited(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.UserVisitedStation{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *StatsRepository) FindVisitedStations(userID uint) ([]VisitedStationRecord, error) {
	var records []VisitedStationRecord
	err := r.DB.Table("user_visited_stations AS uvs").
		Select("uvs.station_id, s.name AS station_name, s.code AS station_code, s.line_name, "+
			"uvs.visit_count, uvs.first_visit_at, uvs.last_visit_at").
		Joins("JOIN stations s ON s.id = uvs.station_id").
		Where("uvs.user_id = ?", userID).
		Order("uvs.last_visit_at DESC, uvs.id DESC").
		Scan(&records).Error
	return records, err
}
